// History recorder: pure append of immutable audit records.
package engine

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/capsules/pkg/types"
)

// recordHistory resolves the task, capsule, and acting user (all three
// must exist, else ErrNotFound), constructs an entry with a server-assigned
// timestamp, and appends it. The organization reference is taken from the
// capsule.
func recordHistory(st types.Store, taskID, capsuleID, userID, kind, description string) (*types.HistoryEntry, error) {
	exists, err := st.Tasks().Exists(taskID)
	if err != nil {
		return nil, fmt.Errorf("resolving task %s: %w", taskID, err)
	}
	if !exists {
		return nil, fmt.Errorf("task %s: %w", taskID, types.ErrNotFound)
	}

	capsule, err := st.Capsules().Get(capsuleID)
	if err != nil {
		return nil, fmt.Errorf("capsule %s: %w", capsuleID, err)
	}
	if _, err := st.Users().Get(userID); err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}

	entry := &types.HistoryEntry{
		TaskID:         taskID,
		CapsuleID:      capsuleID,
		UserID:         userID,
		OrganizationID: capsule.OrganizationID,
		Kind:           kind,
		Description:    description,
		Timestamp:      time.Now().UTC(),
	}
	if _, err := st.History().Append(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// LogHistory appends a history entry outside of a task mutation, for
// callers that audit externally-driven changes.
func (s *Service) LogHistory(taskID, capsuleID, userID, kind, description string) (*types.HistoryEntry, error) {
	var entry *types.HistoryEntry
	err := s.store.Atomic(func(st types.Store) error {
		var err error
		entry, err = recordHistory(st, taskID, capsuleID, userID, kind, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// TaskHistory returns the task's audit trail ordered newest-first with the
// acting user attached to each entry. Returns ErrNotFound for an unknown
// task.
func (s *Service) TaskHistory(taskID string) ([]*types.HistoryEntry, error) {
	exists, err := s.store.Tasks().Exists(taskID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("task %s: %w", taskID, types.ErrNotFound)
	}
	return s.store.History().ListByTask(taskID)
}
