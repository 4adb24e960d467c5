// History table accessor for the SQLite store. The table is append-only:
// rows are written once and only ever disappear through the task delete
// cascade.
package sqlite

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/capsules/pkg/types"
)

var _ types.HistoryStore = (*historyStore)(nil)

type historyStore struct {
	store *Store
}

const historyColumns = `history_id, task_id, capsule_id, user_id, organization_id,
    kind, description, timestamp`

// Append persists a history entry. When h.ID is empty a UUID v7 is
// generated; when the timestamp is zero the current time is assigned.
func (hs *historyStore) Append(h *types.HistoryEntry) (string, error) {
	if h == nil {
		return "", types.ErrInvalidData
	}
	if h.TaskID == "" || h.CapsuleID == "" || h.UserID == "" {
		return "", types.ErrInvalidData
	}

	q, err := hs.store.conn()
	if err != nil {
		return "", err
	}

	if h.ID == "" {
		h.ID = generateID()
	}
	if h.Timestamp.IsZero() {
		h.Timestamp = time.Now().UTC()
	}

	_, err = q.Exec(
		"INSERT INTO task_history ("+historyColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		h.ID, h.TaskID, h.CapsuleID, h.UserID, h.OrganizationID,
		h.Kind, h.Description, formatTime(h.Timestamp),
	)
	if err != nil {
		return "", fmt.Errorf("appending history entry: %w", err)
	}
	return h.ID, nil
}

// ListByTask returns all entries for the task ordered newest-first, each
// with the acting user attached.
func (hs *historyStore) ListByTask(taskID string) ([]*types.HistoryEntry, error) {
	if taskID == "" {
		return nil, types.ErrInvalidID
	}

	q, err := hs.store.conn()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(
		`SELECT h.history_id, h.task_id, h.capsule_id, h.user_id, h.organization_id,
                h.kind, h.description, h.timestamp,
                u.user_id, u.email, u.display_name, u.organization_id, u.created_at
         FROM task_history h
         INNER JOIN users u ON u.user_id = h.user_id
         WHERE h.task_id = ?
         ORDER BY h.timestamp DESC, h.history_id DESC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing history for task %s: %w", taskID, err)
	}
	defer rows.Close()

	var entries []*types.HistoryEntry
	for rows.Next() {
		var h types.HistoryEntry
		var u types.User
		var timestamp, userCreatedAt string

		err := rows.Scan(
			&h.ID, &h.TaskID, &h.CapsuleID, &h.UserID, &h.OrganizationID,
			&h.Kind, &h.Description, &timestamp,
			&u.ID, &u.Email, &u.DisplayName, &u.OrganizationID, &userCreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("hydrating history entry: %w", err)
		}
		if h.Timestamp, err = parseTime(timestamp); err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		if u.CreatedAt, err = parseTime(userCreatedAt); err != nil {
			return nil, fmt.Errorf("parsing user created_at: %w", err)
		}
		h.User = &u
		entries = append(entries, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*types.HistoryEntry{}
	}
	return entries, nil
}
