// Package engine implements the task lifecycle engine: completion-state
// transitions with cross-task propagation, mutation orchestration with
// referential invariants, and audit history recording.
//
// The engine is storage-agnostic and runs every multi-entity cascade inside
// a single Store.Atomic call, so a failed cascade never leaves a partial
// state or a history entry describing a change that did not persist.
package engine

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/capsules/pkg/types"
)

// Service exposes the task lifecycle operations over a types.Store.
type Service struct {
	store types.Store
}

// NewService creates a Service on the given store. The store must already
// be attached.
func NewService(store types.Store) *Service {
	return &Service{store: store}
}

// ErrParentCapsuleMismatch is returned when a subtask names a parent from a
// different capsule.
var ErrParentCapsuleMismatch = errors.New("parent task belongs to a different capsule")

// RejectReason identifies why a completion transition was refused.
type RejectReason string

// Rejection reasons carried by CompletionResult and PreconditionError.
const (
	ReasonBlocked            RejectReason = "blocked"
	ReasonIncompleteSubtasks RejectReason = "incompleteSubtasks"
)

// TaskRef identifies a related task in a rejection, with just enough
// context for a caller to render "blocked by X, Y".
type TaskRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// CompletionResult is the outcome of a completion transition. A refused
// transition is a reported outcome, not an error: Success is false, Reason
// is set, and Blockers or Subtasks carries the offending set.
type CompletionResult struct {
	Success  bool         `json:"success"`
	Reason   RejectReason `json:"reason,omitempty"`
	Blockers []TaskRef    `json:"blockers,omitempty"`
	Subtasks []TaskRef    `json:"subtasks,omitempty"`
	Task     *types.Task  `json:"task,omitempty"`
}

// PreconditionError is the error form of a refused completion transition,
// used when the transition is requested indirectly (a field update that
// moves status across the Completed boundary). It carries the same
// blocking sets as CompletionResult so callers never lose the context.
type PreconditionError struct {
	Reason   RejectReason
	Blockers []TaskRef
	Subtasks []TaskRef
}

func (e *PreconditionError) Error() string {
	switch e.Reason {
	case ReasonBlocked:
		return fmt.Sprintf("task is blocked by %d incomplete blocker(s)", len(e.Blockers))
	case ReasonIncompleteSubtasks:
		return fmt.Sprintf("task has %d incomplete subtask(s)", len(e.Subtasks))
	default:
		return "completion precondition failed"
	}
}

// DropReport lists requested relation IDs that did not resolve to existing
// entities and were therefore dropped from the mutation. The lenient drop
// is deliberate; the report keeps it auditable.
type DropReport struct {
	AssigneeIDs []string `json:"assigneeIds,omitempty"`
	BlockerIDs  []string `json:"blockerIds,omitempty"`
	TagIDs      []string `json:"tagIds,omitempty"`
}

// Total returns the number of dropped IDs across all relation kinds.
func (r *DropReport) Total() int {
	if r == nil {
		return 0
	}
	return len(r.AssigneeIDs) + len(r.BlockerIDs) + len(r.TagIDs)
}

// ref converts a task to its rejection reference.
func ref(t *types.Task) TaskRef {
	return TaskRef{ID: t.ID, Title: t.Title, Status: t.Status}
}

// missingIDs returns the requested IDs absent from the resolved set.
func missingIDs(requested, resolved []string) []string {
	if len(requested) == len(resolved) {
		return nil
	}
	have := make(map[string]bool, len(resolved))
	for _, id := range resolved {
		have[id] = true
	}
	var missing []string
	for _, id := range requested {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
