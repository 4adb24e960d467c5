// Completion propagator: validates completion preconditions, applies the
// transition, and cascades consequences to the parent and dependent tasks.
package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mesh-intelligence/capsules/pkg/types"
)

// SetCompletion transitions a task's completion state.
//
// Preconditions, checked in order: the task must exist (ErrNotFound);
// completing requires every blocker to have status Completed and every
// subtask to be completed. A failed precondition returns a non-success
// CompletionResult carrying the offending tasks, not an error.
//
// On success the completion triple is applied (status collapses to
// In Progress on revert, never back to To Do) and, when reverting,
// consequences cascade: a completed parent is forced incomplete, and every
// completed dependent is forced incomplete with a taskInProgress history
// entry naming this task. Subtasks are deliberately left alone when their
// parent reverts; the only downward constraint is the completion
// precondition. The whole cascade and its history run in one transaction.
//
// Setting the state a task is already in is a no-op that succeeds without
// touching the row or writing history.
func (s *Service) SetCompletion(taskID string, completed bool, userID string) (*CompletionResult, error) {
	var result *CompletionResult

	err := s.store.Atomic(func(st types.Store) error {
		task, err := st.Tasks().Get(taskID)
		if err != nil {
			return err
		}

		if task.IsCompleted == completed {
			result = &CompletionResult{Success: true, Task: task}
			return nil
		}

		if completed {
			if rejected := checkCompletable(task); rejected != nil {
				result = rejected
				return nil
			}
		}

		if err := applyCompletion(st, task, completed, userID); err != nil {
			return err
		}

		result = &CompletionResult{Success: true, Task: task}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// checkCompletable returns a rejection result when the task's blockers or
// subtasks forbid completion, nil otherwise. A task with no blockers and no
// subtasks is trivially completable.
func checkCompletable(task *types.Task) *CompletionResult {
	var blocked []TaskRef
	for _, b := range task.Blockers {
		if b.Status != types.StatusCompleted {
			blocked = append(blocked, ref(b))
		}
	}
	if len(blocked) > 0 {
		return &CompletionResult{Reason: ReasonBlocked, Blockers: blocked}
	}

	var incomplete []TaskRef
	for _, sub := range task.Subtasks {
		if !sub.IsCompleted {
			incomplete = append(incomplete, ref(sub))
		}
	}
	if len(incomplete) > 0 {
		return &CompletionResult{Reason: ReasonIncompleteSubtasks, Subtasks: incomplete}
	}

	return nil
}

// applyCompletion persists the transition on the task, cascades to the
// parent and dependents when reverting, and writes the history entries.
// Each row is persisted before the history entry that describes it.
func applyCompletion(st types.Store, task *types.Task, completed bool, userID string) error {
	now := time.Now().UTC()
	if completed {
		task.MarkCompleted(now)
	} else {
		task.MarkInProgress(now)
	}
	if err := st.Tasks().Update(task); err != nil {
		return fmt.Errorf("persisting task %s: %w", task.ID, err)
	}

	// A completed parent cannot coexist with an incomplete child. The
	// mirrored subtask entry written below audits the forced revert.
	if !completed && task.Parent != nil && task.Parent.IsCompleted {
		if err := forceInProgress(st, task.Parent.ID, now); err != nil {
			return fmt.Errorf("reverting parent %s: %w", task.Parent.ID, err)
		}
	}

	payload, err := completionPayload(task)
	if err != nil {
		return err
	}
	kind := types.KindTaskInProgress
	mirror := types.KindSubtaskInProgress
	if completed {
		kind = types.KindTaskCompleted
		mirror = types.KindSubtaskCompleted
	}
	if _, err := recordHistory(st, task.ID, task.CapsuleID, userID, kind, payload); err != nil {
		return err
	}
	if task.IsSubtask() {
		mirrorPayload, err := subtaskPayload(task)
		if err != nil {
			return err
		}
		if _, err := recordHistory(st, *task.ParentID, task.CapsuleID, userID, mirror, mirrorPayload); err != nil {
			return err
		}
	}

	// A completed task cannot depend on a now-incomplete blocker: force
	// every completed dependent back to In Progress.
	if !completed {
		for _, d := range task.Dependents {
			if !d.IsCompleted {
				continue
			}
			if err := forceInProgress(st, d.ID, now); err != nil {
				return fmt.Errorf("reverting dependent %s: %w", d.ID, err)
			}
			desc := fmt.Sprintf("invalidated by incomplete blocker %q (%s)", task.Title, task.ID)
			if _, err := recordHistory(st, d.ID, d.CapsuleID, userID, types.KindTaskInProgress, desc); err != nil {
				return err
			}
		}
	}

	return nil
}

// forceInProgress reloads a task and persists it as incomplete. The reload
// keeps the full relation set intact through the update.
func forceInProgress(st types.Store, taskID string, at time.Time) error {
	t, err := st.Tasks().Get(taskID)
	if err != nil {
		return err
	}
	t.MarkInProgress(at)
	return st.Tasks().Update(t)
}

// completionPayload renders the {status, completedDate} history payload.
func completionPayload(task *types.Task) (string, error) {
	data, err := json.Marshal(struct {
		Status        string     `json:"status"`
		CompletedDate *time.Time `json:"completedDate"`
	}{task.Status, task.CompletedDate})
	if err != nil {
		return "", fmt.Errorf("encoding completion payload: %w", err)
	}
	return string(data), nil
}

// subtaskPayload renders the mirrored payload written on the parent.
func subtaskPayload(task *types.Task) (string, error) {
	data, err := json.Marshal(struct {
		SubtaskID     string     `json:"subtaskId"`
		Title         string     `json:"title"`
		Status        string     `json:"status"`
		CompletedDate *time.Time `json:"completedDate"`
	}{task.ID, task.Title, task.Status, task.CompletedDate})
	if err != nil {
		return "", fmt.Errorf("encoding subtask payload: %w", err)
	}
	return string(data), nil
}
