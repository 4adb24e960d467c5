// Task mutation service: create, field-update, and delete orchestration
// that maintains relation invariants and produces audit trails for every
// consequential change.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/capsules/pkg/types"
)

// CreateTaskInput carries the fields of a task creation request.
type CreateTaskInput struct {
	Title       string
	Description string
	CapsuleID   string
	Status      string
	Priority    string
	DueDate     *time.Time
	StartDate   *time.Time

	// ParentID, when set, makes the new task a subtask. The parent must
	// exist and live in the same capsule.
	ParentID *string

	AssignedUserIDs []string
	BlockerIDs      []string
	TagIDs          []string
}

// UpdateTaskInput carries a partial update: nil fields are left unchanged.
// For the relation slices, nil means unchanged and an empty slice clears
// the set. The completion triple is engine-owned; a Status change crossing
// the Completed boundary is delegated to the completion transition.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	StartDate   *time.Time

	AssignedUserIDs []string
	BlockerIDs      []string
	TagIDs          []string
}

// CreateTask creates a task in the given capsule on behalf of the acting
// user. The capsule, the organization, and the parent (when given) must
// resolve, else ErrNotFound. Unresolvable blocker, assignee, and tag IDs
// are dropped and reported, not errors. A taskCreated entry is written,
// plus a subtaskCreated mirror on the parent for subtasks.
func (s *Service) CreateTask(in CreateTaskInput, userID, organizationID string) (*types.Task, *DropReport, error) {
	var created *types.Task
	report := &DropReport{}

	err := s.store.Atomic(func(st types.Store) error {
		if _, err := st.Capsules().Get(in.CapsuleID); err != nil {
			return fmt.Errorf("capsule %s: %w", in.CapsuleID, err)
		}
		if _, err := st.Organizations().Get(organizationID); err != nil {
			return fmt.Errorf("organization %s: %w", organizationID, err)
		}

		task := &types.Task{
			Title:          in.Title,
			Description:    in.Description,
			Status:         in.Status,
			Priority:       in.Priority,
			DueDate:        in.DueDate,
			StartDate:      in.StartDate,
			CapsuleID:      in.CapsuleID,
			OrganizationID: organizationID,
		}

		if in.ParentID != nil && *in.ParentID != "" {
			parent, err := st.Tasks().Get(*in.ParentID)
			if err != nil {
				return fmt.Errorf("parent task %s: %w", *in.ParentID, err)
			}
			if parent.CapsuleID != in.CapsuleID {
				return ErrParentCapsuleMismatch
			}
			task.ParentID = in.ParentID
		}

		var err error
		task.AssignedUsers, err = st.Users().GetByIDs(in.AssignedUserIDs)
		if err != nil {
			return fmt.Errorf("resolving assignees: %w", err)
		}
		report.AssigneeIDs = missingIDs(in.AssignedUserIDs, userIDsOf(task.AssignedUsers))

		task.Blockers, report.BlockerIDs, err = resolveBlockers(st, in.BlockerIDs)
		if err != nil {
			return err
		}

		task.Tags, err = st.Tags().GetByIDs(in.TagIDs)
		if err != nil {
			return fmt.Errorf("resolving tags: %w", err)
		}
		report.TagIDs = missingIDs(in.TagIDs, tagIDsOf(task.Tags))

		// A create arriving with status Completed gets the coherent triple
		// rather than a divergent isCompleted=false row.
		if task.Status == types.StatusCompleted {
			task.MarkCompleted(time.Now().UTC())
		}

		id, err := st.Tasks().Create(task)
		if err != nil {
			return err
		}

		desc := fmt.Sprintf("task %q created", task.Title)
		if _, err := recordHistory(st, id, task.CapsuleID, userID, types.KindTaskCreated, desc); err != nil {
			return err
		}
		if task.IsSubtask() {
			desc := fmt.Sprintf("subtask %q (%s) created", task.Title, id)
			if _, err := recordHistory(st, *task.ParentID, task.CapsuleID, userID, types.KindSubtaskCreated, desc); err != nil {
				return err
			}
		}

		created, err = st.Tasks().Get(id)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return created, report, nil
}

// UpdateTask applies a partial update to a task, recording a typed
// field-level diff. Assignee, blocker, and tag sets are compared as sorted
// ID sets and only replaced on true deltas. A non-empty diff produces one
// taskUpdated entry (and a subtaskUpdated mirror for subtasks).
//
// A Status change that crosses the Completed boundary runs the completion
// transition instead of a plain label write: preconditions apply and a
// refusal fails the whole update with *PreconditionError, leaving nothing
// persisted. The completion entries audit that part of the change, so the
// status field is kept out of the generic diff in that case.
func (s *Service) UpdateTask(id string, in UpdateTaskInput, userID string) (*types.Task, *DropReport, error) {
	var updated *types.Task
	report := &DropReport{}

	err := s.store.Atomic(func(st types.Store) error {
		task, err := st.Tasks().Get(id)
		if err != nil {
			return err
		}

		var diff TaskDiff

		if in.Title != nil {
			diff.Record(FieldTitle, task.Title, *in.Title)
			task.Title = *in.Title
		}
		if in.Description != nil {
			diff.Record(FieldDescription, task.Description, *in.Description)
			task.Description = *in.Description
		}
		if in.Priority != nil {
			diff.Record(FieldPriority, task.Priority, *in.Priority)
			task.Priority = *in.Priority
		}
		if in.DueDate != nil {
			diff.RecordTime(FieldDueDate, task.DueDate, in.DueDate)
			task.DueDate = in.DueDate
		}
		if in.StartDate != nil {
			diff.RecordTime(FieldStartDate, task.StartDate, in.StartDate)
			task.StartDate = in.StartDate
		}

		if in.AssignedUserIDs != nil {
			users, err := st.Users().GetByIDs(in.AssignedUserIDs)
			if err != nil {
				return fmt.Errorf("resolving assignees: %w", err)
			}
			report.AssigneeIDs = missingIDs(in.AssignedUserIDs, userIDsOf(users))
			diff.RecordIDSet(FieldAssignedUsers, task.AssignedUserIDs(), userIDsOf(users))
			task.AssignedUsers = users
		}
		if in.BlockerIDs != nil {
			blockers, dropped, err := resolveBlockers(st, in.BlockerIDs)
			if err != nil {
				return err
			}
			report.BlockerIDs = dropped
			diff.RecordIDSet(FieldBlockers, task.BlockerIDs(), taskIDsOf(blockers))
			task.Blockers = blockers
		}
		if in.TagIDs != nil {
			tags, err := st.Tags().GetByIDs(in.TagIDs)
			if err != nil {
				return fmt.Errorf("resolving tags: %w", err)
			}
			report.TagIDs = missingIDs(in.TagIDs, tagIDsOf(tags))
			diff.RecordIDSet(FieldTags, task.TagIDs(), tagIDsOf(tags))
			task.Tags = tags
		}

		// Status: a plain label move (To Do <-> In Progress) is a diffed
		// field write; crossing the Completed boundary is a completion
		// transition handled after the row is saved. Checked after the
		// relation updates so the preconditions see the new blocker set.
		var wantCompletion *bool
		if in.Status != nil && *in.Status != task.Status {
			switch {
			case *in.Status == types.StatusCompleted && !task.IsCompleted:
				if rejected := checkCompletable(task); rejected != nil {
					return &PreconditionError{
						Reason:   rejected.Reason,
						Blockers: rejected.Blockers,
						Subtasks: rejected.Subtasks,
					}
				}
				wantCompletion = boolPtr(true)
			case task.IsCompleted && *in.Status != types.StatusCompleted:
				wantCompletion = boolPtr(false)
			default:
				diff.Record(FieldStatus, task.Status, *in.Status)
				task.Status = *in.Status
			}
		}

		task.UpdatedAt = time.Now().UTC()
		if err := st.Tasks().Update(task); err != nil {
			return err
		}

		if !diff.Empty() {
			payload, err := diff.Payload()
			if err != nil {
				return err
			}
			if _, err := recordHistory(st, task.ID, task.CapsuleID, userID, types.KindTaskUpdated, payload); err != nil {
				return err
			}
			if task.IsSubtask() {
				if _, err := recordHistory(st, *task.ParentID, task.CapsuleID, userID, types.KindSubtaskUpdated, payload); err != nil {
					return err
				}
			}
		}

		if wantCompletion != nil {
			if err := applyCompletion(st, task, *wantCompletion, userID); err != nil {
				return err
			}
		}

		updated, err = st.Tasks().Get(task.ID)
		return err
	})
	if err != nil {
		var pre *PreconditionError
		if errors.As(err, &pre) {
			return nil, nil, pre
		}
		return nil, nil, err
	}
	return updated, report, nil
}

// DeleteTask removes a task and its subtasks. The taskDeleted entry (and
// the subtaskDeleted mirror on the parent) is written while the task and
// its capsule are still resolvable; the entry on the task itself then goes
// with the delete cascade, so the mirror is the durable audit for
// subtasks.
func (s *Service) DeleteTask(id string, userID string) error {
	return s.store.Atomic(func(st types.Store) error {
		task, err := st.Tasks().Get(id)
		if err != nil {
			return err
		}

		desc := fmt.Sprintf("task %q deleted", task.Title)
		if _, err := recordHistory(st, task.ID, task.CapsuleID, userID, types.KindTaskDeleted, desc); err != nil {
			return err
		}
		if task.IsSubtask() {
			desc := fmt.Sprintf("subtask %q (%s) deleted", task.Title, task.ID)
			if _, err := recordHistory(st, *task.ParentID, task.CapsuleID, userID, types.KindSubtaskDeleted, desc); err != nil {
				return err
			}
		}

		return st.Tasks().Delete(task.ID)
	})
}

// resolveBlockers loads the existing tasks among the given IDs, reporting
// the unresolvable ones. Blocker IDs that do not resolve are dropped, not
// errors.
func resolveBlockers(st types.Store, ids []string) ([]*types.Task, []string, error) {
	blockers := make([]*types.Task, 0, len(ids))
	var dropped []string
	for _, id := range ids {
		b, err := st.Tasks().Get(id)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				dropped = append(dropped, id)
				continue
			}
			return nil, nil, fmt.Errorf("resolving blocker %s: %w", id, err)
		}
		blockers = append(blockers, b)
	}
	return blockers, dropped, nil
}

func userIDsOf(users []*types.User) []string {
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

func tagIDsOf(tags []*types.Tag) []string {
	ids := make([]string, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}

func taskIDsOf(tasks []*types.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

func boolPtr(b bool) *bool { return &b }
