package types

import "time"

// Task statuses. Status is stored as a free-form label but the engine only
// ever writes one of these three values.
const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// DefaultPriority is assigned to tasks created without an explicit priority.
const DefaultPriority = "Medium"

// Task represents a work item inside a capsule. A task with a non-nil
// ParentID is a subtask of that parent. Blockers are tasks that must reach
// StatusCompleted before this task may be completed; Dependents is the
// inverse edge (tasks that list this task as one of their blockers).
//
// Relation slices are populated by TaskStore.Get one level deep: related
// tasks carry scalar fields only, with empty relation slices of their own.
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	IsCompleted   bool       `json:"isCompleted"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	StartDate     *time.Time `json:"startDate,omitempty"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`

	CapsuleID      string  `json:"capsuleId"`
	OrganizationID string  `json:"organizationId"`
	ParentID       *string `json:"parentId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Parent        *Task   `json:"parent,omitempty"`
	Subtasks      []*Task `json:"subtasks,omitempty"`
	Blockers      []*Task `json:"blockers,omitempty"`
	Dependents    []*Task `json:"dependents,omitempty"`
	AssignedUsers []*User `json:"assignedUsers,omitempty"`
	Tags          []*Tag  `json:"tags,omitempty"`
}

// IsSubtask reports whether the task has a parent.
func (t *Task) IsSubtask() bool {
	return t.ParentID != nil && *t.ParentID != ""
}

// MarkCompleted sets the completion triple to the completed state:
// IsCompleted true, status Completed, CompletedDate at the given time.
func (t *Task) MarkCompleted(at time.Time) {
	t.IsCompleted = true
	t.Status = StatusCompleted
	t.CompletedDate = &at
	t.UpdatedAt = at
}

// MarkInProgress sets the completion triple to the incomplete state.
// The status label collapses to In Progress; a reverted task never goes
// back to To Do.
func (t *Task) MarkInProgress(at time.Time) {
	t.IsCompleted = false
	t.Status = StatusInProgress
	t.CompletedDate = nil
	t.UpdatedAt = at
}

// CompletionCoherent reports whether IsCompleted, Status, and CompletedDate
// agree. The three fields must never diverge: a completed task has status
// Completed and a completion date, an incomplete task has neither.
func (t *Task) CompletionCoherent() bool {
	if t.IsCompleted {
		return t.Status == StatusCompleted && t.CompletedDate != nil
	}
	return t.Status != StatusCompleted && t.CompletedDate == nil
}

// BlockerIDs returns the IDs of the loaded blocker set.
func (t *Task) BlockerIDs() []string {
	return taskIDs(t.Blockers)
}

// AssignedUserIDs returns the IDs of the loaded assignee set.
func (t *Task) AssignedUserIDs() []string {
	ids := make([]string, len(t.AssignedUsers))
	for i, u := range t.AssignedUsers {
		ids[i] = u.ID
	}
	return ids
}

// TagIDs returns the IDs of the loaded tag set.
func (t *Task) TagIDs() []string {
	ids := make([]string, len(t.Tags))
	for i, tg := range t.Tags {
		ids[i] = tg.ID
	}
	return ids
}

func taskIDs(tasks []*Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
