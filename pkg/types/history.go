package types

import "time"

// History event kinds. Task-level kinds describe a change on the task
// itself; subtask-level kinds are mirrored onto the parent when the changed
// task is a subtask.
const (
	KindTaskCreated       = "taskCreated"
	KindTaskUpdated       = "taskUpdated"
	KindTaskDeleted       = "taskDeleted"
	KindTaskCompleted     = "taskCompleted"
	KindTaskInProgress    = "taskInProgress"
	KindSubtaskCreated    = "subtaskCreated"
	KindSubtaskUpdated    = "subtaskUpdated"
	KindSubtaskDeleted    = "subtaskDeleted"
	KindSubtaskCompleted  = "subtaskCompleted"
	KindSubtaskInProgress = "subtaskInProgress"
)

// HistoryEntry is an immutable audit record of one task state change.
// Entries are created only as side effects of task mutations and are never
// updated; the only way a row disappears is the delete cascade of its task.
type HistoryEntry struct {
	ID             string    `json:"id"`
	TaskID         string    `json:"taskId"`
	CapsuleID      string    `json:"capsuleId"`
	UserID         string    `json:"userId"`
	OrganizationID string    `json:"organizationId"`
	Kind           string    `json:"kind"`
	Description    string    `json:"description"`
	Timestamp      time.Time `json:"timestamp"`

	// User is the acting user, attached on reads.
	User *User `json:"user,omitempty"`
}
