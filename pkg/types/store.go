package types

import "errors"

// Store is the backend-agnostic storage interface consumed by the engine.
// Callers attach a backend, use the per-entity stores, and detach when done.
type Store interface {
	Tasks() TaskStore
	Capsules() CapsuleStore
	Users() UserStore
	Organizations() OrganizationStore
	Tags() TagStore
	History() HistoryStore

	// Atomic runs fn against a store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back when it
	// returns an error. Nested Atomic calls join the enclosing transaction.
	Atomic(fn func(Store) error) error

	// Attach connects the store to the backend described by config.
	// Creates the data directory if needed. Returns ErrAlreadyAttached
	// when called on an attached store.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent. After Detach,
	// operations return ErrStoreDetached.
	Detach() error
}

// TaskStore persists tasks and their relation sets.
type TaskStore interface {
	// Get retrieves a task with its full relation set: parent, subtasks,
	// blockers, dependents (shallow tasks), assigned users, and tags.
	// Returns ErrNotFound if no task exists with that ID.
	Get(id string) (*Task, error)

	// Create persists a new task. When t.ID is empty a UUID v7 is
	// generated; the assigned ID is returned. Blocker, assignee, and tag
	// relations are written from the loaded relation slices.
	Create(t *Task) (string, error)

	// Update persists the task's scalar fields and replaces its blocker,
	// assignee, and tag sets from the relation slices.
	// Returns ErrNotFound if the task does not exist.
	Update(t *Task) error

	// Delete removes the task. Subtasks, history entries, and relation
	// rows go with the foreign-key cascade.
	// Returns ErrNotFound if the task does not exist.
	Delete(id string) error

	// Exists reports whether a task with the given ID exists.
	Exists(id string) (bool, error)

	// ListByCapsule returns the top-level tasks of a capsule (tasks with
	// no parent), newest-first.
	ListByCapsule(capsuleID string) ([]*Task, error)

	// ListByParent returns the subtasks of the given parent, newest-first.
	ListByParent(parentID string) ([]*Task, error)
}

// CapsuleStore persists capsules.
type CapsuleStore interface {
	// Get returns the capsule or ErrNotFound.
	Get(id string) (*Capsule, error)
	Create(c *Capsule) (string, error)
	ListByOrganization(orgID string) ([]*Capsule, error)
}

// UserStore persists users.
type UserStore interface {
	// Get returns the user or ErrNotFound.
	Get(id string) (*User, error)

	// GetByIDs returns the users that exist among the given IDs, in input
	// order. Unresolvable IDs are omitted, not errors; callers that need
	// to know about them compare lengths.
	GetByIDs(ids []string) ([]*User, error)

	Create(u *User) (string, error)
	ListByOrganization(orgID string) ([]*User, error)
}

// OrganizationStore persists organizations.
type OrganizationStore interface {
	// Get returns the organization or ErrNotFound.
	Get(id string) (*Organization, error)
	Create(o *Organization) (string, error)
}

// TagStore persists tags.
type TagStore interface {
	// GetByIDs returns the tags that exist among the given IDs, in input
	// order, omitting unresolvable IDs.
	GetByIDs(ids []string) ([]*Tag, error)
	Create(t *Tag) (string, error)
	ListByOrganization(orgID string) ([]*Tag, error)
}

// HistoryStore persists task history. Append-only: there is no update or
// delete operation.
type HistoryStore interface {
	// Append persists a history entry. When h.ID is empty a UUID v7 is
	// generated; the assigned ID is returned.
	Append(h *HistoryEntry) (string, error)

	// ListByTask returns all entries for the task ordered newest-first,
	// with the acting user attached to each entry.
	ListByTask(taskID string) ([]*HistoryEntry, error)
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Entity operation errors.
var (
	ErrNotFound     = errors.New("entity not found")
	ErrInvalidID    = errors.New("invalid entity ID")
	ErrInvalidData  = errors.New("invalid entity data")
	ErrInvalidTitle = errors.New("title must not be empty")
)
