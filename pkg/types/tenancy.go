package types

import "time"

// Organization is the tenancy root. Every capsule, user, tag, and task
// belongs to exactly one organization.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is a member of an organization. Users own capsules, act on tasks,
// and appear on history entries as the acting user.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"displayName"`
	OrganizationID string    `json:"organizationId"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Capsule is a project container grouping tasks, owned by a user and scoped
// to an organization. NewDueDate holds a rescheduled due date while DueDate
// keeps the original.
type Capsule struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	NewDueDate     *time.Time `json:"newDueDate,omitempty"`
	OwnerID        string     `json:"ownerId"`
	OrganizationID string     `json:"organizationId"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Tag is an organization-scoped label attachable to tasks.
type Tag struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	OrganizationID string    `json:"organizationId"`
	CreatedAt      time.Time `json:"createdAt"`
}
