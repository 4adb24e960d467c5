// Organization table accessor for the SQLite store.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/capsules/pkg/types"
)

var _ types.OrganizationStore = (*organizationStore)(nil)

type organizationStore struct {
	store *Store
}

// Get returns the organization with the given ID, or ErrNotFound.
func (os *organizationStore) Get(id string) (*types.Organization, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}

	q, err := os.store.conn()
	if err != nil {
		return nil, err
	}

	var o types.Organization
	var createdAt string
	err = q.QueryRow(
		"SELECT organization_id, name, created_at FROM organizations WHERE organization_id = ?", id,
	).Scan(&o.ID, &o.Name, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting organization %s: %w", id, err)
	}
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &o, nil
}

// Create persists a new organization. When o.ID is empty a UUID v7 is
// generated.
func (os *organizationStore) Create(o *types.Organization) (string, error) {
	if o == nil {
		return "", types.ErrInvalidData
	}
	if o.Name == "" {
		return "", types.ErrInvalidData
	}

	q, err := os.store.conn()
	if err != nil {
		return "", err
	}

	if o.ID == "" {
		o.ID = generateID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	_, err = q.Exec(
		"INSERT INTO organizations (organization_id, name, created_at) VALUES (?, ?, ?)",
		o.ID, o.Name, formatTime(o.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("inserting organization: %w", err)
	}
	return o.ID, nil
}
