// Capsule table accessor for the SQLite store.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/capsules/pkg/types"
)

var _ types.CapsuleStore = (*capsuleStore)(nil)

type capsuleStore struct {
	store *Store
}

const capsuleColumns = `capsule_id, title, description, due_date, new_due_date,
    owner_id, organization_id, created_at`

// Get returns the capsule with the given ID, or ErrNotFound.
func (cs *capsuleStore) Get(id string) (*types.Capsule, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}

	q, err := cs.store.conn()
	if err != nil {
		return nil, err
	}

	c, err := scanCapsule(q.QueryRow(
		"SELECT "+capsuleColumns+" FROM capsules WHERE capsule_id = ?", id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting capsule %s: %w", id, err)
	}
	return c, nil
}

// Create persists a new capsule. When c.ID is empty a UUID v7 is generated.
func (cs *capsuleStore) Create(c *types.Capsule) (string, error) {
	if c == nil {
		return "", types.ErrInvalidData
	}
	if c.Title == "" {
		return "", types.ErrInvalidTitle
	}

	q, err := cs.store.conn()
	if err != nil {
		return "", err
	}

	if c.ID == "" {
		c.ID = generateID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err = q.Exec(
		"INSERT INTO capsules ("+capsuleColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.Title, c.Description, nullTime(c.DueDate), nullTime(c.NewDueDate),
		c.OwnerID, c.OrganizationID, formatTime(c.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("inserting capsule: %w", err)
	}
	return c.ID, nil
}

// ListByOrganization returns all capsules of an organization, newest-first.
func (cs *capsuleStore) ListByOrganization(orgID string) ([]*types.Capsule, error) {
	if orgID == "" {
		return nil, types.ErrInvalidID
	}

	q, err := cs.store.conn()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(
		"SELECT "+capsuleColumns+" FROM capsules WHERE organization_id = ? ORDER BY created_at DESC", orgID)
	if err != nil {
		return nil, fmt.Errorf("listing capsules for organization %s: %w", orgID, err)
	}
	defer rows.Close()

	var capsules []*types.Capsule
	for rows.Next() {
		c, err := scanCapsule(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating capsule: %w", err)
		}
		capsules = append(capsules, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if capsules == nil {
		capsules = []*types.Capsule{}
	}
	return capsules, nil
}

func scanCapsule(row rowScanner) (*types.Capsule, error) {
	var c types.Capsule
	var description sql.NullString
	var dueDate, newDueDate sql.NullString
	var createdAt string

	err := row.Scan(&c.ID, &c.Title, &description, &dueDate, &newDueDate,
		&c.OwnerID, &c.OrganizationID, &createdAt)
	if err != nil {
		return nil, err
	}

	c.Description = description.String
	if c.DueDate, err = scanNullTime(dueDate); err != nil {
		return nil, fmt.Errorf("parsing due_date: %w", err)
	}
	if c.NewDueDate, err = scanNullTime(newDueDate); err != nil {
		return nil, fmt.Errorf("parsing new_due_date: %w", err)
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &c, nil
}
