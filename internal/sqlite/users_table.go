// User table accessor for the SQLite store.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/capsules/pkg/types"
)

var _ types.UserStore = (*userStore)(nil)

type userStore struct {
	store *Store
}

const userColumns = `user_id, email, display_name, organization_id, created_at`

// qualifiedUserColumns is userColumns with the users. prefix, for joins.
const qualifiedUserColumns = `users.user_id, users.email, users.display_name,
    users.organization_id, users.created_at`

// Get returns the user with the given ID, or ErrNotFound.
func (us *userStore) Get(id string) (*types.User, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}

	q, err := us.store.conn()
	if err != nil {
		return nil, err
	}

	u, err := scanUser(q.QueryRow(
		"SELECT "+userColumns+" FROM users WHERE user_id = ?", id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}
	return u, nil
}

// GetByIDs returns the users that exist among the given IDs, in input
// order. Unresolvable IDs are omitted.
func (us *userStore) GetByIDs(ids []string) ([]*types.User, error) {
	if len(ids) == 0 {
		return []*types.User{}, nil
	}

	q, err := us.store.conn()
	if err != nil {
		return nil, err
	}

	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	found, err := queryUsers(q,
		"SELECT "+userColumns+" FROM users WHERE user_id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("getting users by IDs: %w", err)
	}

	return orderByRequest(ids, found, func(u *types.User) string { return u.ID }), nil
}

// Create persists a new user. When u.ID is empty a UUID v7 is generated.
func (us *userStore) Create(u *types.User) (string, error) {
	if u == nil {
		return "", types.ErrInvalidData
	}

	q, err := us.store.conn()
	if err != nil {
		return "", err
	}

	if u.ID == "" {
		u.ID = generateID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err = q.Exec(
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?)",
		u.ID, u.Email, u.DisplayName, u.OrganizationID, formatTime(u.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("inserting user: %w", err)
	}
	return u.ID, nil
}

// ListByOrganization returns all users of an organization.
func (us *userStore) ListByOrganization(orgID string) ([]*types.User, error) {
	if orgID == "" {
		return nil, types.ErrInvalidID
	}

	q, err := us.store.conn()
	if err != nil {
		return nil, err
	}

	users, err := queryUsers(q,
		"SELECT "+userColumns+" FROM users WHERE organization_id = ? ORDER BY created_at ASC", orgID)
	if err != nil {
		return nil, fmt.Errorf("listing users for organization %s: %w", orgID, err)
	}
	return users, nil
}

func scanUser(row rowScanner) (*types.User, error) {
	var u types.User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.OrganizationID, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &u, nil
}

func queryUsers(q querier, query string, args ...any) ([]*types.User, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*types.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if users == nil {
		users = []*types.User{}
	}
	return users, nil
}

// orderByRequest reorders found entities to match the requested ID order,
// dropping IDs that did not resolve.
func orderByRequest[T any](ids []string, found []T, idOf func(T) string) []T {
	byID := make(map[string]T, len(found))
	for _, e := range found {
		byID[idOf(e)] = e
	}
	ordered := make([]T, 0, len(found))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			ordered = append(ordered, e)
		}
	}
	return ordered
}
