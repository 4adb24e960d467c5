// Tag table accessor for the SQLite store.
package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/capsules/pkg/types"
)

var _ types.TagStore = (*tagStore)(nil)

type tagStore struct {
	store *Store
}

const tagColumns = `tag_id, name, organization_id, created_at`

// qualifiedTagColumns is tagColumns with the tags. prefix, for joins.
const qualifiedTagColumns = `tags.tag_id, tags.name, tags.organization_id, tags.created_at`

// GetByIDs returns the tags that exist among the given IDs, in input
// order. Unresolvable IDs are omitted.
func (ts *tagStore) GetByIDs(ids []string) ([]*types.Tag, error) {
	if len(ids) == 0 {
		return []*types.Tag{}, nil
	}

	q, err := ts.store.conn()
	if err != nil {
		return nil, err
	}

	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	found, err := queryTags(q,
		"SELECT "+tagColumns+" FROM tags WHERE tag_id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("getting tags by IDs: %w", err)
	}

	return orderByRequest(ids, found, func(t *types.Tag) string { return t.ID }), nil
}

// Create persists a new tag. When t.ID is empty a UUID v7 is generated.
func (ts *tagStore) Create(t *types.Tag) (string, error) {
	if t == nil {
		return "", types.ErrInvalidData
	}
	if t.Name == "" {
		return "", types.ErrInvalidData
	}

	q, err := ts.store.conn()
	if err != nil {
		return "", err
	}

	if t.ID == "" {
		t.ID = generateID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err = q.Exec(
		"INSERT INTO tags ("+tagColumns+") VALUES (?, ?, ?, ?)",
		t.ID, t.Name, t.OrganizationID, formatTime(t.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("inserting tag: %w", err)
	}
	return t.ID, nil
}

// ListByOrganization returns all tags of an organization.
func (ts *tagStore) ListByOrganization(orgID string) ([]*types.Tag, error) {
	if orgID == "" {
		return nil, types.ErrInvalidID
	}

	q, err := ts.store.conn()
	if err != nil {
		return nil, err
	}

	tags, err := queryTags(q,
		"SELECT "+tagColumns+" FROM tags WHERE organization_id = ? ORDER BY created_at ASC", orgID)
	if err != nil {
		return nil, fmt.Errorf("listing tags for organization %s: %w", orgID, err)
	}
	return tags, nil
}

func scanTag(row rowScanner) (*types.Tag, error) {
	var t types.Tag
	var createdAt string
	if err := row.Scan(&t.ID, &t.Name, &t.OrganizationID, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &t, nil
}

func queryTags(q querier, query string, args ...any) ([]*types.Tag, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*types.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []*types.Tag{}
	}
	return tags, nil
}
