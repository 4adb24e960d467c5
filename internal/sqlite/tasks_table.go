// Task table accessor for the SQLite store. Each read hydrates rows into
// *types.Task structs with their relation sets; each write replaces the
// scalar row and the blocker/assignee/tag join rows inside one transaction.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/capsules/pkg/types"
)

var _ types.TaskStore = (*taskStore)(nil)

type taskStore struct {
	store *Store
}

// taskColumns is the scalar column list shared by every task query.
const taskColumns = `task_id, title, description, status, priority, is_completed,
    due_date, start_date, completed_date, capsule_id, organization_id, parent_id,
    created_at, updated_at`

// Get retrieves a task with its full relation set: parent, subtasks,
// blockers, dependents, assigned users, and tags. Related tasks are
// shallow (scalar fields only). Returns ErrNotFound for unknown IDs.
func (ts *taskStore) Get(id string) (*types.Task, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}

	q, err := ts.store.conn()
	if err != nil {
		return nil, err
	}

	task, err := scanTask(q.QueryRow(
		"SELECT "+taskColumns+" FROM tasks WHERE task_id = ?", id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}

	if err := hydrateRelations(q, task); err != nil {
		return nil, fmt.Errorf("hydrating relations for task %s: %w", id, err)
	}
	return task, nil
}

// Create persists a new task and its relation rows. When t.ID is empty a
// UUID v7 is generated. Empty status and priority get the creation
// defaults.
func (ts *taskStore) Create(t *types.Task) (string, error) {
	if t == nil {
		return "", types.ErrInvalidData
	}
	if t.Title == "" {
		return "", types.ErrInvalidTitle
	}

	now := time.Now().UTC()
	if t.ID == "" {
		t.ID = generateID()
	}
	if t.Status == "" {
		t.Status = types.StatusToDo
	}
	if t.Priority == "" {
		t.Priority = types.DefaultPriority
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	err := ts.store.Atomic(func(s types.Store) error {
		q, err := s.(*Store).conn()
		if err != nil {
			return err
		}

		var parentID any
		if t.IsSubtask() {
			parentID = *t.ParentID
		}
		_, err = q.Exec(
			`INSERT INTO tasks (`+taskColumns+`)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Title, t.Description, t.Status, t.Priority, t.IsCompleted,
			nullTime(t.DueDate), nullTime(t.StartDate), nullTime(t.CompletedDate),
			t.CapsuleID, t.OrganizationID, parentID,
			formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("inserting task: %w", err)
		}
		return replaceRelations(q, t)
	})
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

// Update persists the task's scalar fields and replaces its blocker,
// assignee, and tag sets. Returns ErrNotFound if the task does not exist.
func (ts *taskStore) Update(t *types.Task) error {
	if t == nil {
		return types.ErrInvalidData
	}
	if t.ID == "" {
		return types.ErrInvalidID
	}
	if t.Title == "" {
		return types.ErrInvalidTitle
	}

	return ts.store.Atomic(func(s types.Store) error {
		q, err := s.(*Store).conn()
		if err != nil {
			return err
		}

		var parentID any
		if t.IsSubtask() {
			parentID = *t.ParentID
		}
		res, err := q.Exec(
			`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?,
                 is_completed = ?, due_date = ?, start_date = ?, completed_date = ?,
                 capsule_id = ?, organization_id = ?, parent_id = ?, updated_at = ?
             WHERE task_id = ?`,
			t.Title, t.Description, t.Status, t.Priority, t.IsCompleted,
			nullTime(t.DueDate), nullTime(t.StartDate), nullTime(t.CompletedDate),
			t.CapsuleID, t.OrganizationID, parentID, formatTime(t.UpdatedAt),
			t.ID,
		)
		if err != nil {
			return fmt.Errorf("updating task: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking update result: %w", err)
		}
		if n == 0 {
			return types.ErrNotFound
		}
		return replaceRelations(q, t)
	})
}

// Delete removes a task. Subtasks, join rows, and history entries go with
// the foreign-key cascade. Returns ErrNotFound if the task does not exist.
func (ts *taskStore) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}

	q, err := ts.store.conn()
	if err != nil {
		return err
	}

	res, err := q.Exec("DELETE FROM tasks WHERE task_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// Exists reports whether a task with the given ID exists.
func (ts *taskStore) Exists(id string) (bool, error) {
	if id == "" {
		return false, types.ErrInvalidID
	}

	q, err := ts.store.conn()
	if err != nil {
		return false, err
	}

	var one int
	err = q.QueryRow("SELECT 1 FROM tasks WHERE task_id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking task existence: %w", err)
	}
	return true, nil
}

// ListByCapsule returns the top-level tasks of a capsule, newest-first.
func (ts *taskStore) ListByCapsule(capsuleID string) ([]*types.Task, error) {
	if capsuleID == "" {
		return nil, types.ErrInvalidID
	}

	q, err := ts.store.conn()
	if err != nil {
		return nil, err
	}

	tasks, err := queryTasks(q,
		"SELECT "+taskColumns+` FROM tasks
         WHERE capsule_id = ? AND parent_id IS NULL
         ORDER BY created_at DESC`, capsuleID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks for capsule %s: %w", capsuleID, err)
	}

	// The query already filters on parent_id, but top-level listings must
	// never leak subtasks, so the result is filtered again here.
	topLevel := make([]*types.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsSubtask() {
			continue
		}
		topLevel = append(topLevel, t)
	}
	return topLevel, nil
}

// ListByParent returns the subtasks of the given parent, newest-first.
func (ts *taskStore) ListByParent(parentID string) ([]*types.Task, error) {
	if parentID == "" {
		return nil, types.ErrInvalidID
	}

	q, err := ts.store.conn()
	if err != nil {
		return nil, err
	}

	tasks, err := queryTasks(q,
		"SELECT "+taskColumns+` FROM tasks
         WHERE parent_id = ? ORDER BY created_at DESC`, parentID)
	if err != nil {
		return nil, fmt.Errorf("listing subtasks of %s: %w", parentID, err)
	}
	return tasks, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask hydrates one task row into a *types.Task.
func scanTask(row rowScanner) (*types.Task, error) {
	var t types.Task
	var description, parentID sql.NullString
	var dueDate, startDate, completedDate sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&t.ID, &t.Title, &description, &t.Status, &t.Priority, &t.IsCompleted,
		&dueDate, &startDate, &completedDate,
		&t.CapsuleID, &t.OrganizationID, &parentID,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Description = description.String
	if parentID.Valid {
		p := parentID.String
		t.ParentID = &p
	}
	if t.DueDate, err = scanNullTime(dueDate); err != nil {
		return nil, fmt.Errorf("parsing due_date: %w", err)
	}
	if t.StartDate, err = scanNullTime(startDate); err != nil {
		return nil, fmt.Errorf("parsing start_date: %w", err)
	}
	if t.CompletedDate, err = scanNullTime(completedDate); err != nil {
		return nil, fmt.Errorf("parsing completed_date: %w", err)
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &t, nil
}

// queryTasks runs a task query and hydrates every row shallowly.
func queryTasks(q querier, query string, args ...any) ([]*types.Task, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*types.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []*types.Task{}
	}
	return tasks, nil
}

// hydrateRelations loads the parent, subtasks, blockers, dependents,
// assignees, and tags of a task, one level deep.
func hydrateRelations(q querier, t *types.Task) error {
	if t.IsSubtask() {
		parent, err := scanTask(q.QueryRow(
			"SELECT "+taskColumns+" FROM tasks WHERE task_id = ?", *t.ParentID,
		))
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("loading parent: %w", err)
		}
		t.Parent = parent
	}

	var err error
	t.Subtasks, err = queryTasks(q,
		"SELECT "+taskColumns+" FROM tasks WHERE parent_id = ? ORDER BY created_at DESC", t.ID)
	if err != nil {
		return fmt.Errorf("loading subtasks: %w", err)
	}

	t.Blockers, err = queryTasks(q,
		"SELECT "+qualifiedTaskColumns+` FROM tasks
         INNER JOIN task_blockers tb ON tb.blocker_id = tasks.task_id
         WHERE tb.task_id = ? ORDER BY tasks.created_at ASC`, t.ID)
	if err != nil {
		return fmt.Errorf("loading blockers: %w", err)
	}

	t.Dependents, err = queryTasks(q,
		"SELECT "+qualifiedTaskColumns+` FROM tasks
         INNER JOIN task_blockers tb ON tb.task_id = tasks.task_id
         WHERE tb.blocker_id = ? ORDER BY tasks.created_at ASC`, t.ID)
	if err != nil {
		return fmt.Errorf("loading dependents: %w", err)
	}

	t.AssignedUsers, err = queryUsers(q,
		"SELECT "+qualifiedUserColumns+` FROM users
         INNER JOIN task_assignees ta ON ta.user_id = users.user_id
         WHERE ta.task_id = ? ORDER BY users.created_at ASC`, t.ID)
	if err != nil {
		return fmt.Errorf("loading assignees: %w", err)
	}

	t.Tags, err = queryTags(q,
		"SELECT "+qualifiedTagColumns+` FROM tags
         INNER JOIN task_tags tt ON tt.tag_id = tags.tag_id
         WHERE tt.task_id = ? ORDER BY tags.created_at ASC`, t.ID)
	if err != nil {
		return fmt.Errorf("loading tags: %w", err)
	}

	return nil
}

// qualifiedTaskColumns is taskColumns with the tasks. prefix, for joins.
const qualifiedTaskColumns = `tasks.task_id, tasks.title, tasks.description,
    tasks.status, tasks.priority, tasks.is_completed, tasks.due_date,
    tasks.start_date, tasks.completed_date, tasks.capsule_id,
    tasks.organization_id, tasks.parent_id, tasks.created_at, tasks.updated_at`

// replaceRelations rewrites the blocker, assignee, and tag join rows of a
// task from its loaded relation slices.
func replaceRelations(q querier, t *types.Task) error {
	if _, err := q.Exec("DELETE FROM task_blockers WHERE task_id = ?", t.ID); err != nil {
		return fmt.Errorf("clearing blockers: %w", err)
	}
	for _, b := range t.Blockers {
		if _, err := q.Exec(
			"INSERT INTO task_blockers (task_id, blocker_id) VALUES (?, ?)",
			t.ID, b.ID,
		); err != nil {
			return fmt.Errorf("inserting blocker %s: %w", b.ID, err)
		}
	}

	if _, err := q.Exec("DELETE FROM task_assignees WHERE task_id = ?", t.ID); err != nil {
		return fmt.Errorf("clearing assignees: %w", err)
	}
	for _, u := range t.AssignedUsers {
		if _, err := q.Exec(
			"INSERT INTO task_assignees (task_id, user_id) VALUES (?, ?)",
			t.ID, u.ID,
		); err != nil {
			return fmt.Errorf("inserting assignee %s: %w", u.ID, err)
		}
	}

	if _, err := q.Exec("DELETE FROM task_tags WHERE task_id = ?", t.ID); err != nil {
		return fmt.Errorf("clearing tags: %w", err)
	}
	for _, tg := range t.Tags {
		if _, err := q.Exec(
			"INSERT INTO task_tags (task_id, tag_id) VALUES (?, ?)",
			t.ID, tg.ID,
		); err != nil {
			return fmt.Errorf("inserting tag %s: %w", tg.ID, err)
		}
	}

	return nil
}
