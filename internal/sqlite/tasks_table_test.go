// Tests for the task table accessor: CRUD, relation hydration, and the
// delete cascade.
package sqlite

import (
	"errors"
	"testing"
	"time"

	"github.com/mesh-intelligence/capsules/pkg/types"
)

// createTask inserts a task with the given title and optional mutators.
func createTask(t *testing.T, s *Store, orgID, capsuleID, title string, mutate ...func(*types.Task)) string {
	t.Helper()
	task := &types.Task{
		Title:          title,
		CapsuleID:      capsuleID,
		OrganizationID: orgID,
	}
	for _, m := range mutate {
		m(task)
	}
	id, err := s.Tasks().Create(task)
	if err != nil {
		t.Fatalf("creating task %q: %v", title, err)
	}
	return id
}

func TestTaskTable_CRUD(t *testing.T) {
	s := newAttachedStore(t)
	orgID, _, capsuleID := seedTenant(t, s)

	due := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	id := createTask(t, s, orgID, capsuleID, "write the report", func(task *types.Task) {
		task.Description = "quarterly numbers"
		task.DueDate = &due
	})

	got, err := s.Tasks().Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "write the report" || got.Description != "quarterly numbers" {
		t.Errorf("scalar fields: title=%q description=%q", got.Title, got.Description)
	}
	if got.Status != types.StatusToDo {
		t.Errorf("status = %s, want creation default %s", got.Status, types.StatusToDo)
	}
	if got.Priority != types.DefaultPriority {
		t.Errorf("priority = %s, want creation default %s", got.Priority, types.DefaultPriority)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("dueDate = %v, want %v", got.DueDate, due)
	}
	if got.StartDate != nil || got.CompletedDate != nil {
		t.Errorf("optional dates should round-trip as nil: start=%v completed=%v",
			got.StartDate, got.CompletedDate)
	}

	got.Title = "rewrite the report"
	got.Status = types.StatusInProgress
	if err := s.Tasks().Update(got); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err = s.Tasks().Get(id)
	if err != nil {
		t.Fatalf("Get after update failed: %v", err)
	}
	if got.Title != "rewrite the report" || got.Status != types.StatusInProgress {
		t.Errorf("update not persisted: title=%q status=%s", got.Title, got.Status)
	}

	if err := s.Tasks().Delete(id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Tasks().Get(id); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestTaskTable_Validation(t *testing.T) {
	s := newAttachedStore(t)
	orgID, _, capsuleID := seedTenant(t, s)

	if _, err := s.Tasks().Create(&types.Task{CapsuleID: capsuleID, OrganizationID: orgID}); !errors.Is(err, types.ErrInvalidTitle) {
		t.Errorf("Create without title: expected ErrInvalidTitle, got %v", err)
	}
	if _, err := s.Tasks().Get(""); !errors.Is(err, types.ErrInvalidID) {
		t.Errorf("Get with empty ID: expected ErrInvalidID, got %v", err)
	}
	if err := s.Tasks().Delete("missing"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Delete of unknown ID: expected ErrNotFound, got %v", err)
	}
	if err := s.Tasks().Update(&types.Task{ID: "missing", Title: "x", CapsuleID: capsuleID, OrganizationID: orgID}); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Update of unknown ID: expected ErrNotFound, got %v", err)
	}
}

func TestTaskTable_CompletionTripleRoundTrip(t *testing.T) {
	s := newAttachedStore(t)
	orgID, _, capsuleID := seedTenant(t, s)

	id := createTask(t, s, orgID, capsuleID, "finish me")
	task, _ := s.Tasks().Get(id)

	task.MarkCompleted(time.Now().UTC())
	if err := s.Tasks().Update(task); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := s.Tasks().Get(id)
	if !got.IsCompleted || got.Status != types.StatusCompleted || got.CompletedDate == nil {
		t.Errorf("completion triple lost in round trip: completed=%v status=%s date=%v",
			got.IsCompleted, got.Status, got.CompletedDate)
	}
	if !got.CompletionCoherent() {
		t.Error("CompletionCoherent() = false after round trip")
	}
}

func TestTaskTable_RelationHydration(t *testing.T) {
	s := newAttachedStore(t)
	orgID, userID, capsuleID := seedTenant(t, s)

	tagID, err := s.Tags().Create(&types.Tag{Name: "infra", OrganizationID: orgID})
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}

	blockerID := createTask(t, s, orgID, capsuleID, "blocker")
	parentID := createTask(t, s, orgID, capsuleID, "parent")
	taskID := createTask(t, s, orgID, capsuleID, "loaded", func(task *types.Task) {
		task.ParentID = &parentID
		task.Blockers = []*types.Task{{ID: blockerID}}
		task.AssignedUsers = []*types.User{{ID: userID}}
		task.Tags = []*types.Tag{{ID: tagID}}
	})

	got, err := s.Tasks().Get(taskID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Parent == nil || got.Parent.ID != parentID {
		t.Errorf("parent not hydrated: %+v", got.Parent)
	}
	if len(got.Blockers) != 1 || got.Blockers[0].ID != blockerID {
		t.Errorf("blockers = %v", got.BlockerIDs())
	}
	if len(got.AssignedUsers) != 1 || got.AssignedUsers[0].ID != userID {
		t.Errorf("assignees = %v", got.AssignedUserIDs())
	}
	if len(got.Tags) != 1 || got.Tags[0].ID != tagID {
		t.Errorf("tags = %v", got.TagIDs())
	}

	// The edge is symmetric: the blocker sees the task as a dependent, and
	// the parent sees it as a subtask.
	blocker, err := s.Tasks().Get(blockerID)
	if err != nil {
		t.Fatalf("Get blocker failed: %v", err)
	}
	if len(blocker.Dependents) != 1 || blocker.Dependents[0].ID != taskID {
		t.Errorf("dependents of blocker = %d", len(blocker.Dependents))
	}
	parent, err := s.Tasks().Get(parentID)
	if err != nil {
		t.Fatalf("Get parent failed: %v", err)
	}
	if len(parent.Subtasks) != 1 || parent.Subtasks[0].ID != taskID {
		t.Errorf("subtasks of parent = %d", len(parent.Subtasks))
	}
}

func TestTaskTable_UpdateReplacesRelationSets(t *testing.T) {
	s := newAttachedStore(t)
	orgID, userID, capsuleID := seedTenant(t, s)

	b1 := createTask(t, s, orgID, capsuleID, "first blocker")
	b2 := createTask(t, s, orgID, capsuleID, "second blocker")
	taskID := createTask(t, s, orgID, capsuleID, "shifting", func(task *types.Task) {
		task.Blockers = []*types.Task{{ID: b1}}
		task.AssignedUsers = []*types.User{{ID: userID}}
	})

	task, _ := s.Tasks().Get(taskID)
	task.Blockers = []*types.Task{{ID: b2}}
	task.AssignedUsers = nil
	if err := s.Tasks().Update(task); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := s.Tasks().Get(taskID)
	if ids := got.BlockerIDs(); len(ids) != 1 || ids[0] != b2 {
		t.Errorf("blockers = %v, want only %s", ids, b2)
	}
	if len(got.AssignedUsers) != 0 {
		t.Errorf("assignees = %v, want cleared", got.AssignedUserIDs())
	}
}

func TestTaskTable_DeleteCascades(t *testing.T) {
	s := newAttachedStore(t)
	orgID, userID, capsuleID := seedTenant(t, s)

	blockerID := createTask(t, s, orgID, capsuleID, "doomed blocker")
	parentID := createTask(t, s, orgID, capsuleID, "doomed parent")
	subID := createTask(t, s, orgID, capsuleID, "doomed child", func(task *types.Task) {
		task.ParentID = &parentID
		task.Blockers = []*types.Task{{ID: blockerID}}
	})

	if _, err := s.History().Append(&types.HistoryEntry{
		TaskID:         subID,
		CapsuleID:      capsuleID,
		UserID:         userID,
		OrganizationID: orgID,
		Kind:           types.KindTaskCreated,
	}); err != nil {
		t.Fatalf("appending history: %v", err)
	}

	if err := s.Tasks().Delete(parentID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// The subtask goes with the parent, and its history and blocker edges
	// go with it.
	if exists, _ := s.Tasks().Exists(subID); exists {
		t.Error("subtask survived the parent delete")
	}
	entries, err := s.History().ListByTask(subID)
	if err != nil {
		t.Fatalf("ListByTask failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("history entries survived the cascade: %d", len(entries))
	}
	blocker, err := s.Tasks().Get(blockerID)
	if err != nil {
		t.Fatalf("Get blocker failed: %v", err)
	}
	if len(blocker.Dependents) != 0 {
		t.Errorf("dangling dependent edge after cascade: %d", len(blocker.Dependents))
	}
}

func TestTaskTable_ListByCapsule(t *testing.T) {
	s := newAttachedStore(t)
	orgID, userID, capsuleID := seedTenant(t, s)

	otherCapsule, err := s.Capsules().Create(&types.Capsule{
		Title:          "Elsewhere",
		OwnerID:        userID,
		OrganizationID: orgID,
	})
	if err != nil {
		t.Fatalf("creating capsule: %v", err)
	}

	parentID := createTask(t, s, orgID, capsuleID, "top level")
	createTask(t, s, orgID, capsuleID, "a subtask", func(task *types.Task) {
		task.ParentID = &parentID
	})
	createTask(t, s, orgID, otherCapsule, "elsewhere")

	tasks, err := s.Tasks().ListByCapsule(capsuleID)
	if err != nil {
		t.Fatalf("ListByCapsule failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != parentID {
		t.Errorf("top-level listing = %d tasks, want only the parent", len(tasks))
	}

	empty, err := s.Tasks().ListByCapsule("no-such-capsule")
	if err != nil {
		t.Fatalf("ListByCapsule failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("unknown capsule should list empty non-nil, got %v", empty)
	}
}

func TestTaskTable_ListByParent(t *testing.T) {
	s := newAttachedStore(t)
	orgID, _, capsuleID := seedTenant(t, s)

	parentID := createTask(t, s, orgID, capsuleID, "parent")
	s1 := createTask(t, s, orgID, capsuleID, "first", func(task *types.Task) {
		task.ParentID = &parentID
	})
	s2 := createTask(t, s, orgID, capsuleID, "second", func(task *types.Task) {
		task.ParentID = &parentID
	})

	subs, err := s.Tasks().ListByParent(parentID)
	if err != nil {
		t.Fatalf("ListByParent failed: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("subtasks = %d, want 2", len(subs))
	}
	seen := map[string]bool{subs[0].ID: true, subs[1].ID: true}
	if !seen[s1] || !seen[s2] {
		t.Errorf("subtask IDs = %v", []string{subs[0].ID, subs[1].ID})
	}
}

func TestUserTable_GetByIDs(t *testing.T) {
	s := newAttachedStore(t)
	orgID, userID, _ := seedTenant(t, s)

	secondID, err := s.Users().Create(&types.User{
		Email:          "ben@acme.test",
		DisplayName:    "Ben",
		OrganizationID: orgID,
	})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}

	// Input order is preserved; unknown IDs are dropped silently.
	users, err := s.Users().GetByIDs([]string{secondID, "ghost", userID})
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if len(users) != 2 || users[0].ID != secondID || users[1].ID != userID {
		got := make([]string, len(users))
		for i, u := range users {
			got[i] = u.ID
		}
		t.Errorf("users = %v, want [%s %s]", got, secondID, userID)
	}

	none, err := s.Users().GetByIDs(nil)
	if err != nil {
		t.Fatalf("GetByIDs(nil) failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("empty request should yield empty non-nil, got %v", none)
	}
}
