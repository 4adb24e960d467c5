// Package integration provides shared test helpers for integration tests.
package integration

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/capsules/internal/sqlite"
	"github.com/mesh-intelligence/capsules/pkg/engine"
	"github.com/mesh-intelligence/capsules/pkg/types"
)

// tenant bundles the seeded entities every scenario starts from.
type tenant struct {
	Store     *sqlite.Store
	Service   *engine.Service
	OrgID     string
	UserID    string
	CapsuleID string
}

// newTenant attaches a store in an isolated temp directory and seeds an
// organization, a user, and a capsule. The store detaches on test cleanup.
func newTenant(t *testing.T) *tenant {
	t.Helper()

	store := sqlite.NewStore()
	err := store.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	})
	require.NoError(t, err, "attaching store")
	t.Cleanup(func() { store.Detach() })

	orgID, err := store.Organizations().Create(&types.Organization{Name: "Acme"})
	require.NoError(t, err)
	userID, err := store.Users().Create(&types.User{
		Email:          "ana@acme.test",
		DisplayName:    "Ana",
		OrganizationID: orgID,
	})
	require.NoError(t, err)
	capsuleID, err := store.Capsules().Create(&types.Capsule{
		Title:          "Launch",
		OwnerID:        userID,
		OrganizationID: orgID,
	})
	require.NoError(t, err)

	return &tenant{
		Store:     store,
		Service:   engine.NewService(store),
		OrgID:     orgID,
		UserID:    userID,
		CapsuleID: capsuleID,
	}
}

// createTask creates a task through the service.
func (tn *tenant) createTask(t *testing.T, in engine.CreateTaskInput) *types.Task {
	t.Helper()
	if in.CapsuleID == "" {
		in.CapsuleID = tn.CapsuleID
	}
	task, _, err := tn.Service.CreateTask(in, tn.UserID, tn.OrgID)
	require.NoError(t, err, "creating task %q", in.Title)
	return task
}

// complete marks a task completed and requires success.
func (tn *tenant) complete(t *testing.T, taskID string) {
	t.Helper()
	res, err := tn.Service.SetCompletion(taskID, true, tn.UserID)
	require.NoError(t, err)
	require.True(t, res.Success, "completion refused: %s", res.Reason)
}

// revert marks a task incomplete and requires success.
func (tn *tenant) revert(t *testing.T, taskID string) {
	t.Helper()
	res, err := tn.Service.SetCompletion(taskID, false, tn.UserID)
	require.NoError(t, err)
	require.True(t, res.Success, "revert refused: %s", res.Reason)
}

// kinds returns the history entry kinds of a task, newest-first.
func (tn *tenant) kinds(t *testing.T, taskID string) []string {
	t.Helper()
	entries, err := tn.Service.TaskHistory(taskID)
	require.NoError(t, err)
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Kind
	}
	return out
}
