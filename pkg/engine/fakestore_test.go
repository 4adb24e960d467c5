package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mesh-intelligence/capsules/pkg/types"
)

// fakeStore is an in-memory types.Store for engine unit tests. Tasks are
// stored as scalar records plus relation ID sets; Get rebuilds the relation
// slices the way the SQLite store hydrates them. Atomic snapshots the task
// and history state and restores it when fn fails, mimicking rollback.
type fakeStore struct {
	tasks    map[string]*taskRec
	capsules map[string]*types.Capsule
	users    map[string]*types.User
	orgs     map[string]*types.Organization
	tags     map[string]*types.Tag
	history  []*types.HistoryEntry
	nextID   int
}

type taskRec struct {
	task        types.Task // scalar fields only
	blockerIDs  []string
	assigneeIDs []string
	tagIDs      []string
}

var _ types.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		tasks:    make(map[string]*taskRec),
		capsules: make(map[string]*types.Capsule),
		users:    make(map[string]*types.User),
		orgs:     make(map[string]*types.Organization),
		tags:     make(map[string]*types.Tag),
	}
}

func (f *fakeStore) genID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func (f *fakeStore) Tasks() types.TaskStore                 { return &fakeTasks{f} }
func (f *fakeStore) Capsules() types.CapsuleStore           { return &fakeCapsules{f} }
func (f *fakeStore) Users() types.UserStore                 { return &fakeUsers{f} }
func (f *fakeStore) Organizations() types.OrganizationStore { return &fakeOrgs{f} }
func (f *fakeStore) Tags() types.TagStore                   { return &fakeTags{f} }
func (f *fakeStore) History() types.HistoryStore            { return &fakeHistory{f} }

func (f *fakeStore) Atomic(fn func(types.Store) error) error {
	savedTasks := make(map[string]*taskRec, len(f.tasks))
	for id, rec := range f.tasks {
		savedTasks[id] = rec.clone()
	}
	savedHistory := append([]*types.HistoryEntry(nil), f.history...)

	if err := fn(f); err != nil {
		f.tasks = savedTasks
		f.history = savedHistory
		return err
	}
	return nil
}

func (f *fakeStore) Attach(types.Config) error { return types.ErrAlreadyAttached }
func (f *fakeStore) Detach() error             { return nil }

func (r *taskRec) clone() *taskRec {
	c := &taskRec{task: r.task}
	c.blockerIDs = append([]string(nil), r.blockerIDs...)
	c.assigneeIDs = append([]string(nil), r.assigneeIDs...)
	c.tagIDs = append([]string(nil), r.tagIDs...)
	return c
}

func shallowTask(rec *taskRec) *types.Task {
	t := rec.task
	return &t
}

// --- tasks ---

type fakeTasks struct{ f *fakeStore }

func (ft *fakeTasks) Get(id string) (*types.Task, error) {
	rec, ok := ft.f.tasks[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	t := shallowTask(rec)

	if t.IsSubtask() {
		if p, ok := ft.f.tasks[*t.ParentID]; ok {
			t.Parent = shallowTask(p)
		}
	}
	t.Subtasks = []*types.Task{}
	for _, other := range ft.f.sortedRecs() {
		if other.task.ParentID != nil && *other.task.ParentID == id {
			t.Subtasks = append(t.Subtasks, shallowTask(other))
		}
	}
	t.Blockers = []*types.Task{}
	for _, bid := range rec.blockerIDs {
		if b, ok := ft.f.tasks[bid]; ok {
			t.Blockers = append(t.Blockers, shallowTask(b))
		}
	}
	t.Dependents = []*types.Task{}
	for _, other := range ft.f.sortedRecs() {
		for _, bid := range other.blockerIDs {
			if bid == id {
				t.Dependents = append(t.Dependents, shallowTask(other))
			}
		}
	}
	t.AssignedUsers = []*types.User{}
	for _, uid := range rec.assigneeIDs {
		if u, ok := ft.f.users[uid]; ok {
			cu := *u
			t.AssignedUsers = append(t.AssignedUsers, &cu)
		}
	}
	t.Tags = []*types.Tag{}
	for _, tid := range rec.tagIDs {
		if tg, ok := ft.f.tags[tid]; ok {
			ct := *tg
			t.Tags = append(t.Tags, &ct)
		}
	}
	return t, nil
}

func (ft *fakeTasks) Create(t *types.Task) (string, error) {
	if t.Title == "" {
		return "", types.ErrInvalidTitle
	}
	now := time.Now().UTC()
	if t.ID == "" {
		t.ID = ft.f.genID("task-")
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
	ft.f.tasks[t.ID] = recFromTask(t)
	return t.ID, nil
}

func (ft *fakeTasks) Update(t *types.Task) error {
	if _, ok := ft.f.tasks[t.ID]; !ok {
		return types.ErrNotFound
	}
	ft.f.tasks[t.ID] = recFromTask(t)
	return nil
}

func (ft *fakeTasks) Delete(id string) error {
	if _, ok := ft.f.tasks[id]; !ok {
		return types.ErrNotFound
	}
	ft.f.deleteCascade(id)
	return nil
}

func (ft *fakeTasks) Exists(id string) (bool, error) {
	_, ok := ft.f.tasks[id]
	return ok, nil
}

func (ft *fakeTasks) ListByCapsule(capsuleID string) ([]*types.Task, error) {
	var out []*types.Task
	for _, rec := range ft.f.sortedRecsDesc() {
		if rec.task.CapsuleID == capsuleID && !rec.task.IsSubtask() {
			out = append(out, shallowTask(rec))
		}
	}
	if out == nil {
		out = []*types.Task{}
	}
	return out, nil
}

func (ft *fakeTasks) ListByParent(parentID string) ([]*types.Task, error) {
	var out []*types.Task
	for _, rec := range ft.f.sortedRecsDesc() {
		if rec.task.ParentID != nil && *rec.task.ParentID == parentID {
			out = append(out, shallowTask(rec))
		}
	}
	if out == nil {
		out = []*types.Task{}
	}
	return out, nil
}

func recFromTask(t *types.Task) *taskRec {
	scalar := *t
	scalar.Parent = nil
	scalar.Subtasks = nil
	scalar.Blockers = nil
	scalar.Dependents = nil
	scalar.AssignedUsers = nil
	scalar.Tags = nil

	rec := &taskRec{task: scalar}
	for _, b := range t.Blockers {
		rec.blockerIDs = append(rec.blockerIDs, b.ID)
	}
	for _, u := range t.AssignedUsers {
		rec.assigneeIDs = append(rec.assigneeIDs, u.ID)
	}
	for _, tg := range t.Tags {
		rec.tagIDs = append(rec.tagIDs, tg.ID)
	}
	return rec
}

// deleteCascade removes a task, its subtasks, and their history entries.
func (f *fakeStore) deleteCascade(id string) {
	delete(f.tasks, id)
	for sid, rec := range f.tasks {
		if rec.task.ParentID != nil && *rec.task.ParentID == id {
			f.deleteCascade(sid)
		}
	}
	for _, rec := range f.tasks {
		kept := rec.blockerIDs[:0]
		for _, bid := range rec.blockerIDs {
			if bid != id {
				kept = append(kept, bid)
			}
		}
		rec.blockerIDs = kept
	}
	var keptHistory []*types.HistoryEntry
	for _, h := range f.history {
		if h.TaskID != id {
			keptHistory = append(keptHistory, h)
		}
	}
	f.history = keptHistory
}

// sortedRecs returns task records in a stable ID order.
func (f *fakeStore) sortedRecs() []*taskRec {
	ids := make([]string, 0, len(f.tasks))
	for id := range f.tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	recs := make([]*taskRec, len(ids))
	for i, id := range ids {
		recs[i] = f.tasks[id]
	}
	return recs
}

func (f *fakeStore) sortedRecsDesc() []*taskRec {
	recs := f.sortedRecs()
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs
}

// --- capsules ---

type fakeCapsules struct{ f *fakeStore }

func (fc *fakeCapsules) Get(id string) (*types.Capsule, error) {
	c, ok := fc.f.capsules[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	cc := *c
	return &cc, nil
}

func (fc *fakeCapsules) Create(c *types.Capsule) (string, error) {
	if c.ID == "" {
		c.ID = fc.f.genID("capsule-")
	}
	cc := *c
	fc.f.capsules[c.ID] = &cc
	return c.ID, nil
}

func (fc *fakeCapsules) ListByOrganization(orgID string) ([]*types.Capsule, error) {
	var out []*types.Capsule
	for _, c := range fc.f.capsules {
		if c.OrganizationID == orgID {
			cc := *c
			out = append(out, &cc)
		}
	}
	return out, nil
}

// --- users ---

type fakeUsers struct{ f *fakeStore }

func (fu *fakeUsers) Get(id string) (*types.User, error) {
	u, ok := fu.f.users[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	cu := *u
	return &cu, nil
}

func (fu *fakeUsers) GetByIDs(ids []string) ([]*types.User, error) {
	out := []*types.User{}
	for _, id := range ids {
		if u, ok := fu.f.users[id]; ok {
			cu := *u
			out = append(out, &cu)
		}
	}
	return out, nil
}

func (fu *fakeUsers) Create(u *types.User) (string, error) {
	if u.ID == "" {
		u.ID = fu.f.genID("user-")
	}
	cu := *u
	fu.f.users[u.ID] = &cu
	return u.ID, nil
}

func (fu *fakeUsers) ListByOrganization(orgID string) ([]*types.User, error) {
	var out []*types.User
	for _, u := range fu.f.users {
		if u.OrganizationID == orgID {
			cu := *u
			out = append(out, &cu)
		}
	}
	return out, nil
}

// --- organizations ---

type fakeOrgs struct{ f *fakeStore }

func (fo *fakeOrgs) Get(id string) (*types.Organization, error) {
	o, ok := fo.f.orgs[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	co := *o
	return &co, nil
}

func (fo *fakeOrgs) Create(o *types.Organization) (string, error) {
	if o.ID == "" {
		o.ID = fo.f.genID("org-")
	}
	co := *o
	fo.f.orgs[o.ID] = &co
	return o.ID, nil
}

// --- tags ---

type fakeTags struct{ f *fakeStore }

func (ftg *fakeTags) GetByIDs(ids []string) ([]*types.Tag, error) {
	out := []*types.Tag{}
	for _, id := range ids {
		if tg, ok := ftg.f.tags[id]; ok {
			ct := *tg
			out = append(out, &ct)
		}
	}
	return out, nil
}

func (ftg *fakeTags) Create(t *types.Tag) (string, error) {
	if t.ID == "" {
		t.ID = ftg.f.genID("tag-")
	}
	ct := *t
	ftg.f.tags[t.ID] = &ct
	return t.ID, nil
}

func (ftg *fakeTags) ListByOrganization(orgID string) ([]*types.Tag, error) {
	var out []*types.Tag
	for _, tg := range ftg.f.tags {
		if tg.OrganizationID == orgID {
			ct := *tg
			out = append(out, &ct)
		}
	}
	return out, nil
}

// --- history ---

type fakeHistory struct{ f *fakeStore }

func (fh *fakeHistory) Append(h *types.HistoryEntry) (string, error) {
	if h.TaskID == "" || h.CapsuleID == "" || h.UserID == "" {
		return "", types.ErrInvalidData
	}
	if h.ID == "" {
		h.ID = fh.f.genID("history-")
	}
	if h.Timestamp.IsZero() {
		h.Timestamp = time.Now().UTC()
	}
	ch := *h
	fh.f.history = append(fh.f.history, &ch)
	return h.ID, nil
}

func (fh *fakeHistory) ListByTask(taskID string) ([]*types.HistoryEntry, error) {
	out := []*types.HistoryEntry{}
	// Newest-first: reverse append order.
	for i := len(fh.f.history) - 1; i >= 0; i-- {
		if fh.f.history[i].TaskID == taskID {
			ch := *fh.f.history[i]
			if u, ok := fh.f.users[ch.UserID]; ok {
				cu := *u
				ch.User = &cu
			}
			out = append(out, &ch)
		}
	}
	return out, nil
}

// --- fixture helpers ---

// fixture seeds an organization, a capsule, and an acting user, returning
// the store and a service over it.
func fixture() (*fakeStore, *Service, fixtureIDs) {
	f := newFakeStore()
	orgID, _ := f.Organizations().Create(&types.Organization{Name: "Acme"})
	userID, _ := f.Users().Create(&types.User{
		Email:          "ana@acme.test",
		DisplayName:    "Ana",
		OrganizationID: orgID,
	})
	capsuleID, _ := f.Capsules().Create(&types.Capsule{
		Title:          "Launch",
		OwnerID:        userID,
		OrganizationID: orgID,
	})
	return f, NewService(f), fixtureIDs{Org: orgID, User: userID, Capsule: capsuleID}
}

type fixtureIDs struct {
	Org     string
	User    string
	Capsule string
}

// historyKinds lists the kinds of a task's entries newest-first.
func historyKinds(f *fakeStore, taskID string) []string {
	entries, _ := f.History().ListByTask(taskID)
	kinds := make([]string, len(entries))
	for i, e := range entries {
		kinds[i] = e.Kind
	}
	return kinds
}

func kindsString(f *fakeStore, taskID string) string {
	return strings.Join(historyKinds(f, taskID), ",")
}
