// Schema DDL for the Capsules SQLite store. Relation edges (parent,
// blockers, assignees, tags, history) are materialized as foreign keys so
// task deletion cascades to subtasks, join rows, and history entries.
package sqlite

const (
	createOrganizations = `CREATE TABLE organizations (
    organization_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createUsers = `CREATE TABLE users (
    user_id TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    display_name TEXT NOT NULL,
    organization_id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (organization_id) REFERENCES organizations(organization_id)
);`

	createCapsules = `CREATE TABLE capsules (
    capsule_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    due_date TEXT,
    new_due_date TEXT,
    owner_id TEXT NOT NULL,
    organization_id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (owner_id) REFERENCES users(user_id),
    FOREIGN KEY (organization_id) REFERENCES organizations(organization_id)
);`

	createTags = `CREATE TABLE tags (
    tag_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    organization_id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (organization_id) REFERENCES organizations(organization_id)
);`

	createTasks = `CREATE TABLE tasks (
    task_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL,
    priority TEXT NOT NULL,
    is_completed INTEGER NOT NULL DEFAULT 0,
    due_date TEXT,
    start_date TEXT,
    completed_date TEXT,
    capsule_id TEXT NOT NULL,
    organization_id TEXT NOT NULL,
    parent_id TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (capsule_id) REFERENCES capsules(capsule_id) ON DELETE CASCADE,
    FOREIGN KEY (organization_id) REFERENCES organizations(organization_id),
    FOREIGN KEY (parent_id) REFERENCES tasks(task_id) ON DELETE CASCADE
);`

	createTaskBlockers = `CREATE TABLE task_blockers (
    task_id TEXT NOT NULL,
    blocker_id TEXT NOT NULL,
    PRIMARY KEY (task_id, blocker_id),
    FOREIGN KEY (task_id) REFERENCES tasks(task_id) ON DELETE CASCADE,
    FOREIGN KEY (blocker_id) REFERENCES tasks(task_id) ON DELETE CASCADE
);`

	createTaskAssignees = `CREATE TABLE task_assignees (
    task_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    PRIMARY KEY (task_id, user_id),
    FOREIGN KEY (task_id) REFERENCES tasks(task_id) ON DELETE CASCADE,
    FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
);`

	createTaskTags = `CREATE TABLE task_tags (
    task_id TEXT NOT NULL,
    tag_id TEXT NOT NULL,
    PRIMARY KEY (task_id, tag_id),
    FOREIGN KEY (task_id) REFERENCES tasks(task_id) ON DELETE CASCADE,
    FOREIGN KEY (tag_id) REFERENCES tags(tag_id) ON DELETE CASCADE
);`

	createTaskHistory = `CREATE TABLE task_history (
    history_id TEXT PRIMARY KEY,
    task_id TEXT NOT NULL,
    capsule_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    organization_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    description TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    FOREIGN KEY (task_id) REFERENCES tasks(task_id) ON DELETE CASCADE,
    FOREIGN KEY (capsule_id) REFERENCES capsules(capsule_id),
    FOREIGN KEY (user_id) REFERENCES users(user_id),
    FOREIGN KEY (organization_id) REFERENCES organizations(organization_id)
);`
)

// Index DDL for common queries.
const (
	idxTasksCapsule        = `CREATE INDEX idx_tasks_capsule ON tasks(capsule_id);`
	idxTasksParent         = `CREATE INDEX idx_tasks_parent ON tasks(parent_id);`
	idxTasksStatus         = `CREATE INDEX idx_tasks_status ON tasks(status);`
	idxTaskBlockersBlocker = `CREATE INDEX idx_task_blockers_blocker ON task_blockers(blocker_id);`
	idxTaskHistoryTask     = `CREATE INDEX idx_task_history_task ON task_history(task_id, timestamp);`
	idxUsersOrganization   = `CREATE INDEX idx_users_organization ON users(organization_id);`
	idxCapsulesOrg         = `CREATE INDEX idx_capsules_organization ON capsules(organization_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createOrganizations,
	createUsers,
	createCapsules,
	createTags,
	createTasks,
	createTaskBlockers,
	createTaskAssignees,
	createTaskTags,
	createTaskHistory,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxTasksCapsule,
	idxTasksParent,
	idxTasksStatus,
	idxTaskBlockersBlocker,
	idxTaskHistoryTask,
	idxUsersOrganization,
	idxCapsulesOrg,
}
