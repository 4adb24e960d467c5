// Typed field-level diffing for update audit entries. The trackable fields
// are enumerated explicitly; each change is a tagged old/new pair rather
// than a loosely-typed map. Capsule linkage, subtask collections, and the
// engine-owned completion triple are excluded.
package engine

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Diffable field names as they appear in history payloads.
const (
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldStatus        = "status"
	FieldPriority      = "priority"
	FieldDueDate       = "dueDate"
	FieldStartDate     = "startDate"
	FieldAssignedUsers = "assignedUsers"
	FieldBlockers      = "blockers"
	FieldTags          = "tags"
)

// FieldChange records one field's transition in an update.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// TaskDiff accumulates the field changes of one update call.
type TaskDiff struct {
	changes []FieldChange
}

// Record adds a change when old and new actually differ.
func (d *TaskDiff) Record(field, oldVal, newVal string) {
	if oldVal == newVal {
		return
	}
	d.changes = append(d.changes, FieldChange{Field: field, Old: oldVal, New: newVal})
}

// RecordTime adds an optional-timestamp change when the values differ.
func (d *TaskDiff) RecordTime(field string, oldVal, newVal *time.Time) {
	d.Record(field, timeLabel(oldVal), timeLabel(newVal))
}

// RecordIDSet adds a relation change when the two ID sets differ,
// comparing as sorted sets so reassigning an identical set records
// nothing.
func (d *TaskDiff) RecordIDSet(field string, oldIDs, newIDs []string) {
	if sameIDSet(oldIDs, newIDs) {
		return
	}
	d.changes = append(d.changes, FieldChange{
		Field: field,
		Old:   joinSorted(oldIDs),
		New:   joinSorted(newIDs),
	})
}

// Empty reports whether no changes were recorded.
func (d *TaskDiff) Empty() bool {
	return len(d.changes) == 0
}

// Changes returns the recorded changes in recording order.
func (d *TaskDiff) Changes() []FieldChange {
	return d.changes
}

// Payload renders the diff as the JSON history description.
func (d *TaskDiff) Payload() (string, error) {
	data, err := json.Marshal(struct {
		Changes []FieldChange `json:"changes"`
	}{d.changes})
	if err != nil {
		return "", fmt.Errorf("encoding diff payload: %w", err)
	}
	return string(data), nil
}

// sameIDSet compares two ID slices as sets.
func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func joinSorted(ids []string) string {
	s := append([]string(nil), ids...)
	sort.Strings(s)
	return strings.Join(s, ",")
}

func timeLabel(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
