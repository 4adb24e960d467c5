// Shared helpers for capsules CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/capsules/internal/sqlite"
	"github.com/mesh-intelligence/capsules/pkg/engine"
	"github.com/mesh-intelligence/capsules/pkg/types"
)

// attachStore resolves the data directory, creates a SQLite store, and
// attaches it. The caller must defer store.Detach().
func attachStore() (*sqlite.Store, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Backend: types.BackendSQLite,
		DataDir: dataDir,
	}

	store := sqlite.NewStore()
	if err := store.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}

	return store, nil
}

// withService attaches the store, runs fn with a lifecycle service over it,
// and detaches.
func withService(fn func(*engine.Service, types.Store) error) error {
	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	return fn(engine.NewService(store), store)
}

// printJSON renders v as indented JSON on stdout.
func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(output))
	return nil
}

// splitIDs parses a comma-separated flag value into an ID slice. An empty
// value yields nil (meaning "not provided").
func splitIDs(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

// parseDate parses a --due-date / --start-date flag value. Accepts a plain
// date or RFC 3339 timestamp.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD or RFC 3339)", value)
}

// shortID truncates an ID to 8 chars for table output.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate shortens a string for table output.
func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

// reportDrops prints the dropped relation IDs of a mutation, if any.
func reportDrops(report *engine.DropReport) {
	if report.Total() == 0 {
		return
	}
	if len(report.AssigneeIDs) > 0 {
		fmt.Printf("Warning: dropped %d unknown assignee ID(s): %s\n",
			len(report.AssigneeIDs), strings.Join(report.AssigneeIDs, ", "))
	}
	if len(report.BlockerIDs) > 0 {
		fmt.Printf("Warning: dropped %d unknown blocker ID(s): %s\n",
			len(report.BlockerIDs), strings.Join(report.BlockerIDs, ", "))
	}
	if len(report.TagIDs) > 0 {
		fmt.Printf("Warning: dropped %d unknown tag ID(s): %s\n",
			len(report.TagIDs), strings.Join(report.TagIDs, ", "))
	}
}

// printRejection renders a refused completion transition.
func printRejection(result *engine.CompletionResult) error {
	if flagJSON {
		return printJSON(result)
	}
	switch result.Reason {
	case engine.ReasonBlocked:
		fmt.Println("Cannot complete: blocked by incomplete tasks:")
		for _, b := range result.Blockers {
			fmt.Printf("  %s  %s (%s)\n", shortID(b.ID), b.Title, b.Status)
		}
	case engine.ReasonIncompleteSubtasks:
		fmt.Println("Cannot complete: incomplete subtasks:")
		for _, sub := range result.Subtasks {
			fmt.Printf("  %s  %s (%s)\n", shortID(sub.ID), sub.Title, sub.Status)
		}
	default:
		fmt.Println("Cannot complete the task.")
	}
	return nil
}
