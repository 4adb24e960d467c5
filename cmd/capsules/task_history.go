// Task history command shows the audit trail of a task.
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capsules/pkg/engine"
	"github.com/mesh-intelligence/capsules/pkg/types"
)

var taskHistoryCmd = &cobra.Command{
	Use:   "history <task-id>",
	Short: "Show a task's audit history",
	Long: `History lists a task's audit entries newest first, with the kind of
change, the acting user, and the change description.

Example:
  capsules task history TASK
  capsules task history TASK --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *engine.Service, _ types.Store) error {
			entries, err := svc.TaskHistory(args[0])
			if err != nil {
				return fmt.Errorf("get history: %w", err)
			}
			if flagJSON {
				return printJSON(entries)
			}
			printHistoryTable(entries)
			return nil
		})
	},
}

func printHistoryTable(entries []*types.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Println("No history entries.")
		return
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "WHEN\tKIND\tUSER\tDESCRIPTION")
	fmt.Fprintln(w, "----\t----\t----\t-----------")
	for _, e := range entries {
		user := e.UserID
		if e.User != nil && e.User.DisplayName != "" {
			user = e.User.DisplayName
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Timestamp.Format("2006-01-02 15:04"),
			e.Kind,
			user,
			truncate(e.Description, 60),
		)
	}
	w.Flush()

	for _, line := range strings.Split(sb.String(), "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}
	fmt.Printf("Total: %d entry(ies)\n", len(entries))
}
