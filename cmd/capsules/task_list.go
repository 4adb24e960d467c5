// Task list command shows the top-level tasks of a capsule.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capsules/pkg/engine"
	"github.com/mesh-intelligence/capsules/pkg/types"
)

var listCapsuleID string

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the top-level tasks of a capsule",
	Long: `List shows the tasks of a capsule, newest first. Subtasks are not
included; use "task subtasks" to list the children of a task.

Example:
  capsules task list --capsule CAP
  capsules task list --capsule CAP --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *engine.Service, _ types.Store) error {
			tasks, err := svc.ListTasksByCapsule(listCapsuleID)
			if err != nil {
				return fmt.Errorf("list tasks: %w", err)
			}
			if flagJSON {
				return printJSON(tasks)
			}
			printTaskTable(tasks)
			return nil
		})
	},
}

func init() {
	taskListCmd.Flags().StringVar(&listCapsuleID, "capsule", "", "capsule ID (required)")
	_ = taskListCmd.MarkFlagRequired("capsule")
}
