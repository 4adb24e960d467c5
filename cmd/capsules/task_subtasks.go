// Task subtasks command lists the children of a task.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capsules/pkg/engine"
	"github.com/mesh-intelligence/capsules/pkg/types"
)

var taskSubtasksCmd = &cobra.Command{
	Use:   "subtasks <task-id>",
	Short: "List the subtasks of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *engine.Service, _ types.Store) error {
			subtasks, err := svc.ListSubtasks(args[0])
			if err != nil {
				return fmt.Errorf("list subtasks: %w", err)
			}
			if flagJSON {
				return printJSON(subtasks)
			}
			printTaskTable(subtasks)
			return nil
		})
	},
}
