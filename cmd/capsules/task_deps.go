// Task deps command lists the blockers of a task.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capsules/pkg/engine"
	"github.com/mesh-intelligence/capsules/pkg/types"
)

var taskDepsCmd = &cobra.Command{
	Use:   "deps <task-id>",
	Short: "List the tasks blocking a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *engine.Service, _ types.Store) error {
			blockers, err := svc.GetTaskDependencies(args[0])
			if err != nil {
				return fmt.Errorf("get dependencies: %w", err)
			}
			if flagJSON {
				return printJSON(blockers)
			}
			if len(blockers) == 0 {
				fmt.Println("No blockers.")
				return nil
			}
			printTaskTable(blockers)
			return nil
		})
	},
}
