// Task get command.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capsules/pkg/engine"
	"github.com/mesh-intelligence/capsules/pkg/types"
)

var taskGetCmd = &cobra.Command{
	Use:   "get <task-id>",
	Short: "Show a task with its relations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *engine.Service, _ types.Store) error {
			task, err := svc.GetTask(args[0])
			if err != nil {
				return fmt.Errorf("get task: %w", err)
			}
			if flagJSON {
				return printJSON(task)
			}
			printTaskDetail(task)
			return nil
		})
	},
}
