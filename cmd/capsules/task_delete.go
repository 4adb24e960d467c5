// Task delete command.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capsules/pkg/engine"
	"github.com/mesh-intelligence/capsules/pkg/types"
)

var deleteUserID string

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task and its subtasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *engine.Service, _ types.Store) error {
			if err := svc.DeleteTask(args[0], deleteUserID); err != nil {
				return fmt.Errorf("delete task: %w", err)
			}
			if flagJSON {
				return printJSON(map[string]string{"deleted": args[0]})
			}
			fmt.Println("Deleted task:", args[0])
			return nil
		})
	},
}

func init() {
	taskDeleteCmd.Flags().StringVar(&deleteUserID, "user", "", "acting user ID (required)")
	_ = taskDeleteCmd.MarkFlagRequired("user")
}
