// Task complete command drives the completion transition.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capsules/pkg/engine"
	"github.com/mesh-intelligence/capsules/pkg/types"
)

var (
	completeUndo   bool
	completeUserID string
)

var taskCompleteCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Mark a task completed (or revert with --undo)",
	Long: `Complete marks a task as completed. The transition is refused while
the task has incomplete blockers or subtasks; the refusal lists the
offending tasks.

Reverting with --undo moves the task to In Progress, forces a completed
parent back to incomplete, and invalidates completed dependents.

Example:
  capsules task complete TASK --user USER
  capsules task complete TASK --undo --user USER`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskComplete,
}

func init() {
	taskCompleteCmd.Flags().BoolVar(&completeUndo, "undo", false, "revert the task to incomplete")
	taskCompleteCmd.Flags().StringVar(&completeUserID, "user", "", "acting user ID (required)")
	_ = taskCompleteCmd.MarkFlagRequired("user")
}

func runTaskComplete(cmd *cobra.Command, args []string) error {
	return withService(func(svc *engine.Service, _ types.Store) error {
		result, err := svc.SetCompletion(args[0], !completeUndo, completeUserID)
		if err != nil {
			return fmt.Errorf("set completion: %w", err)
		}

		if !result.Success {
			return printRejection(result)
		}
		if flagJSON {
			return printJSON(result)
		}
		if completeUndo {
			fmt.Println("Reverted task:", result.Task.ID)
		} else {
			fmt.Println("Completed task:", result.Task.ID)
		}
		return nil
	})
}
