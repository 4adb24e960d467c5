// Task update command applies a partial field update.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capsules/pkg/engine"
	"github.com/mesh-intelligence/capsules/pkg/types"
)

var (
	updateTitle       string
	updateDescription string
	updateStatus      string
	updatePriority    string
	updateDueDate     string
	updateStartDate   string
	updateAssignees   string
	updateBlockers    string
	updateTags        string
	updateUserID      string

	updateClearAssignees bool
	updateClearBlockers  bool
	updateClearTags      bool
)

var taskUpdateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Update a task's fields",
	Long: `Update changes the given fields of a task; omitted flags are left
unchanged. Moving status to Completed runs the completion preconditions
and fails the whole update when they do not hold.

Example:
  capsules task update TASK --title "New title" --user USER
  capsules task update TASK --status Completed --user USER
  capsules task update TASK --blockers ID1,ID2 --user USER
  capsules task update TASK --clear-blockers --user USER`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskUpdate,
}

func init() {
	taskUpdateCmd.Flags().StringVar(&updateTitle, "title", "", "new title")
	taskUpdateCmd.Flags().StringVar(&updateDescription, "description", "", "new description")
	taskUpdateCmd.Flags().StringVar(&updateStatus, "status", "", "new status (To Do, In Progress, Completed)")
	taskUpdateCmd.Flags().StringVar(&updatePriority, "priority", "", "new priority")
	taskUpdateCmd.Flags().StringVar(&updateDueDate, "due-date", "", "new due date (YYYY-MM-DD)")
	taskUpdateCmd.Flags().StringVar(&updateStartDate, "start-date", "", "new start date (YYYY-MM-DD)")
	taskUpdateCmd.Flags().StringVar(&updateAssignees, "assignees", "", "replacement assignee user IDs (comma-separated)")
	taskUpdateCmd.Flags().StringVar(&updateBlockers, "blockers", "", "replacement blocker task IDs (comma-separated)")
	taskUpdateCmd.Flags().StringVar(&updateTags, "tags", "", "replacement tag IDs (comma-separated)")
	taskUpdateCmd.Flags().BoolVar(&updateClearAssignees, "clear-assignees", false, "remove all assignees")
	taskUpdateCmd.Flags().BoolVar(&updateClearBlockers, "clear-blockers", false, "remove all blockers")
	taskUpdateCmd.Flags().BoolVar(&updateClearTags, "clear-tags", false, "remove all tags")
	taskUpdateCmd.Flags().StringVar(&updateUserID, "user", "", "acting user ID (required)")
	_ = taskUpdateCmd.MarkFlagRequired("user")
}

func runTaskUpdate(cmd *cobra.Command, args []string) error {
	due, err := parseDate(updateDueDate)
	if err != nil {
		return err
	}
	start, err := parseDate(updateStartDate)
	if err != nil {
		return err
	}

	var in engine.UpdateTaskInput
	if cmd.Flags().Changed("title") {
		in.Title = &updateTitle
	}
	if cmd.Flags().Changed("description") {
		in.Description = &updateDescription
	}
	if cmd.Flags().Changed("status") {
		in.Status = &updateStatus
	}
	if cmd.Flags().Changed("priority") {
		in.Priority = &updatePriority
	}
	in.DueDate = due
	in.StartDate = start

	// An empty slice clears the set; nil leaves it unchanged.
	if updateClearAssignees {
		in.AssignedUserIDs = []string{}
	} else if cmd.Flags().Changed("assignees") {
		in.AssignedUserIDs = splitIDs(updateAssignees)
	}
	if updateClearBlockers {
		in.BlockerIDs = []string{}
	} else if cmd.Flags().Changed("blockers") {
		in.BlockerIDs = splitIDs(updateBlockers)
	}
	if updateClearTags {
		in.TagIDs = []string{}
	} else if cmd.Flags().Changed("tags") {
		in.TagIDs = splitIDs(updateTags)
	}

	return withService(func(svc *engine.Service, _ types.Store) error {
		task, report, err := svc.UpdateTask(args[0], in, updateUserID)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}

		if flagJSON {
			return printJSON(struct {
				Task    *types.Task        `json:"task"`
				Dropped *engine.DropReport `json:"dropped,omitempty"`
			}{task, report})
		}
		fmt.Println("Updated task:", task.ID)
		reportDrops(report)
		return nil
	})
}
