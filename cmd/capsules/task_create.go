// Task create command.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capsules/pkg/engine"
	"github.com/mesh-intelligence/capsules/pkg/types"
)

var (
	createTitle       string
	createDescription string
	createCapsuleID   string
	createStatus      string
	createPriority    string
	createDueDate     string
	createStartDate   string
	createParentID    string
	createAssignees   string
	createBlockers    string
	createTags        string
	createUserID      string
	createOrgID       string
)

var taskCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new task",
	Long: `Create a new task inside a capsule.

Unknown assignee, blocker, and tag IDs are dropped with a warning rather
than failing the creation.

Example:
  capsules task create --title "Ship the release" --capsule CAP --user USER --org ORG
  capsules task create --title "Write docs" --capsule CAP --parent TASK --user USER --org ORG
  capsules task create --title "Deploy" --capsule CAP --blockers ID1,ID2 --user USER --org ORG`,
	Args: cobra.NoArgs,
	RunE: runTaskCreate,
}

func init() {
	taskCreateCmd.Flags().StringVar(&createTitle, "title", "", "task title (required)")
	taskCreateCmd.Flags().StringVar(&createDescription, "description", "", "task description")
	taskCreateCmd.Flags().StringVar(&createCapsuleID, "capsule", "", "capsule ID (required)")
	taskCreateCmd.Flags().StringVar(&createStatus, "status", "", "initial status (default: To Do)")
	taskCreateCmd.Flags().StringVar(&createPriority, "priority", "", "priority (default: Medium)")
	taskCreateCmd.Flags().StringVar(&createDueDate, "due-date", "", "due date (YYYY-MM-DD)")
	taskCreateCmd.Flags().StringVar(&createStartDate, "start-date", "", "start date (YYYY-MM-DD)")
	taskCreateCmd.Flags().StringVar(&createParentID, "parent", "", "parent task ID (makes this a subtask)")
	taskCreateCmd.Flags().StringVar(&createAssignees, "assignees", "", "comma-separated assignee user IDs")
	taskCreateCmd.Flags().StringVar(&createBlockers, "blockers", "", "comma-separated blocker task IDs")
	taskCreateCmd.Flags().StringVar(&createTags, "tags", "", "comma-separated tag IDs")
	taskCreateCmd.Flags().StringVar(&createUserID, "user", "", "acting user ID (required)")
	taskCreateCmd.Flags().StringVar(&createOrgID, "org", "", "organization ID (required)")
	_ = taskCreateCmd.MarkFlagRequired("title")
	_ = taskCreateCmd.MarkFlagRequired("capsule")
	_ = taskCreateCmd.MarkFlagRequired("user")
	_ = taskCreateCmd.MarkFlagRequired("org")
}

func runTaskCreate(cmd *cobra.Command, args []string) error {
	due, err := parseDate(createDueDate)
	if err != nil {
		return err
	}
	start, err := parseDate(createStartDate)
	if err != nil {
		return err
	}

	in := engine.CreateTaskInput{
		Title:           createTitle,
		Description:     createDescription,
		CapsuleID:       createCapsuleID,
		Status:          createStatus,
		Priority:        createPriority,
		DueDate:         due,
		StartDate:       start,
		AssignedUserIDs: splitIDs(createAssignees),
		BlockerIDs:      splitIDs(createBlockers),
		TagIDs:          splitIDs(createTags),
	}
	if createParentID != "" {
		in.ParentID = &createParentID
	}

	return withService(func(svc *engine.Service, _ types.Store) error {
		task, report, err := svc.CreateTask(in, createUserID, createOrgID)
		if err != nil {
			return fmt.Errorf("create task: %w", err)
		}

		if flagJSON {
			return printJSON(struct {
				Task    *types.Task        `json:"task"`
				Dropped *engine.DropReport `json:"dropped,omitempty"`
			}{task, report})
		}
		fmt.Println("Created task:", task.ID)
		reportDrops(report)
		return nil
	})
}
