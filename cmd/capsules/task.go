// Task command group.
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capsules/pkg/types"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

func init() {
	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskGetCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	taskCmd.AddCommand(taskCompleteCmd)
	taskCmd.AddCommand(taskSubtasksCmd)
	taskCmd.AddCommand(taskHistoryCmd)
	taskCmd.AddCommand(taskDepsCmd)
}

// printTaskTable prints tasks in a human-readable table format.
func printTaskTable(tasks []*types.Task) {
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE")
	fmt.Fprintln(w, "--\t-----\t------\t--------\t---")
	for _, task := range tasks {
		due := ""
		if task.DueDate != nil {
			due = task.DueDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortID(task.ID),
			truncate(task.Title, 40),
			task.Status,
			task.Priority,
			due,
		)
	}
	w.Flush()

	for _, line := range strings.Split(sb.String(), "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}
	fmt.Printf("Total: %d task(s)\n", len(tasks))
}

// printTaskDetail prints one task with its relation sets.
func printTaskDetail(task *types.Task) {
	fmt.Println("ID:         ", task.ID)
	fmt.Println("Title:      ", task.Title)
	if task.Description != "" {
		fmt.Println("Description:", task.Description)
	}
	fmt.Println("Status:     ", task.Status)
	fmt.Println("Priority:   ", task.Priority)
	fmt.Println("Completed:  ", task.IsCompleted)
	if task.CompletedDate != nil {
		fmt.Println("Completed at:", task.CompletedDate.Format("2006-01-02 15:04"))
	}
	if task.DueDate != nil {
		fmt.Println("Due:        ", task.DueDate.Format("2006-01-02"))
	}
	if task.StartDate != nil {
		fmt.Println("Start:      ", task.StartDate.Format("2006-01-02"))
	}
	fmt.Println("Capsule:    ", task.CapsuleID)
	if task.Parent != nil {
		fmt.Printf("Parent:      %s (%s)\n", task.Parent.Title, shortID(task.Parent.ID))
	}
	printRelatedTasks("Subtasks", task.Subtasks)
	printRelatedTasks("Blockers", task.Blockers)
	printRelatedTasks("Dependents", task.Dependents)
	if len(task.AssignedUsers) > 0 {
		names := make([]string, len(task.AssignedUsers))
		for i, u := range task.AssignedUsers {
			names[i] = u.DisplayName
		}
		fmt.Println("Assignees:  ", strings.Join(names, ", "))
	}
	if len(task.Tags) > 0 {
		names := make([]string, len(task.Tags))
		for i, tg := range task.Tags {
			names[i] = tg.Name
		}
		fmt.Println("Tags:       ", strings.Join(names, ", "))
	}
}

func printRelatedTasks(label string, tasks []*types.Task) {
	if len(tasks) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	for _, t := range tasks {
		fmt.Printf("  %s  %s (%s)\n", shortID(t.ID), truncate(t.Title, 40), t.Status)
	}
}
