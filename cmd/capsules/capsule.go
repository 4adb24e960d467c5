// Capsule commands manage the project containers tasks live in.
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capsules/pkg/engine"
	"github.com/mesh-intelligence/capsules/pkg/types"
)

var capsuleCmd = &cobra.Command{
	Use:   "capsule",
	Short: "Manage capsules",
}

var (
	capsuleTitle       string
	capsuleDescription string
	capsuleDueDate     string
	capsuleOwnerID     string
	capsuleOrgID       string
)

var capsuleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new capsule",
	Args:  cobra.NoArgs,
	RunE:  runCapsuleAdd,
}

var capsuleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the capsules of an organization",
	Args:  cobra.NoArgs,
	RunE:  runCapsuleList,
}

func init() {
	capsuleAddCmd.Flags().StringVar(&capsuleTitle, "title", "", "capsule title (required)")
	capsuleAddCmd.Flags().StringVar(&capsuleDescription, "description", "", "capsule description")
	capsuleAddCmd.Flags().StringVar(&capsuleDueDate, "due-date", "", "due date (YYYY-MM-DD)")
	capsuleAddCmd.Flags().StringVar(&capsuleOwnerID, "owner", "", "owning user ID (required)")
	capsuleAddCmd.Flags().StringVar(&capsuleOrgID, "org", "", "organization ID (required)")
	_ = capsuleAddCmd.MarkFlagRequired("title")
	_ = capsuleAddCmd.MarkFlagRequired("owner")
	_ = capsuleAddCmd.MarkFlagRequired("org")

	capsuleListCmd.Flags().StringVar(&capsuleOrgID, "org", "", "organization ID (required)")
	_ = capsuleListCmd.MarkFlagRequired("org")

	capsuleCmd.AddCommand(capsuleAddCmd)
	capsuleCmd.AddCommand(capsuleListCmd)
}

func runCapsuleAdd(cmd *cobra.Command, args []string) error {
	due, err := parseDate(capsuleDueDate)
	if err != nil {
		return err
	}

	return withService(func(_ *engine.Service, store types.Store) error {
		capsule := &types.Capsule{
			Title:          capsuleTitle,
			Description:    capsuleDescription,
			DueDate:        due,
			OwnerID:        capsuleOwnerID,
			OrganizationID: capsuleOrgID,
		}
		id, err := store.Capsules().Create(capsule)
		if err != nil {
			return fmt.Errorf("create capsule: %w", err)
		}
		if flagJSON {
			return printJSON(capsule)
		}
		fmt.Println("Created capsule:", id)
		return nil
	})
}

func runCapsuleList(cmd *cobra.Command, args []string) error {
	return withService(func(_ *engine.Service, store types.Store) error {
		capsules, err := store.Capsules().ListByOrganization(capsuleOrgID)
		if err != nil {
			return fmt.Errorf("list capsules: %w", err)
		}
		if flagJSON {
			return printJSON(capsules)
		}
		printCapsuleTable(capsules)
		return nil
	})
}

func printCapsuleTable(capsules []*types.Capsule) {
	if len(capsules) == 0 {
		fmt.Println("No capsules found.")
		return
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tTITLE\tDUE\tCREATED")
	fmt.Fprintln(w, "--\t-----\t---\t-------")
	for _, c := range capsules {
		due := ""
		if c.DueDate != nil {
			due = c.DueDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			shortID(c.ID), truncate(c.Title, 40), due, c.CreatedAt.Format("2006-01-02"))
	}
	w.Flush()

	for _, line := range strings.Split(sb.String(), "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}
	fmt.Printf("Total: %d capsule(s)\n", len(capsules))
}
