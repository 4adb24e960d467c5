// Tag commands manage the labels tasks can carry.
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capsules/pkg/engine"
	"github.com/mesh-intelligence/capsules/pkg/types"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
}

var (
	tagName  string
	tagOrgID string
)

var tagAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new tag",
	Args:  cobra.NoArgs,
	RunE:  runTagAdd,
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tags of an organization",
	Args:  cobra.NoArgs,
	RunE:  runTagList,
}

func init() {
	tagAddCmd.Flags().StringVar(&tagName, "name", "", "tag name (required)")
	tagAddCmd.Flags().StringVar(&tagOrgID, "org", "", "organization ID (required)")
	_ = tagAddCmd.MarkFlagRequired("name")
	_ = tagAddCmd.MarkFlagRequired("org")

	tagListCmd.Flags().StringVar(&tagOrgID, "org", "", "organization ID (required)")
	_ = tagListCmd.MarkFlagRequired("org")

	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagListCmd)
}

func runTagAdd(cmd *cobra.Command, args []string) error {
	return withService(func(_ *engine.Service, store types.Store) error {
		tag := &types.Tag{Name: tagName, OrganizationID: tagOrgID}
		id, err := store.Tags().Create(tag)
		if err != nil {
			return fmt.Errorf("create tag: %w", err)
		}
		if flagJSON {
			return printJSON(tag)
		}
		fmt.Println("Created tag:", id)
		return nil
	})
}

func runTagList(cmd *cobra.Command, args []string) error {
	return withService(func(_ *engine.Service, store types.Store) error {
		tags, err := store.Tags().ListByOrganization(tagOrgID)
		if err != nil {
			return fmt.Errorf("list tags: %w", err)
		}
		if flagJSON {
			return printJSON(tags)
		}
		printTagTable(tags)
		return nil
	})
}

func printTagTable(tags []*types.Tag) {
	if len(tags) == 0 {
		fmt.Println("No tags found.")
		return
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tNAME")
	fmt.Fprintln(w, "--\t----")
	for _, tg := range tags {
		fmt.Fprintf(w, "%s\t%s\n", shortID(tg.ID), tg.Name)
	}
	w.Flush()

	for _, line := range strings.Split(sb.String(), "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}
	fmt.Printf("Total: %d tag(s)\n", len(tags))
}
