// Organization commands create and inspect tenants.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capsules/pkg/engine"
	"github.com/mesh-intelligence/capsules/pkg/types"
)

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Manage organizations",
}

var orgName string

var orgAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new organization",
	Args:  cobra.NoArgs,
	RunE:  runOrgAdd,
}

var orgGetCmd = &cobra.Command{
	Use:   "get <org-id>",
	Short: "Show an organization",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrgGet,
}

func init() {
	orgAddCmd.Flags().StringVar(&orgName, "name", "", "organization name (required)")
	_ = orgAddCmd.MarkFlagRequired("name")

	orgCmd.AddCommand(orgAddCmd)
	orgCmd.AddCommand(orgGetCmd)
}

func runOrgAdd(cmd *cobra.Command, args []string) error {
	return withService(func(_ *engine.Service, store types.Store) error {
		id, err := store.Organizations().Create(&types.Organization{Name: orgName})
		if err != nil {
			return fmt.Errorf("create organization: %w", err)
		}
		if flagJSON {
			return printJSON(map[string]string{"id": id, "name": orgName})
		}
		fmt.Println("Created organization:", id)
		return nil
	})
}

func runOrgGet(cmd *cobra.Command, args []string) error {
	return withService(func(_ *engine.Service, store types.Store) error {
		org, err := store.Organizations().Get(args[0])
		if err != nil {
			return fmt.Errorf("get organization: %w", err)
		}
		if flagJSON {
			return printJSON(org)
		}
		fmt.Println("ID:     ", org.ID)
		fmt.Println("Name:   ", org.Name)
		fmt.Println("Created:", org.CreatedAt.Format("2006-01-02"))
		return nil
	})
}
