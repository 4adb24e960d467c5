// User commands manage the members of an organization.
package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capsules/pkg/engine"
	"github.com/mesh-intelligence/capsules/pkg/types"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var (
	userEmail       string
	userDisplayName string
	userOrgID       string
)

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new user",
	Args:  cobra.NoArgs,
	RunE:  runUserAdd,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the users of an organization",
	Args:  cobra.NoArgs,
	RunE:  runUserList,
}

func init() {
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "user email (required)")
	userAddCmd.Flags().StringVar(&userDisplayName, "name", "", "display name")
	userAddCmd.Flags().StringVar(&userOrgID, "org", "", "organization ID (required)")
	_ = userAddCmd.MarkFlagRequired("email")
	_ = userAddCmd.MarkFlagRequired("org")

	userListCmd.Flags().StringVar(&userOrgID, "org", "", "organization ID (required)")
	_ = userListCmd.MarkFlagRequired("org")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	return withService(func(_ *engine.Service, store types.Store) error {
		user := &types.User{
			Email:          userEmail,
			DisplayName:    userDisplayName,
			OrganizationID: userOrgID,
		}
		id, err := store.Users().Create(user)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if flagJSON {
			return printJSON(user)
		}
		fmt.Println("Created user:", id)
		return nil
	})
}

func runUserList(cmd *cobra.Command, args []string) error {
	return withService(func(_ *engine.Service, store types.Store) error {
		users, err := store.Users().ListByOrganization(userOrgID)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		if flagJSON {
			return printJSON(users)
		}
		printUserTable(users)
		return nil
	})
}

func printUserTable(users []*types.User) {
	if len(users) == 0 {
		fmt.Println("No users found.")
		return
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tEMAIL\tNAME")
	fmt.Fprintln(w, "--\t-----\t----")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\n", shortID(u.ID), u.Email, u.DisplayName)
	}
	w.Flush()

	for _, line := range strings.Split(sb.String(), "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}
	fmt.Printf("Total: %d user(s)\n", len(users))
}
