// Version command for the capsules CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capsules/pkg/capsules"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the capsules version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("capsules", capsules.Version)
	},
}
