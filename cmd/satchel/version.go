// Version command for the satchel CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satchel-io/satchel/pkg/satchel"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the satchel version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "satchel", satchel.Version)
	},
}
