// Has command for the satchel CLI.
package main

import (
	"github.com/spf13/cobra"
)

var hasCmd = &cobra.Command{
	Use:   "has <key>",
	Short: "Report whether a key exists in the section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := openRegistry()
		defer r.Close()

		found, err := r.Has(flagSection, args[0])
		if err != nil {
			fail(exitSysError, "has: %s", err)
		}
		return printValue(cmd, found)
	},
}
