// Get command for the satchel CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/satchel-io/satchel/pkg/satchel"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the value stored under a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := openRegistry()
		defer r.Close()

		v, found, err := satchel.TryGet[any](r, flagSection, args[0])
		if err != nil {
			fail(exitSysError, "get: %s", err)
		}
		if !found {
			fail(exitUserError, "key %q not found in section %q", args[0], flagSection)
		}
		return printValue(cmd, v)
	},
}
