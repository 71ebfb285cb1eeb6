// Set command for the satchel CLI.
package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/satchel-io/satchel/pkg/satchel"
)

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a value under a key",
	Long:  "Store a value under a key. The value is parsed as JSON; anything\nthat is not valid JSON is stored as a plain string.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var value any
		if err := json.Unmarshal([]byte(args[1]), &value); err != nil {
			value = args[1]
		}

		r := openRegistry()
		defer r.Close()

		if _, err := satchel.Set(r, flagSection, args[0], value); err != nil {
			fail(exitSysError, "set: %s", err)
		}
		return printValue(cmd, value)
	},
}
