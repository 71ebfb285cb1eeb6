// Clear command for the satchel CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagClearAll bool

var clearCmd = &cobra.Command{
	Use:   "clear [key]",
	Short: "Remove a key, a whole section, or everything",
	Long:  "With a key argument, remove that key from the section. Without\narguments, empty the section. With --all, empty every section.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := openRegistry()
		defer r.Close()

		switch {
		case flagClearAll:
			if err := r.ClearAll(); err != nil {
				fail(exitSysError, "clear: %s", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cleared all sections")
		case len(args) == 1:
			if err := r.Clear(flagSection, args[0]); err != nil {
				fail(exitSysError, "clear: %s", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %q in section %q\n", args[0], flagSection)
		default:
			if err := r.ClearSection(flagSection); err != nil {
				fail(exitSysError, "clear: %s", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared section %q\n", flagSection)
		}
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVar(&flagClearAll, "all", false, "clear every registered section")
}
