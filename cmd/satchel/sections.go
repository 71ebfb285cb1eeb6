// Sections command for the satchel CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List the registered sections and their files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := openRegistry()
		defer r.Close()

		if flagJSON {
			out := map[string]string{}
			for _, id := range r.Sections() {
				path, err := r.SectionPath(id)
				if err != nil {
					fail(exitSysError, "sections: %s", err)
				}
				out[id] = path
			}
			return printValue(cmd, out)
		}

		for _, id := range r.Sections() {
			path, err := r.SectionPath(id)
			if err != nil {
				fail(exitSysError, "sections: %s", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, path)
		}
		return nil
	},
}
