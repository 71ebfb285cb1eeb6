// Rekey command for the satchel CLI: rewrite a section file from one
// obfuscator to another while no registry is serving it.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satchel-io/satchel/internal/obfuscate"
	"github.com/satchel-io/satchel/pkg/satchel"
)

var (
	flagRekeyFrom string
	flagRekeyTo   string
)

var rekeyCmd = &cobra.Command{
	Use:   "rekey --from <obfuscator> --to <obfuscator>",
	Short: "Re-obfuscate a section file with a different obfuscator",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		oldObf, err := obfuscate.ForName(flagRekeyFrom)
		if err != nil {
			fail(exitUserError, "rekey: %s", err)
		}
		newObf, err := obfuscate.ForName(flagRekeyTo)
		if err != nil {
			fail(exitUserError, "rekey: %s", err)
		}

		// The registry is used only to resolve the section's file path and
		// is closed before the file is rewritten.
		r := openRegistry()
		path, err := r.SectionPath(flagSection)
		r.Close()
		if err != nil {
			fail(exitUserError, "rekey: %s", err)
		}

		if err := satchel.Rekey(path, oldObf, newObf); err != nil {
			fail(exitSysError, "rekey: %s", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rekeyed section %q (%s -> %s)\n", flagSection, flagRekeyFrom, flagRekeyTo)
		return nil
	},
}

func init() {
	rekeyCmd.Flags().StringVar(&flagRekeyFrom, "from", "", "obfuscator the file is currently written with")
	rekeyCmd.Flags().StringVar(&flagRekeyTo, "to", "", "obfuscator to rewrite the file with")
	rekeyCmd.MarkFlagRequired("from")
	rekeyCmd.MarkFlagRequired("to")
}
