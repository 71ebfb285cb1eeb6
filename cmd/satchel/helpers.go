// Shared helpers for satchel CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/satchel-io/satchel/pkg/satchel"
)

// openRegistry builds a registry from the loaded configuration, logging to
// stderr. The caller must defer registry.Close().
func openRegistry() *satchel.Registry {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return satchel.Open(loadedConfig, log)
}

// printValue renders a value as plain text or indented JSON per --json.
func printValue(cmd *cobra.Command, v any) error {
	if flagJSON {
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}

// fail prints the error to stderr and exits with the given code.
func fail(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}
