// Root command for the satchel CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/satchel-io/satchel/internal/paths"
	"github.com/satchel-io/satchel/pkg/satchel"
	"github.com/satchel-io/satchel/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagSection   string
	flagJSON      bool
)

// loadedConfig holds the configuration resolved by PersistentPreRunE so all
// subcommands can use it.
var loadedConfig types.Config

var rootCmd = &cobra.Command{
	Use:     "satchel",
	Short:   "Satchel is a sectioned, obfuscated key/value store",
	Long:    "Satchel manages named sections of persistent key/value data,\neach backed by one obfuscated file.",
	Version: satchel.Version,
	// Do not print usage on errors returned by subcommands.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := paths.ResolveConfigDir(flagConfigDir)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		loadedConfig = cfg
		if flagDataDir != "" {
			loadedConfig.DataDir = flagDataDir
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "base data directory (default: .satchel-db)")
	rootCmd.PersistentFlags().StringVar(&flagSection, "section", types.DefaultSection, "section to operate on")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(hasCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(sectionsCmd)
	rootCmd.AddCommand(rekeyCmd)
	rootCmd.AddCommand(versionCmd)
}
