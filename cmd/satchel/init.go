// satchel init: create configuration and data directories.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/satchel-io/satchel/internal/paths"
	"github.com/satchel-io/satchel/pkg/types"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize satchel configuration and data directories",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(flagConfigDir)
	if err != nil {
		fail(exitSysError, "resolve config dir: %s", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		fail(exitSysError, "create config directory: %s", err)
	}

	configPath := filepath.Join(configDir, configFileName+"."+configFileType)
	if err := writeConfigIfMissing(configPath); err != nil {
		fail(exitSysError, "write config: %s", err)
	}

	dataDir, err := paths.ResolveDataDir(flagDataDir, loadedConfig.DataDir)
	if err != nil {
		fail(exitSysError, "resolve data dir: %s", err)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		fail(exitSysError, "create data directory: %s", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Satchel initialized successfully")
	return nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil (idempotent).
func writeConfigIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	cfg := types.Config{
		DefaultObfuscator: "identity",
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
