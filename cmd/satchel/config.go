// Config loading for the satchel CLI.
package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/satchel-io/satchel/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyDefaultObfuscator = "default_obfuscator"
)

// loadConfig reads config.yaml from the config directory using Viper. A
// missing config.yaml is not an error; defaults apply.
func loadConfig(configDir string) (types.Config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyDefaultObfuscator, "identity")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
