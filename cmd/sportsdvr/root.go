// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ManuGH/sportsdvr/internal/config"
	"github.com/ManuGH/sportsdvr/internal/log"
	"github.com/ManuGH/sportsdvr/internal/version"
)

const skipConfigLoad = "skipConfigLoad"

// commandContext carries the loaded configuration to subcommands.
type commandContext struct {
	configPath string
	envFile    string

	loader *config.Loader
	cfg    config.Config
	loaded bool
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "sportsdvr",
		Short:         "Record the sports events you follow",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipConfigLoad] == "true" {
				return nil
			}
			return ctx.load(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path (YAML)")
	rootCmd.PersistentFlags().StringVar(&ctx.envFile, "env-file", ".env", "Optional dotenv file with SPORTSDVR_* overrides")

	rootCmd.AddCommand(newDaemonCommand(ctx))
	rootCmd.AddCommand(newScanCommand(ctx))
	rootCmd.AddCommand(newClassifyCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// load resolves the config path, loads the configuration and configures the
// logger. Command output goes to stdout, so logs go to stderr.
func (c *commandContext) load(cmd *cobra.Command) error {
	if c.loaded {
		return nil
	}
	log.Configure(log.Config{Level: "warn", Output: cmd.ErrOrStderr(), Version: version.Version})

	path := resolveConfigPath(c.configPath)
	c.loader = config.NewLoader(path, c.envFile, version.Version)
	cfg, err := c.loader.Load()
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.loaded = true

	level := cfg.LogLevel
	if cmd.Name() != "daemon" && level == "info" {
		level = "warn"
	}
	log.Configure(log.Config{Level: level, Output: cmd.ErrOrStderr(), Version: version.Version})
	return nil
}

// resolveConfigPath prefers an explicit path, then $SPORTSDVR_CONFIG, then a
// config.yaml in the data directory when one exists.
func resolveConfigPath(explicit string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(config.EnvPrefix + "CONFIG")); p != "" {
		return p
	}
	dataDir := config.ParseString(config.EnvPrefix+"DATA_DIR", config.Defaults().DataDir)
	auto := filepath.Join(dataDir, "config.yaml")
	if _, err := os.Stat(auto); err == nil {
		return auto
	}
	return ""
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
