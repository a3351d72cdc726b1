// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ManuGH/sportsdvr/internal/config"
	"github.com/ManuGH/sportsdvr/internal/dvr"
)

const redacted = "***"

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigDumpCommand(ctx))
	return configCmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration and compile all subscriptions",
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ctx.load(cmd); err != nil {
				return fmt.Errorf("configuration invalid: %w", err)
			}
			catalog := dvr.NewCatalog(nil)
			if err := catalog.Apply(ctx.cfg); err != nil {
				return fmt.Errorf("configuration invalid: %w", err)
			}
			snap := catalog.Snapshot()

			out := cmd.OutOrStdout()
			source := ctx.loader.Path()
			if source == "" {
				source = "environment and defaults"
			}
			fmt.Fprintf(out, "✓ %s is valid\n", source)

			rows := make([][]string, 0, len(snap.Subscriptions))
			for _, s := range snap.Subscriptions {
				rows = append(rows, []string{s.ID, string(s.Kind), s.Match.String(), strconv.Itoa(s.Rank), strconv.FormatBool(s.Enabled)})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable([]string{"ID", "Kind", "Match", "Rank", "Enabled"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
			}
			for _, p := range snap.Problems {
				fmt.Fprintf(out, "! %s\n", p)
			}
			return nil
		},
	}
}

func newConfigDumpCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := redact(ctx.cfg)
			if jsonOut {
				return writeJSON(cmd, cfg)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON instead of YAML")
	return cmd
}

func redact(cfg config.Config) config.Config {
	if cfg.Host.OpenWebIF.Password != "" {
		cfg.Host.OpenWebIF.Password = redacted
	}
	if cfg.Cache.RedisPassword != "" {
		cfg.Cache.RedisPassword = redacted
	}
	if cfg.Notify.AMQPURL != "" {
		cfg.Notify.AMQPURL = redactURL(cfg.Notify.AMQPURL)
	}
	return cfg
}

// redactURL masks the password of a URL for display.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid-url-redacted"
	}
	return u.Redacted()
}
