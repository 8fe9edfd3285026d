package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/collatzcard/config"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a config file",
		Long: `Validate a collatzcard configuration file without starting the server.

This command parses the YAML, expands environment variables, validates all
fields and checks that a custom page, if configured, can be read. It's useful
for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  collatzcard validate -c config.yaml
  collatzcard validate --config /etc/collatzcard/config.yaml`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}

	cmd.Flags().StringP("config", "c", "", "path to config file (required)")
	cmd.Flags().String("env-file", ".env", "path to a .env file loaded before the config")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := loadEnvFile(envFile); err != nil {
		return err
	}

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := config.BuildOptions(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	page := cfg.Page
	if page == "" {
		page = "(embedded)"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Port:             %d\n", cfg.Port)
	fmt.Fprintf(out, "  State URL:        %s\n", cfg.StateURL)
	fmt.Fprintf(out, "  Refresh interval: %s\n", cfg.RefreshInterval.Duration())
	fmt.Fprintf(out, "  Timeout:          %s\n", cfg.Timeout.Duration())
	fmt.Fprintf(out, "  Container:        %s\n", cfg.Container)
	fmt.Fprintf(out, "  Page:             %s\n", page)
	fmt.Fprintf(out, "  In-flight guard:  %t\n", cfg.InFlightGuard)

	return nil
}
