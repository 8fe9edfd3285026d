package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jpalmerr/collatzcard"
	"github.com/jpalmerr/collatzcard/config"
)

const shutdownTimeout = 10 * time.Second

// newLogger writes JSON lines to stderr, keeping stdout free for command output.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// loadEnvFile loads KEY=VALUE pairs from path into the environment so that
// ${VAR} references in the config resolve. A missing file is not an error;
// variables already set in the environment win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %q: %w", path, err)
	}
	return nil
}

// loadConfig reads the config file, or returns the defaults when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Parse(nil)
	}
	return config.Load(path)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the page with the live card",
		Long: `Start the collatzcard server.

The server will:
  - Load environment variables from the env file, if present
  - Load configuration from the YAML file (defaults when omitted)
  - Fetch the statistics document immediately, then on every interval
  - Serve the page, the card API and the SSE stream on the configured port

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  collatzcard serve -c config.yaml
  collatzcard serve --config /etc/collatzcard/config.yaml --log-level debug`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringP("config", "c", "", "path to config file (defaults apply when omitted)")
	cmd.Flags().String("env-file", ".env", "path to a .env file loaded before the config")
	cmd.Flags().String("log-level", "info", "log level: debug|info|warn|error")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	levelText, _ := flags.GetString("log-level")
	envFile, _ := flags.GetString("env-file")
	configFile, _ := flags.GetString("config")

	var level slog.Level
	if err := level.UnmarshalText([]byte(levelText)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", levelText, err)
	}
	logger := newLogger(level)

	if err := loadEnvFile(envFile); err != nil {
		return err
	}
	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts, err := config.BuildOptions(cfg)
	if err != nil {
		return fmt.Errorf("failed to build options: %w", err)
	}
	w, err := collatzcard.New(append(opts, collatzcard.WithLogger(logger))...)
	if err != nil {
		return fmt.Errorf("failed to create widget: %w", err)
	}

	logger.Info("serving collatz card",
		"port", cfg.Port,
		"state_url", cfg.StateURL,
		"container", cfg.Container,
		"refresh_interval", cfg.RefreshInterval.Duration().String(),
		"in_flight_guard", cfg.InFlightGuard,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result := make(chan error, 1)
	go func() { result <- w.Start(ctx) }()

	var startErr error
	select {
	case startErr = <-result:
		// failed before the signal, e.g. port already bound
	case <-ctx.Done():
		select {
		case startErr = <-result:
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out, exiting anyway", "timeout", shutdownTimeout.String())
			return nil
		}
	}
	if startErr != nil {
		return fmt.Errorf("server error: %w", startErr)
	}
	logger.Info("shutdown complete")
	return nil
}
