package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/agencydash/internal/config"
	applog "github.com/nao1215/agencydash/internal/log"
	"github.com/nao1215/agencydash/internal/pipeline"
)

// Global flag names.
const (
	flagVerbose   = "verbose"
	flagConfig    = "config"
	flagData      = "data"
	flagLogFormat = "log-format"
)

// Log formats accepted by --log-format.
const (
	logFormatText = "text"
	logFormatJSON = "json"
)

const defaultDataFileHelp = config.DefaultDataFile

// stdoutPath selects standard output for --output.
const stdoutPath = "-"

// errUnknownLogFormat is returned for a --log-format other than text or json.
var errUnknownLogFormat = errors.New("unknown log format (use text or json)")

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool(flagVerbose)
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool(flagVerbose)
		if err != nil {
			return false
		}
	}
	return verbose
}

// getGlobalString reads a persistent string flag from cmd or the root.
func getGlobalString(cmd *cobra.Command, name string) (string, bool) {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Value.String(), f.Changed
	}
	if f := cmd.Root().PersistentFlags().Lookup(name); f != nil {
		return f.Value.String(), f.Changed
	}
	return "", false
}

// buildConfig creates the effective Config: defaults, then the
// configuration file, then command line flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := getGlobalString(cmd, flagConfig)

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if data, changed := getGlobalString(cmd, flagData); changed {
		cfg.DataFile = data
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// setupLogger creates the secure structured logger on the command's stderr.
func setupLogger(cmd *cobra.Command, verbose bool) (*slog.Logger, error) {
	format, _ := getGlobalString(cmd, flagLogFormat)
	switch format {
	case "", logFormatText:
		return applog.NewSecureLogger(cmd.ErrOrStderr(), verbose), nil
	case logFormatJSON:
		return applog.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownLogFormat, format)
	}
}

// setup builds the configuration and logger shared by every command.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger, err := setupLogger(cmd, cfg.Verbose)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	logger.Debug("configuration loaded",
		"config_file", cfg.ConfigFilePath,
		"data", cfg.DataFile,
	)
	return cfg, logger, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// render runs the standard pipeline and returns the dashboard, or the
// render error. A failed render never produces partial output.
func render(ctx context.Context, cfg *config.Config, req pipeline.Request, logger *slog.Logger) (*pipeline.Dashboard, error) {
	d, err := pipeline.Render(ctx, cfg, req, pipeline.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return d, nil
}

// writeOutput calls write with the file at path, creating parent
// directories, or with stdout when path is empty or "-".
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" || path == stdoutPath {
		return write(cmd.OutOrStdout())
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // output path is chosen by the user
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
