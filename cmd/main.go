package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pomodoro/internal/platform"
	"pomodoro/internal/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	appName  = "pomodoro"
	appTitle = "Pomodoro"
	appID    = "com.pomodoro.app"

	envConfigDir = "POMODORO_CONFIG_DIR"
	envLogLevel  = "POMODORO_LOG_LEVEL"
)

// globalOptions carries the persistent flags and what they resolve to.
type globalOptions struct {
	configDir string
	logLevel  string

	// explicitConfigDir is set when --config-dir or the environment chose
	// the directory.
	explicitConfigDir bool

	level     slog.Level
	logger    *slog.Logger
	autostart platform.Service
}

func newRootCommand(autostart platform.Service) *cobra.Command {
	opts := &globalOptions{autostart: autostart}

	root := &cobra.Command{
		Use:   appName,
		Short: "Pomodoro timer",
		Long: `A Pomodoro timer that alternates focus sessions with short breaks and a
long break after a configurable number of sessions.

Running without a subcommand opens the desktop window and tray icon.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDesktop(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configDir, "config-dir", "", "directory for settings and history (env "+envConfigDir+")")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error (env "+envLogLevel+")")

	root.AddCommand(
		newTUICommand(opts),
		newConfigCommand(opts),
		newHistoryCommand(opts),
		newAutostartCommand(opts),
	)
	return root
}

// resolve loads .env, applies environment fallbacks for flags the user did
// not pass and installs the default logger.
func (opts *globalOptions) resolve(cmd *cobra.Command) error {
	envErr := godotenv.Load()

	flags := cmd.Flags()
	if !flags.Changed("config-dir") {
		if value := os.Getenv(envConfigDir); value != "" {
			opts.configDir = value
		}
	}
	opts.explicitConfigDir = opts.configDir != ""
	if opts.configDir == "" {
		settingsPath, err := storage.DefaultSettingsPath(appName)
		if err != nil {
			return err
		}
		opts.configDir = filepath.Dir(settingsPath)
	}
	if !flags.Changed("log-level") {
		if value := os.Getenv(envLogLevel); value != "" {
			opts.logLevel = value
		}
	}

	level, err := parseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	opts.level = level
	opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(opts.logger)

	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		opts.logger.Warn("load .env failed", "error", envErr)
	}
	opts.logger.Debug("configuration resolved", "config_dir", opts.configDir, "log_level", level)
	return nil
}

func (opts *globalOptions) settingsFile() *storage.SettingsFile {
	return storage.NewSettingsFile(storage.SettingsPathFor(opts.configDir))
}

func (opts *globalOptions) historyPath() string {
	return storage.HistoryPathFor(opts.configDir)
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: use debug, info, warn or error", value)
	}
	return level, nil
}

func main() {
	if err := newRootCommand(platform.NewService()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
