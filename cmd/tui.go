package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"pomodoro/internal/core/timekeeper"
	"pomodoro/internal/platform"
	"pomodoro/internal/storage"
	"pomodoro/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const logFileName = "pomodoro.log"

func newTUICommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the timer in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
}

func runTUI(ctx context.Context, opts *globalOptions) error {
	// Log to a file so records never land on the alternate screen.
	if err := os.MkdirAll(opts.configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	logFile, err := os.OpenFile(filepath.Join(opts.configDir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: opts.level}))
	slog.SetDefault(logger)

	settingsFile := opts.settingsFile()
	settings, err := settingsFile.Load()
	if err != nil {
		logger.Warn("load settings failed, using defaults", "path", settingsFile.Path(), "error", err)
	}

	keeper, err := timekeeper.New(settings.TimerConfig(), timekeeper.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer keeper.Stop()
	keeper.SetIdleChecker(platform.NewIdleProvider())
	keeper.SetIdlePause(settings.IdlePause())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	options := tui.Options{
		Timer:    keeper,
		Events:   keeper.Subscribe(32),
		Settings: settings,
		Store:    settingsFile,
		Logger:   logger,
	}

	var recorder sync.WaitGroup
	history, err := storage.OpenHistory(opts.historyPath())
	if err != nil {
		logger.Error("open history failed, phases will not be recorded", "error", err)
	} else {
		defer history.Close()
		options.History = history
		journal := keeper.Subscribe(64)
		recorder.Add(1)
		go func() {
			defer recorder.Done()
			storage.RecordHistory(ctx, journal, history, logger)
		}()
	}

	logger.Info("terminal ui starting", "config_dir", opts.configDir)
	program := tea.NewProgram(tui.New(options), tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := program.Run()

	// Closing the journal subscription lets the recorder flush what is queued.
	keeper.Stop()
	recorder.Wait()
	logger.Info("terminal ui stopped")

	if runErr != nil {
		return fmt.Errorf("terminal ui: %w", runErr)
	}
	return nil
}
