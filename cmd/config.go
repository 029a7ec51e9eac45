package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"pomodoro/internal/core/model"

	"github.com/spf13/cobra"
)

func newConfigCommand(opts *globalOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change timer settings",
	}
	configCmd.AddCommand(newConfigShowCommand(opts), newConfigSetCommand(opts))
	return configCmd
}

func newConfigShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file := opts.settingsFile()
			settings, err := file.Load()
			if err != nil {
				opts.logger.Warn("settings file unreadable, showing defaults", "path", file.Path(), "error", err)
			}
			printSettings(cmd.OutOrStdout(), file.Path(), settings)
			return nil
		},
	}
}

type configSetFlags struct {
	focus          string
	shortBreak     string
	longBreak      string
	longBreakAfter int
	idlePause      string
}

func newConfigSetCommand(opts *globalOptions) *cobra.Command {
	values := &configSetFlags{}
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		Long: `Change one or more settings. Durations accept MM:SS, a bare minute count or
a Go duration such as 25m or 90s. Pass --idle-pause 0 to turn idle pausing off.`,
		Example: `  pomodoro config set --focus 50m --short-break 10m
  pomodoro config set --long-break-after 3 --idle-pause 10m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file := opts.settingsFile()
			settings, err := file.Load()
			if err != nil {
				opts.logger.Warn("settings file unreadable, starting from defaults", "path", file.Path(), "error", err)
			}

			updated, err := values.apply(cmd, settings)
			if err != nil {
				return err
			}
			if err := updated.Validate(); err != nil {
				return fmt.Errorf("invalid settings:\n%s", model.DescribeError(err))
			}
			if err := file.Save(updated); err != nil {
				return err
			}

			opts.logger.Debug("settings saved", "path", file.Path())
			printSettings(cmd.OutOrStdout(), file.Path(), updated)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&values.focus, "focus", "", "focus session length")
	flags.StringVar(&values.shortBreak, "short-break", "", "short break length")
	flags.StringVar(&values.longBreak, "long-break", "", "long break length")
	flags.IntVar(&values.longBreakAfter, "long-break-after", 0, "focus sessions before a long break")
	flags.StringVar(&values.idlePause, "idle-pause", "", "pause a running focus session after this much inactivity, or 0 for off")
	return cmd
}

// apply overlays the flags the user passed on settings.
func (values *configSetFlags) apply(cmd *cobra.Command, settings model.Settings) (model.Settings, error) {
	flags := cmd.Flags()
	changed := false
	var errs []error

	durations := []struct {
		flag   string
		value  string
		target *time.Duration
	}{
		{"focus", values.focus, &settings.Focus},
		{"short-break", values.shortBreak, &settings.ShortBreak},
		{"long-break", values.longBreak, &settings.LongBreak},
	}
	for _, entry := range durations {
		if !flags.Changed(entry.flag) {
			continue
		}
		changed = true
		value, err := model.ParseClock(entry.value)
		if err != nil {
			errs = append(errs, fmt.Errorf("--%s: %w", entry.flag, err))
			continue
		}
		*entry.target = value
	}

	if flags.Changed("long-break-after") {
		changed = true
		settings.LongBreakAfter = values.longBreakAfter
	}

	if flags.Changed("idle-pause") {
		changed = true
		switch strings.ToLower(strings.TrimSpace(values.idlePause)) {
		case "0", "off":
			settings.IdlePauseEnabled = false
		default:
			value, err := model.ParseClock(values.idlePause)
			if err != nil {
				errs = append(errs, fmt.Errorf("--idle-pause: %w", err))
				break
			}
			settings.IdlePauseEnabled = true
			settings.IdlePauseAfter = value
		}
	}

	if !changed {
		return settings, errors.New("nothing to change: pass at least one of --focus, --short-break, --long-break, --long-break-after, --idle-pause")
	}
	return settings, errors.Join(errs...)
}

func printSettings(w io.Writer, path string, settings model.Settings) {
	idle := "off"
	if settings.IdlePauseEnabled {
		idle = "after " + model.FormatClock(settings.IdlePauseAfter)
	}
	fmt.Fprintf(w, "%-18s%s\n", "Settings file:", path)
	fmt.Fprintf(w, "%-18s%s\n", "Focus:", model.FormatClock(settings.Focus))
	fmt.Fprintf(w, "%-18s%s\n", "Short break:", model.FormatClock(settings.ShortBreak))
	fmt.Fprintf(w, "%-18s%s\n", "Long break:", model.FormatClock(settings.LongBreak))
	fmt.Fprintf(w, "%-18s%d focus sessions\n", "Long break after:", settings.LongBreakAfter)
	fmt.Fprintf(w, "%-18s%s\n", "Idle pause:", idle)
}
