package main

import (
	"fmt"
	"os"

	"pomodoro/internal/platform"

	"github.com/spf13/cobra"
)

func newAutostartCommand(opts *globalOptions) *cobra.Command {
	autostartCmd := &cobra.Command{
		Use:   "autostart",
		Short: "Manage launching the timer at login",
	}

	enableCmd := &cobra.Command{
		Use:   "enable",
		Short: "Launch the desktop timer at login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			execPath, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}
			entry := autostartEntry(execPath, opts.configDir, opts.explicitConfigDir)
			if err := opts.autostart.EnableAutostart(entry); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Autostart enabled.")
			return nil
		},
	}

	disableCmd := &cobra.Command{
		Use:   "disable",
		Short: "Stop launching the timer at login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.autostart.DisableAutostart(appName); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Autostart disabled.")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether autostart is enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := opts.autostart.AutostartEnabled(appName)
			if err != nil {
				return err
			}
			state := "disabled"
			if enabled {
				state = "enabled"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Autostart %s.\n", state)
			return nil
		},
	}

	autostartCmd.AddCommand(enableCmd, disableCmd, statusCmd)
	return autostartCmd
}

// autostartEntry pins --config-dir in the login command only when it was
// chosen explicitly.
func autostartEntry(execPath, configDir string, explicitDir bool) platform.AutostartEntry {
	entry := platform.AutostartEntry{
		Name:     appName,
		ExecPath: execPath,
		Comment:  "Start the Pomodoro timer at login",
	}
	if explicitDir {
		entry.Args = []string{"--config-dir", configDir}
	}
	return entry
}
