package main

import (
	"fmt"
	"io"
	"time"

	"pomodoro/internal/core/model"
	"pomodoro/internal/storage"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newHistoryCommand(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent phases and today's totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.OpenHistory(opts.historyPath())
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			summary, err := store.Summarize(ctx, storage.StartOfDay(time.Now()))
			if err != nil {
				return err
			}
			entries, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), summary, entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to list")
	return cmd
}

func printHistory(w io.Writer, summary storage.Summary, entries []storage.HistoryEntry) error {
	fmt.Fprintf(w, "Today: %s", summary)
	if summary.BreakCount > 0 {
		fmt.Fprintf(w, " (%d breaks, %d skipped)", summary.BreakCount, summary.SkippedBreaks)
	}
	fmt.Fprintln(w)

	if len(entries) == 0 {
		fmt.Fprintln(w, "No phases recorded yet.")
		return nil
	}

	rows := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Ended", "Phase", "Length", "")
	for _, entry := range entries {
		note := ""
		if entry.Skipped {
			note = "skipped"
		}
		rows.Row(
			entry.EndedAt.Local().Format("2006-01-02 15:04"),
			entry.Phase.Label(),
			model.FormatClock(entry.Duration),
			note,
		)
	}
	_, err := fmt.Fprintln(w, rows.String())
	return err
}
