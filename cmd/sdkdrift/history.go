package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fwojciec/sdkdrift"
	"github.com/spf13/cobra"
)

func (a *App) historyCommand() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous analysis runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := a.History.Load(a.historyPath())
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if entries == nil {
					entries = []sdkdrift.HistoryEntry{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history yet.")
				return nil
			}
			fmt.Fprintln(out, historyTable(entries))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of most recent runs to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}

func historyTable(entries []sdkdrift.HistoryEntry) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TIME", "RISK", "SCORE", "FILES", "WRAPPERS", "ENDPOINTS", "ID")
	for _, e := range entries {
		id := e.ID
		if len(id) > 8 {
			id = id[:8]
		}
		t.Row(
			e.Timestamp.UTC().Format("2006-01-02 15:04"),
			string(e.Level),
			strconv.Itoa(e.Score),
			strconv.Itoa(e.ChangedFiles),
			strconv.Itoa(e.AffectedWrappers),
			strconv.Itoa(e.NewEndpoints),
			id,
		)
	}
	return t.Render()
}
