package main

import (
	"errors"
	"fmt"

	"github.com/fwojciec/sdkdrift"
	"github.com/fwojciec/sdkdrift/fs"
	"github.com/spf13/cobra"
)

func (a *App) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view [report.json]",
		Short: "Open a saved report in the terminal viewer",
		Long: `View opens the given report file, or the most recently saved report when
no file is given.

Keys: j/k scroll, tab switches between summary and diff, n/N jump between
files, y copies the report JSON, q quits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r *sdkdrift.AnalysisReport
			var err error
			if len(args) == 1 {
				r, err = fs.Load(args[0])
			} else {
				r, err = a.store().Latest()
				if errors.Is(err, sdkdrift.ErrNoReport) {
					return fmt.Errorf("%w in %s; run sdkdrift analyze first", err, a.reportDir())
				}
			}
			if err != nil {
				return err
			}
			return a.Viewer.View(cmd.Context(), r)
		},
	}
}
