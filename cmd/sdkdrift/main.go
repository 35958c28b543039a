package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fwojciec/sdkdrift"
	"github.com/fwojciec/sdkdrift/bubbletea"
	"github.com/fwojciec/sdkdrift/clipboard"
	"github.com/fwojciec/sdkdrift/config"
	"github.com/fwojciec/sdkdrift/fs"
	"github.com/fwojciec/sdkdrift/git"
	"github.com/fwojciec/sdkdrift/jsonl"
	"github.com/fwojciec/sdkdrift/lipgloss"
	"github.com/fwojciec/sdkdrift/logging"
	"github.com/fwojciec/sdkdrift/worddiff"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// App encapsulates the application logic for testing.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Git     sdkdrift.GitRunner
	History sdkdrift.HistoryStore
	Viewer  sdkdrift.Viewer

	// NewReader and NewStore are called once settings are loaded.
	NewReader func(cfg sdkdrift.Config, logger *zap.Logger) sdkdrift.SnapshotReader
	NewStore  func(dir string) sdkdrift.ReportStore

	// LoadConfig defaults to config.Load.
	LoadConfig func(path string) (config.Config, error)

	// Now and NewID are passed to the analyzer; nil uses the clock and
	// random UUIDs.
	Now   func() time.Time
	NewID func() string

	configPath string
	cfg        config.Config
	logger     *zap.Logger
}

// Command builds the root command and its subcommands.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "sdkdrift",
		Short: "Assess how a regenerated API client affects its wrappers",
		Long: `sdkdrift parses the diff of a generated API client, finds new and changed
endpoints, works out which hand-written wrapper files import the changed
code, and scores the overall risk of the change.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetIn(a.Stdin)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default ./sdkdrift.yaml if present)")

	root.AddCommand(a.analyzeCommand(), a.viewCommand(), a.historyCommand())
	return root
}

// Run executes the command line with args.
func (a *App) Run(ctx context.Context, args []string) error {
	cmd := a.Command()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func (a *App) setup(*cobra.Command, []string) error {
	load := a.LoadConfig
	if load == nil {
		load = config.Load
	}
	cfg, err := load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	var logger *zap.Logger
	if cfg.Logging.File != "" {
		logger, err = logging.New(cfg.Logging)
	} else {
		w := a.Stderr
		if w == nil {
			w = io.Discard
		}
		logger, err = logging.NewWithWriter(cfg.Logging, w)
	}
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *App) reportDir() string {
	if a.cfg.ReportDir != "" {
		return a.cfg.ReportDir
	}
	return fs.DefaultReportDir()
}

func (a *App) historyPath() string {
	if a.cfg.HistoryFile != "" {
		return a.cfg.HistoryFile
	}
	return filepath.Join(a.reportDir(), "history.jsonl")
}

func (a *App) store() sdkdrift.ReportStore {
	if a.NewStore != nil {
		return a.NewStore(a.reportDir())
	}
	return fs.NewReportStore(a.reportDir())
}

func (a *App) reader() sdkdrift.SnapshotReader {
	if a.NewReader != nil {
		return a.NewReader(a.cfg.Config, a.logger)
	}
	return fs.NewSnapshotReader(a.cfg.Config, a.logger)
}

func newViewer() *bubbletea.Viewer {
	modelOpts := []bubbletea.ModelOption{
		bubbletea.WithTheme(lipgloss.DefaultTheme()),
		bubbletea.WithWordDiffer(worddiff.NewDiffer()),
	}
	if cb, err := clipboard.Detect(); err == nil {
		modelOpts = append(modelOpts, bubbletea.WithClipboard(cb))
	}
	return bubbletea.NewViewer(bubbletea.WithModelOptions(modelOpts...))
}

func main() {
	// Set up context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := &App{
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Git:     git.NewRunner(),
		History: jsonl.NewStore(),
		Viewer:  newViewer(),
	}

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
