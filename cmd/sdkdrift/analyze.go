package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/sdkdrift"
	"github.com/fwojciec/sdkdrift/analysis"
	"github.com/fwojciec/sdkdrift/chroma"
	"github.com/fwojciec/sdkdrift/config"
	"github.com/fwojciec/sdkdrift/gitdiff"
	"github.com/fwojciec/sdkdrift/godiff"
	"github.com/fwojciec/sdkdrift/jsonl"
	"github.com/fwojciec/sdkdrift/typescript"
	"github.com/fwojciec/sdkdrift/unidiff"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// ErrRiskThreshold is returned when --fail-on is set and the report's risk
// level reaches it.
var ErrRiskThreshold = errors.New("risk at or above threshold")

type analyzeOptions struct {
	diffFile string
	noSave   bool
	view     bool
	failOn   string
}

func (a *App) analyzeCommand() *cobra.Command {
	var opts analyzeOptions
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze the generated client diff and print the report as JSON",
		Long: `Analyze reads the diff of the generated tree (from git by default, or from
a file with --diff), reads the generated and wrapper trees, and prints the
resulting report as JSON. The report is saved and appended to the run
history unless --no-save is given.

Examples:
  sdkdrift analyze                       # diff the generated dir against HEAD
  sdkdrift analyze --base origin/main    # diff against another revision
  git diff | sdkdrift analyze --diff -   # read the diff from stdin
  sdkdrift analyze --fail-on high        # exit non-zero on HIGH risk`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.analyze(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.diffFile, "diff", "", "read the diff from a file ('-' for stdin) instead of git")
	f.String("repo", "", "repository root")
	f.String("base", "", "revision to diff against")
	f.String("generated-dir", "", "generated client directory, relative to the repository")
	f.String("wrapper-dir", "", "wrapper source directory, relative to the repository")
	f.String("parser", "", "diff parser: unidiff, gitdiff or godiff")
	f.BoolVar(&opts.noSave, "no-save", false, "do not persist the report or history")
	f.BoolVar(&opts.view, "view", false, "open the report viewer after analyzing")
	f.StringVar(&opts.failOn, "fail-on", "", "exit non-zero when risk is at least this level (low, medium, high)")
	return cmd
}

// applyFlags overrides settings with the flags the user set explicitly.
func applyFlags(cfg *config.Config, f *pflag.FlagSet) error {
	overrides := map[string]*string{
		"repo":          &cfg.Repo,
		"base":          &cfg.Base,
		"generated-dir": &cfg.GeneratedDir,
		"wrapper-dir":   &cfg.WrapperDir,
		"parser":        &cfg.Parser,
	}
	for name, dst := range overrides {
		if !f.Changed(name) {
			continue
		}
		v, err := f.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	return cfg.Validate()
}

func (a *App) analyze(cmd *cobra.Command, opts analyzeOptions) error {
	ctx := cmd.Context()
	if err := applyFlags(&a.cfg, cmd.Flags()); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	var failOn sdkdrift.RiskLevel
	if opts.failOn != "" {
		level, err := sdkdrift.ParseRiskLevel(opts.failOn)
		if err != nil {
			return err
		}
		failOn = level
	}
	cfg := a.cfg

	in := analysis.Input{}
	diffText, err := a.readDiff(ctx, cmd.InOrStdin(), opts.diffFile)
	if err != nil {
		if opts.diffFile != "" || ctx.Err() != nil {
			return err
		}
		a.logger.Warn("diff unavailable", zap.Error(err))
		in.DiffError = err.Error()
	}
	in.DiffText = diffText

	reader := a.reader()
	genDir := filepath.Join(cfg.Repo, cfg.GeneratedDir)
	wrapDir := filepath.Join(cfg.Repo, cfg.WrapperDir)
	if in.Generated, err = a.snapshot(ctx, reader, genDir); err != nil {
		return err
	}
	if in.Wrappers, err = a.snapshot(ctx, reader, wrapDir); err != nil {
		return err
	}
	in.Wrappers = withoutSubdir(in.Wrappers, wrapDir, genDir)

	analyzer := &analysis.Analyzer{
		Config:    cfg.Config,
		Parser:    newParser(cfg.Parser),
		Endpoints: typescript.NewExtractor(),
		Imports:   typescript.NewImportAnalyzer(cfg.Config),
		Logger:    a.logger,
		Now:       a.Now,
		NewID:     a.NewID,
	}
	if cfg.StripComments {
		analyzer.Normalizer = chroma.NewCommentStripper()
	}
	r := analyzer.Analyze(ctx, in)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if !opts.noSave {
		if err := a.persist(r); err != nil {
			return err
		}
	}

	if opts.view {
		if err := a.Viewer.View(ctx, r); err != nil {
			return err
		}
	}

	if failOn != "" && r.Risk.Level.AtLeast(failOn) {
		return fmt.Errorf("%w: %s >= %s", ErrRiskThreshold, r.Risk.Level, failOn)
	}
	return nil
}

// readDiff returns the diff text from a file, stdin or git. The git form
// prefixes the diff with git's change summary line.
func (a *App) readDiff(ctx context.Context, stdin io.Reader, file string) (string, error) {
	switch file {
	case "":
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read diff from stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read diff: %w", err)
		}
		return string(data), nil
	}

	cfg := a.cfg
	stat, err := a.Git.ShortStat(ctx, cfg.Repo, cfg.Base, cfg.GeneratedDir)
	if err != nil {
		a.logger.Warn("change summary unavailable", zap.Error(err))
		stat = ""
	}
	diff, err := a.Git.Diff(ctx, cfg.Repo, cfg.Base, cfg.GeneratedDir)
	if err != nil {
		return "", err
	}
	return stat + diff, nil
}

// snapshot reads dir. Only cancellation is an error; any other failure
// becomes the snapshot's Error.
func (a *App) snapshot(ctx context.Context, reader sdkdrift.SnapshotReader, dir string) (sdkdrift.Snapshot, error) {
	snap, err := reader.Read(ctx, dir)
	if err != nil {
		if ctx.Err() != nil {
			return sdkdrift.Snapshot{}, ctx.Err()
		}
		a.logger.Warn("source tree unavailable", zap.String("dir", dir), zap.Error(err))
		return sdkdrift.Snapshot{Error: err.Error()}, nil
	}
	return snap, nil
}

// withoutSubdir drops files of the generated tree from the wrapper snapshot
// when the generated directory sits inside the wrapper directory.
func withoutSubdir(snap sdkdrift.Snapshot, wrapDir, genDir string) sdkdrift.Snapshot {
	rel, err := filepath.Rel(wrapDir, genDir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return snap
	}
	prefix := filepath.ToSlash(rel) + "/"
	files := make(map[string]string, len(snap.Files))
	for p, text := range snap.Files {
		if !strings.HasPrefix(p, prefix) {
			files[p] = text
		}
	}
	snap.Files = files
	return snap
}

func newParser(name string) sdkdrift.DiffParser {
	switch name {
	case config.ParserGitdiff:
		return gitdiff.NewParser()
	case config.ParserGodiff:
		return godiff.NewParser()
	default:
		return unidiff.NewParser()
	}
}

// persist saves the report and appends it to the run history.
func (a *App) persist(r *sdkdrift.AnalysisReport) error {
	historyPath := a.historyPath()
	entries, err := a.History.Load(historyPath)
	if err != nil {
		a.logger.Warn("history unreadable", zap.String("path", historyPath), zap.Error(err))
	} else if prev, ok := jsonl.LastWithFingerprint(entries, r.DiffFingerprint); ok {
		a.logger.Info("diff analyzed before",
			zap.String("previous_id", prev.ID),
			zap.String("previous_risk", string(prev.Level)),
		)
	}

	path, err := a.store().Save(r)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	if err := a.History.Append(historyPath, sdkdrift.NewHistoryEntry(r)); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	a.logger.Info("report saved", zap.String("path", path))
	return nil
}
