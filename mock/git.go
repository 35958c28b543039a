package mock

import (
	"context"

	"github.com/fwojciec/sdkdrift"
)

// Compile-time interface verification.
var _ sdkdrift.GitRunner = (*GitRunner)(nil)

// GitRunner is a mock implementation of sdkdrift.GitRunner.
type GitRunner struct {
	DiffFn      func(ctx context.Context, repoPath, base string, paths ...string) (string, error)
	ShortStatFn func(ctx context.Context, repoPath, base string, paths ...string) (string, error)
}

func (g *GitRunner) Diff(ctx context.Context, repoPath, base string, paths ...string) (string, error) {
	return g.DiffFn(ctx, repoPath, base, paths...)
}

func (g *GitRunner) ShortStat(ctx context.Context, repoPath, base string, paths ...string) (string, error) {
	return g.ShortStatFn(ctx, repoPath, base, paths...)
}
