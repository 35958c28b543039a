package mock

import (
	"context"

	"github.com/fwojciec/sdkdrift"
)

// Compile-time interface verification.
var (
	_ sdkdrift.Viewer     = (*Viewer)(nil)
	_ sdkdrift.Clipboard  = (*Clipboard)(nil)
	_ sdkdrift.WordDiffer = (*WordDiffer)(nil)
)

// Viewer is a mock implementation of sdkdrift.Viewer.
type Viewer struct {
	ViewFn func(ctx context.Context, r *sdkdrift.AnalysisReport) error
}

func (v *Viewer) View(ctx context.Context, r *sdkdrift.AnalysisReport) error {
	return v.ViewFn(ctx, r)
}

// Clipboard is a mock implementation of sdkdrift.Clipboard.
type Clipboard struct {
	CopyFn func(content string) error
}

func (c *Clipboard) Copy(content string) error {
	return c.CopyFn(content)
}

// WordDiffer is a mock implementation of sdkdrift.WordDiffer.
type WordDiffer struct {
	DiffFn func(old, new string) (oldSegs, newSegs []sdkdrift.Segment)
}

func (w *WordDiffer) Diff(old, new string) (oldSegs, newSegs []sdkdrift.Segment) {
	return w.DiffFn(old, new)
}
