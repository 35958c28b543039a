package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/sdkdrift"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Compile-time interface verification.
var _ sdkdrift.SnapshotReader = (*SnapshotReader)(nil)

// SnapshotReader loads every matching source file under a directory.
// Reads fan out across a bounded number of goroutines; each read is limited
// by size and by time. Oversized files are replaced by a marker and slow or
// unreadable files are skipped with a note rather than failing the snapshot.
type SnapshotReader struct {
	cfg    sdkdrift.Config
	logger *zap.Logger
}

// NewSnapshotReader creates a SnapshotReader using the include/exclude
// globs, size limit, timeout and concurrency from cfg.
func NewSnapshotReader(cfg sdkdrift.Config, logger *zap.Logger) *SnapshotReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotReader{cfg: cfg, logger: logger}
}

// fileResult is the outcome of reading one file.
type fileResult struct {
	text string
	note string
	ok   bool
}

// Read returns the snapshot of dir. A missing or unreadable directory
// yields an error wrapping sdkdrift.ErrUnavailable.
func (r *SnapshotReader) Read(ctx context.Context, dir string) (sdkdrift.Snapshot, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return sdkdrift.Snapshot{}, fmt.Errorf("%w: %s: %v", sdkdrift.ErrUnavailable, dir, err)
	}
	if !info.IsDir() {
		return sdkdrift.Snapshot{}, fmt.Errorf("%w: %s is not a directory", sdkdrift.ErrUnavailable, dir)
	}

	paths, err := r.list(dir)
	if err != nil {
		return sdkdrift.Snapshot{}, fmt.Errorf("%w: %s: %v", sdkdrift.ErrUnavailable, dir, err)
	}

	results := make([]fileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.Concurrency, 1))
	for i, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.readFile(gctx, filepath.Join(dir, filepath.FromSlash(rel)), rel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return sdkdrift.Snapshot{}, err
	}

	snap := sdkdrift.Snapshot{Files: make(map[string]string, len(paths))}
	for i, rel := range paths {
		res := results[i]
		if res.note != "" {
			snap.Notes = append(snap.Notes, res.note)
		}
		if res.ok {
			snap.Files[rel] = res.text
		}
	}
	r.logger.Debug("snapshot read",
		zap.String("dir", dir),
		zap.Int("files", len(snap.Files)),
		zap.Int("notes", len(snap.Notes)),
	)
	return snap, nil
}

// list returns the slash-separated relative paths under dir that match the
// include globs and none of the exclude globs, sorted.
func (r *SnapshotReader) list(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && matchAny(r.cfg.Exclude, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if (len(r.cfg.Include) == 0 || matchAny(r.cfg.Include, rel)) && !matchAny(r.cfg.Exclude, rel) {
			paths = append(paths, rel)
		}
		return nil
	})
	sort.Strings(paths)
	return paths, err
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// readFile reads one file within the configured size and time limits.
func (r *SnapshotReader) readFile(ctx context.Context, path, rel string) fileResult {
	f, err := os.Open(path)
	if err != nil {
		return fileResult{note: fmt.Sprintf("%s: unreadable: %v", rel, err)}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fileResult{note: fmt.Sprintf("%s: unreadable: %v", rel, err)}
	}
	if info.Size() > r.cfg.MaxFileBytes {
		return fileResult{text: sdkdrift.OversizedMarker(info.Size()), ok: true}
	}

	if r.cfg.ReadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.ReadTimeout)
		defer cancel()
	}

	type readResult struct {
		data []byte
		err  error
	}
	done := make(chan readResult, 1)
	go func() {
		data, err := io.ReadAll(io.LimitReader(f, r.cfg.MaxFileBytes+1))
		done <- readResult{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		// Unblock the reader; the deferred Close is then a no-op error.
		f.Close()
		<-done
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fileResult{note: fmt.Sprintf("%s: read timed out after %s, skipped", rel, r.cfg.ReadTimeout)}
		}
		return fileResult{note: fmt.Sprintf("%s: read cancelled", rel)}
	case res := <-done:
		if res.err != nil {
			return fileResult{note: fmt.Sprintf("%s: unreadable: %v", rel, res.err)}
		}
		if int64(len(res.data)) > r.cfg.MaxFileBytes {
			// The file grew after it was stat'ed.
			return fileResult{text: sdkdrift.OversizedMarker(int64(len(res.data))), ok: true}
		}
		return fileResult{text: string(res.data), ok: true}
	}
}
