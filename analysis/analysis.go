// Package analysis assembles an AnalysisReport from a diff and the generated
// and wrapper source trees.
package analysis

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/sdkdrift"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Input is everything one analysis run looks at.
type Input struct {
	// DiffText is the raw unified diff of the generated tree, optionally
	// preceded by a "N files changed" summary line.
	DiffText string
	// DiffError is set when the diff could not be obtained at all.
	DiffError string
	// Generated is the post-change generated tree, keyed by path relative
	// to the generated root.
	Generated sdkdrift.Snapshot
	// Wrappers is the hand-written wrapper tree.
	Wrappers sdkdrift.Snapshot
}

// Analyzer runs the diff, endpoint, import, correlation and scoring steps
// and assembles their results. Parser, Endpoints and Imports are required;
// the rest default when nil.
type Analyzer struct {
	Config     sdkdrift.Config
	Parser     sdkdrift.DiffParser
	Endpoints  sdkdrift.EndpointExtractor
	Imports    sdkdrift.ImportAnalyzer
	Normalizer sdkdrift.SourceNormalizer
	Logger     *zap.Logger

	Now   func() time.Time
	NewID func() string
}

// Analyze builds a report. It never fails: every degraded step is recorded
// as an annotation on the report instead.
func (a *Analyzer) Analyze(ctx context.Context, in Input) *sdkdrift.AnalysisReport {
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := a.Now
	if now == nil {
		now = time.Now
	}
	newID := a.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	b := &builder{}
	if in.DiffError != "" {
		b.annotate(sdkdrift.SectionDiff, "diff unavailable: %s", in.DiffError)
	}

	parsed, err := a.Parser.Parse(strings.NewReader(in.DiffText))
	if err != nil {
		b.annotate(sdkdrift.SectionDiff, "read diff: %v", err)
		parsed = &sdkdrift.ParsedDiff{}
	}
	files := parsed.Files
	if files == nil {
		files = []sdkdrift.FileChange{}
	}
	for _, d := range parsed.Diagnostics {
		b.annotate(sdkdrift.SectionDiff, "%s", d)
	}
	if parsed.Summary != nil && !parsed.Summary.Consistent {
		b.annotate(sdkdrift.SectionDiff, "%s", parsed.Summary.Mismatch())
	}

	b.snapshotAnnotations(sdkdrift.SectionEndpoints, "generated", in.Generated)
	b.snapshotAnnotations(sdkdrift.SectionImports, "wrapper", in.Wrappers)

	endpoints := a.endpoints(files, in.Generated)
	profiles := a.profiles(ctx, b, in.Wrappers)
	affected := sdkdrift.Correlate(a.Config, files, profiles)
	if affected == nil {
		affected = []sdkdrift.AffectedWrapper{}
	}
	risk := sdkdrift.ScoreRisk(a.Config.Risk, len(files), len(affected), sdkdrift.CountAPIChanges(a.Config, files))

	r := &sdkdrift.AnalysisReport{
		ID:                newID(),
		Timestamp:         now().UTC(),
		DiffFingerprint:   Fingerprint(in.DiffText),
		Files:             files,
		Summary:           parsed.Summary,
		NewEndpoints:      endpoints.added,
		RemovedEndpoints:  endpoints.removed,
		ModifiedEndpoints: endpoints.modified,
		WrapperCount:      len(profiles),
		AffectedWrappers:  affected,
		Risk:              risk,
		Annotations:       b.annotations,
	}

	logger.Info("analysis complete",
		zap.String("id", r.ID),
		zap.Int("files", len(r.Files)),
		zap.Int("new_endpoints", len(r.NewEndpoints)),
		zap.Int("affected_wrappers", len(r.AffectedWrappers)),
		zap.String("risk", string(r.Risk.Level)),
		zap.Int("score", r.Risk.Score),
		zap.Int("annotations", len(r.Annotations)),
	)
	return r
}

// Fingerprint returns a stable hash of diff text for spotting repeat runs.
func Fingerprint(diffText string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(diffText))
}

// builder collects annotations while a report is assembled.
type builder struct {
	annotations []sdkdrift.Annotation
}

func (b *builder) annotate(section, format string, args ...any) {
	b.annotations = append(b.annotations, sdkdrift.Annotation{
		Section: section,
		Message: fmt.Sprintf(format, args...),
	})
}

func (b *builder) snapshotAnnotations(section, name string, snap sdkdrift.Snapshot) {
	if snap.Error != "" {
		b.annotate(section, "%s tree unavailable: %s", name, snap.Error)
	}
	for _, n := range snap.Notes {
		b.annotate(section, "%s", n)
	}
	for _, p := range sortedKeys(snap.Files) {
		if sdkdrift.IsOversizedMarker(snap.Files[p]) {
			b.annotate(section, "%s: %s file too large, skipped", p, name)
		}
	}
}

func (a *Analyzer) normalize(path, text string) string {
	if a.Normalizer == nil {
		return text
	}
	return a.Normalizer.Normalize(path, text)
}

// profiles analyzes every wrapper file concurrently and returns the profiles
// ordered by path.
func (a *Analyzer) profiles(ctx context.Context, b *builder, snap sdkdrift.Snapshot) []sdkdrift.WrapperFileProfile {
	paths := sortedKeys(snap.Files)
	results := make([]*sdkdrift.WrapperFileProfile, len(paths))

	limit := a.Config.Concurrency
	if limit <= 0 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, p := range paths {
		text := snap.Files[p]
		if sdkdrift.IsOversizedMarker(text) {
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			profile := a.Imports.Analyze(p, a.normalize(p, text))
			results[i] = &profile
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		b.annotate(sdkdrift.SectionImports, "wrapper analysis interrupted: %v", err)
	}

	out := make([]sdkdrift.WrapperFileProfile, 0, len(paths))
	for _, p := range results {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// endpointChanges are the endpoint signals derived from one diff.
type endpointChanges struct {
	added    []sdkdrift.EndpointDescriptor
	removed  []sdkdrift.EndpointDescriptor
	modified []sdkdrift.EndpointDescriptor
}

func (a *Analyzer) endpoints(files []sdkdrift.FileChange, generated sdkdrift.Snapshot) endpointChanges {
	ec := endpointChanges{
		added:    []sdkdrift.EndpointDescriptor{},
		removed:  []sdkdrift.EndpointDescriptor{},
		modified: []sdkdrift.EndpointDescriptor{},
	}
	for _, f := range files {
		if f.Binary || !a.Config.IsAPIPath(f.Path) {
			continue
		}

		var added, removed []sdkdrift.EndpointDescriptor
		switch f.Kind {
		case sdkdrift.ChangeAdded:
			if text, ok := a.snapshotText(generated, f.Path); ok {
				added = a.Endpoints.Extract(f.Path, a.normalize(f.Path, text))
			} else {
				added = a.sideEndpoints(f, sdkdrift.LineAddition)
			}
		case sdkdrift.ChangeDeleted:
			removed = a.sideEndpoints(f, sdkdrift.LineDeletion)
		default:
			added = a.sideEndpoints(f, sdkdrift.LineAddition)
			removed = a.sideEndpoints(f, sdkdrift.LineDeletion)
		}

		both := make(map[string]bool)
		for _, r := range removed {
			for _, n := range added {
				if n.Name == r.Name {
					both[n.Name] = true
				}
			}
		}
		for _, n := range added {
			if both[n.Name] {
				ec.modified = append(ec.modified, n)
			} else {
				ec.added = append(ec.added, n)
			}
		}
		for _, r := range removed {
			if !both[r.Name] {
				ec.removed = append(ec.removed, r)
			}
		}
	}
	return ec
}

// snapshotText looks a diff path up in the generated snapshot, whose keys
// are relative to the generated root.
func (a *Analyzer) snapshotText(snap sdkdrift.Snapshot, p string) (string, bool) {
	candidates := []string{p}
	if prefix := strings.TrimSuffix(a.Config.GeneratedPathPrefix, "/"); prefix != "" {
		candidates = append(candidates, strings.TrimPrefix(p, prefix+"/"))
	}
	for _, c := range candidates {
		if text, ok := snap.Files[c]; ok && !sdkdrift.IsOversizedMarker(text) {
			return text, true
		}
	}
	return "", false
}

// sideEndpoints extracts endpoints from one side of a file's hunks and maps
// their lines back to that side's file line numbers.
func (a *Analyzer) sideEndpoints(f sdkdrift.FileChange, kind sdkdrift.LineKind) []sdkdrift.EndpointDescriptor {
	text, lines := sideText(f, kind)
	if text == "" {
		return nil
	}
	eps := a.Endpoints.Extract(f.Path, a.normalize(f.Path, text))
	for i := range eps {
		if n := eps[i].Line; n >= 1 && n <= len(lines) {
			eps[i].Line = lines[n-1]
		}
	}
	return eps
}

// sideText joins the lines of the given kind and records, for each joined
// line, its number in the old (deletions) or new (additions) file.
func sideText(f sdkdrift.FileChange, kind sdkdrift.LineKind) (string, []int) {
	var sb strings.Builder
	var lines []int
	for _, h := range f.Hunks {
		oldLine, newLine := h.OldStart, h.NewStart
		for _, l := range h.Lines {
			switch l.Kind {
			case sdkdrift.LineContext:
				oldLine++
				newLine++
			case sdkdrift.LineDeletion:
				if kind == sdkdrift.LineDeletion {
					sb.WriteString(l.Content)
					sb.WriteByte('\n')
					lines = append(lines, oldLine)
				}
				oldLine++
			case sdkdrift.LineAddition:
				if kind == sdkdrift.LineAddition {
					sb.WriteString(l.Content)
					sb.WriteByte('\n')
					lines = append(lines, newLine)
				}
				newLine++
			}
		}
	}
	return sb.String(), lines
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
