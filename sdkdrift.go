// Package sdkdrift provides domain types for detecting how changes to a
// generated API client ripple into the hand-written wrapper layer above it.
package sdkdrift

import (
	"context"
	"errors"
	"io"
	"time"
)

// Sentinel errors.
var (
	// ErrUnavailable is returned when a source tree cannot be read at all.
	ErrUnavailable = errors.New("source tree unavailable")
	// ErrNoReport is returned when no persisted report exists yet.
	ErrNoReport = errors.New("no report found")
)

// ChangeKind describes what happened to a file in a diff.
type ChangeKind string

// File change kinds.
const (
	ChangeModified ChangeKind = "modified"
	ChangeAdded    ChangeKind = "added"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeRenamed  ChangeKind = "renamed"
)

// LineKind classifies a single line within a hunk.
type LineKind string

// Line kinds.
const (
	LineContext  LineKind = "context"
	LineAddition LineKind = "addition"
	LineDeletion LineKind = "deletion"
)

// FileChange represents changes to a single file.
type FileChange struct {
	Path    string     `json:"path"`               // Post-change path, or the old path for deletions
	OldPath string     `json:"old_path,omitempty"` // Set for renames only
	Kind    ChangeKind `json:"kind"`
	Binary  bool       `json:"binary,omitempty"` // Binary files have no hunks
	Hunks   []Hunk     `json:"hunks"`
}

// Stats returns the number of added and deleted lines in the file.
func (f FileChange) Stats() (added, deleted int) {
	for _, hunk := range f.Hunks {
		for _, line := range hunk.Lines {
			switch line.Kind {
			case LineAddition:
				added++
			case LineDeletion:
				deleted++
			}
		}
	}
	return added, deleted
}

// AddedText joins the content of every added line, hunk by hunk.
func (f FileChange) AddedText() string {
	return f.joinLines(LineAddition)
}

// DeletedText joins the content of every deleted line, hunk by hunk.
func (f FileChange) DeletedText() string {
	return f.joinLines(LineDeletion)
}

func (f FileChange) joinLines(kind LineKind) string {
	var n int
	for _, hunk := range f.Hunks {
		for _, line := range hunk.Lines {
			if line.Kind == kind {
				n += len(line.Content) + 1
			}
		}
	}
	buf := make([]byte, 0, n)
	for _, hunk := range f.Hunks {
		for _, line := range hunk.Lines {
			if line.Kind == kind {
				buf = append(buf, line.Content...)
				buf = append(buf, '\n')
			}
		}
	}
	return string(buf)
}

// Hunk represents a contiguous block of changes within a file.
type Hunk struct {
	OldStart int          `json:"old_start"` // From @@ -X,...
	OldLines int          `json:"old_lines"` // From @@ -X,Y ...
	NewStart int          `json:"new_start"` // From @@ ...,+X
	NewLines int          `json:"new_lines"` // From @@ ...,+X,Y
	Section  string       `json:"section,omitempty"`
	Lines    []LineChange `json:"lines"`
}

// Counts returns how many lines of the old and new file the hunk body
// reconstructs.
func (h Hunk) Counts() (old, new int) {
	for _, line := range h.Lines {
		switch line.Kind {
		case LineContext:
			old++
			new++
		case LineDeletion:
			old++
		case LineAddition:
			new++
		}
	}
	return old, new
}

// Complete reports whether the hunk body matches its declared ranges.
func (h Hunk) Complete() bool {
	old, new := h.Counts()
	return old == h.OldLines && new == h.NewLines
}

// LineChange is a single classified line within a hunk, prefix stripped.
type LineChange struct {
	Kind    LineKind `json:"kind"`
	Content string   `json:"content"`
}

// Segment is a run of text within a line for word-level diffing.
type Segment struct {
	Text    string
	Changed bool // Differs from the paired line
}

// WordDiffer splits a deleted line and its replacement into segments,
// marking the words that changed.
type WordDiffer interface {
	Diff(old, new string) (oldSegs, newSegs []Segment)
}

// ParsedDiff is the structured form of a raw unified diff.
type ParsedDiff struct {
	Files       []FileChange `json:"files"`
	Summary     *DiffSummary `json:"summary,omitempty"`
	Diagnostics []string     `json:"diagnostics,omitempty"`
}

// DiffParser turns raw unified-diff text into a ParsedDiff. Implementations
// degrade to partial structure on malformed input; the error return is
// reserved for failures reading r.
type DiffParser interface {
	Parse(r io.Reader) (*ParsedDiff, error)
}

// EndpointKindAPIMethod tags endpoints discovered in generated API files.
const EndpointKindAPIMethod = "api-method"

// EndpointDescriptor is an async callable declared by a generated API file.
// Two descriptors are the same endpoint only if Name and File both match.
type EndpointDescriptor struct {
	Name       string `json:"name"`
	File       string `json:"file"`
	Kind       string `json:"kind"`
	ReturnType string `json:"return_type,omitempty"`
	Line       int    `json:"line,omitempty"`
}

// MethodSignature is an async method with a typed Promise return.
type MethodSignature struct {
	Name       string `json:"name"`
	ReturnType string `json:"return_type"`
	Line       int    `json:"line"`
}

// EndpointExtractor finds endpoint declarations in a generated source file.
type EndpointExtractor interface {
	// Extract returns endpoints in declaration order.
	Extract(path, text string) []EndpointDescriptor
}

// ImportRecord is one named-import statement in a wrapper file.
type ImportRecord struct {
	WrapperPath string   `json:"wrapper_path"`
	Source      string   `json:"source"` // Raw, unresolved module specifier
	Symbols     []string `json:"symbols"`
	IsGenerated bool     `json:"is_generated"`
	Line        int      `json:"line"`
}

// WrapperFileProfile captures what a wrapper file imports and exports.
type WrapperFileProfile struct {
	Path    string            `json:"path"`
	Imports []ImportRecord    `json:"imports"`
	Methods []MethodSignature `json:"methods"`
}

// GeneratedImports returns the imports that target the generated tree.
func (p WrapperFileProfile) GeneratedImports() []ImportRecord {
	var out []ImportRecord
	for _, imp := range p.Imports {
		if imp.IsGenerated {
			out = append(out, imp)
		}
	}
	return out
}

// ImportAnalyzer builds a WrapperFileProfile from a wrapper source file.
type ImportAnalyzer interface {
	Analyze(path, text string) WrapperFileProfile
}

// SourceNormalizer rewrites source text before pattern matching, for example
// to blank out comments. Implementations must preserve line numbering.
type SourceNormalizer interface {
	Normalize(path, text string) string
}

// AffectedImport is an import whose generated source changed in the diff.
type AffectedImport struct {
	Source       string   `json:"source"`
	Line         int      `json:"line"`
	Symbols      []string `json:"symbols"`
	ChangedFiles []string `json:"changed_files"`
}

// AffectedWrapper is a wrapper file with at least one affected import.
type AffectedWrapper struct {
	Path                string           `json:"path"`
	Tier                RiskLevel        `json:"tier"`
	AffectedImportCount int              `json:"affected_import_count"`
	Imports             []AffectedImport `json:"imports"`
}

// Snapshot is a set of source files keyed by slash-separated relative path.
// Error is set when the tree could not be read at all; Notes describe
// individual files that were skipped or truncated.
type Snapshot struct {
	Files map[string]string `json:"files"`
	Error string            `json:"error,omitempty"`
	Notes []string          `json:"notes,omitempty"`
}

// Annotation records a degraded path taken while building a report.
type Annotation struct {
	Section string `json:"section"` // diff, endpoints or imports
	Message string `json:"message"`
}

// Report sections used in annotations.
const (
	SectionDiff      = "diff"
	SectionEndpoints = "endpoints"
	SectionImports   = "imports"
)

// AnalysisReport is the immutable result of one analysis run.
type AnalysisReport struct {
	ID                string               `json:"id"`
	Timestamp         time.Time            `json:"timestamp"`
	DiffFingerprint   string               `json:"diff_fingerprint"`
	Files             []FileChange         `json:"files"`
	Summary           *DiffSummary         `json:"summary,omitempty"`
	NewEndpoints      []EndpointDescriptor `json:"new_endpoints"`
	RemovedEndpoints  []EndpointDescriptor `json:"removed_endpoints"`
	ModifiedEndpoints []EndpointDescriptor `json:"modified_endpoints"`
	WrapperCount      int                  `json:"wrapper_count"`
	AffectedWrappers  []AffectedWrapper    `json:"affected_wrappers"`
	Risk              RiskAssessment       `json:"risk"`
	Annotations       []Annotation         `json:"annotations,omitempty"`
}

// SectionAnnotations returns the annotations recorded for one section.
func (r *AnalysisReport) SectionAnnotations(section string) []Annotation {
	var out []Annotation
	for _, a := range r.Annotations {
		if a.Section == section {
			out = append(out, a)
		}
	}
	return out
}

// HistoryEntry is a one-line digest of a report for run history.
type HistoryEntry struct {
	ID               string    `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	DiffFingerprint  string    `json:"diff_fingerprint"`
	Level            RiskLevel `json:"level"`
	Score            int       `json:"score"`
	ChangedFiles     int       `json:"changed_files"`
	AffectedWrappers int       `json:"affected_wrappers"`
	NewEndpoints     int       `json:"new_endpoints"`
}

// NewHistoryEntry digests a report.
func NewHistoryEntry(r *AnalysisReport) HistoryEntry {
	return HistoryEntry{
		ID:               r.ID,
		Timestamp:        r.Timestamp,
		DiffFingerprint:  r.DiffFingerprint,
		Level:            r.Risk.Level,
		Score:            r.Risk.Score,
		ChangedFiles:     len(r.Files),
		AffectedWrappers: len(r.AffectedWrappers),
		NewEndpoints:     len(r.NewEndpoints),
	}
}

// SnapshotReader loads a source tree from storage.
type SnapshotReader interface {
	Read(ctx context.Context, dir string) (Snapshot, error)
}

// ReportStore persists reports as JSON snapshots.
type ReportStore interface {
	Save(r *AnalysisReport) (string, error)
	Latest() (*AnalysisReport, error)
}

// HistoryStore appends and loads run history.
type HistoryStore interface {
	Append(path string, e HistoryEntry) error
	Load(path string) ([]HistoryEntry, error)
}

// GitRunner provides read-only access to diffs of the generated tree.
type GitRunner interface {
	// Diff returns the unified diff between base and the working tree,
	// limited to paths.
	Diff(ctx context.Context, repoPath, base string, paths ...string) (string, error)
	// ShortStat returns git's one-line change summary for the same range.
	ShortStat(ctx context.Context, repoPath, base string, paths ...string) (string, error)
}

// Viewer displays a report and blocks until the user exits.
type Viewer interface {
	View(ctx context.Context, r *AnalysisReport) error
}

// Clipboard provides copy-to-clipboard functionality.
type Clipboard interface {
	Copy(content string) error
}
