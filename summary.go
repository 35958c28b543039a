package sdkdrift

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// summaryPattern matches git's shortstat line, e.g.
// "3 files changed, 10 insertions(+), 2 deletions(-)".
var summaryPattern = regexp.MustCompile(
	`(?m)^\s*(\d+) files? changed(?:, (\d+) insertions?\(\+\))?(?:, (\d+) deletions?\(-\))?\s*$`,
)

// ChangeCounts is a files/insertions/deletions triple.
type ChangeCounts struct {
	Files      int `json:"files"`
	Insertions int `json:"insertions"`
	Deletions  int `json:"deletions"`
}

// DiffSummary compares a summary line found in the diff text against the
// counts derived from the parsed structure. Structural counts are
// authoritative when the two disagree.
type DiffSummary struct {
	Reported   *ChangeCounts `json:"reported,omitempty"`
	Structural ChangeCounts  `json:"structural"`
	Consistent bool          `json:"consistent"`
}

// Mismatch describes the disagreement, or returns empty when consistent.
func (s *DiffSummary) Mismatch() string {
	if s == nil || s.Reported == nil || s.Consistent {
		return ""
	}
	r, c := *s.Reported, s.Structural
	return fmt.Sprintf("summary line reports %d files, +%d/-%d but diff contains %d files, +%d/-%d",
		r.Files, r.Insertions, r.Deletions, c.Files, c.Insertions, c.Deletions)
}

// ParseSummaryLine extracts the counts from the first summary line in text.
// It returns false when no summary line is present.
func ParseSummaryLine(text string) (ChangeCounts, bool) {
	m := summaryPattern.FindStringSubmatch(text)
	if m == nil {
		return ChangeCounts{}, false
	}
	return ChangeCounts{
		Files:      atoi(m[1]),
		Insertions: atoi(m[2]),
		Deletions:  atoi(m[3]),
	}, true
}

// StructuralCounts totals the parsed file changes.
func StructuralCounts(files []FileChange) ChangeCounts {
	c := ChangeCounts{Files: len(files)}
	for _, f := range files {
		added, deleted := f.Stats()
		c.Insertions += added
		c.Deletions += deleted
	}
	return c
}

// ParseDiffSummary cross-checks any summary line in text against files.
func ParseDiffSummary(text string, files []FileChange) *DiffSummary {
	s := &DiffSummary{Structural: StructuralCounts(files), Consistent: true}
	if reported, ok := ParseSummaryLine(text); ok {
		s.Reported = &reported
		s.Consistent = reported == s.Structural
	}
	return s
}

// atoi parses an optional regex group; an unmatched group yields zero.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// oversizedPrefix begins the placeholder text substituted for files that
// exceed the reader's size limit.
const oversizedPrefix = "/* sdkdrift: file too large"

// OversizedMarker returns the placeholder text for a file of size bytes.
func OversizedMarker(size int64) string {
	return fmt.Sprintf("%s (%d bytes), content omitted */\n", oversizedPrefix, size)
}

// IsOversizedMarker reports whether text is a placeholder from OversizedMarker.
func IsOversizedMarker(text string) bool {
	return strings.HasPrefix(text, oversizedPrefix)
}
