// Package unidiff implements a lenient line-oriented unified diff parser.
//
// It never fails on malformed input: anything it cannot place is skipped and
// reported as a diagnostic, so callers always get the structure that could
// be recovered.
package unidiff

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/fwojciec/sdkdrift"
)

// Compile-time interface verification.
var _ sdkdrift.DiffParser = (*Parser)(nil)

var hunkHeaderPattern = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@ ?(.*)$`)

const devNull = "/dev/null"

// Parser parses unified diff text with a line scanner.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads diff content and returns the recovered structure.
func (p *Parser) Parse(r io.Reader) (*sdkdrift.ParsedDiff, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseString(string(data)), nil
}

// ParseString parses diff text held in memory.
func ParseString(text string) *sdkdrift.ParsedDiff {
	s := scanText(text)
	files := s.files
	if files == nil {
		files = []sdkdrift.FileChange{}
	}
	return &sdkdrift.ParsedDiff{
		Files:       files,
		Summary:     sdkdrift.ParseDiffSummary(strings.Join(s.header, "\n"), files),
		Diagnostics: s.diags,
	}
}

// HeaderText returns the lines of text that lie outside hunk bodies.
// Summary lines are only looked for there, so hunk content that reads like
// one is ignored.
func HeaderText(text string) string {
	return strings.Join(scanText(text).header, "\n")
}

func scanText(text string) *scanner {
	s := &scanner{}
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	for i, line := range lines {
		s.lineNum = i + 1
		s.scan(strings.TrimSuffix(line, "\r"))
	}
	s.closeHunk()
	s.flushFile()
	return s
}

// fileState accumulates one file while its headers and hunks are scanned.
type fileState struct {
	change  sdkdrift.FileChange
	oldName string
	newName string
	git     bool   // opened by a "diff --git" header
	gitOld  string // old name from the "diff --git" header
	sawOld  bool   // a "---" header was seen
	kindSet bool
}

// belongs reports whether a "---" header naming name continues this file
// rather than opening the next one. Only a git file still waiting for its
// own "---" line can take it, and only when the name agrees with the git
// header. Binary entries never carry "---" headers.
func (f *fileState) belongs(name string) bool {
	if !f.git || f.sawOld || f.change.Binary || len(f.change.Hunks) > 0 {
		return false
	}
	return name == devNull || f.gitOld == "" || stripPrefix(name) == stripPrefix(f.gitOld)
}

type scanner struct {
	files   []sdkdrift.FileChange
	file    *fileState
	lineNum int
	diags   []string
	header  []string // lines outside hunk bodies

	hunk         *sdkdrift.Hunk
	orphan       bool // hunk body is consumed but dropped
	remainingOld int
	remainingNew int
}

func (s *scanner) diag(format string, args ...any) {
	s.diags = append(s.diags, fmt.Sprintf("line %d: ", s.lineNum)+fmt.Sprintf(format, args...))
}

func (s *scanner) scan(line string) {
	if s.hunk != nil {
		if s.scanBody(line) {
			return
		}
		s.closeHunk()
	}
	s.scanHeader(line)
}

// scanBody classifies a line inside a hunk. It returns false when the line
// does not belong to the hunk and must be treated as a header.
func (s *scanner) scanBody(line string) bool {
	if s.remainingOld <= 0 && s.remainingNew <= 0 {
		return false
	}

	var kind sdkdrift.LineKind
	var content string
	switch {
	case line == "":
		// Some tools strip the single space from empty context lines.
		kind = sdkdrift.LineContext
	case line[0] == ' ':
		kind, content = sdkdrift.LineContext, line[1:]
	case line[0] == '+':
		kind, content = sdkdrift.LineAddition, line[1:]
	case line[0] == '-':
		kind, content = sdkdrift.LineDeletion, line[1:]
	case line[0] == '\\':
		// "\ No newline at end of file"
		return true
	default:
		return false
	}

	switch kind {
	case sdkdrift.LineContext:
		if s.remainingOld <= 0 || s.remainingNew <= 0 {
			return false
		}
		s.remainingOld--
		s.remainingNew--
	case sdkdrift.LineAddition:
		if s.remainingNew <= 0 {
			return false
		}
		s.remainingNew--
	case sdkdrift.LineDeletion:
		if s.remainingOld <= 0 {
			return false
		}
		s.remainingOld--
	}

	if !s.orphan {
		s.hunk.Lines = append(s.hunk.Lines, sdkdrift.LineChange{Kind: kind, Content: content})
	}
	return true
}

func (s *scanner) scanHeader(line string) {
	s.header = append(s.header, line)
	switch {
	case strings.HasPrefix(line, "diff --git "):
		s.flushFile()
		s.file = &fileState{git: true}
		s.file.oldName, s.file.newName = splitGitHeader(strings.TrimPrefix(line, "diff --git "))
		s.file.gitOld = s.file.oldName
		if s.file.newName == "" {
			s.diag("unrecognized file header %q", line)
		}

	case strings.HasPrefix(line, "--- "):
		// A plain unified diff has no "diff --git" line; the "---" header
		// opens the file instead.
		name := headerName(strings.TrimPrefix(line, "--- "))
		if s.file == nil || !s.file.belongs(name) {
			s.flushFile()
			s.file = &fileState{}
		}
		s.file.oldName = name
		s.file.sawOld = true
		if s.file.oldName == devNull {
			s.setKind(sdkdrift.ChangeAdded)
		}

	case strings.HasPrefix(line, "+++ "):
		if s.file == nil {
			s.diag("%q without a preceding file header", line)
			return
		}
		s.file.newName = headerName(strings.TrimPrefix(line, "+++ "))
		if s.file.newName == devNull {
			s.setKind(sdkdrift.ChangeDeleted)
		}

	case strings.HasPrefix(line, "@@"):
		s.openHunk(line)

	case s.file == nil:
		// Preamble, stat lines, commit messages.

	case strings.HasPrefix(line, "new file mode"):
		s.setKind(sdkdrift.ChangeAdded)
	case strings.HasPrefix(line, "deleted file mode"):
		s.setKind(sdkdrift.ChangeDeleted)
	case strings.HasPrefix(line, "rename from "):
		s.file.oldName = unquote(strings.TrimPrefix(line, "rename from "))
		s.setKind(sdkdrift.ChangeRenamed)
	case strings.HasPrefix(line, "rename to "):
		s.file.newName = unquote(strings.TrimPrefix(line, "rename to "))
		s.setKind(sdkdrift.ChangeRenamed)
	case strings.HasPrefix(line, "copy to "):
		s.file.newName = unquote(strings.TrimPrefix(line, "copy to "))
		s.setKind(sdkdrift.ChangeAdded)
	case strings.HasPrefix(line, "Binary files "), line == "GIT binary patch":
		s.file.change.Binary = true
	}
}

func (s *scanner) setKind(k sdkdrift.ChangeKind) {
	s.file.change.Kind = k
	s.file.kindSet = true
}

func (s *scanner) openHunk(line string) {
	m := hunkHeaderPattern.FindStringSubmatch(line)
	if m == nil {
		s.diag("malformed hunk header %q", line)
		return
	}
	h := &sdkdrift.Hunk{
		OldStart: atoi(m[1]),
		OldLines: rangeLen(m[2]),
		NewStart: atoi(m[3]),
		NewLines: rangeLen(m[4]),
		Section:  m[5],
	}
	s.hunk = h
	s.remainingOld = h.OldLines
	s.remainingNew = h.NewLines
	s.orphan = s.file == nil
	if s.orphan {
		s.diag("hunk %q has no file header, dropped", line)
	}
}

func (s *scanner) closeHunk() {
	if s.hunk == nil {
		return
	}
	if !s.orphan {
		if s.remainingOld > 0 || s.remainingNew > 0 {
			s.diag("hunk @@ -%d,%d +%d,%d @@ in %s truncated: %d old and %d new lines missing",
				s.hunk.OldStart, s.hunk.OldLines, s.hunk.NewStart, s.hunk.NewLines,
				s.file.path(), s.remainingOld, s.remainingNew)
		}
		s.file.change.Hunks = append(s.file.change.Hunks, *s.hunk)
	}
	s.hunk = nil
	s.orphan = false
	s.remainingOld, s.remainingNew = 0, 0
}

func (s *scanner) flushFile() {
	if s.file == nil {
		return
	}
	f := s.file
	s.file = nil

	c := f.change
	if !f.kindSet {
		c.Kind = sdkdrift.ChangeModified
	}
	c.Path = f.path()
	if c.Kind == sdkdrift.ChangeRenamed {
		c.OldPath = stripPrefix(f.oldName)
	}
	if c.Path == "" {
		s.diag("file without a usable path dropped")
		return
	}
	if c.Hunks == nil {
		c.Hunks = []sdkdrift.Hunk{}
	}
	s.files = append(s.files, c)
}

// path returns the post-change path, falling back to the old path for
// deletions.
func (f *fileState) path() string {
	if f.newName != "" && f.newName != devNull && f.change.Kind != sdkdrift.ChangeDeleted {
		return stripPrefix(f.newName)
	}
	if f.oldName != "" && f.oldName != devNull {
		return stripPrefix(f.oldName)
	}
	return stripPrefix(f.newName)
}

// splitGitHeader splits the "a/x b/y" part of a "diff --git" line.
func splitGitHeader(rest string) (oldName, newName string) {
	if strings.HasPrefix(rest, `"`) {
		if q, err := strconv.QuotedPrefix(rest); err == nil {
			oldName = unquote(q)
			return oldName, unquote(strings.TrimSpace(rest[len(q):]))
		}
	}
	// Prefer the split that yields identical names, which is the common
	// case and resolves paths containing " b/".
	last := -1
	for i := 0; i < len(rest); i++ {
		if !strings.HasPrefix(rest[i:], " b/") {
			continue
		}
		last = i
		if stripPrefix(rest[:i]) == stripPrefix(rest[i+1:]) {
			return rest[:i], rest[i+1:]
		}
	}
	if last >= 0 {
		return rest[:last], rest[last+1:]
	}
	if i := strings.LastIndexByte(rest, ' '); i >= 0 {
		return rest[:i], rest[i+1:]
	}
	return "", ""
}

// headerName extracts the path from a "---" or "+++" header, dropping any
// tab-separated timestamp.
func headerName(s string) string {
	if i := strings.IndexByte(s, '\t'); i >= 0 {
		s = s[:i]
	}
	return unquote(strings.TrimSpace(s))
}

func unquote(s string) string {
	if strings.HasPrefix(s, `"`) {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
	}
	return s
}

// stripPrefix removes the a/ or b/ prefix git adds to diff paths.
func stripPrefix(p string) string {
	if p == devNull {
		return ""
	}
	if strings.HasPrefix(p, "a/") || strings.HasPrefix(p, "b/") {
		return p[2:]
	}
	return p
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// rangeLen parses a hunk range length; an omitted length means one line.
func rangeLen(s string) int {
	if s == "" {
		return 1
	}
	return atoi(s)
}
