// Package godiff implements diff parsing using sourcegraph/go-diff.
package godiff

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/sdkdrift"
	"github.com/fwojciec/sdkdrift/unidiff"
	"github.com/sourcegraph/go-diff/diff"
)

// Compile-time interface verification.
var _ sdkdrift.DiffParser = (*Parser)(nil)

const devNull = "/dev/null"

// Parser parses unified diffs with go-diff. Inputs go-diff rejects are
// re-parsed with the lenient unidiff scanner, keeping the failure as a
// diagnostic.
type Parser struct {
	fallback sdkdrift.DiffParser
}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{fallback: unidiff.NewParser()}
}

// Parse reads diff content and returns the parsed result.
func (p *Parser) Parse(r io.Reader) (*sdkdrift.ParsedDiff, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	result := &sdkdrift.ParsedDiff{Files: []sdkdrift.FileChange{}}
	if len(bytes.TrimSpace(data)) == 0 {
		result.Summary = sdkdrift.ParseDiffSummary("", result.Files)
		return result, nil
	}

	fileDiffs, err := diff.ParseMultiFileDiff(data)
	if err != nil {
		fallback, ferr := p.fallback.Parse(bytes.NewReader(data))
		if ferr != nil {
			return nil, ferr
		}
		fallback.Diagnostics = append([]string{fmt.Sprintf("godiff: %v; fell back to lenient parser", err)}, fallback.Diagnostics...)
		return fallback, nil
	}

	for _, fd := range fileDiffs {
		fc, diags, ok := convertFile(fd)
		if !ok {
			continue
		}
		result.Files = append(result.Files, fc)
		result.Diagnostics = append(result.Diagnostics, diags...)
	}
	result.Summary = sdkdrift.ParseDiffSummary(unidiff.HeaderText(string(data)), result.Files)
	return result, nil
}

// header is what the extended header lines of one file diff say.
type header struct {
	gitOld, gitNew       string
	renameFrom, renameTo string
	newFile, deletedFile bool
	binary               bool
}

func parseHeader(lines []string) header {
	var h header
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "diff --git "):
			h.gitOld, h.gitNew = splitGitHeader(strings.TrimPrefix(l, "diff --git "))
		case strings.HasPrefix(l, "rename from "):
			h.renameFrom = strings.TrimPrefix(l, "rename from ")
		case strings.HasPrefix(l, "rename to "):
			h.renameTo = strings.TrimPrefix(l, "rename to ")
		case strings.HasPrefix(l, "new file mode"), strings.HasPrefix(l, "copy to "):
			h.newFile = true
		case strings.HasPrefix(l, "deleted file mode"):
			h.deletedFile = true
		case strings.HasPrefix(l, "Binary files "), l == "GIT binary patch":
			h.binary = true
		}
	}
	return h
}

// splitGitHeader splits "a/X b/Y" into X and Y.
func splitGitHeader(s string) (string, string) {
	i := strings.LastIndex(s, " b/")
	if i < 0 {
		return "", ""
	}
	return stripPrefix(s[:i]), stripPrefix(s[i+1:])
}

func stripPrefix(p string) string {
	p = strings.Trim(p, `"`)
	if strings.HasPrefix(p, "a/") || strings.HasPrefix(p, "b/") {
		return p[2:]
	}
	return p
}

// convertFile maps a go-diff FileDiff onto a FileChange. It returns false
// for entries that name no file, such as a preamble with no diff after it.
func convertFile(fd *diff.FileDiff) (sdkdrift.FileChange, []string, bool) {
	h := parseHeader(fd.Extended)

	oldName, newName := stripPrefix(fd.OrigName), stripPrefix(fd.NewName)
	if fd.OrigName == "" {
		oldName = h.gitOld
	}
	if fd.NewName == "" {
		newName = h.gitNew
	}
	if h.renameFrom != "" {
		oldName = h.renameFrom
	}
	if h.renameTo != "" {
		newName = h.renameTo
	}

	fc := sdkdrift.FileChange{Binary: h.binary}
	switch {
	case h.newFile || fd.OrigName == devNull:
		fc.Kind, fc.Path = sdkdrift.ChangeAdded, newName
	case h.deletedFile || fd.NewName == devNull:
		fc.Kind, fc.Path = sdkdrift.ChangeDeleted, oldName
	case oldName != "" && newName != "" && oldName != newName:
		fc.Kind, fc.Path, fc.OldPath = sdkdrift.ChangeRenamed, newName, oldName
	default:
		fc.Kind, fc.Path = sdkdrift.ChangeModified, newName
	}
	if fc.Path == "" || fc.Path == devNull {
		return sdkdrift.FileChange{}, nil, false
	}

	var diags []string
	fc.Hunks = make([]sdkdrift.Hunk, 0, len(fd.Hunks))
	for i, hk := range fd.Hunks {
		hunk, bad := convertHunk(hk)
		if bad > 0 {
			diags = append(diags, fmt.Sprintf("%s: hunk %d: %d unrecognized body lines skipped", fc.Path, i+1, bad))
		}
		if !hunk.Complete() {
			diags = append(diags, fmt.Sprintf("%s: truncated hunk %d", fc.Path, i+1))
		}
		fc.Hunks = append(fc.Hunks, hunk)
	}
	return fc, diags, true
}

// convertHunk classifies the raw body lines of a hunk. It returns the
// number of lines that carry no diff prefix.
func convertHunk(hk *diff.Hunk) (sdkdrift.Hunk, int) {
	hunk := sdkdrift.Hunk{
		OldStart: int(hk.OrigStartLine),
		OldLines: int(hk.OrigLines),
		NewStart: int(hk.NewStartLine),
		NewLines: int(hk.NewLines),
		Section:  strings.TrimSpace(hk.Section),
		Lines:    []sdkdrift.LineChange{},
	}

	body := strings.TrimSuffix(string(hk.Body), "\n")
	if body == "" {
		return hunk, 0
	}
	bad := 0
	for _, l := range strings.Split(body, "\n") {
		l = strings.TrimSuffix(l, "\r")
		if l == "" {
			hunk.Lines = append(hunk.Lines, sdkdrift.LineChange{Kind: sdkdrift.LineContext})
			continue
		}
		var kind sdkdrift.LineKind
		switch l[0] {
		case ' ':
			kind = sdkdrift.LineContext
		case '+':
			kind = sdkdrift.LineAddition
		case '-':
			kind = sdkdrift.LineDeletion
		case '\\':
			continue
		default:
			bad++
			continue
		}
		hunk.Lines = append(hunk.Lines, sdkdrift.LineChange{Kind: kind, Content: l[1:]})
	}
	return hunk, bad
}
