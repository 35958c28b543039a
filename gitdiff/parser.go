// Package gitdiff implements diff parsing using bluekeyes/go-gitdiff.
package gitdiff

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/fwojciec/sdkdrift"
	"github.com/fwojciec/sdkdrift/unidiff"
)

// Compile-time interface verification.
var _ sdkdrift.DiffParser = (*Parser)(nil)

// Parser parses git-style unified diffs with go-gitdiff. go-gitdiff rejects
// malformed fragments outright, so on error the same input is re-parsed with
// the lenient unidiff scanner and the failure is kept as a diagnostic.
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

	files, _, err := gitdiff.Parse(bytes.NewReader(data))
	if err != nil {
		result, ferr := p.fallback.Parse(bytes.NewReader(data))
		if ferr != nil {
			return nil, ferr
		}
		result.Diagnostics = append([]string{fmt.Sprintf("gitdiff: %v; fell back to lenient parser", err)}, result.Diagnostics...)
		return result, nil
	}

	result := &sdkdrift.ParsedDiff{
		Files: make([]sdkdrift.FileChange, 0, len(files)),
	}
	for _, f := range files {
		result.Files = append(result.Files, convertFile(f))
	}
	result.Summary = sdkdrift.ParseDiffSummary(unidiff.HeaderText(string(data)), result.Files)

	return result, nil
}

func convertFile(f *gitdiff.File) sdkdrift.FileChange {
	fc := sdkdrift.FileChange{
		Path:   f.NewName,
		Binary: f.IsBinary,
	}

	switch {
	case f.IsNew, f.IsCopy:
		fc.Kind = sdkdrift.ChangeAdded
	case f.IsDelete:
		fc.Kind = sdkdrift.ChangeDeleted
		fc.Path = f.OldName
	case f.IsRename:
		fc.Kind = sdkdrift.ChangeRenamed
		fc.OldPath = f.OldName
	default:
		fc.Kind = sdkdrift.ChangeModified
	}

	fc.Hunks = make([]sdkdrift.Hunk, 0, len(f.TextFragments))
	for _, frag := range f.TextFragments {
		fc.Hunks = append(fc.Hunks, convertFragment(frag))
	}

	return fc
}

func convertFragment(frag *gitdiff.TextFragment) sdkdrift.Hunk {
	hunk := sdkdrift.Hunk{
		OldStart: int(frag.OldPosition),
		OldLines: int(frag.OldLines),
		NewStart: int(frag.NewPosition),
		NewLines: int(frag.NewLines),
		Section:  frag.Comment,
		Lines:    make([]sdkdrift.LineChange, 0, len(frag.Lines)),
	}

	for _, l := range frag.Lines {
		line := sdkdrift.LineChange{
			Content: strings.TrimSuffix(strings.TrimSuffix(l.Line, "\n"), "\r"),
		}
		switch l.Op {
		case gitdiff.OpContext:
			line.Kind = sdkdrift.LineContext
		case gitdiff.OpAdd:
			line.Kind = sdkdrift.LineAddition
		case gitdiff.OpDelete:
			line.Kind = sdkdrift.LineDeletion
		}
		hunk.Lines = append(hunk.Lines, line)
	}

	return hunk
}
