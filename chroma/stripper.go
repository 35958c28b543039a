// Package chroma normalizes TypeScript and JavaScript sources with the
// chroma lexers before they are scanned for declarations.
package chroma

import (
	"path/filepath"
	"strings"

	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/fwojciec/sdkdrift"
)

// Compile-time interface verification.
var _ sdkdrift.SourceNormalizer = (*CommentStripper)(nil)

// CommentStripper blanks out comments so that commented-out declarations
// are not matched. Newlines inside comments are kept, so line numbers in
// the stripped text match the original.
type CommentStripper struct{}

// NewCommentStripper creates a new CommentStripper.
func NewCommentStripper() *CommentStripper {
	return &CommentStripper{}
}

// Normalize returns text with comments replaced by spaces. Text in a
// language chroma does not recognize is returned unchanged.
func (c *CommentStripper) Normalize(path, text string) string {
	if text == "" {
		return text
	}
	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		return text
	}

	iterator, err := chromalib.Coalesce(lexer).Tokenise(nil, text)
	if err != nil {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))
	for token := iterator(); token != chromalib.EOF; token = iterator() {
		if token.Type.InCategory(chromalib.Comment) {
			sb.WriteString(blank(token.Value))
			continue
		}
		sb.WriteString(token.Value)
	}
	out := sb.String()
	// Lexers may append a final newline the input did not have.
	if !strings.HasSuffix(text, "\n") {
		out = strings.TrimSuffix(out, "\n")
	}
	return out
}

// blank replaces every character except line breaks with a space.
func blank(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return r
		}
		return ' '
	}, s)
}
