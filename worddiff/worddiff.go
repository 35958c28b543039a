// Package worddiff finds the words that changed between a deleted line of
// generated client code and the line that replaced it.
package worddiff

import (
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/sdkdrift"
)

// Compile-time interface verification.
var _ sdkdrift.WordDiffer = (*Differ)(nil)

// minSimilarity is the share of common tokens below which two lines are
// treated as a full replacement.
const minSimilarity = 0.4

// Differ computes token-level diffs of TypeScript source lines.
type Differ struct{}

// NewDiffer creates a new Differ.
func NewDiffer() *Differ {
	return &Differ{}
}

// Tokenize splits a line into identifiers, numbers, string and template
// literals, operators, punctuation and whitespace runs. Concatenating the
// tokens yields the input.
func (d *Differ) Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	tokens := make([]string, 0, len(s)/3+1)
	for i := 0; i < len(s); {
		end := scanToken(s, i)
		tokens = append(tokens, s[i:end])
		i = end
	}
	return tokens
}

// scanToken returns the end offset of the token starting at i.
func scanToken(s string, i int) int {
	c := s[i]
	switch {
	case isIdentStart(c):
		return scanWhile(s, i+1, isIdentChar)
	case isDigit(c):
		j := scanWhile(s, i+1, isDigit)
		if j+1 < len(s) && s[j] == '.' && isDigit(s[j+1]) {
			j = scanWhile(s, j+1, isDigit)
		}
		return j
	case c == '"' || c == '\'' || c == '`':
		return scanQuoted(s, i)
	case isSpace(c):
		return scanWhile(s, i+1, isSpace)
	case isOperator(c):
		return scanWhile(s, i+1, isOperator)
	case c < utf8.RuneSelf:
		return i + 1
	default:
		_, size := utf8.DecodeRuneInString(s[i:])
		return i + size
	}
}

func scanWhile(s string, i int, pred func(byte) bool) int {
	for i < len(s) && pred(s[i]) {
		i++
	}
	return i
}

// scanQuoted consumes a string or template literal, honoring backslash
// escapes. An unterminated literal runs to the end of the line.
func scanQuoted(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(s)
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isOperator(c byte) bool {
	return strings.IndexByte("+-*/%=<>!&|^~?:", c) >= 0
}

// Diff returns segments for the old and new lines. Unchanged tokens of the
// longest common subsequence are unmarked; everything else is Changed.
// Adjacent segments never share the same Changed value.
func (d *Differ) Diff(old, new string) (oldSegs, newSegs []sdkdrift.Segment) {
	switch {
	case old == "" && new == "":
		return nil, nil
	case old == "":
		return nil, []sdkdrift.Segment{{Text: new, Changed: true}}
	case new == "":
		return []sdkdrift.Segment{{Text: old, Changed: true}}, nil
	case old == new:
		seg := sdkdrift.Segment{Text: old}
		return []sdkdrift.Segment{seg}, []sdkdrift.Segment{seg}
	}

	a, b := d.Tokenize(old), d.Tokenize(new)
	if similarity(a, b) < minSimilarity {
		return []sdkdrift.Segment{{Text: old, Changed: true}},
			[]sdkdrift.Segment{{Text: new, Changed: true}}
	}

	keepA, keepB := commonTokens(a, b)
	return segments(a, keepA), segments(b, keepB)
}

// similarity is an upper bound on the Dice coefficient of two token
// multisets.
func similarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	counts := make(map[string]int, len(a))
	for _, t := range a {
		counts[t]++
	}
	common := 0
	for _, t := range b {
		if counts[t] > 0 {
			counts[t]--
			common++
		}
	}
	return float64(2*common) / float64(len(a)+len(b))
}

// commonTokens marks the tokens of a and b that belong to their longest
// common subsequence.
func commonTokens(a, b []string) (keepA, keepB []bool) {
	m, n := len(a), len(b)
	stride := n + 1
	table := make([]int, (m+1)*stride)
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				table[i*stride+j] = table[(i+1)*stride+j+1] + 1
			case table[(i+1)*stride+j] >= table[i*stride+j+1]:
				table[i*stride+j] = table[(i+1)*stride+j]
			default:
				table[i*stride+j] = table[i*stride+j+1]
			}
		}
	}

	keepA, keepB = make([]bool, m), make([]bool, n)
	for i, j := 0, 0; i < m && j < n; {
		switch {
		case a[i] == b[j]:
			keepA[i], keepB[j] = true, true
			i++
			j++
		case table[(i+1)*stride+j] >= table[i*stride+j+1]:
			i++
		default:
			j++
		}
	}
	return keepA, keepB
}

// segments merges runs of tokens with the same kept state.
func segments(tokens []string, keep []bool) []sdkdrift.Segment {
	var segs []sdkdrift.Segment
	var sb strings.Builder
	for i, tok := range tokens {
		changed := !keep[i]
		if i > 0 && changed != !keep[i-1] {
			segs = append(segs, sdkdrift.Segment{Text: sb.String(), Changed: !keep[i-1]})
			sb.Reset()
		}
		sb.WriteString(tok)
	}
	if len(tokens) > 0 {
		segs = append(segs, sdkdrift.Segment{Text: sb.String(), Changed: !keep[len(tokens)-1]})
	}
	return segs
}
