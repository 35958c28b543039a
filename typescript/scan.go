// Package typescript extracts endpoints, imports and method signatures from
// TypeScript and JavaScript sources by pattern matching.
//
// Matching is syntactic. Overloads, generics and inherited members are not
// resolved; a declaration counts when its text has the expected shape.
package typescript

import (
	"regexp"
	"strings"

	"github.com/fwojciec/sdkdrift"
)

// asyncDeclPattern matches the head of an async declaration up to and
// including its name. Type parameters and the parameter list are matched by
// bracket balancing since they nest.
var asyncDeclPattern = regexp.MustCompile(
	`(?m)^[ \t]*((?:(?:export|default|public|private|protected|static|override|abstract)\s+)*)` +
		`async\s+(?:function\b\s*)?(#?[A-Za-z_$][\w$]*)`,
)

// ScanAsyncMethods returns every async function or method declared with a
// Promise return type, in declaration order. Private and protected members
// are skipped.
func ScanAsyncMethods(text string) []sdkdrift.MethodSignature {
	var out []sdkdrift.MethodSignature
	lines := newLineIndex(text)
	for _, m := range asyncDeclPattern.FindAllStringSubmatchIndex(text, -1) {
		modifiers := text[m[2]:m[3]]
		name := text[m[4]:m[5]]
		if strings.HasPrefix(name, "#") || hasModifier(modifiers, "private") || hasModifier(modifiers, "protected") {
			continue
		}

		open, ok := paramsStart(text, m[1])
		if !ok {
			continue
		}
		end := matchBracket(text, open, '(', ')')
		if end < 0 {
			continue
		}
		ret, ok := promiseReturn(text[end+1:])
		if !ok {
			continue
		}
		out = append(out, sdkdrift.MethodSignature{
			Name:       name,
			ReturnType: ret,
			Line:       lines.lineOf(m[4]),
		})
	}
	return out
}

// paramsStart skips optional type parameters after a declaration name at i
// and returns the offset of the opening parenthesis of the parameter list.
func paramsStart(text string, i int) (int, bool) {
	i = skipSpace(text, i)
	if i < len(text) && text[i] == '<' {
		end := matchBracket(text, i, '<', '>')
		if end < 0 {
			return 0, false
		}
		i = skipSpace(text, end+1)
	}
	if i < len(text) && text[i] == '(' {
		return i, true
	}
	return 0, false
}

func skipSpace(text string, i int) int {
	for i < len(text) && strings.IndexByte(" \t\r\n", text[i]) >= 0 {
		i++
	}
	return i
}

func hasModifier(modifiers, want string) bool {
	for _, f := range strings.Fields(modifiers) {
		if f == want {
			return true
		}
	}
	return false
}

// promiseReturn parses ": Promise<T>" at the start of rest and returns T
// with whitespace collapsed.
func promiseReturn(rest string) (string, bool) {
	rest = strings.TrimLeft(rest, " \t\r\n")
	if !strings.HasPrefix(rest, ":") {
		return "", false
	}
	rest = strings.TrimLeft(rest[1:], " \t\r\n")
	if !strings.HasPrefix(rest, "Promise") {
		return "", false
	}
	rest = strings.TrimLeft(rest[len("Promise"):], " \t\r\n")
	if !strings.HasPrefix(rest, "<") {
		return "", false
	}
	end := matchBracket(rest, 0, '<', '>')
	if end < 0 {
		return "", false
	}
	return strings.Join(strings.Fields(rest[1:end]), " "), true
}

// matchBracket returns the index of the bracket closing the one at open,
// or -1. For angle brackets the ">" of an arrow "=>" is not counted.
func matchBracket(s string, open int, lb, rb byte) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case lb:
			depth++
		case rb:
			if rb == '>' && i > 0 && s[i-1] == '=' {
				continue
			}
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// lineIndex maps byte offsets to 1-based line numbers.
type lineIndex []int

func newLineIndex(text string) lineIndex {
	idx := lineIndex{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (l lineIndex) lineOf(offset int) int {
	lo, hi := 0, len(l)
	for lo < hi {
		mid := (lo + hi) / 2
		if l[mid] <= offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
