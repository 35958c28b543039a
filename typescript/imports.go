package typescript

import (
	"regexp"
	"strings"

	"github.com/fwojciec/sdkdrift"
)

// Compile-time interface verification.
var _ sdkdrift.ImportAnalyzer = (*ImportAnalyzer)(nil)

// namedImportPattern matches import and re-export statements that bind
// names in braces, with an optional leading default import:
//
//	import { A, B as C } from '../generated';
//	import type { A } from '../generated/models';
//	import Client, { A } from '../generated';
//	export { A } from '../generated/apis';
var namedImportPattern = regexp.MustCompile(
	`(?m)^[ \t]*(?:import|export)\s+(?:type\s+)?(?:[A-Za-z_$][\w$]*\s*,\s*)?\{([^}]*)\}\s*from\s*['"]([^'"\n]+)['"]`,
)

var commentPattern = regexp.MustCompile(`(?s)/\*.*?\*/|//[^\n]*`)

// ImportAnalyzer profiles wrapper files: their named imports and the async
// methods they expose.
type ImportAnalyzer struct {
	cfg sdkdrift.Config
}

// NewImportAnalyzer creates an ImportAnalyzer that flags imports from the
// generated tree using cfg's generated marker.
func NewImportAnalyzer(cfg sdkdrift.Config) *ImportAnalyzer {
	return &ImportAnalyzer{cfg: cfg}
}

// Analyze builds the profile of one wrapper file. Default and namespace
// imports are ignored because they cannot be invalidated symbol by symbol.
func (a *ImportAnalyzer) Analyze(path, text string) sdkdrift.WrapperFileProfile {
	p := sdkdrift.WrapperFileProfile{
		Path:    path,
		Imports: []sdkdrift.ImportRecord{},
		Methods: ScanAsyncMethods(text),
	}
	if p.Methods == nil {
		p.Methods = []sdkdrift.MethodSignature{}
	}

	lines := newLineIndex(text)
	for _, m := range namedImportPattern.FindAllStringSubmatchIndex(text, -1) {
		symbols := parseSymbols(text[m[2]:m[3]])
		if len(symbols) == 0 {
			continue
		}
		source := text[m[4]:m[5]]
		p.Imports = append(p.Imports, sdkdrift.ImportRecord{
			WrapperPath: path,
			Source:      source,
			Symbols:     symbols,
			IsGenerated: a.cfg.IsGeneratedImport(source),
			Line:        lines.lineOf(m[0] + leadingSpace(text[m[0]:m[1]])),
		})
	}
	return p
}

// parseSymbols splits the inside of an import's braces into the names
// bound on the exporting side.
func parseSymbols(list string) []string {
	list = commentPattern.ReplaceAllString(list, "")
	var out []string
	for _, part := range strings.Split(list, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "type" && len(fields) > 1 {
			fields = fields[1:]
		}
		// "A as B" imports A.
		out = append(out, fields[0])
	}
	return out
}

func leadingSpace(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t\r\n"))
}
