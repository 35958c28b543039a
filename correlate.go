package sdkdrift

import (
	"path"
	"slices"
	"strings"
)

// sourceExtensions are stripped when normalizing module paths, longest first.
var sourceExtensions = []string{".d.ts", ".tsx", ".ts", ".mjs", ".js"}

// GeneratedChanges returns the file changes that fall in the generated tree.
func GeneratedChanges(cfg Config, files []FileChange) []FileChange {
	var out []FileChange
	for _, f := range files {
		if cfg.IsGeneratedPath(f.Path) || (f.OldPath != "" && cfg.IsGeneratedPath(f.OldPath)) {
			out = append(out, f)
		}
	}
	return out
}

// CountAPIChanges returns how many file changes touch generated API files.
func CountAPIChanges(cfg Config, files []FileChange) int {
	n := 0
	for _, f := range files {
		if cfg.IsAPIPath(f.Path) || (f.OldPath != "" && cfg.IsAPIPath(f.OldPath)) {
			n++
		}
	}
	return n
}

// changedPath is a changed generated file in both raw and normalized form.
type changedPath struct {
	raw  string
	norm string
	base string
}

// Correlate determines which wrapper files import generated code that changed.
//
// Matching is lexical: an import matches when its normalized specifier is a
// substring of a changed file's path. This can over-match (a specifier that
// is a substring of an unrelated path) and under-match (path aliases); it
// does not resolve modules.
//
// The result is ordered by wrapper path whatever the order of profiles.
func Correlate(cfg Config, changes []FileChange, profiles []WrapperFileProfile) []AffectedWrapper {
	var changed []changedPath
	for _, f := range GeneratedChanges(cfg, changes) {
		changed = append(changed, newChangedPath(f.Path))
		if f.OldPath != "" && f.OldPath != f.Path {
			changed = append(changed, newChangedPath(f.OldPath))
		}
	}
	if len(changed) == 0 {
		return nil
	}

	sorted := slices.Clone(profiles)
	slices.SortStableFunc(sorted, func(a, b WrapperFileProfile) int {
		return strings.Compare(a.Path, b.Path)
	})

	var out []AffectedWrapper
	for _, p := range sorted {
		var imports []AffectedImport
		seen := make(map[string]bool)
		for _, rec := range p.GeneratedImports() {
			ai, ok := matchImport(cfg, rec, changed)
			if !ok {
				continue
			}
			imports = append(imports, ai)
			for _, s := range ai.Symbols {
				seen[s] = true
			}
		}
		if len(imports) == 0 {
			continue
		}
		out = append(out, AffectedWrapper{
			Path:                p.Path,
			Tier:                cfg.TierFor(len(seen)),
			AffectedImportCount: len(seen),
			Imports:             imports,
		})
	}
	return out
}

func newChangedPath(p string) changedPath {
	norm := stripExtension(p)
	return changedPath{raw: p, norm: norm, base: path.Base(norm)}
}

// matchImport tests one import record against the changed files.
func matchImport(cfg Config, rec ImportRecord, changed []changedPath) (AffectedImport, bool) {
	spec := NormalizeImport(cfg, rec.Source)

	var matched []changedPath
	for _, c := range changed {
		if strings.Contains(c.norm, spec) {
			matched = append(matched, c)
		}
	}
	if len(matched) == 0 || len(rec.Symbols) == 0 {
		return AffectedImport{}, false
	}

	// A specifier naming a file directly invalidates every symbol it binds.
	// A barrel or directory specifier only invalidates symbols named after
	// a changed file, unless none are, in which case all are suspect.
	last := path.Base(spec)
	var direct []string
	for _, c := range matched {
		if spec != "" && c.base == last {
			direct = append(direct, c.raw)
		}
	}
	if len(direct) > 0 {
		return newAffectedImport(rec, rec.Symbols, direct), true
	}

	var symbols, files []string
	for _, s := range rec.Symbols {
		for _, c := range matched {
			if c.base == s {
				symbols = append(symbols, s)
				files = append(files, c.raw)
			}
		}
	}
	if len(symbols) == 0 {
		files = files[:0]
		for _, c := range matched {
			files = append(files, c.raw)
		}
		return newAffectedImport(rec, rec.Symbols, files), true
	}
	return newAffectedImport(rec, symbols, files), true
}

func newAffectedImport(rec ImportRecord, symbols, files []string) AffectedImport {
	symbols = slices.Compact(slices.Sorted(slices.Values(symbols)))
	files = slices.Compact(slices.Sorted(slices.Values(files)))
	return AffectedImport{
		Source:       rec.Source,
		Line:         rec.Line,
		Symbols:      symbols,
		ChangedFiles: files,
	}
}

// NormalizeImport reduces an import specifier to the part below the
// generated marker, without extension or trailing index. A barrel import
// of the generated root normalizes to the empty string.
func NormalizeImport(cfg Config, source string) string {
	segs := strings.Split(source, "/")
	start := -1
	for i, s := range segs {
		if s == cfg.GeneratedMarker {
			start = i + 1
		}
	}
	if start < 0 {
		start = 0
		for start < len(segs) && (segs[start] == "." || segs[start] == ".." || segs[start] == "") {
			start++
		}
	}
	p := stripExtension(strings.Join(segs[start:], "/"))
	if p == "index" {
		return ""
	}
	return strings.TrimSuffix(p, "/index")
}

func stripExtension(p string) string {
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(p, ext) {
			return strings.TrimSuffix(p, ext)
		}
	}
	return p
}
