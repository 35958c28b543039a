package bubbletea

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/sdkdrift"
)

// minGutterWidth is the minimum width of each line number column in the gutter.
const minGutterWidth = 4

// renderConfig holds the inputs shared by the summary and diff renderers.
type renderConfig struct {
	report   *sdkdrift.AnalysisReport
	styles   sdkdrift.Styles
	renderer *lipgloss.Renderer
	width    int
	words    sdkdrift.WordDiffer
}

// renderSummary renders the risk verdict, endpoint changes, affected
// wrappers and annotations of a report.
func renderSummary(cfg renderConfig) string {
	r := cfg.report
	if r == nil {
		return ""
	}
	headingStyle := styleFromColorPair(cfg.styles.Heading, cfg.renderer).Bold(true)
	mutedStyle := styleFromColorPair(cfg.styles.LineNumber, cfg.renderer)
	noteStyle := styleFromColorPair(cfg.styles.Annotation, cfg.renderer)
	riskStyle := styleFromColorPair(cfg.styles.Risk(r.Risk.Level), cfg.renderer).Bold(true)

	var sb strings.Builder
	sb.WriteString(riskStyle.Render(" " + string(r.Risk.Level) + " "))
	sb.WriteString(fmt.Sprintf(" score %d", r.Risk.Score))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("%s  %s  diff %s",
		r.ID, r.Timestamp.UTC().Format("2006-01-02 15:04:05Z"), r.DiffFingerprint)))
	sb.WriteString("\n\n")

	f := r.Risk.Factors
	sb.WriteString(headingStyle.Render("Risk factors"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  changed files      %3d  +%d\n", f.ChangedFiles, f.FileCountScore))
	sb.WriteString(fmt.Sprintf("  affected wrappers  %3d  +%d\n", f.AffectedWrappers, f.WrapperImpactScore))
	sb.WriteString(fmt.Sprintf("  changed API files  %3d  +%d\n", f.ChangedAPIFiles, f.APIChangeScore))
	sb.WriteString("\n")

	var added, deleted int
	for _, file := range r.Files {
		a, d := file.Stats()
		added += a
		deleted += d
	}
	sb.WriteString(headingStyle.Render("Changes"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  %d files  +%d -%d  (%d wrapper files scanned)\n", len(r.Files), added, deleted, r.WrapperCount))
	sb.WriteString("\n")

	writeEndpoints(&sb, headingStyle, mutedStyle, "New endpoints", r.NewEndpoints)
	writeEndpoints(&sb, headingStyle, mutedStyle, "Removed endpoints", r.RemovedEndpoints)
	writeEndpoints(&sb, headingStyle, mutedStyle, "Modified endpoints", r.ModifiedEndpoints)

	sb.WriteString(headingStyle.Render(fmt.Sprintf("Affected wrappers (%d)", len(r.AffectedWrappers))))
	sb.WriteString("\n")
	if len(r.AffectedWrappers) == 0 {
		sb.WriteString(mutedStyle.Render("  none"))
		sb.WriteString("\n")
	}
	for _, w := range r.AffectedWrappers {
		tier := styleFromColorPair(cfg.styles.Risk(w.Tier), cfg.renderer).Render(fmt.Sprintf(" %-6s ", w.Tier))
		sb.WriteString(fmt.Sprintf("  %s %s (%d)\n", tier, w.Path, w.AffectedImportCount))
		for _, imp := range w.Imports {
			sb.WriteString(fmt.Sprintf("      %s {%s}", imp.Source, strings.Join(imp.Symbols, ", ")))
			sb.WriteString(mutedStyle.Render(fmt.Sprintf("  line %d", imp.Line)))
			sb.WriteString("\n")
			for _, changed := range imp.ChangedFiles {
				sb.WriteString(mutedStyle.Render("        ← " + changed))
				sb.WriteString("\n")
			}
		}
	}

	if len(r.Annotations) > 0 {
		sb.WriteString("\n")
		sb.WriteString(headingStyle.Render("Annotations"))
		sb.WriteString("\n")
		for _, a := range r.Annotations {
			sb.WriteString(noteStyle.Render(fmt.Sprintf("  [%s] %s", a.Section, a.Message)))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func writeEndpoints(sb *strings.Builder, heading, muted lipgloss.Style, title string, eps []sdkdrift.EndpointDescriptor) {
	if len(eps) == 0 {
		return
	}
	sb.WriteString(heading.Render(fmt.Sprintf("%s (%d)", title, len(eps))))
	sb.WriteString("\n")
	for _, ep := range eps {
		sb.WriteString("  " + ep.Name)
		if ep.ReturnType != "" {
			sb.WriteString(": " + ep.ReturnType)
		}
		sb.WriteString(muted.Render(fmt.Sprintf("  %s:%d", ep.File, ep.Line)))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// renderDiff renders every file of the report with a header, hunk headers
// and a line-number gutter.
func renderDiff(cfg renderConfig) string {
	if cfg.report == nil || len(cfg.report.Files) == 0 {
		return ""
	}
	styles := cfg.styles
	renderer := cfg.renderer
	width := cfg.width

	fileHeaderStyle := styleFromColorPair(styles.FileHeader, renderer)
	hunkHeaderStyle := styleFromColorPair(styles.HunkHeader, renderer)
	addedStyle := styleFromColorPair(styles.Added, renderer)
	deletedStyle := styleFromColorPair(styles.Deleted, renderer)
	addedHighlight := styleFromColorPair(styles.AddedHighlight, renderer)
	deletedHighlight := styleFromColorPair(styles.DeletedHighlight, renderer)
	contextStyle := styleFromColorPair(styles.Context, renderer)
	lineNumStyle := styleFromColorPair(styles.LineNumber, renderer)

	gutterWidth := calculateGutterWidth(cfg.report.Files)

	var sb strings.Builder
	for _, file := range cfg.report.Files {
		// Format: ── filename ─────────────────── +N -M ──
		added, deleted := file.Stats()
		middle := "── " + fileLabel(file) + " "
		end := fmt.Sprintf(" +%d -%d ──", added, deleted)
		fillWidth := width - lipgloss.Width(middle) - lipgloss.Width(end)
		if fillWidth < 3 {
			fillWidth = 3
		}
		sb.WriteString(fileHeaderStyle.Render(middle + strings.Repeat("─", fillWidth) + end))
		sb.WriteString("\n")

		if file.Binary {
			sb.WriteString(contextStyle.Render("(binary)"))
			sb.WriteString("\n")
			continue
		}
		if len(file.Hunks) == 0 {
			sb.WriteString(contextStyle.Render("(empty)"))
			sb.WriteString("\n")
			continue
		}

		for _, hunk := range file.Hunks {
			sb.WriteString(hunkHeaderStyle.Render(formatHunkHeader(hunk)))
			sb.WriteString("\n")

			segments := pairSegments(hunk.Lines, cfg.words)
			oldLine, newLine := hunk.OldStart, hunk.NewStart
			for i, line := range hunk.Lines {
				var oldNum, newNum int
				var lineStyle, highlight lipgloss.Style
				switch line.Kind {
				case sdkdrift.LineAddition:
					newNum = newLine
					newLine++
					lineStyle, highlight = addedStyle, addedHighlight
				case sdkdrift.LineDeletion:
					oldNum = oldLine
					oldLine++
					lineStyle, highlight = deletedStyle, deletedHighlight
				default:
					oldNum, newNum = oldLine, newLine
					oldLine++
					newLine++
					lineStyle = contextStyle
				}
				sb.WriteString(formatGutter(oldNum, newNum, gutterWidth, lineNumStyle))

				gutterCols := 2*gutterWidth + 2
				content := linePrefixFor(line.Kind) + SanitizeLine(line.Content, gutterCols+1)
				if segs, ok := segments[i]; ok {
					sb.WriteString(renderSegments(linePrefixFor(line.Kind), segs, gutterCols+1, lineStyle, highlight, width-gutterCols))
				} else if line.Kind == sdkdrift.LineContext {
					sb.WriteString(lineStyle.Render(content))
				} else {
					sb.WriteString(lineStyle.Render(padLine(content, width-gutterCols)))
				}
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}

// minUnchanged is the share of a line that must stay unchanged for word
// highlighting to be shown.
const minUnchanged = 0.3

// pairSegments pairs each run of deleted lines with the run of added lines
// that follows it, 1:1 in order, and returns word segments keyed by line
// index. Pairs that share too little text are left out.
func pairSegments(lines []sdkdrift.LineChange, words sdkdrift.WordDiffer) map[int][]sdkdrift.Segment {
	if words == nil {
		return nil
	}
	result := make(map[int][]sdkdrift.Segment)
	for i := 0; i < len(lines); {
		if lines[i].Kind != sdkdrift.LineDeletion {
			i++
			continue
		}
		delStart := i
		for i < len(lines) && lines[i].Kind == sdkdrift.LineDeletion {
			i++
		}
		addStart := i
		for i < len(lines) && lines[i].Kind == sdkdrift.LineAddition {
			i++
		}
		pairs := min(addStart-delStart, i-addStart)
		for j := range pairs {
			del, add := delStart+j, addStart+j
			oldSegs, newSegs := words.Diff(lines[del].Content, lines[add].Content)
			if mostlyUnchanged(oldSegs) && mostlyUnchanged(newSegs) {
				result[del] = oldSegs
				result[add] = newSegs
			}
		}
	}
	return result
}

func mostlyUnchanged(segs []sdkdrift.Segment) bool {
	var unchanged, total int
	for _, seg := range segs {
		total += len(seg.Text)
		if !seg.Changed {
			unchanged += len(seg.Text)
		}
	}
	return total > 0 && float64(unchanged)/float64(total) >= minUnchanged
}

// renderSegments renders a changed line with its changed words emphasized,
// padded to width. startCol is the screen column of the first segment.
func renderSegments(prefix string, segs []sdkdrift.Segment, startCol int, base, highlight lipgloss.Style, width int) string {
	var sb strings.Builder
	sb.WriteString(base.Render(prefix))
	col := startCol
	used := lipgloss.Width(prefix)
	for _, seg := range segs {
		text := SanitizeLine(seg.Text, col)
		n := lipgloss.Width(text)
		col += n
		used += n
		if seg.Changed {
			sb.WriteString(highlight.Render(text))
		} else {
			sb.WriteString(base.Render(text))
		}
	}
	if used < width {
		sb.WriteString(base.Render(strings.Repeat(" ", width-used)))
	}
	return sb.String()
}

// filePositions returns the rendered line at which each file header starts.
func filePositions(files []sdkdrift.FileChange) []int {
	positions := make([]int, 0, len(files))
	lineNum := 0
	for _, file := range files {
		positions = append(positions, lineNum)
		lineNum++
		if file.Binary || len(file.Hunks) == 0 {
			lineNum++
			continue
		}
		for _, hunk := range file.Hunks {
			lineNum += 1 + len(hunk.Lines)
		}
	}
	return positions
}

func fileLabel(file sdkdrift.FileChange) string {
	if file.Kind == sdkdrift.ChangeRenamed && file.OldPath != "" {
		return file.OldPath + " → " + file.Path
	}
	return file.Path
}

// calculateGutterWidth returns the width of each line number column.
func calculateGutterWidth(files []sdkdrift.FileChange) int {
	maxLineNum := 0
	for _, file := range files {
		for _, hunk := range file.Hunks {
			maxLineNum = max(maxLineNum, hunk.OldStart+hunk.OldLines, hunk.NewStart+hunk.NewLines)
		}
	}
	return max(digitWidth(maxLineNum), minGutterWidth)
}

// formatGutter formats the gutter column with old and new line numbers.
// A zero line number renders as blank space.
func formatGutter(oldLineNum, newLineNum, width int, style lipgloss.Style) string {
	return style.Render(fmt.Sprintf("%s %s ", formatLineNum(oldLineNum, width), formatLineNum(newLineNum, width)))
}

func formatLineNum(num, width int) string {
	if num == 0 {
		return fmt.Sprintf("%*s", width, "")
	}
	return fmt.Sprintf("%*d", width, num)
}

// styleFromColorPair creates a lipgloss style from a ColorPair.
// If renderer is nil, the default lipgloss renderer is used.
func styleFromColorPair(cp sdkdrift.ColorPair, renderer *lipgloss.Renderer) lipgloss.Style {
	var style lipgloss.Style
	if renderer != nil {
		style = renderer.NewStyle()
	} else {
		style = lipgloss.NewStyle()
	}
	if cp.Foreground != "" {
		style = style.Foreground(lipgloss.Color(cp.Foreground))
	}
	if cp.Background != "" {
		style = style.Background(lipgloss.Color(cp.Background))
	}
	return style
}

// formatHunkHeader formats a hunk header in standard diff format.
func formatHunkHeader(hunk sdkdrift.Hunk) string {
	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", hunk.OldStart, hunk.OldLines, hunk.NewStart, hunk.NewLines)
	if hunk.Section != "" {
		header += " " + hunk.Section
	}
	return header
}

func linePrefixFor(kind sdkdrift.LineKind) string {
	switch kind {
	case sdkdrift.LineAddition:
		return "+"
	case sdkdrift.LineDeletion:
		return "-"
	default:
		return " "
	}
}

// padLine pads a line with spaces to the specified display width.
// If the line is already wider, it is returned unchanged.
func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth >= width {
		return line
	}
	return line + strings.Repeat(" ", width-lineWidth)
}

// digitWidth returns the number of digits needed to display n.
func digitWidth(n int) int {
	if n <= 0 {
		return 1
	}
	width := 0
	for n > 0 {
		width++
		n /= 10
	}
	return width
}
