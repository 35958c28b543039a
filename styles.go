package sdkdrift

// ColorPair represents a foreground and background color combination.
// Colors should be hex strings in "#RRGGBB" format (e.g., "#ff0000" for red).
// Empty strings are valid and indicate no color override (use terminal default).
type ColorPair struct {
	Foreground string
	Background string
}

// Styles contains color pairs for every visual element of a rendered report.
type Styles struct {
	Added      ColorPair // Style for added lines (+)
	Deleted    ColorPair // Style for deleted lines (-)
	// Changed words within paired deleted/added lines.
	AddedHighlight   ColorPair
	DeletedHighlight ColorPair
	Context    ColorPair // Style for context lines (unchanged)
	HunkHeader ColorPair // Style for hunk headers (@@ ... @@)
	FileHeader ColorPair // Style for file headers
	LineNumber ColorPair // Style for line numbers in the gutter
	Heading    ColorPair // Style for summary section headings
	Annotation ColorPair // Style for degraded-path annotations
	RiskLow    ColorPair
	RiskMedium ColorPair
	RiskHigh   ColorPair
}

// Risk returns the style for a risk level. BREAKING shares the HIGH style.
func (s Styles) Risk(level RiskLevel) ColorPair {
	switch level {
	case RiskLow:
		return s.RiskLow
	case RiskMedium:
		return s.RiskMedium
	default:
		return s.RiskHigh
	}
}

// Theme provides styles for rendering reports.
// Different implementations can provide light/dark variants.
type Theme interface {
	Styles() Styles
}
