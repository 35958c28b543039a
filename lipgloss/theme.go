// Package lipgloss provides theme implementations using the Lipgloss styling library.
package lipgloss

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/sdkdrift"
)

// Compile-time interface verification.
var _ sdkdrift.Theme = (*Theme)(nil)

// Theme implements sdkdrift.Theme with Lipgloss-compatible colors.
type Theme struct {
	styles sdkdrift.Styles
}

// Styles returns the color styles for this theme.
func (t *Theme) Styles() sdkdrift.Styles {
	return t.styles
}

// DefaultTheme returns the theme matching the terminal background.
func DefaultTheme() *Theme {
	if lipgloss.HasDarkBackground() {
		return DarkTheme()
	}
	return LightTheme()
}

// DarkTheme returns a theme optimized for dark terminal backgrounds
// (Catppuccin Mocha).
func DarkTheme() *Theme {
	return &Theme{
		styles: sdkdrift.Styles{
			Added: sdkdrift.ColorPair{
				Foreground: "#a6e3a1",
				Background: "#004000",
			},
			Deleted: sdkdrift.ColorPair{
				Foreground: "#f38ba8",
				Background: "#3f0001",
			},
			AddedHighlight: sdkdrift.ColorPair{
				Foreground: "#a6e3a1",
				Background: "#007000",
			},
			DeletedHighlight: sdkdrift.ColorPair{
				Foreground: "#f38ba8",
				Background: "#6f0002",
			},
			Context: sdkdrift.ColorPair{
				Foreground: "#6c7086",
			},
			HunkHeader: sdkdrift.ColorPair{
				Foreground: "#89b4fa",
			},
			FileHeader: sdkdrift.ColorPair{
				Foreground: "#f9e2af",
				Background: "#313244",
			},
			LineNumber: sdkdrift.ColorPair{
				Foreground: "#6c7086",
			},
			Heading: sdkdrift.ColorPair{
				Foreground: "#cba6f7",
			},
			Annotation: sdkdrift.ColorPair{
				Foreground: "#fab387",
			},
			RiskLow: sdkdrift.ColorPair{
				Foreground: "#1e1e2e",
				Background: "#a6e3a1",
			},
			RiskMedium: sdkdrift.ColorPair{
				Foreground: "#1e1e2e",
				Background: "#f9e2af",
			},
			RiskHigh: sdkdrift.ColorPair{
				Foreground: "#1e1e2e",
				Background: "#f38ba8",
			},
		},
	}
}

// LightTheme returns a theme optimized for light terminal backgrounds
// (Catppuccin Latte).
func LightTheme() *Theme {
	return &Theme{
		styles: sdkdrift.Styles{
			Added: sdkdrift.ColorPair{
				Foreground: "#40a02b",
				Background: "#d4f4d4",
			},
			Deleted: sdkdrift.ColorPair{
				Foreground: "#d20f39",
				Background: "#f4d4d4",
			},
			AddedHighlight: sdkdrift.ColorPair{
				Foreground: "#40a02b",
				Background: "#a8e8a8",
			},
			DeletedHighlight: sdkdrift.ColorPair{
				Foreground: "#d20f39",
				Background: "#e8a8a8",
			},
			Context: sdkdrift.ColorPair{
				Foreground: "#9ca0b0",
			},
			HunkHeader: sdkdrift.ColorPair{
				Foreground: "#1e66f5",
			},
			FileHeader: sdkdrift.ColorPair{
				Foreground: "#df8e1d",
				Background: "#e6e9ef",
			},
			LineNumber: sdkdrift.ColorPair{
				Foreground: "#9ca0b0",
			},
			Heading: sdkdrift.ColorPair{
				Foreground: "#8839ef",
			},
			Annotation: sdkdrift.ColorPair{
				Foreground: "#fe640b",
			},
			RiskLow: sdkdrift.ColorPair{
				Foreground: "#ffffff",
				Background: "#40a02b",
			},
			RiskMedium: sdkdrift.ColorPair{
				Foreground: "#ffffff",
				Background: "#df8e1d",
			},
			RiskHigh: sdkdrift.ColorPair{
				Foreground: "#ffffff",
				Background: "#d20f39",
			},
		},
	}
}
