package lipgloss_test

import (
	"testing"

	"github.com/fwojciec/sdkdrift"
	"github.com/fwojciec/sdkdrift/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestThemes(t *testing.T) {
	t.Parallel()

	themes := map[string]*lipgloss.Theme{
		"dark":    lipgloss.DarkTheme(),
		"light":   lipgloss.LightTheme(),
		"default": lipgloss.DefaultTheme(),
	}
	for name, theme := range themes {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var _ sdkdrift.Theme = theme
			styles := theme.Styles()

			assert.NotEmpty(t, styles.Added.Foreground)
			assert.NotEmpty(t, styles.Deleted.Foreground)
			assert.NotEmpty(t, styles.Context.Foreground)
			assert.NotEmpty(t, styles.HunkHeader.Foreground)
			assert.NotEmpty(t, styles.FileHeader.Foreground)
			assert.NotEmpty(t, styles.Heading.Foreground)
			assert.NotEmpty(t, styles.Annotation.Foreground)
		})
	}
}

func TestThemes_RiskLevelsAreDistinct(t *testing.T) {
	t.Parallel()

	for _, theme := range []*lipgloss.Theme{lipgloss.DarkTheme(), lipgloss.LightTheme()} {
		styles := theme.Styles()
		assert.NotEqual(t, styles.RiskLow.Background, styles.RiskMedium.Background)
		assert.NotEqual(t, styles.RiskMedium.Background, styles.RiskHigh.Background)
		assert.NotEqual(t, styles.RiskLow.Background, styles.RiskHigh.Background)
	}
}

func TestThemes_AddedAndDeletedDiffer(t *testing.T) {
	t.Parallel()

	styles := lipgloss.DarkTheme().Styles()
	assert.NotEqual(t, styles.Added, styles.Deleted)
}

func TestThemes_HighlightsStandOutFromLines(t *testing.T) {
	t.Parallel()

	for _, theme := range []*lipgloss.Theme{lipgloss.DarkTheme(), lipgloss.LightTheme()} {
		styles := theme.Styles()
		assert.NotEqual(t, styles.Added.Background, styles.AddedHighlight.Background)
		assert.NotEqual(t, styles.Deleted.Background, styles.DeletedHighlight.Background)
	}
}
