package lipgloss_test

import (
	"testing"

	"github.com/fwojciec/jdoc"
	"github.com/fwojciec/jdoc/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestThemes(t *testing.T) {
	t.Parallel()

	themes := map[string]*lipgloss.Theme{
		"dark":  lipgloss.DarkTheme(),
		"light": lipgloss.LightTheme(),
	}

	for name, theme := range themes {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var _ jdoc.Theme = theme
			styles := theme.Styles()

			assert.NotEmpty(t, styles.Generated.Foreground)
			assert.NotEmpty(t, styles.Skipped.Foreground)
			assert.NotEmpty(t, styles.Failed.Foreground)
			assert.NotEmpty(t, styles.FileHeader.Foreground)
			assert.NotEmpty(t, styles.FileHeader.Background)
			assert.NotEmpty(t, styles.Summary.Foreground)
		})
	}
}

func TestThemeByName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, lipgloss.LightTheme().Styles(), lipgloss.ThemeByName("light").Styles())
	assert.Equal(t, lipgloss.DarkTheme().Styles(), lipgloss.ThemeByName("dark").Styles())
	assert.Equal(t, lipgloss.DefaultTheme().Styles(), lipgloss.ThemeByName("unknown").Styles())
}

func TestDarkAndLightDiffer(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, lipgloss.DarkTheme().Styles(), lipgloss.LightTheme().Styles())
}
