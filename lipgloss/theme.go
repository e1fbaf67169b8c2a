// Package lipgloss renders run reports using the Lipgloss styling library.
package lipgloss

import "github.com/fwojciec/jdoc"

// Compile-time interface verification.
var _ jdoc.Theme = (*Theme)(nil)

// Theme implements jdoc.Theme with Lipgloss-compatible colors.
type Theme struct {
	styles jdoc.Styles
}

// Styles returns the color styles for this theme.
func (t *Theme) Styles() jdoc.Styles {
	return t.styles
}

// DefaultTheme returns the default theme (dark background optimized).
func DefaultTheme() *Theme {
	return DarkTheme()
}

// ThemeByName returns the named theme, or the default for unknown names.
func ThemeByName(name string) *Theme {
	if name == "light" {
		return LightTheme()
	}
	return DarkTheme()
}

// DarkTheme returns a theme optimized for dark terminal backgrounds.
func DarkTheme() *Theme {
	return &Theme{
		styles: jdoc.Styles{
			Generated: jdoc.ColorPair{
				Foreground: "#a6e3a1", // Green
			},
			Skipped: jdoc.ColorPair{
				Foreground: "#6c7086", // Muted gray
			},
			Failed: jdoc.ColorPair{
				Foreground: "#f38ba8", // Red
			},
			FileHeader: jdoc.ColorPair{
				Foreground: "#f9e2af", // Yellow
				Background: "#313244", // Dark surface
			},
			Comment: jdoc.ColorPair{
				Foreground: "#94e2d5", // Teal
			},
			Muted: jdoc.ColorPair{
				Foreground: "#6c7086",
			},
			Summary: jdoc.ColorPair{
				Foreground: "#89b4fa", // Blue
			},
		},
	}
}

// LightTheme returns a theme optimized for light terminal backgrounds.
func LightTheme() *Theme {
	return &Theme{
		styles: jdoc.Styles{
			Generated: jdoc.ColorPair{
				Foreground: "#40a02b", // Green
			},
			Skipped: jdoc.ColorPair{
				Foreground: "#9ca0b0", // Muted gray
			},
			Failed: jdoc.ColorPair{
				Foreground: "#d20f39", // Red
			},
			FileHeader: jdoc.ColorPair{
				Foreground: "#df8e1d", // Yellow
				Background: "#e6e9ef", // Light surface
			},
			Comment: jdoc.ColorPair{
				Foreground: "#179299", // Teal
			},
			Muted: jdoc.ColorPair{
				Foreground: "#9ca0b0",
			},
			Summary: jdoc.ColorPair{
				Foreground: "#1e66f5", // Blue
			},
		},
	}
}
