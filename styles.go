package jdoc

// ColorPair represents a foreground and background color combination.
// Colors should be hex strings in "#RRGGBB" format (e.g., "#ff0000" for red).
// Empty strings are valid and indicate no color override (use terminal default).
type ColorPair struct {
	Foreground string
	Background string
}

// Styles contains color pairs for the elements of a run report.
type Styles struct {
	Generated  ColorPair // Elements that received a comment
	Skipped    ColorPair // Elements left alone
	Failed     ColorPair // Elements or files that failed
	FileHeader ColorPair // Per-file headings
	Comment    ColorPair // Proposed comment text when not highlighted
	Muted      ColorPair // Secondary details such as line numbers
	Summary    ColorPair // Aggregate counters
}

// Theme provides styles for rendering reports.
// Different implementations can provide light/dark variants.
type Theme interface {
	Styles() Styles
}
