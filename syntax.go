package jdoc

// LanguageJava is the language name reported for Java sources.
const LanguageJava = "Java"

// LanguageDetector determines the programming language from a file path.
type LanguageDetector interface {
	// DetectFromPath returns the language name for the given path,
	// or an empty string if the language cannot be determined.
	DetectFromPath(path string) string
}

// Highlighter renders source text with terminal syntax highlighting.
type Highlighter interface {
	// Highlight returns source highlighted for the given language. It
	// returns source unchanged when the language is not supported.
	Highlight(language, source string) (string, error)
}
