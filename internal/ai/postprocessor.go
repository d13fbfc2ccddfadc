package ai

import "strings"

// placeholderValues are responses where the model answered with a stand-in
// instead of real content. A summary equal to one of these is worthless.
var placeholderValues = map[string]bool{
	"not applicable":   true,
	"not stated":       true,
	"n/a":              true,
	"na":               true,
	"none":             true,
	"null":             true,
	"undefined":        true,
	"not provided":     true,
	"not available":    true,
	"no translation":   true,
	"no content":       true,
	"not specified":    true,
	"not mentioned":    true,
	"not given":        true,
	"not found":        true,
	"unavailable":      true,
	"missing":          true,
	"empty":            true,
	"blank":            true,
	"not translated":   true,
	"original text":    true,
	"same as original": true,
}

// CleanSummary strips formatting artifacts from generated text and rejects
// placeholder answers, returning "" for anything unusable.
func CleanSummary(s string) string {
	s = strings.ReplaceAll(s, "*", "")
	s = strings.TrimSpace(s)

	lower := strings.ToLower(s)
	if placeholderValues[lower] {
		return ""
	}
	if strings.Contains(lower, "not provided") || strings.Contains(lower, "not available") {
		return ""
	}
	return s
}

// UsableSummary reports whether generated text is real content rather than
// an empty or placeholder response, and not a bare echo of the source title.
func UsableSummary(s, title string) bool {
	s = CleanSummary(s)
	if s == "" {
		return false
	}
	return !strings.EqualFold(s, strings.TrimSpace(title))
}
