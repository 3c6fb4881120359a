package model

import "strings"

// DefaultConversationTitle is the placeholder stored when no real title
// could be resolved from the host page.
const DefaultConversationTitle = "Untitled Chat"

// productName is the host application's bare name; it shows up when the
// document title is scraped before the conversation title has rendered.
const productName = "Gemini"

// noiseLabels are UI-chrome strings that row-scraping picks up by accident.
var noiseLabels = map[string]struct{}{
	"More options": {},
	"Pin":          {},
	"Unpin":        {},
	"Delete":       {},
	"Rename":       {},
}

// NormalizeTitle collapses runs of whitespace into single spaces and trims.
func NormalizeTitle(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// SanitizeTitle normalizes a candidate title and reports whether it is a
// real title. Rejected candidates: empty strings, the placeholder literal,
// the bare product name, space-less URLs, and known UI-chrome labels.
func SanitizeTitle(title string) (string, bool) {
	normalized := NormalizeTitle(title)
	if normalized == "" || normalized == DefaultConversationTitle || normalized == productName {
		return "", false
	}
	if strings.HasPrefix(normalized, "http") && !strings.Contains(normalized, " ") {
		return "", false
	}
	if _, noisy := noiseLabels[normalized]; noisy {
		return "", false
	}
	return normalized, true
}

// DisplayTitle returns the sanitized title, or the placeholder when the
// candidate is invalid.
func DisplayTitle(title string) string {
	if sanitized, ok := SanitizeTitle(title); ok {
		return sanitized
	}
	return DefaultConversationTitle
}
