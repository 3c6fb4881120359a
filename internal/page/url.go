package page

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	appPathPattern = regexp.MustCompile(`/(?:u/\d+/)?app/([^/?#]+)`)
	gemPathPattern = regexp.MustCompile(`/(?:u/\d+/)?gem/[^/]+/([^/?#]+)`)

	accountPrefixPattern = regexp.MustCompile(`^/u/\d+/`)

	docTitleSuffix = regexp.MustCompile(`\s*[|\-–—]\s*Gemini\s*$`)
	docTitlePrefix = regexp.MustCompile(`^Gemini\s*[|\-–—]\s*`)
)

// ExtractConversationID pulls the conversation id out of a URL or path.
// Supported shapes: /app/{id}, /u/{n}/app/{id}, and /gem/{gem}/{id}. A
// leading "c_" marker on the id is stripped. Returns "" when no id is
// present.
func ExtractConversationID(raw string) string {
	if raw == "" {
		return ""
	}

	path := raw
	if strings.HasPrefix(raw, "http") {
		parsed, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		path = parsed.Path
	}

	if m := appPathPattern.FindStringSubmatch(path); m != nil {
		return strings.TrimPrefix(m[1], "c_")
	}
	if m := gemPathPattern.FindStringSubmatch(path); m != nil {
		return strings.TrimPrefix(m[1], "c_")
	}
	return ""
}

// NormalizeURL converts a scraped href into an absolute URL against the
// host origin. When the current location carries an account prefix
// (/u/{n}/) and the href is a bare /app/ path, the prefix is re-applied so
// multi-account setups land on the right profile.
func NormalizeURL(baseURL, currentLocation, raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http") {
		return raw
	}

	path := raw
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	if strings.HasPrefix(path, "/app/") && currentLocation != "" {
		if parsed, err := url.Parse(currentLocation); err == nil {
			if prefix := accountPrefixPattern.FindString(parsed.Path); prefix != "" {
				return baseURL + prefix + "app/" + path[len("/app/"):]
			}
		}
	}

	return baseURL + path
}

// CleanDocumentTitle strips the host application's name decoration from a
// document title ("Trip ideas | Gemini" -> "Trip ideas").
func CleanDocumentTitle(title string) string {
	title = docTitleSuffix.ReplaceAllString(title, "")
	title = docTitlePrefix.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}
