// Package page scrapes conversation identity, titles, and URLs out of a
// capture of the host chat application. Everything here is best-effort:
// the host page is an uncontrolled, unversioned surface, so every lookup
// may come back empty and callers must treat absence as normal.
package page

// Snapshot is the best-effort view of one conversation as currently
// rendered by the host page.
type Snapshot struct {
	Title string
	URL   string
}

// Adapter is the fallible oracle over the host page that the engine
// consumes. Implementations never fail hard: unknown conversations and
// unreadable pages yield zero values.
type Adapter interface {
	// ExtractConversationID pulls the conversation id out of an absolute
	// or relative URL. Returns "" when the URL addresses no conversation.
	ExtractConversationID(raw string) string

	// NormalizeURL converts a scraped href into an absolute URL,
	// preserving the account path of the current location.
	NormalizeURL(raw string) string

	// ResolveSnapshot locates the rendered row for the conversation and
	// extracts a title/url candidate from it.
	ResolveSnapshot(conversationID string) (Snapshot, bool)

	// DocumentTitle returns the page's document title, undecorated.
	DocumentTitle() string

	// Location returns the currently loaded page URL.
	Location() string

	// AccountEmail returns the signed-in account's email, if detectable.
	AccountEmail() (string, bool)

	// Navigate records a location change for the conversation URL.
	Navigate(url string) error

	// Subscribe returns a channel that receives a signal whenever the
	// observed page changes, plus a cancel function. The channel carries
	// no payload; receivers re-run their own resolution.
	Subscribe() (<-chan struct{}, func())

	// Close releases observers held by the adapter.
	Close() error
}
