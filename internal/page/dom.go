package page

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/model"
)

// DOMAdapter implements Adapter over an HTML capture of the host page.
// The capture file stands in for the live DOM: it is re-parsed whenever
// its mtime changes, and a filesystem watcher feeds change notifications
// to subscribers the way a MutationObserver would.
type DOMAdapter struct {
	baseURL string
	path    string
	logger  *zap.Logger

	mu           sync.Mutex
	location     string
	modeOverride string
	modTime      time.Time
	doc          *html.Node

	subMu   sync.Mutex
	subs    map[int]chan struct{}
	nextSub int

	watcher *fsnotify.Watcher
	done    chan struct{}
	closed  sync.Once
}

// DOMAdapterOptions configures a DOMAdapter.
type DOMAdapterOptions struct {
	// SnapshotPath is the HTML capture to scrape. Empty is allowed; the
	// adapter then resolves nothing, which is within its contract.
	SnapshotPath string
	// BaseURL is the host origin, e.g. "https://gemini.google.com".
	BaseURL string
	// Location is the initially loaded page URL.
	Location string
	Logger   *zap.Logger
}

// NewDOMAdapter creates a DOMAdapter and starts watching the snapshot
// file for changes when one is configured.
func NewDOMAdapter(opts DOMAdapterOptions) (*DOMAdapter, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://gemini.google.com"
	}

	a := &DOMAdapter{
		baseURL:  baseURL,
		path:     opts.SnapshotPath,
		logger:   logger,
		location: opts.Location,
		subs:     map[int]chan struct{}{},
		done:     make(chan struct{}),
	}

	if a.path != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, err
		}
		// Watch the directory: editors and capture tools replace the
		// file rather than writing it in place.
		if err := watcher.Add(filepath.Dir(a.path)); err != nil {
			watcher.Close()
			return nil, err
		}
		a.watcher = watcher
		go a.watch()
	}

	return a, nil
}

// watch forwards snapshot file events to subscribers.
func (a *DOMAdapter) watch() {
	name := filepath.Base(a.path)
	for {
		select {
		case <-a.done:
			return
		case event, ok := <-a.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			a.notify()
		case err, ok := <-a.watcher.Errors:
			if !ok {
				return
			}
			a.logger.Debug("snapshot watch error", zap.Error(err))
		}
	}
}

func (a *DOMAdapter) notify() {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	for _, ch := range a.subs {
		select {
		case ch <- struct{}{}:
		default:
			// Subscriber already has a pending signal.
		}
	}
}

// Subscribe implements Adapter.
func (a *DOMAdapter) Subscribe() (<-chan struct{}, func()) {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	id := a.nextSub
	a.nextSub++
	ch := make(chan struct{}, 1)
	a.subs[id] = ch

	cancel := func() {
		a.subMu.Lock()
		defer a.subMu.Unlock()
		delete(a.subs, id)
	}
	return ch, cancel
}

// Close implements Adapter.
func (a *DOMAdapter) Close() error {
	var err error
	a.closed.Do(func() {
		close(a.done)
		if a.watcher != nil {
			err = a.watcher.Close()
		}
	})
	return err
}

// Location implements Adapter.
func (a *DOMAdapter) Location() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.location
}

// Navigate implements Adapter. The adapter only records the location;
// opening the URL is the presentation layer's concern.
func (a *DOMAdapter) Navigate(url string) error {
	a.mu.Lock()
	a.location = url
	a.mu.Unlock()
	a.notify()
	return nil
}

// ExtractConversationID implements Adapter.
func (a *DOMAdapter) ExtractConversationID(raw string) string {
	return ExtractConversationID(raw)
}

// NormalizeURL implements Adapter.
func (a *DOMAdapter) NormalizeURL(raw string) string {
	return NormalizeURL(a.baseURL, a.Location(), raw)
}

// root returns the parsed snapshot, re-reading the file when it changed.
// A missing or unparseable snapshot yields nil.
func (a *DOMAdapter) root() *html.Node {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.path == "" {
		return nil
	}

	info, err := os.Stat(a.path)
	if err != nil {
		return a.doc
	}
	if a.doc != nil && info.ModTime().Equal(a.modTime) {
		return a.doc
	}

	file, err := os.Open(a.path)
	if err != nil {
		return a.doc
	}
	defer file.Close()

	doc, err := html.Parse(file)
	if err != nil {
		a.logger.Debug("snapshot parse failed", zap.Error(err))
		return a.doc
	}

	a.doc = doc
	a.modTime = info.ModTime()
	return a.doc
}

// DocumentTitle implements Adapter.
func (a *DOMAdapter) DocumentTitle() string {
	doc := a.root()
	if doc == nil {
		return ""
	}
	title := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "title"
	})
	if title == nil {
		return ""
	}
	return model.NormalizeTitle(textContent(title))
}

// AccountEmail implements Adapter. The email is parsed out of the account
// link's aria-label ("Google Account: Name (email)"); the link's CSS
// classes are minified and unstable, so the label prefix is the anchor.
func (a *DOMAdapter) AccountEmail() (string, bool) {
	doc := a.root()
	if doc == nil {
		return "", false
	}

	link := findNode(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "a" &&
			strings.HasPrefix(attr(n, "aria-label"), "Google Account:")
	})
	if link == nil {
		return "", false
	}

	label := attr(link, "aria-label")
	start := strings.Index(label, "(")
	end := strings.Index(label, ")")
	if start < 0 || end <= start+1 {
		return "", false
	}
	return label[start+1 : end], true
}

// ResolveSnapshot implements Adapter. It locates the rendered conversation
// row matching the id (by embedded log token or by link href) and extracts
// the best title candidate from it.
func (a *DOMAdapter) ResolveSnapshot(conversationID string) (Snapshot, bool) {
	doc := a.root()
	if doc == nil || conversationID == "" {
		return Snapshot{}, false
	}

	for _, row := range conversationRows(doc) {
		anchor := conversationAnchor(row)
		if !rowMatches(row, anchor, conversationID) {
			continue
		}

		snapshot := Snapshot{Title: extractConversationTitle(row)}
		if anchor != nil {
			if href := attr(anchor, "href"); href != "" {
				snapshot.URL = a.NormalizeURL(href)
			}
			if snapshot.Title == "" {
				snapshot.Title = extractConversationTitle(anchor)
			}
		}
		if snapshot.Title == "" && snapshot.URL == "" {
			return Snapshot{}, false
		}
		return snapshot, true
	}

	return Snapshot{}, false
}

// conversationRows returns the host page's rendered conversation rows.
func conversationRows(doc *html.Node) []*html.Node {
	return findNodes(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "data-test-id") == "conversation"
	})
}

// conversationAnchor returns the row's conversation link, if any.
func conversationAnchor(row *html.Node) *html.Node {
	return findNode(row, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "a" {
			return false
		}
		href := attr(n, "href")
		return strings.Contains(href, "/app/") ||
			strings.Contains(href, "/gem/") ||
			strings.Contains(href, "/chat/")
	})
}

// rowMatches reports whether the row belongs to the conversation, matching
// either the jslog token or the link target.
func rowMatches(row, anchor *html.Node, conversationID string) bool {
	if jslog := attr(row, "jslog"); jslog != "" {
		if strings.Contains(jslog, conversationID) || strings.Contains(jslog, "c_"+conversationID) {
			return true
		}
	}
	if anchor != nil && strings.Contains(attr(anchor, "href"), conversationID) {
		return true
	}
	return false
}
