package timeline

import (
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/page"
)

// maxEntryText caps a timeline entry's display text.
const maxEntryText = 80

const defaultDebounce = 300 * time.Millisecond

// Entry is one user turn on the conversation timeline.
type Entry struct {
	Index  int
	Text   string
	Anchor string
}

// Source provides the rendered user turns and change notifications. The
// page adapter satisfies this.
type Source interface {
	UserTurns() []page.Turn
	Subscribe() (<-chan struct{}, func())
}

// Build derives the timeline entries from the source's current turns.
// Long texts are truncated for display.
func Build(source Source) []Entry {
	turns := source.UserTurns()
	entries := make([]Entry, 0, len(turns))
	for i, turn := range turns {
		entries = append(entries, Entry{Index: i, Text: truncateText(turn.Text), Anchor: turn.Anchor})
	}
	return entries
}

// truncateText shortens long texts for display, cutting on a rune
// boundary so multi-byte characters survive intact.
func truncateText(text string) string {
	if utf8.RuneCountInString(text) <= maxEntryText {
		return text
	}
	return string([]rune(text)[:maxEntryText]) + "..."
}

// Watcher keeps a timeline current as the page changes. Rebuilds are
// debounced because turn batches arrive as many individual mutations.
type Watcher struct {
	source   Source
	logger   *zap.Logger
	debounce time.Duration

	mu      sync.Mutex
	entries []Entry

	updates  chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// WatcherOptions configures a Watcher. A zero Debounce gets the default.
type WatcherOptions struct {
	Logger   *zap.Logger
	Debounce time.Duration
}

// NewWatcher builds the initial timeline and starts following changes.
func NewWatcher(source Source, opts WatcherOptions) *Watcher {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w := &Watcher{
		source:   source,
		logger:   logger,
		debounce: debounce,
		entries:  Build(source),
		updates:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	changes, cancelSub := source.Subscribe()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer cancelSub()
		w.run(changes)
	}()

	return w
}

// Entries returns the current timeline.
func (w *Watcher) Entries() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

// Updates signals after the timeline changed. One pending signal is kept;
// consumers re-read Entries.
func (w *Watcher) Updates() <-chan struct{} {
	return w.updates
}

// Stop ends the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
	})
	w.wg.Wait()
}

func (w *Watcher) run(changes <-chan struct{}) {
	var debounce *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			if debounce != nil {
				debounce.Stop()
			}
			return
		case <-changes:
			if debounce == nil {
				debounce = time.NewTimer(w.debounce)
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(w.debounce)
			}
			fire = debounce.C
		case <-fire:
			fire = nil
			w.rebuild()
		}
	}
}

func (w *Watcher) rebuild() {
	entries := Build(w.source)

	w.mu.Lock()
	changed := !entriesEqual(w.entries, entries)
	if changed {
		w.entries = entries
	}
	w.mu.Unlock()

	if !changed {
		return
	}

	w.logger.Debug("timeline rebuilt", zap.Int("entries", len(entries)))
	select {
	case w.updates <- struct{}{}:
	default:
	}
}

func entriesEqual(a, b []Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
