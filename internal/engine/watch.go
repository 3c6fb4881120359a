package engine

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/model"
)

// WatchState is the lifecycle state of a title watch.
type WatchState int

const (
	// WatchWatching means both triggers are armed and resolution is
	// being retried.
	WatchWatching WatchState = iota
	// WatchSynced means a valid title was resolved and persisted.
	WatchSynced
	// WatchExpired means the deadline passed (or the watch was stopped)
	// with no valid title; the assignment keeps whatever it had.
	WatchExpired
)

// TitleWatch is a bounded, cancelable retry loop resolving a
// conversation's title after a move that had none. Two independent
// triggers feed one idempotent resolution attempt: page-change
// notifications, and a fixed-interval poll. Title rendering on the host
// page is not reliably observable through change events alone, so the
// poll is not redundant.
type TitleWatch struct {
	mu    sync.Mutex
	state WatchState

	done     chan struct{}
	doneOnce sync.Once
	stop     chan struct{}
	stopOnce sync.Once
}

// State returns the watch's current state.
func (w *TitleWatch) State() WatchState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Done is closed when the watch reaches a terminal state.
func (w *TitleWatch) Done() <-chan struct{} {
	return w.done
}

// Stop cancels the watch. Safe to call at any point, any number of times.
func (w *TitleWatch) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
}

func (w *TitleWatch) finish(state WatchState) {
	w.doneOnce.Do(func() {
		w.mu.Lock()
		w.state = state
		w.mu.Unlock()
		close(w.done)
	})
}

// WatchTitleAndSync starts the watch-and-sync loop for a conversation that
// was filed without a valid title. An immediate attempt runs first; when
// it succeeds no goroutine is started. The returned watch is already
// terminal in that case.
func (e *Engine) WatchTitleAndSync(folderID, conversationID, currentURL string) *TitleWatch {
	w := &TitleWatch{
		state: WatchWatching,
		done:  make(chan struct{}),
		stop:  make(chan struct{}),
	}

	trySync := func() bool {
		snapshot, ok := e.resolveBestSnapshot(conversationID)
		if !ok {
			return false
		}
		title, valid := model.SanitizeTitle(snapshot.Title)
		if !valid {
			return false
		}

		url := snapshot.URL
		if url == "" {
			url = currentURL
		}
		if err := e.MoveConversationToFolder(conversationID, folderID, title, url); err != nil {
			e.logger.Debug("watch sync persist failed",
				zap.String("conversation", conversationID),
				zap.Error(err))
			return false
		}
		e.logger.Debug("watch sync resolved title",
			zap.String("conversation", conversationID),
			zap.String("title", title))
		return true
	}

	if trySync() {
		w.finish(WatchSynced)
		return w
	}

	changes, cancelSub := e.page.Subscribe()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer cancelSub()

		poll := time.NewTicker(e.watchPoll)
		defer poll.Stop()
		deadline := time.NewTimer(e.watchTimeout)
		defer deadline.Stop()

		for {
			select {
			case <-e.done:
				w.finish(WatchExpired)
				return
			case <-w.stop:
				w.finish(WatchExpired)
				return
			case <-deadline.C:
				w.finish(WatchExpired)
				return
			case <-changes:
				if trySync() {
					w.finish(WatchSynced)
					return
				}
			case <-poll.C:
				if trySync() {
					w.finish(WatchSynced)
					return
				}
			}
		}
	}()

	return w
}
