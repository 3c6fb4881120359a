// Package engine is the reconciliation core: it owns the in-memory view of
// the folder tree and conversation map, funnels every mutation through the
// persistence service, and keeps stored conversation titles in sync with
// whatever the host page is currently rendering.
package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/identity"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/model"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/page"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/storage"
)

const (
	defaultWatchPollInterval = 250 * time.Millisecond
	defaultWatchTimeout      = 10 * time.Second
	defaultResyncDelay       = 300 * time.Millisecond
)

// Options configures an Engine.
type Options struct {
	Store  *storage.Service
	Page   page.Adapter
	Logger *zap.Logger

	// Watch timing knobs; zero values use the defaults.
	WatchPollInterval time.Duration
	WatchTimeout      time.Duration
	ResyncDelay       time.Duration
}

// Engine composes the identity resolver, persistence service, and page
// adapter behind the operations the presentation layer calls. Its cached
// collections are replaced wholesale with the result of every mutating
// storage call, never merged, so the cache cannot drift from the durable
// copy.
type Engine struct {
	store  *storage.Service
	page   page.Adapter
	logger *zap.Logger
	user   string

	watchPoll    time.Duration
	watchTimeout time.Duration
	resyncDelay  time.Duration

	mu            sync.RWMutex
	folders       []model.Folder
	conversations model.ConversationMap

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New resolves the user namespace and loads both collections. The context
// bounds identity resolution; the engine itself lives until Close.
func New(ctx context.Context, opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		store:        opts.Store,
		page:         opts.Page,
		logger:       logger,
		watchPoll:    opts.WatchPollInterval,
		watchTimeout: opts.WatchTimeout,
		resyncDelay:  opts.ResyncDelay,
		done:         make(chan struct{}),
	}
	if e.watchPoll <= 0 {
		e.watchPoll = defaultWatchPollInterval
	}
	if e.watchTimeout <= 0 {
		e.watchTimeout = defaultWatchTimeout
	}
	if e.resyncDelay <= 0 {
		e.resyncDelay = defaultResyncDelay
	}

	e.user = identity.Resolve(ctx, opts.Page)
	logger.Debug("resolved user namespace", zap.String("user", e.user))

	folders, err := e.store.GetFolders(e.user)
	if err != nil {
		return nil, err
	}
	conversations, err := e.store.GetConversationMap(e.user)
	if err != nil {
		return nil, err
	}

	e.folders = folders
	e.conversations = conversations
	return e, nil
}

// Close stops every running watch and waits for them to finish. Safe to
// call more than once.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
	})
	e.wg.Wait()
}

// User returns the resolved user namespace key.
func (e *Engine) User() string {
	return e.user
}

// Folders returns a copy of the cached folder list.
func (e *Engine) Folders() []model.Folder {
	e.mu.RLock()
	defer e.mu.RUnlock()
	folders := make([]model.Folder, len(e.folders))
	copy(folders, e.folders)
	return folders
}

// ChildFolders returns the folders under the given parent (nil for root),
// pinned folders first, then by creation order.
func (e *Engine) ChildFolders(parentID *string) []model.Folder {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return model.FoldersInFolder(e.folders, parentID)
}

// ConversationsByFolder returns the conversations filed under the folder,
// most recently updated first.
func (e *Engine) ConversationsByFolder(folderID string) []model.Conversation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.conversations.InFolder(folderID)
}

// Conversation returns the tracked entry for the id, if any.
func (e *Engine) Conversation(conversationID string) (model.Conversation, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.conversations[conversationID]
	return c, ok
}

// ConversationMap returns a copy of the cached conversation map.
func (e *Engine) ConversationMap() model.ConversationMap {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.conversations.Clone()
}

// AddFolder creates a folder. Blank names are a silent no-op.
func (e *Engine) AddFolder(name string, parentID *string) error {
	folders, err := e.store.AddFolder(e.user, name, parentID)
	if err != nil {
		return err
	}
	e.replaceFolders(folders)
	return nil
}

// RenameFolder renames a folder. Blank names are a silent no-op.
func (e *Engine) RenameFolder(folderID, name string) error {
	folders, err := e.store.RenameFolder(e.user, folderID, name)
	if err != nil {
		return err
	}
	e.replaceFolders(folders)
	return nil
}

// ToggleFolder flips the folder's collapsed state.
func (e *Engine) ToggleFolder(folderID string) error {
	folders, err := e.store.ToggleFolder(e.user, folderID)
	if err != nil {
		return err
	}
	e.replaceFolders(folders)
	return nil
}

// TogglePinFolder flips the folder's pinned state.
func (e *Engine) TogglePinFolder(folderID string) error {
	folders, err := e.store.TogglePinFolder(e.user, folderID)
	if err != nil {
		return err
	}
	e.replaceFolders(folders)
	return nil
}

// RemoveFolder deletes the folder and detaches its conversations.
func (e *Engine) RemoveFolder(folderID string) error {
	folders, conversations, err := e.store.RemoveFolder(e.user, folderID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.folders = folders
	e.conversations = conversations
	e.mu.Unlock()
	return nil
}

// MoveConversationToFolder files the conversation under the folder.
func (e *Engine) MoveConversationToFolder(conversationID, folderID, title, url string) error {
	conversations, err := e.store.MoveConversationToFolder(e.user, storage.MoveConversationParams{
		ConversationID: conversationID,
		FolderID:       folderID,
		Title:          title,
		URL:            url,
	})
	if err != nil {
		return err
	}
	e.replaceConversations(conversations)
	return nil
}

// RemoveConversationFromFolder detaches the conversation, keeping its
// entry so the cached title/url survive re-filing.
func (e *Engine) RemoveConversationFromFolder(conversationID string) error {
	conversations, err := e.store.RemoveConversationFromFolder(e.user, conversationID)
	if err != nil {
		return err
	}
	e.replaceConversations(conversations)
	return nil
}

func (e *Engine) replaceFolders(folders []model.Folder) {
	e.mu.Lock()
	e.folders = folders
	e.mu.Unlock()
}

func (e *Engine) replaceConversations(conversations model.ConversationMap) {
	e.mu.Lock()
	e.conversations = conversations
	e.mu.Unlock()
}
