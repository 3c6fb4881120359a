package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/engine"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/page"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/storage"
)

// stubAdapter is a minimal page.Adapter for TUI tests: a fixed account,
// no rendered conversations.
type stubAdapter struct{}

func (stubAdapter) ExtractConversationID(raw string) string { return page.ExtractConversationID(raw) }
func (stubAdapter) NormalizeURL(raw string) string          { return raw }
func (stubAdapter) ResolveSnapshot(string) (page.Snapshot, bool) {
	return page.Snapshot{}, false
}
func (stubAdapter) DocumentTitle() string          { return "" }
func (stubAdapter) Location() string               { return "" }
func (stubAdapter) AccountEmail() (string, bool)   { return "someone@example.com", true }
func (stubAdapter) Navigate(string) error          { return nil }
func (stubAdapter) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{})
	return ch, func() {}
}
func (stubAdapter) Close() error { return nil }

func newTestApp(t *testing.T) (App, *engine.Engine) {
	t.Helper()

	svc := storage.NewService(storage.NewJSONKV(filepath.Join(t.TempDir(), "state.json")), nil)
	e, err := engine.New(context.Background(), engine.Options{
		Store:             svc,
		Page:              stubAdapter{},
		WatchPollInterval: time.Millisecond,
		WatchTimeout:      10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	t.Cleanup(e.Close)

	// Seed: Cooking (with two conversations), Work
	if err := e.AddFolder("Cooking", nil); err != nil {
		t.Fatal(err)
	}
	if err := e.AddFolder("Work", nil); err != nil {
		t.Fatal(err)
	}
	var cookingID string
	for _, f := range e.Folders() {
		if f.Name == "Cooking" {
			cookingID = f.ID
		}
	}
	if err := e.MoveConversationToFolder("c1", cookingID, "Turkey brining", "/app/c1"); err != nil {
		t.Fatal(err)
	}
	if err := e.MoveConversationToFolder("c2", cookingID, "Sourdough starter", "/app/c2"); err != nil {
		t.Fatal(err)
	}

	app := NewApp(AppParams{Engine: e, BaseURL: "https://gemini.google.com"})
	return app, e
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sendKey(t *testing.T, a App, msg tea.KeyMsg) App {
	t.Helper()
	m, _ := a.Update(msg)
	return m.(App)
}

func sendRunes(t *testing.T, a App, s string) App {
	t.Helper()
	for _, r := range s {
		a = sendKey(t, a, keyRunes(string(r)))
	}
	return a
}

func folderIndex(items []Item, name string) int {
	for i, item := range items {
		if item.IsFolder() && item.Folder.Name == name {
			return i
		}
	}
	return -1
}

func TestApp_InitialItems(t *testing.T) {
	app, _ := newTestApp(t)

	// Cooking, its two conversations (newest first), then Work
	if len(app.items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(app.items))
	}
	if !app.items[0].IsFolder() || app.items[0].Folder.Name != "Cooking" {
		t.Errorf("expected Cooking first, got %v", app.items[0].Title())
	}
	if app.items[1].IsFolder() || app.items[2].IsFolder() {
		t.Error("expected conversations after Cooking")
	}
	if !app.items[3].IsFolder() || app.items[3].Folder.Name != "Work" {
		t.Errorf("expected Work last, got %v", app.items[3].Title())
	}
	if app.items[1].Depth != 1 {
		t.Errorf("expected conversation depth 1, got %d", app.items[1].Depth)
	}
}

func TestApp_Navigation(t *testing.T) {
	app, _ := newTestApp(t)

	app = sendKey(t, app, keyRunes("j"))
	if app.cursor != 1 {
		t.Errorf("expected cursor 1, got %d", app.cursor)
	}

	app = sendKey(t, app, keyRunes("k"))
	if app.cursor != 0 {
		t.Errorf("expected cursor 0, got %d", app.cursor)
	}

	app = sendKey(t, app, keyRunes("G"))
	if app.cursor != len(app.items)-1 {
		t.Errorf("expected cursor at bottom, got %d", app.cursor)
	}

	app = sendRunes(t, app, "gg")
	if app.cursor != 0 {
		t.Errorf("expected cursor 0 after gg, got %d", app.cursor)
	}
}

func TestApp_ToggleCollapse(t *testing.T) {
	app, _ := newTestApp(t)

	// Collapse Cooking: conversations disappear
	app = sendKey(t, app, keyRunes("h"))
	if len(app.items) != 2 {
		t.Fatalf("expected 2 items after collapse, got %d", len(app.items))
	}

	// Expand again
	app = sendKey(t, app, keyRunes("l"))
	if len(app.items) != 4 {
		t.Fatalf("expected 4 items after expand, got %d", len(app.items))
	}
}

func TestApp_AddRootFolder(t *testing.T) {
	app, e := newTestApp(t)

	app = sendKey(t, app, keyRunes("A"))
	if app.mode != modeAddFolder {
		t.Fatal("expected add-folder mode")
	}

	app = sendRunes(t, app, "Travel")
	app = sendKey(t, app, tea.KeyMsg{Type: tea.KeyEnter})

	if app.mode != modeBrowse {
		t.Error("expected browse mode after confirm")
	}
	if folderIndex(app.items, "Travel") == -1 {
		t.Error("expected Travel folder in tree")
	}
	if len(e.Folders()) != 3 {
		t.Errorf("expected 3 folders persisted, got %d", len(e.Folders()))
	}
}

func TestApp_AddSubfolder(t *testing.T) {
	app, e := newTestApp(t)

	// Cursor on Cooking
	app = sendKey(t, app, keyRunes("a"))
	app = sendRunes(t, app, "Baking")
	app = sendKey(t, app, tea.KeyMsg{Type: tea.KeyEnter})

	idx := folderIndex(app.items, "Baking")
	if idx == -1 {
		t.Fatal("expected Baking folder in tree")
	}
	if app.items[idx].Depth != 1 {
		t.Errorf("expected Baking nested at depth 1, got %d", app.items[idx].Depth)
	}

	var parent *string
	for _, f := range e.Folders() {
		if f.Name == "Baking" {
			parent = f.ParentID
		}
	}
	if parent == nil {
		t.Error("expected Baking to have a parent")
	}
}

func TestApp_AddFolderCancel(t *testing.T) {
	app, e := newTestApp(t)

	app = sendKey(t, app, keyRunes("A"))
	app = sendRunes(t, app, "Discarded")
	app = sendKey(t, app, tea.KeyMsg{Type: tea.KeyEsc})

	if app.mode != modeBrowse {
		t.Error("expected browse mode after cancel")
	}
	if len(e.Folders()) != 2 {
		t.Errorf("expected 2 folders, got %d", len(e.Folders()))
	}
}

func TestApp_RenameFolder(t *testing.T) {
	app, e := newTestApp(t)

	app = sendKey(t, app, keyRunes("e"))
	if app.mode != modeRenameFolder {
		t.Fatal("expected rename mode")
	}
	if app.nameInput.Value() != "Cooking" {
		t.Errorf("expected input pre-filled with Cooking, got %q", app.nameInput.Value())
	}

	app = sendRunes(t, app, " 2024")
	app = sendKey(t, app, tea.KeyMsg{Type: tea.KeyEnter})

	found := false
	for _, f := range e.Folders() {
		if f.Name == "Cooking 2024" {
			found = true
		}
	}
	if !found {
		t.Error("expected renamed folder persisted")
	}
}

func TestApp_DeleteFolderConfirm(t *testing.T) {
	app, e := newTestApp(t)

	app = sendKey(t, app, keyRunes("d"))
	if app.mode != modeConfirmDelete {
		t.Fatal("expected confirm mode")
	}

	app = sendKey(t, app, keyRunes("y"))

	if len(e.Folders()) != 1 {
		t.Fatalf("expected 1 folder left, got %d", len(e.Folders()))
	}
	// Conversations are detached, not deleted
	c, ok := e.Conversation("c1")
	if !ok {
		t.Fatal("expected conversation entry retained")
	}
	if c.FolderID != nil {
		t.Error("expected conversation detached")
	}
}

func TestApp_DeleteFolderCancel(t *testing.T) {
	app, e := newTestApp(t)

	app = sendKey(t, app, keyRunes("d"))
	app = sendKey(t, app, keyRunes("n"))

	if app.mode != modeBrowse {
		t.Error("expected browse mode after cancel")
	}
	if len(e.Folders()) != 2 {
		t.Errorf("expected 2 folders, got %d", len(e.Folders()))
	}
}

func TestApp_PinFolder(t *testing.T) {
	app, _ := newTestApp(t)

	// Pin Work (last item) and expect it sorted first
	app = sendKey(t, app, keyRunes("G"))
	app = sendKey(t, app, keyRunes("*"))

	if !app.items[0].IsFolder() || app.items[0].Folder.Name != "Work" {
		t.Errorf("expected pinned Work first, got %s", app.items[0].Title())
	}
	if !app.items[0].Folder.Pinned {
		t.Error("expected Work pinned")
	}
}

func TestApp_MoveConversation(t *testing.T) {
	app, e := newTestApp(t)

	// Cursor onto the first conversation under Cooking
	app = sendKey(t, app, keyRunes("j"))
	movedID := app.items[app.cursor].Conversation.ConversationID

	app = sendKey(t, app, keyRunes("m"))
	if app.mode != modeMove {
		t.Fatal("expected move mode")
	}
	if len(app.moveOptions) != 2 {
		t.Fatalf("expected 2 move targets, got %d", len(app.moveOptions))
	}

	// Select Work (second option)
	app = sendKey(t, app, keyRunes("j"))
	app = sendKey(t, app, tea.KeyMsg{Type: tea.KeyEnter})

	c, _ := e.Conversation(movedID)
	if c.FolderID == nil || *c.FolderID != app.moveOptions[1].ID {
		t.Error("expected conversation moved to Work")
	}
}

func TestApp_RemoveConversation(t *testing.T) {
	app, e := newTestApp(t)

	app = sendKey(t, app, keyRunes("j"))
	removedID := app.items[app.cursor].Conversation.ConversationID

	app = sendKey(t, app, keyRunes("x"))

	c, ok := e.Conversation(removedID)
	if !ok {
		t.Fatal("expected soft-deleted entry retained")
	}
	if c.FolderID != nil {
		t.Error("expected conversation detached")
	}
	if len(app.items) != 3 {
		t.Errorf("expected 3 items after detach, got %d", len(app.items))
	}
}

func TestApp_Filter(t *testing.T) {
	app, _ := newTestApp(t)

	app = sendKey(t, app, keyRunes("/"))
	if app.mode != modeFilter {
		t.Fatal("expected filter mode")
	}

	app = sendRunes(t, app, "turkey")
	if len(app.items) != 1 {
		t.Fatalf("expected 1 match, got %d", len(app.items))
	}
	if app.items[0].Conversation.Title != "Turkey brining" {
		t.Errorf("unexpected match %q", app.items[0].Title())
	}

	// Esc clears the filter and restores the tree
	app = sendKey(t, app, tea.KeyMsg{Type: tea.KeyEsc})
	if len(app.items) != 4 {
		t.Errorf("expected full tree restored, got %d items", len(app.items))
	}
}

func TestApp_FilterApplyKeepsQuery(t *testing.T) {
	app, _ := newTestApp(t)

	app = sendKey(t, app, keyRunes("/"))
	app = sendRunes(t, app, "sour")
	app = sendKey(t, app, tea.KeyMsg{Type: tea.KeyEnter})

	if app.mode != modeBrowse {
		t.Error("expected browse mode after apply")
	}
	if app.filterQuery != "sour" {
		t.Errorf("expected filter kept, got %q", app.filterQuery)
	}
	if len(app.items) != 1 {
		t.Errorf("expected filtered list, got %d items", len(app.items))
	}
}
