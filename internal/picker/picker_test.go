package picker

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/model"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/search"
)

func conversation(id, title, url string) *model.Conversation {
	folder := "f1"
	return &model.Conversation{
		ConversationID: id,
		FolderID:       &folder,
		Title:          title,
		URL:            url,
		UpdatedAt:      time.Now(),
	}
}

func twoResults() []search.SearchResult {
	return []search.SearchResult{
		{Conversation: conversation("c1", "Git rebase workflow", "/app/c1")},
		{Conversation: conversation("c2", "Git bisect walkthrough", "/app/c2")},
	}
}

func TestPicker_InitialState(t *testing.T) {
	p := New(twoResults(), "git")

	if p.cursor != 0 {
		t.Errorf("expected cursor at 0, got %d", p.cursor)
	}
	if len(p.results) != 2 {
		t.Errorf("expected 2 results, got %d", len(p.results))
	}
}

func TestPicker_NavigateDown(t *testing.T) {
	p := New(twoResults(), "git")
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}

	newModel, _ := p.Update(msg)
	p = newModel.(Picker)

	if p.cursor != 1 {
		t.Errorf("expected cursor at 1, got %d", p.cursor)
	}
}

func TestPicker_NavigateUp(t *testing.T) {
	p := New(twoResults(), "git")
	// Move down first
	p.cursor = 1

	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}
	newModel, _ := p.Update(msg)
	p = newModel.(Picker)

	if p.cursor != 0 {
		t.Errorf("expected cursor at 0, got %d", p.cursor)
	}
}

func TestPicker_BoundsCheck(t *testing.T) {
	results := []search.SearchResult{
		{Conversation: conversation("c1", "Git rebase workflow", "/app/c1")},
	}

	p := New(results, "git")

	// Try to go up from 0 (should stay at 0)
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}
	newModel, _ := p.Update(msg)
	p = newModel.(Picker)

	if p.cursor != 0 {
		t.Errorf("expected cursor at 0, got %d", p.cursor)
	}

	// Try to go down from last (should stay at last)
	msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	newModel, _ = p.Update(msg)
	p = newModel.(Picker)

	if p.cursor != 0 {
		t.Errorf("expected cursor at 0 (only 1 item), got %d", p.cursor)
	}
}

func TestPicker_SelectItem(t *testing.T) {
	p := New(twoResults(), "git")
	p.cursor = 1

	msg := tea.KeyMsg{Type: tea.KeyEnter}
	newModel, cmd := p.Update(msg)
	p = newModel.(Picker)

	if !p.selected {
		t.Error("expected selected to be true after Enter")
	}

	// Should return quit command
	if cmd == nil {
		t.Error("expected quit command after selection")
	}
}

func TestPicker_Cancel(t *testing.T) {
	p := New(twoResults(), "git")

	msg := tea.KeyMsg{Type: tea.KeyEsc}
	newModel, cmd := p.Update(msg)
	p = newModel.(Picker)

	if !p.cancelled {
		t.Error("expected cancelled to be true after Esc")
	}
	if cmd == nil {
		t.Error("expected quit command after cancel")
	}
}

func TestPicker_SelectedConversation(t *testing.T) {
	c := conversation("c1", "Git rebase workflow", "/app/c1")
	p := New([]search.SearchResult{{Conversation: c}}, "git")
	p.selected = true

	got := p.SelectedConversation()
	if got != c {
		t.Errorf("expected selected conversation to be returned")
	}
}

func TestPicker_SelectedConversation_Cancelled(t *testing.T) {
	p := New(twoResults(), "git")
	p.cancelled = true

	got := p.SelectedConversation()
	if got != nil {
		t.Error("expected nil when cancelled")
	}
}

func TestPicker_ArrowKeys(t *testing.T) {
	p := New(twoResults(), "git")

	// Test down arrow
	msg := tea.KeyMsg{Type: tea.KeyDown}
	newModel, _ := p.Update(msg)
	p = newModel.(Picker)
	if p.cursor != 1 {
		t.Errorf("expected cursor at 1 after down arrow, got %d", p.cursor)
	}

	// Test up arrow
	msg = tea.KeyMsg{Type: tea.KeyUp}
	newModel, _ = p.Update(msg)
	p = newModel.(Picker)
	if p.cursor != 0 {
		t.Errorf("expected cursor at 0 after up arrow, got %d", p.cursor)
	}
}
