package tui

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/engine"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/search"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/tui/layout"
)

// mode is the App's input mode.
type mode int

const (
	modeBrowse mode = iota
	modeAddFolder
	modeRenameFolder
	modeConfirmDelete
	modeMove
	modeFilter
)

// moveOption is one target folder in the move picker.
type moveOption struct {
	ID   string
	Path string
}

// App is the main bubbletea model: the folder tree with its filed
// conversations.
type App struct {
	engine  *engine.Engine
	baseURL string
	keys    KeyMap
	styles  Styles
	cfg     layout.LayoutConfig

	items  []Item
	cursor int

	mode        mode
	nameInput   textinput.Model
	filterInput textinput.Model
	filterQuery string

	addParentID  *string
	renameID     string
	deleteTarget Item

	moveConversationID string
	moveOptions        []moveOption
	moveCursor         int

	// For gg command
	lastKeyWasG bool

	message   string
	isError   bool
	width     int
	height    int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Engine  *engine.Engine
	BaseURL string
	Keys    *KeyMap // optional, uses default if nil
	Styles  *Styles // optional, uses default if nil
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	cfg := layout.DefaultConfig()

	nameInput := textinput.New()
	nameInput.Placeholder = "Folder name"
	nameInput.CharLimit = cfg.Input.NameCharLimit
	nameInput.Width = cfg.Input.StandardWidth

	filterInput := textinput.New()
	filterInput.Placeholder = "Filter..."
	filterInput.CharLimit = cfg.Input.FilterCharLimit
	filterInput.Width = cfg.Input.FilterWidth

	app := App{
		engine:      params.Engine,
		baseURL:     strings.TrimRight(params.BaseURL, "/"),
		keys:        keys,
		styles:      styles,
		cfg:         cfg,
		nameInput:   nameInput,
		filterInput: filterInput,
		width:       80,
		height:      24,
	}

	app.refreshItems()
	return app
}

// refreshItems rebuilds the visible rows from the engine's current state.
func (a *App) refreshItems() {
	if a.filterQuery != "" {
		a.items = a.filteredItems()
	} else {
		a.items = nil
		a.appendTree(nil, 0)
	}

	if a.cursor >= len(a.items) {
		a.cursor = len(a.items) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// appendTree walks the folder tree depth-first, honoring collapse state.
func (a *App) appendTree(parentID *string, depth int) {
	folders := a.engine.ChildFolders(parentID)
	for i := range folders {
		folder := folders[i]
		a.items = append(a.items, Item{Kind: ItemFolder, Folder: &folder, Depth: depth})
		if folder.Collapsed {
			continue
		}

		id := folder.ID
		a.appendTree(&id, depth+1)

		conversations := a.engine.ConversationsByFolder(folder.ID)
		for j := range conversations {
			a.items = append(a.items, Item{
				Kind:         ItemConversation,
				Conversation: &conversations[j],
				Depth:        depth + 1,
			})
		}
	}
}

// filteredItems returns the conversations matching the active filter.
func (a *App) filteredItems() []Item {
	results := search.FuzzySearchConversations(a.engine.ConversationMap(), a.filterQuery)
	items := make([]Item, 0, len(results))
	for _, r := range results {
		items = append(items, Item{Kind: ItemConversation, Conversation: r.Conversation})
	}
	return items
}

// currentItem returns the item under the cursor, if any.
func (a *App) currentItem() (Item, bool) {
	if len(a.items) == 0 || a.cursor >= len(a.items) {
		return Item{}, false
	}
	return a.items[a.cursor], true
}

// Cursor returns the current cursor position.
func (a App) Cursor() int {
	return a.cursor
}

// Items returns the current list of items.
func (a App) Items() []Item {
	return a.items
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		switch a.mode {
		case modeAddFolder, modeRenameFolder:
			return a.updateNameInput(msg)
		case modeConfirmDelete:
			return a.updateConfirmDelete(msg)
		case modeMove:
			return a.updateMove(msg)
		case modeFilter:
			return a.updateFilter(msg)
		}
		return a.updateBrowse(msg)
	}

	return a, nil
}

func (a App) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.cursor = 0
			a.lastKeyWasG = false
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		if len(a.items) > 0 && a.cursor < len(a.items)-1 {
			a.cursor++
		}

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Bottom):
		if len(a.items) > 0 {
			a.cursor = len(a.items) - 1
		}

	case key.Matches(msg, a.keys.Toggle):
		if item, ok := a.currentItem(); ok && item.IsFolder() {
			a.do(a.engine.ToggleFolder(item.Folder.ID))
		}

	case key.Matches(msg, a.keys.Open):
		if item, ok := a.currentItem(); ok {
			if item.IsFolder() {
				a.do(a.engine.ToggleFolder(item.Folder.ID))
			} else if item.Conversation.FolderID != nil {
				err := a.engine.NavigateToConversation(*item.Conversation.FolderID, item.Conversation.ConversationID)
				a.do(err)
				if err == nil {
					a.setMessage("opened " + item.Title())
				}
			}
		}

	case key.Matches(msg, a.keys.AddFolder):
		a.mode = modeAddFolder
		a.addParentID = nil
		a.nameInput.Reset()
		a.nameInput.Focus()
		return a, textinput.Blink

	case key.Matches(msg, a.keys.AddSubfolder):
		a.mode = modeAddFolder
		a.addParentID = nil
		if item, ok := a.currentItem(); ok && item.IsFolder() {
			id := item.Folder.ID
			a.addParentID = &id
		}
		a.nameInput.Reset()
		a.nameInput.Focus()
		return a, textinput.Blink

	case key.Matches(msg, a.keys.Rename):
		if item, ok := a.currentItem(); ok && item.IsFolder() {
			a.mode = modeRenameFolder
			a.renameID = item.Folder.ID
			a.nameInput.SetValue(item.Folder.Name)
			a.nameInput.Focus()
			return a, textinput.Blink
		}

	case key.Matches(msg, a.keys.Delete):
		if item, ok := a.currentItem(); ok && item.IsFolder() {
			a.mode = modeConfirmDelete
			a.deleteTarget = item
		}

	case key.Matches(msg, a.keys.Pin):
		if item, ok := a.currentItem(); ok && item.IsFolder() {
			a.do(a.engine.TogglePinFolder(item.Folder.ID))
		}

	case key.Matches(msg, a.keys.Move):
		if item, ok := a.currentItem(); ok && !item.IsFolder() {
			a.mode = modeMove
			a.moveConversationID = item.Conversation.ConversationID
			a.moveOptions = a.folderOptions()
			a.moveCursor = 0
		}

	case key.Matches(msg, a.keys.Remove):
		if item, ok := a.currentItem(); ok && !item.IsFolder() {
			a.do(a.engine.RemoveConversationFromFolder(item.Conversation.ConversationID))
		}

	case key.Matches(msg, a.keys.YankURL):
		if item, ok := a.currentItem(); ok && !item.IsFolder() {
			url := a.absoluteURL(item.Conversation.URL)
			if err := clipboard.WriteAll(url); err != nil {
				a.setError("clipboard unavailable")
			} else {
				a.setMessage("yanked " + url)
			}
		}

	case key.Matches(msg, a.keys.Filter):
		a.mode = modeFilter
		a.filterInput.SetValue(a.filterQuery)
		a.filterInput.Focus()
		return a, textinput.Blink
	}

	return a, nil
}

func (a App) updateNameInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.mode = modeBrowse
		a.nameInput.Blur()
		return a, nil

	case tea.KeyEnter:
		name := strings.TrimSpace(a.nameInput.Value())
		if a.mode == modeAddFolder {
			a.do(a.engine.AddFolder(name, a.addParentID))
		} else {
			a.do(a.engine.RenameFolder(a.renameID, name))
		}
		a.mode = modeBrowse
		a.nameInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.nameInput, cmd = a.nameInput.Update(msg)
	return a, cmd
}

func (a App) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		a.do(a.engine.RemoveFolder(a.deleteTarget.Folder.ID))
		a.mode = modeBrowse
	case "n", "esc", "q":
		a.mode = modeBrowse
	}
	return a, nil
}

func (a App) updateMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		a.mode = modeBrowse
		return a, nil

	case "j", "down":
		if a.moveCursor < len(a.moveOptions)-1 {
			a.moveCursor++
		}
		return a, nil

	case "k", "up":
		if a.moveCursor > 0 {
			a.moveCursor--
		}
		return a, nil

	case "enter":
		if a.moveCursor < len(a.moveOptions) {
			target := a.moveOptions[a.moveCursor]
			conversation, ok := a.engine.Conversation(a.moveConversationID)
			if ok {
				a.do(a.engine.MoveConversationToFolder(
					a.moveConversationID, target.ID, conversation.Title, conversation.URL))
			}
		}
		a.mode = modeBrowse
		return a, nil
	}
	return a, nil
}

func (a App) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.mode = modeBrowse
		a.filterQuery = ""
		a.filterInput.Blur()
		a.refreshItems()
		return a, nil

	case tea.KeyEnter:
		a.mode = modeBrowse
		a.filterInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.filterInput, cmd = a.filterInput.Update(msg)
	a.filterQuery = strings.TrimSpace(a.filterInput.Value())
	a.cursor = 0
	a.refreshItems()
	return a, cmd
}

// folderOptions flattens the folder tree into move targets with full paths.
func (a *App) folderOptions() []moveOption {
	var options []moveOption
	var walk func(parentID *string, prefix string)
	walk = func(parentID *string, prefix string) {
		for _, folder := range a.engine.ChildFolders(parentID) {
			path := prefix + folder.Name
			options = append(options, moveOption{ID: folder.ID, Path: path})
			id := folder.ID
			walk(&id, path+"/")
		}
	}
	walk(nil, "")
	return options
}

// do runs a mutation's error through the message line and refreshes.
func (a *App) do(err error) {
	if err != nil {
		a.setError(err.Error())
		return
	}
	a.message = ""
	a.isError = false
	a.refreshItems()
}

func (a *App) setMessage(text string) {
	a.message = text
	a.isError = false
}

func (a *App) setError(text string) {
	a.message = text
	a.isError = true
}

func (a *App) absoluteURL(raw string) string {
	if strings.HasPrefix(raw, "/") && a.baseURL != "" {
		return a.baseURL + raw
	}
	return raw
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}
