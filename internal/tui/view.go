package tui

import (
	"fmt"
	"strings"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/tui/layout"
)

// Hint is one key/description pair in the help bar.
type Hint struct {
	Key  string
	Desc string
}

func (a App) renderView() string {
	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n")

	switch a.mode {
	case modeAddFolder:
		b.WriteString(a.styles.Prompt.Render("New folder:"))
		b.WriteString(" " + a.nameInput.View() + "\n")
	case modeRenameFolder:
		b.WriteString(a.styles.Prompt.Render("Rename folder:"))
		b.WriteString(" " + a.nameInput.View() + "\n")
	case modeConfirmDelete:
		b.WriteString(a.styles.Error.Render(
			fmt.Sprintf("Delete folder %q? Conversations inside are detached. (y/n)", a.deleteTarget.Folder.Name)))
		b.WriteString("\n")
	case modeMove:
		b.WriteString(a.renderMovePicker())
	case modeFilter:
		b.WriteString(a.styles.Prompt.Render("Filter:"))
		b.WriteString(" " + a.filterInput.View() + "\n")
	}

	if a.mode != modeMove {
		b.WriteString(a.renderTree())
	}

	b.WriteString(a.renderMessageLine())
	b.WriteString(a.renderHelpBar())

	return a.styles.App.Render(b.String())
}

func (a App) renderHeader() string {
	title := a.styles.Title.Render("Gemini Boost")
	counts := a.styles.Empty.Render(
		fmt.Sprintf("%s | %d folders", a.engine.User(), len(a.engine.Folders())))
	if a.filterQuery != "" {
		counts += a.styles.Empty.Render(fmt.Sprintf("  filter: %q", a.filterQuery))
	}
	return title + "  " + counts + "\n"
}

func (a App) renderTree() string {
	if len(a.items) == 0 {
		if a.filterQuery != "" {
			return a.styles.Empty.Render("  no matches") + "\n"
		}
		return a.styles.Empty.Render("  no folders yet (press A to add one)") + "\n"
	}

	height := layout.CalculateTreeHeight(a.height, a.cfg.Tree)
	itemWidth := layout.CalculateItemWidth(a.width, a.cfg.Tree)
	offset := layout.CalculateViewportOffset(a.cursor, len(a.items), height)

	var b strings.Builder
	end := offset + height
	if end > len(a.items) {
		end = len(a.items)
	}
	for i := offset; i < end; i++ {
		b.WriteString(a.renderItem(a.items[i], i == a.cursor, itemWidth))
		b.WriteString("\n")
	}
	return b.String()
}

func (a App) renderItem(item Item, isCursor bool, maxWidth int) string {
	indent := strings.Repeat(" ", item.Depth*a.cfg.Tree.IndentWidth)

	var line string
	if item.IsFolder() {
		marker := "▾ "
		if item.Folder.Collapsed {
			marker = "▸ "
		}
		pin := ""
		if item.Folder.Pinned {
			pin = " " + a.styles.Pinned.Render("*")
		}
		text, _ := layout.TruncateText(item.Title(), maxWidth-len(indent)-4, a.cfg.Text)
		line = indent + marker + text + pin
	} else {
		text, _ := layout.TruncateText(item.Title(), maxWidth-len(indent)-4, a.cfg.Text)
		line = indent + "· " + text
	}

	if isCursor {
		return a.styles.ItemSelected.Render(line)
	}
	return a.styles.Item.Render(line)
}

func (a App) renderMovePicker() string {
	var b strings.Builder
	b.WriteString(a.styles.Prompt.Render("Move to folder:"))
	b.WriteString("\n")

	if len(a.moveOptions) == 0 {
		b.WriteString(a.styles.Empty.Render("  no folders") + "\n")
		return b.String()
	}

	const maxVisible = 8
	start, end := layout.CalculateVisibleListItems(maxVisible, a.moveCursor, len(a.moveOptions))
	for i := start; i < end; i++ {
		option := a.moveOptions[i]
		if i == a.moveCursor {
			b.WriteString(a.styles.ItemSelected.Render("> " + option.Path))
		} else {
			b.WriteString(a.styles.Item.Render("  " + option.Path))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (a App) renderMessageLine() string {
	if a.message == "" {
		return "\n"
	}
	if a.isError {
		return a.styles.Error.Render(a.message) + "\n"
	}
	return a.styles.Message.Render(a.message) + "\n"
}

func (a App) renderHelpBar() string {
	hints := a.contextualHints()
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts,
			a.styles.HintKey.Render(h.Key)+" "+a.styles.HintDesc.Render(h.Desc))
	}
	return a.styles.Help.Render(strings.Join(parts, "  "))
}

func (a App) contextualHints() []Hint {
	switch a.mode {
	case modeAddFolder, modeRenameFolder:
		return []Hint{{"enter", "confirm"}, {"esc", "cancel"}}
	case modeConfirmDelete:
		return []Hint{{"y", "delete"}, {"n", "cancel"}}
	case modeMove:
		return []Hint{{"j/k", "move"}, {"enter", "confirm"}, {"esc", "cancel"}}
	case modeFilter:
		return []Hint{{"enter", "apply"}, {"esc", "clear"}}
	}

	hints := []Hint{
		{"j/k", "move"},
		{"h/l", "fold"},
		{"enter", "open"},
		{"a/A", "add"},
		{"e", "rename"},
		{"d", "delete"},
		{"*", "pin"},
	}
	if item, ok := a.currentItem(); ok && !item.IsFolder() {
		hints = append(hints, Hint{"m", "move"}, Hint{"x", "detach"}, Hint{"y", "yank"})
	}
	hints = append(hints, Hint{"/", "filter"}, Hint{"q", "quit"})
	return hints
}
