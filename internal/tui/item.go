package tui

import "github.com/Lucifer-Jimmy/Gemini-Boost/internal/model"

// ItemKind distinguishes between folders and conversations in the tree.
type ItemKind int

const (
	ItemFolder ItemKind = iota
	ItemConversation
)

// Item represents one visible row of the folder tree: a folder or a
// conversation filed under one.
type Item struct {
	Kind         ItemKind
	Folder       *model.Folder
	Conversation *model.Conversation
	Depth        int
}

// ID returns the item's ID regardless of type.
func (i Item) ID() string {
	if i.Kind == ItemFolder {
		return i.Folder.ID
	}
	return i.Conversation.ConversationID
}

// Title returns a display title for the item.
func (i Item) Title() string {
	if i.Kind == ItemFolder {
		return i.Folder.Name
	}
	return model.DisplayTitle(i.Conversation.Title)
}

// IsFolder returns true if this item is a folder.
func (i Item) IsFolder() bool {
	return i.Kind == ItemFolder
}
