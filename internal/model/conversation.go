package model

import (
	"sort"
	"time"
)

// Conversation links an externally-identified chat to a folder, plus the
// best-known title and URL scraped from the host page. A nil FolderID means
// the conversation was removed from its folder but is still tracked, so the
// cached title/url survive a later re-assignment.
type Conversation struct {
	ConversationID string    `json:"conversationId"`
	FolderID       *string   `json:"folderId"`
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ConversationMap holds every conversation ever filed, keyed by its
// host-page-defined conversation ID.
type ConversationMap map[string]Conversation

// InFolder returns the conversations assigned to the given folder,
// most recently updated first.
func (m ConversationMap) InFolder(folderID string) []Conversation {
	var result []Conversation
	for _, c := range m {
		if c.FolderID != nil && *c.FolderID == folderID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result
}

// Clone returns a shallow copy of the map. Mutating operations work on a
// copy so callers holding the previous map never observe partial writes.
func (m ConversationMap) Clone() ConversationMap {
	next := make(ConversationMap, len(m))
	for id, c := range m {
		next[id] = c
	}
	return next
}
