package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Persisted records are validated on every read. A record that fails
// validation invalidates its whole collection; callers fall back to an
// empty collection rather than surfacing the error.

type folderRecord struct {
	ID        *string    `json:"id"`
	Name      *string    `json:"name"`
	ParentID  *string    `json:"parentId"`
	CreatedAt *time.Time `json:"createdAt"`
	Collapsed *bool      `json:"isCollapsed"`
	Pinned    *bool      `json:"isPinned"`
}

type conversationRecord struct {
	ConversationID *string    `json:"conversationId"`
	FolderID       *string    `json:"folderId"`
	Title          *string    `json:"title"`
	URL            *string    `json:"url"`
	UpdatedAt      *time.Time `json:"updatedAt"`
}

// DecodeFolders parses a persisted folder list. Required fields are id,
// name, and createdAt; parentId defaults to nil and the two flags default
// to false. Any invalid element fails the whole list.
func DecodeFolders(data []byte) ([]Folder, error) {
	var records []folderRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	folders := make([]Folder, 0, len(records))
	for i, r := range records {
		if r.ID == nil || *r.ID == "" {
			return nil, fmt.Errorf("folder %d: missing id", i)
		}
		if r.Name == nil || *r.Name == "" {
			return nil, fmt.Errorf("folder %d: missing name", i)
		}
		if r.CreatedAt == nil {
			return nil, fmt.Errorf("folder %d: missing createdAt", i)
		}

		f := Folder{
			ID:        *r.ID,
			Name:      *r.Name,
			ParentID:  r.ParentID,
			CreatedAt: *r.CreatedAt,
		}
		if r.Collapsed != nil {
			f.Collapsed = *r.Collapsed
		}
		if r.Pinned != nil {
			f.Pinned = *r.Pinned
		}
		folders = append(folders, f)
	}

	return folders, nil
}

// DecodeConversationMap parses a persisted conversation map. Every entry
// needs conversationId, title, url, and updatedAt; folderId may be null.
// Any invalid entry fails the whole map.
func DecodeConversationMap(data []byte) (ConversationMap, error) {
	var records map[string]conversationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	conversations := make(ConversationMap, len(records))
	for key, r := range records {
		if r.ConversationID == nil || *r.ConversationID == "" {
			return nil, fmt.Errorf("conversation %q: missing conversationId", key)
		}
		if r.Title == nil {
			return nil, fmt.Errorf("conversation %q: missing title", key)
		}
		if r.URL == nil {
			return nil, fmt.Errorf("conversation %q: missing url", key)
		}
		if r.UpdatedAt == nil {
			return nil, fmt.Errorf("conversation %q: missing updatedAt", key)
		}

		conversations[key] = Conversation{
			ConversationID: *r.ConversationID,
			FolderID:       r.FolderID,
			Title:          *r.Title,
			URL:            *r.URL,
			UpdatedAt:      *r.UpdatedAt,
		}
	}

	return conversations, nil
}
