package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Folder represents a user-created grouping node for conversations.
// Folders may nest under another folder via ParentID.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parentId"` // nil = root level
	CreatedAt time.Time `json:"createdAt"`
	Collapsed bool      `json:"isCollapsed"`
	Pinned    bool      `json:"isPinned"`
}

// NewFolderParams holds parameters for creating a new Folder.
type NewFolderParams struct {
	Name     string
	ParentID *string
}

// NewFolder creates a Folder with a generated UUID and CreatedAt set to now.
func NewFolder(params NewFolderParams) Folder {
	return Folder{
		ID:        uuid.New().String(),
		Name:      params.Name,
		ParentID:  params.ParentID,
		CreatedAt: time.Now(),
	}
}

// IsRoot returns true if the folder is at the root level.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// SortFolders orders siblings in place: pinned folders first, then by
// ascending CreatedAt within each pin group.
func SortFolders(folders []Folder) {
	sort.SliceStable(folders, func(i, j int) bool {
		if folders[i].Pinned != folders[j].Pinned {
			return folders[i].Pinned
		}
		return folders[i].CreatedAt.Before(folders[j].CreatedAt)
	})
}

// FoldersInFolder returns folders with the given parent ID, sorted
// pinned-first. Pass nil for root level folders.
func FoldersInFolder(folders []Folder, parentID *string) []Folder {
	var result []Folder
	for _, f := range folders {
		if ptrEqual(f.ParentID, parentID) {
			result = append(result, f)
		}
	}
	SortFolders(result)
	return result
}

// FolderByID finds a folder by ID, returns nil if not found.
func FolderByID(folders []Folder, id string) *Folder {
	for i := range folders {
		if folders[i].ID == id {
			return &folders[i]
		}
	}
	return nil
}

// ptrEqual compares two string pointers for equality.
func ptrEqual(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
