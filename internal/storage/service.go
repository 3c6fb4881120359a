package storage

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/model"
)

const (
	foldersKeyPrefix       = "gs_folders"
	conversationsKeyPrefix = "gs_conversation_map"
)

func userKey(base, user string) string {
	return base + "_" + user
}

// Service exposes the folder list and conversation map as two logical
// records per user namespace. Every mutation is a read-modify-write of the
// whole record; per-key mutexes serialize interleaved writers so two
// near-simultaneous operations cannot clobber each other's updates.
type Service struct {
	kv     KV
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	keyLocks map[string]*sync.Mutex
}

// NewService creates a Service over the given KV backend.
func NewService(kv KV, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		kv:       kv,
		logger:   logger,
		now:      time.Now,
		keyLocks: map[string]*sync.Mutex{},
	}
}

// lockKey returns the mutex serializing writes to a single storage key.
func (s *Service) lockKey(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.keyLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.keyLocks[key] = lock
	}
	return lock
}

// getRaw reads a namespaced key, migrating a legacy un-namespaced value
// if the namespaced key has never been written.
func (s *Service) getRaw(base, user string) ([]byte, error) {
	key := userKey(base, user)
	data, err := s.kv.Get(key)
	if err != nil || data != nil {
		return data, err
	}

	legacy, err := s.kv.Get(base)
	if err != nil || legacy == nil {
		return nil, err
	}

	// One-time migration from the pre-namespacing layout.
	if err := s.kv.Set(key, legacy); err != nil {
		return nil, err
	}
	s.logger.Info("migrated legacy record", zap.String("key", base), zap.String("user", user))
	return legacy, nil
}

// GetFolders returns the folder list for the user namespace. Corrupt or
// absent data falls back to an empty list.
func (s *Service) GetFolders(user string) ([]model.Folder, error) {
	data, err := s.getRaw(foldersKeyPrefix, user)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []model.Folder{}, nil
	}

	folders, err := model.DecodeFolders(data)
	if err != nil {
		s.logger.Debug("discarding invalid folder list", zap.String("user", user), zap.Error(err))
		return []model.Folder{}, nil
	}
	return folders, nil
}

// SetFolders replaces the folder list for the user namespace.
func (s *Service) SetFolders(user string, folders []model.Folder) error {
	data, err := json.Marshal(folders)
	if err != nil {
		return err
	}
	return s.kv.Set(userKey(foldersKeyPrefix, user), data)
}

// GetConversationMap returns the conversation map for the user namespace.
// Corrupt or absent data falls back to an empty map.
func (s *Service) GetConversationMap(user string) (model.ConversationMap, error) {
	data, err := s.getRaw(conversationsKeyPrefix, user)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return model.ConversationMap{}, nil
	}

	conversations, err := model.DecodeConversationMap(data)
	if err != nil {
		s.logger.Debug("discarding invalid conversation map", zap.String("user", user), zap.Error(err))
		return model.ConversationMap{}, nil
	}
	return conversations, nil
}

// SetConversationMap replaces the conversation map for the user namespace.
func (s *Service) SetConversationMap(user string, conversations model.ConversationMap) error {
	data, err := json.Marshal(conversations)
	if err != nil {
		return err
	}
	return s.kv.Set(userKey(conversationsKeyPrefix, user), data)
}

// AddFolder appends a new folder and returns the full updated list.
// A name that trims to empty is a no-op returning the current list.
func (s *Service) AddFolder(user, name string, parentID *string) ([]model.Folder, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return s.GetFolders(user)
	}

	lock := s.lockKey(userKey(foldersKeyPrefix, user))
	lock.Lock()
	defer lock.Unlock()

	folders, err := s.GetFolders(user)
	if err != nil {
		return nil, err
	}

	folders = append(folders, model.NewFolder(model.NewFolderParams{
		Name:     trimmed,
		ParentID: parentID,
	}))

	if err := s.SetFolders(user, folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// RenameFolder replaces the matching folder's name and returns the full
// updated list. A name that trims to empty is a no-op.
func (s *Service) RenameFolder(user, folderID, name string) ([]model.Folder, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return s.GetFolders(user)
	}

	return s.updateFolders(user, func(folders []model.Folder) {
		for i := range folders {
			if folders[i].ID == folderID {
				folders[i].Name = trimmed
			}
		}
	})
}

// ToggleFolder flips the matching folder's collapsed state.
func (s *Service) ToggleFolder(user, folderID string) ([]model.Folder, error) {
	return s.updateFolders(user, func(folders []model.Folder) {
		for i := range folders {
			if folders[i].ID == folderID {
				folders[i].Collapsed = !folders[i].Collapsed
			}
		}
	})
}

// TogglePinFolder flips the matching folder's pinned state.
func (s *Service) TogglePinFolder(user, folderID string) ([]model.Folder, error) {
	return s.updateFolders(user, func(folders []model.Folder) {
		for i := range folders {
			if folders[i].ID == folderID {
				folders[i].Pinned = !folders[i].Pinned
			}
		}
	})
}

// updateFolders runs a read-modify-write cycle over the folder list.
func (s *Service) updateFolders(user string, mutate func([]model.Folder)) ([]model.Folder, error) {
	lock := s.lockKey(userKey(foldersKeyPrefix, user))
	lock.Lock()
	defer lock.Unlock()

	folders, err := s.GetFolders(user)
	if err != nil {
		return nil, err
	}

	mutate(folders)

	if err := s.SetFolders(user, folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// RemoveFolder deletes the folder and detaches every conversation assigned
// to it (FolderID set to nil, entry retained). Child folders are not
// removed or reparented; they keep pointing at the deleted ID.
func (s *Service) RemoveFolder(user, folderID string) ([]model.Folder, model.ConversationMap, error) {
	foldersLock := s.lockKey(userKey(foldersKeyPrefix, user))
	foldersLock.Lock()
	defer foldersLock.Unlock()
	mapLock := s.lockKey(userKey(conversationsKeyPrefix, user))
	mapLock.Lock()
	defer mapLock.Unlock()

	folders, err := s.GetFolders(user)
	if err != nil {
		return nil, nil, err
	}
	conversations, err := s.GetConversationMap(user)
	if err != nil {
		return nil, nil, err
	}

	nextFolders := make([]model.Folder, 0, len(folders))
	for _, f := range folders {
		if f.ID != folderID {
			nextFolders = append(nextFolders, f)
		}
	}

	nextConversations := conversations.Clone()
	for id, c := range nextConversations {
		if c.FolderID != nil && *c.FolderID == folderID {
			c.FolderID = nil
			c.UpdatedAt = s.now()
			nextConversations[id] = c
		}
	}

	if err := s.SetFolders(user, nextFolders); err != nil {
		return nil, nil, err
	}
	if err := s.SetConversationMap(user, nextConversations); err != nil {
		return nil, nil, err
	}
	return nextFolders, nextConversations, nil
}

// MoveConversationParams carries a drop/move request into a folder.
type MoveConversationParams struct {
	ConversationID string
	FolderID       string
	Title          string
	URL            string
}

// MoveConversationToFolder upserts the conversation's assignment. The
// stored title is the first valid candidate of: provided title, previously
// stored title, placeholder. The URL falls back to the previously stored
// URL, then to a path synthesized from the conversation ID. An empty
// conversation ID or folder ID is a no-op returning the current map.
func (s *Service) MoveConversationToFolder(user string, params MoveConversationParams) (model.ConversationMap, error) {
	conversationID := strings.TrimSpace(params.ConversationID)
	if conversationID == "" || params.FolderID == "" {
		return s.GetConversationMap(user)
	}

	lock := s.lockKey(userKey(conversationsKeyPrefix, user))
	lock.Lock()
	defer lock.Unlock()

	conversations, err := s.GetConversationMap(user)
	if err != nil {
		return nil, err
	}

	previous, hasPrevious := conversations[conversationID]

	title, ok := model.SanitizeTitle(params.Title)
	if !ok && hasPrevious {
		title, ok = model.SanitizeTitle(previous.Title)
	}
	if !ok {
		title = model.DefaultConversationTitle
	}

	url := params.URL
	if url == "" && hasPrevious && previous.URL != "" {
		url = previous.URL
	}
	if url == "" {
		url = "/app/" + conversationID
	}

	folderID := params.FolderID
	next := conversations.Clone()
	next[conversationID] = model.Conversation{
		ConversationID: conversationID,
		FolderID:       &folderID,
		Title:          title,
		URL:            url,
		UpdatedAt:      s.now(),
	}

	if err := s.SetConversationMap(user, next); err != nil {
		return nil, err
	}
	return next, nil
}

// RemoveConversationFromFolder detaches the conversation from its folder
// without deleting the entry, so the cached title/url survive. Unknown or
// empty IDs are a no-op returning the current map.
func (s *Service) RemoveConversationFromFolder(user, conversationID string) (model.ConversationMap, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return s.GetConversationMap(user)
	}

	lock := s.lockKey(userKey(conversationsKeyPrefix, user))
	lock.Lock()
	defer lock.Unlock()

	conversations, err := s.GetConversationMap(user)
	if err != nil {
		return nil, err
	}

	target, ok := conversations[conversationID]
	if !ok {
		return conversations, nil
	}

	next := conversations.Clone()
	target.FolderID = nil
	target.UpdatedAt = s.now()
	next[conversationID] = target

	if err := s.SetConversationMap(user, next); err != nil {
		return nil, err
	}
	return next, nil
}
