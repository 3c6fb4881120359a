package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/model"
	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/page"
)

// resolveBestSnapshot picks the best available title/url for a
// conversation, evaluated in strict order: a rendered native row wins,
// then the current page's document title when the loaded page is that
// conversation, then whatever partial URL information either source had.
// Returning false means the page offered nothing at all; the caller falls
// back to stored state or the placeholder.
func (e *Engine) resolveBestSnapshot(conversationID string) (page.Snapshot, bool) {
	native, nativeOK := e.page.ResolveSnapshot(conversationID)
	if nativeOK {
		if title, ok := model.SanitizeTitle(native.Title); ok {
			return page.Snapshot{Title: title, URL: native.URL}, true
		}
	}

	location := e.page.Location()
	if location != "" && e.page.ExtractConversationID(location) == conversationID {
		docTitle := page.CleanDocumentTitle(e.page.DocumentTitle())
		url := native.URL
		if url == "" {
			url = location
		}
		if title, ok := model.SanitizeTitle(docTitle); ok {
			return page.Snapshot{Title: title, URL: url}, true
		}
		return page.Snapshot{Title: native.Title, URL: url}, true
	}

	if nativeOK && (native.URL != "" || native.Title != "") {
		return native, true
	}
	return page.Snapshot{}, false
}

// DropConversation files a conversation into a folder from a drag/drop or
// move request. The provided title is only a hint: the page is consulted
// for a better candidate, and when neither yields a valid title the move
// is persisted with what we have and a watch-and-sync loop picks the title
// up once the host page renders it. Returns the watch when one was
// started.
func (e *Engine) DropConversation(conversationID, folderID, title, url string) (*TitleWatch, error) {
	snapshot, _ := e.resolveBestSnapshot(conversationID)

	effectiveTitle, valid := model.SanitizeTitle(title)
	if !valid {
		effectiveTitle, valid = model.SanitizeTitle(snapshot.Title)
	}

	effectiveURL := snapshot.URL
	if effectiveURL == "" {
		effectiveURL = url
	}

	if err := e.MoveConversationToFolder(conversationID, folderID, effectiveTitle, effectiveURL); err != nil {
		return nil, err
	}

	if valid {
		return nil, nil
	}
	return e.WatchTitleAndSync(folderID, conversationID, effectiveURL), nil
}

// NavigateToConversation opens a filed conversation. The stored title is
// re-checked against the native row right before navigating and again
// shortly after, because some titles only render once the conversation is
// the active one; a differing title triggers a silent move-update.
func (e *Engine) NavigateToConversation(folderID, conversationID string) error {
	conversation, ok := e.Conversation(conversationID)
	if !ok {
		e.logger.Debug("conversation not found", zap.String("conversation", conversationID))
		return nil
	}

	e.resyncTitle(folderID, conversation)

	if err := e.page.Navigate(conversation.URL); err != nil {
		return err
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		select {
		case <-e.done:
			return
		case <-time.After(e.resyncDelay):
		}
		if current, ok := e.Conversation(conversationID); ok {
			e.resyncTitle(folderID, current)
		}
	}()

	return nil
}

// resyncTitle updates the stored title when the native row disagrees.
func (e *Engine) resyncTitle(folderID string, conversation model.Conversation) {
	snapshot, ok := e.page.ResolveSnapshot(conversation.ConversationID)
	if !ok {
		return
	}
	nativeTitle, ok := model.SanitizeTitle(snapshot.Title)
	if !ok {
		return
	}

	storedTitle, _ := model.SanitizeTitle(conversation.Title)
	if nativeTitle == storedTitle {
		return
	}

	if err := e.MoveConversationToFolder(conversation.ConversationID, folderID, nativeTitle, conversation.URL); err != nil {
		e.logger.Debug("title resync failed",
			zap.String("conversation", conversation.ConversationID),
			zap.Error(err))
	}
}
