package search

import (
	"sort"

	"github.com/sahilm/fuzzy"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/model"
)

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Conversation   *model.Conversation
	MatchedIndexes []int
	Score          int
}

// conversationTitles implements fuzzy.Source for a conversation slice.
type conversationTitles []*model.Conversation

func (ct conversationTitles) String(i int) string {
	return ct[i].Title
}

func (ct conversationTitles) Len() int {
	return len(ct)
}

// FuzzySearchConversations searches filed conversations by title using
// fuzzy matching. Detached conversations (no folder) are skipped.
// Returns results sorted by match score (best first).
func FuzzySearchConversations(conversations model.ConversationMap, query string) []SearchResult {
	if query == "" {
		return nil
	}

	// Flatten the map into a deterministic order before matching so
	// equal-score results don't shuffle between runs.
	filed := make([]model.Conversation, 0, len(conversations))
	for _, c := range conversations {
		if c.FolderID == nil {
			continue
		}
		filed = append(filed, c)
	}
	sort.Slice(filed, func(i, j int) bool {
		if !filed[i].UpdatedAt.Equal(filed[j].UpdatedAt) {
			return filed[i].UpdatedAt.After(filed[j].UpdatedAt)
		}
		return filed[i].ConversationID < filed[j].ConversationID
	})

	titles := make(conversationTitles, len(filed))
	for i := range filed {
		titles[i] = &filed[i]
	}

	matches := fuzzy.FindFrom(query, titles)

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Conversation:   titles[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
