package exporter

import (
	"strings"
	"testing"
	"time"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/model"
)

const baseURL = "https://gemini.google.com"

func filed(id, title, url, folderID string, updatedAt time.Time) model.Conversation {
	return model.Conversation{
		ConversationID: id,
		FolderID:       &folderID,
		Title:          title,
		URL:            url,
		UpdatedAt:      updatedAt,
	}
}

func TestExportHTML_Empty(t *testing.T) {
	html := ExportHTML(nil, model.ConversationMap{}, baseURL)

	// Should have basic structure even when empty
	if !strings.Contains(html, "<!DOCTYPE NETSCAPE-Bookmark-file-1>") {
		t.Error("expected DOCTYPE declaration")
	}
	if !strings.Contains(html, "<TITLE>Bookmarks</TITLE>") {
		t.Error("expected TITLE element")
	}
	if !strings.Contains(html, "<H1>Bookmarks</H1>") {
		t.Error("expected H1 element")
	}
}

func TestExportHTML_ConversationInFolder(t *testing.T) {
	folders := []model.Folder{{ID: "f1", Name: "Cooking"}}
	conversations := model.ConversationMap{
		"c1": filed("c1", "Turkey brining", "/app/c1", "f1", time.Unix(1700000000, 0)),
	}

	html := ExportHTML(folders, conversations, baseURL)

	if !strings.Contains(html, "Cooking</H3>") {
		t.Error("expected folder name")
	}
	if !strings.Contains(html, `<A HREF="https://gemini.google.com/app/c1"`) {
		t.Error("expected absolute conversation URL")
	}
	if !strings.Contains(html, "Turkey brining</A>") {
		t.Error("expected conversation title")
	}
	if !strings.Contains(html, `ADD_DATE="1700000000"`) {
		t.Error("expected ADD_DATE timestamp")
	}

	// Folder should come before its conversation
	folderIdx := strings.Index(html, "Cooking</H3>")
	convIdx := strings.Index(html, "Turkey brining</A>")
	if folderIdx > convIdx {
		t.Error("expected folder to come before its conversation")
	}
}

func TestExportHTML_NestedFolders(t *testing.T) {
	parentID := "f1"
	folders := []model.Folder{
		{ID: parentID, Name: "Work"},
		{ID: "f2", Name: "Interviews", ParentID: &parentID},
	}
	conversations := model.ConversationMap{
		"c1": filed("c1", "System design prep", "/app/c1", "f2", time.Unix(1700000000, 0)),
	}

	html := ExportHTML(folders, conversations, baseURL)

	workIdx := strings.Index(html, "Work</H3>")
	interviewsIdx := strings.Index(html, "Interviews</H3>")
	convIdx := strings.Index(html, "System design prep</A>")

	if workIdx == -1 || interviewsIdx == -1 || convIdx == -1 {
		t.Fatal("missing elements in output")
	}
	if workIdx >= interviewsIdx || interviewsIdx >= convIdx {
		t.Error("expected proper nesting order: Work > Interviews > conversation")
	}
}

func TestExportHTML_SkipsDetachedConversations(t *testing.T) {
	folders := []model.Folder{{ID: "f1", Name: "Cooking"}}
	detached := filed("c2", "Removed chat", "/app/c2", "f1", time.Unix(1700000000, 0))
	detached.FolderID = nil
	conversations := model.ConversationMap{
		"c1": filed("c1", "Turkey brining", "/app/c1", "f1", time.Unix(1700000000, 0)),
		"c2": detached,
	}

	html := ExportHTML(folders, conversations, baseURL)

	if strings.Contains(html, "Removed chat") {
		t.Error("detached conversation should not be exported")
	}
}

func TestExportHTML_PlaceholderForEmptyTitle(t *testing.T) {
	folders := []model.Folder{{ID: "f1", Name: "Cooking"}}
	conversations := model.ConversationMap{
		"c1": filed("c1", "", "/app/c1", "f1", time.Unix(1700000000, 0)),
	}

	html := ExportHTML(folders, conversations, baseURL)

	if !strings.Contains(html, "Untitled Chat</A>") {
		t.Error("expected placeholder title")
	}
}

func TestExportHTML_EscapesSpecialCharacters(t *testing.T) {
	folders := []model.Folder{{ID: "f1", Name: "A & B <tests>"}}
	conversations := model.ConversationMap{
		"c1": filed("c1", "Test <script>alert('xss')</script>", "https://example.com?foo=bar&baz=qux", "f1", time.Now()),
	}

	html := ExportHTML(folders, conversations, baseURL)

	if strings.Contains(html, "<script>") {
		t.Error("script tag should be escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("expected escaped script tag")
	}
	if !strings.Contains(html, "foo=bar&amp;baz") {
		t.Error("expected escaped ampersand in URL")
	}
	if !strings.Contains(html, "A &amp; B &lt;tests&gt;</H3>") {
		t.Error("expected escaped folder name")
	}
}

func TestExportHTML_AbsoluteURLLeftAlone(t *testing.T) {
	folders := []model.Folder{{ID: "f1", Name: "Cooking"}}
	conversations := model.ConversationMap{
		"c1": filed("c1", "Turkey brining", "https://gemini.google.com/u/1/app/c1", "f1", time.Now()),
	}

	html := ExportHTML(folders, conversations, baseURL)

	if !strings.Contains(html, `HREF="https://gemini.google.com/u/1/app/c1"`) {
		t.Error("expected absolute URL unchanged")
	}
}
