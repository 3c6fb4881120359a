package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/gemini-conversations-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("gemini-conversations-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML exports the folder tree and its filed conversations to
// Netscape bookmark HTML format. Detached conversations (no folder) are
// left out. Relative conversation URLs are made absolute against baseURL.
func ExportHTML(folders []model.Folder, conversations model.ConversationMap, baseURL string) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	writeItems(&b, folders, conversations, strings.TrimRight(baseURL, "/"), nil, 1)

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

// writeItems recursively writes folders and their conversations for a
// given parent.
func writeItems(b *strings.Builder, folders []model.Folder, conversations model.ConversationMap, baseURL string, parentID *string, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, folder := range model.FoldersInFolder(folders, parentID) {
		fmt.Fprintf(b, "%s<DT><H3>%s</H3>\n", prefix, html.EscapeString(folder.Name))
		fmt.Fprintf(b, "%s<DL><p>\n", prefix)

		folderID := folder.ID
		writeItems(b, folders, conversations, baseURL, &folderID, indent+1)

		for _, conversation := range conversations.InFolder(folderID) {
			fmt.Fprintf(b,
				"%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
				prefix+"    ",
				html.EscapeString(absoluteURL(baseURL, conversation.URL)),
				conversation.UpdatedAt.Unix(),
				html.EscapeString(model.DisplayTitle(conversation.Title)),
			)
		}

		fmt.Fprintf(b, "%s</DL><p>\n", prefix)
	}
}

func absoluteURL(baseURL, raw string) string {
	if strings.HasPrefix(raw, "/") && baseURL != "" {
		return baseURL + raw
	}
	return raw
}
