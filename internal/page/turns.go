package page

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/model"
)

// Turn is one user query heading in the rendered conversation.
type Turn struct {
	// Text is the query's first-line text.
	Text string
	// Anchor identifies the heading for scroll targets: the element id
	// when the page assigned one, a positional fallback otherwise.
	Anchor string
}

// UserTurns returns the conversation's user query headings in document
// order. Empty when no conversation is rendered.
func (a *DOMAdapter) UserTurns() []Turn {
	doc := a.root()
	if doc == nil {
		return nil
	}

	var turns []Turn
	for i, heading := range findNodes(doc, isQueryHeading) {
		text := queryText(heading)
		if text == "" {
			continue
		}

		anchor := attr(heading, "id")
		if anchor == "" {
			anchor = "turn-" + strconv.Itoa(i)
		}
		turns = append(turns, Turn{Text: text, Anchor: anchor})
	}
	return turns
}

func isQueryHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	return attr(n, "role") == "heading" &&
		attr(n, "aria-level") == "2" &&
		strings.Contains(attr(n, "class"), "query-text")
}

// queryText extracts the heading's first text line, falling back to the
// whole heading text.
func queryText(heading *html.Node) string {
	line := findNode(heading, func(n *html.Node) bool {
		return n.Type == html.ElementNode && strings.Contains(attr(n, "class"), "query-text-line")
	})
	if line != nil {
		return model.NormalizeTitle(textContent(line))
	}
	return model.NormalizeTitle(textContent(heading))
}
