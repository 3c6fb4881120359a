package page

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/model"
)

// extractConversationTitle pulls a display title out of a conversation row
// using a layered heuristic, most precise source first:
//
//  1. the row's own title / aria-label attributes
//  2. known title-bearing nodes (data-test-id / conversation-title class)
//  3. dir="auto" containers (the host's user-text pattern)
//  4. conversation link attributes and text
//  5. any link carrying a title or aria-label
//  6. the whole row's cleaned text
//
// Every candidate passes title sanitization; the first survivor wins.
// Returns "" when nothing in the row looks like a real title.
func extractConversationTitle(root *html.Node) string {
	if title, ok := model.SanitizeTitle(attr(root, "title")); ok {
		return title
	}
	if title, ok := model.SanitizeTitle(attr(root, "aria-label")); ok {
		return title
	}

	for _, n := range findNodes(root, isTitleBearing) {
		if title, ok := cleanedText(n); ok {
			return title
		}
	}

	for _, n := range findNodes(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "dir") == "auto"
	}) {
		if title, ok := cleanedText(n); ok {
			return title
		}
	}

	for _, anchor := range findNodes(root, isConversationLink) {
		if title, ok := model.SanitizeTitle(attr(anchor, "title")); ok {
			return title
		}
		if title, ok := model.SanitizeTitle(attr(anchor, "aria-label")); ok {
			return title
		}
		if title, ok := cleanedText(anchor); ok {
			return title
		}
	}

	for _, anchor := range findNodes(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "a" &&
			(attr(n, "title") != "" || attr(n, "aria-label") != "")
	}) {
		candidate := attr(anchor, "title")
		if candidate == "" {
			candidate = attr(anchor, "aria-label")
		}
		if title, ok := model.SanitizeTitle(candidate); ok {
			return title
		}
	}

	if title, ok := cleanedText(root); ok {
		return title
	}
	return ""
}

func isTitleBearing(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if attr(n, "data-test-id") == "conversation-title" {
		return true
	}
	return strings.Contains(attr(n, "class"), "conversation-title")
}

func isConversationLink(n *html.Node) bool {
	if n.Type != html.ElementNode || n.Data != "a" {
		return false
	}
	href := attr(n, "href")
	return strings.Contains(href, "/app/") ||
		strings.Contains(href, "/gem/") ||
		strings.Contains(href, "/chat/")
}

// cleanedText collects the node's text while skipping UI noise (buttons,
// icons, hidden nodes, the title-cover overlay), then sanitizes it.
func cleanedText(n *html.Node) (string, bool) {
	var b strings.Builder
	collectText(n, &b)
	return model.SanitizeTitle(b.String())
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode && isNoiseNode(n) {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteString(" ")
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, b)
	}
}

func isNoiseNode(n *html.Node) bool {
	switch n.Data {
	case "button", "svg", "script", "style":
		return true
	}
	if attr(n, "aria-hidden") == "true" || attr(n, "role") == "img" {
		return true
	}
	return strings.Contains(attr(n, "class"), "conversation-title-cover")
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent returns the raw concatenated text of the node.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}

// findNode returns the first node (depth-first) matching the predicate.
func findNode(root *html.Node, match func(*html.Node) bool) *html.Node {
	if match(root) {
		return root
	}
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if found := findNode(child, match); found != nil {
			return found
		}
	}
	return nil
}

// findNodes returns all nodes (depth-first) matching the predicate.
func findNodes(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var result []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if match(n) {
			result = append(result, n)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return result
}
