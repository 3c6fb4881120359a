package page

import (
	"errors"
	"strings"

	"golang.org/x/net/html"

	"github.com/Lucifer-Jimmy/Gemini-Boost/internal/model"
)

// Model-selector scraping. The selector trigger carries the current mode
// in its text; the mode options carry their names in title spans. A
// selection cannot be written back into a capture file, so SelectMode
// records an override that shadows the scraped value, the same way
// Navigate records a location.

// CurrentModeLabel returns the model mode the page currently shows
// selected, or "" when the selector is not rendered.
func (a *DOMAdapter) CurrentModeLabel() string {
	a.mu.Lock()
	override := a.modeOverride
	a.mu.Unlock()
	if override != "" {
		return override
	}

	doc := a.root()
	if doc == nil {
		return ""
	}

	trigger := findNode(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		if attr(n, "data-test-id") == "model-selector" {
			return true
		}
		return strings.Contains(attr(n, "class"), "input-area-switch-label")
	})
	if trigger == nil {
		return ""
	}
	return model.NormalizeTitle(textContent(trigger))
}

// AvailableModeLabels returns the mode names the selector menu offers,
// in document order. Empty while the menu has not rendered.
func (a *DOMAdapter) AvailableModeLabels() []string {
	doc := a.root()
	if doc == nil {
		return nil
	}

	var labels []string
	seen := map[string]bool{}
	for _, n := range findNodes(doc, isModeTitleNode) {
		label := model.NormalizeTitle(textContent(n))
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels
}

// SelectMode switches the selected mode. The label must be one the menu
// currently offers.
func (a *DOMAdapter) SelectMode(label string) error {
	available := a.AvailableModeLabels()
	found := false
	for _, l := range available {
		if l == label {
			found = true
			break
		}
	}
	if !found {
		return errors.New("page: mode not offered: " + label)
	}

	a.mu.Lock()
	a.modeOverride = label
	a.mu.Unlock()
	a.notify()
	return nil
}

func isModeTitleNode(n *html.Node) bool {
	if n.Type != html.ElementNode || n.Data != "span" {
		return false
	}
	class := attr(n, "class")
	return strings.Contains(class, "mode-title") || strings.Contains(class, "gds-title-m")
}
