package modelstar

import "strings"

// ModeSource is the string-level view a page adapter has of the model
// selector.
type ModeSource interface {
	CurrentModeLabel() string
	AvailableModeLabels() []string
	SelectMode(label string) error
	Location() string
}

// pageSurface adapts a ModeSource to the typed Surface, dropping labels
// that are not known modes.
type pageSurface struct {
	src ModeSource
}

// NewPageSurface wraps a page adapter's model-selector view as a Surface.
func NewPageSurface(src ModeSource) Surface {
	return &pageSurface{src: src}
}

func (p *pageSurface) CurrentMode() (Mode, bool) {
	label := p.src.CurrentModeLabel()
	if mode, ok := ParseMode(label); ok {
		return mode, true
	}
	// The trigger text decorates the mode name ("2.5 Pro"), so fall back
	// to a substring scan.
	lower := strings.ToLower(label)
	for _, mode := range Modes() {
		if strings.Contains(lower, strings.ToLower(string(mode))) {
			return mode, true
		}
	}
	return "", false
}

func (p *pageSurface) AvailableModes() []Mode {
	var modes []Mode
	for _, label := range p.src.AvailableModeLabels() {
		if mode, ok := ParseMode(label); ok {
			modes = append(modes, mode)
		}
	}
	return modes
}

func (p *pageSurface) Select(mode Mode) error {
	return p.src.SelectMode(string(mode))
}

func (p *pageSurface) Location() string {
	return p.src.Location()
}
