package modelstar

import "strings"

// Mode is one of the host application's selectable model modes.
type Mode string

const (
	ModeFast     Mode = "Fast"
	ModeThinking Mode = "Thinking"
	ModePro      Mode = "Pro"
)

// Modes returns all known modes in display order.
func Modes() []Mode {
	return []Mode{ModeFast, ModeThinking, ModePro}
}

// ParseMode validates a stored or user-supplied mode name. Matching is
// case-insensitive; the returned Mode is always the canonical form.
func ParseMode(raw string) (Mode, bool) {
	for _, m := range Modes() {
		if strings.EqualFold(raw, string(m)) {
			return m, true
		}
	}
	return "", false
}
