// Package gesture decodes raw keyboard and touch input into feed commands.
package gesture

import "github.com/eleven-am/goreel/internal/domain"

// Keymap translates host key identifiers into commands.
type Keymap map[string]domain.Command

// DefaultKeymap mirrors the usual vertical-feed bindings.
func DefaultKeymap() Keymap {
	return Keymap{
		"ArrowDown":  domain.CmdNextItem,
		"j":          domain.CmdNextItem,
		"ArrowUp":    domain.CmdPrevItem,
		"k":          domain.CmdPrevItem,
		" ":          domain.CmdTogglePlay,
		"f":          domain.CmdToggleFullscreen,
		"m":          domain.CmdToggleMute,
		"r":          domain.CmdRestart,
		"ArrowLeft":  domain.CmdSeekBack,
		"ArrowRight": domain.CmdSeekForward,
	}
}

// Decode maps a key press to a command. Keys typed while focus is inside a
// text input or other editable region are never commands.
func (k Keymap) Decode(key string, editable bool) domain.Command {
	if editable {
		return domain.CmdNone
	}
	cmd, ok := k[key]
	if !ok {
		return domain.CmdNone
	}
	return cmd
}
