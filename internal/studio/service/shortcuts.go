package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/GoSim-25-26J-441/diagram-studio/internal/studio/domain"
)

// Action is what a keyboard shortcut resolves to.
type Action string

const (
	ActionNone Action = ""
	ActionUndo Action = "undo"
	ActionRedo Action = "redo"
)

var shortcutTable = map[string]Action{
	"primary+z":       ActionUndo,
	"primary+y":       ActionRedo,
	"primary+shift+z": ActionRedo,
}

var modifierAliases = map[string]string{
	"ctrl":    "primary",
	"control": "primary",
	"cmd":     "primary",
	"command": "primary",
	"meta":    "primary",
	"mod":     "primary",
	"shift":   "shift",
	"alt":     "alt",
	"option":  "alt",
}

// ResolveShortcut maps a chord such as "Ctrl+Shift+Z" or "cmd+z" to an action.
func ResolveShortcut(chord string) Action {
	var mods []string
	key := ""
	for _, part := range strings.Split(strings.ToLower(chord), "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if m, ok := modifierAliases[part]; ok {
			mods = append(mods, m)
			continue
		}
		if key != "" {
			return ActionNone
		}
		key = part
	}
	if key == "" {
		return ActionNone
	}
	sort.Slice(mods, func(i, j int) bool {
		// primary sorts before shift/alt
		return modOrder(mods[i]) < modOrder(mods[j])
	})
	return shortcutTable[strings.Join(append(mods, key), "+")]
}

func modOrder(m string) int {
	switch m {
	case "primary":
		return 0
	case "shift":
		return 1
	default:
		return 2
	}
}

// HandleShortcut runs the action bound to chord. Nothing to undo or redo is
// not an error. handled is false for chords with no binding.
func (s *Session) HandleShortcut(ctx context.Context, chord string) (handled bool, err error) {
	var run func(context.Context) error
	switch ResolveShortcut(chord) {
	case ActionUndo:
		run = s.Undo
	case ActionRedo:
		run = s.Redo
	default:
		return false, nil
	}

	if err := run(ctx); err != nil && !errors.Is(err, domain.ErrNoOp) {
		return true, err
	}
	return true, nil
}
