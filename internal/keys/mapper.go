// Package keys translates raw keyboard events into quiz engine operations.
package keys

import (
	"context"
	"strings"

	"github.com/quizdeck/quizdeck/internal/quiz"
)

// Action is the engine operation a key maps to.
type Action int

const (
	ActionSelect Action = iota
	ActionAdvance
	ActionRetreat
	ActionToggleExplanation
)

// Command is one decoded keyboard command. Position is the 0-based screen
// position for ActionSelect and unused otherwise.
type Command struct {
	Action   Action
	Position int
}

// Map translates a key name (as reported by the browser's KeyboardEvent.key)
// into a Command. Letters are case-insensitive. Digits and letters select by
// screen position: "1"/"a" pick whatever option is displayed first, whichever
// option key sits underneath. Unrecognized keys return ok=false.
func Map(key string) (Command, bool) {
	switch strings.ToLower(key) {
	case "1", "a":
		return Command{Action: ActionSelect, Position: 0}, true
	case "2", "b":
		return Command{Action: ActionSelect, Position: 1}, true
	case "3", "c":
		return Command{Action: ActionSelect, Position: 2}, true
	case "4", "d":
		return Command{Action: ActionSelect, Position: 3}, true
	case "enter":
		return Command{Action: ActionAdvance}, true
	case " ", "space", "spacebar":
		return Command{Action: ActionToggleExplanation}, true
	case "backspace":
		return Command{Action: ActionRetreat}, true
	}
	return Command{}, false
}

// Apply runs the command against an engine.
func (c Command) Apply(ctx context.Context, e *quiz.Engine) {
	switch c.Action {
	case ActionSelect:
		e.SelectPosition(ctx, c.Position)
	case ActionAdvance:
		e.Advance(ctx)
	case ActionRetreat:
		e.Retreat(ctx)
	case ActionToggleExplanation:
		e.ToggleExplanation()
	}
}
