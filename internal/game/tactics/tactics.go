// Package tactics runs the interactive pre-battle placement, reinforcement and
// target-selection loops. Rendering and input are injected collaborators.
package tactics

import (
	"context"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// EventKind classifies an input event.
type EventKind int

const (
	EventSelect EventKind = iota
	EventHover
	EventScroll
	// EventHold is a synthetic scroll repeat produced while a direction is held.
	EventHold
	EventConfirm
	EventBack
	EventYes
	EventNo
	// EventAction picks an entry of the action menu.
	EventAction
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventSelect:
		return "select"
	case EventHover:
		return "hover"
	case EventScroll:
		return "scroll"
	case EventHold:
		return "hold"
	case EventConfirm:
		return "confirm"
	case EventBack:
		return "back"
	case EventYes:
		return "yes"
	case EventNo:
		return "no"
	case EventAction:
		return "action"
	default:
		return "unknown"
	}
}

// Event is one unit of user input.
type Event struct {
	Kind      EventKind
	Point     grid.Point
	Direction grid.Direction
	Action    combat.ActionType
}

// Input blocks until the next event is available.
type Input interface {
	// Next returns the next event. controls is the action menu on screen,
	// nil outside action selection.
	Next(ctx context.Context, controls []combat.Control) (Event, error)
}

// Dialog shows modal text to the user.
type Dialog interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
	Message(ctx context.Context, text string) error
}

// Scene renders the battlefield.
type Scene interface {
	Draw(v View) error
}

// Frontend bundles the three collaborators a driver needs.
type Frontend struct {
	Input  Input
	Dialog Dialog
	Scene  Scene
}

// View is everything a Scene needs to draw one frame.
type View struct {
	Title     string
	Map       *grid.Map
	Players   combat.Roster
	Opponents combat.Roster
	// Marks labels cells chosen so far, e.g. placement order.
	Marks    map[grid.Point]string
	Cursor   grid.Point
	Preview  string
	Controls []combat.Control
}

// Outcome is the user-facing result of one transition. Message is shown and
// acknowledged; Prompt asks a yes/no question answered by EventYes/EventNo.
type Outcome struct {
	Message string
	Prompt  string
}

// State is the phase of a tactics state machine.
type State int

const (
	Selecting State = iota
	Confirming
	Done
	Cancelled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Selecting:
		return "selecting"
	case Confirming:
		return "confirming"
	case Done:
		return "done"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Finished reports whether s is terminal.
func (s State) Finished() bool { return s == Done || s == Cancelled }

// HoldRepeat is the number of scroll steps a single EventHold covers.
const HoldRepeat = 3

// scrollStep returns the viewport step for a scroll or hold event.
func scrollStep(ev Event, step int) int {
	if step < 1 {
		step = 1
	}
	if ev.Kind == EventHold {
		return step * HoldRepeat
	}
	return step
}

// restoreKeepingView rolls m back to snapshot but leaves the viewport where
// the player scrolled it.
func restoreKeepingView(m, snapshot *grid.Map) {
	view := m.View
	m.Restore(snapshot)
	m.View = view
}
