package tactics

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// Mode says what a Target machine accepts.
type Mode struct {
	// Cells accepts an empty, passable, non-exit cell when true; otherwise a
	// living combatant of Side is required.
	Cells bool
	Side  combat.Side
	// Ranged selects the ranged target-class rule instead of the melee one.
	Ranged bool
}

// ModeCell accepts map cells.
var ModeCell = Mode{Cells: true}

// ModeCombatant accepts living combatants of side.
func ModeCombatant(side combat.Side, ranged bool) Mode {
	return Mode{Side: side, Ranged: ranged}
}

// Target acquires a cell or combatant for an action. It never changes the
// map beyond the viewport, and the driver restores even that on exit.
type Target struct {
	s        *battle.Session
	snapshot *grid.Map
	mode     Mode
	selected grid.Point
	state    State
	cursor   grid.Point
	preview  string
	step     int
}

// NewTarget starts browsing for a target matching mode.
func NewTarget(s *battle.Session, mode Mode, scrollStep int) *Target {
	return &Target{
		s:        s,
		snapshot: s.Map.Clone(),
		mode:     mode,
		selected: grid.NoPoint,
		cursor:   grid.NoPoint,
		step:     scrollStep,
	}
}

// State returns the current state.
func (t *Target) State() State { return t.state }

// Result returns the confirmed point, or NoPoint unless the machine is Done.
func (t *Target) Result() grid.Point {
	if t.state != Done {
		return grid.NoPoint
	}
	return t.selected
}

// Matches reports whether p is an acceptable target.
func (t *Target) Matches(p grid.Point) bool {
	m := t.s.Map
	if t.mode.Cells {
		return m.IsFree(p)
	}
	occ := m.At(p)
	if occ.Kind != t.mode.Side.Kind() {
		return false
	}
	c, ok := t.s.Roster(t.mode.Side).Get(occ.ID)
	if !ok || !c.IsAlive() {
		return false
	}
	if t.mode.Ranged {
		return c.Target.AllowsRanged()
	}
	return c.Target.AllowsMelee()
}

// Handle applies one event.
func (t *Target) Handle(ev Event) Outcome {
	from := t.state
	out := t.handle(ev)
	t.s.Tracer.Transition("target", from.String(), t.state.String(), ev.Kind.String())
	return out
}

func (t *Target) handle(ev Event) Outcome {
	switch ev.Kind {
	case EventScroll, EventHold:
		t.s.Map.Scroll(ev.Direction, scrollStep(ev, t.step))
		return Outcome{}
	case EventHover:
		t.cursor = ev.Point
		t.preview = Describe(t.s, ev.Point)
		return Outcome{}
	}

	switch t.state {
	case Selecting:
		switch ev.Kind {
		case EventSelect:
			if !t.Matches(ev.Point) {
				return Outcome{Message: "That is not a valid target."}
			}
			t.selected = ev.Point
			t.state = Confirming
			label := Describe(t.s, ev.Point)
			if label == "" {
				label = ev.Point.String()
			}
			return Outcome{Prompt: fmt.Sprintf("Target %s?", label)}
		case EventBack:
			t.state = Cancelled
		}
	case Confirming:
		switch ev.Kind {
		case EventYes:
			t.state = Done
		case EventNo, EventBack:
			t.selected = grid.NoPoint
			t.state = Selecting
		}
	}
	return Outcome{}
}

// Abort restores the map as it was before the machine started.
func (t *Target) Abort() {
	t.s.Map.Restore(t.snapshot)
	if !t.state.Finished() {
		t.state = Cancelled
	}
}

func (t *Target) view() View {
	title := "Choose a cell"
	if !t.mode.Cells {
		title = "Choose a target"
	}
	var marks map[grid.Point]string
	if !t.selected.IsNone() {
		marks = map[grid.Point]string{t.selected: "*"}
	}
	return View{
		Title:     title,
		Map:       t.s.Map,
		Players:   t.s.Party.Members,
		Opponents: t.s.Opponents.Members,
		Marks:     marks,
		Cursor:    t.cursor,
		Preview:   t.preview,
	}
}

func (t *Target) finished() bool { return t.state.Finished() }
