package tactics

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/placement"
	"github.com/cory-johannsen/skirmish/internal/game/status"
)

// ErrNotDone is returned by Commit before the machine reached Done.
var ErrNotDone = errors.New("tactics: not done")

// Placement lets the player pick the origin cell of every party member that
// will start on the map. Selections toggle; the order of selection assigns
// cells to members in roster order.
type Placement struct {
	s          *battle.Session
	snapshot   *grid.Map
	members    []int
	placements []grid.Point
	state      State
	cursor     grid.Point
	preview    string
	step       int
}

// NewPlacement snapshots the session map and previews the opponents on their
// spawn cells.
//
// Precondition: s.Map, s.Party and s.Opponents must not be nil.
func NewPlacement(s *battle.Session, scrollStep int) *Placement {
	p := &Placement{
		s:        s,
		snapshot: s.Map.Clone(),
		members:  placeableMembers(s),
		cursor:   grid.NoPoint,
		step:     scrollStep,
	}
	if err := placement.PlaceOpponents(s.Map, s.Opponents.Members, nil); err != nil {
		// Setup reports the shortfall as a failure once placement commits.
		s.Tracer.Note("opponent preview incomplete", zap.Error(err))
	}
	return p
}

// placeableMembers returns the members Setup will put on origin cells.
func placeableMembers(s *battle.Session) []int {
	var ids []int
	for i := range s.Party.Members {
		c := &s.Party.Members[i]
		if !c.IsAlive() || s.IsExcluded(c.Class) || c.IsAway() || c.Has(status.Excluded) {
			continue
		}
		ids = append(ids, i)
	}
	return ids
}

// State returns the current state.
func (p *Placement) State() State { return p.state }

// Placed returns the number of members placed so far.
func (p *Placement) Placed() int { return len(p.placements) }

// Required returns the number of members that must be placed.
func (p *Placement) Required() int { return len(p.members) }

// Placements returns a copy of the chosen cells in selection order.
func (p *Placement) Placements() []grid.Point {
	return append([]grid.Point(nil), p.placements...)
}

// Handle applies one event.
func (p *Placement) Handle(ev Event) Outcome {
	from := p.state
	out := p.handle(ev)
	p.s.Tracer.Transition("placement", from.String(), p.state.String(), ev.Kind.String())
	return out
}

func (p *Placement) handle(ev Event) Outcome {
	switch ev.Kind {
	case EventScroll, EventHold:
		p.s.Map.Scroll(ev.Direction, scrollStep(ev, p.step))
		return Outcome{}
	case EventHover:
		p.cursor = ev.Point
		p.preview = Describe(p.s, ev.Point)
		return Outcome{}
	}

	if p.state == Confirming {
		switch ev.Kind {
		case EventYes:
			p.state = Done
		case EventNo, EventBack:
			p.state = Selecting
		}
		return Outcome{}
	}
	if p.state != Selecting {
		return Outcome{}
	}

	switch ev.Kind {
	case EventSelect:
		return p.toggle(ev.Point)
	case EventConfirm:
		if len(p.placements) != len(p.members) {
			return Outcome{Message: fmt.Sprintf("Place all %d party members before confirming (%d placed).",
				len(p.members), len(p.placements))}
		}
		p.state = Confirming
		return Outcome{Prompt: "Begin the battle with this formation?"}
	case EventBack:
		p.placements = nil
		p.redraw()
	}
	return Outcome{}
}

func (p *Placement) toggle(at grid.Point) Outcome {
	for k, q := range p.placements {
		if q == at {
			p.placements = append(p.placements[:k], p.placements[k+1:]...)
			p.redraw()
			return Outcome{}
		}
	}
	if len(p.placements) == len(p.members) {
		return Outcome{Message: "Every party member is placed. Confirm, or select a placed cell to lift it."}
	}
	if !p.s.Map.IsFree(at) {
		return Outcome{Message: "A party member cannot stand there."}
	}
	p.placements = append(p.placements, at)
	p.redraw()
	return Outcome{}
}

// redraw puts member k on placements[k] and lifts everyone else.
func (p *Placement) redraw() {
	for _, id := range p.members {
		p.s.Map.Remove(grid.Player, id)
	}
	for k, at := range p.placements {
		p.s.Map.Put(at, grid.Player, p.members[k])
	}
}

// Abort restores the map as it was before the machine started.
func (p *Placement) Abort() {
	p.s.Map.Restore(p.snapshot)
	if !p.state.Finished() {
		p.state = Cancelled
	}
}

// Commit restores the pre-placement map, keeping the current viewport, and
// replaces its origin pool with the chosen cells.
//
// Postcondition: Map.Origins == Placements(); returns ErrNotDone otherwise.
func (p *Placement) Commit() error {
	if p.state != Done {
		return ErrNotDone
	}
	restoreKeepingView(p.s.Map, p.snapshot)
	p.s.Map.Origins = p.Placements()
	return nil
}

func (p *Placement) view() View {
	marks := make(map[grid.Point]string, len(p.placements))
	for k, at := range p.placements {
		marks[at] = strconv.Itoa(k + 1)
	}
	return View{
		Title:     fmt.Sprintf("Tactics: %d/%d placed", len(p.placements), len(p.members)),
		Map:       p.s.Map,
		Players:   p.s.Party.Members,
		Opponents: p.s.Opponents.Members,
		Marks:     marks,
		Cursor:    p.cursor,
		Preview:   p.preview,
	}
}

func (p *Placement) finished() bool { return p.state.Finished() }
