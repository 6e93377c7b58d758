package tactics

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/status"
)

// ErrNoReinforcement is returned when the requested party member is not
// available to reinforce.
var ErrNoReinforcement = errors.New("no such party member can reinforce")

// Reinforcement repositions one party member next to a living ally.
type Reinforcement struct {
	s        *battle.Session
	snapshot *grid.Map
	id       int
	choice   grid.Point
	state    State
	cursor   grid.Point
	preview  string
	step     int
}

// NewReinforcement starts placing the first living member of class.
//
// Postcondition: Returns ErrNoReinforcement if no living member has class.
func NewReinforcement(s *battle.Session, class string, scrollStep int) (*Reinforcement, error) {
	id, ok := s.Party.Members.FindClass(class)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoReinforcement, class)
	}
	return &Reinforcement{
		s:        s,
		snapshot: s.Map.Clone(),
		id:       id,
		choice:   grid.NoPoint,
		cursor:   grid.NoPoint,
		step:     scrollStep,
	}, nil
}

// State returns the current state.
func (r *Reinforcement) State() State { return r.state }

// Choice returns the selected cell, NoPoint before a selection.
func (r *Reinforcement) Choice() grid.Point { return r.choice }

// Handle applies one event.
func (r *Reinforcement) Handle(ev Event) Outcome {
	from := r.state
	out := r.handle(ev)
	r.s.Tracer.Transition("reinforcement", from.String(), r.state.String(), ev.Kind.String())
	return out
}

func (r *Reinforcement) handle(ev Event) Outcome {
	switch ev.Kind {
	case EventScroll, EventHold:
		r.s.Map.Scroll(ev.Direction, scrollStep(ev, r.step))
		return Outcome{}
	case EventHover:
		r.cursor = ev.Point
		r.preview = Describe(r.s, ev.Point)
		return Outcome{}
	}

	switch r.state {
	case Selecting:
		switch ev.Kind {
		case EventSelect:
			if !r.candidate(ev.Point) {
				return Outcome{Message: "Reinforcements must arrive on a free cell beside a living ally."}
			}
			r.choice = ev.Point
			r.s.Map.Put(ev.Point, grid.Player, r.id)
			r.state = Confirming
			return Outcome{Prompt: fmt.Sprintf("Bring %s in here?", r.s.Party.Members[r.id].Name)}
		case EventBack:
			r.state = Cancelled
		}
	case Confirming:
		switch ev.Kind {
		case EventYes:
			r.state = Done
		case EventNo, EventBack:
			restoreKeepingView(r.s.Map, r.snapshot)
			r.choice = grid.NoPoint
			r.state = Selecting
		}
	}
	return Outcome{}
}

// candidate reports whether at is free and touches a living on-map ally
// other than the reinforcement itself.
func (r *Reinforcement) candidate(at grid.Point) bool {
	if !r.s.Map.IsFree(at) {
		return false
	}
	for _, q := range r.s.Map.Neighbours(at) {
		occ := r.s.Map.At(q)
		if occ.Kind != grid.Player || occ.ID == r.id {
			continue
		}
		if c, ok := r.s.Party.Members.Get(occ.ID); ok && c.IsAlive() {
			return true
		}
	}
	return false
}

// Abort restores the map as it was before the machine started.
func (r *Reinforcement) Abort() {
	r.s.Map.Restore(r.snapshot)
	if !r.state.Finished() {
		r.state = Cancelled
	}
}

// Commit places the member on the chosen cell and clears its AWAY countdown.
//
// Postcondition: returns ErrNotDone unless the machine reached Done.
func (r *Reinforcement) Commit() error {
	if r.state != Done {
		return ErrNotDone
	}
	restoreKeepingView(r.s.Map, r.snapshot)
	r.s.Map.Put(r.choice, grid.Player, r.id)
	r.s.Party.Members[r.id].Status.Remove(status.Away)
	return nil
}

func (r *Reinforcement) view() View {
	return View{
		Title:     "Reinforce: " + r.s.Party.Members[r.id].Name,
		Map:       r.s.Map,
		Players:   r.s.Party.Members,
		Opponents: r.s.Opponents.Members,
		Cursor:    r.cursor,
		Preview:   r.preview,
	}
}

func (r *Reinforcement) finished() bool { return r.state.Finished() }
