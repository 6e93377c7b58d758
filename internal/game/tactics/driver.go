package tactics

import (
	"context"
	"errors"

	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// machine is the common surface the drivers loop over.
type machine interface {
	Handle(ev Event) Outcome
	Abort()
	view() View
	finished() bool
}

// loop draws, waits for an event, applies it and shows the outcome until the
// machine finishes or a collaborator fails.
func loop(ctx context.Context, fe Frontend, m machine) error {
	for !m.finished() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fe.Scene.Draw(m.view()); err != nil {
			return err
		}
		ev, err := fe.Input.Next(ctx, nil)
		if err != nil {
			return err
		}
		if err := settle(ctx, fe, m, m.Handle(ev)); err != nil {
			return err
		}
	}
	return nil
}

// settle shows out and feeds prompt answers back into m until no prompt remains.
func settle(ctx context.Context, fe Frontend, m machine, out Outcome) error {
	for {
		if out.Message != "" {
			if err := fe.Dialog.Message(ctx, out.Message); err != nil {
				return err
			}
		}
		if out.Prompt == "" {
			return nil
		}
		yes, err := fe.Dialog.Confirm(ctx, out.Prompt)
		if err != nil {
			return err
		}
		ev := Event{Kind: EventNo}
		if yes {
			ev.Kind = EventYes
		}
		out = m.Handle(ev)
	}
}

// RunPlacement runs the manual tactics phase and, on confirmation, replaces
// the map's origin pool with the chosen formation.
//
// Postcondition: on error the map equals its state before the call.
func RunPlacement(ctx context.Context, s *battle.Session, fe Frontend, scrollStep int) error {
	p := NewPlacement(s, scrollStep)
	if err := loop(ctx, fe, p); err != nil {
		p.Abort()
		return err
	}
	return p.Commit()
}

// RunReinforcement lets the player bring the member of class onto the map
// beside an ally. It returns false when the player backs out.
//
// Postcondition: the map changes only when the result is true.
func RunReinforcement(ctx context.Context, s *battle.Session, class string, fe Frontend, scrollStep int) (bool, error) {
	r, err := NewReinforcement(s, class, scrollStep)
	if err != nil {
		if errors.Is(err, ErrNoReinforcement) {
			return false, fe.Dialog.Message(ctx, "No one is available to reinforce.")
		}
		return false, err
	}
	if err := loop(ctx, fe, r); err != nil {
		r.Abort()
		return false, err
	}
	if r.State() != Done {
		r.Abort()
		return false, nil
	}
	return true, r.Commit()
}

// RunTarget acquires a target. It returns NoPoint when the player backs out.
//
// Postcondition: the map equals its state before the call on every path.
func RunTarget(ctx context.Context, s *battle.Session, mode Mode, fe Frontend, scrollStep int) (grid.Point, error) {
	t := NewTarget(s, mode, scrollStep)
	err := loop(ctx, fe, t)
	result := t.Result()
	t.Abort()
	if err != nil {
		return grid.NoPoint, err
	}
	return result, nil
}

// ChooseAction shows the legal actions of a combatant and waits for one of
// them. Back always maps to combat.ActionBack.
//
// Postcondition: the returned action is one of s.Actions(side, id, rangedOnly).
func ChooseAction(ctx context.Context, s *battle.Session, side combat.Side, id int, rangedOnly bool, fe Frontend) (combat.ActionType, error) {
	actions := s.Actions(side, id, rangedOnly)
	pos := s.Map.Find(side.Kind(), id)
	controls := combat.Controls(actions, grid.Point{X: 0, Y: s.Map.Height})
	roster := s.Roster(side)
	title := "Actions"
	if c, ok := roster.Get(id); ok {
		title = c.Name
	}
	for {
		if err := fe.Scene.Draw(View{
			Title:     title,
			Map:       s.Map,
			Players:   s.Party.Members,
			Opponents: s.Opponents.Members,
			Cursor:    pos,
			Controls:  controls,
		}); err != nil {
			return combat.ActionBack, err
		}
		ev, err := fe.Input.Next(ctx, controls)
		if err != nil {
			return combat.ActionBack, err
		}
		switch ev.Kind {
		case EventBack:
			return combat.ActionBack, nil
		case EventAction:
			if _, ok := combat.ControlFor(controls, ev.Action); ok {
				return ev.Action, nil
			}
			if err := fe.Dialog.Message(ctx, ev.Action.String()+" is not available now."); err != nil {
				return combat.ActionBack, err
			}
		}
	}
}
