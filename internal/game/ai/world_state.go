package ai

import (
	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// Target tokens understood by operators.
const (
	TargetNearestEnemy = "nearest_enemy"
	TargetWeakestEnemy = "weakest_enemy"
	TargetSelf         = "self"
)

// CombatantState is a combatant as seen by the planner.
type CombatantState struct {
	ID        int
	Side      combat.Side
	Class     string
	Name      string
	Health    int
	MaxHealth int
	// At is NoPoint for combatants off the map.
	At   grid.Point
	Dead bool
}

// HealthPercent returns Health as a percentage of MaxHealth; 0 if MaxHealth is 0.
func (c *CombatantState) HealthPercent() float64 {
	if c.MaxHealth <= 0 {
		return 0
	}
	return float64(c.Health) / float64(c.MaxHealth) * 100
}

// present reports whether c is alive and on the map.
func (c *CombatantState) present() bool { return !c.Dead && !c.At.IsNone() }

// WorldState is the snapshot one opponent plans against.
//
// Invariant: Self is one of Combatants.
type WorldState struct {
	Self       *CombatantState
	Combatants []*CombatantState
	// Eligible is the opponent's legal action set this turn.
	Eligible []combat.ActionType
}

// BuildWorldState snapshots s for roster entry id on side.
//
// Precondition: id must index s.Roster(side).
func BuildWorldState(s *battle.Session, side combat.Side, id int) *WorldState {
	ws := &WorldState{Eligible: s.Actions(side, id, false)}
	for _, sd := range []combat.Side{combat.SidePlayer, combat.SideOpponent} {
		roster := s.Roster(sd)
		for i := range roster {
			c := &roster[i]
			cs := &CombatantState{
				ID:        i,
				Side:      sd,
				Class:     c.Class,
				Name:      c.Name,
				Health:    c.Health,
				MaxHealth: c.MaxHealth,
				At:        s.Map.Find(sd.Kind(), i),
				Dead:      !c.IsAlive(),
			}
			if c.IsAway() {
				cs.At = grid.NoPoint
			}
			ws.Combatants = append(ws.Combatants, cs)
			if sd == side && i == id {
				ws.Self = cs
			}
		}
	}
	return ws
}

// Allows reports whether a is in the eligible set.
func (ws *WorldState) Allows(a combat.ActionType) bool {
	for _, e := range ws.Eligible {
		if e == a {
			return true
		}
	}
	return false
}

// Enemies returns the present combatants of the other side, in roster order.
func (ws *WorldState) Enemies() []*CombatantState {
	var out []*CombatantState
	for _, c := range ws.Combatants {
		if c.Side != ws.Self.Side && c.present() {
			out = append(out, c)
		}
	}
	return out
}

// Allies returns the present combatants of Self's side, excluding Self.
func (ws *WorldState) Allies() []*CombatantState {
	var out []*CombatantState
	for _, c := range ws.Combatants {
		if c != ws.Self && c.Side == ws.Self.Side && c.present() {
			out = append(out, c)
		}
	}
	return out
}

// NearestEnemy returns the enemy closest to Self; ties keep roster order.
//
// Postcondition: nil if no enemy is present.
func (ws *WorldState) NearestEnemy() *CombatantState {
	var best *CombatantState
	for _, e := range ws.Enemies() {
		if best == nil || ws.Self.At.Distance(e.At) < ws.Self.At.Distance(best.At) {
			best = e
		}
	}
	return best
}

// WeakestEnemy returns the enemy with the lowest health percentage; ties
// keep roster order.
//
// Postcondition: nil if no enemy is present.
func (ws *WorldState) WeakestEnemy() *CombatantState {
	var best *CombatantState
	for _, e := range ws.Enemies() {
		if best == nil || e.HealthPercent() < best.HealthPercent() {
			best = e
		}
	}
	return best
}

// ResolveTarget maps an operator target token to a combatant. Other tokens
// match a present enemy by class, then by name.
//
// Postcondition: nil if nothing matches.
func (ws *WorldState) ResolveTarget(token string) *CombatantState {
	switch token {
	case TargetNearestEnemy:
		return ws.NearestEnemy()
	case TargetWeakestEnemy:
		return ws.WeakestEnemy()
	case TargetSelf:
		return ws.Self
	}
	enemies := ws.Enemies()
	for _, e := range enemies {
		if e.Class == token {
			return e
		}
	}
	for _, e := range enemies {
		if e.Name == token {
			return e
		}
	}
	return nil
}
