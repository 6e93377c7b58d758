// Package battle holds the state of one tactical battle and the content
// loaders that produce it.
package battle

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/book"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/status"
)

// Session is one battle instance. It is driven by a single goroutine.
type Session struct {
	ID uuid.UUID
	// Name is the battle definition id the session was built from.
	Name       string
	Map        *grid.Map
	Party      *Party
	Opponents  *Opponents
	Conditions Conditions
	Loot       []string
	// InCombatTarget is the class of the party member the battle revolves
	// around, or "" for none. It is re-resolved on every Target call.
	InCombatTarget string
	// SurvivorLimit caps carried-over survivors; <= 0 means unlimited.
	SurvivorLimit int
	// SurvivorDelay is the AWAY countdown given to carried-over survivors.
	SurvivorDelay   int
	SurvivorSource  book.Location
	Destination     book.Location
	ExcludedClasses []string
	Round           int
	Tracer          *Tracer
}

// Arrival is an away combatant that joined the map during round upkeep.
type Arrival struct {
	Side combat.Side
	ID   int
	At   grid.Point
}

// Rules returns the condition-derived action gates.
func (s *Session) Rules() combat.Rules {
	return combat.Rules{
		NoCombat:   s.Conditions.Has(NoCombat),
		CannotFlee: s.Conditions.Has(CannotFlee),
	}
}

// Location returns the battle's location: the opponents' explicit location,
// or the party's when that is undefined.
func (s *Session) Location() book.Location {
	if s.Opponents != nil && s.Opponents.Location.IsDefined() {
		return s.Opponents.Location
	}
	if s.Party != nil {
		return s.Party.Location
	}
	return book.None
}

// IsExcluded reports whether class is barred from this battle.
func (s *Session) IsExcluded(class string) bool {
	for _, c := range s.ExcludedClasses {
		if c == class {
			return true
		}
	}
	return false
}

// Roster returns the members of side.
func (s *Session) Roster(side combat.Side) combat.Roster {
	if side == combat.SidePlayer {
		return s.Party.Members
	}
	return s.Opponents.Members
}

// Target resolves InCombatTarget against the current party.
//
// Postcondition: Returns the index of the first living, present, on-map
// member of that class, or (-1, false).
func (s *Session) Target() (int, bool) {
	if s.InCombatTarget == "" || s.Party == nil {
		return -1, false
	}
	for i := range s.Party.Members {
		c := &s.Party.Members[i]
		if c.Class != s.InCombatTarget || !c.IsAlive() || c.IsAway() {
			continue
		}
		if !s.Map.Find(grid.Player, i).IsNone() {
			return i, true
		}
	}
	return -1, false
}

// Actions returns the legal actions of roster entry id on side.
//
// Postcondition: the result ends with combat.ActionBack.
func (s *Session) Actions(side combat.Side, id int, rangedOnly bool) []combat.ActionType {
	sit := combat.Observe(s.Map, s.Party.Members, s.Opponents.Members, side, id, s.Rules(), rangedOnly)
	actions := combat.Eligible(sit)
	s.Tracer.Eligible(side, id, actions)
	return actions
}

// AdvanceRound performs end-of-round upkeep: status countdowns tick,
// temporary obstacles decay, and combatants whose AWAY countdown expired
// join the fight.
//
// Postcondition: Round is incremented; returns the arrivals in roster order,
// players first.
func (s *Session) AdvanceRound() []Arrival {
	s.Round++
	var due []Arrival
	for _, side := range []combat.Side{combat.SidePlayer, combat.SideOpponent} {
		roster := s.Roster(side)
		for i := range roster {
			c := &roster[i]
			wasAway := c.IsAway()
			expired := c.Status.Tick()
			if !c.IsAlive() || !wasAway {
				continue
			}
			for _, f := range expired {
				if f == status.Away {
					due = append(due, Arrival{Side: side, ID: i})
				}
			}
		}
	}
	for _, p := range s.Map.Decay() {
		s.Tracer.Note("obstacle expired", zap.Stringer("at", p))
	}

	arrivals := make([]Arrival, 0, len(due))
	for _, a := range due {
		if at, ok := s.arrive(a.Side, a.ID); ok {
			a.At = at
			arrivals = append(arrivals, a)
			s.Tracer.Arrived(a.Side, a.ID, at)
		}
	}
	return arrivals
}

// arrive moves a returning combatant beside its side. Players join the first
// living on-map ally; opponents take the first free spawn, falling back to a
// cell beside another opponent.
func (s *Session) arrive(side combat.Side, id int) (grid.Point, bool) {
	kind := side.Kind()
	if side == combat.SideOpponent {
		for _, p := range s.Map.Spawns {
			if s.Map.Put(p, kind, id) {
				return p, true
			}
		}
	}
	roster := s.Roster(side)
	for i := range roster {
		if i == id || !roster[i].IsAlive() || roster[i].IsAway() {
			continue
		}
		anchor := s.Map.Find(kind, i)
		if anchor.IsNone() {
			continue
		}
		if s.Map.Next(anchor, kind, id) {
			return s.Map.Find(kind, id), true
		}
	}
	return grid.NoPoint, false
}

// ResolvedDestination is where survivors of this battle are recorded:
// Destination when defined, else the battle location.
func (s *Session) ResolvedDestination() book.Location {
	if s.Destination.IsDefined() {
		return s.Destination
	}
	return s.Location()
}

// RecordSurvivors appends every living opponent to the party's survivor list
// and marks the battle as the party's last battle.
//
// Postcondition: Party.LastBattle == ResolvedDestination(); returns the
// number of survivors recorded.
func (s *Session) RecordSurvivors() int {
	loc := s.ResolvedDestination()
	n := 0
	for i := range s.Opponents.Members {
		c := s.Opponents.Members[i]
		if !c.IsAlive() {
			continue
		}
		c = c.Clone()
		c.Status.Remove(status.Away)
		c.Status.Remove(status.InCombat)
		s.Party.Survivors = append(s.Party.Survivors, combat.Survivor{Combatant: c, Location: loc})
		n++
	}
	s.Party.LastBattle = loc
	s.Tracer.Note("survivors recorded", zap.Int("count", n), zap.Stringer("location", loc))
	return n
}
