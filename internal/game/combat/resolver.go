package combat

import (
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/status"
)

// Situation is every fact the eligibility rules depend on, captured at one
// instant. It is built by Observe or directly by callers and tests.
type Situation struct {
	Side            Side
	OnMap           bool
	HasMoveCell     bool
	Entangled       bool
	Invisible       bool
	Enthralled      bool
	AdjacentHostile bool
	HostilesOnMap   int
	// OtherNonPlayers counts non-player combatants on the map besides the actor.
	OtherNonPlayers int
	CanShoot        bool
	HasSignature    bool
	Spellcaster     bool
	HasItems        bool
	ExitsOnMap      bool
	NoCombat        bool
	CannotFlee      bool
	RangedOnly      bool
}

// Rules are the battle-wide conditions that gate actions.
type Rules struct {
	NoCombat   bool
	CannotFlee bool
}

// Eligible returns the legal actions for s in menu order, always ending with
// ActionBack.
//
// Postcondition: deterministic in s; never empty; the last element is ActionBack.
func Eligible(s Situation) []ActionType {
	if !s.OnMap {
		return []ActionType{ActionBack}
	}
	player := s.Side == SidePlayer
	out := make([]ActionType, 0, 9)

	if s.HasMoveCell && !s.Entangled && !s.RangedOnly {
		out = append(out, ActionMove)
	}
	out = append(out, ActionDefend)

	fight := !s.NoCombat && !s.RangedOnly && s.AdjacentHostile
	if fight {
		out = append(out, ActionFight)
		if s.HasSignature {
			out = append(out, ActionSignature)
		}
	}

	if s.CanShoot && canShoot(s, player) {
		out = append(out, ActionShoot)
	}
	if s.Spellcaster && !s.RangedOnly {
		out = append(out, ActionSpells)
	}
	if player && s.ExitsOnMap && !s.CannotFlee && (!s.AdjacentHostile || s.RangedOnly || s.Invisible) {
		out = append(out, ActionFlee)
	}
	if player && s.HasItems && !s.RangedOnly {
		out = append(out, ActionItems)
	}
	return append(out, ActionBack)
}

// canShoot applies the side-specific ranged gate. An enthralled non-player
// only shoots once it is the last non-player standing on the map.
func canShoot(s Situation, player bool) bool {
	switch {
	case player:
		return !s.AdjacentHostile && s.HostilesOnMap > 0
	case s.Enthralled:
		return s.OtherNonPlayers == 0 && !s.AdjacentHostile
	default:
		return s.HostilesOnMap > 0 && !s.AdjacentHostile
	}
}

// Observe derives the Situation of roster entry id on side from the map and
// rosters. Hostility is by side: players look for Enemy occupants and
// non-players look for Player occupants.
//
// Precondition: m must not be nil.
// Postcondition: an unknown or dead combatant yields a Situation with OnMap false.
func Observe(m *grid.Map, players, opponents Roster, side Side, id int, rules Rules, rangedOnly bool) Situation {
	s := Situation{
		Side:       side,
		NoCombat:   rules.NoCombat,
		CannotFlee: rules.CannotFlee,
		RangedOnly: rangedOnly,
	}
	roster := players
	if side == SideOpponent {
		roster = opponents
	}
	c, ok := roster.Get(id)
	if !ok || !c.IsAlive() {
		return s
	}
	pos := m.Find(side.Kind(), id)
	s.OnMap = !pos.IsNone()
	s.Entangled = c.Has(status.Entangled)
	s.Invisible = c.Has(status.Invisible)
	s.Enthralled = c.Has(status.Enthralled)
	s.CanShoot = c.CanShoot()
	s.HasSignature = c.HasSignatureSkill()
	s.Spellcaster = c.Spellcaster
	s.HasItems = c.HasItems()
	s.ExitsOnMap = m.Count(grid.Exit) > 0
	if !s.OnMap {
		return s
	}
	hostile := side.Hostile().Kind()
	s.HasMoveCell = m.HasFreeNeighbour(pos)
	s.AdjacentHostile = m.Adjacent(pos, hostile)
	s.HostilesOnMap = m.Count(hostile)
	if side == SideOpponent {
		s.OtherNonPlayers = m.Count(grid.Enemy) - 1
	}
	return s
}
