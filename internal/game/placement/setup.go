// Package placement assigns combatants to map cells at the start of a battle.
package placement

import (
	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/book"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/status"
)

// pool hands out the cells of one placement pool in declaration order.
type pool struct {
	name  string
	cells []grid.Point
	next  int
}

// take returns the next free cell, skipping cells that are no longer free.
func (p *pool) take(m *grid.Map) (grid.Point, bool) {
	for p.next < len(p.cells) {
		c := p.cells[p.next]
		p.next++
		if m.IsFree(c) {
			return c, true
		}
	}
	return grid.NoPoint, false
}

// placer carries the working state of one Setup run.
type placer struct {
	m             *grid.Map
	tracer        *battle.Tracer
	origins       pool
	awayPlayers   pool
	spawns        pool
	awayOpponents pool
	survivors     pool
}

func newPlacer(m *grid.Map, tracer *battle.Tracer) *placer {
	return &placer{
		m:             m,
		tracer:        tracer,
		origins:       pool{name: "origin", cells: m.Origins},
		awayPlayers:   pool{name: "away_player", cells: m.AwayPlayers},
		spawns:        pool{name: "spawn", cells: m.Spawns},
		awayOpponents: pool{name: "away_opponent", cells: m.AwayOpponents},
		survivors:     pool{name: "survivor", cells: m.Survivors},
	}
}

func (pl *placer) place(p *pool, side combat.Side, id int, c *combat.Combatant, cat Category) error {
	at, ok := p.take(pl.m)
	if !ok {
		return fail(cat, "%s %q (index %d)", side, c.Class, id)
	}
	pl.m.Put(at, side.Kind(), id)
	pl.tracer.Placed(side, id, c.Class, p.name, at)
	return nil
}

// Setup places the party, the opponents and any carried-over survivors.
// All work happens on copies; the session is updated only on success.
//
// Precondition: s.Map, s.Party and s.Opponents must not be nil.
// Postcondition: Returns a *SetupError on any capacity failure, leaving s untouched.
func Setup(s *battle.Session) error {
	m := s.Map.Clone()
	players := s.Party.Members.Clone()
	opponents := s.Opponents.Members.Clone()
	survivors := combat.CloneSurvivors(s.Party.Survivors)
	pl := newPlacer(m, s.Tracer)

	if err := pl.placePlayers(s, players); err != nil {
		return err
	}
	loc := s.Location()
	if err := pl.placeOpponents(opponents); err != nil {
		return err
	}
	var err error
	opponents, survivors, err = pl.carrySurvivors(s, opponents, survivors)
	if err != nil {
		return err
	}
	if onMap(m, players, combat.SidePlayer) == 0 {
		return fail(CategoryNoPlayers, "battle %q", s.Name)
	}
	if onMap(m, opponents, combat.SideOpponent) == 0 {
		return fail(CategoryNoOpponents, "battle %q", s.Name)
	}

	s.Map.Restore(m)
	s.Party.Members = players
	s.Party.Survivors = survivors
	s.Opponents.Members = opponents
	s.Opponents.Location = loc
	return nil
}

// placePlayers assigns origin cells, or away-player cells to members that are
// AWAY or EXCLUDED. Members whose class the battle excludes are left off the map.
func (pl *placer) placePlayers(s *battle.Session, players combat.Roster) error {
	for i := range players {
		c := &players[i]
		switch {
		case !c.IsAlive():
			pl.tracer.Skipped(combat.SidePlayer, i, c.Class, "dead")
			continue
		case s.IsExcluded(c.Class):
			pl.tracer.Skipped(combat.SidePlayer, i, c.Class, "excluded class")
			continue
		}
		if c.IsAway() || c.Has(status.Excluded) {
			if err := pl.place(&pl.awayPlayers, combat.SidePlayer, i, c, CategoryAwayPlayers); err != nil {
				return err
			}
			c.Status.Remove(status.Excluded)
			continue
		}
		if err := pl.place(&pl.origins, combat.SidePlayer, i, c, CategoryOrigins); err != nil {
			return err
		}
	}
	return nil
}

func (pl *placer) placeOpponents(opponents combat.Roster) error {
	for i := range opponents {
		c := &opponents[i]
		if !c.IsAlive() {
			pl.tracer.Skipped(combat.SideOpponent, i, c.Class, "dead")
			continue
		}
		if c.IsAway() {
			if err := pl.place(&pl.awayOpponents, combat.SideOpponent, i, c, CategoryAwayOpponents); err != nil {
				return err
			}
			continue
		}
		if err := pl.place(&pl.spawns, combat.SideOpponent, i, c, CategorySpawns); err != nil {
			return err
		}
	}
	return nil
}

// PlaceOpponents puts the living opponents on m's spawn and away-opponent
// cells, as Setup would.
//
// Postcondition: Returns a *SetupError if either pool is exhausted; m may be
// partially updated in that case.
func PlaceOpponents(m *grid.Map, opponents combat.Roster, tracer *battle.Tracer) error {
	return newPlacer(m, tracer).placeOpponents(opponents)
}

// SurvivorSource returns the location survivors are carried from, or None.
func SurvivorSource(s *battle.Session) book.Location {
	if s.SurvivorSource.IsDefined() {
		return s.SurvivorSource
	}
	if s.Conditions.Has(battle.LastBattle) && s.Party.LastBattle.IsDefined() {
		return s.Party.LastBattle
	}
	return book.None
}

// MatchSurvivors returns the indices of living survivors recorded at source,
// in list order, at most limit of them when limit > 0.
func MatchSurvivors(survivors []combat.Survivor, source book.Location, limit int) []int {
	var idx []int
	for i := range survivors {
		if limit > 0 && len(idx) == limit {
			break
		}
		sv := &survivors[i]
		if sv.Location.Equal(source) && sv.Combatant.IsAlive() {
			idx = append(idx, i)
		}
	}
	return idx
}

// RemoveIndices deletes the entries at idx from survivors, reusing its
// backing array. idx must be ascending; removal runs from the highest index
// down so the lower indices stay valid.
func RemoveIndices(survivors []combat.Survivor, idx []int) []combat.Survivor {
	for k := len(idx) - 1; k >= 0; k-- {
		i := idx[k]
		survivors = append(survivors[:i], survivors[i+1:]...)
	}
	return survivors
}

func (pl *placer) carrySurvivors(s *battle.Session, opponents combat.Roster, survivors []combat.Survivor) (combat.Roster, []combat.Survivor, error) {
	source := SurvivorSource(s)
	if !source.IsDefined() {
		return opponents, survivors, nil
	}
	idx := MatchSurvivors(survivors, source, s.SurvivorLimit)
	if len(idx) == 0 {
		return opponents, survivors, nil
	}
	if len(pl.m.Survivors) == 0 && s.SurvivorDelay <= 0 {
		return nil, nil, fail(CategoryNoSurvivorCells, "%d survivors from %s", len(idx), source)
	}

	carried := make([]combat.Combatant, 0, len(idx))
	for _, i := range idx {
		carried = append(carried, survivors[i].Combatant.Clone())
	}
	survivors = RemoveIndices(survivors, idx)

	for _, c := range carried {
		c.Side = combat.SideOpponent
		if s.Conditions.Has(battle.HealSurvivors) {
			c.Heal()
		}
		if s.SurvivorDelay > 0 {
			c.Status.Apply(status.Away, s.SurvivorDelay)
		}
		opponents = append(opponents, c)
		id := len(opponents) - 1
		var err error
		if s.SurvivorDelay > 0 {
			err = pl.place(&pl.awayOpponents, combat.SideOpponent, id, &opponents[id], CategoryAwayOpponents)
		} else {
			err = pl.place(&pl.survivors, combat.SideOpponent, id, &opponents[id], CategorySurvivors)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	return opponents, survivors, nil
}

func onMap(m *grid.Map, r combat.Roster, side combat.Side) int {
	n := 0
	for i := range r {
		if r[i].IsAlive() && !m.Find(side.Kind(), i).IsNone() {
			n++
		}
	}
	return n
}
