package grid

import "fmt"

// Map is the tactical battle map.
//
// Invariant: at most one occupant per cell; an Exit cell is never occupied by a
// combatant; a combatant occupant appears in at most one cell.
// Map is not safe for concurrent use; a battle session owns its map exclusively.
type Map struct {
	Width  int
	Height int
	cells  []Cell

	// View is the visible window over the grid.
	View Viewport

	// Origins are the player placement cells, consumed in order.
	Origins []Point
	// Spawns are the opponent placement cells, consumed in order.
	Spawns []Point
	// AwayPlayers hold delayed or excluded party members.
	AwayPlayers []Point
	// AwayOpponents hold delayed opponents.
	AwayOpponents []Point
	// Survivors hold opponents carried over from a linked battle.
	Survivors []Point
}

// New creates a width×height map of passable, empty cells whose viewport
// covers the whole grid.
//
// Precondition: width >= 1 and height >= 1.
func New(width, height int) (*Map, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("grid: dimensions must be >= 1, got %dx%d", width, height)
	}
	m := &Map{
		Width:  width,
		Height: height,
		cells:  make([]Cell, width*height),
		View:   Viewport{Width: width, Height: height},
	}
	for i := range m.cells {
		m.cells[i].Passable = true
	}
	return m, nil
}

// Contains reports whether p lies on the grid.
func (m *Map) Contains(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.Width && p.Y < m.Height
}

func (m *Map) index(p Point) int { return p.Y*m.Width + p.X }

func (m *Map) point(i int) Point { return Point{X: i % m.Width, Y: i / m.Width} }

// Cell returns the cell at p.
//
// Postcondition: Returns (cell, true) for on-grid points, (Cell{}, false) otherwise.
func (m *Map) Cell(p Point) (Cell, bool) {
	if !m.Contains(p) {
		return Cell{}, false
	}
	return m.cells[m.index(p)], true
}

// At returns the occupant at p, or Empty for off-grid points.
func (m *Map) At(p Point) Occupant {
	if !m.Contains(p) {
		return Empty
	}
	return m.cells[m.index(p)].Occupant
}

// SetPassable marks p as passable terrain or wall.
func (m *Map) SetPassable(p Point, passable bool) {
	if m.Contains(p) {
		m.cells[m.index(p)].Passable = passable
	}
}

// SetExit marks p as an exit.
//
// Postcondition: Returns false if p is off-grid or holds a combatant.
func (m *Map) SetExit(p Point) bool {
	if !m.Contains(p) || m.At(p).Kind.IsCombatant() {
		return false
	}
	c := &m.cells[m.index(p)]
	c.Occupant = Occupant{Kind: Exit}
	c.Lifetime = 0
	return true
}

// IsOccupied reports whether a combatant stands on p.
func (m *Map) IsOccupied(p Point) bool {
	return m.At(p).Kind.IsCombatant()
}

// IsPassable reports whether p is on-grid passable terrain.
func (m *Map) IsPassable(p Point) bool {
	c, ok := m.Cell(p)
	return ok && c.Passable
}

// IsExit reports whether p is an exit.
func (m *Map) IsExit(p Point) bool {
	return m.At(p).Kind == Exit
}

// IsTemporarilyBlocked reports whether p holds a temporary obstacle.
func (m *Map) IsTemporarilyBlocked(p Point) bool {
	c, ok := m.Cell(p)
	return ok && c.IsBlocked()
}

// IsFree reports whether a combatant may be placed on or move onto p: on-grid,
// passable, unoccupied, not an exit and not temporarily blocked.
func (m *Map) IsFree(p Point) bool {
	c, ok := m.Cell(p)
	return ok && c.Passable && c.Occupant.Kind == None
}

// Find returns the cell holding (kind, id), or NoPoint.
func (m *Map) Find(kind Kind, id int) Point {
	for i, c := range m.cells {
		if c.Occupant.Kind == kind && c.Occupant.ID == id {
			return m.point(i)
		}
	}
	return NoPoint
}

// First returns the first cell in row-major order holding kind, or NoPoint.
func (m *Map) First(kind Kind) Point {
	for i, c := range m.cells {
		if c.Occupant.Kind == kind {
			return m.point(i)
		}
	}
	return NoPoint
}

// Except returns the first cell holding kind whose occupant ID differs from
// excludeID, or NoPoint.
func (m *Map) Except(kind Kind, excludeID int) Point {
	for i, c := range m.cells {
		if c.Occupant.Kind == kind && c.Occupant.ID != excludeID {
			return m.point(i)
		}
	}
	return NoPoint
}

// Nearest returns the cell holding kind closest to from by Manhattan distance,
// ties broken by row-major order, or NoPoint.
func (m *Map) Nearest(from Point, kind Kind) Point {
	if !m.Contains(from) {
		return NoPoint
	}
	best, bestDist := NoPoint, -1
	for i, c := range m.cells {
		if c.Occupant.Kind != kind {
			continue
		}
		p := m.point(i)
		if d := p.Distance(from); bestDist < 0 || d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// All returns every cell holding kind in row-major order.
func (m *Map) All(kind Kind) []Point {
	var out []Point
	for i, c := range m.cells {
		if c.Occupant.Kind == kind {
			out = append(out, m.point(i))
		}
	}
	return out
}

// Count returns the number of cells holding kind.
func (m *Map) Count(kind Kind) int {
	n := 0
	for _, c := range m.cells {
		if c.Occupant.Kind == kind {
			n++
		}
	}
	return n
}

// Neighbours returns the on-grid 4-neighbours of p in N, E, S, W order.
func (m *Map) Neighbours(p Point) []Point {
	if !m.Contains(p) {
		return nil
	}
	out := make([]Point, 0, 4)
	for _, d := range neighbourhood {
		if q := p.Add(d); m.Contains(q) {
			out = append(out, q)
		}
	}
	return out
}

// Adjacent reports whether any 4-neighbour of origin holds kind.
func (m *Map) Adjacent(origin Point, kind Kind) bool {
	for _, q := range m.Neighbours(origin) {
		if m.At(q).Kind == kind {
			return true
		}
	}
	return false
}

// AdjacentTo reports whether the occupant (kind, id) is a 4-neighbour of origin.
func (m *Map) AdjacentTo(origin Point, kind Kind, id int) bool {
	for _, q := range m.Neighbours(origin) {
		if o := m.At(q); o.Kind == kind && o.ID == id {
			return true
		}
	}
	return false
}

// HasFreeNeighbour reports whether any 4-neighbour of origin is free.
func (m *Map) HasFreeNeighbour(origin Point) bool {
	for _, q := range m.Neighbours(origin) {
		if m.IsFree(q) {
			return true
		}
	}
	return false
}

// Put places the combatant (kind, id) on p, removing it from any previous cell.
//
// Precondition: kind must be Player or Enemy.
// Postcondition: Returns false and leaves the map unchanged if p is not free.
func (m *Map) Put(p Point, kind Kind, id int) bool {
	if !kind.IsCombatant() || !m.IsFree(p) {
		return false
	}
	m.Remove(kind, id)
	m.cells[m.index(p)].Occupant = Occupant{Kind: kind, ID: id}
	return true
}

// Remove clears the cell holding (kind, id).
//
// Postcondition: Returns true iff the occupant was on the map.
func (m *Map) Remove(kind Kind, id int) bool {
	p := m.Find(kind, id)
	if p.IsNone() {
		return false
	}
	m.cells[m.index(p)].Occupant = Empty
	return true
}

// Clear empties p of whatever occupies it.
func (m *Map) Clear(p Point) {
	if m.Contains(p) {
		c := &m.cells[m.index(p)]
		c.Occupant = Empty
		c.Lifetime = 0
	}
}

// Next places (kind, id) on the first free 4-neighbour of target in N, E, S, W
// order, removing it from any previous cell.
//
// Postcondition: Returns false and leaves the map unchanged if no neighbour is free.
func (m *Map) Next(target Point, kind Kind, id int) bool {
	for _, q := range m.Neighbours(target) {
		if m.IsFree(q) {
			return m.Put(q, kind, id)
		}
	}
	return false
}

// PutObstacle blocks p for lifetime rounds.
//
// Precondition: lifetime >= 1.
// Postcondition: Returns false if p is not free.
func (m *Map) PutObstacle(p Point, lifetime int) bool {
	if lifetime < 1 || !m.IsFree(p) {
		return false
	}
	c := &m.cells[m.index(p)]
	c.Occupant = Occupant{Kind: Obstacle}
	c.Lifetime = lifetime
	return true
}

// Decay advances every temporary obstacle by one round.
//
// Postcondition: Returns the cells whose obstacle expired; those cells are empty.
func (m *Map) Decay() []Point {
	var cleared []Point
	for i := range m.cells {
		c := &m.cells[i]
		if c.Occupant.Kind != Obstacle {
			continue
		}
		c.Lifetime--
		if c.Lifetime <= 0 {
			c.Occupant = Empty
			c.Lifetime = 0
			cleared = append(cleared, m.point(i))
		}
	}
	return cleared
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	cp := *m
	cp.cells = append([]Cell(nil), m.cells...)
	cp.Origins = clonePoints(m.Origins)
	cp.Spawns = clonePoints(m.Spawns)
	cp.AwayPlayers = clonePoints(m.AwayPlayers)
	cp.AwayOpponents = clonePoints(m.AwayOpponents)
	cp.Survivors = clonePoints(m.Survivors)
	return &cp
}

// Restore overwrites m with the contents of snapshot.
//
// Precondition: snapshot must be non-nil.
func (m *Map) Restore(snapshot *Map) {
	*m = *snapshot.Clone()
}

// Equal reports whether m and other are structurally identical.
func (m *Map) Equal(other *Map) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.Width != other.Width || m.Height != other.Height || m.View != other.View {
		return false
	}
	for i := range m.cells {
		if m.cells[i] != other.cells[i] {
			return false
		}
	}
	return equalPoints(m.Origins, other.Origins) &&
		equalPoints(m.Spawns, other.Spawns) &&
		equalPoints(m.AwayPlayers, other.AwayPlayers) &&
		equalPoints(m.AwayOpponents, other.AwayOpponents) &&
		equalPoints(m.Survivors, other.Survivors)
}

func clonePoints(ps []Point) []Point {
	if ps == nil {
		return nil
	}
	return append([]Point(nil), ps...)
}

func equalPoints(a, b []Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
