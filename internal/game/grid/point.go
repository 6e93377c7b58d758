// Package grid implements the tactical battle map: cells, occupancy, spatial
// queries, and the scrollable viewport.
package grid

import "fmt"

// Point is a cell coordinate. X grows east, Y grows south.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// NoPoint is the "none" coordinate returned by queries that find nothing.
var NoPoint = Point{X: -1, Y: -1}

// IsNone reports whether p is the NoPoint sentinel.
func (p Point) IsNone() bool { return p == NoPoint }

// Add returns p translated by d.
func (p Point) Add(d Point) Point { return Point{X: p.X + d.X, Y: p.Y + d.Y} }

// Distance returns the Manhattan distance between p and q.
func (p Point) Distance(q Point) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

// String returns "(x,y)" or "none".
func (p Point) String() string {
	if p.IsNone() {
		return "none"
	}
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction is a compass step on the grid.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// neighbourhood lists the 4-neighbourhood offsets in scan order: N, E, S, W.
var neighbourhood = [4]Point{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// Delta returns the unit offset for d.
func (d Direction) Delta() Point {
	if d < North || d > West {
		return Point{}
	}
	return neighbourhood[d]
}

// String returns the lowercase compass name.
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// ParseDirection maps a compass name or screen alias to a Direction.
//
// Postcondition: Returns (dir, true) for north/east/south/west, up/right/down/left
// and their first letters; (0, false) otherwise.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "north", "n", "up", "u":
		return North, true
	case "east", "e", "right", "r":
		return East, true
	case "south", "s", "down", "d":
		return South, true
	case "west", "w", "left", "l":
		return West, true
	default:
		return 0, false
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
