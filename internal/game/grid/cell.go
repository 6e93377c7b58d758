package grid

// Kind is the kind of thing occupying a cell.
type Kind int

const (
	None Kind = iota
	Player
	Enemy
	Exit
	Obstacle
)

// String returns a lowercase label for k.
func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Player:
		return "player"
	case Enemy:
		return "enemy"
	case Exit:
		return "exit"
	case Obstacle:
		return "obstacle"
	default:
		return "unknown"
	}
}

// IsCombatant reports whether k refers to a roster entry.
func (k Kind) IsCombatant() bool { return k == Player || k == Enemy }

// Occupant is a back-reference from a cell into a roster.
// ID is an index into the player party (Player) or opponent group (Enemy)
// and carries no meaning for the other kinds.
type Occupant struct {
	Kind Kind
	ID   int
}

// Empty is the occupant of an unoccupied cell.
var Empty = Occupant{Kind: None}

// Cell is one square of the map.
type Cell struct {
	Occupant Occupant
	// Passable is false for walls and other permanent terrain.
	Passable bool
	// Lifetime is the number of rounds a temporary obstacle remains.
	// Only meaningful when Occupant.Kind == Obstacle.
	Lifetime int
}

// IsBlocked reports whether the cell holds a temporary obstacle.
func (c Cell) IsBlocked() bool {
	return c.Occupant.Kind == Obstacle && c.Lifetime > 0
}
