package combat

import "github.com/cory-johannsen/skirmish/internal/game/grid"

// Control is one logical UI control bound to an action. Geometry is expressed
// in anchor-grid units; rendering layers scale it as they see fit.
type Control struct {
	Action ActionType
	ID     int
	X, Y   int
	W, H   int
	// Left, Right, Up and Down are the IDs of the neighbouring controls.
	Left, Right, Up, Down int
}

// ControlWidth is the width of one control in anchor-grid units.
const ControlWidth = 1

// Controls lays out one control per action left-to-right from anchor with
// cyclic left/right navigation. Up and Down refer back to the control itself
// since the row is one control high.
//
// Postcondition: len(result) == len(actions); result[i].Action == actions[i].
func Controls(actions []ActionType, anchor grid.Point) []Control {
	n := len(actions)
	out := make([]Control, n)
	for i, a := range actions {
		out[i] = Control{
			Action: a,
			ID:     i,
			X:      anchor.X + i*ControlWidth,
			Y:      anchor.Y,
			W:      ControlWidth,
			H:      1,
			Left:   (i + n - 1) % n,
			Right:  (i + 1) % n,
			Up:     i,
			Down:   i,
		}
	}
	return out
}

// ControlFor returns the control bound to action a.
func ControlFor(controls []Control, a ActionType) (Control, bool) {
	for _, c := range controls {
		if c.Action == a {
			return c, true
		}
	}
	return Control{}, false
}
