package tactics

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// Describe returns a one-line label for the content of p, "" for open floor
// and off-map points.
func Describe(s *battle.Session, p grid.Point) string {
	cell, ok := s.Map.Cell(p)
	if !ok {
		return ""
	}
	switch cell.Occupant.Kind {
	case grid.Exit:
		return "exit"
	case grid.Obstacle:
		return fmt.Sprintf("obstacle (%d rounds)", cell.Lifetime)
	case grid.Player, grid.Enemy:
		roster := s.Party.Members
		if cell.Occupant.Kind == grid.Enemy {
			roster = s.Opponents.Members
		}
		c, ok := roster.Get(cell.Occupant.ID)
		if !ok {
			return cell.Occupant.Kind.String()
		}
		label := fmt.Sprintf("%s %d/%d", c.Name, c.Health, c.MaxHealth)
		if flags := c.Status.Flags(); len(flags) > 0 {
			names := make([]string, len(flags))
			for i, f := range flags {
				names[i] = string(f)
			}
			label += " [" + strings.Join(names, ",") + "]"
		}
		return label
	}
	if !cell.Passable {
		return "wall"
	}
	return ""
}
