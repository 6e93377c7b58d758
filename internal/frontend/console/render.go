package console

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/frontend/telnet"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/tactics"
)

// Map glyphs.
const (
	glyphFloor    = '.'
	glyphWall     = '#'
	glyphExit     = 'X'
	glyphObstacle = '%'
	glyphPlayer   = '@'
	glyphEnemy    = '&'
)

// PlayerGlyph returns the map glyph of party member id: 1-9, then '@'.
func PlayerGlyph(id int) rune {
	if id >= 0 && id < 9 {
		return rune('1' + id)
	}
	return glyphPlayer
}

// EnemyGlyph returns the map glyph of opponent id: a-z, then '&'.
func EnemyGlyph(id int) rune {
	if id >= 0 && id < 26 {
		return rune('a' + id)
	}
	return glyphEnemy
}

// Render draws the visible part of v.Map with coordinate rulers, followed by
// the hover preview, a roster legend and the action menu.
//
// Postcondition: with color false the result contains no escape sequences.
func Render(v tactics.View, color bool) []string {
	paint := func(c, s string) string {
		if !color || c == "" {
			return s
		}
		return telnet.Colorize(c, s)
	}

	var out []string
	if v.Title != "" {
		out = append(out, paint(telnet.Bold, v.Title))
	}
	if v.Map == nil {
		return out
	}
	m := v.Map
	view := m.View

	var ruler strings.Builder
	ruler.WriteString("    ")
	for x := view.X; x < view.X+view.Width; x++ {
		fmt.Fprintf(&ruler, "%d", x%10)
	}
	out = append(out, paint(telnet.Dim, ruler.String()))

	for y := view.Y; y < view.Y+view.Height; y++ {
		var row strings.Builder
		row.WriteString(paint(telnet.Dim, fmt.Sprintf("%3d ", y)))
		for x := view.X; x < view.X+view.Width; x++ {
			p := grid.Point{X: x, Y: y}
			glyph, c := cellGlyph(m, p)
			if mark, ok := v.Marks[p]; ok && mark != "" {
				glyph, c = []rune(mark)[0], telnet.Yellow
			}
			text := paint(c, string(glyph))
			if p == v.Cursor && color {
				text = telnet.Colorize(telnet.Reverse, string(glyph))
			}
			row.WriteString(text)
		}
		out = append(out, row.String())
	}

	if v.Preview != "" {
		out = append(out, paint(telnet.BrightCyan, v.Preview))
	}
	out = append(out, legend(m, v.Players, grid.Player, PlayerGlyph, paint, telnet.Green)...)
	out = append(out, legend(m, v.Opponents, grid.Enemy, EnemyGlyph, paint, telnet.Red)...)

	if len(v.Controls) > 0 {
		items := make([]string, len(v.Controls))
		for i, c := range v.Controls {
			items[i] = fmt.Sprintf("%d) %s", i+1, c.Action)
		}
		out = append(out, paint(telnet.Bold, "Actions: ")+strings.Join(items, "  "))
	}
	return out
}

func cellGlyph(m *grid.Map, p grid.Point) (rune, string) {
	cell, ok := m.Cell(p)
	if !ok {
		return ' ', ""
	}
	switch cell.Occupant.Kind {
	case grid.Player:
		return PlayerGlyph(cell.Occupant.ID), telnet.Green
	case grid.Enemy:
		return EnemyGlyph(cell.Occupant.ID), telnet.Red
	case grid.Exit:
		return glyphExit, telnet.Cyan
	case grid.Obstacle:
		return glyphObstacle, telnet.Magenta
	}
	if !cell.Passable {
		return glyphWall, telnet.BrightBlack
	}
	return glyphFloor, ""
}

func legend(m *grid.Map, roster combat.Roster, kind grid.Kind, glyph func(int) rune, paint func(c, s string) string, c string) []string {
	var out []string
	for i := range roster {
		at := m.Find(kind, i)
		if at.IsNone() {
			continue
		}
		member := roster[i]
		line := fmt.Sprintf("%s %s %d/%d at %s", paint(c, string(glyph(i))), member.Name, member.Health, member.MaxHealth, at)
		if flags := member.Status.Flags(); len(flags) > 0 {
			names := make([]string, len(flags))
			for j, f := range flags {
				names[j] = string(f)
			}
			line += " [" + strings.Join(names, ",") + "]"
		}
		out = append(out, line)
	}
	return out
}
