package grid

import "fmt"

// Layout glyphs accepted by ParseLayout.
const (
	GlyphFloor        = '.'
	GlyphWall         = '#'
	GlyphExit         = 'X'
	GlyphOrigin       = 'o'
	GlyphSpawn        = 's'
	GlyphAwayPlayer   = 'a'
	GlyphAwayOpponent = 'b'
	GlyphSurvivor     = 'v'
	GlyphObstacle     = '%'
)

// ParseLayout builds a Map from equal-length ASCII rows.
// Placement pools are filled in row-major order; obstacles start with
// obstacleLifetime rounds (minimum 1).
//
// Precondition: rows must be non-empty and rectangular.
// Postcondition: Returns a Map or an error naming the first bad glyph.
func ParseLayout(rows []string, obstacleLifetime int) (*Map, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("grid: layout must not be empty")
	}
	if obstacleLifetime < 1 {
		obstacleLifetime = 1
	}
	width := len(rows[0])
	m, err := New(width, len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("grid: layout row %d has width %d, want %d", y, len(row), width)
		}
		for x := 0; x < width; x++ {
			p := Point{X: x, Y: y}
			switch row[x] {
			case GlyphFloor:
			case GlyphWall:
				m.SetPassable(p, false)
			case GlyphExit:
				m.SetExit(p)
			case GlyphOrigin:
				m.Origins = append(m.Origins, p)
			case GlyphSpawn:
				m.Spawns = append(m.Spawns, p)
			case GlyphAwayPlayer:
				m.AwayPlayers = append(m.AwayPlayers, p)
			case GlyphAwayOpponent:
				m.AwayOpponents = append(m.AwayOpponents, p)
			case GlyphSurvivor:
				m.Survivors = append(m.Survivors, p)
			case GlyphObstacle:
				m.PutObstacle(p, obstacleLifetime)
			default:
				return nil, fmt.Errorf("grid: unknown layout glyph %q at %s", row[x], p)
			}
		}
	}
	return m, nil
}
