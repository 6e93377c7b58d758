package grid

// Viewport is the visible window over a possibly larger grid.
type Viewport struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Visible reports whether p lies inside the viewport.
func (v Viewport) Visible(p Point) bool {
	return p.X >= v.X && p.Y >= v.Y && p.X < v.X+v.Width && p.Y < v.Y+v.Height
}

// SetView resizes the viewport, capping it at the grid size, and re-clamps
// the offset.
func (m *Map) SetView(width, height int) {
	if width < 1 || width > m.Width {
		width = m.Width
	}
	if height < 1 || height > m.Height {
		height = m.Height
	}
	m.View.Width = width
	m.View.Height = height
	m.clampView()
}

// Scroll pans the viewport step cells in dir.
//
// Postcondition: View.X in [0, Width-View.Width], View.Y in [0, Height-View.Height].
// Returns true iff the offset changed.
func (m *Map) Scroll(dir Direction, step int) bool {
	if step < 1 {
		step = 1
	}
	before := m.View
	d := dir.Delta()
	m.View.X += d.X * step
	m.View.Y += d.Y * step
	m.clampView()
	return m.View != before
}

// ScrollTo moves the viewport so that p is visible, changing the offset as
// little as possible. Off-grid points are ignored.
func (m *Map) ScrollTo(p Point) {
	if !m.Contains(p) {
		return
	}
	switch {
	case p.X < m.View.X:
		m.View.X = p.X
	case p.X >= m.View.X+m.View.Width:
		m.View.X = p.X - m.View.Width + 1
	}
	switch {
	case p.Y < m.View.Y:
		m.View.Y = p.Y
	case p.Y >= m.View.Y+m.View.Height:
		m.View.Y = p.Y - m.View.Height + 1
	}
	m.clampView()
}

func (m *Map) clampView() {
	m.View.X = clamp(m.View.X, 0, m.Width-m.View.Width)
	m.View.Y = clamp(m.View.Y, 0, m.Height-m.View.Height)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
