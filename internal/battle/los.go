package battle

// BresenhamLine returns every cell on the integer line from a to b,
// both endpoints included.
func BresenhamLine(a, b Position) []Position {
	dx := absInt(b.X - a.X)
	dy := absInt(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx - dy

	cells := make([]Position, 0, max(dx, dy)+1)
	x, y := a.X, a.Y
	for {
		cells = append(cells, Position{x, y})
		if x == b.X && y == b.Y {
			return cells
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

// HasLineOfSight reports whether nothing stands between from and to.
// Interior cells block when they are off the grid, not walkable, or hold a
// unit that is still up. Knocked-out units never block. The endpoints are
// not tested.
func HasLineOfSight(t Terrain, m *Manifest, from, to Position) bool {
	line := BresenhamLine(from, to)
	if len(line) <= 2 {
		return true
	}
	for _, c := range line[1 : len(line)-1] {
		if !t.InBounds(c) || !t.IsWalkable(c) {
			return false
		}
		if m.activeAt(c) {
			return false
		}
	}
	return true
}
