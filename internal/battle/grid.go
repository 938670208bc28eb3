package battle

import (
	"fmt"
	"strings"
)

// Position is an integer grid coordinate.
type Position struct {
	X, Y int
}

// Pos is shorthand for Position{x, y}.
func Pos(x, y int) Position { return Position{X: x, Y: y} }

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Add returns p offset by d.
func (p Position) Add(d Position) Position { return Position{p.X + d.X, p.Y + d.Y} }

// Manhattan returns the orthogonal step distance between two positions.
func Manhattan(a, b Position) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y)
}

// orthogonal neighbour offsets: E, W, S, N. The order is fixed so searches
// break ties the same way every run.
var orthogonal = [4]Position{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// TileKind identifies the surface of a grid cell.
type TileKind uint8

const (
	TileFloor  TileKind = iota // open ground
	TileGrass                  // open ground, cosmetic variant
	TileRubble                 // passable debris
	TileWall                   // solid, blocks movement and sight
	TileWater                  // deep water, blocks movement and sight
	TilePillar                 // structural column
	tileKindCount
)

// tileWalkable returns true if a unit may stand on the tile.
func tileWalkable(k TileKind) bool {
	switch k {
	case TileFloor, TileGrass, TileRubble:
		return true
	default:
		return false
	}
}

func (k TileKind) String() string {
	switch k {
	case TileFloor:
		return "floor"
	case TileGrass:
		return "grass"
	case TileRubble:
		return "rubble"
	case TileWall:
		return "wall"
	case TileWater:
		return "water"
	case TilePillar:
		return "pillar"
	default:
		return "unknown"
	}
}

// tileGlyphs maps layout characters to tiles for ParseGrid.
var tileGlyphs = map[rune]TileKind{
	'.': TileFloor,
	',': TileGrass,
	':': TileRubble,
	'#': TileWall,
	'~': TileWater,
	'O': TilePillar,
}

// Terrain is the read-only view the spatial queries need.
type Terrain interface {
	InBounds(p Position) bool
	IsWalkable(p Position) bool
}

// Grid is a fixed-size tile map. It is not modified after construction.
type Grid struct {
	width  int
	height int
	tiles  []TileKind
}

// NewGrid creates a width×height grid of floor tiles.
func NewGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		tiles:  make([]TileKind, width*height),
	}
}

// ParseGrid builds a grid from rows of glyphs:
//
//	. floor   , grass   : rubble
//	# wall    ~ water   O pillar
//
// Digits and letters other than O are treated as floor so layouts can carry
// spawn markers; use Spawns to read them back.
func ParseGrid(layout string) (*Grid, error) {
	rows := layoutRows(layout)
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty grid layout")
	}
	w := len([]rune(rows[0]))
	g := NewGrid(w, len(rows))
	for y, row := range rows {
		runes := []rune(row)
		if len(runes) != w {
			return nil, fmt.Errorf("row %d has width %d, expected %d", y, len(runes), w)
		}
		for x, r := range runes {
			k, ok := tileGlyphs[r]
			if !ok {
				if isSpawnGlyph(r) {
					k = TileFloor
				} else {
					return nil, fmt.Errorf("unknown glyph %q at (%d,%d)", r, x, y)
				}
			}
			g.tiles[y*w+x] = k
		}
	}
	return g, nil
}

// Spawns returns the positions of every spawn glyph in a layout, keyed by
// the glyph.
func Spawns(layout string) map[rune][]Position {
	out := make(map[rune][]Position)
	for y, row := range layoutRows(layout) {
		for x, r := range []rune(row) {
			if isSpawnGlyph(r) {
				out[r] = append(out[r], Pos(x, y))
			}
		}
	}
	return out
}

func isSpawnGlyph(r rune) bool {
	if r == 'O' {
		return false
	}
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func layoutRows(layout string) []string {
	var rows []string
	for _, line := range strings.Split(layout, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			rows = append(rows, line)
		}
	}
	return rows
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether p lies on the grid.
func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

// Tile returns the tile at p. Out-of-bounds positions read as walls.
func (g *Grid) Tile(p Position) TileKind {
	if !g.InBounds(p) {
		return TileWall
	}
	return g.tiles[p.Y*g.width+p.X]
}

// IsWalkable reports whether a unit may stand on p. Out of bounds is never
// walkable.
func (g *Grid) IsWalkable(p Position) bool {
	return g.InBounds(p) && tileWalkable(g.tiles[p.Y*g.width+p.X])
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
