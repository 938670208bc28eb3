package skirmish

import (
	"image/color"

	"golang.org/x/image/colornames"

	"github.com/Garsondee/grid-tactics/internal/battle"
)

// tileColors maps each tile kind to its fill.
var tileColors = map[battle.TileKind]color.RGBA{
	battle.TileFloor:  colornames.Darkslategray,
	battle.TileGrass:  colornames.Darkolivegreen,
	battle.TileRubble: colornames.Sienna,
	battle.TileWall:   colornames.Dimgray,
	battle.TileWater:  colornames.Steelblue,
	battle.TilePillar: colornames.Slategray,
}

var (
	background   = color.RGBA{R: 12, G: 14, B: 12, A: 255}
	gridLine     = withAlpha(colornames.Black, 90)
	playerColor  = colornames.Royalblue
	enemyColor   = colornames.Crimson
	downedColor  = colornames.Gray
	activeRing   = colornames.White
	selectedRing = colornames.Gold

	moveOverlay    = withAlpha(colornames.Cornflowerblue, 90)
	pathOverlay    = withAlpha(colornames.Gold, 140)
	rangeOverlay   = withAlpha(colornames.Orange, 70)
	blockedOverlay = withAlpha(colornames.Darkred, 110)
	targetOverlay  = withAlpha(colornames.Red, 150)
	hudPanel       = color.RGBA{R: 10, G: 10, B: 14, A: 210}
)

// withAlpha returns c at opacity a. color.RGBA is alpha-premultiplied, so
// the channels scale with it.
func withAlpha(c color.RGBA, a uint8) color.RGBA {
	scale := func(v uint8) uint8 { return uint8(uint16(v) * uint16(a) / 255) }
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: a}
}

func tileColor(k battle.TileKind) color.RGBA {
	if c, ok := tileColors[k]; ok {
		return c
	}
	return colornames.Magenta
}
