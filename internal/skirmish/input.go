package skirmish

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/grid-tactics/internal/battle"
	"github.com/Garsondee/grid-tactics/internal/turn"
)

// commandKeys maps keyboard keys to human strategy commands.
var commandKeys = []struct {
	key ebiten.Key
	cmd turn.Command
}{
	{ebiten.KeyM, turn.CmdMove},
	{ebiten.KeyA, turn.CmdAttack},
	{ebiten.KeyEscape, turn.CmdCancel},
	{ebiten.KeyE, turn.CmdEndTurn},
	{ebiten.KeyD, turn.CmdDelay},
	{ebiten.KeyR, turn.CmdResetMove},
}

// board converts between screen pixels and grid cells.
type board struct {
	offX, offY int
	cell       int
	w, h       int
}

// cellAt returns the grid cell under pixel (x, y).
func (b board) cellAt(x, y int) (battle.Position, bool) {
	if x < b.offX || y < b.offY {
		return battle.Position{}, false
	}
	p := battle.Pos((x-b.offX)/b.cell, (y-b.offY)/b.cell)
	if p.X >= b.w || p.Y >= b.h {
		return battle.Position{}, false
	}
	return p, true
}

// origin returns the top-left pixel of cell p.
func (b board) origin(p battle.Position) (float32, float32) {
	return float32(b.offX + p.X*b.cell), float32(b.offY + p.Y*b.cell)
}

// center returns the centre pixel of cell p.
func (b board) center(p battle.Position) (float32, float32) {
	x, y := b.origin(p)
	half := float32(b.cell) / 2
	return x + half, y + half
}

// keyEdges tracks key presses between frames so each press fires once.
type keyEdges struct {
	prev map[ebiten.Key]bool
	cur  map[ebiten.Key]bool
}

func newKeyEdges() *keyEdges {
	return &keyEdges{prev: map[ebiten.Key]bool{}, cur: map[ebiten.Key]bool{}}
}

// observe records the state of k this frame and reports a fresh press.
func (k *keyEdges) observe(key ebiten.Key, down bool) bool {
	k.cur[key] = down
	return down && !k.prev[key]
}

// flip ends the frame.
func (k *keyEdges) flip() {
	k.prev, k.cur = k.cur, map[ebiten.Key]bool{}
}
