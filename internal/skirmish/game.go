// Package skirmish is the ebiten window that presents an encounter and
// feeds mouse and keyboard input to human-controlled units.
package skirmish

import (
	"fmt"
	"image/color"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"

	"github.com/Garsondee/grid-tactics/internal/battle"
	"github.com/Garsondee/grid-tactics/internal/scenario"
	"github.com/Garsondee/grid-tactics/internal/turn"
	"github.com/Garsondee/grid-tactics/internal/unit"
)

// borderWidth is the pixel gap between the window edge and the grid.
const borderWidth = 24

// panelWidth is the width of the log panel right of the grid.
const panelWidth = 420

// logLines is how many combat log lines the panel shows.
const logLines = 24

// Game implements ebiten.Game over one assembled battle.
type Game struct {
	battle *scenario.Battle
	board  board
	log    zerolog.Logger

	keys          *keyEdges
	prevMouseLeft bool
	hover         battle.Position
	hasHover      bool
	status        string // transient HUD message, e.g. clipboard result

	// OnFinish is called once when the encounter reaches an outcome.
	OnFinish func(turn.Outcome)
	finished bool
}

// New wraps b for display with cells of cellSize pixels.
func New(b *scenario.Battle, cellSize int, log zerolog.Logger) *Game {
	return &Game{
		battle: b,
		board: board{
			offX: borderWidth, offY: borderWidth, cell: cellSize,
			w: b.Grid.Width(), h: b.Grid.Height(),
		},
		log:  log.With().Str("component", "skirmish").Logger(),
		keys: newKeyEdges(),
	}
}

// WindowSize returns the window size that fits the grid and the log panel.
func (g *Game) WindowSize() (int, int) {
	w := 2*borderWidth + g.board.w*g.board.cell + panelWidth
	h := 2*borderWidth + g.board.h*g.board.cell
	if minH := 2*borderWidth + (logLines+8)*16; h < minH {
		h = minH
	}
	return w, h
}

// Update handles input then advances the encounter one frame.
func (g *Game) Update() error {
	g.handleInput()

	dt := time.Second / time.Duration(ebiten.TPS())
	g.battle.Encounter.Update(dt)

	if out := g.battle.Encounter.Outcome(); out != turn.OutcomeOngoing && !g.finished {
		g.finished = true
		g.log.Info().Str("outcome", out.String()).Int("rounds", g.battle.Encounter.Round()).Msg("Encounter finished")
		if g.OnFinish != nil {
			g.OnFinish(out)
		}
	}
	return nil
}

// activeHuman returns the human strategy whose turn it is, if any.
func (g *Game) activeHuman() *turn.HumanStrategy {
	h, ok := g.battle.Encounter.Active()
	if !ok {
		return nil
	}
	return g.battle.Humans[h]
}

func (g *Game) handleInput() {
	hs := g.activeHuman()

	mx, my := ebiten.CursorPosition()
	cell, onGrid := g.board.cellAt(mx, my)
	if onGrid && (!g.hasHover || cell != g.hover) && hs != nil {
		hs.Hover(cell)
	}
	g.hover, g.hasHover = cell, onGrid

	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if left && !g.prevMouseLeft && onGrid && hs != nil {
		hs.Click(cell)
	}
	g.prevMouseLeft = left

	for _, ck := range commandKeys {
		if g.keys.observe(ck.key, ebiten.IsKeyPressed(ck.key)) && hs != nil {
			hs.Command(ck.cmd)
		}
	}

	// C: copy the combat log for bug reports.
	if g.keys.observe(ebiten.KeyC, ebiten.IsKeyPressed(ebiten.KeyC)) {
		g.copyLog()
	}
	g.keys.flip()
}

func (g *Game) copyLog() {
	text := g.battle.CombatLog.Format()
	if err := clipboard.WriteAll(text); err != nil {
		g.log.Warn().Err(err).Msg("Failed to copy combat log")
		g.status = "clipboard unavailable"
		return
	}
	g.status = fmt.Sprintf("copied %d log lines", g.battle.CombatLog.Len())
}

// Draw renders the grid, overlays, units and the side panel.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	g.drawTiles(screen)
	g.drawOverlays(screen)
	g.drawUnits(screen)
	g.drawPanel(screen)
}

func (g *Game) drawTiles(screen *ebiten.Image) {
	cs := float32(g.board.cell)
	for y := 0; y < g.board.h; y++ {
		for x := 0; x < g.board.w; x++ {
			p := battle.Pos(x, y)
			ox, oy := g.board.origin(p)
			vector.FillRect(screen, ox, oy, cs, cs, tileColor(g.battle.Grid.Tile(p)), false)
			vector.StrokeRect(screen, ox, oy, cs, cs, 1.0, gridLine, false)
		}
	}
}

func (g *Game) fillCell(screen *ebiten.Image, p battle.Position, c color.Color) {
	ox, oy := g.board.origin(p)
	cs := float32(g.board.cell)
	vector.FillRect(screen, ox+1, oy+1, cs-2, cs-2, c, false)
}

func (g *Game) drawOverlays(screen *ebiten.Image) {
	hs := g.activeHuman()
	if hs == nil {
		return
	}
	switch hs.Mode() {
	case turn.ModeMoveSelection:
		for _, p := range hs.MovementRange() {
			g.fillCell(screen, p, moveOverlay)
		}
		for _, p := range hs.HoverPath() {
			g.fillCell(screen, p, pathOverlay)
		}
	case turn.ModeAttackSelection:
		area := hs.AttackArea()
		if area == nil {
			return
		}
		for _, p := range area.InRange {
			g.fillCell(screen, p, rangeOverlay)
		}
		for _, p := range area.Blocked {
			g.fillCell(screen, p, blockedOverlay)
		}
		for _, p := range area.ValidTargets {
			g.fillCell(screen, p, targetOverlay)
		}
	}
}

func (g *Game) drawUnits(screen *ebiten.Image) {
	b := g.battle
	active, _ := b.Encounter.Active()
	var selected unit.Handle
	if hs := g.activeHuman(); hs != nil {
		selected, _ = hs.TargetedUnit()
	}
	radius := float32(g.board.cell) * 0.35

	for _, h := range b.Manifest.Handles() {
		u := b.Arena.Unit(h)
		p, err := b.Manifest.PositionOf(h)
		if u == nil || err != nil {
			continue
		}
		cx, cy := g.board.center(p)
		col := enemyColor
		switch {
		case u.IsKnockedOut():
			col = downedColor
		case u.PlayerControlled:
			col = playerColor
		}
		vector.FillCircle(screen, cx, cy, radius, col, true)
		if h == active {
			vector.StrokeCircle(screen, cx, cy, radius+3, 2, activeRing, true)
		} else if h == selected {
			vector.StrokeCircle(screen, cx, cy, radius+3, 2, selectedRing, true)
		}

		// Health bar under the token.
		cs := float32(g.board.cell)
		ox, oy := g.board.origin(p)
		frac := float32(0)
		if m := u.MaxHealth(); m > 0 {
			frac = float32(u.Health()) / float32(m)
		}
		vector.FillRect(screen, ox+4, oy+cs-6, (cs-8)*frac, 3, col, false)
	}
}

func (g *Game) drawPanel(screen *ebiten.Image) {
	b := g.battle
	px := 2*borderWidth + g.board.w*g.board.cell
	_, h := g.WindowSize()
	vector.FillRect(screen, float32(px), 0, panelWidth, float32(h), hudPanel, false)

	y := borderWidth
	line := func(s string) {
		ebitenutil.DebugPrintAt(screen, s, px+10, y)
		y += 16
	}

	line(fmt.Sprintf("round %d  turn %d  %s", b.Encounter.Round(), b.Encounter.Turns(), b.Encounter.Outcome()))
	if h, ok := b.Encounter.Active(); ok {
		u := b.Arena.Unit(h)
		st := b.Encounter.TurnState()
		line(fmt.Sprintf("%s  hp %d/%d  moved=%t acted=%t", u.Name, u.Health(), u.MaxHealth(), st.Moved, st.Acted))
		if hs := g.activeHuman(); hs != nil {
			line(fmt.Sprintf("mode: %s", hs.Mode()))
		}
	}
	if g.hasHover {
		line(fmt.Sprintf("cell %s %s", g.hover, b.Grid.Tile(g.hover)))
	}
	line("M move  A attack  R reset  D delay  E end  Esc cancel  C copy log")
	if g.status != "" {
		line(g.status)
	}
	y += 8
	for _, l := range b.CombatLog.Tail(logLines) {
		line(l)
	}
}

// Layout reports the fixed logical screen size.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.WindowSize()
}
