package skirmish

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/colornames"

	"github.com/Garsondee/grid-tactics/internal/battle"
	"github.com/Garsondee/grid-tactics/internal/logging"
	"github.com/Garsondee/grid-tactics/internal/scenario"
)

func TestBoard_CellAt(t *testing.T) {
	b := board{offX: 24, offY: 24, cell: 32, w: 10, h: 7}
	cases := []struct {
		x, y int
		want battle.Position
		ok   bool
	}{
		{24, 24, battle.Pos(0, 0), true},
		{55, 55, battle.Pos(0, 0), true},
		{56, 24, battle.Pos(1, 0), true},
		{24 + 9*32 + 31, 24 + 6*32, battle.Pos(9, 6), true},
		{23, 30, battle.Position{}, false},
		{24 + 10*32, 30, battle.Position{}, false},
		{30, 24 + 7*32, battle.Position{}, false},
	}
	for _, c := range cases {
		got, ok := b.cellAt(c.x, c.y)
		if ok != c.ok || got != c.want {
			t.Fatalf("cellAt(%d,%d) = %s %v, want %s %v", c.x, c.y, got, ok, c.want, c.ok)
		}
	}
	if x, y := b.center(battle.Pos(1, 2)); x != 24+32+16 || y != 24+64+16 {
		t.Fatalf("center of (1,2) = %v,%v", x, y)
	}
}

func TestWithAlpha_Premultiplies(t *testing.T) {
	c := withAlpha(colornames.White, 128)
	if c.A != 128 || c.R != 128 || c.G != 128 || c.B != 128 {
		t.Fatalf("white at half opacity should be 128 across, got %+v", c)
	}
	if withAlpha(colornames.Red, 255) != colornames.Red {
		t.Fatal("full opacity leaves the colour unchanged")
	}
}

func TestKeyEdges_FireOncePerPress(t *testing.T) {
	k := newKeyEdges()
	if !k.observe(ebiten.KeyM, true) {
		t.Fatal("first frame down is a press")
	}
	k.flip()
	if k.observe(ebiten.KeyM, true) {
		t.Fatal("held key must not fire again")
	}
	k.flip()
	k.observe(ebiten.KeyM, false)
	k.flip()
	if !k.observe(ebiten.KeyM, true) {
		t.Fatal("release then press fires again")
	}
}

func TestCommandKeys_Unique(t *testing.T) {
	seen := map[ebiten.Key]bool{}
	for _, ck := range commandKeys {
		if seen[ck.key] || ck.key == ebiten.KeyC {
			t.Fatalf("key %v bound twice", ck.key)
		}
		seen[ck.key] = true
	}
}

func TestTileColors_CoverEveryTile(t *testing.T) {
	for _, k := range []battle.TileKind{battle.TileFloor, battle.TileGrass, battle.TileRubble, battle.TileWall, battle.TileWater, battle.TilePillar} {
		if tileColor(k) == colornames.Magenta {
			t.Fatalf("%s has no colour", k)
		}
	}
}

func TestNew_WindowFitsGrid(t *testing.T) {
	b, err := scenario.Build(scenario.Setup{Layout: scenario.DefaultLayout})
	if err != nil {
		t.Fatal(err)
	}
	g := New(b, 40, logging.Nop())
	w, h := g.WindowSize()
	if w != 2*borderWidth+10*40+panelWidth {
		t.Fatalf("unexpected width %d", w)
	}
	if h < 2*borderWidth+7*40 {
		t.Fatalf("height %d too small for the grid", h)
	}
	if lw, lh := g.Layout(0, 0); lw != w || lh != h {
		t.Fatal("layout should match the window size")
	}
}
