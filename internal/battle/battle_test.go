package battle

import (
	"errors"
	"testing"

	"github.com/Garsondee/grid-tactics/internal/unit"
)

// --- Helpers ---

type board struct {
	grid  *Grid
	arena *unit.Arena
	man   *Manifest
}

func newBoard(t *testing.T, layout string) *board {
	t.Helper()
	g, err := ParseGrid(layout)
	if err != nil {
		t.Fatalf("parse grid: %v", err)
	}
	a := unit.NewArena()
	return &board{grid: g, arena: a, man: NewManifest(a)}
}

func (b *board) place(t *testing.T, name string, player bool, p Position) unit.Handle {
	t.Helper()
	u := unit.NewHumanoid(name, nil, player)
	u.SetBase(unit.StatMaxHealth, 10)
	u.SetBase(unit.StatMovement, 4)
	h := b.arena.Add(u)
	if err := b.man.Place(b.grid, h, p); err != nil {
		t.Fatalf("place %s: %v", name, err)
	}
	return h
}

func (b *board) knockOut(h unit.Handle) {
	u := b.arena.Unit(h)
	u.TakeDamage(u.MaxHealth())
}

func has(ps []Position, p Position) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}

const corridor = `
#######
#######
#######
#.....#
#######
#######
#######
`

const openField = `
.......
.......
.......
.......
.......
.......
.......
`

// --- Grid ---

func TestParseGrid_GlyphsAndSpawns(t *testing.T) {
	layout := `
#1..
.~O2
`
	g, err := ParseGrid(layout)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if g.Width() != 4 || g.Height() != 2 {
		t.Fatalf("size %dx%d", g.Width(), g.Height())
	}
	if g.IsWalkable(Pos(0, 0)) || g.IsWalkable(Pos(1, 1)) || g.IsWalkable(Pos(2, 1)) {
		t.Fatal("wall, water and pillar must not be walkable")
	}
	if !g.IsWalkable(Pos(1, 0)) {
		t.Fatal("spawn glyph should parse as floor")
	}
	sp := Spawns(layout)
	if len(sp['1']) != 1 || sp['1'][0] != Pos(1, 0) || sp['2'][0] != Pos(3, 1) {
		t.Fatalf("spawns: %v", sp)
	}
	if _, ok := sp['O']; ok {
		t.Fatal("pillar glyph is not a spawn")
	}
}

func TestParseGrid_RaggedRows(t *testing.T) {
	if _, err := ParseGrid("...\n.."); err == nil {
		t.Fatal("ragged layout should fail")
	}
}

func TestGrid_OutOfBoundsIsWall(t *testing.T) {
	g := NewGrid(2, 2)
	if g.IsWalkable(Pos(-1, 0)) || g.Tile(Pos(5, 5)) != TileWall {
		t.Fatal("out of bounds should read as an unwalkable wall")
	}
}

// --- Manifest ---

func TestManifest_AddMoveRemove(t *testing.T) {
	b := newBoard(t, openField)
	h := b.place(t, "a", true, Pos(1, 1))
	other := b.place(t, "b", false, Pos(2, 2))

	if err := b.man.Move(h, Pos(2, 2)); !errors.Is(err, ErrCellOccupied) {
		t.Fatalf("expected ErrCellOccupied, got %v", err)
	}
	if err := b.man.Move(h, Pos(3, 1)); err != nil {
		t.Fatalf("move: %v", err)
	}
	if _, ok := b.man.UnitAt(Pos(1, 1)); ok {
		t.Fatal("old cell should be vacated")
	}
	if got, _ := b.man.UnitAt(Pos(3, 1)); got != h {
		t.Fatalf("cell index out of sync: %d", got)
	}
	if err := b.man.Add(h, Pos(5, 5)); !errors.Is(err, ErrAlreadyPlaced) {
		t.Fatalf("expected ErrAlreadyPlaced, got %v", err)
	}
	if err := b.man.Remove(other); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := b.man.PositionOf(other); !errors.Is(err, ErrUnitNotInManifest) {
		t.Fatalf("expected ErrUnitNotInManifest, got %v", err)
	}
	if b.man.Len() != 1 {
		t.Fatalf("len=%d", b.man.Len())
	}
}

func TestManifest_PlaceRejectsWalls(t *testing.T) {
	b := newBoard(t, corridor)
	h := b.arena.Add(unit.NewHumanoid("x", nil, true))
	if err := b.man.Place(b.grid, h, Pos(0, 0)); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if err := b.man.Add(unit.Handle(99), Pos(1, 3)); !errors.Is(err, ErrUnknownUnit) {
		t.Fatalf("expected ErrUnknownUnit, got %v", err)
	}
}

// --- Movement ---

func TestMovementRange_CorridorEnemyBlocks(t *testing.T) {
	b := newBoard(t, corridor)
	mover := b.place(t, "hero", true, Pos(1, 3))
	enemy := b.place(t, "brute", false, Pos(2, 3))

	cells := MovementRange(b.grid, b.man, mover, Pos(1, 3), 5)
	if has(cells, Pos(3, 3)) {
		t.Fatal("(3,3) is behind the enemy and must be unreachable")
	}
	if len(cells) != 0 {
		t.Fatalf("nothing should be reachable, got %v", cells)
	}
	if p := FindPath(b.grid, b.man, mover, Pos(1, 3), Pos(4, 3), 5); len(p) != 0 {
		t.Fatalf("path should be empty, got %v", p)
	}

	b.knockOut(enemy)
	cells = MovementRange(b.grid, b.man, mover, Pos(1, 3), 5)
	if !has(cells, Pos(4, 3)) {
		t.Fatalf("(4,3) should be reachable past the knocked-out enemy: %v", cells)
	}
	if has(cells, Pos(2, 3)) {
		t.Fatal("a knocked-out unit still occupies its cell")
	}
	p := FindPath(b.grid, b.man, mover, Pos(1, 3), Pos(4, 3), 5)
	if len(p) != 3 {
		t.Fatalf("expected path length 3, got %v", p)
	}
	if p[len(p)-1] != Pos(4, 3) {
		t.Fatalf("path must end on the destination: %v", p)
	}
}

func TestMovementRange_AllyPassThrough(t *testing.T) {
	b := newBoard(t, corridor)
	mover := b.place(t, "hero", true, Pos(1, 3))
	b.place(t, "friend", true, Pos(2, 3))

	cells := MovementRange(b.grid, b.man, mover, Pos(1, 3), 3)
	if has(cells, Pos(2, 3)) {
		t.Fatal("cannot stop on an ally")
	}
	if !has(cells, Pos(3, 3)) || !has(cells, Pos(4, 3)) {
		t.Fatalf("should pass through ally: %v", cells)
	}
	if has(cells, Pos(5, 3)) {
		t.Fatal("(5,3) is 4 steps away with budget 3")
	}
	if p := FindPath(b.grid, b.man, mover, Pos(1, 3), Pos(2, 3), 3); len(p) != 0 {
		t.Fatal("path onto an ally should be empty")
	}
}

func TestMovementRange_ExcludesStartAndIsSorted(t *testing.T) {
	b := newBoard(t, openField)
	mover := b.place(t, "hero", true, Pos(3, 3))
	cells := MovementRange(b.grid, b.man, mover, Pos(3, 3), 2)
	if has(cells, Pos(3, 3)) {
		t.Fatal("start cell must be excluded")
	}
	// diamond of radius 2 minus centre
	if len(cells) != 12 {
		t.Fatalf("expected 12 cells, got %d", len(cells))
	}
	for i := 1; i < len(cells); i++ {
		a, c := cells[i-1], cells[i]
		if a.Y > c.Y || (a.Y == c.Y && a.X >= c.X) {
			t.Fatalf("not row-major sorted at %d: %v", i, cells)
		}
	}
	if len(MovementRange(b.grid, b.man, mover, Pos(3, 3), 0)) != 0 {
		t.Fatal("zero budget reaches nothing")
	}
}

func TestMovementRange_EveryCellHasPathWithinBudget(t *testing.T) {
	layout := `
.......
.#.#...
.#.##..
...#...
.#.....
`
	b := newBoard(t, layout)
	mover := b.place(t, "hero", true, Pos(0, 0))
	b.place(t, "friend", true, Pos(2, 3))
	b.place(t, "foe", false, Pos(4, 4))
	ko := b.place(t, "fallen", false, Pos(5, 3))
	b.knockOut(ko)

	for budget := 0; budget <= 8; budget++ {
		cells := MovementRange(b.grid, b.man, mover, Pos(0, 0), budget)
		paths := PathsFrom(b.grid, b.man, mover, Pos(0, 0), budget)
		if len(paths) != len(cells) {
			t.Fatalf("budget %d: %d paths for %d cells", budget, len(paths), len(cells))
		}
		for _, c := range cells {
			p := FindPath(b.grid, b.man, mover, Pos(0, 0), c, budget)
			if len(p) == 0 || len(p) > budget {
				t.Fatalf("budget %d: cell %s has path %v", budget, c, p)
			}
			if len(paths[c]) != len(p) {
				t.Fatalf("budget %d: PathsFrom length %d, FindPath %d for %s", budget, len(paths[c]), len(p), c)
			}
		}
	}
}

func TestFindPath_SameCellIsEmpty(t *testing.T) {
	b := newBoard(t, openField)
	mover := b.place(t, "hero", true, Pos(1, 1))
	if p := FindPath(b.grid, b.man, mover, Pos(1, 1), Pos(1, 1), 5); len(p) != 0 {
		t.Fatalf("expected empty path, got %v", p)
	}
}

func TestFindPath_Deterministic(t *testing.T) {
	b := newBoard(t, openField)
	mover := b.place(t, "hero", true, Pos(0, 0))
	first := FindPath(b.grid, b.man, mover, Pos(0, 0), Pos(3, 3), 6)
	for i := 0; i < 10; i++ {
		again := FindPath(b.grid, b.man, mover, Pos(0, 0), Pos(3, 3), 6)
		if len(again) != len(first) {
			t.Fatal("path length changed between runs")
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("run %d differs at %d: %v vs %v", i, j, again, first)
			}
		}
	}
	// E first, so the route runs along the top row before turning south.
	if first[0] != Pos(1, 0) {
		t.Fatalf("tie break should step east first, got %v", first)
	}
}

// --- Line of sight ---

func TestBresenhamLine_Endpoints(t *testing.T) {
	line := BresenhamLine(Pos(0, 0), Pos(4, 2))
	if line[0] != Pos(0, 0) || line[len(line)-1] != Pos(4, 2) {
		t.Fatalf("endpoints missing: %v", line)
	}
	if len(line) != 5 {
		t.Fatalf("expected 5 cells, got %v", line)
	}
	if got := BresenhamLine(Pos(2, 2), Pos(2, 2)); len(got) != 1 {
		t.Fatalf("degenerate line: %v", got)
	}
}

func TestLineOfSight_KnockedOutUnitsAreTransparent(t *testing.T) {
	b := newBoard(t, openField)
	from, to := Pos(0, 3), Pos(6, 3)
	var fallen []unit.Handle
	for x := 1; x <= 5; x++ {
		h := b.place(t, "fallen", x%2 == 0, Pos(x, 3))
		b.knockOut(h)
		fallen = append(fallen, h)
	}
	if !HasLineOfSight(b.grid, b.man, from, to) {
		t.Fatal("a row of knocked-out units must not block sight")
	}
	b.arena.Unit(fallen[2]).Heal(1)
	if HasLineOfSight(b.grid, b.man, from, to) {
		t.Fatal("one standing unit on the line must block sight")
	}
}

func TestLineOfSight_EndpointsNotTested(t *testing.T) {
	b := newBoard(t, openField)
	b.place(t, "a", true, Pos(0, 0))
	b.place(t, "b", false, Pos(1, 0))
	if !HasLineOfSight(b.grid, b.man, Pos(0, 0), Pos(1, 0)) {
		t.Fatal("adjacent occupied cells always see each other")
	}
}

func TestLineOfSight_WallsBlock(t *testing.T) {
	b := newBoard(t, `
.....
..#..
.....
`)
	if HasLineOfSight(b.grid, b.man, Pos(0, 1), Pos(4, 1)) {
		t.Fatal("wall in the middle should block")
	}
	if !HasLineOfSight(b.grid, b.man, Pos(0, 0), Pos(4, 0)) {
		t.Fatal("top row is clear")
	}
}

// --- Attack range ---

func TestAttackRange_AdjacentOnly(t *testing.T) {
	b := newBoard(t, openField)
	a := AttackRange(b.grid, b.man, Pos(3, 3), 1, 1)
	if len(a.InRange) != 4 {
		t.Fatalf("range 1-1 should give 4 cells, got %v", a.InRange)
	}
	if a.IsInRange(Pos(3, 3)) {
		t.Fatal("attacker cell outside range 1-1")
	}
	for _, p := range a.InRange {
		if Manhattan(p, Pos(3, 3)) != 1 {
			t.Fatalf("non-adjacent cell %s", p)
		}
	}
}

func TestAttackRange_TargetsAndBlocked(t *testing.T) {
	b := newBoard(t, `
.......
.......
...#...
.......
.......
`)
	b.place(t, "archer", true, Pos(3, 4))
	b.place(t, "friend", true, Pos(2, 4))
	b.place(t, "foe", false, Pos(3, 1))
	fallen := b.place(t, "fallen", false, Pos(5, 4))
	b.knockOut(fallen)

	a := AttackRange(b.grid, b.man, Pos(3, 4), 1, 3)
	if !a.IsValidTarget(Pos(2, 4)) {
		t.Fatal("friendly fire is allowed")
	}
	if a.IsValidTarget(Pos(3, 1)) {
		t.Fatal("foe behind the wall is not targetable")
	}
	if !a.IsBlocked(Pos(3, 1)) || !a.IsBlocked(Pos(3, 2)) {
		t.Fatal("wall cell and the cell behind it should be blocked")
	}
	if a.IsValidTarget(Pos(5, 4)) {
		t.Fatal("knocked-out units are never targets")
	}
	for _, p := range a.ValidTargets {
		if !a.IsInRange(p) || a.IsBlocked(p) {
			t.Fatalf("target %s must be in range and not blocked", p)
		}
	}
	for _, p := range a.Blocked {
		if !a.IsInRange(p) {
			t.Fatalf("blocked %s must be in range", p)
		}
	}
}

func TestAttackRange_ClipsToGrid(t *testing.T) {
	b := newBoard(t, openField)
	a := AttackRange(b.grid, b.man, Pos(0, 0), 2, 3)
	for _, p := range a.InRange {
		if !b.grid.InBounds(p) {
			t.Fatalf("%s is off the grid", p)
		}
		if d := Manhattan(p, Pos(0, 0)); d < 2 || d > 3 {
			t.Fatalf("%s at distance %d", p, d)
		}
	}
	// (2,0) (1,1) (0,2) at 2; (3,0) (2,1) (1,2) (0,3) at 3
	if len(a.InRange) != 7 {
		t.Fatalf("expected 7 cells, got %v", a.InRange)
	}
}

func TestAttackRange_ZeroMinIncludesSelf(t *testing.T) {
	b := newBoard(t, openField)
	b.place(t, "adept", true, Pos(3, 3))
	a := AttackRange(b.grid, b.man, Pos(3, 3), 0, 1)
	if len(a.InRange) != 5 {
		t.Fatalf("range 0-1 should give 5 cells, got %v", a.InRange)
	}
	if !a.IsValidTarget(Pos(3, 3)) {
		t.Fatal("attacker's own cell is a target when range starts at 0")
	}
}
