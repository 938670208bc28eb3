// Package scenario assembles a ready-to-run encounter from a map layout, a
// catalog line-up and optionally a saved roster. Both the skirmish window
// and the headless runner build their battles here.
package scenario

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Garsondee/grid-tactics/internal/battle"
	"github.com/Garsondee/grid-tactics/internal/catalog"
	"github.com/Garsondee/grid-tactics/internal/turn"
	"github.com/Garsondee/grid-tactics/internal/unit"
)

// RosterSpawn is the map glyph roster members are placed on, in reading
// order.
const RosterSpawn = 'P'

// DefaultLayout is used when no map file is configured. P marks roster
// spawns, A player line-up spawns and e enemy spawns.
const DefaultLayout = `
..........
.A..,,..e.
.P..##..e.
.A..,,..e.
.P..~~..:.
.A......e.
..........
`

// Setup describes one battle.
type Setup struct {
	Layout  string
	Catalog *unit.Catalog
	Lineup  []catalog.UnitDef
	// Roster replaces the player side of the line-up when non-empty.
	Roster []*unit.Unit

	// HumanPlayers puts player units under a HumanStrategy; otherwise both
	// sides are AI-driven.
	HumanPlayers  bool
	Behaviors     []turn.Behavior // default AI priority list
	ThinkingDelay time.Duration
	MaxRounds     int
	Verbose       bool // keep AI decisions in the combat log
	Log           zerolog.Logger
}

// Battle is an assembled encounter and everything hosts need to present it.
type Battle struct {
	Layout    string
	Grid      *battle.Grid
	Arena     *unit.Arena
	Manifest  *battle.Manifest
	Encounter *turn.Encounter
	CombatLog *turn.CombatLog
	Humans    map[unit.Handle]*turn.HumanStrategy
	Names     map[unit.Handle]string
}

// LoadLayout reads a map file; an empty path yields DefaultLayout.
func LoadLayout(path string) (string, error) {
	if path == "" {
		return DefaultLayout, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading map: %w", err)
	}
	return string(b), nil
}

// spawner hands out spawn cells per glyph in reading order.
type spawner struct {
	cells map[rune][]battle.Position
}

func (s *spawner) next(glyph rune) (battle.Position, error) {
	cs := s.cells[glyph]
	if len(cs) == 0 {
		return battle.Position{}, fmt.Errorf("no free %q spawn", glyph)
	}
	s.cells[glyph] = cs[1:]
	return cs[0], nil
}

// Build places every unit and wires strategies. The encounter is not
// started; the first Update does that.
func Build(s Setup) (*Battle, error) {
	g, err := battle.ParseGrid(s.Layout)
	if err != nil {
		return nil, err
	}
	if s.Catalog == nil {
		s.Catalog = unit.NewCatalog()
	}
	behaviors := s.Behaviors
	if behaviors == nil {
		behaviors = turn.DefaultBehaviors()
	}

	b := &Battle{
		Layout:    s.Layout,
		Grid:      g,
		Arena:     unit.NewArena(),
		CombatLog: turn.NewCombatLog(s.Verbose),
		Humans:    make(map[unit.Handle]*turn.HumanStrategy),
		Names:     make(map[unit.Handle]string),
	}
	b.Manifest = battle.NewManifest(b.Arena)
	b.Encounter, err = turn.NewEncounter(g, b.Manifest, turn.Options{
		Log:       s.Log,
		CombatLog: b.CombatLog,
		MaxRounds: s.MaxRounds,
	})
	if err != nil {
		return nil, err
	}

	sp := &spawner{cells: battle.Spawns(s.Layout)}
	place := func(u *unit.Unit, glyph rune, own []turn.Behavior) error {
		at, err := sp.next(glyph)
		if err != nil {
			return fmt.Errorf("placing %s: %w", u.Name, err)
		}
		h := b.Arena.Add(u)
		if err := b.Manifest.Place(g, h, at); err != nil {
			return fmt.Errorf("placing %s: %w", u.Name, err)
		}
		b.Names[h] = u.Name
		if u.PlayerControlled && s.HumanPlayers {
			hs := turn.NewHumanStrategy()
			b.Humans[h] = hs
			b.Encounter.SetStrategy(h, hs)
			return nil
		}
		if own == nil {
			own = behaviors
		}
		b.Encounter.SetStrategy(h, turn.NewAIStrategy(own, s.ThinkingDelay, s.Log))
		return nil
	}

	for _, d := range s.Lineup {
		if d.Player && len(s.Roster) > 0 {
			continue
		}
		u, err := catalog.BuildUnit(d, s.Catalog)
		if err != nil {
			return nil, err
		}
		glyph, err := spawnGlyph(d)
		if err != nil {
			return nil, err
		}
		var own []turn.Behavior
		if len(d.Behaviors) > 0 {
			if own, err = turn.BehaviorsByName(d.Behaviors); err != nil {
				return nil, fmt.Errorf("unit %s: %w", u.Name, err)
			}
		}
		if err := place(u, glyph, own); err != nil {
			return nil, err
		}
	}
	for _, u := range s.Roster {
		u.PlayerControlled = true
		if err := place(u, RosterSpawn, nil); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func spawnGlyph(d catalog.UnitDef) (rune, error) {
	r := []rune(d.Spawn)
	if len(r) != 1 {
		return 0, fmt.Errorf("unit %s: spawn must be a single glyph, got %q", d.Name, d.Spawn)
	}
	return r[0], nil
}

// PlayerUnits returns the player-side units in handle order, e.g. for
// saving them as a roster after a battle.
func (b *Battle) PlayerUnits() []*unit.Unit {
	var out []*unit.Unit
	for _, h := range b.Arena.Handles() {
		if u := b.Arena.Unit(h); u.PlayerControlled {
			out = append(out, u)
		}
	}
	return out
}
