package turn

import (
	"fmt"
	"time"

	"github.com/Garsondee/grid-tactics/internal/battle"
	"github.com/Garsondee/grid-tactics/internal/logging"
	"github.com/Garsondee/grid-tactics/internal/unit"
)

// TestEncounter is a headless encounter harness for tests. Units are
// addressed by name.
type TestEncounter struct {
	Layout    string
	Grid      *battle.Grid
	Arena     *unit.Arena
	Manifest  *battle.Manifest
	Encounter *Encounter
	CombatLog *CombatLog

	maxRounds int
	delay     time.Duration
	handles   map[string]unit.Handle
	humans    map[string]*HumanStrategy
	pending   []pendingUnit
	err       error
}

type pendingUnit struct {
	name string
	u    *unit.Unit
	at   battle.Position
}

// encOptionKind controls the pass in which an option is applied.
type encOptionKind int

const (
	encOptInfra   encOptionKind = iota // layout, limits, verbosity: applied first
	encOptUnit                         // add units: applied after the grid is built
	encOptControl                      // strategies: applied after units exist
)

// EncounterOption is a builder function applied to a TestEncounter during
// construction.
type EncounterOption struct {
	kind encOptionKind
	fn   func(*TestEncounter)
}

// UnitStats is the compact stat line used by harness-built units.
type UnitStats struct {
	HP, Power, Move, Speed int
	MinRange, MaxRange     int
}

// WithLayout sets the grid from an ASCII layout (see battle.ParseGrid).
func WithLayout(layout string) EncounterOption {
	return EncounterOption{encOptInfra, func(te *TestEncounter) {
		te.Layout = layout
	}}
}

// WithMaxRounds caps the encounter length.
func WithMaxRounds(n int) EncounterOption {
	return EncounterOption{encOptInfra, func(te *TestEncounter) {
		te.maxRounds = n
	}}
}

// WithVerbose enables verbose combat logging.
func WithVerbose(v bool) EncounterOption {
	return EncounterOption{encOptInfra, func(te *TestEncounter) {
		te.CombatLog = NewCombatLog(v)
	}}
}

// WithThinkingDelay sets the AI thinking delay for every AI unit.
func WithThinkingDelay(d time.Duration) EncounterOption {
	return EncounterOption{encOptInfra, func(te *TestEncounter) {
		te.delay = d
	}}
}

// WithPlayer adds a player-controlled unit at (x, y).
func WithPlayer(name string, x, y int, st UnitStats) EncounterOption {
	return EncounterOption{encOptUnit, func(te *TestEncounter) {
		te.pending = append(te.pending, pendingUnit{name, statUnit(name, true, st), battle.Pos(x, y)})
	}}
}

// WithEnemy adds an AI-side unit at (x, y).
func WithEnemy(name string, x, y int, st UnitStats) EncounterOption {
	return EncounterOption{encOptUnit, func(te *TestEncounter) {
		te.pending = append(te.pending, pendingUnit{name, statUnit(name, false, st), battle.Pos(x, y)})
	}}
}

// WithHuman puts the named unit under a HumanStrategy instead of the AI.
func WithHuman(name string) EncounterOption {
	return EncounterOption{encOptControl, func(te *TestEncounter) {
		h, ok := te.handles[name]
		if !ok {
			te.fail(fmt.Errorf("with human: unknown unit %q", name))
			return
		}
		hs := NewHumanStrategy()
		te.humans[name] = hs
		te.Encounter.SetStrategy(h, hs)
	}}
}

// WithBehaviors gives the named unit its own AI priority list.
func WithBehaviors(name string, behaviors ...Behavior) EncounterOption {
	return EncounterOption{encOptControl, func(te *TestEncounter) {
		h, ok := te.handles[name]
		if !ok {
			te.fail(fmt.Errorf("with behaviors: unknown unit %q", name))
			return
		}
		te.Encounter.SetStrategy(h, NewAIStrategy(behaviors, te.delay, logging.Nop()))
	}}
}

// statUnit builds a monster-kind unit whose natural weapon carries the
// requested range, so harness units need no catalog.
func statUnit(name string, player bool, st UnitStats) *unit.Unit {
	lo, hi := st.MinRange, st.MaxRange
	if hi == 0 {
		lo, hi = 1, 1
	}
	tmpl := &unit.MonsterType{ID: "harness-" + name, Name: name, MinRange: lo, MaxRange: hi}
	tmpl.Base[unit.StatMaxHealth] = st.HP
	tmpl.Base[unit.StatPhysicalPower] = st.Power
	tmpl.Base[unit.StatMovement] = st.Move
	tmpl.Base[unit.StatSpeed] = st.Speed
	return unit.NewMonster(name, tmpl, player)
}

// NewTestEncounter constructs a TestEncounter from the given options in
// ordered passes:
//  1. Infrastructure (layout, round cap, verbosity, AI delay)
//  2. Grid
//  3. Units, each given a default AI strategy
//  4. Controller overrides
//
// Construction problems are reported by Err.
func NewTestEncounter(opts ...EncounterOption) *TestEncounter {
	te := &TestEncounter{
		Layout:    "........\n........\n........\n........\n........\n........\n........\n........",
		CombatLog: NewCombatLog(false),
		handles:   make(map[string]unit.Handle),
		humans:    make(map[string]*HumanStrategy),
	}
	for _, o := range opts {
		if o.kind == encOptInfra {
			o.fn(te)
		}
	}

	g, err := battle.ParseGrid(te.Layout)
	if err != nil {
		te.fail(err)
		g = battle.NewGrid(1, 1)
	}
	te.Grid = g
	te.Arena = unit.NewArena()
	te.Manifest = battle.NewManifest(te.Arena)
	te.Encounter, err = NewEncounter(te.Grid, te.Manifest, Options{
		Log:       logging.Nop(),
		CombatLog: te.CombatLog,
		MaxRounds: te.maxRounds,
	})
	if err != nil {
		te.fail(err)
		return te
	}

	for _, o := range opts {
		if o.kind == encOptUnit {
			o.fn(te)
		}
	}
	for _, p := range te.pending {
		te.addUnit(p)
	}
	for _, o := range opts {
		if o.kind == encOptControl {
			o.fn(te)
		}
	}
	return te
}

func (te *TestEncounter) addUnit(p pendingUnit) {
	if _, dup := te.handles[p.name]; dup {
		te.fail(fmt.Errorf("duplicate unit name %q", p.name))
		return
	}
	h := te.Arena.Add(p.u)
	if err := te.Manifest.Place(te.Grid, h, p.at); err != nil {
		te.fail(fmt.Errorf("placing %s: %w", p.name, err))
		return
	}
	te.handles[p.name] = h
	te.Encounter.SetStrategy(h, NewAIStrategy(DefaultBehaviors(), te.delay, logging.Nop()))
}

func (te *TestEncounter) fail(err error) {
	if te.err == nil {
		te.err = err
	}
}

// Err returns the first construction error.
func (te *TestEncounter) Err() error { return te.err }

// Handle returns the handle of a named unit, or NoHandle.
func (te *TestEncounter) Handle(name string) unit.Handle { return te.handles[name] }

// Unit returns a named unit, or nil.
func (te *TestEncounter) Unit(name string) *unit.Unit { return te.Arena.Unit(te.handles[name]) }

// Human returns the human strategy of a named unit, or nil.
func (te *TestEncounter) Human(name string) *HumanStrategy { return te.humans[name] }

// Position returns where a named unit stands.
func (te *TestEncounter) Position(name string) battle.Position {
	p, _ := te.Manifest.PositionOf(te.handles[name])
	return p
}

// ActiveName returns the name of the unit whose turn it is.
func (te *TestEncounter) ActiveName() string {
	h, ok := te.Encounter.Active()
	if !ok {
		return ""
	}
	return te.Arena.Unit(h).Name
}

// Step advances the encounter n frames of dt each.
func (te *TestEncounter) Step(n int, dt time.Duration) {
	for i := 0; i < n; i++ {
		te.Encounter.Update(dt)
	}
}

// RunUntil advances the encounter up to maxSteps frames of dt, stopping
// early once predicate returns true. It returns the step at which the
// predicate held, or -1.
func (te *TestEncounter) RunUntil(predicate func(*TestEncounter) bool, dt time.Duration, maxSteps int) int {
	for i := 0; i < maxSteps; i++ {
		if predicate(te) {
			return i
		}
		te.Encounter.Update(dt)
	}
	if predicate(te) {
		return maxSteps
	}
	return -1
}
