package turn

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/Garsondee/grid-tactics/internal/battle"
	"github.com/Garsondee/grid-tactics/internal/unit"
)

// Outcome is the state of an encounter as a whole.
type Outcome uint8

const (
	OutcomeOngoing Outcome = iota
	OutcomePlayerVictory
	OutcomeEnemyVictory
	OutcomeDraw
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOngoing:
		return "ongoing"
	case OutcomePlayerVictory:
		return "player-victory"
	case OutcomeEnemyVictory:
		return "enemy-victory"
	case OutcomeDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// Options configures an encounter.
type Options struct {
	Log       zerolog.Logger
	CombatLog *CombatLog
	// MaxRounds ends the encounter in a draw after that many full rounds.
	// Zero means no limit.
	MaxRounds int
}

// Encounter sequences unit turns over one grid and manifest. Each round
// every standing unit acts once, fastest first; a delayed unit moves to the
// back of the round.
//
// An Encounter is not safe for concurrent use. Hosts drive it from a single
// goroutine, and the manifest is only mutated inside Apply.
type Encounter struct {
	terrain    battle.Terrain
	manifest   *battle.Manifest
	strategies map[unit.Handle]Strategy
	log        zerolog.Logger
	clog       *CombatLog
	metrics    *encounterMetrics
	maxRounds  int

	round     int
	turnCount int
	queue     []unit.Handle
	delayed   map[unit.Handle]bool
	active    unit.Handle
	state     TurnState
	turnStart battle.Position
	outcome   Outcome
	started   bool
}

// NewEncounter creates an encounter over terrain and the units placed in m.
func NewEncounter(terrain battle.Terrain, m *battle.Manifest, opts Options) (*Encounter, error) {
	em, err := newEncounterMetrics()
	if err != nil {
		return nil, err
	}
	clog := opts.CombatLog
	if clog == nil {
		clog = NewCombatLog(false)
	}
	return &Encounter{
		terrain:    terrain,
		manifest:   m,
		strategies: make(map[unit.Handle]Strategy),
		log:        opts.Log.With().Str("component", "encounter").Logger(),
		clog:       clog,
		metrics:    em,
		maxRounds:  opts.MaxRounds,
		delayed:    make(map[unit.Handle]bool),
	}, nil
}

// SetStrategy assigns the controller for h.
func (e *Encounter) SetStrategy(h unit.Handle, s Strategy) {
	e.strategies[h] = s
}

// Start opens round one. Calling it twice is a no-op.
func (e *Encounter) Start() {
	if e.started {
		return
	}
	e.started = true
	if e.checkOutcome() {
		return
	}
	e.beginRound(1)
}

// Update advances the encounter by one frame: it starts the next turn when
// none is active, lets the active strategy think, and applies whatever
// action it commits.
func (e *Encounter) Update(dt time.Duration) {
	if !e.started {
		e.Start()
	}
	if e.outcome != OutcomeOngoing {
		return
	}
	if e.active == unit.NoHandle {
		e.beginNextTurn()
		if e.active == unit.NoHandle {
			return
		}
	}
	s := e.strategies[e.active]
	if s == nil {
		e.log.Error().Int("unit", int(e.active)).Msg("no strategy for active unit; ending turn")
		e.Apply(Action{Kind: ActionEndTurn, Unit: e.active})
		return
	}
	if a, ok := s.Update(dt); ok {
		e.Apply(a)
	}
}

// Run steps the encounter with a fixed dt until it finishes or maxSteps is
// reached. It returns the outcome.
func (e *Encounter) Run(dt time.Duration, maxSteps int) Outcome {
	for i := 0; i < maxSteps && e.outcome == OutcomeOngoing; i++ {
		e.Update(dt)
	}
	return e.outcome
}

func (e *Encounter) beginRound(n int) {
	e.round = n
	e.queue = e.turnOrder()
	for h := range e.delayed {
		delete(e.delayed, h)
	}
	e.clog.Add(e.round, e.turnCount, "--", "--", CatEncounter, "round_start",
		fmt.Sprintf("%d units", len(e.queue)), float64(n))
	e.log.Debug().Int("round", n).Int("units", len(e.queue)).Msg("round start")
}

// turnOrder lists standing units by speed, fastest first, handle order on
// ties.
func (e *Encounter) turnOrder() []unit.Handle {
	arena := e.manifest.Arena()
	var hs []unit.Handle
	for _, h := range e.manifest.Handles() {
		if !arena.IsKnockedOut(h) {
			hs = append(hs, h)
		}
	}
	sort.SliceStable(hs, func(i, j int) bool {
		si, sj := arena.Unit(hs[i]).Speed(), arena.Unit(hs[j]).Speed()
		if si != sj {
			return si > sj
		}
		return hs[i] < hs[j]
	})
	return hs
}

func (e *Encounter) beginNextTurn() {
	arena := e.manifest.Arena()
	for {
		if len(e.queue) == 0 {
			if e.maxRounds > 0 && e.round >= e.maxRounds {
				e.finish(OutcomeDraw, "round limit reached")
				return
			}
			e.beginRound(e.round + 1)
			if len(e.queue) == 0 {
				e.finish(OutcomeDraw, "no units left standing")
				return
			}
		}
		h := e.queue[0]
		e.queue = e.queue[1:]
		if arena.IsKnockedOut(h) {
			continue
		}
		pos, err := e.manifest.PositionOf(h)
		if err != nil {
			continue
		}
		e.active = h
		e.turnStart = pos
		e.state = TurnState{Delayed: e.delayed[h]}
		e.turnCount++

		u := arena.Unit(h)
		e.metrics.turn(sideOf(u))
		e.clog.Add(e.round, e.turnCount, u.Name, sideOf(u), CatTurn, "turn_start", pos.String(), 0)
		if s := e.strategies[h]; s != nil {
			s.OnTurnStart(TurnContext{
				Unit:     h,
				Start:    pos,
				Terrain:  e.terrain,
				Manifest: e.manifest,
				State:    e.state,
				Round:    e.round,
				Turn:     e.turnCount,
				Log:      e.clog,
			})
		}
		return
	}
}

// Apply resolves one action for the active unit, reports the result to its
// strategy, and ends the turn on end-turn and delay.
func (e *Encounter) Apply(a Action) ActionResult {
	r, ends := e.resolve(a)
	e.metrics.action(a.Kind, r)
	if !r.Applied {
		name, side := "--", "--"
		if u := e.manifest.Arena().Unit(a.Unit); u != nil {
			name, side = u.Name, sideOf(u)
		}
		e.clog.Add(e.round, e.turnCount, name, side, CatRejected, a.Kind.String(), r.Reason.String(), 0)
		e.log.Debug().Str("action", a.String()).Str("reason", r.Reason.String()).Msg("action rejected")
	}
	if s := e.strategies[a.Unit]; s != nil && a.Unit == e.active {
		s.OnActionResolved(a, r)
	}
	if ends {
		e.endTurn()
	}
	return r
}

func (e *Encounter) resolve(a Action) (ActionResult, bool) {
	if e.outcome != OutcomeOngoing {
		return rejected(RejectEncounterOver, "encounter is over: %s", e.outcome), false
	}
	if a.Unit == unit.NoHandle || a.Unit != e.active {
		return rejected(RejectNotActiveUnit, "unit %d is not the active unit", a.Unit), false
	}
	self := e.manifest.Arena().Unit(a.Unit)
	pos, err := e.manifest.PositionOf(a.Unit)
	if self == nil || err != nil {
		return rejected(RejectNotActiveUnit, "active unit %d is not on the board", a.Unit), false
	}

	switch a.Kind {
	case ActionMove:
		if e.state.Moved {
			return rejected(RejectAlreadyMoved, "%s has already moved", self.Name), false
		}
		dest, ok := a.Destination()
		if !ok {
			return rejected(RejectUnreachable, "empty path"), false
		}
		path := battle.FindPath(e.terrain, e.manifest, a.Unit, pos, dest, self.Movement())
		if len(path) == 0 {
			return rejected(RejectUnreachable, "%s cannot reach %s", self.Name, dest), false
		}
		if err := e.manifest.Move(a.Unit, dest); err != nil {
			return rejected(RejectUnreachable, "%v", err), false
		}
		e.state.Moved = true
		e.clog.Add(e.round, e.turnCount, self.Name, sideOf(self), CatMove, "move",
			fmt.Sprintf("%s -> %s", pos, dest), float64(len(path)))
		return ActionResult{Applied: true, Message: "moved"}, false

	case ActionAttack:
		if e.state.Acted {
			return rejected(RejectAlreadyActed, "%s has already acted", self.Name), false
		}
		lo, hi := self.AttackRange()
		area := battle.AttackRange(e.terrain, e.manifest, pos, lo, hi)
		if !area.IsValidTarget(a.Target) {
			return rejected(RejectInvalidTarget, "%s is not a valid target from %s", a.Target, pos), false
		}
		vh, _ := e.manifest.UnitAt(a.Target)
		victim := e.manifest.Arena().Unit(vh)
		dealt := victim.TakeDamage(Damage(self, victim))
		e.state.Acted = true
		r := ActionResult{Applied: true, Damage: dealt, Target: vh, Message: "hit"}
		e.clog.Add(e.round, e.turnCount, self.Name, sideOf(self), CatAttack, "hit",
			fmt.Sprintf("%s for %d", victim.Name, dealt), float64(dealt))
		if victim.IsKnockedOut() {
			r.KnockedOut = true
			e.metrics.knockOut(sideOf(victim))
			e.clog.Add(e.round, e.turnCount, victim.Name, sideOf(victim), CatKnockOut, "knocked_out",
				fmt.Sprintf("by %s", self.Name), 0)
			e.log.Info().Str("unit", victim.Name).Str("by", self.Name).Int("round", e.round).Msg("knocked out")
			if e.checkOutcome() {
				return r, true
			}
		}
		return r, false

	case ActionResetMove:
		if !e.state.Moved {
			return rejected(RejectNothingToReset, "%s has not moved", self.Name), false
		}
		if e.state.Acted {
			return rejected(RejectAlreadyActed, "%s has acted since moving", self.Name), false
		}
		if err := e.manifest.Move(a.Unit, e.turnStart); err != nil {
			return rejected(RejectNothingToReset, "%v", err), false
		}
		e.state.Moved = false
		e.clog.Add(e.round, e.turnCount, self.Name, sideOf(self), CatMove, "reset",
			fmt.Sprintf("%s -> %s", pos, e.turnStart), 0)
		return ActionResult{Applied: true, Message: "move undone"}, false

	case ActionDelay:
		if e.state.Moved || e.state.Acted || e.state.Delayed {
			return rejected(RejectCannotDelay, "%s cannot delay now", self.Name), false
		}
		e.delayed[a.Unit] = true
		e.queue = append(e.queue, a.Unit)
		e.clog.Add(e.round, e.turnCount, self.Name, sideOf(self), CatTurn, "delay", "", 0)
		return ActionResult{Applied: true, Message: "delayed"}, true

	case ActionEndTurn:
		expired := self.DecrementDurations()
		for _, m := range expired {
			e.clog.Add(e.round, e.turnCount, self.Name, sideOf(self), CatModifier, "expired",
				fmt.Sprintf("%s (%s)", m.ID, m.Stat), m.Value)
		}
		e.clog.Add(e.round, e.turnCount, self.Name, sideOf(self), CatTurn, "turn_end", "", 0)
		return ActionResult{Applied: true, Message: "turn ended", Expired: expired}, true
	}
	return rejected(RejectUnknownAction, "unknown action kind %d", a.Kind), false
}

func (e *Encounter) endTurn() {
	if e.active == unit.NoHandle {
		return
	}
	if s := e.strategies[e.active]; s != nil {
		s.OnTurnEnd()
	}
	e.active = unit.NoHandle
	e.state = TurnState{}
}

// checkOutcome finishes the encounter when a side has no standing units.
func (e *Encounter) checkOutcome() bool {
	players, enemies := 0, 0
	arena := e.manifest.Arena()
	for _, h := range e.manifest.Handles() {
		if arena.IsKnockedOut(h) {
			continue
		}
		if arena.Unit(h).PlayerControlled {
			players++
		} else {
			enemies++
		}
	}
	switch {
	case players == 0 && enemies == 0:
		e.finish(OutcomeDraw, "no units left standing")
	case enemies == 0:
		e.finish(OutcomePlayerVictory, "all enemies down")
	case players == 0:
		e.finish(OutcomeEnemyVictory, "all player units down")
	default:
		return false
	}
	return true
}

func (e *Encounter) finish(o Outcome, why string) {
	e.outcome = o
	e.queue = nil
	e.clog.Add(e.round, e.turnCount, "--", "--", CatEncounter, o.String(), why, 0)
	e.log.Info().Str("outcome", o.String()).Int("round", e.round).Str("reason", why).Msg("encounter finished")
}

// Damage is the harm a basic attack by attacker does: its physical power
// plus its weapon's own power, never less than one.
func Damage(attacker, _ *unit.Unit) int {
	return max(1, attacker.PhysicalPower()+attacker.WeaponPower())
}

func sideOf(u *unit.Unit) string {
	if u.PlayerControlled {
		return "player"
	}
	return "enemy"
}

// --- Queries ---

// ReachableCells returns where h could move from its current position.
func (e *Encounter) ReachableCells(h unit.Handle) []battle.Position {
	u := e.manifest.Arena().Unit(h)
	pos, err := e.manifest.PositionOf(h)
	if u == nil || err != nil {
		return nil
	}
	return battle.MovementRange(e.terrain, e.manifest, h, pos, u.Movement())
}

// Path returns h's shortest route to to, or nil.
func (e *Encounter) Path(h unit.Handle, to battle.Position) []battle.Position {
	u := e.manifest.Arena().Unit(h)
	pos, err := e.manifest.PositionOf(h)
	if u == nil || err != nil {
		return nil
	}
	return battle.FindPath(e.terrain, e.manifest, h, pos, to, u.Movement())
}

// AttackRangeFor returns h's attack area from its current position.
func (e *Encounter) AttackRangeFor(h unit.Handle) (*battle.AttackArea, error) {
	u := e.manifest.Arena().Unit(h)
	pos, err := e.manifest.PositionOf(h)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("attack range for %d: %w", h, battle.ErrUnknownUnit)
	}
	lo, hi := u.AttackRange()
	return battle.AttackRange(e.terrain, e.manifest, pos, lo, hi), nil
}

// Active returns the unit whose turn it is.
func (e *Encounter) Active() (unit.Handle, bool) {
	return e.active, e.active != unit.NoHandle
}

// Strategy returns the controller assigned to h.
func (e *Encounter) Strategy(h unit.Handle) Strategy { return e.strategies[h] }

// TurnState returns what the active unit has done this turn.
func (e *Encounter) TurnState() TurnState { return e.state }

// Pending returns the units still to act this round, in order.
func (e *Encounter) Pending() []unit.Handle {
	return append([]unit.Handle(nil), e.queue...)
}

func (e *Encounter) Round() int                 { return e.round }
func (e *Encounter) Turns() int                 { return e.turnCount }
func (e *Encounter) Outcome() Outcome           { return e.outcome }
func (e *Encounter) Manifest() *battle.Manifest { return e.manifest }
func (e *Encounter) Terrain() battle.Terrain    { return e.terrain }
func (e *Encounter) CombatLog() *CombatLog      { return e.clog }
