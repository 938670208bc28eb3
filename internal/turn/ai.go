package turn

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Garsondee/grid-tactics/internal/battle"
	"github.com/Garsondee/grid-tactics/internal/unit"
)

// DefaultThinkingDelay paces AI turns so a watcher can follow them.
const DefaultThinkingDelay = 400 * time.Millisecond

// Order says how a decision's move and attack are sequenced.
type Order uint8

const (
	OrderActOnly Order = iota
	OrderMoveOnly
	OrderMoveFirst
	OrderActFirst
)

func (o Order) String() string {
	switch o {
	case OrderActOnly:
		return "act-only"
	case OrderMoveOnly:
		return "move-only"
	case OrderMoveFirst:
		return "move-first"
	case OrderActFirst:
		return "act-first"
	default:
		return "unknown"
	}
}

// Decision is what a behavior wants the unit to do this turn. A decision
// with neither a move nor a target ends the turn.
type Decision struct {
	Behavior  string
	Order     Order
	Path      []battle.Position
	Target    battle.Position
	HasTarget bool
}

// Opportunity is an enemy that can be struck after moving to From.
type Opportunity struct {
	From   battle.Position
	Target battle.Position
	Enemy  unit.Handle
}

// DecisionContext is the read-only picture an AI turn is decided on. It is
// built once when the turn starts.
type DecisionContext struct {
	Self     unit.Handle
	Unit     *unit.Unit
	Start    battle.Position
	Terrain  battle.Terrain
	Manifest *battle.Manifest

	Movement      []battle.Position
	Paths         map[battle.Position][]battle.Position
	Attack        *battle.AttackArea
	Enemies       []unit.Handle // standing enemies, ascending handle order
	Targets       []unit.Handle // enemies that can be struck from Start
	Opportunities []Opportunity // strikes available after moving, by path length
}

// NewDecisionContext computes movement, attack and target data for the unit
// about to act at start.
func NewDecisionContext(tc TurnContext) *DecisionContext {
	self := tc.Self()
	dc := &DecisionContext{
		Self:     tc.Unit,
		Unit:     self,
		Start:    tc.Start,
		Terrain:  tc.Terrain,
		Manifest: tc.Manifest,
	}
	if self == nil {
		return dc
	}
	arena := tc.Manifest.Arena()
	for _, h := range tc.Manifest.Handles() {
		if h == tc.Unit || arena.IsKnockedOut(h) {
			continue
		}
		if u := arena.Unit(h); u.PlayerControlled != self.PlayerControlled {
			dc.Enemies = append(dc.Enemies, h)
		}
	}

	lo, hi := self.AttackRange()
	dc.Attack = battle.AttackRange(tc.Terrain, tc.Manifest, tc.Start, lo, hi)
	for _, h := range dc.Enemies {
		if p, err := tc.Manifest.PositionOf(h); err == nil && dc.Attack.IsValidTarget(p) {
			dc.Targets = append(dc.Targets, h)
		}
	}

	if !tc.State.Moved {
		dc.Movement = battle.MovementRange(tc.Terrain, tc.Manifest, tc.Unit, tc.Start, self.Movement())
		dc.Paths = battle.PathsFrom(tc.Terrain, tc.Manifest, tc.Unit, tc.Start, self.Movement())
		// The unit still stands on Start in these queries. Leaving it can
		// only open sight lines, so every opportunity found holds after the
		// move.
		for _, cell := range dc.Movement {
			area := battle.AttackRange(tc.Terrain, tc.Manifest, cell, lo, hi)
			for _, h := range dc.Enemies {
				p, err := tc.Manifest.PositionOf(h)
				if err == nil && area.IsValidTarget(p) {
					dc.Opportunities = append(dc.Opportunities, Opportunity{From: cell, Target: p, Enemy: h})
				}
			}
		}
		sortOpportunities(dc.Opportunities, dc.Paths)
	}
	return dc
}

// PositionOf returns where h stands, or false.
func (dc *DecisionContext) PositionOf(h unit.Handle) (battle.Position, bool) {
	p, err := dc.Manifest.PositionOf(h)
	return p, err == nil
}

// Weakest returns the handle with the least remaining health, lowest handle
// first on ties.
func (dc *DecisionContext) Weakest(hs []unit.Handle) (unit.Handle, bool) {
	best, bestHP, found := unit.NoHandle, 0, false
	arena := dc.Manifest.Arena()
	for _, h := range hs {
		hp := arena.Unit(h).Health()
		if !found || hp < bestHP {
			best, bestHP, found = h, hp, true
		}
	}
	return best, found
}

// Behavior proposes a decision when its precondition holds.
type Behavior interface {
	Name() string
	Decide(dc *DecisionContext) (Decision, bool)
}

type aiPhase uint8

const (
	aiThinking aiPhase = iota
	aiExecuting
	aiAwaitMove
	aiDone
)

// AIStrategy drives a unit with a prioritized list of behaviors.
type AIStrategy struct {
	behaviors []Behavior
	delay     time.Duration
	log       zerolog.Logger

	tc       TurnContext
	active   bool
	phase    aiPhase
	elapsed  time.Duration
	ctx      *DecisionContext
	decision Decision
	plan     []Action
	awaiting battle.Position
}

// NewAIStrategy returns an AI that tries behaviors in order after waiting
// delay of accumulated frame time.
func NewAIStrategy(behaviors []Behavior, delay time.Duration, log zerolog.Logger) *AIStrategy {
	return &AIStrategy{behaviors: behaviors, delay: delay, log: log}
}

func (ai *AIStrategy) OnTurnStart(tc TurnContext) {
	ai.tc = tc
	ai.active = true
	ai.phase = aiThinking
	ai.elapsed = 0
	ai.plan = nil
	ai.decision = Decision{}
	ai.ctx = NewDecisionContext(tc)
}

func (ai *AIStrategy) OnTurnEnd() {
	ai.active = false
	ai.ctx = nil
	ai.plan = nil
}

// Update waits out the thinking delay, decides once, then releases the
// planned actions one per call.
func (ai *AIStrategy) Update(dt time.Duration) (Action, bool) {
	if !ai.active {
		return Action{}, false
	}
	switch ai.phase {
	case aiThinking:
		ai.elapsed += dt
		if ai.elapsed < ai.delay {
			return Action{}, false
		}
		ai.decide()
		ai.phase = aiExecuting
		return ai.next()
	case aiAwaitMove:
		pos, err := ai.tc.Manifest.PositionOf(ai.tc.Unit)
		if err != nil || pos != ai.awaiting {
			return Action{}, false
		}
		ai.phase = aiExecuting
		ai.revalidateAttack(pos)
		return ai.next()
	case aiExecuting:
		return ai.next()
	}
	return Action{}, false
}

func (ai *AIStrategy) OnActionResolved(a Action, r ActionResult) {
	if r.Applied || a.Kind == ActionEndTurn {
		return
	}
	// A refused step leaves the plan meaningless; finish the turn instead.
	ai.log.Warn().
		Str("unit", ai.unitName()).
		Str("action", a.Kind.String()).
		Str("reason", r.Reason.String()).
		Msg("ai action rejected")
	ai.plan = []Action{{Kind: ActionEndTurn, Unit: ai.tc.Unit}}
	ai.phase = aiExecuting
}

func (ai *AIStrategy) decide() {
	for _, b := range ai.behaviors {
		if d, ok := b.Decide(ai.ctx); ok {
			d.Behavior = b.Name()
			ai.decision = d
			ai.plan = planFor(ai.tc.Unit, d)
			ai.note(true, "decision", describeDecision(d), float64(len(d.Path)))
			ai.log.Debug().
				Str("unit", ai.unitName()).
				Str("behavior", d.Behavior).
				Str("order", d.Order.String()).
				Msg("ai decision")
			return
		}
	}
	ai.log.Error().
		Str("unit", ai.unitName()).
		Int("behaviors", len(ai.behaviors)).
		Msg("no behavior produced a decision; ending turn")
	ai.note(false, "no_decision", fmt.Sprintf("%d behaviors", len(ai.behaviors)), 0)
	ai.plan = []Action{{Kind: ActionEndTurn, Unit: ai.tc.Unit}}
}

// planFor expands a decision into the actions it commits, in order.
func planFor(h unit.Handle, d Decision) []Action {
	move := Action{Kind: ActionMove, Unit: h, Path: d.Path}
	attack := Action{Kind: ActionAttack, Unit: h, Target: d.Target}
	end := Action{Kind: ActionEndTurn, Unit: h}

	var plan []Action
	switch d.Order {
	case OrderActOnly:
		if d.HasTarget {
			plan = append(plan, attack)
		}
	case OrderMoveOnly:
		if len(d.Path) > 0 {
			plan = append(plan, move)
		}
	case OrderMoveFirst:
		if len(d.Path) > 0 {
			plan = append(plan, move)
		}
		if d.HasTarget {
			plan = append(plan, attack)
		}
	case OrderActFirst:
		if d.HasTarget {
			plan = append(plan, attack)
		}
		if len(d.Path) > 0 {
			plan = append(plan, move)
		}
	}
	return append(plan, end)
}

func (ai *AIStrategy) next() (Action, bool) {
	if len(ai.plan) == 0 {
		ai.phase = aiDone
		return Action{}, false
	}
	a := ai.plan[0]
	ai.plan = ai.plan[1:]
	if a.Kind == ActionMove && len(ai.plan) > 0 && ai.plan[0].Kind == ActionAttack {
		// Move-first: hold the attack until the move is on the board.
		ai.awaiting, _ = a.Destination()
		ai.phase = aiAwaitMove
	}
	return a, true
}

// revalidateAttack drops a deferred attack whose target can no longer be
// struck from where the unit ended up.
func (ai *AIStrategy) revalidateAttack(pos battle.Position) {
	if len(ai.plan) == 0 || ai.plan[0].Kind != ActionAttack {
		return
	}
	self := ai.tc.Self()
	lo, hi := self.AttackRange()
	area := battle.AttackRange(ai.tc.Terrain, ai.tc.Manifest, pos, lo, hi)
	if !area.IsValidTarget(ai.plan[0].Target) {
		ai.log.Debug().Str("unit", ai.unitName()).Msg("deferred attack lost its target")
		ai.note(true, "target_lost", fmt.Sprintf("%s from %s", ai.plan[0].Target, pos), 0)
		ai.plan = ai.plan[1:]
	}
}

// note writes an AI entry to the turn's combat log. Verbose entries are
// kept only by verbose logs.
func (ai *AIStrategy) note(verbose bool, key, value string, num float64) {
	side := "--"
	if u := ai.tc.Self(); u != nil {
		side = sideOf(u)
	}
	if verbose {
		ai.tc.Log.AddVerbose(ai.tc.Round, ai.tc.Turn, ai.unitName(), side, CatAI, key, value, num)
		return
	}
	ai.tc.Log.Add(ai.tc.Round, ai.tc.Turn, ai.unitName(), side, CatAI, key, value, num)
}

// describeDecision renders "behavior order [to=cell] [target=cell]".
func describeDecision(d Decision) string {
	s := d.Behavior + " " + d.Order.String()
	if len(d.Path) > 0 {
		s += " to=" + d.Path[len(d.Path)-1].String()
	}
	if d.HasTarget {
		s += " target=" + d.Target.String()
	}
	return s
}

func (ai *AIStrategy) unitName() string {
	if u := ai.tc.Self(); u != nil {
		return u.Name
	}
	return "?"
}

// Decision returns the decision taken this turn, if any.
func (ai *AIStrategy) Decision() (Decision, bool) {
	return ai.decision, ai.decision.Behavior != ""
}

// Context returns the decision context of the current turn.
func (ai *AIStrategy) Context() *DecisionContext { return ai.ctx }

func (ai *AIStrategy) Mode() HumanMode { return ModeNormal }

func (ai *AIStrategy) TargetedUnit() (unit.Handle, bool) {
	if ai.ctx == nil || !ai.decision.HasTarget {
		return unit.NoHandle, false
	}
	return ai.tc.Manifest.UnitAt(ai.decision.Target)
}

func (ai *AIStrategy) TargetedPosition() (battle.Position, bool) {
	if !ai.decision.HasTarget {
		return battle.Position{}, false
	}
	return ai.decision.Target, true
}

func (ai *AIStrategy) MovementRange() []battle.Position {
	if ai.ctx == nil {
		return nil
	}
	return ai.ctx.Movement
}
