// Package turn sequences unit turns and drives them through human or AI
// strategies that share one action vocabulary.
package turn

import (
	"fmt"
	"time"

	"github.com/Garsondee/grid-tactics/internal/battle"
	"github.com/Garsondee/grid-tactics/internal/unit"
)

// ActionKind is the closed set of things a strategy can commit.
type ActionKind uint8

const (
	ActionMove ActionKind = iota
	ActionAttack
	ActionDelay
	ActionEndTurn
	ActionResetMove
)

func (k ActionKind) String() string {
	switch k {
	case ActionMove:
		return "move"
	case ActionAttack:
		return "attack"
	case ActionDelay:
		return "delay"
	case ActionEndTurn:
		return "end-turn"
	case ActionResetMove:
		return "reset-move"
	default:
		return "unknown"
	}
}

// Action is one committed decision. Path is set for moves, Target for
// attacks.
type Action struct {
	Kind   ActionKind
	Unit   unit.Handle
	Path   []battle.Position
	Target battle.Position
}

// Destination returns the last cell of a move path.
func (a Action) Destination() (battle.Position, bool) {
	if len(a.Path) == 0 {
		return battle.Position{}, false
	}
	return a.Path[len(a.Path)-1], true
}

func (a Action) String() string {
	switch a.Kind {
	case ActionMove:
		if d, ok := a.Destination(); ok {
			return fmt.Sprintf("move #%d to %s", a.Unit, d)
		}
	case ActionAttack:
		return fmt.Sprintf("attack #%d at %s", a.Unit, a.Target)
	}
	return fmt.Sprintf("%s #%d", a.Kind, a.Unit)
}

// RejectReason explains why the encounter refused an action.
type RejectReason uint8

const (
	Accepted RejectReason = iota
	RejectNotActiveUnit
	RejectEncounterOver
	RejectAlreadyMoved
	RejectAlreadyActed
	RejectUnreachable
	RejectInvalidTarget
	RejectNothingToReset
	RejectCannotDelay
	RejectUnknownAction
)

func (r RejectReason) String() string {
	switch r {
	case Accepted:
		return "ok"
	case RejectNotActiveUnit:
		return "not-active-unit"
	case RejectEncounterOver:
		return "encounter-over"
	case RejectAlreadyMoved:
		return "already-moved"
	case RejectAlreadyActed:
		return "already-acted"
	case RejectUnreachable:
		return "unreachable"
	case RejectInvalidTarget:
		return "invalid-target"
	case RejectNothingToReset:
		return "nothing-to-reset"
	case RejectCannotDelay:
		return "cannot-delay"
	case RejectUnknownAction:
		return "unknown-action"
	default:
		return "unknown"
	}
}

// ActionResult reports how the encounter resolved an action.
type ActionResult struct {
	Applied bool
	Reason  RejectReason
	Message string

	// Attack outcome.
	Damage     int
	Target     unit.Handle
	KnockedOut bool

	// End-turn outcome.
	Expired []unit.StatModifier
}

func rejected(reason RejectReason, format string, args ...any) ActionResult {
	return ActionResult{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// TurnState is what a unit has already done this turn.
type TurnState struct {
	Moved   bool
	Acted   bool
	Delayed bool
}

// TurnContext is handed to a strategy when its unit's turn begins.
type TurnContext struct {
	Unit     unit.Handle
	Start    battle.Position
	Terrain  battle.Terrain
	Manifest *battle.Manifest
	State    TurnState

	Round, Turn int
	Log         *CombatLog // may be nil
}

// Self resolves the acting unit.
func (tc TurnContext) Self() *unit.Unit {
	return tc.Manifest.Arena().Unit(tc.Unit)
}

// Strategy drives one unit's turn. Exactly one strategy is active per unit
// turn; it is entered with OnTurnStart and left with OnTurnEnd.
type Strategy interface {
	OnTurnStart(tc TurnContext)
	OnTurnEnd()
	// Update advances the strategy by dt and returns an action to commit,
	// if one is ready.
	Update(dt time.Duration) (Action, bool)
	// OnActionResolved reports the encounter's verdict on the last action.
	OnActionResolved(a Action, r ActionResult)

	Mode() HumanMode
	TargetedUnit() (unit.Handle, bool)
	TargetedPosition() (battle.Position, bool)
	MovementRange() []battle.Position
}
