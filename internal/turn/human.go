package turn

import (
	"time"

	"github.com/Garsondee/grid-tactics/internal/battle"
	"github.com/Garsondee/grid-tactics/internal/unit"
)

// HumanMode is the selection mode of a human-driven turn.
type HumanMode uint8

const (
	ModeNormal HumanMode = iota
	ModeMoveSelection
	ModeAttackSelection
)

func (m HumanMode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeMoveSelection:
		return "move"
	case ModeAttackSelection:
		return "attack"
	default:
		return "unknown"
	}
}

// InputKind distinguishes pointer input from explicit commands.
type InputKind uint8

const (
	InputClick InputKind = iota
	InputHover
	InputCommand
)

// Command is a keyboard or button command.
type Command uint8

const (
	CmdMove Command = iota
	CmdAttack
	CmdCancel
	CmdEndTurn
	CmdDelay
	CmdResetMove
)

// Input is one queued player input.
type Input struct {
	Kind    InputKind
	Cell    battle.Position
	Command Command
}

// humanState is everything the human state machine knows. Caches belong to
// the mode that built them and are dropped when the mode is left.
type humanState struct {
	mode  HumanMode
	pos   battle.Position
	moved bool
	acted bool

	paths     map[battle.Position][]battle.Position
	moveCells []battle.Position
	attack    *battle.AttackArea

	target    unit.Handle
	hasTarget bool
	hover     battle.Position
	hasHover  bool
}

func (s humanState) normal() humanState {
	s.mode = ModeNormal
	s.paths = nil
	s.moveCells = nil
	s.attack = nil
	return s
}

// HumanStrategy turns queued player input into actions.
type HumanStrategy struct {
	tc     TurnContext
	active bool
	state  humanState
	queue  []Input
}

// NewHumanStrategy returns an idle human strategy.
func NewHumanStrategy() *HumanStrategy {
	return &HumanStrategy{}
}

// Push queues an input for the next Update.
func (hs *HumanStrategy) Push(in Input) {
	if hs.active {
		hs.queue = append(hs.queue, in)
	}
}

// Click queues a click on a cell.
func (hs *HumanStrategy) Click(p battle.Position) { hs.Push(Input{Kind: InputClick, Cell: p}) }

// Hover queues a pointer move onto a cell.
func (hs *HumanStrategy) Hover(p battle.Position) { hs.Push(Input{Kind: InputHover, Cell: p}) }

// Command queues a command.
func (hs *HumanStrategy) Command(c Command) { hs.Push(Input{Kind: InputCommand, Command: c}) }

func (hs *HumanStrategy) OnTurnStart(tc TurnContext) {
	hs.tc = tc
	hs.active = true
	hs.queue = hs.queue[:0]
	hs.state = humanState{
		pos:   tc.Start,
		moved: tc.State.Moved,
		acted: tc.State.Acted,
	}
}

func (hs *HumanStrategy) OnTurnEnd() {
	hs.active = false
	hs.queue = nil
	hs.state = humanState{}
}

// Update drains queued input until one produces an action.
func (hs *HumanStrategy) Update(time.Duration) (Action, bool) {
	if !hs.active {
		return Action{}, false
	}
	hs.sync()
	for len(hs.queue) > 0 {
		in := hs.queue[0]
		hs.queue = hs.queue[1:]
		next, act := hs.transition(hs.state, in)
		hs.state = next
		if act != nil {
			return *act, true
		}
	}
	return Action{}, false
}

func (hs *HumanStrategy) OnActionResolved(a Action, r ActionResult) {
	if !r.Applied {
		return
	}
	switch a.Kind {
	case ActionMove:
		hs.state.moved = true
	case ActionAttack:
		hs.state.acted = true
	case ActionResetMove:
		hs.state.moved = false
	}
}

// sync refreshes position-dependent caches when the unit has been moved
// since they were built.
func (hs *HumanStrategy) sync() {
	pos, err := hs.tc.Manifest.PositionOf(hs.tc.Unit)
	if err != nil || pos == hs.state.pos {
		return
	}
	hs.state.pos = pos
	switch hs.state.mode {
	case ModeAttackSelection:
		hs.state = hs.enterAttack(hs.state)
	case ModeMoveSelection:
		hs.state = hs.state.normal()
	}
}

// transition is the whole human turn state machine: it maps the current
// state and one input to the next state and an optional action.
func (hs *HumanStrategy) transition(s humanState, in Input) (humanState, *Action) {
	switch in.Kind {
	case InputHover:
		s.hover, s.hasHover = in.Cell, true
		return s, nil

	case InputClick:
		switch s.mode {
		case ModeMoveSelection:
			if path, ok := s.paths[in.Cell]; ok {
				return s.normal(), &Action{Kind: ActionMove, Unit: hs.tc.Unit, Path: path}
			}
		case ModeAttackSelection:
			if s.attack.IsValidTarget(in.Cell) {
				return s.normal(), &Action{Kind: ActionAttack, Unit: hs.tc.Unit, Target: in.Cell}
			}
		}
		if h, ok := hs.tc.Manifest.UnitAt(in.Cell); ok {
			s = s.normal()
			s.target, s.hasTarget = h, true
			return s, nil
		}
		if s.mode == ModeNormal {
			s.hasTarget = false
		}
		return s, nil

	case InputCommand:
		switch in.Command {
		case CmdMove:
			if s.moved || s.mode == ModeMoveSelection {
				return s, nil
			}
			return hs.enterMove(s.normal()), nil
		case CmdAttack:
			if s.acted || s.mode == ModeAttackSelection {
				return s, nil
			}
			return hs.enterAttack(s.normal()), nil
		case CmdCancel:
			if s.mode == ModeNormal {
				s.hasTarget = false
			}
			return s.normal(), nil
		case CmdResetMove:
			if !s.moved || s.acted {
				return s, nil
			}
			return s.normal(), &Action{Kind: ActionResetMove, Unit: hs.tc.Unit}
		case CmdEndTurn:
			return s.normal(), &Action{Kind: ActionEndTurn, Unit: hs.tc.Unit}
		case CmdDelay:
			return s.normal(), &Action{Kind: ActionDelay, Unit: hs.tc.Unit}
		}
	}
	return s, nil
}

func (hs *HumanStrategy) enterMove(s humanState) humanState {
	self := hs.tc.Self()
	if self == nil {
		return s
	}
	s.paths = battle.PathsFrom(hs.tc.Terrain, hs.tc.Manifest, hs.tc.Unit, s.pos, self.Movement())
	s.moveCells = battle.MovementRange(hs.tc.Terrain, hs.tc.Manifest, hs.tc.Unit, s.pos, self.Movement())
	s.mode = ModeMoveSelection
	return s
}

func (hs *HumanStrategy) enterAttack(s humanState) humanState {
	self := hs.tc.Self()
	if self == nil {
		return s
	}
	lo, hi := self.AttackRange()
	s.attack = battle.AttackRange(hs.tc.Terrain, hs.tc.Manifest, s.pos, lo, hi)
	s.mode = ModeAttackSelection
	return s
}

// --- Read-only projections for the UI ---

func (hs *HumanStrategy) Mode() HumanMode { return hs.state.mode }

func (hs *HumanStrategy) TargetedUnit() (unit.Handle, bool) {
	return hs.state.target, hs.state.hasTarget
}

func (hs *HumanStrategy) TargetedPosition() (battle.Position, bool) {
	return hs.state.hover, hs.state.hasHover
}

// MovementRange returns the cached reachable cells while in move selection.
func (hs *HumanStrategy) MovementRange() []battle.Position {
	return hs.state.moveCells
}

// AttackArea returns the cached attack range while in attack selection.
func (hs *HumanStrategy) AttackArea() *battle.AttackArea {
	return hs.state.attack
}

// HoverPath returns the cached path to the hovered cell in move selection.
func (hs *HumanStrategy) HoverPath() []battle.Position {
	if !hs.state.hasHover {
		return nil
	}
	return hs.state.paths[hs.state.hover]
}

// Active reports whether the strategy is driving a turn.
func (hs *HumanStrategy) Active() bool { return hs.active }
