package turn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Garsondee/grid-tactics/internal/battle"
	"github.com/Garsondee/grid-tactics/internal/unit"
)

// Behavior names accepted by BehaviorsByName.
const (
	BehaviorAttackInPlace     = "attack-in-place"
	BehaviorAdvanceAndAttack  = "advance-and-attack"
	BehaviorStrikeAndWithdraw = "strike-and-withdraw"
	BehaviorApproachNearest   = "approach-nearest"
	BehaviorHoldPosition      = "hold-position"
)

// DefaultBehaviorNames is the priority list used when none is configured.
// It ends with hold-position so some behavior always decides.
var DefaultBehaviorNames = []string{
	BehaviorAttackInPlace,
	BehaviorAdvanceAndAttack,
	BehaviorApproachNearest,
	BehaviorHoldPosition,
}

// BehaviorsByName builds a prioritized behavior list from config names.
func BehaviorsByName(names []string) ([]Behavior, error) {
	out := make([]Behavior, 0, len(names))
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case BehaviorAttackInPlace:
			out = append(out, AttackInPlace{})
		case BehaviorAdvanceAndAttack:
			out = append(out, AdvanceAndAttack{})
		case BehaviorStrikeAndWithdraw:
			out = append(out, StrikeAndWithdraw{})
		case BehaviorApproachNearest:
			out = append(out, ApproachNearest{})
		case BehaviorHoldPosition:
			out = append(out, HoldPosition{})
		default:
			return nil, fmt.Errorf("unknown behavior %q", n)
		}
	}
	return out, nil
}

// DefaultBehaviors returns the default priority list.
func DefaultBehaviors() []Behavior {
	bs, _ := BehaviorsByName(DefaultBehaviorNames)
	return bs
}

// AttackInPlace strikes the weakest enemy already in reach.
type AttackInPlace struct{}

func (AttackInPlace) Name() string { return BehaviorAttackInPlace }

func (AttackInPlace) Decide(dc *DecisionContext) (Decision, bool) {
	h, ok := dc.Weakest(dc.Targets)
	if !ok {
		return Decision{}, false
	}
	p, _ := dc.PositionOf(h)
	return Decision{Order: OrderActOnly, Target: p, HasTarget: true}, true
}

// AdvanceAndAttack moves into reach of the weakest enemy it can get to this
// turn, taking the shortest route, then strikes.
type AdvanceAndAttack struct{}

func (AdvanceAndAttack) Name() string { return BehaviorAdvanceAndAttack }

func (AdvanceAndAttack) Decide(dc *DecisionContext) (Decision, bool) {
	if len(dc.Opportunities) == 0 {
		return Decision{}, false
	}
	seen := make(map[unit.Handle]bool)
	var enemies []unit.Handle
	for _, o := range dc.Opportunities {
		if !seen[o.Enemy] {
			seen[o.Enemy] = true
			enemies = append(enemies, o.Enemy)
		}
	}
	sort.Slice(enemies, func(i, j int) bool { return enemies[i] < enemies[j] })
	victim, _ := dc.Weakest(enemies)
	for _, o := range dc.Opportunities {
		if o.Enemy == victim {
			return Decision{
				Order:     OrderMoveFirst,
				Path:      dc.Paths[o.From],
				Target:    o.Target,
				HasTarget: true,
			}, true
		}
	}
	return Decision{}, false
}

// StrikeAndWithdraw attacks from where it stands, then falls back to the
// reachable cell farthest from the nearest enemy.
type StrikeAndWithdraw struct{}

func (StrikeAndWithdraw) Name() string { return BehaviorStrikeAndWithdraw }

func (StrikeAndWithdraw) Decide(dc *DecisionContext) (Decision, bool) {
	h, ok := dc.Weakest(dc.Targets)
	if !ok || len(dc.Movement) == 0 {
		return Decision{}, false
	}
	target, _ := dc.PositionOf(h)

	best, bestDist := dc.Start, dc.nearestEnemyDistance(dc.Start)
	for _, c := range dc.Movement {
		if d := dc.nearestEnemyDistance(c); d > bestDist {
			best, bestDist = c, d
		}
	}
	if best == dc.Start {
		return Decision{}, false
	}
	return Decision{
		Order:     OrderActFirst,
		Path:      dc.Paths[best],
		Target:    target,
		HasTarget: true,
	}, true
}

// ApproachNearest closes distance on the nearest enemy without attacking.
type ApproachNearest struct{}

func (ApproachNearest) Name() string { return BehaviorApproachNearest }

func (ApproachNearest) Decide(dc *DecisionContext) (Decision, bool) {
	enemy, ok := dc.nearestEnemy(dc.Start)
	if !ok || len(dc.Movement) == 0 {
		return Decision{}, false
	}
	goal, _ := dc.PositionOf(enemy)

	best, bestDist, bestLen := dc.Start, battle.Manhattan(dc.Start, goal), 0
	for _, c := range dc.Movement {
		d := battle.Manhattan(c, goal)
		l := len(dc.Paths[c])
		if d < bestDist || (d == bestDist && best != dc.Start && l < bestLen) {
			best, bestDist, bestLen = c, d, l
		}
	}
	if best == dc.Start {
		return Decision{}, false
	}
	return Decision{Order: OrderMoveOnly, Path: dc.Paths[best]}, true
}

// HoldPosition always decides to stay put and end the turn.
type HoldPosition struct{}

func (HoldPosition) Name() string { return BehaviorHoldPosition }

func (HoldPosition) Decide(*DecisionContext) (Decision, bool) {
	return Decision{Order: OrderActOnly}, true
}

// --- Helpers ---

func (dc *DecisionContext) nearestEnemy(from battle.Position) (unit.Handle, bool) {
	best, bestDist, found := unit.NoHandle, 0, false
	for _, h := range dc.Enemies {
		p, ok := dc.PositionOf(h)
		if !ok {
			continue
		}
		if d := battle.Manhattan(from, p); !found || d < bestDist {
			best, bestDist, found = h, d, true
		}
	}
	return best, found
}

func (dc *DecisionContext) nearestEnemyDistance(from battle.Position) int {
	h, ok := dc.nearestEnemy(from)
	if !ok {
		return 0
	}
	p, _ := dc.PositionOf(h)
	return battle.Manhattan(from, p)
}

// sortOpportunities orders by path length, then target cell, then source
// cell, both row-major.
func sortOpportunities(ops []Opportunity, paths map[battle.Position][]battle.Position) {
	less := func(a, b battle.Position) bool {
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	}
	sort.SliceStable(ops, func(i, j int) bool {
		li, lj := len(paths[ops[i].From]), len(paths[ops[j].From])
		if li != lj {
			return li < lj
		}
		if ops[i].Target != ops[j].Target {
			return less(ops[i].Target, ops[j].Target)
		}
		return less(ops[i].From, ops[j].From)
	})
}
