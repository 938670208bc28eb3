package battle

// AttackArea is the result of an attack range query. Blocked and
// ValidTargets are both subsets of InRange and never overlap.
type AttackArea struct {
	Origin       Position
	InRange      []Position
	Blocked      []Position
	ValidTargets []Position

	inRange map[Position]bool
	blocked map[Position]bool
	targets map[Position]bool
}

// IsInRange reports whether p lies within the weapon's reach.
func (a *AttackArea) IsInRange(p Position) bool {
	return a != nil && a.inRange[p]
}

// IsBlocked reports whether p is in range but cannot be struck.
func (a *AttackArea) IsBlocked(p Position) bool { return a != nil && a.blocked[p] }

// IsValidTarget reports whether p holds a unit that can be struck.
func (a *AttackArea) IsValidTarget(p Position) bool { return a != nil && a.targets[p] }

// AttackRange computes the cells an attacker at from can reach with a
// weapon of range [minRange, maxRange]. Any standing unit may be targeted,
// allies included. Knocked-out units are never targets.
func AttackRange(t Terrain, m *Manifest, from Position, minRange, maxRange int) *AttackArea {
	a := &AttackArea{
		Origin:  from,
		inRange: make(map[Position]bool),
		blocked: make(map[Position]bool),
		targets: make(map[Position]bool),
	}
	if maxRange < minRange || maxRange < 0 {
		return a
	}
	for dy := -maxRange; dy <= maxRange; dy++ {
		for dx := -maxRange; dx <= maxRange; dx++ {
			d := absInt(dx) + absInt(dy)
			if d < minRange || d > maxRange {
				continue
			}
			p := Position{from.X + dx, from.Y + dy}
			if !t.InBounds(p) {
				continue
			}
			a.InRange = append(a.InRange, p)
			a.inRange[p] = true
			if !t.IsWalkable(p) || !HasLineOfSight(t, m, from, p) {
				a.Blocked = append(a.Blocked, p)
				a.blocked[p] = true
				continue
			}
			if m.activeAt(p) {
				a.ValidTargets = append(a.ValidTargets, p)
				a.targets[p] = true
			}
		}
	}
	return a
}
