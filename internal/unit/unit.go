package unit

// Kind tags which variant a Unit is.
type Kind uint8

const (
	KindHumanoid Kind = iota // player-style unit with class, equipment and abilities
	KindMonster              // simplified unit with a natural weapon
)

func (k Kind) String() string {
	switch k {
	case KindHumanoid:
		return "humanoid"
	case KindMonster:
		return "monster"
	default:
		return "unknown"
	}
}

// unarmed range used when a humanoid holds no weapon.
const (
	unarmedMinRange = 1
	unarmedMaxRange = 1
)

type humanoidTraits struct {
	class      *Class
	slots      [slotCount]*Equipment
	experience int
	learned    []*Ability
	assigned   [abilityTypeCount]*Ability
}

type monsterTraits struct {
	template *MonsterType
}

// Unit is a combat participant. Exactly one of humanoid / monster is set,
// matching Kind.
type Unit struct {
	Name             string
	PlayerControlled bool

	kind      Kind
	base      Stats
	wounds    int
	manaUsed  int
	modifiers []StatModifier

	humanoid *humanoidTraits
	monster  *monsterTraits
}

// NewHumanoid creates a humanoid of the given class. A nil class yields a
// classless unit with zero base stats; use SetBase to fill them in.
func NewHumanoid(name string, class *Class, playerControlled bool) *Unit {
	u := &Unit{
		Name:             name,
		PlayerControlled: playerControlled,
		kind:             KindHumanoid,
		humanoid:         &humanoidTraits{class: class},
	}
	if class != nil {
		u.base = class.Base
	}
	return u
}

// NewMonster creates a monster from a template.
func NewMonster(name string, template *MonsterType, playerControlled bool) *Unit {
	u := &Unit{
		Name:             name,
		PlayerControlled: playerControlled,
		kind:             KindMonster,
		monster:          &monsterTraits{template: template},
	}
	if template != nil {
		u.base = template.Base
	}
	return u
}

// Kind returns the unit variant.
func (u *Unit) Kind() Kind { return u.kind }

// Class returns the humanoid's class, or nil.
func (u *Unit) Class() *Class {
	if u.humanoid == nil {
		return nil
	}
	return u.humanoid.class
}

// MonsterType returns the monster template, or nil.
func (u *Unit) MonsterType() *MonsterType {
	if u.monster == nil {
		return nil
	}
	return u.monster.template
}

// Base returns the unmodified base value of a stat.
func (u *Unit) Base(s Stat) int {
	if s >= statCount {
		return 0
	}
	return u.base[s]
}

// SetBase overwrites the base value of a stat.
func (u *Unit) SetBase(s Stat, v int) {
	if s < statCount {
		u.base[s] = v
	}
}

// BaseStats returns a copy of the base stat block.
func (u *Unit) BaseStats() Stats { return u.base }

// Stat returns the effective value of a channel: base plus every flat
// contribution, times every multiplier, truncated once and floored at zero.
// Weapons never contribute to the power channels.
func (u *Unit) Stat(s Stat) int {
	if s >= statCount {
		return 0
	}
	flat := 0.0
	for _, m := range u.modifiers {
		if m.Stat == s {
			flat += m.Value
		}
	}
	mul := 1.0
	for _, it := range u.equippedItems() {
		if it.Type.IsWeapon() && s.IsPower() {
			continue
		}
		flat += it.Modifiers[s]
		if v, ok := it.Multipliers[s]; ok {
			mul *= v
		}
	}
	return resolveStat(u.base[s], flat, mul)
}

func (u *Unit) MaxHealth() int     { return u.Stat(StatMaxHealth) }
func (u *Unit) MaxMana() int       { return u.Stat(StatMaxMana) }
func (u *Unit) PhysicalPower() int { return u.Stat(StatPhysicalPower) }
func (u *Unit) MagicPower() int    { return u.Stat(StatMagicPower) }
func (u *Unit) Speed() int         { return u.Stat(StatSpeed) }
func (u *Unit) Movement() int      { return u.Stat(StatMovement) }

// Wounds returns accumulated damage.
func (u *Unit) Wounds() int { return u.wounds }

// ManaUsed returns spent mana.
func (u *Unit) ManaUsed() int { return u.manaUsed }

// Health is derived from max health and wounds.
func (u *Unit) Health() int {
	return max(0, u.MaxHealth()-u.wounds)
}

// Mana is derived from max mana and mana used.
func (u *Unit) Mana() int {
	return max(0, u.MaxMana()-u.manaUsed)
}

// IsKnockedOut reports whether wounds have reached max health.
func (u *Unit) IsKnockedOut() bool {
	return u.wounds >= u.MaxHealth()
}

// TakeDamage adds wounds, clamped to [0, max health]. Returns the wounds
// actually applied.
func (u *Unit) TakeDamage(n int) int {
	if n <= 0 {
		return 0
	}
	before := u.wounds
	u.wounds = clampInt(u.wounds+n, 0, u.MaxHealth())
	return u.wounds - before
}

// Heal removes wounds, clamped at zero. Returns the amount healed.
func (u *Unit) Heal(n int) int {
	if n <= 0 {
		return 0
	}
	before := u.wounds
	u.wounds = clampInt(u.wounds-n, 0, u.MaxHealth())
	return before - u.wounds
}

// SpendMana consumes mana. Returns false, spending nothing, when the pool is
// short.
func (u *Unit) SpendMana(n int) bool {
	if n < 0 || n > u.Mana() {
		return false
	}
	u.manaUsed += n
	return true
}

// RestoreMana refunds spent mana, clamped at zero used.
func (u *Unit) RestoreMana(n int) {
	if n <= 0 {
		return
	}
	u.manaUsed = clampInt(u.manaUsed-n, 0, u.MaxMana())
}

// AttackRange returns the inclusive range of the unit's basic attack: the
// first equipped weapon for humanoids (dual-wielded weapons share a range),
// the template's natural weapon for monsters (a 0-0 range is self only),
// and 1-1 when unarmed or without a template.
func (u *Unit) AttackRange() (int, int) {
	switch u.kind {
	case KindHumanoid:
		if ws := u.Weapons(); len(ws) > 0 {
			return ws[0].Range()
		}
	case KindMonster:
		if t := u.MonsterType(); t != nil {
			return t.MinRange, t.MaxRange
		}
	}
	return unarmedMinRange, unarmedMaxRange
}

// WeaponPower returns the strongest physical power bonus carried by an
// equipped weapon, or the monster's natural weapon power. This is the value
// weapons add to damage in place of stacking onto the wielder's stat.
func (u *Unit) WeaponPower() int {
	switch u.kind {
	case KindMonster:
		if t := u.MonsterType(); t != nil {
			return t.Power
		}
	case KindHumanoid:
		best := 0
		for _, w := range u.Weapons() {
			if p := int(w.Modifiers[StatPhysicalPower]); p > best {
				best = p
			}
		}
		return best
	}
	return 0
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
