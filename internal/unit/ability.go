package unit

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNegativeExperience is returned when a caller tries to add a negative
// amount of experience. It is a caller bug, not a game rule violation.
var ErrNegativeExperience = errors.New("negative experience")

// AbilityType selects which assignment slot an ability occupies.
type AbilityType uint8

const (
	AbilityAction AbilityType = iota
	AbilityReaction
	AbilityPassive
	AbilityMovement
	abilityTypeCount
)

var abilityTypeNames = [abilityTypeCount]string{
	AbilityAction:   "action",
	AbilityReaction: "reaction",
	AbilityPassive:  "passive",
	AbilityMovement: "movement",
}

func (t AbilityType) String() string {
	if t >= abilityTypeCount {
		return "unknown"
	}
	return abilityTypeNames[t]
}

// ParseAbilityType resolves an ability type from its String form.
func ParseAbilityType(name string) (AbilityType, error) {
	for i, n := range abilityTypeNames {
		if n == name {
			return AbilityType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown ability type %q", name)
}

// ModifierGrant is a stat bonus an ability applies while assigned.
type ModifierGrant struct {
	Stat  Stat
	Value float64
}

// Ability is an immutable ability definition.
type Ability struct {
	ID              string
	Name            string
	Type            AbilityType
	ExperienceCost  int
	Grants          []ModifierGrant // applied as permanent modifiers while assigned (passives)
	GrantsDualWield bool
}

// AssignReason is the closed set of reasons learning or assigning an ability
// can fail.
type AssignReason uint8

const (
	AssignOK AssignReason = iota
	ReasonNotLearned
	ReasonWrongAbilityType
	ReasonAlreadyAssigned
	ReasonAlreadyLearned
	ReasonUnknownAbility
	ReasonInsufficientExperience
	ReasonNotClassAbility
	ReasonNoAbilitySlots
)

func (r AssignReason) String() string {
	switch r {
	case AssignOK:
		return "ok"
	case ReasonNotLearned:
		return "not-learned"
	case ReasonWrongAbilityType:
		return "wrong-ability-type"
	case ReasonAlreadyAssigned:
		return "already-assigned"
	case ReasonAlreadyLearned:
		return "already-learned"
	case ReasonUnknownAbility:
		return "unknown-ability"
	case ReasonInsufficientExperience:
		return "insufficient-experience"
	case ReasonNotClassAbility:
		return "not-class-ability"
	case ReasonNoAbilitySlots:
		return "no-ability-slots"
	default:
		return "unknown"
	}
}

// AssignResult describes the outcome of LearnAbility, AssignAbility or
// UnassignAbility.
type AssignResult struct {
	Success bool
	Message string
	Reason  AssignReason
}

func assignFailed(reason AssignReason, format string, args ...any) AssignResult {
	return AssignResult{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Experience returns unspent experience. Monsters always have zero.
func (u *Unit) Experience() int {
	if u.humanoid == nil {
		return 0
	}
	return u.humanoid.experience
}

// AddExperience grants unspent experience.
func (u *Unit) AddExperience(n int) error {
	if n < 0 {
		return fmt.Errorf("add %d experience to %s: %w", n, u.Name, ErrNegativeExperience)
	}
	if u.humanoid != nil {
		u.humanoid.experience += n
	}
	return nil
}

// LearnAbility spends experience to learn a. The ability must belong to the
// unit's class list when the class declares one.
func (u *Unit) LearnAbility(a *Ability) AssignResult {
	h := u.humanoid
	if h == nil {
		return assignFailed(ReasonNoAbilitySlots, "%s cannot learn abilities", u.Name)
	}
	if a == nil {
		return assignFailed(ReasonUnknownAbility, "no ability given")
	}
	if u.HasLearned(a.ID) {
		return assignFailed(ReasonAlreadyLearned, "%s already knows %s", u.Name, a.Name)
	}
	if h.class != nil && len(h.class.Abilities) > 0 && !slices.Contains(h.class.Abilities, a.ID) {
		return assignFailed(ReasonNotClassAbility, "%s is not a %s ability", a.Name, h.class.Name)
	}
	if h.experience < a.ExperienceCost {
		return assignFailed(ReasonInsufficientExperience, "%s needs %d experience, has %d", a.Name, a.ExperienceCost, h.experience)
	}
	h.experience -= a.ExperienceCost
	h.learned = append(h.learned, a)
	return AssignResult{Success: true, Message: fmt.Sprintf("%s learned %s", u.Name, a.Name)}
}

// HasLearned reports whether the ability id has been learned.
func (u *Unit) HasLearned(id string) bool {
	if u.humanoid == nil {
		return false
	}
	for _, l := range u.humanoid.learned {
		if l.ID == id {
			return true
		}
	}
	return false
}

// LearnedAbilities returns learned abilities in learning order.
func (u *Unit) LearnedAbilities() []*Ability {
	if u.humanoid == nil {
		return nil
	}
	return slices.Clone(u.humanoid.learned)
}

// AssignAbility puts a learned ability into the slot matching its type,
// replacing whatever was there. Passive grants are applied as permanent
// modifiers sourced by the ability id.
func (u *Unit) AssignAbility(a *Ability) AssignResult {
	h := u.humanoid
	if h == nil {
		return assignFailed(ReasonNoAbilitySlots, "%s has no ability slots", u.Name)
	}
	if a == nil {
		return assignFailed(ReasonUnknownAbility, "no ability given")
	}
	if a.Type >= abilityTypeCount {
		return assignFailed(ReasonWrongAbilityType, "%s has invalid type", a.Name)
	}
	if !u.HasLearned(a.ID) {
		return assignFailed(ReasonNotLearned, "%s has not learned %s", u.Name, a.Name)
	}
	if cur := h.assigned[a.Type]; cur != nil && cur.ID == a.ID {
		return assignFailed(ReasonAlreadyAssigned, "%s is already assigned", a.Name)
	}
	u.UnassignAbility(a.Type)
	h.assigned[a.Type] = a
	u.applyGrants(a)
	return AssignResult{Success: true, Message: fmt.Sprintf("assigned %s as %s", a.Name, a.Type)}
}

// AssignAbilityAs assigns a into the slot of type t, failing when the
// ability's own type does not match.
func (u *Unit) AssignAbilityAs(t AbilityType, a *Ability) AssignResult {
	if a != nil && a.Type != t {
		return assignFailed(ReasonWrongAbilityType, "%s is a %s ability, not %s", a.Name, a.Type, t)
	}
	return u.AssignAbility(a)
}

// UnassignAbility clears the slot of type t and removes any modifiers the
// previous ability granted.
func (u *Unit) UnassignAbility(t AbilityType) AssignResult {
	h := u.humanoid
	if h == nil || t >= abilityTypeCount {
		return assignFailed(ReasonNoAbilitySlots, "no %s slot", t)
	}
	prev := h.assigned[t]
	if prev == nil {
		return AssignResult{Success: true, Message: fmt.Sprintf("%s slot already empty", t)}
	}
	h.assigned[t] = nil
	u.RemoveModifiersBySource(prev.ID)
	return AssignResult{Success: true, Message: fmt.Sprintf("unassigned %s", prev.Name)}
}

// AssignedAbility returns the ability in slot t, or nil.
func (u *Unit) AssignedAbility(t AbilityType) *Ability {
	if u.humanoid == nil || t >= abilityTypeCount {
		return nil
	}
	return u.humanoid.assigned[t]
}

func (u *Unit) applyGrants(a *Ability) {
	for i, g := range a.Grants {
		u.AddStatModifier(StatModifier{
			ID:       fmt.Sprintf("%s#%d", a.ID, i),
			Source:   a.ID,
			Stat:     g.Stat,
			Value:    g.Value,
			Duration: PermanentDuration,
		})
	}
}

// CanDualWield reports whether the class or an assigned ability grants dual
// wielding.
func (u *Unit) CanDualWield() bool {
	h := u.humanoid
	if h == nil {
		return false
	}
	if h.class != nil && h.class.DualWield {
		return true
	}
	for _, a := range h.assigned {
		if a != nil && a.GrantsDualWield {
			return true
		}
	}
	return false
}
