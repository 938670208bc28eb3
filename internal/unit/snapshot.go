package unit

import "fmt"

// Snapshot is the persisted form of a Unit. Kind selects which of Humanoid /
// Monster is populated.
type Snapshot struct {
	Kind             string          `json:"kind"`
	Name             string          `json:"name"`
	PlayerControlled bool            `json:"playerControlled"`
	Base             map[string]int  `json:"base"`
	Wounds           int             `json:"wounds"`
	ManaUsed         int             `json:"manaUsed"`
	Modifiers        []ModifierRecord `json:"modifiers,omitempty"`
	Humanoid         *HumanoidRecord `json:"humanoid,omitempty"`
	Monster          *MonsterRecord  `json:"monster,omitempty"`
}

// HumanoidRecord holds the humanoid-only fields of a Snapshot. All
// references are catalog ids.
type HumanoidRecord struct {
	ClassID    string            `json:"classId"`
	Experience int               `json:"experience"`
	Equipment  map[string]string `json:"equipment,omitempty"` // slot name -> equipment id
	Learned    []string          `json:"learned,omitempty"`
	Assigned   map[string]string `json:"assigned,omitempty"` // ability type -> ability id
}

// ModifierRecord is the persisted form of a StatModifier. The stat channel
// is kept by name so a renamed channel degrades to a RestoreIssue instead of
// failing the decode.
type ModifierRecord struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	Stat     string  `json:"stat"`
	Value    float64 `json:"value"`
	Duration int     `json:"duration"`
}

// MonsterRecord holds the monster-only fields of a Snapshot.
type MonsterRecord struct {
	TemplateID string `json:"templateId"`
}

// RestoreIssue records a reference that could not be resolved during Restore.
// The affected field is left empty.
type RestoreIssue struct {
	Field string
	ID    string
	Cause string
}

func (ri RestoreIssue) String() string {
	return fmt.Sprintf("%s %q: %s", ri.Field, ri.ID, ri.Cause)
}

// Snapshot captures the unit by value and by catalog id.
func (u *Unit) Snapshot() Snapshot {
	s := Snapshot{
		Kind:             u.kind.String(),
		Name:             u.Name,
		PlayerControlled: u.PlayerControlled,
		Base:             u.base.Map(),
		Wounds:           u.wounds,
		ManaUsed:         u.manaUsed,
	}
	for _, m := range u.modifiers {
		s.Modifiers = append(s.Modifiers, ModifierRecord{
			ID: m.ID, Source: m.Source, Stat: m.Stat.String(), Value: m.Value, Duration: m.Duration,
		})
	}
	switch u.kind {
	case KindHumanoid:
		h := u.humanoid
		rec := &HumanoidRecord{
			Experience: h.experience,
			Equipment:  make(map[string]string),
			Assigned:   make(map[string]string),
		}
		if h.class != nil {
			rec.ClassID = h.class.ID
		}
		for i, it := range h.slots {
			if it != nil {
				rec.Equipment[Slot(i).String()] = it.ID
			}
		}
		for _, a := range h.learned {
			rec.Learned = append(rec.Learned, a.ID)
		}
		for i, a := range h.assigned {
			if a != nil {
				rec.Assigned[AbilityType(i).String()] = a.ID
			}
		}
		s.Humanoid = rec
	case KindMonster:
		rec := &MonsterRecord{}
		if t := u.MonsterType(); t != nil {
			rec.TemplateID = t.ID
		}
		s.Monster = rec
	}
	return s
}

// Restore rebuilds a unit from a snapshot against cat. Unknown class,
// ability, equipment or template ids leave the referencing field empty and are
// reported as issues; the rest of the unit is still restored. An error is
// returned only when the snapshot's kind itself is unusable. Unknown stat
// names in the base block or in modifiers are skipped the same way.
func Restore(s Snapshot, cat *Catalog) (*Unit, []RestoreIssue, error) {
	var issues []RestoreIssue
	note := func(field, id, cause string) {
		issues = append(issues, RestoreIssue{Field: field, ID: id, Cause: cause})
	}

	base := restoreBase(s.Base, note)
	mods := restoreModifiers(s.Modifiers, note)

	var u *Unit
	switch s.Kind {
	case KindHumanoid.String():
		rec := s.Humanoid
		if rec == nil {
			rec = &HumanoidRecord{}
		}
		var class *Class
		if rec.ClassID != "" {
			if c, ok := cat.Class(rec.ClassID); ok {
				class = c
			} else {
				note("class", rec.ClassID, "unknown class")
			}
		}
		u = NewHumanoid(s.Name, class, s.PlayerControlled)
		u.base = base
		u.wounds, u.manaUsed = s.Wounds, s.ManaUsed
		u.modifiers = mods
		u.humanoid.experience = rec.Experience

		for _, id := range rec.Learned {
			a, ok := cat.Ability(id)
			if !ok {
				note("learned", id, "unknown ability")
				continue
			}
			u.humanoid.learned = append(u.humanoid.learned, a)
		}
		// Assigned abilities are restored without re-applying grants: their
		// modifiers are already part of the snapshot.
		for typeName, id := range rec.Assigned {
			t, err := ParseAbilityType(typeName)
			if err != nil {
				note("assigned", id, err.Error())
				u.RemoveModifiersBySource(id)
				continue
			}
			a, ok := cat.Ability(id)
			if !ok || !u.HasLearned(id) || a.Type != t {
				note("assigned", id, "ability unavailable")
				u.RemoveModifiersBySource(id)
				continue
			}
			u.humanoid.assigned[t] = a
		}
		// Abilities go in before equipment so a granted dual wield is visible
		// to the hand checks. Items that no longer pass legality are dropped.
		for _, slot := range AllSlots() {
			id, ok := rec.Equipment[slot.String()]
			if !ok {
				continue
			}
			it, found := cat.Equipment(id)
			if !found {
				note("equipment."+slot.String(), id, "unknown equipment")
				continue
			}
			if res := u.Equip(slot, it); !res.Success {
				note("equipment."+slot.String(), id, res.Reason.String())
			}
		}
		for name := range rec.Equipment {
			if _, err := ParseSlot(name); err != nil {
				note("equipment", name, "unknown slot")
			}
		}
	case KindMonster.String():
		var tmpl *MonsterType
		if s.Monster != nil && s.Monster.TemplateID != "" {
			if t, ok := cat.Monster(s.Monster.TemplateID); ok {
				tmpl = t
			} else {
				note("monster", s.Monster.TemplateID, "unknown monster template")
			}
		}
		u = NewMonster(s.Name, tmpl, s.PlayerControlled)
		u.base = base
		u.wounds, u.manaUsed = s.Wounds, s.ManaUsed
		u.modifiers = mods
	default:
		return nil, nil, fmt.Errorf("restore %s: unknown unit kind %q", s.Name, s.Kind)
	}

	u.wounds = clampInt(u.wounds, 0, u.MaxHealth())
	u.manaUsed = clampInt(u.manaUsed, 0, u.MaxMana())
	return u, issues, nil
}

func restoreBase(m map[string]int, note func(field, id, cause string)) Stats {
	var st Stats
	for _, name := range sortedKeys(m) {
		s, err := ParseStat(name)
		if err != nil {
			note("base", name, err.Error())
			continue
		}
		st[s] = m[name]
	}
	return st
}

func restoreModifiers(recs []ModifierRecord, note func(field, id, cause string)) []StatModifier {
	mods := make([]StatModifier, 0, len(recs))
	for _, r := range recs {
		s, err := ParseStat(r.Stat)
		if err != nil {
			note("modifier", r.ID, err.Error())
			continue
		}
		mods = append(mods, StatModifier{ID: r.ID, Source: r.Source, Stat: s, Value: r.Value, Duration: r.Duration})
	}
	return mods
}
