package unit

import "github.com/google/uuid"

// PermanentDuration marks a modifier that never ticks down.
const PermanentDuration = -1

// StatModifier is an additive adjustment to exactly one stat channel.
type StatModifier struct {
	ID       string  `json:"id" yaml:"id"`
	Source   string  `json:"source" yaml:"source"` // bulk-removal key, e.g. a passive ability id
	Stat     Stat    `json:"stat" yaml:"stat"`
	Value    float64 `json:"value" yaml:"value"`
	Duration int     `json:"duration" yaml:"duration"` // -1 = permanent, >0 = owner turns remaining
}

// IsPermanent reports whether the modifier never expires.
func (m StatModifier) IsPermanent() bool {
	return m.Duration == PermanentDuration
}

// AddStatModifier attaches m to the unit and returns its id. A modifier
// with an id already present replaces the old one in place; an empty id is
// filled with a fresh UUID.
func (u *Unit) AddStatModifier(m StatModifier) string {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	for i := range u.modifiers {
		if u.modifiers[i].ID == m.ID {
			u.modifiers[i] = m
			return m.ID
		}
	}
	u.modifiers = append(u.modifiers, m)
	return m.ID
}

// RemoveStatModifier drops the modifier with the given id. Returns false if
// no such modifier was attached.
func (u *Unit) RemoveStatModifier(id string) bool {
	for i := range u.modifiers {
		if u.modifiers[i].ID == id {
			u.modifiers = append(u.modifiers[:i], u.modifiers[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveModifiersBySource drops every modifier carrying source and returns
// how many were removed.
func (u *Unit) RemoveModifiersBySource(source string) int {
	kept := u.modifiers[:0]
	removed := 0
	for _, m := range u.modifiers {
		if m.Source == source {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	// Clear the tail so dropped values are not retained by the backing array.
	for i := len(kept); i < len(u.modifiers); i++ {
		u.modifiers[i] = StatModifier{}
	}
	u.modifiers = kept
	return removed
}

// DecrementDurations ticks every timed modifier down by one owner turn and
// returns the ones that reached zero, in attachment order. Permanent
// modifiers are untouched.
func (u *Unit) DecrementDurations() []StatModifier {
	var expired []StatModifier
	kept := u.modifiers[:0]
	for _, m := range u.modifiers {
		if m.Duration > 0 {
			m.Duration--
			if m.Duration == 0 {
				expired = append(expired, m)
				continue
			}
		}
		kept = append(kept, m)
	}
	for i := len(kept); i < len(u.modifiers); i++ {
		u.modifiers[i] = StatModifier{}
	}
	u.modifiers = kept
	return expired
}

// StatModifiers returns a copy of the attached modifiers.
func (u *Unit) StatModifiers() []StatModifier {
	out := make([]StatModifier, len(u.modifiers))
	copy(out, u.modifiers)
	return out
}
