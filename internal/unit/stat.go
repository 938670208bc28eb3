package unit

import (
	"fmt"
	"math"
)

// Stat identifies one of the ten combat stat channels.
type Stat uint8

const (
	StatMaxHealth     Stat = iota // hit points before knock-out
	StatMaxMana                   // mana pool
	StatPhysicalPower             // weapon / melee damage
	StatMagicPower                // spell damage
	StatSpeed                     // turn order
	StatMovement                  // orthogonal steps per turn
	StatPhysicalEvade             // physical avoidance
	StatMagicEvade                // magical avoidance
	StatCourage                   // resistance to fear effects
	StatAttunement                // resistance to magic effects
	statCount                     // sentinel
)

var statNames = [statCount]string{
	StatMaxHealth:     "maxHealth",
	StatMaxMana:       "maxMana",
	StatPhysicalPower: "physicalPower",
	StatMagicPower:    "magicPower",
	StatSpeed:         "speed",
	StatMovement:      "movement",
	StatPhysicalEvade: "physicalEvade",
	StatMagicEvade:    "magicEvade",
	StatCourage:       "courage",
	StatAttunement:    "attunement",
}

// AllStats returns every stat channel in declaration order.
func AllStats() []Stat {
	out := make([]Stat, statCount)
	for i := range out {
		out[i] = Stat(i)
	}
	return out
}

func (s Stat) String() string {
	if s >= statCount {
		return "unknown"
	}
	return statNames[s]
}

// IsPower reports whether s is one of the two power channels that weapons
// never contribute to.
func (s Stat) IsPower() bool {
	return s == StatPhysicalPower || s == StatMagicPower
}

// ParseStat resolves a stat channel from its String form.
func ParseStat(name string) (Stat, error) {
	for i, n := range statNames {
		if n == name {
			return Stat(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stat %q", name)
}

// MarshalText encodes the stat by name.
func (s Stat) MarshalText() ([]byte, error) {
	if s >= statCount {
		return nil, fmt.Errorf("invalid stat %d", s)
	}
	return []byte(statNames[s]), nil
}

// UnmarshalText decodes a stat name.
func (s *Stat) UnmarshalText(b []byte) error {
	v, err := ParseStat(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Stats is a base value per channel.
type Stats [statCount]int

// StatsFromMap builds a Stats block from name→value pairs. Unknown names are
// returned as an error so catalog typos surface early.
func StatsFromMap(m map[string]int) (Stats, error) {
	var st Stats
	for name, v := range m {
		s, err := ParseStat(name)
		if err != nil {
			return Stats{}, err
		}
		st[s] = v
	}
	return st, nil
}

// Map returns the non-zero channels keyed by name.
func (st Stats) Map() map[string]int {
	out := make(map[string]int, statCount)
	for i, v := range st {
		if v != 0 {
			out[statNames[i]] = v
		}
	}
	return out
}

// resolveStat folds a base value, flat contributions and a multiplier
// product into an effective stat. Truncation happens once, at the end.
func resolveStat(base int, flat, mul float64) int {
	v := math.Trunc((float64(base) + flat) * mul)
	if v < 0 {
		return 0
	}
	return int(v)
}
