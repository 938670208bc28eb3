package turn

import (
	"fmt"
	"strings"
)

// Log categories.
const (
	CatTurn      = "turn"
	CatMove      = "move"
	CatAttack    = "attack"
	CatKnockOut  = "ko"
	CatModifier  = "modifier"
	CatAI        = "ai"
	CatEncounter = "encounter"
	CatRejected  = "rejected"
)

// CombatLogEntry is one recorded event of an encounter.
type CombatLogEntry struct {
	Round    int
	Turn     int
	Unit     string // "--" for encounter-wide events
	Side     string // player, enemy or --
	Category string
	Key      string
	Value    string
	NumVal   float64 // damage dealt, path length, modifier value
}

// String renders the entry as one report line:
//
//	[R02 T007] Aldo       attack   hit              Grey for 9
func (e CombatLogEntry) String() string {
	return fmt.Sprintf("[R%02d T%03d] %-10s %-9s %-16s %s",
		e.Round, e.Turn, e.Unit, e.Category, e.Key, e.Value)
}

func (e CombatLogEntry) matches(category, key string) bool {
	return (category == "" || e.Category == category) && (key == "" || e.Key == key)
}

// CombatLog is the ordered record of everything an encounter resolved.
// Verbose logs also keep AI deliberation (which behavior fired, lost
// targets). A nil *CombatLog discards writes.
type CombatLog struct {
	entries []CombatLogEntry
	verbose bool
}

// NewCombatLog returns an empty log.
func NewCombatLog(verbose bool) *CombatLog {
	return &CombatLog{verbose: verbose}
}

// Verbose reports whether deliberation entries are kept.
func (cl *CombatLog) Verbose() bool { return cl != nil && cl.verbose }

// Add appends an entry.
func (cl *CombatLog) Add(round, turn int, unitName, side, category, key, value string, numVal float64) {
	if cl == nil {
		return
	}
	cl.entries = append(cl.entries, CombatLogEntry{
		Round: round, Turn: turn,
		Unit: unitName, Side: side,
		Category: category, Key: key,
		Value: value, NumVal: numVal,
	})
}

// AddVerbose appends an entry in verbose logs and drops it otherwise.
func (cl *CombatLog) AddVerbose(round, turn int, unitName, side, category, key, value string, numVal float64) {
	if cl.Verbose() {
		cl.Add(round, turn, unitName, side, category, key, value, numVal)
	}
}

// Entries returns the recorded entries. The slice is shared.
func (cl *CombatLog) Entries() []CombatLogEntry { return cl.entries }

func (cl *CombatLog) Len() int { return len(cl.entries) }

// Filter returns the entries of category with key; empty arguments match
// anything.
func (cl *CombatLog) Filter(category, key string) []CombatLogEntry {
	var out []CombatLogEntry
	for _, e := range cl.entries {
		if e.matches(category, key) {
			out = append(out, e)
		}
	}
	return out
}

// Count is len(Filter(category, key)) without the allocation.
func (cl *CombatLog) Count(category, key string) int {
	n := 0
	for _, e := range cl.entries {
		if e.matches(category, key) {
			n++
		}
	}
	return n
}

// First returns the earliest matching entry.
func (cl *CombatLog) First(category, key string) (CombatLogEntry, bool) {
	for _, e := range cl.entries {
		if e.matches(category, key) {
			return e, true
		}
	}
	return CombatLogEntry{}, false
}

// Last returns the latest matching entry.
func (cl *CombatLog) Last(category, key string) (CombatLogEntry, bool) {
	for i := len(cl.entries) - 1; i >= 0; i-- {
		if cl.entries[i].matches(category, key) {
			return cl.entries[i], true
		}
	}
	return CombatLogEntry{}, false
}

// HasEntry reports whether a matching entry's Value contains valueSubstr.
func (cl *CombatLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range cl.entries {
		if e.matches(category, key) && strings.Contains(e.Value, valueSubstr) {
			return true
		}
	}
	return false
}

// Format renders the whole log, one entry per line.
func (cl *CombatLog) Format() string {
	var sb strings.Builder
	for _, e := range cl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Tail renders the last n entries, oldest first.
func (cl *CombatLog) Tail(n int) []string {
	start := max(len(cl.entries)-n, 0)
	out := make([]string, 0, len(cl.entries)-start)
	for _, e := range cl.entries[start:] {
		out = append(out, e.String())
	}
	return out
}
