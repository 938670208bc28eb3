package battle

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Garsondee/grid-tactics/internal/unit"
)

var (
	// ErrUnitNotInManifest is returned when a handle has no position.
	ErrUnitNotInManifest = errors.New("unit not in manifest")
	// ErrAlreadyPlaced is returned when adding a handle that already has a position.
	ErrAlreadyPlaced = errors.New("unit already placed")
	// ErrCellOccupied is returned when the target cell holds another unit.
	ErrCellOccupied = errors.New("cell occupied")
	// ErrUnknownUnit is returned when a handle does not resolve in the arena.
	ErrUnknownUnit = errors.New("unknown unit handle")
	// ErrOutOfBounds is returned when placing a unit off the grid or on a
	// tile it cannot stand on.
	ErrOutOfBounds = errors.New("position not standable")
)

// Manifest is the authoritative record of who stands where in one
// encounter. Both directions are kept so position lookups are O(1).
//
// A Manifest is not safe for concurrent use; the encounter that owns it
// mutates it only between queries.
type Manifest struct {
	arena  *unit.Arena
	byUnit map[unit.Handle]Position
	byCell map[Position]unit.Handle
}

// NewManifest creates an empty manifest over the units in arena.
func NewManifest(arena *unit.Arena) *Manifest {
	return &Manifest{
		arena:  arena,
		byUnit: make(map[unit.Handle]Position),
		byCell: make(map[Position]unit.Handle),
	}
}

// Arena returns the unit store the manifest resolves handles against.
func (m *Manifest) Arena() *unit.Arena { return m.arena }

// Add places h at p.
func (m *Manifest) Add(h unit.Handle, p Position) error {
	if _, ok := m.arena.Get(h); !ok {
		return fmt.Errorf("add %d: %w", h, ErrUnknownUnit)
	}
	if _, ok := m.byUnit[h]; ok {
		return fmt.Errorf("add %d: %w", h, ErrAlreadyPlaced)
	}
	if other, ok := m.byCell[p]; ok {
		return fmt.Errorf("add %d at %s (held by %d): %w", h, p, other, ErrCellOccupied)
	}
	m.byUnit[h] = p
	m.byCell[p] = h
	return nil
}

// Place adds h at p after checking that p is a standable cell of t.
func (m *Manifest) Place(t Terrain, h unit.Handle, p Position) error {
	if !t.InBounds(p) || !t.IsWalkable(p) {
		return fmt.Errorf("place %d at %s: %w", h, p, ErrOutOfBounds)
	}
	return m.Add(h, p)
}

// Remove takes h off the grid.
func (m *Manifest) Remove(h unit.Handle) error {
	p, ok := m.byUnit[h]
	if !ok {
		return fmt.Errorf("remove %d: %w", h, ErrUnitNotInManifest)
	}
	delete(m.byUnit, h)
	delete(m.byCell, p)
	return nil
}

// Move relocates h to p. Moving onto its own cell is a no-op.
func (m *Manifest) Move(h unit.Handle, p Position) error {
	from, ok := m.byUnit[h]
	if !ok {
		return fmt.Errorf("move %d: %w", h, ErrUnitNotInManifest)
	}
	if from == p {
		return nil
	}
	if other, ok := m.byCell[p]; ok {
		return fmt.Errorf("move %d to %s (held by %d): %w", h, p, other, ErrCellOccupied)
	}
	delete(m.byCell, from)
	m.byUnit[h] = p
	m.byCell[p] = h
	return nil
}

// PositionOf returns where h stands.
func (m *Manifest) PositionOf(h unit.Handle) (Position, error) {
	p, ok := m.byUnit[h]
	if !ok {
		return Position{}, fmt.Errorf("position of %d: %w", h, ErrUnitNotInManifest)
	}
	return p, nil
}

// UnitAt returns the handle standing on p.
func (m *Manifest) UnitAt(p Position) (unit.Handle, bool) {
	h, ok := m.byCell[p]
	return h, ok
}

// Contains reports whether h is placed.
func (m *Manifest) Contains(h unit.Handle) bool {
	_, ok := m.byUnit[h]
	return ok
}

// Handles returns every placed handle in ascending order.
func (m *Manifest) Handles() []unit.Handle {
	out := make([]unit.Handle, 0, len(m.byUnit))
	for h := range m.byUnit {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of placed units.
func (m *Manifest) Len() int { return len(m.byUnit) }

// activeAt reports whether p holds a unit that is not knocked out.
func (m *Manifest) activeAt(p Position) bool {
	h, ok := m.byCell[p]
	return ok && !m.arena.IsKnockedOut(h)
}
