package unit

import "sort"

// Handle is a stable identifier for a unit inside one Arena. Handles are
// never reused, so a stale handle simply fails to resolve.
type Handle int

// NoHandle is the zero handle; Arena never issues it.
const NoHandle Handle = 0

// Arena owns every unit taking part in an encounter.
type Arena struct {
	units map[Handle]*Unit
	next  Handle
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{units: make(map[Handle]*Unit), next: 1}
}

// Add stores u and returns its new handle.
func (a *Arena) Add(u *Unit) Handle {
	h := a.next
	a.next++
	a.units[h] = u
	return h
}

// Remove forgets the unit behind h.
func (a *Arena) Remove(h Handle) {
	delete(a.units, h)
}

// Get resolves a handle.
func (a *Arena) Get(h Handle) (*Unit, bool) {
	u, ok := a.units[h]
	return u, ok
}

// Unit resolves a handle, returning nil when it is unknown.
func (a *Arena) Unit(h Handle) *Unit {
	return a.units[h]
}

// Handles returns all live handles in issue order.
func (a *Arena) Handles() []Handle {
	out := make([]Handle, 0, len(a.units))
	for h := range a.units {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of units.
func (a *Arena) Len() int { return len(a.units) }

// IsKnockedOut reports whether h is knocked out. Unknown handles count as
// knocked out so they never block or get targeted.
func (a *Arena) IsKnockedOut(h Handle) bool {
	u, ok := a.units[h]
	return !ok || u.IsKnockedOut()
}

// SameSide reports whether two handles share an allegiance.
func (a *Arena) SameSide(x, y Handle) bool {
	ux, okx := a.units[x]
	uy, oky := a.units[y]
	return okx && oky && ux.PlayerControlled == uy.PlayerControlled
}
