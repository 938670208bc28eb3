package battle

import (
	"sort"

	"github.com/Garsondee/grid-tactics/internal/unit"
)

// --- Traversal rules shared by range and path searches ---

type stepRule struct {
	terrain Terrain
	m       *Manifest
	mover   unit.Handle
	player  bool
}

func newStepRule(t Terrain, m *Manifest, mover unit.Handle) stepRule {
	r := stepRule{terrain: t, m: m, mover: mover}
	if u, ok := m.arena.Get(mover); ok {
		r.player = u.PlayerControlled
	}
	return r
}

// canEnter reports whether the mover may pass through p. Allies and
// knocked-out units are passable; standing enemies and bad terrain are not.
func (r stepRule) canEnter(p Position) bool {
	if !r.terrain.InBounds(p) || !r.terrain.IsWalkable(p) {
		return false
	}
	h, occupied := r.m.UnitAt(p)
	if !occupied || h == r.mover {
		return true
	}
	if r.m.arena.IsKnockedOut(h) {
		return true
	}
	u, ok := r.m.arena.Get(h)
	return ok && u.PlayerControlled == r.player
}

// canStop reports whether the mover may end its move on p.
func (r stepRule) canStop(p Position) bool {
	h, occupied := r.m.UnitAt(p)
	return !occupied || h == r.mover
}

// MovementRange returns every cell mover could end a move on, starting at
// start with budget orthogonal steps. The start cell is never included. The
// result is sorted row-major so callers iterate deterministically.
func MovementRange(t Terrain, m *Manifest, mover unit.Handle, start Position, budget int) []Position {
	rule := newStepRule(t, m, mover)

	type node struct {
		p    Position
		left int
	}
	visited := map[Position]bool{start: true}
	queue := []node{{start, budget}}
	var out []Position

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.left <= 0 {
			continue
		}
		for _, d := range orthogonal {
			np := cur.p.Add(d)
			if visited[np] || !rule.canEnter(np) {
				continue
			}
			visited[np] = true
			if rule.canStop(np) {
				out = append(out, np)
			}
			queue = append(queue, node{np, cur.left - 1})
		}
	}
	sortPositions(out)
	return out
}

// FindPath returns the cells from start (exclusive) to dest (inclusive)
// along a shortest orthogonal route within budget, using the same rules as
// MovementRange. The result is empty when dest is unreachable, is the start,
// or cannot be stopped on.
func FindPath(t Terrain, m *Manifest, mover unit.Handle, start, dest Position, budget int) []Position {
	if start == dest {
		return nil
	}
	rule := newStepRule(t, m, mover)
	if !rule.canEnter(dest) || !rule.canStop(dest) || Manhattan(start, dest) > budget {
		return nil
	}

	type node struct {
		p    Position
		left int
		path []Position
	}
	visited := map[Position]bool{start: true}
	queue := []node{{p: start, left: budget}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.p == dest {
			return cur.path
		}
		if cur.left <= 0 {
			continue
		}
		for _, d := range orthogonal {
			np := cur.p.Add(d)
			if visited[np] || !rule.canEnter(np) {
				continue
			}
			visited[np] = true
			path := make([]Position, len(cur.path)+1)
			copy(path, cur.path)
			path[len(cur.path)] = np
			queue = append(queue, node{np, cur.left - 1, path})
		}
	}
	return nil
}

// PathsFrom returns a shortest path to every reachable stop cell, computed
// in a single search. It agrees with FindPath on path length for every
// destination.
func PathsFrom(t Terrain, m *Manifest, mover unit.Handle, start Position, budget int) map[Position][]Position {
	rule := newStepRule(t, m, mover)
	parent := map[Position]Position{}
	visited := map[Position]bool{start: true}

	type node struct {
		p    Position
		left int
	}
	queue := []node{{start, budget}}
	var stops []Position
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.left <= 0 {
			continue
		}
		for _, d := range orthogonal {
			np := cur.p.Add(d)
			if visited[np] || !rule.canEnter(np) {
				continue
			}
			visited[np] = true
			parent[np] = cur.p
			if rule.canStop(np) {
				stops = append(stops, np)
			}
			queue = append(queue, node{np, cur.left - 1})
		}
	}

	out := make(map[Position][]Position, len(stops))
	for _, s := range stops {
		var rev []Position
		for p := s; p != start; p = parent[p] {
			rev = append(rev, p)
		}
		path := make([]Position, len(rev))
		for i := range rev {
			path[i] = rev[len(rev)-1-i]
		}
		out[s] = path
	}
	return out
}

func sortPositions(ps []Position) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Y != ps[j].Y {
			return ps[i].Y < ps[j].Y
		}
		return ps[i].X < ps[j].X
	})
}
