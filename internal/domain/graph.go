package domain

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Graph is the owned, mutable store of one visualization session.
//
// Descriptors (nodes, edges) are fixed at construction. Kinetic state is
// written only through SetPinned and ApplyVelocity (interaction layer) and
// Advance (simulation engine).
type Graph struct {
	nodes  []Node
	edges  []Edge
	links  []Link
	index  map[string]int
	bodies []Body
}

// New validates the descriptors and builds a graph with bodies placed around center.
// An edge whose endpoint does not resolve fails with ErrInvalidEdge.
func New(nodes []Node, edges []Edge, center r2.Vec) (*Graph, error) {
	g := &Graph{
		nodes:  make([]Node, len(nodes)),
		edges:  make([]Edge, len(edges)),
		links:  make([]Link, 0, len(edges)),
		index:  make(map[string]int, len(nodes)),
		bodies: make([]Body, len(nodes)),
	}
	copy(g.nodes, nodes)
	copy(g.edges, edges)

	for i, n := range g.nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("%w: node %d has an empty id", ErrInvalidNode, i)
		}
		if _, dup := g.index[n.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidNode, n.ID)
		}
		g.index[n.ID] = i
		g.bodies[i] = Body{Pos: InitialPosition(i, center)}
	}

	seen := make(map[string]int, len(g.edges))
	for i, e := range g.edges {
		if first, dup := seen[e.ID()]; dup {
			return nil, fmt.Errorf("%w: edge %d (%s -> %s %s) duplicates edge %d", ErrInvalidEdge, i, e.Source, e.Target, e.Relation, first)
		}
		seen[e.ID()] = i

		src, ok := g.index[e.Source]
		if !ok {
			return nil, fmt.Errorf("%w: edge %d (%s -> %s): source %q %w", ErrInvalidEdge, i, e.Source, e.Target, e.Source, ErrNotFound)
		}
		dst, ok := g.index[e.Target]
		if !ok {
			return nil, fmt.Errorf("%w: edge %d (%s -> %s): target %q %w", ErrInvalidEdge, i, e.Source, e.Target, e.Target, ErrNotFound)
		}
		g.links = append(g.links, Link{Source: src, Target: dst, Strength: e.Strength})
	}

	return g, nil
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns the node descriptors in catalog order
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns the edge descriptors in catalog order
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// NodeByID returns the descriptor for id
func (g *Graph) NodeByID(id string) (Node, error) {
	i, err := g.IndexOf(id)
	if err != nil {
		return Node{}, err
	}
	return g.nodes[i], nil
}

// IndexOf returns the position of id in Nodes
func (g *Graph) IndexOf(id string) (int, error) {
	i, ok := g.index[id]
	if !ok {
		return -1, fmt.Errorf("node %q %w", id, ErrNotFound)
	}
	return i, nil
}

// Body returns a copy of the kinetic state of id
func (g *Graph) Body(id string) (Body, error) {
	i, err := g.IndexOf(id)
	if err != nil {
		return Body{}, err
	}
	return g.bodies[i].clone(), nil
}

// SetPinned holds id at pos, or releases it when pos is nil
func (g *Graph) SetPinned(id string, pos *r2.Vec) error {
	i, err := g.IndexOf(id)
	if err != nil {
		return err
	}
	if pos == nil {
		g.bodies[i].Pin = nil
		return nil
	}
	pin := *pos
	g.bodies[i].Pin = &pin
	return nil
}

// ApplyVelocity overrides the velocity of id
func (g *Graph) ApplyVelocity(id string, vx, vy float64) error {
	i, err := g.IndexOf(id)
	if err != nil {
		return err
	}
	g.bodies[i].Vel = r2.Vec{X: vx, Y: vy}
	return nil
}

// Advance stores the integrated position and velocity of node i.
// It is the simulation engine's only write path.
func (g *Graph) Advance(i int, pos, vel r2.Vec) {
	g.bodies[i].Pos = pos
	g.bodies[i].Vel = vel
}

// Snapshot returns an immutable copy of the kinetic state.
// Descriptor slices are shared and must be treated as read-only.
func (g *Graph) Snapshot(tick uint64, alpha float64) *Snapshot {
	bodies := make([]Body, len(g.bodies))
	for i, b := range g.bodies {
		bodies[i] = b.clone()
	}
	return &Snapshot{
		Tick:   tick,
		Alpha:  alpha,
		Nodes:  g.nodes,
		Edges:  g.edges,
		Links:  g.links,
		Bodies: bodies,
	}
}

// Snapshot is the state of a graph at the end of one tick
type Snapshot struct {
	Tick  uint64
	Alpha float64
	// Settled is set by the engine once alpha has decayed below its threshold
	Settled bool

	Nodes  []Node
	Edges  []Edge
	Links  []Link
	Bodies []Body
}

// Len returns the number of nodes
func (s *Snapshot) Len() int {
	return len(s.Nodes)
}

// Position returns the position of node i
func (s *Snapshot) Position(i int) r2.Vec {
	return s.Bodies[i].Pos
}

// Centroid returns the mean position of all nodes
func (s *Snapshot) Centroid() r2.Vec {
	var sum r2.Vec
	if len(s.Bodies) == 0 {
		return sum
	}
	for _, b := range s.Bodies {
		sum = r2.Add(sum, b.Pos)
	}
	return r2.Scale(1/float64(len(s.Bodies)), sum)
}

// Nearest returns the node whose center is closest to p within radius
func (g *Graph) Nearest(p r2.Vec, radius float64) (string, bool) {
	best, bestDist := -1, radius
	for i, b := range g.bodies {
		d := r2.Norm(r2.Sub(b.Pos, p))
		if d <= bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return "", false
	}
	return g.nodes[best].ID, true
}
