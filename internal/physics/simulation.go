package physics

import (
	"context"
	"errors"

	"coremap/internal/domain"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrNotSettled is returned by Run when the tick budget runs out first
var ErrNotSettled = errors.New("simulation did not settle")

// Force contributes an acceleration to every affected node.
// All forces of one tick read the same snapshot and add into acc.
type Force interface {
	Accelerate(s *domain.Snapshot, alpha float64, acc []r2.Vec)
}

// Constraint corrects positions after integration. Pinned entries must not move.
type Constraint interface {
	Constrain(pos []r2.Vec, pinned []bool)
}

// Resolver is a Constraint that can be driven to exact satisfaction.
// It runs once, on the tick where the layout settles.
type Resolver interface {
	Resolve(pos []r2.Vec, pinned []bool) bool
}

type namedForce struct {
	name  string
	force Force
}

// Simulation integrates the kinetic state of a graph one tick at a time
type Simulation struct {
	graph  *domain.Graph
	cfg    Config
	forces []namedForce

	alpha       float64
	alphaTarget float64
	tick        uint64

	acc    []r2.Vec
	pos    []r2.Vec
	vel    []r2.Vec
	pinned []bool
}

// New creates a simulation over g with the link, charge, center and collide forces
func New(g *domain.Graph, cfg Config) *Simulation {
	cfg = cfg.withDefaults()
	s := &Simulation{
		graph:  g,
		cfg:    cfg,
		alpha:  1,
		acc:    make([]r2.Vec, g.Len()),
		pos:    make([]r2.Vec, g.Len()),
		vel:    make([]r2.Vec, g.Len()),
		pinned: make([]bool, g.Len()),
	}
	s.SetForce("link", NewLink(cfg.LinkDistance))
	s.SetForce("charge", NewCharge(cfg.ChargeStrength, cfg.Theta, cfg.BarnesHutThreshold))
	s.SetForce("center", NewCenter(cfg.Center, cfg.CenterStrength))
	s.SetForce("collide", NewCollide(cfg.CollideRadius, cfg.CollideStrength, cfg.CollideIterations))
	return s
}

// SetForce registers f under name, replacing any previous force of that name.
// A nil force removes it.
func (s *Simulation) SetForce(name string, f Force) {
	for i, nf := range s.forces {
		if nf.name != name {
			continue
		}
		if f == nil {
			s.forces = append(s.forces[:i], s.forces[i+1:]...)
		} else {
			s.forces[i].force = f
		}
		return
	}
	if f != nil {
		s.forces = append(s.forces, namedForce{name: name, force: f})
	}
}

// Force returns the force registered under name, or nil
func (s *Simulation) Force(name string) Force {
	for _, nf := range s.forces {
		if nf.name == name {
			return nf.force
		}
	}
	return nil
}

// Config returns the effective configuration
func (s *Simulation) Config() Config {
	return s.cfg
}

// Alpha returns the current energy
func (s *Simulation) Alpha() float64 {
	return s.alpha
}

// AlphaTarget returns the energy alpha decays toward
func (s *Simulation) AlphaTarget() float64 {
	return s.alphaTarget
}

// SetAlphaTarget changes the energy alpha decays toward.
// Dragging raises it so the layout stays live; release restores 0.
func (s *Simulation) SetAlphaTarget(target float64) {
	s.alphaTarget = target
}

// Restart wakes a settled simulation so a raised alpha target takes effect
func (s *Simulation) Restart() {
	if s.alpha < s.cfg.AlphaMin {
		s.alpha = s.cfg.AlphaMin
	}
}

// Settled reports whether alpha has decayed below the threshold
func (s *Simulation) Settled() bool {
	return s.alpha < s.cfg.AlphaMin
}

// Ticks returns the number of completed ticks
func (s *Simulation) Ticks() uint64 {
	return s.tick
}

// Snapshot returns the kinetic state after the last tick
func (s *Simulation) Snapshot() *domain.Snapshot {
	snap := s.graph.Snapshot(s.tick, s.alpha)
	snap.Settled = s.Settled()
	return snap
}

// Tick advances the layout one step and reports whether it is still active
func (s *Simulation) Tick() bool {
	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.AlphaDecay

	snap := s.graph.Snapshot(s.tick, s.alpha)
	for i := range s.acc {
		s.acc[i] = r2.Vec{}
	}
	for _, nf := range s.forces {
		nf.force.Accelerate(snap, s.alpha, s.acc)
	}

	damping := 1 - s.cfg.VelocityDecay
	for i, b := range snap.Bodies {
		if b.Pinned() {
			s.pos[i], s.vel[i], s.pinned[i] = *b.Pin, r2.Vec{}, true
			continue
		}
		s.pinned[i] = false

		vel := r2.Scale(damping, r2.Add(b.Vel, s.acc[i]))
		pos := r2.Add(b.Pos, vel)
		if !finite(vel) || !finite(pos) {
			vel, pos = r2.Vec{}, b.Pos
		}
		s.pos[i], s.vel[i] = pos, vel
	}

	for _, nf := range s.forces {
		if c, ok := nf.force.(Constraint); ok {
			c.Constrain(s.pos, s.pinned)
		}
	}
	if s.Settled() {
		for _, nf := range s.forces {
			if r, ok := nf.force.(Resolver); ok {
				r.Resolve(s.pos, s.pinned)
			}
		}
	}

	for i := range s.pos {
		s.graph.Advance(i, s.pos[i], s.vel[i])
	}

	s.tick++
	return !s.Settled()
}

// Run ticks until the layout settles, ctx is cancelled or maxTicks is reached.
// It returns the number of ticks executed.
func (s *Simulation) Run(ctx context.Context, maxTicks int) (int, error) {
	for n := 0; n < maxTicks; n++ {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if !s.Tick() {
			return n + 1, nil
		}
	}
	return maxTicks, ErrNotSettled
}
