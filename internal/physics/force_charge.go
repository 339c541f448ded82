package physics

import (
	"coremap/internal/domain"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// Charge is a many-body inverse-square force. A negative strength repels.
//
// Small graphs use the exact pairwise sum. Above Threshold nodes the
// Barnes-Hut approximation from gonum is used instead.
type Charge struct {
	Strength  float64
	Theta     float64
	Threshold int
}

// NewCharge creates a many-body force
func NewCharge(strength, theta float64, threshold int) *Charge {
	return &Charge{Strength: strength, Theta: theta, Threshold: threshold}
}

// Accelerate implements Force
func (f *Charge) Accelerate(s *domain.Snapshot, alpha float64, acc []r2.Vec) {
	if s.Len() > f.Threshold {
		if f.approximate(s, alpha, acc) {
			return
		}
	}
	f.exact(s, alpha, acc)
}

func (f *Charge) exact(s *domain.Snapshot, alpha float64, acc []r2.Vec) {
	n := s.Len()
	for i := 0; i < n; i++ {
		pi := s.Position(i)
		for j := i + 1; j < n; j++ {
			d := r2.Sub(s.Position(j), pi)
			l2 := r2.Norm2(d)
			if l2 < epsilon*epsilon {
				d = r2.Scale(epsilon, degenerate(i, j))
				l2 = epsilon * epsilon
			}
			// equal and opposite: j acts on i along d, i acts on j along -d
			push := r2.Scale(f.Strength*alpha/l2, d)
			acc[i] = r2.Add(acc[i], push)
			acc[j] = r2.Sub(acc[j], push)
		}
	}
}

type particle struct {
	pos r2.Vec
}

func (p *particle) Coord2() r2.Vec { return p.pos }
func (p *particle) Mass() float64  { return 1 }

// approximate returns false when the tree cannot be built
func (f *Charge) approximate(s *domain.Snapshot, alpha float64, acc []r2.Vec) bool {
	particles := make([]barneshut.Particle2, s.Len())
	for i := range particles {
		particles[i] = &particle{pos: s.Position(i)}
	}
	plane, err := barneshut.NewPlane(particles)
	if err != nil {
		return false
	}

	force := func(p1, p2 barneshut.Particle2, m1, m2 float64, v r2.Vec) r2.Vec {
		if p1 == p2 {
			return r2.Vec{}
		}
		l2 := r2.Norm2(v)
		if l2 < epsilon*epsilon {
			return r2.Vec{}
		}
		return r2.Scale(f.Strength*alpha*m1*m2/l2, v)
	}

	for i, p := range particles {
		acc[i] = r2.Add(acc[i], plane.ForceOn(p, f.Theta, force))
	}
	return true
}
