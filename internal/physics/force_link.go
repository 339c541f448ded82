package physics

import (
	"math"

	"coremap/internal/domain"

	"gonum.org/v1/gonum/spatial/r2"
)

// Link pulls the endpoints of every edge toward a target separation.
// Edges act as undirected springs regardless of their display direction.
type Link struct {
	Distance float64
}

// NewLink creates a link force
func NewLink(distance float64) *Link {
	return &Link{Distance: distance}
}

// Accelerate implements Force
func (f *Link) Accelerate(s *domain.Snapshot, alpha float64, acc []r2.Vec) {
	count := make([]int, s.Len())
	for _, l := range s.Links {
		count[l.Source]++
		count[l.Target]++
	}

	for k, l := range s.Links {
		if l.Source == l.Target {
			continue
		}
		src, dst := s.Bodies[l.Source], s.Bodies[l.Target]

		strength := 1 / float64(min(count[l.Source], count[l.Target]))
		if l.Strength != nil {
			strength = *l.Strength
		}
		bias := float64(count[l.Source]) / float64(count[l.Source]+count[l.Target])

		d := r2.Sub(r2.Add(dst.Pos, dst.Vel), r2.Add(src.Pos, src.Vel))
		dist := r2.Norm(d)
		if dist < epsilon {
			d = r2.Scale(epsilon, degenerate(l.Source, l.Target+k))
			dist = epsilon
		}

		scale := (dist - f.Distance) / dist * alpha * strength
		if math.IsNaN(scale) || math.IsInf(scale, 0) {
			continue
		}
		d = r2.Scale(scale, d)

		acc[l.Target] = r2.Sub(acc[l.Target], r2.Scale(bias, d))
		acc[l.Source] = r2.Add(acc[l.Source], r2.Scale(1-bias, d))
	}
}
