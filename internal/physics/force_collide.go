package physics

import (
	"coremap/internal/domain"

	"gonum.org/v1/gonum/spatial/r2"
)

// resolveSweeps bounds the exact pass run on the settling tick
const resolveSweeps = 1000

// Collide treats every node as a disc of Radius.
//
// As a Force it pushes overlapping predicted positions apart. As a
// Constraint it projects positions after integration for a few iterations
// per tick; on the tick that settles the layout, Resolve runs until no two
// free discs overlap.
type Collide struct {
	Radius     float64
	Strength   float64
	Iterations int
}

// NewCollide creates a collision force
func NewCollide(radius, strength float64, iterations int) *Collide {
	return &Collide{Radius: radius, Strength: strength, Iterations: iterations}
}

// Accelerate implements Force
func (f *Collide) Accelerate(s *domain.Snapshot, _ float64, acc []r2.Vec) {
	minDist := 2 * f.Radius
	n := s.Len()
	for i := 0; i < n; i++ {
		bi := s.Bodies[i]
		pi := r2.Add(bi.Pos, bi.Vel)
		for j := i + 1; j < n; j++ {
			bj := s.Bodies[j]
			d := r2.Sub(pi, r2.Add(bj.Pos, bj.Vel))
			l2 := r2.Norm2(d)
			if !(l2 < minDist*minDist) {
				continue
			}
			l := r2.Norm(d)
			if l < epsilon {
				d = r2.Scale(epsilon, degenerate(i, j))
				l = epsilon
			}
			push := r2.Scale((minDist-l)/l*f.Strength/2, d)
			acc[i] = r2.Add(acc[i], push)
			acc[j] = r2.Sub(acc[j], push)
		}
	}
}

// Constrain implements Constraint
func (f *Collide) Constrain(pos []r2.Vec, pinned []bool) {
	minDist := 2 * f.Radius
	corr := make([]r2.Vec, len(pos))

	for it := 0; it < f.Iterations; it++ {
		overlapping := false
		for i := range corr {
			corr[i] = r2.Vec{}
		}

		for i := range pos {
			for j := i + 1; j < len(pos); j++ {
				if pinned[i] && pinned[j] {
					continue
				}
				d := r2.Sub(pos[i], pos[j])
				l := r2.Norm(d)
				if !(l < minDist) {
					continue
				}
				overlapping = true

				var dir r2.Vec
				if l < epsilon {
					dir = degenerate(i, j)
				} else {
					dir = r2.Scale(1/l, d)
				}
				shift := r2.Scale(minDist-l, dir)

				wi, wj := 0.5, 0.5
				switch {
				case pinned[i]:
					wi, wj = 0, 1
				case pinned[j]:
					wi, wj = 1, 0
				}
				corr[i] = r2.Add(corr[i], r2.Scale(wi, shift))
				corr[j] = r2.Sub(corr[j], r2.Scale(wj, shift))
			}
		}

		if !overlapping {
			return
		}
		for i := range pos {
			if !pinned[i] {
				pos[i] = r2.Add(pos[i], corr[i])
			}
		}
	}
}

// Resolve separates overlapping pairs one at a time until a full sweep finds
// no overlap or the sweep budget runs out. It reports whether it converged.
// Pairs of pinned nodes are neither checked nor moved.
func (f *Collide) Resolve(pos []r2.Vec, pinned []bool) bool {
	minDist := 2 * f.Radius
	// land a hair past contact so rounding cannot leave a pair short
	target := minDist * (1 + 1e-9)

	for sweep := 0; sweep < resolveSweeps; sweep++ {
		clean := true
		for i := range pos {
			for j := i + 1; j < len(pos); j++ {
				if pinned[i] && pinned[j] {
					continue
				}
				d := r2.Sub(pos[i], pos[j])
				l := r2.Norm(d)
				if !(l < minDist) {
					continue
				}
				clean = false

				var dir r2.Vec
				if l < epsilon {
					dir = degenerate(i, j)
				} else {
					dir = r2.Scale(1/l, d)
				}
				shift := r2.Scale(target-l, dir)

				wi, wj := 0.5, 0.5
				switch {
				case pinned[i]:
					wi, wj = 0, 1
				case pinned[j]:
					wi, wj = 1, 0
				}
				pos[i] = r2.Add(pos[i], r2.Scale(wi, shift))
				pos[j] = r2.Sub(pos[j], r2.Scale(wj, shift))
			}
		}
		if clean {
			return true
		}
	}
	return false
}
