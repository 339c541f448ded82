package physics

import (
	"coremap/internal/domain"

	"gonum.org/v1/gonum/spatial/r2"
)

// Center weakly pulls the centroid of all nodes toward a fixed point
type Center struct {
	Point    r2.Vec
	Strength float64
}

// NewCenter creates a centering force
func NewCenter(point r2.Vec, strength float64) *Center {
	return &Center{Point: point, Strength: strength}
}

// Accelerate implements Force
func (f *Center) Accelerate(s *domain.Snapshot, _ float64, acc []r2.Vec) {
	if s.Len() == 0 {
		return
	}
	pull := r2.Scale(f.Strength, r2.Sub(f.Point, s.Centroid()))
	for i := range acc {
		acc[i] = r2.Add(acc[i], pull)
	}
}
