package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// epsilon is the minimum separation used in inverse-square terms
const epsilon = 1e-6

var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// degenerate returns a deterministic unit direction for a coincident pair
func degenerate(i, j int) r2.Vec {
	angle := float64(i*31+j*17+1) * goldenAngle
	return r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
