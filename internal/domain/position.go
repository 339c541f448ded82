package domain

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	initialRadius = 10.0
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// Body is the kinetic state of a node in the layout
type Body struct {
	Pos r2.Vec
	Vel r2.Vec
	// Pin holds the node in place while set. Only the interaction layer writes it.
	Pin *r2.Vec
}

// Pinned reports whether the body is held in place
func (b Body) Pinned() bool {
	return b.Pin != nil
}

// clone copies the body including its pin
func (b Body) clone() Body {
	if b.Pin != nil {
		pin := *b.Pin
		b.Pin = &pin
	}
	return b
}

// InitialPosition places the i-th node on a phyllotaxis spiral around center.
// Nodes never start coincident, so the first tick has finite forces.
func InitialPosition(i int, center r2.Vec) r2.Vec {
	radius := initialRadius * math.Sqrt(0.5+float64(i))
	angle := float64(i) * initialAngle
	return r2.Add(center, r2.Vec{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)})
}
