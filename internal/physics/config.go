package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Config holds the tuning constants of a simulation
type Config struct {
	// Center is the point the centering force pulls the centroid toward
	Center r2.Vec

	LinkDistance    float64
	ChargeStrength  float64
	CenterStrength  float64
	CollideRadius   float64
	CollideStrength float64
	// CollideIterations is the number of positional passes per tick
	CollideIterations int

	// Theta is the Barnes-Hut opening angle
	Theta float64
	// BarnesHutThreshold is the node count above which repulsion is approximated
	BarnesHutThreshold int

	AlphaMin      float64
	AlphaDecay    float64
	VelocityDecay float64
}

// DefaultConfig returns the layout used by the system map, centered on center
func DefaultConfig(center r2.Vec) Config {
	alphaMin := 0.001
	return Config{
		Center:             center,
		LinkDistance:       150,
		ChargeStrength:     -500,
		CenterStrength:     0.1,
		CollideRadius:      60,
		CollideStrength:    0.7,
		CollideIterations:  3,
		Theta:              0.9,
		BarnesHutThreshold: 64,
		AlphaMin:           alphaMin,
		AlphaDecay:         1 - math.Pow(alphaMin, 1.0/300),
		VelocityDecay:      0.4,
	}
}

// withDefaults fills zero fields from DefaultConfig
func (c Config) withDefaults() Config {
	d := DefaultConfig(c.Center)
	if c.LinkDistance <= 0 {
		c.LinkDistance = d.LinkDistance
	}
	if c.ChargeStrength == 0 {
		c.ChargeStrength = d.ChargeStrength
	}
	if c.CenterStrength <= 0 {
		c.CenterStrength = d.CenterStrength
	}
	if c.CollideRadius <= 0 {
		c.CollideRadius = d.CollideRadius
	}
	if c.CollideStrength <= 0 {
		c.CollideStrength = d.CollideStrength
	}
	if c.CollideIterations <= 0 {
		c.CollideIterations = d.CollideIterations
	}
	if c.Theta <= 0 {
		c.Theta = d.Theta
	}
	if c.BarnesHutThreshold <= 0 {
		c.BarnesHutThreshold = d.BarnesHutThreshold
	}
	if c.AlphaMin <= 0 {
		c.AlphaMin = d.AlphaMin
	}
	if c.AlphaDecay <= 0 || c.AlphaDecay >= 1 {
		c.AlphaDecay = 1 - math.Pow(c.AlphaMin, 1.0/300)
	}
	if c.VelocityDecay <= 0 || c.VelocityDecay >= 1 {
		c.VelocityDecay = d.VelocityDecay
	}
	return c
}
