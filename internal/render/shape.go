package render

import "coremap/internal/domain"

// Shape is the glyph drawn for a node
type Shape string

const (
	ShapeCircle    Shape = "circle"
	ShapeHexagon   Shape = "hexagon"
	ShapeDiamond   Shape = "diamond"
	ShapeRect      Shape = "rect"
	ShapeTrapezoid Shape = "trapezoid"
	ShapeCluster   Shape = "cluster"
)

// ShapeFor maps a category to its glyph. Unknown categories draw a circle.
func ShapeFor(c domain.Category) Shape {
	switch c {
	case domain.CategoryMemory:
		return ShapeHexagon
	case domain.CategoryCognition:
		return ShapeCircle
	case domain.CategoryExecution:
		return ShapeRect
	case domain.CategoryResearch:
		return ShapeDiamond
	case domain.CategoryHardware:
		return ShapeTrapezoid
	case domain.CategorySwarm:
		return ShapeCluster
	default:
		return ShapeCircle
	}
}

const (
	colorOnline       = "#22c55e"
	colorExperimental = "#eab308"
	colorFault        = "#ef4444"
)

// StatusColor maps a status to its indicator color.
// Degraded and unknown statuses share the fault color.
func StatusColor(s domain.Status) string {
	switch s {
	case domain.StatusOnline:
		return colorOnline
	case domain.StatusExperimental:
		return colorExperimental
	case domain.StatusDegraded:
		return colorFault
	default:
		return colorFault
	}
}
