package interaction

import (
	"coremap/internal/domain"

	"gonum.org/v1/gonum/spatial/r2"
)

// Mode is the pointer state of a Controller
type Mode int

const (
	ModeIdle Mode = iota
	ModeHovering
	ModeDragging
)

func (m Mode) String() string {
	switch m {
	case ModeHovering:
		return "hovering"
	case ModeDragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Engine is the part of the simulation a drag drives
type Engine interface {
	SetAlphaTarget(target float64)
	Restart()
}

// Navigator receives the route of a clicked node
type Navigator func(route string)

// Config holds pointer tuning
type Config struct {
	// HitRadius is the pointer distance, in layout units, that counts as over a node
	HitRadius float64 `yaml:"hit_radius" json:"hit_radius"`
	// ClickTolerance is the largest pointer travel still treated as a click
	ClickTolerance  float64 `yaml:"click_tolerance" json:"click_tolerance"`
	DragAlphaTarget float64 `yaml:"drag_alpha_target" json:"drag_alpha_target"`
}

// DefaultConfig returns the pointer tuning of the system map
func DefaultConfig() Config {
	return Config{
		HitRadius:       24,
		ClickTolerance:  3,
		DragAlphaTarget: 0.3,
	}
}

// Controller turns pointer events into pins, alpha changes and navigation
type Controller struct {
	graph    *domain.Graph
	engine   Engine
	routes   Routes
	navigate Navigator
	cfg      Config

	hovered     string
	highlighted domain.IDSet
	dragged     string
	downAt      r2.Vec
	moved       bool
}

// New creates a controller. navigate may be nil.
func New(g *domain.Graph, engine Engine, routes Routes, navigate Navigator, cfg Config) *Controller {
	return &Controller{
		graph:    g,
		engine:   engine,
		routes:   routes,
		navigate: navigate,
		cfg:      cfg,
	}
}

// Mode returns the current pointer state
func (c *Controller) Mode() Mode {
	switch {
	case c.dragged != "":
		return ModeDragging
	case c.hovered != "":
		return ModeHovering
	default:
		return ModeIdle
	}
}

// State returns the interaction state for rendering.
// The highlighted set is shared and must not be modified.
func (c *Controller) State() domain.InteractionState {
	return domain.InteractionState{
		Hovered:     c.hovered,
		Dragged:     c.dragged,
		Highlighted: c.highlighted,
	}
}

// HitTest returns the node under p
func (c *Controller) HitTest(p r2.Vec) (string, bool) {
	return c.graph.Nearest(p, c.cfg.HitRadius)
}

// PointerMove follows the pointer. While dragging it moves the pin,
// otherwise it updates the hovered node. It reports whether state changed.
func (c *Controller) PointerMove(p r2.Vec) bool {
	if c.dragged != "" {
		if r2.Norm(r2.Sub(p, c.downAt)) > c.cfg.ClickTolerance {
			c.moved = true
		}
		_ = c.graph.SetPinned(c.dragged, &p)
		return true
	}

	id, _ := c.HitTest(p)
	return c.hover(id)
}

// PointerDown starts dragging the node under p
func (c *Controller) PointerDown(p r2.Vec) bool {
	id, ok := c.HitTest(p)
	if !ok {
		return false
	}
	body, err := c.graph.Body(id)
	if err != nil {
		return false
	}

	c.hover(id)
	c.dragged = id
	c.downAt = p
	c.moved = false

	c.engine.SetAlphaTarget(c.cfg.DragAlphaTarget)
	c.engine.Restart()
	_ = c.graph.SetPinned(id, &body.Pos)
	return true
}

// PointerUp releases a drag. A release without movement is a click and
// navigates to the node's route.
func (c *Controller) PointerUp(p r2.Vec) bool {
	if c.dragged == "" {
		return false
	}
	id := c.dragged
	click := !c.moved && r2.Norm(r2.Sub(p, c.downAt)) <= c.cfg.ClickTolerance

	_ = c.graph.SetPinned(id, nil)
	c.engine.SetAlphaTarget(0)
	c.dragged = ""
	c.moved = false

	under, _ := c.HitTest(p)
	if click {
		under = id
	}
	c.hover(under)

	if click {
		c.activate(id)
	}
	return true
}

// PointerLeave clears the hover when the pointer leaves the surface.
// An active drag continues until PointerUp.
func (c *Controller) PointerLeave() bool {
	if c.dragged != "" {
		return false
	}
	return c.hover("")
}

func (c *Controller) hover(id string) bool {
	if id == c.hovered {
		return false
	}
	c.hovered = id
	if id == "" {
		c.highlighted = nil
	} else {
		c.highlighted = Neighborhood(c.graph.Edges(), id)
	}
	return true
}

func (c *Controller) activate(id string) {
	route, ok := c.routes.Resolve(id)
	if !ok || c.navigate == nil {
		return
	}
	c.navigate(route)
}

// Neighborhood returns id plus every node sharing an edge with it,
// regardless of edge direction.
func Neighborhood(edges []domain.Edge, id string) domain.IDSet {
	set := domain.NewIDSet(id)
	for _, e := range edges {
		if e.Touches(id) {
			set.Add(e.Other(id))
		}
	}
	return set
}
