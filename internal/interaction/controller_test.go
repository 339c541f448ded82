package interaction

import (
	"testing"

	"coremap/internal/domain"
	"coremap/internal/physics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

type fakeEngine struct {
	target   float64
	restarts int
}

func (e *fakeEngine) SetAlphaTarget(t float64) { e.target = t }
func (e *fakeEngine) Restart()                 { e.restarts++ }

func abc(t *testing.T) *domain.Graph {
	t.Helper()
	nodes := []domain.Node{
		*domain.NewNode("A", domain.CategoryMemory, ""),
		*domain.NewNode("B", domain.CategoryCognition, ""),
		*domain.NewNode("C", domain.CategorySwarm, ""),
	}
	edges := []domain.Edge{
		*domain.NewEdge("A", "B", "grounds"),
		*domain.NewEdge("B", "C", "coordinates"),
	}
	g, err := domain.New(nodes, edges, r2.Vec{})
	require.NoError(t, err)
	return g
}

func systemMap(t *testing.T) *domain.Graph {
	t.Helper()
	ids := []string{"MEMORY_CORE", "NEURAL_HUB", "RESEARCH_ENGINE", "VISUAL_CORTEX", "PLUGIN_SYS", "SWARM"}
	nodes := make([]domain.Node, len(ids))
	for i, id := range ids {
		nodes[i] = *domain.NewNode(id, domain.CategoryCognition, "")
	}
	edges := []domain.Edge{
		*domain.NewEdge("MEMORY_CORE", "NEURAL_HUB", "grounds"),
		*domain.NewEdge("NEURAL_HUB", "PLUGIN_SYS", "delegates"),
		*domain.NewEdge("PLUGIN_SYS", "MEMORY_CORE", "records"),
		*domain.NewEdge("RESEARCH_ENGINE", "MEMORY_CORE", "writes"),
		*domain.NewEdge("MEMORY_CORE", "RESEARCH_ENGINE", "retrieves"),
		*domain.NewEdge("NEURAL_HUB", "SWARM", "coordinates"),
		*domain.NewEdge("SWARM", "NEURAL_HUB", "feeds_back"),
		*domain.NewEdge("VISUAL_CORTEX", "PLUGIN_SYS", "accelerates"),
	}
	g, err := domain.New(nodes, edges, r2.Vec{X: 400, Y: 300})
	require.NoError(t, err)
	return g
}

// spread moves nodes apart so hit tests are unambiguous
func spread(g *domain.Graph) {
	for i := 0; i < g.Len(); i++ {
		g.Advance(i, r2.Vec{X: float64(i) * 200, Y: 0}, r2.Vec{})
	}
}

func posOf(t *testing.T, g *domain.Graph, id string) r2.Vec {
	t.Helper()
	b, err := g.Body(id)
	require.NoError(t, err)
	return b.Pos
}

func TestNeighborhood(t *testing.T) {
	edges := abc(t).Edges()

	t.Run("middle of a chain highlights everything", func(t *testing.T) {
		assert.Equal(t, []string{"A", "B", "C"}, Neighborhood(edges, "B").Sorted())
	})

	t.Run("end of a chain highlights its neighbor", func(t *testing.T) {
		assert.Equal(t, []string{"A", "B"}, Neighborhood(edges, "A").Sorted())
	})

	t.Run("isolated id highlights itself", func(t *testing.T) {
		assert.Equal(t, []string{"Z"}, Neighborhood(edges, "Z").Sorted())
	})

	t.Run("symmetric", func(t *testing.T) {
		g := systemMap(t)
		edges := g.Edges()
		adjacent := func(a, b string) bool {
			for _, e := range edges {
				if (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a) {
					return true
				}
			}
			return false
		}
		for _, a := range g.Nodes() {
			for _, b := range g.Nodes() {
				if a.ID == b.ID {
					continue
				}
				inA := Neighborhood(edges, a.ID).Has(b.ID)
				inB := Neighborhood(edges, b.ID).Has(a.ID)
				assert.Equal(t, adjacent(a.ID, b.ID), inA, "%s -> %s", a.ID, b.ID)
				assert.Equal(t, inA, inB, "%s <-> %s", a.ID, b.ID)
			}
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		edges := systemMap(t).Edges()
		first := Neighborhood(edges, "NEURAL_HUB")
		second := Neighborhood(edges, "NEURAL_HUB")
		assert.True(t, first.Equal(second))
		assert.Equal(t, []string{"MEMORY_CORE", "NEURAL_HUB", "PLUGIN_SYS", "SWARM"}, first.Sorted())
	})
}

func TestControllerHover(t *testing.T) {
	g := abc(t)
	spread(g)
	c := New(g, &fakeEngine{}, DefaultRoutes(), nil, DefaultConfig())

	t.Run("starts idle", func(t *testing.T) {
		assert.Equal(t, ModeIdle, c.Mode())
		assert.False(t, c.State().Highlighting())
	})

	t.Run("entering B highlights A, B and C", func(t *testing.T) {
		changed := c.PointerMove(posOf(t, g, "B"))
		assert.True(t, changed)
		assert.Equal(t, ModeHovering, c.Mode())
		st := c.State()
		assert.Equal(t, "B", st.Hovered)
		assert.Equal(t, []string{"A", "B", "C"}, st.Highlighted.Sorted())
	})

	t.Run("moving within B changes nothing", func(t *testing.T) {
		p := posOf(t, g, "B")
		assert.False(t, c.PointerMove(r2.Add(p, r2.Vec{X: 5})))
	})

	t.Run("entering A highlights A and B", func(t *testing.T) {
		assert.True(t, c.PointerMove(posOf(t, g, "A")))
		assert.Equal(t, []string{"A", "B"}, c.State().Highlighted.Sorted())
	})

	t.Run("leaving returns to idle", func(t *testing.T) {
		assert.True(t, c.PointerMove(r2.Vec{X: 100, Y: 500}))
		assert.Equal(t, ModeIdle, c.Mode())
		assert.Nil(t, c.State().Highlighted)
	})

	t.Run("pointer leaving the surface clears hover", func(t *testing.T) {
		c.PointerMove(posOf(t, g, "C"))
		assert.True(t, c.PointerLeave())
		assert.Equal(t, ModeIdle, c.Mode())
		assert.False(t, c.PointerLeave())
	})
}

func TestControllerDrag(t *testing.T) {
	g := abc(t)
	spread(g)
	sim := physics.New(g, physics.DefaultConfig(r2.Vec{}))
	var routes []string
	c := New(g, sim, DefaultRoutes(), func(r string) { routes = append(routes, r) }, DefaultConfig())

	start := posOf(t, g, "A")
	require.True(t, c.PointerDown(start))

	t.Run("pointer down pins the node and raises alpha target", func(t *testing.T) {
		assert.Equal(t, ModeDragging, c.Mode())
		assert.Equal(t, "A", c.State().Dragged)
		assert.Equal(t, 0.3, sim.AlphaTarget())
		b, _ := g.Body("A")
		require.True(t, b.Pinned())
		assert.Equal(t, start, *b.Pin)
	})

	t.Run("moves follow the pointer", func(t *testing.T) {
		c.PointerMove(r2.Vec{X: 50, Y: 50})
		c.PointerMove(r2.Vec{X: 100, Y: 100})
		b, _ := g.Body("A")
		require.True(t, b.Pinned())
		assert.Equal(t, r2.Vec{X: 100, Y: 100}, *b.Pin)

		sim.Tick()
		assert.Equal(t, r2.Vec{X: 100, Y: 100}, posOf(t, g, "A"))
	})

	t.Run("leaving the surface keeps the drag", func(t *testing.T) {
		assert.False(t, c.PointerLeave())
		assert.Equal(t, ModeDragging, c.Mode())
	})

	t.Run("release unpins and restores alpha target", func(t *testing.T) {
		require.True(t, c.PointerUp(r2.Vec{X: 100, Y: 100}))
		b, _ := g.Body("A")
		assert.False(t, b.Pinned())
		assert.Nil(t, b.Pin)
		assert.Equal(t, 0.0, sim.AlphaTarget())
		assert.NotEqual(t, ModeDragging, c.Mode())
	})

	t.Run("a drag is not a click", func(t *testing.T) {
		assert.Empty(t, routes)
	})

	t.Run("pointer up without drag is ignored", func(t *testing.T) {
		assert.False(t, c.PointerUp(r2.Vec{}))
	})
}

func TestControllerDragRestartsSettledEngine(t *testing.T) {
	g := abc(t)
	spread(g)
	engine := &fakeEngine{}
	c := New(g, engine, DefaultRoutes(), nil, DefaultConfig())

	require.True(t, c.PointerDown(posOf(t, g, "C")))
	assert.Equal(t, 1, engine.restarts)
	assert.Equal(t, 0.3, engine.target)
}

func TestControllerClick(t *testing.T) {
	t.Run("click on NEURAL_HUB navigates once", func(t *testing.T) {
		g := systemMap(t)
		spread(g)
		var routes []string
		c := New(g, &fakeEngine{}, DefaultRoutes(), func(r string) { routes = append(routes, r) }, DefaultConfig())

		p := posOf(t, g, "NEURAL_HUB")
		require.True(t, c.PointerDown(p))
		require.True(t, c.PointerUp(p))

		assert.Equal(t, []string{"/modules/sentry"}, routes)
		b, _ := g.Body("NEURAL_HUB")
		assert.False(t, b.Pinned())
		assert.Equal(t, "NEURAL_HUB", c.State().Hovered)
	})

	t.Run("jitter within tolerance is still a click", func(t *testing.T) {
		g := systemMap(t)
		spread(g)
		calls := 0
		c := New(g, &fakeEngine{}, DefaultRoutes(), func(string) { calls++ }, DefaultConfig())

		p := posOf(t, g, "SWARM")
		c.PointerDown(p)
		c.PointerMove(r2.Add(p, r2.Vec{X: 1, Y: 1}))
		c.PointerUp(r2.Add(p, r2.Vec{X: 1, Y: 1}))

		assert.Equal(t, 1, calls)
	})

	t.Run("moving away and back is a drag", func(t *testing.T) {
		g := systemMap(t)
		spread(g)
		calls := 0
		c := New(g, &fakeEngine{}, DefaultRoutes(), func(string) { calls++ }, DefaultConfig())

		p := posOf(t, g, "SWARM")
		c.PointerDown(p)
		c.PointerMove(r2.Add(p, r2.Vec{X: 40}))
		c.PointerMove(p)
		c.PointerUp(p)

		assert.Zero(t, calls)
	})

	t.Run("unmapped node does not navigate", func(t *testing.T) {
		g := abc(t)
		spread(g)
		calls := 0
		c := New(g, &fakeEngine{}, DefaultRoutes(), func(string) { calls++ }, DefaultConfig())

		p := posOf(t, g, "A")
		c.PointerDown(p)
		c.PointerUp(p)

		assert.Zero(t, calls)
	})

	t.Run("substituted table", func(t *testing.T) {
		g := abc(t)
		spread(g)
		var routes []string
		table := Routes{Prefix: "/x/", Slugs: map[string]string{"A": "alpha"}}
		c := New(g, &fakeEngine{}, table, func(r string) { routes = append(routes, r) }, DefaultConfig())

		p := posOf(t, g, "A")
		c.PointerDown(p)
		c.PointerUp(p)

		assert.Equal(t, []string{"/x/alpha"}, routes)
	})

	t.Run("pointer down on empty space does nothing", func(t *testing.T) {
		g := abc(t)
		spread(g)
		engine := &fakeEngine{}
		c := New(g, engine, DefaultRoutes(), nil, DefaultConfig())

		assert.False(t, c.PointerDown(r2.Vec{X: 100, Y: 300}))
		assert.Equal(t, ModeIdle, c.Mode())
		assert.Zero(t, engine.restarts)
	})
}

func TestRoutesResolve(t *testing.T) {
	r := DefaultRoutes()

	tests := []struct {
		id    string
		route string
		ok    bool
	}{
		{"MEMORY_CORE", "/modules/mt", true},
		{"NEURAL_HUB", "/modules/sentry", true},
		{"RESEARCH_ENGINE", "/modules/ore", true},
		{"VISUAL_CORTEX", "/modules/marey", true},
		{"PLUGIN_SYS", "/modules/capsule", true},
		{"SWARM", "/modules/swarm", true},
		{"UNKNOWN", "", false},
	}

	for _, tt := range tests {
		route, ok := r.Resolve(tt.id)
		assert.Equal(t, tt.ok, ok, tt.id)
		assert.Equal(t, tt.route, route, tt.id)
	}

	abs := Routes{Prefix: "/modules/", Slugs: map[string]string{"X": "/elsewhere"}}
	route, ok := abs.Resolve("X")
	assert.True(t, ok)
	assert.Equal(t, "/elsewhere", route)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "idle", ModeIdle.String())
	assert.Equal(t, "hovering", ModeHovering.String())
	assert.Equal(t, "dragging", ModeDragging.String())
}
