package physics

import (
	"context"
	"fmt"
	"math"
	"testing"

	"coremap/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

var center = r2.Vec{X: 400, Y: 300}

func newGraph(t *testing.T, ids []string, edges [][2]string) *domain.Graph {
	t.Helper()
	nodes := make([]domain.Node, len(ids))
	for i, id := range ids {
		nodes[i] = *domain.NewNode(id, domain.CategoryCognition, "")
	}
	es := make([]domain.Edge, len(edges))
	for i, e := range edges {
		es[i] = *domain.NewEdge(e[0], e[1], "rel")
	}
	g, err := domain.New(nodes, es, center)
	require.NoError(t, err)
	return g
}

// systemGraph mirrors the default catalog topology
func systemGraph(t *testing.T) *domain.Graph {
	return newGraph(t,
		[]string{"MEMORY_CORE", "NEURAL_HUB", "RESEARCH_ENGINE", "VISUAL_CORTEX", "PLUGIN_SYS", "SWARM"},
		[][2]string{
			{"MEMORY_CORE", "NEURAL_HUB"},
			{"NEURAL_HUB", "PLUGIN_SYS"},
			{"PLUGIN_SYS", "MEMORY_CORE"},
			{"RESEARCH_ENGINE", "MEMORY_CORE"},
			{"MEMORY_CORE", "RESEARCH_ENGINE"},
			{"NEURAL_HUB", "SWARM"},
			{"SWARM", "NEURAL_HUB"},
			{"VISUAL_CORTEX", "PLUGIN_SYS"},
		})
}

func starGraph(t *testing.T, leaves int) *domain.Graph {
	ids := []string{"hub"}
	var edges [][2]string
	for i := 0; i < leaves; i++ {
		id := fmt.Sprintf("leaf%d", i)
		ids = append(ids, id)
		edges = append(edges, [2]string{"hub", id})
	}
	return newGraph(t, ids, edges)
}

func completeGraph(t *testing.T, n int) *domain.Graph {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("n%d", i)
	}
	var edges [][2]string
	for i := range ids {
		for j := i + 1; j < n; j++ {
			edges = append(edges, [2]string{ids[i], ids[j]})
		}
	}
	return newGraph(t, ids, edges)
}

func minSeparation(s *domain.Snapshot) float64 {
	best := math.Inf(1)
	for i := 0; i < s.Len(); i++ {
		for j := i + 1; j < s.Len(); j++ {
			best = math.Min(best, r2.Norm(r2.Sub(s.Position(i), s.Position(j))))
		}
	}
	return best
}

func TestSimulationSettles(t *testing.T) {
	sim := New(systemGraph(t), DefaultConfig(center))

	ticks, err := sim.Run(context.Background(), 2000)
	require.NoError(t, err)

	assert.True(t, sim.Settled())
	assert.Less(t, sim.Alpha(), sim.Config().AlphaMin)
	assert.Equal(t, uint64(ticks), sim.Ticks())
	assert.Greater(t, ticks, 100, "alpha should take a few hundred ticks to decay")
}

func TestSimulationCollisionInvariantAtRest(t *testing.T) {
	tests := []struct {
		name  string
		graph func(t *testing.T) *domain.Graph
	}{
		{"system map", systemGraph},
		{"chain", func(t *testing.T) *domain.Graph {
			return newGraph(t, []string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}})
		}},
		{"ring", func(t *testing.T) *domain.Graph {
			ids := []string{"n0", "n1", "n2", "n3", "n4", "n5", "n6", "n7"}
			var edges [][2]string
			for i := range ids {
				edges = append(edges, [2]string{ids[i], ids[(i+1)%len(ids)]})
			}
			return newGraph(t, ids, edges)
		}},
		{"disconnected", func(t *testing.T) *domain.Graph {
			return newGraph(t, []string{"a", "b", "c", "d", "e"}, nil)
		}},
		{"star 24", func(t *testing.T) *domain.Graph { return starGraph(t, 24) }},
		{"star 40", func(t *testing.T) *domain.Graph { return starGraph(t, 40) }},
		{"star 70", func(t *testing.T) *domain.Graph { return starGraph(t, 70) }},
		{"complete 20", func(t *testing.T) *domain.Graph { return completeGraph(t, 20) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := New(tt.graph(t), DefaultConfig(center))
			_, err := sim.Run(context.Background(), 2000)
			require.NoError(t, err)

			snap := sim.Snapshot()
			require.True(t, snap.Settled)
			radius := sim.Config().CollideRadius
			assert.GreaterOrEqual(t, minSeparation(snap), 2*radius,
				"node centers closer than twice the collision radius")
		})
	}
}

func TestSimulationPinning(t *testing.T) {
	g := newGraph(t, []string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}})
	sim := New(g, DefaultConfig(center))

	pin := r2.Vec{X: 1000, Y: 1000}
	require.NoError(t, g.SetPinned("A", &pin))

	t.Run("pinned node is held in place", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			sim.Tick()
		}
		b, err := g.Body("A")
		require.NoError(t, err)
		assert.Equal(t, pin, b.Pos)
		assert.Equal(t, r2.Vec{}, b.Vel)
	})

	t.Run("released node re-enters integration", func(t *testing.T) {
		require.NoError(t, g.SetPinned("A", nil))

		sim.Tick()
		b, err := g.Body("A")
		require.NoError(t, err)
		assert.False(t, b.Pinned())
		assert.NotEqual(t, r2.Vec{}, b.Vel, "velocity must no longer be forced to zero")
		assert.NotEqual(t, pin, b.Pos)
	})
}

func TestSimulationAlphaTarget(t *testing.T) {
	sim := New(systemGraph(t), DefaultConfig(center))
	_, err := sim.Run(context.Background(), 2000)
	require.NoError(t, err)
	require.True(t, sim.Settled())

	t.Run("raised target keeps the layout live", func(t *testing.T) {
		sim.SetAlphaTarget(0.3)
		sim.Restart()
		for i := 0; i < 500; i++ {
			require.True(t, sim.Tick())
		}
		assert.InDelta(t, 0.3, sim.Alpha(), 0.01)
	})

	t.Run("restored target decays again", func(t *testing.T) {
		sim.SetAlphaTarget(0)
		_, err := sim.Run(context.Background(), 2000)
		require.NoError(t, err)
		assert.True(t, sim.Settled())
	})
}

func TestSimulationRunCancelled(t *testing.T) {
	sim := New(systemGraph(t), DefaultConfig(center))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ticks, err := sim.Run(ctx, 100)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, ticks)
	assert.Equal(t, uint64(0), sim.Ticks())
}

func TestSimulationRunBudget(t *testing.T) {
	sim := New(systemGraph(t), DefaultConfig(center))

	ticks, err := sim.Run(context.Background(), 10)
	assert.ErrorIs(t, err, ErrNotSettled)
	assert.Equal(t, 10, ticks)
}

func TestSimulationNonFiniteVelocity(t *testing.T) {
	g := newGraph(t, []string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}})
	sim := New(g, DefaultConfig(center))
	require.NoError(t, g.ApplyVelocity("A", math.Inf(1), math.NaN()))

	sim.Tick()

	for i, b := range sim.Snapshot().Bodies {
		assert.True(t, finite(b.Pos), "node %d position %v", i, b.Pos)
		assert.True(t, finite(b.Vel), "node %d velocity %v", i, b.Vel)
	}
}

func TestSimulationSetForce(t *testing.T) {
	sim := New(systemGraph(t), DefaultConfig(center))

	require.NotNil(t, sim.Force("charge"))

	sim.SetForce("charge", nil)
	assert.Nil(t, sim.Force("charge"))

	custom := NewCharge(-10, 0.9, 64)
	sim.SetForce("charge", custom)
	assert.Same(t, custom, sim.Force("charge"))

	link := NewLink(80)
	sim.SetForce("link", link)
	assert.Same(t, link, sim.Force("link"))
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{Center: center, LinkDistance: 90}.withDefaults()
	def := DefaultConfig(center)

	assert.Equal(t, 90.0, cfg.LinkDistance)
	assert.Equal(t, def.ChargeStrength, cfg.ChargeStrength)
	assert.Equal(t, def.CollideRadius, cfg.CollideRadius)
	assert.InDelta(t, def.AlphaDecay, cfg.AlphaDecay, 1e-12)
	assert.Equal(t, center, cfg.Center)
}
