package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"coremap/internal/domain"
	"coremap/internal/interaction"
	"coremap/internal/metrics"
	"coremap/internal/physics"
	"coremap/internal/render"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
)

// PointerKind is the kind of a pointer event
type PointerKind string

const (
	PointerMove  PointerKind = "move"
	PointerDown  PointerKind = "down"
	PointerUp    PointerKind = "up"
	PointerLeave PointerKind = "leave"
)

// Valid reports whether k is a known pointer kind
func (k PointerKind) Valid() bool {
	switch k {
	case PointerMove, PointerDown, PointerUp, PointerLeave:
		return true
	}
	return false
}

// PointerEvent is one pointer sample in layout coordinates
type PointerEvent struct {
	Kind PointerKind `json:"kind"`
	X    float64     `json:"x"`
	Y    float64     `json:"y"`
}

// PointerResult is the controller state after a pointer event
type PointerResult struct {
	Mode     string `json:"mode"`
	Hovered  string `json:"hovered,omitempty"`
	Dragged  string `json:"dragged,omitempty"`
	Navigate string `json:"navigate,omitempty"`
	Changed  bool   `json:"changed"`
}

// SessionOptions tunes a session
type SessionOptions struct {
	Physics       physics.Config
	Pointer       interaction.Config
	Routes        interaction.Routes
	Style         render.Style
	FrameInterval time.Duration
}

type pointerCommand struct {
	event PointerEvent
	reply chan PointerResult
}

// Session is one viewer's graph, simulation and interaction state
type Session struct {
	id      string
	created time.Time
	opts    SessionOptions
	bus     *EventBus
	logger  *zap.Logger

	// owned by the run goroutine
	graph    *domain.Graph
	sim      *physics.Simulation
	ctrl     *interaction.Controller
	fps      *fpsMeter
	route    string
	warmFrom uint64

	inbox    chan pointerCommand
	latest   atomic.Pointer[render.Scene]
	lastSeen atomic.Int64
	streams  atomic.Int32

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession builds the session state and starts its loop.
// The loop runs until Close or until ctx is cancelled.
func NewSession(ctx context.Context, id string, g *domain.Graph, opts SessionOptions, bus *EventBus, logger *zap.Logger) *Session {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = time.Second / 60
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		id:      id,
		created: time.Now(),
		opts:    opts,
		bus:     bus,
		logger:  logger.With(zap.String("session", id)),
		graph:   g,
		sim:     physics.New(g, opts.Physics),
		fps:     newFPSMeter(opts.FrameInterval),
		inbox:   make(chan pointerCommand),
		done:    make(chan struct{}),
	}
	s.ctrl = interaction.New(g, s.sim, opts.Routes, s.navigate, opts.Pointer)
	s.Touch()

	// the first frame is visible before the loop starts
	s.compose()

	ctx, s.cancel = context.WithCancel(ctx)
	go s.run(ctx)
	return s
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// Created returns the creation time
func (s *Session) Created() time.Time { return s.created }

// Touch records viewer activity
func (s *Session) Touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

// Attach records an open frame stream. The session is active until the
// matching Detach.
func (s *Session) Attach() {
	s.streams.Add(1)
	s.Touch()
}

// Detach records that a frame stream ended
func (s *Session) Detach() {
	s.streams.Add(-1)
	s.Touch()
}

// Watched reports whether a frame stream is open
func (s *Session) Watched() bool {
	return s.streams.Load() > 0
}

// LastSeen returns the time of the last viewer activity
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Scene returns the most recently composed frame
func (s *Session) Scene() render.Scene {
	return *s.latest.Load()
}

// Done is closed when the session loop has exited
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Pointer hands an event to the session loop and waits for the result
func (s *Session) Pointer(ctx context.Context, ev PointerEvent) (PointerResult, error) {
	if !ev.Kind.Valid() {
		return PointerResult{}, fmt.Errorf("unknown pointer kind %q", ev.Kind)
	}
	s.Touch()

	cmd := pointerCommand{event: ev, reply: make(chan PointerResult, 1)}
	select {
	case s.inbox <- cmd:
	case <-s.done:
		return PointerResult{}, ErrSessionClosed
	case <-ctx.Done():
		return PointerResult{}, ctx.Err()
	}

	select {
	case res := <-cmd.reply:
		return res, nil
	case <-s.done:
		return PointerResult{}, ErrSessionClosed
	case <-ctx.Done():
		return PointerResult{}, ctx.Err()
	}
}

// Close stops the loop and waits for it to exit.
// No tick runs and no frame is published after Close returns.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
		s.bus.Publish(Event{Type: EventSessionClosed, Session: s.id})
		s.logger.Debug("session closed", zap.Uint64("ticks", s.sim.Ticks()))
	})
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.opts.FrameInterval)
	defer ticker.Stop()
	running := true

	for {
		select {
		case <-ctx.Done():
			return

		case now := <-ticker.C:
			if !running {
				continue
			}
			moving := s.sim.Tick()
			metrics.SimulationTicks.Inc()
			s.fps.frame(now)
			s.publish()

			if !moving {
				running = false
				ticker.Stop()
				settled := s.sim.Ticks() - s.warmFrom
				metrics.SettleTicks.Observe(float64(settled))
				s.logger.Debug("layout settled", zap.Uint64("ticks", settled))
			}

		case cmd := <-s.inbox:
			res := s.apply(cmd.event)
			if res.Changed {
				s.publish()
			}
			if !running && !s.sim.Settled() {
				running = true
				s.warmFrom = s.sim.Ticks()
				s.fps.reset()
				ticker.Reset(s.opts.FrameInterval)
			}
			cmd.reply <- res
		}
	}
}

func (s *Session) apply(ev PointerEvent) PointerResult {
	p := r2.Vec{X: ev.X, Y: ev.Y}
	s.route = ""

	var changed bool
	switch ev.Kind {
	case PointerMove:
		changed = s.ctrl.PointerMove(p)
	case PointerDown:
		changed = s.ctrl.PointerDown(p)
	case PointerUp:
		changed = s.ctrl.PointerUp(p)
	case PointerLeave:
		changed = s.ctrl.PointerLeave()
	}

	st := s.ctrl.State()
	return PointerResult{
		Mode:     s.ctrl.Mode().String(),
		Hovered:  st.Hovered,
		Dragged:  st.Dragged,
		Navigate: s.route,
		Changed:  changed,
	}
}

// navigate runs inside the loop, called by the controller on click
func (s *Session) navigate(route string) {
	s.route = route
	metrics.Navigations.WithLabelValues(route).Inc()
	s.logger.Info("navigate", zap.String("route", route))
	s.bus.Publish(Event{
		Type:    EventNavigate,
		Session: s.id,
		Payload: NavigatePayload{Node: s.ctrl.State().Hovered, Route: route},
	})
}

func (s *Session) compose() *render.Scene {
	scene := render.Compose(s.sim.Snapshot(), s.ctrl.State(), s.opts.Style)
	scene.Overlay.FPS = s.fps.rate()
	s.latest.Store(&scene)
	return &scene
}

func (s *Session) publish() {
	scene := s.compose()
	s.bus.Publish(Event{Type: EventFrame, Session: s.id, Payload: scene})
}

// fpsMeter counts frames over one second windows
type fpsMeter struct {
	nominal float64
	start   time.Time
	frames  int
	current float64
}

func newFPSMeter(interval time.Duration) *fpsMeter {
	nominal := float64(time.Second) / float64(interval)
	return &fpsMeter{nominal: nominal, current: nominal}
}

func (m *fpsMeter) frame(now time.Time) {
	if m.start.IsZero() {
		m.start = now
		return
	}
	m.frames++
	if elapsed := now.Sub(m.start); elapsed >= time.Second {
		m.current = float64(m.frames) / elapsed.Seconds()
		m.start = now
		m.frames = 0
	}
}

func (m *fpsMeter) reset() {
	m.start = time.Time{}
	m.frames = 0
}

func (m *fpsMeter) rate() float64 {
	return m.current
}
