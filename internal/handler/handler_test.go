package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"coremap/internal/catalog"
	"coremap/internal/hub"
	"coremap/internal/interaction"
	"coremap/internal/physics"
	"coremap/internal/render"
	"coremap/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gonum.org/v1/gonum/spatial/r2"
)

type testServer struct {
	*httptest.Server
	mgr *service.Manager
	hub *hub.Hub
}

func newTestServer(t *testing.T, cat *catalog.Catalog) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)

	bus := service.NewEventBus()
	mgr := service.NewManager(cat, "test", service.ManagerOptions{
		Session: service.SessionOptions{
			Physics:       physics.DefaultConfig(r2.Vec{X: 400, Y: 300}),
			Pointer:       interaction.DefaultConfig(),
			Routes:        interaction.DefaultRoutes(),
			Style:         render.DefaultStyle(800, 600),
			FrameInterval: time.Millisecond,
		},
		IdleTimeout: time.Minute,
	}, bus, logger)

	h := hub.New(time.Hour, logger)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		_ = h.Run(ctx)
		close(stopped)
	}()

	static := fstest.MapFS{"index.html": {Data: []byte("<html>coremap</html>")}}
	srv := httptest.NewServer(NewRouter(NewSessionHandler(mgr, h, logger), static, logger))

	t.Cleanup(func() {
		mgr.Shutdown()
		cancel()
		<-stopped
		srv.Close()
	})
	return &testServer{Server: srv, mgr: mgr, hub: h}
}

func (s *testServer) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.URL+path, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (s *testServer) create(t *testing.T) SessionResponse {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[SessionResponse](t, resp)
}

func TestCreateSession(t *testing.T) {
	srv := newTestServer(t, catalog.Default())

	resp := srv.do(t, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decode[SessionResponse](t, resp)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "/api/sessions/"+created.ID, resp.Header.Get("Location"))
	assert.Len(t, created.Scene.Nodes, 6)
	assert.Equal(t, 1, srv.mgr.Len())

	list := decode[[]service.SessionInfo](t, srv.do(t, http.MethodGet, "/api/sessions", ""))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestCreateSessionGraphUnavailable(t *testing.T) {
	srv := newTestServer(t, &catalog.Catalog{
		Nodes: []catalog.NodeSpec{{ID: "A", Category: "memory"}},
		Edges: []catalog.EdgeSpec{{Source: "A", Target: "Z", Relation: "grounds"}},
	})

	resp := srv.do(t, http.MethodPost, "/api/sessions", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"graph unavailable"}`, string(body))
}

func TestScene(t *testing.T) {
	srv := newTestServer(t, catalog.Default())
	id := srv.create(t).ID

	t.Run("json", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/api/sessions/"+id+"/scene", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		sc := decode[render.Scene](t, resp)
		assert.Len(t, sc.Edges, 8)
		assert.Equal(t, 800.0, sc.Width)
	})

	t.Run("svg", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/api/sessions/"+id+"/scene.svg", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "NEURAL_HUB")
	})

	t.Run("unknown session", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/api/sessions/nope/scene", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		errResp := decode[ErrorResponse](t, resp)
		assert.Equal(t, "Not found", errResp.Error)
	})
}

func TestPointer(t *testing.T) {
	srv := newTestServer(t, catalog.Default())
	id := srv.create(t).ID

	s, err := srv.mgr.Get(id)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return s.Scene().Overlay.State == "STABLE"
	}, 10*time.Second, 5*time.Millisecond)

	var at render.Point
	for _, n := range s.Scene().Nodes {
		if n.ID == "NEURAL_HUB" {
			at = n.At
		}
	}

	post := func(kind string, x, y float64) service.PointerResult {
		body, err := json.Marshal(service.PointerEvent{Kind: service.PointerKind(kind), X: x, Y: y})
		require.NoError(t, err)
		resp := srv.do(t, http.MethodPost, "/api/sessions/"+id+"/pointer", string(body))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		return decode[service.PointerResult](t, resp)
	}

	res := post("move", at.X, at.Y)
	assert.Equal(t, "NEURAL_HUB", res.Hovered)

	post("down", at.X, at.Y)
	res = post("up", at.X, at.Y)
	assert.Equal(t, "/modules/sentry", res.Navigate)

	t.Run("bad kind", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/api/sessions/"+id+"/pointer", `{"kind":"wheel","x":1,"y":2}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/api/sessions/"+id+"/pointer", `{"kind":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeleteSession(t *testing.T) {
	srv := newTestServer(t, catalog.Default())
	id := srv.create(t).ID

	resp := srv.do(t, http.MethodDelete, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, srv.mgr.Len())

	resp = srv.do(t, http.MethodDelete, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEvents(t *testing.T) {
	srv := newTestServer(t, catalog.Default())
	id := srv.create(t).ID

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/sessions/"+id+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return srv.hub.ClientCount(id) == 1 }, 5*time.Second, 5*time.Millisecond)

	s, err := srv.mgr.Get(id)
	require.NoError(t, err)
	srv.hub.Publish(id, "frame", s.Scene())

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if line == "event: frame\n" {
			break
		}
	}

	t.Run("open stream keeps the session alive", func(t *testing.T) {
		assert.True(t, s.Watched())
		assert.Equal(t, 0, srv.mgr.ReapIdle(time.Now().Add(time.Hour)))
		assert.Equal(t, 1, srv.mgr.Len())
	})

	t.Run("disconnect closes the session", func(t *testing.T) {
		cancel()
		require.Eventually(t, func() bool { return srv.mgr.Len() == 0 }, 5*time.Second, 5*time.Millisecond)
	})
}

func TestCatalogETag(t *testing.T) {
	srv := newTestServer(t, catalog.Default())

	resp := srv.do(t, http.MethodGet, "/api/catalog", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	etag := resp.Header.Get("ETag")
	assert.Equal(t, `"`+catalog.Default().Fingerprint()+`"`, etag)

	body := decode[CatalogResponse](t, resp)
	assert.Equal(t, "test", body.Source)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/catalog", nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", etag)
	cached, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer cached.Body.Close()
	assert.Equal(t, http.StatusNotModified, cached.StatusCode)
}

func TestStaticAndMetrics(t *testing.T) {
	srv := newTestServer(t, catalog.Default())
	srv.create(t)

	resp := srv.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "coremap")

	resp = srv.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "coremap_sessions_active")
	assert.Contains(t, string(body), `route="POST /api/sessions"`)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, catalog.Default())

	resp := srv.do(t, http.MethodOptions, "/api/sessions", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRecover(t *testing.T) {
	logger := zaptest.NewLogger(t)
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), Recover(logger), Logger(logger))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "boom", body.Details)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mw("outer"), mw("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
