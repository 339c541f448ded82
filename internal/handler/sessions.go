package handler

import (
	"errors"
	"net/http"

	"coremap/internal/hub"
	"coremap/internal/render"
	"coremap/internal/service"

	"go.uber.org/zap"
)

// SessionHandler serves the session and catalog endpoints
type SessionHandler struct {
	mgr    *service.Manager
	hub    *hub.Hub
	logger *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(mgr *service.Manager, h *hub.Hub, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{mgr: mgr, hub: h, logger: logger}
}

// Register adds the API routes to mux
func (h *SessionHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/catalog", h.GetCatalog)

	mux.HandleFunc("GET /api/sessions", h.ListSessions)
	mux.HandleFunc("POST /api/sessions", h.CreateSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.DeleteSession)
	mux.HandleFunc("GET /api/sessions/{id}/scene", h.GetScene)
	mux.HandleFunc("GET /api/sessions/{id}/scene.svg", h.GetSceneSVG)
	mux.HandleFunc("POST /api/sessions/{id}/pointer", h.Pointer)
	mux.HandleFunc("GET /api/sessions/{id}/events", h.Events)
}

// CatalogResponse describes the current catalog
type CatalogResponse struct {
	Source      string      `json:"source"`
	Fingerprint string      `json:"fingerprint"`
	Catalog     interface{} `json:"catalog"`
}

// SessionResponse is returned when a session is created
type SessionResponse struct {
	ID    string       `json:"id"`
	Scene render.Scene `json:"scene"`
}

// GetCatalog returns the catalog new sessions are built from
func (h *SessionHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	cat := h.mgr.Catalog()
	etag := `"` + cat.Fingerprint() + `"`

	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	writeJSON(w, h.logger, CatalogResponse{
		Source:      h.mgr.Source(),
		Fingerprint: cat.Fingerprint(),
		Catalog:     cat,
	}, http.StatusOK)
}

// ListSessions returns the open sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, h.mgr.List(), http.StatusOK)
}

// CreateSession builds a fresh graph and starts its simulation
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.mgr.Create()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/sessions/"+s.ID())
	writeJSON(w, h.logger, SessionResponse{ID: s.ID(), Scene: s.Scene()}, http.StatusCreated)
}

// DeleteSession closes a session
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.mgr.Close(id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.hub.CloseTopic(id)
	w.WriteHeader(http.StatusNoContent)
}

// GetScene returns the latest frame of a session
func (h *SessionHandler) GetScene(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Touch()
	writeJSON(w, h.logger, s.Scene(), http.StatusOK)
}

// GetSceneSVG renders the latest frame of a session as SVG
func (h *SessionHandler) GetSceneSVG(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Touch()
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := render.SVG(w, s.Scene()); err != nil {
		h.logger.Warn("failed to write SVG", zap.String("session", s.ID()), zap.Error(err))
	}
}

// Pointer forwards a pointer event to the session
func (h *SessionHandler) Pointer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var ev service.PointerEvent
	if err := decodeJSON(w, r, &ev); err != nil {
		writeError(w, h.logger, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if !ev.Kind.Valid() {
		writeError(w, h.logger, "Invalid pointer event", "kind must be move, down, up or leave", http.StatusBadRequest)
		return
	}

	res, err := s.Pointer(r.Context(), ev)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, h.logger, res, http.StatusOK)
}

// Events streams the frames of a session. The session is closed when the
// viewer disconnects.
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Attach()
	gone := h.hub.Serve(w, r, s.ID())
	s.Detach()

	if gone {
		if err := h.mgr.Close(s.ID()); err == nil {
			h.logger.Debug("viewer disconnected, session closed", zap.String("session", s.ID()))
		}
	}
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	s, err := h.mgr.Get(r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err)
		return nil, false
	}
	return s, true
}

func (h *SessionHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrGraphUnavailable):
		writeJSON(w, h.logger, ErrorResponse{Error: "graph unavailable"}, http.StatusUnprocessableEntity)
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, h.logger, "Not found", err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrSessionClosed):
		writeError(w, h.logger, "Session closed", err.Error(), http.StatusGone)
	case errors.Is(err, service.ErrTooManySessions):
		writeError(w, h.logger, "Too many sessions", err.Error(), http.StatusServiceUnavailable)
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeError(w, h.logger, "Internal error", err.Error(), http.StatusInternalServerError)
	}
}
