package handler

import (
	"io/fs"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter wires the API, metrics and the static viewer behind the middleware.
// A nil static filesystem serves no viewer.
func NewRouter(sessions *SessionHandler, static fs.FS, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	sessions.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())
	if static != nil {
		mux.Handle("GET /", http.FileServer(http.FS(static)))
	}

	return Chain(mux,
		Recover(logger),
		CORS,
		Logger(logger),
	)
}
