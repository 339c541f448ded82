package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coremap/internal/catalog"
	"coremap/internal/config"
	"coremap/internal/handler"
	"coremap/internal/hub"
	"coremap/internal/service"
	"coremap/internal/watcher"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive map over HTTP",
		Long: `Serve the browser viewer, the session API and the frame stream.
Each viewer gets its own simulation; frames and navigation requests are
pushed over Server-Sent Events.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :3000)")
	return cmd
}

// sessionOptions derives the per-viewer settings from config
func sessionOptions(cfg *config.Config) service.SessionOptions {
	return service.SessionOptions{
		Physics:       cfg.EffectivePhysics(),
		Pointer:       cfg.EffectivePointer(),
		Routes:        cfg.Routes,
		Style:         cfg.Style(),
		FrameInterval: cfg.Server.FrameInterval.Duration(),
	}
}

func (a *app) serve(ctx context.Context) error {
	logger := a.logger
	cfg := a.cfg

	src, closer, err := openSource(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	defer closer.Close()

	cat, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("load catalog %s: %w", src.Name(), err)
	}
	if err := cat.Validate(); err != nil {
		return fmt.Errorf("catalog %s: %w", src.Name(), err)
	}
	for _, u := range cat.Unknown() {
		logger.Warn("unknown category, drawn as circle", zap.String("node", u))
	}

	bus := service.NewEventBus()
	mgr := service.NewManager(cat, src.Name(), service.ManagerOptions{
		Session:     sessionOptions(cfg),
		MaxSessions: cfg.Server.MaxSessions,
		IdleTimeout: cfg.Server.SessionIdle.Duration(),
	}, bus, logger)
	h := hub.New(cfg.Server.KeepAlive.Duration(), logger)

	router := handler.NewRouter(handler.NewSessionHandler(mgr, h, logger), a.static, logger)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		// frame streams stay open; no WriteTimeout
	}

	logger.Info("starting coremap",
		zap.String("version", version),
		zap.String("addr", cfg.Server.Addr),
		zap.String("catalog", src.Name()),
		zap.String("config", a.cfgPath),
		zap.Int("nodes", len(cat.Nodes)),
		zap.Int("edges", len(cat.Edges)),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return h.Run(gctx) })
	g.Go(func() error { return mgr.Run(gctx) })
	g.Go(func() error { return bridge(gctx, bus, h, mgr) })

	if cfg.Catalog.Watch && cfg.Catalog.Path != "" {
		w := watcher.New(cfg.Catalog.Path, func(ctx context.Context) {
			if err := mgr.Reload(ctx, src); err != nil {
				logger.Warn("catalog reload failed", zap.Error(err))
			}
		}, logger)
		g.Go(func() error { return w.Watch(gctx) })
	}

	g.Go(func() error {
		Brand.Fprintf(os.Stderr, "coremap ")
		Subtle.Fprintf(os.Stderr, "listening on http://%s\n", displayAddr(cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// bridge forwards bus events to the SSE topics of their sessions.
// Frames may be dropped for slow viewers; every other event is delivered.
func bridge(ctx context.Context, bus *service.EventBus, h *hub.Hub, mgr *service.Manager) error {
	events := make(chan service.Event, 256)
	bus.Subscribe(events)
	defer bus.Unsubscribe(events)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			var err error
			switch ev.Type {
			case service.EventFrame:
				h.Publish(ev.Session, string(ev.Type), ev.Payload)
			case service.EventCatalogReloaded:
				for _, s := range mgr.List() {
					if err = h.PublishControl(ctx, s.ID, string(ev.Type), ev.Payload); err != nil {
						break
					}
				}
			case service.EventSessionClosed:
				err = h.PublishControl(ctx, ev.Session, string(ev.Type), ev.Payload)
				h.CloseTopic(ev.Session)
			default:
				err = h.PublishControl(ctx, ev.Session, string(ev.Type), ev.Payload)
			}
			if err != nil {
				return nil
			}
		}
	}
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

// catalogSummary is the one-line description printed by several commands
func catalogSummary(cat *catalog.Catalog, source string) string {
	return fmt.Sprintf("%s: %d nodes, %d edges", source, len(cat.Nodes), len(cat.Edges))
}
