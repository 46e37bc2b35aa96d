// ABOUTME: Gateway orchestrator wiring config, router, clients, and HTTP server
// ABOUTME: Manages listener lifecycle, health endpoints, and graceful shutdown

package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/2389/agui-gateway/internal/a2a"
	"github.com/2389/agui-gateway/internal/auth"
	"github.com/2389/agui-gateway/internal/config"
	"github.com/2389/agui-gateway/internal/metrics"
)

// Gateway bridges AG-UI clients to A2A backend agents. It owns the router,
// the per-target streaming clients, and the HTTP server exposing the chat
// endpoint and health probes.
type Gateway struct {
	config     *config.Config
	router     *Router
	targets    map[string]*Target
	httpServer *http.Server
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// New creates a Gateway from the given configuration. Streaming clients
// are created once per target; their connection pools are shared by all
// simultaneous runs.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	targets := make(map[string]*Target, len(cfg.Agents.Targets))
	for _, tc := range cfg.Agents.Targets {
		client := a2a.NewClient(tc.URL, tc.Path, cfg.Agents.IdleTimeout,
			logger.With("component", "a2a-client", "target", tc.Name))
		targets[tc.Name] = &Target{Name: tc.Name, Client: client}
	}

	rules := make([]Rule, 0, len(cfg.Agents.Routes))
	for _, rc := range cfg.Agents.Routes {
		target, ok := targets[rc.Target]
		if !ok {
			return nil, fmt.Errorf("route %q references unknown target %q", rc.Prefix, rc.Target)
		}
		rules = append(rules, Rule{Prefix: rc.Prefix, Target: target, Strip: rc.StripPrefix})
	}

	defaultTarget, ok := targets[cfg.Agents.DefaultTarget]
	if !ok {
		return nil, fmt.Errorf("default target %q is not configured", cfg.Agents.DefaultTarget)
	}

	gw := &Gateway{
		config:  cfg,
		router:  NewRouter(rules, defaultTarget),
		targets: targets,
		metrics: metrics.New(),
		logger:  logger.With("component", "gateway"),
	}

	mux := http.NewServeMux()

	// Health endpoints - no auth required
	mux.HandleFunc("/health", gw.handleHealth)
	mux.HandleFunc("/health/ready", gw.handleReady)

	if cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, gw.metrics.Handler())
		logger.Info("metrics endpoint enabled", "path", path)
	}

	gw.registerAPIRoutes(mux, cfg, logger)

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// registerAPIRoutes registers API routes with or without auth middleware.
func (g *Gateway) registerAPIRoutes(mux *http.ServeMux, cfg *config.Config, logger *slog.Logger) {
	if cfg.Auth.JWTSecret != "" {
		verifier := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
		authMiddleware := auth.HTTPAuthMiddleware(verifier)
		mux.Handle("/api/agui/chat", authMiddleware(http.HandlerFunc(g.handleChat)))
		logger.Info("HTTP auth middleware enabled")
		return
	}
	mux.HandleFunc("/api/agui/chat", g.handleChat)
	logger.Warn("HTTP auth disabled - no jwt_secret configured")
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown stops the HTTP server, waiting for in-flight runs up to the
// context deadline.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")
	if err := g.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	return nil
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK once backend targets are configured.
// Targets are static configuration, so readiness reports their count
// without dialing backends on the probe path.
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	if len(g.targets) == 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no agent targets configured"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ready (%d targets)", len(g.targets))
}
