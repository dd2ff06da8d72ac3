// Package gateway is the proxy's HTTP surface: it exposes /api/agents to
// dashboards and relays every call through a proxy.Forwarder.
package gateway

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/soyeahso/roster/internal/config"
	"github.com/soyeahso/roster/internal/hooks"
	"github.com/soyeahso/roster/internal/logging"
	"github.com/soyeahso/roster/internal/middleware"
	"github.com/soyeahso/roster/internal/proxy"
)

// Server is the roster proxy HTTP server.
type Server struct {
	cfg config.ProxyConfig
	fwd *proxy.Forwarder
	log *logging.Logger

	// Hook manager (optional; nil if not configured)
	hooks *hooks.Manager

	mu        sync.Mutex
	addr      string
	startedAt time.Time
}

// ServerOption configures the gateway server.
type ServerOption func(*Server)

// WithHooks sets the hook manager for lifecycle and mutation events.
func WithHooks(hm *hooks.Manager) ServerOption {
	return func(s *Server) {
		s.hooks = hm
	}
}

// New creates a new gateway server that forwards through fwd.
func New(cfg config.ProxyConfig, fwd *proxy.Forwarder, log *logging.Logger, opts ...ServerOption) *Server {
	s := &Server{
		cfg: cfg,
		fwd: fwd,
		log: log.Sub("gateway"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerHTTPRoutes(mux)
	return middleware.Wrap(mux, s.log, middleware.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
	})
}

// Start begins listening for HTTP connections.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	addr := s.cfg.Addr()

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	if s.cfg.TLS.Enabled {
		cert, err := tls.LoadX509KeyPair(s.cfg.TLS.CertPath, s.cfg.TLS.KeyPath)
		if err != nil {
			ln.Close()
			return fmt.Errorf("loading TLS certificate: %w", err)
		}
		ln = tls.NewListener(ln, &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})
		s.log.Info().Msg("TLS enabled")
	} else if s.cfg.Bind != "loopback" {
		s.log.Warn().Msg("TLS is not enabled, roster data will be transmitted in cleartext")
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("bind", s.cfg.Bind).
		Msg("proxy server starting")

	if s.hooks != nil {
		s.hooks.Emit(ctx, hooks.EventProxyStart, map[string]any{
			"addr": ln.Addr().String(),
		})
	}

	s.log.Info().Str("addr", ln.Addr().String()).Msg("proxy server ready")

	stopped := make(chan struct{})
	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down proxy server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
		close(stopped)
	}()

	if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped

	if s.hooks != nil {
		s.hooks.Emit(context.Background(), hooks.EventProxyStop, map[string]any{
			"uptime": time.Since(s.startedAt).Round(time.Second).String(),
		})
		s.hooks.Wait()
	}
	return nil
}

// Addr returns the bound listen address, or empty string if not started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// emit fires a mutation event without delaying the response.
func (s *Server) emit(event string, data map[string]any) {
	if s.hooks != nil {
		s.hooks.EmitAsync(context.Background(), event, data)
	}
}
