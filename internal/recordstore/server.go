// Package recordstore serves the agent, mission and target records over
// HTTP. It is the backend the proxy forwards to.
package recordstore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/soyeahso/roster/internal/config"
	"github.com/soyeahso/roster/internal/logging"
	"github.com/soyeahso/roster/internal/middleware"
	"github.com/soyeahso/roster/internal/store"
)

// BreedValidator checks a breed name. *breeds.Client satisfies it.
type BreedValidator interface {
	Validate(ctx context.Context, breed string) error
}

// Server is the record store HTTP server.
type Server struct {
	cfg      config.StoreConfig
	log      *logging.Logger
	db       *store.DB
	agents   *store.AgentStore
	missions *store.MissionStore
	breeds   BreedValidator // nil disables breed validation

	httpServer *http.Server
}

// ServerOption configures the record store server.
type ServerOption func(*Server)

// WithBreedValidator enables breed validation on agent create.
func WithBreedValidator(v BreedValidator) ServerOption {
	return func(s *Server) {
		s.breeds = v
	}
}

// New creates a record store server over an open database.
func New(cfg config.StoreConfig, db *store.DB, log *logging.Logger, opts ...ServerOption) *Server {
	s := &Server{
		cfg:      cfg,
		log:      log.Sub("recordstore"),
		db:       db,
		agents:   store.NewAgentStore(db),
		missions: store.NewMissionStore(db),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return middleware.Wrap(mux, s.log, middleware.Options{
		Token:       s.cfg.Token,
		PublicPaths: []string{"/health"},
	})
}

// Start listens on the configured address and blocks until ctx is
// cancelled or the server fails.
func (s *Server) Start(ctx context.Context) error {
	addr := s.cfg.Addr()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.log.Info().
		Str("addr", ln.Addr().String()).
		Bool("breedValidation", s.breeds != nil).
		Bool("tokenRequired", s.cfg.Token != "").
		Msg("record store ready")

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down record store")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
