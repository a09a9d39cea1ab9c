package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// AdminServer exposes operator endpoints. It has no authentication and is
// meant to listen on loopback only.
type AdminServer struct {
	server *http.Server
	logger zerolog.Logger
	wg     sync.WaitGroup
}

func NewAdminServer(a announcer, addr string, logger zerolog.Logger) *AdminServer {
	logger = logger.With().Str("component", "admin").Logger()

	if addr == "" {
		addr = "localhost:3002"
	}

	return &AdminServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           newAdminRouter(a, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func newAdminRouter(a announcer, logger zerolog.Logger) http.Handler {
	h := &adminHandlers{announcer: a, logger: logger}

	r := chi.NewRouter()
	r.Use(requestMetrics)
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)

	r.Post("/admin/announce", h.announce)

	return r
}

func (s *AdminServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("admin API started")
	s.wg.Add(1)
	defer s.wg.Done()

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *AdminServer) Shutdown(ctx context.Context) error {
	defer s.wg.Wait()
	return s.server.Shutdown(ctx)
}
