package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"huddle/internal/ws"
)

type APIServer struct {
	server *http.Server
	logger zerolog.Logger
	wg     sync.WaitGroup
}

type APIConfig struct {
	Addr           string
	AllowedOrigins []string
}

func NewAPIServer(state chatState, wsServer *ws.Server, cfg APIConfig, logger zerolog.Logger) *APIServer {
	logger = logger.With().Str("component", "api").Logger()

	addr := cfg.Addr
	if addr == "" {
		addr = ":3001"
	}

	return &APIServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           newAPIRouter(state, wsServer, cfg.AllowedOrigins, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func newAPIRouter(state chatState, wsServer *ws.Server, origins []string, logger zerolog.Logger) http.Handler {
	h := &handlers{state: state, logger: logger}

	r := chi.NewRouter()
	r.Use(requestMetrics)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/users", h.users)
		r.Get("/messages", h.messages)
	})

	if wsServer != nil {
		r.Get("/ws", wsServer.HandleConnections)
	}

	return r
}

func (s *APIServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("server started")
	s.wg.Add(1)
	defer s.wg.Done()

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *APIServer) Shutdown(ctx context.Context) error {
	defer s.wg.Wait()
	return s.server.Shutdown(ctx)
}
