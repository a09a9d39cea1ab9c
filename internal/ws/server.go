package ws

import (
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type Config struct {
	AllowedOrigins []string
	AllowAnyOrigin bool
	SendBuffer     int
	WriteTimeout   time.Duration
	PongTimeout    time.Duration
	MaxFrameSize   int64
}

type Server struct {
	hub      messageHub
	cfg      Config
	upgrader *websocket.Upgrader
	logger   zerolog.Logger
}

func NewServer(hub messageHub, cfg Config, logger zerolog.Logger) *Server {
	s := &Server{
		hub:    hub,
		cfg:    cfg,
		logger: logger.With().Str("component", "ws").Logger(),
	}
	s.upgrader = &websocket.Upgrader{
		CheckOrigin:  s.checkOrigin,
		Subprotocols: Subprotocols,
	}
	return s
}

// checkOrigin admits requests without an Origin header (non-browser
// clients), any origin when AllowAnyOrigin is set, or an exact match.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return s.cfg.AllowAnyOrigin || slices.Contains(s.cfg.AllowedOrigins, origin)
}

func (s *Server) HandleConnections(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("origin", r.Header.Get("Origin")).Msg("websocket upgrade failed")
		return
	}

	if s.cfg.MaxFrameSize > 0 {
		ws.SetReadLimit(s.cfg.MaxFrameSize)
	}

	var pingInterval time.Duration
	if s.cfg.PongTimeout > 0 {
		pingInterval = s.cfg.PongTimeout * 9 / 10
		_ = ws.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
		})
	}

	codec := CodecFor(ws.Subprotocol())
	conn := NewConnection(s.hub, ws, codec, uuid.New().String(), ConnectionConfig{
		SendBuffer:   s.cfg.SendBuffer,
		WriteTimeout: s.cfg.WriteTimeout,
		PingInterval: pingInterval,
	}, s.logger)

	s.logger.Debug().
		Str("conn", conn.ID()).
		Str("subprotocol", codec.Subprotocol()).
		Str("remote", r.RemoteAddr).
		Msg("websocket connected")

	if err := conn.Handle(r.Context()); err != nil {
		s.logger.Debug().Err(err).Str("conn", conn.ID()).Msg("websocket closed with error")
		return
	}
	s.logger.Debug().Str("conn", conn.ID()).Msg("websocket closed")
}
