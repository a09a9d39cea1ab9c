package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"huddle/internal/content"
	"huddle/internal/models"
)

// chatState is the read side of the coordinator.
type chatState interface {
	Users() []models.User
	Messages(limit int) []models.Message
	ConnectionCount() int
	UserCount() int
}

type announcer interface {
	Announce(text string)
}

type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Connections int    `json:"connections"`
	Users       int    `json:"users"`
}

type AnnounceRequest struct {
	Text string `json:"text"`
}

type handlers struct {
	state  chatState
	logger zerolog.Logger
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, HealthResponse{
		Status:      "OK",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Connections: h.state.ConnectionCount(),
		Users:       h.state.UserCount(),
	})
}

func (h *handlers) users(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.state.Users())
}

func (h *handlers) messages(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, h.logger, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	writeJSON(w, h.logger, http.StatusOK, h.state.Messages(limit))
}

type adminHandlers struct {
	announcer announcer
	logger    zerolog.Logger
}

func (h *adminHandlers) announce(w http.ResponseWriter, r *http.Request) {
	var req AnnounceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	text, err := content.MessageText(req.Text)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	h.announcer.Announce(text)
	h.logger.Info().Int("length", len(text)).Msg("announcement queued")
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, logger zerolog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, logger zerolog.Logger, status int, message string) {
	writeJSON(w, logger, status, map[string]string{"error": message})
}
