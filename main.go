package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"huddle/internal/chat"
	"huddle/internal/config"
	"huddle/internal/http"
	"huddle/internal/logging"
	"huddle/internal/ws"
)

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.IsDevelopment(), cfg.LogLevel)

	coord := chat.NewCoordinator(chat.Config{
		HistoryLimit:  cfg.HistoryLimit,
		TypingTimeout: cfg.TypingTimeout,
	}, logger)

	wsServer := ws.NewServer(coord, ws.Config{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowAnyOrigin: cfg.AllowsAnyOrigin(),
		SendBuffer:     cfg.SendBuffer,
		WriteTimeout:   cfg.WriteTimeout,
		PongTimeout:    cfg.PongTimeout,
		MaxFrameSize:   cfg.MaxFrameSize,
	}, logger)

	apiServer := http.NewAPIServer(coord, wsServer, http.APIConfig{
		Addr:           cfg.APIAddr,
		AllowedOrigins: cfg.AllowedOrigins,
	}, logger)

	var adminServer *http.AdminServer
	if cfg.AdminAddr != "" {
		adminServer = http.NewAdminServer(coord, cfg.AdminAddr, logger)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return coord.Run(gCtx)
	})

	if adminServer != nil {
		g.Go(adminServer.Start)
	}

	g.Go(apiServer.Start)

	// Wait for context cancellation (signal)
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if adminServer != nil {
			if err := adminServer.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("admin server shutdown error")
			}
		}
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("API server shutdown error")
		}
		return nil
	})

	return g.Wait()
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("application error")
	}
}
