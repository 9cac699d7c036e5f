// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/avoronov/kinsync/internal/config"
	"github.com/avoronov/kinsync/internal/logger"
)

type server struct {
	httpServer *http.Server

	// onShutdown runs after the HTTP listener has drained, before the
	// process exits. The engine hooks worker teardown here.
	onShutdown func()

	logger *logger.Logger
}

// NewServer wraps the given router in an HTTP server bound to
// cfg.HTTPAddress. The onShutdown hook may be nil.
func NewServer(router http.Handler, cfg config.Server, onShutdown func(), logger *logger.Logger) (Server, error) {
	if cfg.HTTPAddress == "" {
		return nil, errNoListenAddress
	}

	logger.Info().
		Str("address", cfg.HTTPAddress).
		Msg("creating new server...")

	return &server{
		httpServer: &http.Server{
			Addr:    cfg.HTTPAddress,
			Handler: router,
		},
		onShutdown: onShutdown,
		logger:     logger,
	}, nil
}

func (s *server) RunServer() {
	if err := s.run(); err != nil {
		s.logger.Info().Msgf("Error running server: %v \n", err)
	}
}

func (s *server) Shutdown() {
	if err := s.httpServer.Shutdown(context.Background()); err != nil {
		s.logger.Err(err).Msg("HTTP server shutdown")
	}

	if s.onShutdown != nil {
		s.onShutdown()
	}
}

func (s *server) run() error {
	idleConnectionsClosed := make(chan struct{})
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	// listen for stop signals
	go func() {
		<-ctx.Done()
		s.Shutdown()
		close(idleConnectionsClosed)
	}()

	s.logger.Info().Msg("Launching HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-idleConnectionsClosed
	s.logger.Info().Msg("server Shutdown gracefully")

	return nil
}
