// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package http

import (
	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/internal/service"
	"github.com/avoronov/kinsync/internal/store"
	"github.com/avoronov/kinsync/internal/utils"
)

// Handler serves the engine's local HTTP API: sync status, manual drain,
// conflict listing and resolution, and the device registry.
type Handler struct {
	services  *service.Services
	conflicts store.ConflictRepository
	uuid      *utils.UUIDGenerator

	logger *logger.Logger
}

func NewHandler(services *service.Services, conflicts store.ConflictRepository, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:  services,
		conflicts: conflicts,
		uuid:      utils.NewUUIDGenerator(),
		logger:    logger,
	}
}
