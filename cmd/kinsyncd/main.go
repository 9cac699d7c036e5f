// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package main

import (
	"context"
	"fmt"

	"github.com/avoronov/kinsync/internal/adapter"
	"github.com/avoronov/kinsync/internal/config"
	handlerhttp "github.com/avoronov/kinsync/internal/handler/http"
	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/internal/server"
	"github.com/avoronov/kinsync/internal/service"
	"github.com/avoronov/kinsync/internal/store"
	"github.com/avoronov/kinsync/internal/workers"
	"github.com/avoronov/kinsync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("kinsyncd")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()

	docs, err := adapter.NewHTTPDocStoreAdapter(cfg.Storage.DocStore, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to document store")
	}

	storages, err := store.NewStorages(ctx, docs, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}

	services := service.NewServices(cfg, storages, docs, log)

	if err = services.Devices.Register(ctx, models.DeviceSyncStatus{
		DeviceID:   cfg.Device.ID,
		DeviceName: cfg.Device.Name,
		Platform:   cfg.Device.Platform,
	}); err != nil {
		// The registry entry is refreshed on the first successful sync;
		// an unreachable store at startup is not fatal.
		log.Warn().Err(err).Msg("could not register device, will retry via sync")
	}

	jobs := workers.NewWorkers(cfg, docs, services, storages, log)
	jobs.StartAll(ctx)

	handlers := handlerhttp.NewHandler(services, storages.Conflicts, log)

	srv, err := server.NewServer(handlers.Init(), cfg.Server, jobs.StopAll, log)
	if err != nil {
		jobs.StopAll()
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
