// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	router.Route("/api", func(r chi.Router) {
		r.Get("/sync/status", h.syncStatus)
		r.Post("/sync/drain", h.drain)
		r.Post("/operations", h.enqueueOperation)

		r.Get("/conflicts", h.listConflicts)
		r.Post("/conflicts/{conflictID}/resolve", h.resolveConflict)
		r.Post("/conflicts/{conflictID}/ignore", h.ignoreConflict)

		r.Get("/devices", h.listDevices)
		r.Post("/devices", h.registerDevice)
	})

	return router
}
