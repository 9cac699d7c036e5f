// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package http

import (
	"encoding/json"
	"net/http"

	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/internal/utils"
	"github.com/avoronov/kinsync/models"
	"github.com/go-chi/chi/v5"
)

type conflictListResponse struct {
	Conflicts []models.ConflictRecord `json:"conflicts"`
	Length    int                     `json:"length"`
}

type resolveRequest struct {
	Resolution   models.Resolution `json:"resolution"`
	MergedResult models.Snapshot   `json:"merged_result,omitempty"`
}

func (h *Handler) listConflicts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	pending, err := h.conflicts.ListPending(ctx)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listConflicts").Msg("error listing pending conflicts")
		http.Error(w, "error listing pending conflicts", statusFromError(err))
		return
	}

	utils.WriteJSON(w, conflictListResponse{Conflicts: pending, Length: len(pending)}, http.StatusOK)
}

func (h *Handler) resolveConflict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	conflictID := chi.URLParam(r, "conflictID")

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.resolveConflict").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	if req.Resolution == "" {
		http.Error(w, "resolution is required", http.StatusBadRequest)
		return
	}

	rec, err := h.services.Resolver.Resolve(ctx, conflictID, req.Resolution, req.MergedResult)
	if err != nil {
		log.Err(err).
			Str("func", "*Handler.resolveConflict").
			Str("conflict_id", conflictID).
			Msg("error resolving conflict")
		http.Error(w, "error resolving conflict", statusFromError(err))
		return
	}

	utils.WriteJSON(w, rec, http.StatusOK)
}

func (h *Handler) ignoreConflict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	conflictID := chi.URLParam(r, "conflictID")

	if err := h.services.Resolver.Ignore(ctx, conflictID); err != nil {
		log.Err(err).
			Str("func", "*Handler.ignoreConflict").
			Str("conflict_id", conflictID).
			Msg("error ignoring conflict")
		http.Error(w, "error ignoring conflict", statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
