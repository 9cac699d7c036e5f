// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/internal/utils"
	"github.com/avoronov/kinsync/models"
)

func (h *Handler) syncStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	status, err := h.services.Orchestrator.Status(ctx)
	if err != nil {
		log.Err(err).Str("func", "*Handler.syncStatus").Msg("error reading engine status")
		http.Error(w, "error reading engine status", statusFromError(err))
		return
	}

	utils.WriteJSON(w, status, http.StatusOK)
}

func (h *Handler) drain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	result, err := h.services.Orchestrator.Drain(ctx)
	if err != nil {
		log.Err(err).Str("func", "*Handler.drain").Msg("drain stopped early")
		http.Error(w, "drain stopped early", statusFromError(err))
		return
	}

	utils.WriteJSON(w, result, http.StatusOK)
}

func (h *Handler) enqueueOperation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var op models.SyncOperation
	if err := json.NewDecoder(r.Body).Decode(&op); err != nil {
		log.Err(err).Str("func", "*Handler.enqueueOperation").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if op.Collection == "" || op.DocumentID == "" {
		http.Error(w, "collection and document_id are required", http.StatusBadRequest)
		return
	}
	if op.ID == "" {
		op.ID = h.uuid.Generate()
	}
	if op.Timestamp.IsZero() {
		op.Timestamp = time.Now()
	}
	if op.OpType == "" {
		op.OpType = models.OpUpdate
	}
	if op.Priority == "" {
		op.Priority = models.PriorityMedium
	}

	if err := h.services.Orchestrator.Enqueue(ctx, op); err != nil {
		log.Err(err).Str("func", "*Handler.enqueueOperation").Msg("error enqueueing operation")
		http.Error(w, "error enqueueing operation", statusFromError(err))
		return
	}

	utils.WriteJSON(w, op, http.StatusAccepted)
}
