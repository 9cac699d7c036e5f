// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package http

import (
	"encoding/json"
	"net/http"

	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/internal/utils"
	"github.com/avoronov/kinsync/models"
)

type deviceListResponse struct {
	Devices []models.DeviceSyncStatus `json:"devices"`
	Length  int                       `json:"length"`
}

func (h *Handler) listDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	devices, err := h.services.Devices.List(ctx)
	if err != nil {
		log.Err(err).Str("func", "*Handler.listDevices").Msg("error listing devices")
		http.Error(w, "error listing devices", statusFromError(err))
		return
	}

	utils.WriteJSON(w, deviceListResponse{Devices: devices, Length: len(devices)}, http.StatusOK)
}

func (h *Handler) registerDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var device models.DeviceSyncStatus
	if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
		log.Err(err).Str("func", "*Handler.registerDevice").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	if device.DeviceID == "" {
		http.Error(w, "device_id is required", http.StatusBadRequest)
		return
	}

	if err := h.services.Devices.Register(ctx, device); err != nil {
		log.Err(err).
			Str("func", "*Handler.registerDevice").
			Str("device_id", device.DeviceID).
			Msg("error registering device")
		http.Error(w, "error registering device", statusFromError(err))
		return
	}

	utils.WriteJSON(w, device, http.StatusCreated)
}
