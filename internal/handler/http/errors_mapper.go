// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package http

import (
	"errors"
	"net/http"

	"github.com/avoronov/kinsync/internal/adapter"
	"github.com/avoronov/kinsync/internal/service"
	"github.com/avoronov/kinsync/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrConflictNotPending:       http.StatusConflict,
	service.ErrConflictRevisionMismatch: http.StatusConflict,
	service.ErrUnknownResolution:        http.StatusBadRequest,
	service.ErrManualResultRequired:     http.StatusBadRequest,
	service.ErrRetryExhausted:           http.StatusBadGateway,

	store.ErrConflictNotFound:     http.StatusNotFound,
	store.ErrConflictStillPending: http.StatusConflict,
	store.ErrDeviceNotFound:       http.StatusNotFound,
	store.ErrOperationNotFound:    http.StatusNotFound,
	store.ErrDocumentNotFound:     http.StatusNotFound,
	store.ErrStoreUnavailable:     http.StatusBadGateway,

	adapter.ErrUnauthorized: http.StatusBadGateway,
	adapter.ErrTokenExpired: http.StatusBadGateway,

	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingQuery:     http.StatusInternalServerError,
	store.ErrExecutingStatement: http.StatusInternalServerError,
	store.ErrScanningRow:        http.StatusInternalServerError,
	store.ErrScanningRows:       http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
