// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/internal/mock"
	"github.com/avoronov/kinsync/internal/service"
	"github.com/avoronov/kinsync/internal/store"
	"github.com/avoronov/kinsync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type handlerFixture struct {
	server    *httptest.Server
	orch      *mock.MockSyncOrchestrator
	resolver  *mock.MockConflictResolver
	devices   *mock.MockDeviceService
	conflicts *mock.MockConflictRepository
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &handlerFixture{
		orch:      mock.NewMockSyncOrchestrator(ctrl),
		resolver:  mock.NewMockConflictResolver(ctrl),
		devices:   mock.NewMockDeviceService(ctrl),
		conflicts: mock.NewMockConflictRepository(ctrl),
	}

	services := &service.Services{
		Orchestrator: f.orch,
		Resolver:     f.resolver,
		Devices:      f.devices,
	}

	h := NewHandler(services, f.conflicts, logger.Nop())
	f.server = httptest.NewServer(h.Init())
	t.Cleanup(f.server.Close)

	return f
}

func (f *handlerFixture) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func TestSyncStatus(t *testing.T) {
	f := newHandlerFixture(t)

	f.orch.EXPECT().Status(gomock.Any()).Return(models.EngineStatus{
		IsOnline:          true,
		PendingOperations: 2,
		PendingConflicts:  1,
	}, nil)

	resp := f.do(t, http.MethodGet, "/api/sync/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status models.EngineStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.IsOnline)
	assert.Equal(t, 2, status.PendingOperations)
}

func TestDrain(t *testing.T) {
	f := newHandlerFixture(t)

	f.orch.EXPECT().Drain(gomock.Any()).Return(models.SyncResult{OperationsSynced: 3}, nil)

	resp := f.do(t, http.MethodPost, "/api/sync/drain", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result models.SyncResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 3, result.OperationsSynced)
}

func TestDrain_StoreDown(t *testing.T) {
	f := newHandlerFixture(t)

	f.orch.EXPECT().Drain(gomock.Any()).Return(models.SyncResult{}, store.ErrStoreUnavailable)

	resp := f.do(t, http.MethodPost, "/api/sync/drain", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestEnqueueOperation(t *testing.T) {
	f := newHandlerFixture(t)

	f.orch.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil)

	resp := f.do(t, http.MethodPost, "/api/operations", map[string]any{
		"collection":  "relationships",
		"document_id": "rel-1",
		"payload":     map[string]any{"notes": "updated"},
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var op models.SyncOperation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&op))
	assert.NotEmpty(t, op.ID)
	assert.Equal(t, models.OpUpdate, op.OpType)
	assert.Equal(t, models.PriorityMedium, op.Priority)
	assert.False(t, op.Timestamp.IsZero())
}

func TestEnqueueOperation_Validation(t *testing.T) {
	f := newHandlerFixture(t)

	resp := f.do(t, http.MethodPost, "/api/operations", map[string]any{
		"document_id": "rel-1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListConflicts(t *testing.T) {
	f := newHandlerFixture(t)

	f.conflicts.EXPECT().ListPending(gomock.Any()).Return([]models.ConflictRecord{
		{ID: "c-1", DocumentPath: "relationships/rel-1", Status: models.ConflictPending},
	}, nil)

	resp := f.do(t, http.MethodGet, "/api/conflicts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload conflictListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, 1, payload.Length)
	assert.Equal(t, "c-1", payload.Conflicts[0].ID)
}

func TestResolveConflict(t *testing.T) {
	f := newHandlerFixture(t)

	resolvedAt := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	f.resolver.EXPECT().
		Resolve(gomock.Any(), "c-1", models.ResolutionKeepLocal, gomock.Nil()).
		Return(models.ConflictRecord{
			ID:         "c-1",
			Status:     models.ConflictResolved,
			Resolution: models.ResolutionKeepLocal,
			ResolvedAt: &resolvedAt,
		}, nil)

	resp := f.do(t, http.MethodPost, "/api/conflicts/c-1/resolve", map[string]any{
		"resolution": "keep_local",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rec models.ConflictRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	assert.Equal(t, models.ConflictResolved, rec.Status)
}

func TestResolveConflict_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "unknown conflict", err: store.ErrConflictNotFound, wantStatus: http.StatusNotFound},
		{name: "already resolved", err: service.ErrConflictNotPending, wantStatus: http.StatusConflict},
		{name: "lost the race", err: service.ErrConflictRevisionMismatch, wantStatus: http.StatusConflict},
		{name: "bad strategy", err: service.ErrUnknownResolution, wantStatus: http.StatusBadRequest},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newHandlerFixture(t)

			f.resolver.EXPECT().
				Resolve(gomock.Any(), "c-1", gomock.Any(), gomock.Any()).
				Return(models.ConflictRecord{}, test.err)

			resp := f.do(t, http.MethodPost, "/api/conflicts/c-1/resolve", map[string]any{
				"resolution": "merge",
			})
			assert.Equal(t, test.wantStatus, resp.StatusCode)
		})
	}
}

func TestResolveConflict_MissingResolution(t *testing.T) {
	f := newHandlerFixture(t)

	resp := f.do(t, http.MethodPost, "/api/conflicts/c-1/resolve", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIgnoreConflict(t *testing.T) {
	f := newHandlerFixture(t)

	f.resolver.EXPECT().Ignore(gomock.Any(), "c-1").Return(nil)

	resp := f.do(t, http.MethodPost, "/api/conflicts/c-1/ignore", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestListDevices(t *testing.T) {
	f := newHandlerFixture(t)

	f.devices.EXPECT().List(gomock.Any()).Return([]models.DeviceSyncStatus{
		{DeviceID: "device-1", SyncStatus: models.DeviceSynced},
		{DeviceID: "device-2", SyncStatus: models.DevicePending},
	}, nil)

	resp := f.do(t, http.MethodGet, "/api/devices", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload deviceListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, 2, payload.Length)
}

func TestRegisterDevice(t *testing.T) {
	f := newHandlerFixture(t)

	f.devices.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil)

	resp := f.do(t, http.MethodPost, "/api/devices", map[string]any{
		"device_id":   "device-1",
		"device_name": "Anna's phone",
		"platform":    "ios",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRegisterDevice_MissingID(t *testing.T) {
	f := newHandlerFixture(t)

	resp := f.do(t, http.MethodPost, "/api/devices", map[string]any{
		"device_name": "Anna's phone",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTraceIDHeaderEchoed(t *testing.T) {
	f := newHandlerFixture(t)

	f.orch.EXPECT().Status(gomock.Any()).Return(models.EngineStatus{}, nil)

	req, err := http.NewRequest(http.MethodGet, f.server.URL+"/api/sync/status", nil)
	require.NoError(t, err)
	req.Header.Set("X-Trace-ID", "trace-123")

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "trace-123", resp.Header.Get("X-Trace-ID"))
}
