package store

import (
	"context"
	"testing"
	"time"

	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceRepository_SaveGetList(t *testing.T) {
	docs := NewMemoryDocumentStore()
	repo := NewDeviceRepository(docs, logger.Nop())
	ctx := context.Background()

	phone := models.DeviceSyncStatus{
		DeviceID:   "device-1",
		DeviceName: "Phone",
		Platform:   "ios",
		LastSyncAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		SyncStatus: models.DeviceSynced,
	}
	tablet := models.DeviceSyncStatus{
		DeviceID:   "device-2",
		DeviceName: "Tablet",
		Platform:   "android",
		SyncStatus: models.DevicePending,
	}

	require.NoError(t, repo.Save(ctx, phone))
	require.NoError(t, repo.Save(ctx, tablet))

	got, err := repo.Get(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, models.DeviceSynced, got.SyncStatus)
	assert.Equal(t, "Phone", got.DeviceName)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "device-1", all[0].DeviceID)
	assert.Equal(t, "device-2", all[1].DeviceID)
}

func TestDeviceRepository_Get_NotFound(t *testing.T) {
	repo := NewDeviceRepository(NewMemoryDocumentStore(), logger.Nop())

	_, err := repo.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestDeviceRepository_Get_WrappedNotFound(t *testing.T) {
	repo := NewDeviceRepository(wrappingStore{NewMemoryDocumentStore()}, logger.Nop())

	_, err := repo.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestDeviceRepository_Save_UpdatesStatus(t *testing.T) {
	repo := NewDeviceRepository(NewMemoryDocumentStore(), logger.Nop())
	ctx := context.Background()

	dev := models.DeviceSyncStatus{DeviceID: "device-1", SyncStatus: models.DevicePending}
	require.NoError(t, repo.Save(ctx, dev))

	dev.SyncStatus = models.DeviceConflict
	require.NoError(t, repo.Save(ctx, dev))

	got, err := repo.Get(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, models.DeviceConflict, got.SyncStatus)
}
