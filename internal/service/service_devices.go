// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/internal/store"
	"github.com/avoronov/kinsync/models"
)

type deviceService struct {
	devices   store.DeviceRepository
	conflicts store.ConflictRepository
	queue     store.QueueRepository

	now func() time.Time

	logger *logger.Logger
}

// NewDeviceService constructs a [DeviceService] over the device registry.
func NewDeviceService(devices store.DeviceRepository, conflicts store.ConflictRepository, queue store.QueueRepository, logger *logger.Logger) DeviceService {
	return &deviceService{
		devices:   devices,
		conflicts: conflicts,
		queue:     queue,
		now:       time.Now,
		logger:    logger,
	}
}

// Register implements [DeviceService].
func (d *deviceService) Register(ctx context.Context, device models.DeviceSyncStatus) error {
	if device.SyncStatus == "" {
		device.SyncStatus = models.DevicePending
	}

	if err := d.devices.Save(ctx, device); err != nil {
		return fmt.Errorf("register device: %w", err)
	}

	return nil
}

// UpdateStatus implements [DeviceService].
func (d *deviceService) UpdateStatus(ctx context.Context, deviceID string, status models.SyncState) error {
	device, err := d.devices.Get(ctx, deviceID)
	if err != nil {
		if !errors.Is(err, store.ErrDeviceNotFound) {
			return err
		}
		device = models.DeviceSyncStatus{DeviceID: deviceID}
	}

	device.SyncStatus = status
	if status == models.DeviceSynced {
		device.LastSyncAt = d.now()
	}

	return d.devices.Save(ctx, device)
}

// RecomputeStatus implements [DeviceService]. The derivation order matters:
// conflict beats pending beats synced, and offline overrides everything.
func (d *deviceService) RecomputeStatus(ctx context.Context, deviceID string, online bool) (models.SyncState, error) {
	status, err := d.derive(ctx, deviceID, online)
	if err != nil {
		return "", err
	}

	if err = d.UpdateStatus(ctx, deviceID, status); err != nil {
		return "", err
	}

	return status, nil
}

func (d *deviceService) derive(ctx context.Context, deviceID string, online bool) (models.SyncState, error) {
	if !online {
		return models.DeviceOffline, nil
	}

	pending, err := d.conflicts.ListPending(ctx)
	if err != nil {
		return "", fmt.Errorf("derive device status: %w", err)
	}
	for _, rec := range pending {
		if rec.OriginDeviceID == deviceID {
			return models.DeviceConflict, nil
		}
	}

	depth, err := d.queue.Len(ctx, deviceID)
	if err != nil {
		return "", fmt.Errorf("derive device status: %w", err)
	}
	if depth > 0 {
		return models.DevicePending, nil
	}

	return models.DeviceSynced, nil
}

// List implements [DeviceService].
func (d *deviceService) List(ctx context.Context) ([]models.DeviceSyncStatus, error) {
	return d.devices.List(ctx)
}
