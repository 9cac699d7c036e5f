package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/models"
)

// deviceRepository persists [models.DeviceSyncStatus] entries in the shared
// document store under deviceRegistry/{deviceId}.
type deviceRepository struct {
	docs   DocumentStore
	logger *logger.Logger
}

// NewDeviceRepository constructs a [DeviceRepository] backed by the given
// document store.
func NewDeviceRepository(docs DocumentStore, logger *logger.Logger) DeviceRepository {
	return &deviceRepository{
		docs:   docs,
		logger: logger,
	}
}

// Save implements [DeviceRepository].
func (d *deviceRepository) Save(ctx context.Context, status models.DeviceSyncStatus) error {
	log := logger.FromContext(ctx)

	fields, err := deviceToFields(status)
	if err != nil {
		return fmt.Errorf("encode device status: %w", err)
	}

	if err = d.docs.SetMerge(ctx, DevicesPrefix+status.DeviceID, fields); err != nil {
		log.Err(err).
			Str("func", "deviceRepository.Save").
			Str("device_id", status.DeviceID).
			Msg("failed to persist device status")
		return fmt.Errorf("persist device status: %w", err)
	}

	return nil
}

// Get implements [DeviceRepository].
func (d *deviceRepository) Get(ctx context.Context, deviceID string) (models.DeviceSyncStatus, error) {
	doc, err := d.docs.Get(ctx, DevicesPrefix+deviceID)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return models.DeviceSyncStatus{}, ErrDeviceNotFound
		}
		return models.DeviceSyncStatus{}, fmt.Errorf("get device status: %w", err)
	}

	return deviceFromFields(doc.Fields)
}

// List implements [DeviceRepository]. Sorted by device ID for stable output.
func (d *deviceRepository) List(ctx context.Context) ([]models.DeviceSyncStatus, error) {
	log := logger.FromContext(ctx)

	docs, err := d.docs.List(ctx, DevicesPrefix)
	if err != nil {
		return nil, fmt.Errorf("list device statuses: %w", err)
	}

	devices := make([]models.DeviceSyncStatus, 0, len(docs))
	for _, doc := range docs {
		status, decErr := deviceFromFields(doc.Fields)
		if decErr != nil {
			log.Warn().
				Str("func", "deviceRepository.List").
				Str("path", doc.Path).
				Msg("skipping undecodable device entry")
			continue
		}
		devices = append(devices, status)
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].DeviceID < devices[j].DeviceID })
	return devices, nil
}

func deviceToFields(status models.DeviceSyncStatus) (models.Snapshot, error) {
	raw, err := json.Marshal(status)
	if err != nil {
		return nil, err
	}

	var fields models.Snapshot
	if err = json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	return fields, nil
}

func deviceFromFields(fields models.Snapshot) (models.DeviceSyncStatus, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return models.DeviceSyncStatus{}, err
	}

	var status models.DeviceSyncStatus
	if err = json.Unmarshal(raw, &status); err != nil {
		return models.DeviceSyncStatus{}, fmt.Errorf("decode device status: %w", err)
	}

	return status, nil
}
