package store

import (
	"context"
	"fmt"

	"github.com/avoronov/kinsync/internal/config"
	"github.com/avoronov/kinsync/internal/logger"
)

// Storages groups all storage repositories into a single value that can be
// passed around the service layer.
type Storages struct {
	// Queue is the SQLite-backed durable operation queue for this device.
	Queue QueueRepository

	// Conflicts persists conflict records in the shared document store.
	Conflicts ConflictRepository

	// Devices persists the device registry in the shared document store.
	Devices DeviceRepository
}

// NewStorages initialises the storage layer using the supplied document
// store handle, configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the queue database at cfg.DB.DSN,
//     creating the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Constructs repositories for the queue, conflict store and device
//     registry.
//
// Returns an error if the database connection cannot be established or if
// migration fails.
func NewStorages(ctx context.Context, docs DocumentStore, cfg config.Storage, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		Queue:     NewQueueRepository(db, logger),
		Conflicts: NewConflictRepository(docs, logger),
		Devices:   NewDeviceRepository(docs, logger),
	}, nil
}
