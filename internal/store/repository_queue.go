package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avoronov/kinsync/internal/logger"
	"github.com/avoronov/kinsync/models"
)

// queueRepository is the SQLite-backed implementation of [QueueRepository].
// One row per pending operation; the autoincrement seq column fixes the
// drain order, so FIFO survives process restarts.
//
// Every public method obtains a context-scoped logger via
// [logger.FromContext] so that all database interactions are traced with
// structured fields (device_id, op_id, etc.).
type queueRepository struct {
	*DB
	logger *logger.Logger
}

// NewQueueRepository constructs a [QueueRepository] backed by the provided
// queue database and logger.
func NewQueueRepository(db *DB, logger *logger.Logger) QueueRepository {
	return &queueRepository{
		DB:     db,
		logger: logger,
	}
}

// Enqueue implements [QueueRepository]. The payload is stored as JSON; the
// row is durable before Enqueue returns, so a crash between enqueue and
// drain loses nothing.
func (q *queueRepository) Enqueue(ctx context.Context, op models.SyncOperation) error {
	log := logger.FromContext(ctx)

	payload, err := json.Marshal(op.Payload)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Enqueue").
			Str("op_id", op.ID).
			Msg("failed to encode operation payload")
		return fmt.Errorf("encode operation payload: %w", err)
	}

	query, args, err := buildEnqueueQuery(
		op.ID, op.OriginDeviceID, op.Collection, op.DocumentID,
		string(op.OpType), string(op.Priority), string(payload), op.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = q.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "queueRepository.Enqueue").
			Str("op_id", op.ID).
			Str("device_id", op.OriginDeviceID).
			Msg("failed to insert sync operation")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// List implements [QueueRepository]. Rows whose payload fails to decode are
// dropped from the queue with a warning instead of blocking the drain; this
// is the documented data-loss-risk path for queue corruption.
func (q *queueRepository) List(ctx context.Context, deviceID string) ([]models.SyncOperation, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListQuery(deviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := q.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.List").
			Str("device_id", deviceID).
			Msg("failed to execute query for listing queued operations")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	ops := make([]models.SyncOperation, 0, 16)
	var corrupt []string

	for rows.Next() {
		op, scanErr := scanOperation(rows)
		if scanErr != nil {
			if errors.Is(scanErr, errCorruptPayload) {
				log.Warn().
					Str("func", "queueRepository.List").
					Str("op_id", op.ID).
					Msg("corrupt queued payload dropped; reconcile against server state")
				corrupt = append(corrupt, op.ID)
				continue
			}
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		ops = append(ops, op)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "queueRepository.List").
			Str("device_id", deviceID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	for _, id := range corrupt {
		if removeErr := q.Remove(ctx, id); removeErr != nil {
			log.Err(removeErr).
				Str("func", "queueRepository.List").
				Str("op_id", id).
				Msg("failed to drop corrupt queued operation")
		}
	}

	return ops, nil
}

// Peek implements [QueueRepository].
func (q *queueRepository) Peek(ctx context.Context, deviceID string) (models.SyncOperation, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildPeekQuery(deviceID)
	if err != nil {
		return models.SyncOperation{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	row := q.DB.QueryRowContext(ctx, query, args...)
	op, err := scanOperation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SyncOperation{}, ErrOperationNotFound
		}
		log.Err(err).
			Str("func", "queueRepository.Peek").
			Str("device_id", deviceID).
			Msg("failed to scan queue head")
		return models.SyncOperation{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return op, nil
}

// Remove implements [QueueRepository].
func (q *queueRepository) Remove(ctx context.Context, opID string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildRemoveQuery(opID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := q.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "queueRepository.Remove").
			Str("op_id", opID).
			Msg("failed to delete sync operation")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if affected, raErr := res.RowsAffected(); raErr == nil && affected == 0 {
		return ErrOperationNotFound
	}

	return nil
}

// IncrementAttempts implements [QueueRepository].
func (q *queueRepository) IncrementAttempts(ctx context.Context, opID string) (int, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildIncrementAttemptsQuery(opID)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var attempts int
	if err = q.DB.QueryRowContext(ctx, query, args...).Scan(&attempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrOperationNotFound
		}
		log.Err(err).
			Str("func", "queueRepository.IncrementAttempts").
			Str("op_id", opID).
			Msg("failed to bump attempt counter")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return attempts, nil
}

// Len implements [QueueRepository].
func (q *queueRepository) Len(ctx context.Context, deviceID string) (int, error) {
	query, args, err := buildLenQuery(deviceID)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var n int
	if err = q.DB.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return n, nil
}

// errCorruptPayload marks a row whose JSON payload no longer decodes.
var errCorruptPayload = errors.New("corrupt queued payload")

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOperation(row rowScanner) (models.SyncOperation, error) {
	var op models.SyncOperation
	var opType, priority, payload string
	var ts time.Time

	if err := row.Scan(
		&op.ID,
		&op.OriginDeviceID,
		&op.Collection,
		&op.DocumentID,
		&opType,
		&priority,
		&payload,
		&ts,
		&op.Attempts,
	); err != nil {
		return op, err
	}

	op.OpType = models.OpType(opType)
	op.Priority = models.Priority(priority)
	op.Timestamp = ts

	if err := json.Unmarshal([]byte(payload), &op.Payload); err != nil {
		return op, fmt.Errorf("%w: %w", errCorruptPayload, err)
	}

	return op, nil
}
