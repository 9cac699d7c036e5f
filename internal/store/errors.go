package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrDocumentNotFound is returned when a Get targets a path that does
	// not exist in the document store.
	ErrDocumentNotFound = errors.New("document was not found")

	// ErrStoreUnavailable is returned (or wrapped) when the document store
	// cannot be reached. It marks a transient condition: queued operations
	// stay queued and are retried on the next drain.
	ErrStoreUnavailable = errors.New("document store unavailable")

	// ErrOperationNotFound is returned when a queue read or delete targets
	// an operation that is not in the queue.
	ErrOperationNotFound = errors.New("sync operation was not found")

	// ErrConflictNotFound is returned when a conflict lookup by ID
	// produces no record.
	ErrConflictNotFound = errors.New("conflict record was not found")

	// ErrConflictStillPending is returned when a delete targets a conflict
	// record that has not been resolved. Pending records are never
	// deleted regardless of age.
	ErrConflictStillPending = errors.New("conflict record is still pending")

	// ErrDeviceNotFound is returned when a registry lookup targets an
	// unknown device.
	ErrDeviceNotFound = errors.New("device was not found")
)

// Low-level database operation errors. These are returned (or wrapped) by
// the queue repository when a SQL-level operation fails before any domain
// logic can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the queue database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) against the queue database fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan sync operation row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan sync operation rows")
)
