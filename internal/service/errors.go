// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package service

import "errors"

// ErrConflictNotPending is returned when a resolution is requested for a
// record that already left the pending state.
var ErrConflictNotPending = errors.New("conflict is not pending")

// ErrConflictRevisionMismatch is returned when the record changed between
// load and resolution, meaning another resolver got there first.
var ErrConflictRevisionMismatch = errors.New("conflict record was modified concurrently")

// ErrUnknownResolution is returned for a resolution value outside the
// supported set.
var ErrUnknownResolution = errors.New("unknown resolution strategy")

// ErrManualResultRequired is returned when manual_resolve is requested
// without a caller supplied result.
var ErrManualResultRequired = errors.New("manual resolution requires a merged result")

// ErrRetryExhausted marks an operation that failed transiently more times
// than the configured attempt budget allows.
var ErrRetryExhausted = errors.New("operation retry budget exhausted")
