// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Voronov

package workers

import "context"

// Worker is a background job with a start/stop lifecycle. Start must not
// block; Stop blocks until the job's goroutine has exited.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}

// ConnectivityProbe reports whether the shared document store is reachable.
type ConnectivityProbe interface {
	Ping(ctx context.Context) error
}
