package adapter

import (
	"context"

	"github.com/avoronov/kinsync/internal/store"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mocks.go -package=mock

// DocumentStoreAdapter is the remote document store client. It satisfies
// [store.DocumentStore] and additionally exposes a connectivity probe used
// by the drain job to detect offline/online transitions.
type DocumentStoreAdapter interface {
	store.DocumentStore

	// Ping reports whether the document store is reachable. A nil error
	// means online.
	Ping(ctx context.Context) error
}
