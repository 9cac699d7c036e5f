package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/avoronov/kinsync/models"
)

// memoryDocumentStore is an in-memory [DocumentStore]. It backs tests and
// offline operation; the production deployment points the engine at the
// remote store via the HTTP adapter instead.
//
// SetMerge is atomic per document under the store mutex, matching the
// single-document atomicity contract of the interface.
type memoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[string]Document
	subs map[int]*memorySubscription
	next int

	now func() time.Time
}

type memorySubscription struct {
	prefix string
	ch     chan DocumentChange
}

// NewMemoryDocumentStore returns an empty in-memory document store.
func NewMemoryDocumentStore() *memoryDocumentStore {
	return &memoryDocumentStore{
		docs: make(map[string]Document),
		subs: make(map[int]*memorySubscription),
		now:  time.Now,
	}
}

// SetClock replaces the store's time source. Tests use it to position
// document update times inside or outside the conflict window.
func (m *memoryDocumentStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Get implements [DocumentStore].
func (m *memoryDocumentStore) Get(_ context.Context, path string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[path]
	if !ok {
		return Document{}, ErrDocumentNotFound
	}

	doc.Fields = doc.Fields.Clone()
	return doc, nil
}

// SetMerge implements [DocumentStore]. Fields are merged into the existing
// document; absent keys survive, present keys are overwritten. Never a
// whole-document replace.
func (m *memoryDocumentStore) SetMerge(_ context.Context, path string, fields models.Snapshot) error {
	m.mu.Lock()

	before := m.docs[path].Fields.Clone()

	doc, ok := m.docs[path]
	if !ok {
		doc = Document{Path: path, Fields: models.Snapshot{}}
	} else {
		doc.Fields = doc.Fields.Clone()
	}
	for k, v := range fields {
		doc.Fields[k] = v
	}
	doc.UpdatedAt = m.now()
	m.docs[path] = doc

	change := DocumentChange{
		Path:      path,
		Before:    before,
		After:     doc.Fields.Clone(),
		Timestamp: doc.UpdatedAt,
	}
	m.mu.Unlock()

	m.notify(change)
	return nil
}

// Delete implements [DocumentStore]. Deleting an absent path is a no-op.
func (m *memoryDocumentStore) Delete(_ context.Context, path string) error {
	m.mu.Lock()

	doc, ok := m.docs[path]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	delete(m.docs, path)

	change := DocumentChange{
		Path:      path,
		Before:    doc.Fields.Clone(),
		After:     nil,
		Timestamp: m.now(),
	}
	m.mu.Unlock()

	m.notify(change)
	return nil
}

// List implements [DocumentStore]. Results are sorted by path so listings
// are deterministic.
func (m *memoryDocumentStore) List(_ context.Context, prefix string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Document, 0, 8)
	for path, doc := range m.docs {
		if strings.HasPrefix(path, prefix) {
			doc.Fields = doc.Fields.Clone()
			out = append(out, doc)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// OnChange implements [DocumentStore]. The subscription is removed when ctx
// is cancelled. Slow consumers lose notifications rather than blocking
// writers; change streams are advisory, not a durability mechanism.
func (m *memoryDocumentStore) OnChange(ctx context.Context, prefix string) (<-chan DocumentChange, error) {
	sub := &memorySubscription{
		prefix: prefix,
		ch:     make(chan DocumentChange, 32),
	}

	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = sub
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
		close(sub.ch)
	}()

	return sub.ch, nil
}

func (m *memoryDocumentStore) notify(change DocumentChange) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subs {
		if !strings.HasPrefix(change.Path, sub.prefix) {
			continue
		}
		select {
		case sub.ch <- change:
		default:
		}
	}
}
