package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemStore is an in-process Client with the same semantics as
// FileStore: full replacement snapshots, no ordering guarantee between
// a write and its snapshot. Used for --ephemeral runs and for tests,
// which can assert on its write counter.
type MemStore struct {
	mu          sync.Mutex
	collections map[string]map[string]json.RawMessage
	subscribers map[int]*memSubscription
	nextSub     int
	writes      int
	failWrites  error
}

type memSubscription struct {
	collection string
	onSnapshot func([]Document)
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		collections: make(map[string]map[string]json.RawMessage),
		subscribers: make(map[int]*memSubscription),
	}
}

// WriteCount returns how many mutations have been applied.
func (s *MemStore) WriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// FailWrites makes every subsequent mutation return err. Pass nil to
// restore normal operation. Intended for tests.
func (s *MemStore) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = err
}

func (s *MemStore) collection(name string) map[string]json.RawMessage {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]json.RawMessage)
		s.collections[name] = c
	}
	return c
}

// Get decodes the document with the given ID into v.
func (s *MemStore) Get(ctx context.Context, collection, id string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	body, ok := s.collection(collection)[id]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return json.Unmarshal(body, v)
}

// Create stores v as a new document under a fresh UUID.
func (s *MemStore) Create(ctx context.Context, collection string, v any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	body, err := encodeBody(v, id)
	if err != nil {
		return "", err
	}
	if err := s.apply(collection, func(c map[string]json.RawMessage) error {
		c[id] = body
		return nil
	}); err != nil {
		return "", err
	}
	return id, nil
}

// Set stores v as the full body for the given ID.
func (s *MemStore) Set(ctx context.Context, collection, id string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := encodeBody(v, id)
	if err != nil {
		return err
	}
	return s.apply(collection, func(c map[string]json.RawMessage) error {
		c[id] = body
		return nil
	})
}

// Update merges fields into an existing document.
func (s *MemStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.apply(collection, func(c map[string]json.RawMessage) error {
		existing, ok := c[id]
		if !ok {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
		}
		merged, err := mergeBody(existing, fields)
		if err != nil {
			return err
		}
		c[id] = merged
		return nil
	})
}

// Delete removes the document.
func (s *MemStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.apply(collection, func(c map[string]json.RawMessage) error {
		delete(c, id)
		return nil
	})
}

// apply runs a mutation and notifies subscribers of the collection
// with a fresh snapshot. The snapshot is dispatched outside the lock.
func (s *MemStore) apply(collection string, fn func(map[string]json.RawMessage) error) error {
	s.mu.Lock()
	if s.failWrites != nil {
		err := s.failWrites
		s.mu.Unlock()
		return err
	}
	if err := fn(s.collection(collection)); err != nil {
		s.mu.Unlock()
		return err
	}
	s.writes++
	snapshot := s.snapshotLocked(collection)
	var notify []*memSubscription
	for _, sub := range s.subscribers {
		if sub.collection == collection {
			notify = append(notify, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range notify {
		sub.onSnapshot(snapshot)
	}
	return nil
}

func (s *MemStore) snapshotLocked(collection string) []Document {
	cf := &collectionFile{Documents: s.collection(collection)}
	return snapshotOf(cf)
}

// Subscribe registers a snapshot callback. The initial snapshot is
// delivered synchronously before Subscribe returns.
func (s *MemStore) Subscribe(collection string, onSnapshot func([]Document), onError func(error)) (CancelFunc, error) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = &memSubscription{collection: collection, onSnapshot: onSnapshot}
	snapshot := s.snapshotLocked(collection)
	s.mu.Unlock()

	onSnapshot(snapshot)

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}, nil
}
