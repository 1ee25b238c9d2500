package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// currentFileVersion is the schema version for collection files.
const currentFileVersion = 1

// defaultPollInterval is how often subscriptions check a collection
// file for changes.
const defaultPollInterval = 300 * time.Millisecond

// FileStore is a Client backed by one JSON file per collection under a
// shared root directory. Writes take a cross-process file lock, so
// several crewdeck processes can share one store; subscriptions poll
// the file and emit a full replacement snapshot whenever it changes.
type FileStore struct {
	root         string
	pollInterval time.Duration

	mu      sync.Mutex
	cancels map[int]chan struct{}
	nextSub int
	closed  bool
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		root:         dir,
		pollInterval: defaultPollInterval,
		cancels:      make(map[int]chan struct{}),
	}
}

// SetPollInterval overrides the subscription poll interval. Intended
// for tests.
func (s *FileStore) SetPollInterval(interval time.Duration) {
	s.pollInterval = interval
}

// Close cancels all subscriptions. Subsequent calls are no-ops.
func (s *FileStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, done := range s.cancels {
		close(done)
	}
	s.cancels = make(map[int]chan struct{})
}

// collectionFilePath maps a collection path to its backing file.
func (s *FileStore) collectionFilePath(collection string) string {
	return filepath.Join(s.root, filepath.FromSlash(collection)+".json")
}

// collectionFile is the on-disk layout of one collection.
type collectionFile struct {
	// Version is the schema version.
	Version int `json:"version"`

	// Documents maps document ID to the raw JSON body.
	Documents map[string]json.RawMessage `json:"documents"`
}

// readCollection loads a collection file under a shared lock. A
// missing file is an empty collection, not an error.
func (s *FileStore) readCollection(collection string) (*collectionFile, error) {
	path := s.collectionFilePath(collection)

	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("locking %s: %w", collection, err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path) //nolint:gosec // G304: path from configured store root
	if err != nil {
		if os.IsNotExist(err) {
			return &collectionFile{
				Version:   currentFileVersion,
				Documents: map[string]json.RawMessage{},
			}, nil
		}
		return nil, fmt.Errorf("reading collection %s: %w", collection, err)
	}

	var cf collectionFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing collection %s: %w", collection, err)
	}
	if cf.Documents == nil {
		cf.Documents = map[string]json.RawMessage{}
	}
	return &cf, nil
}

// mutateCollection applies fn to a collection under an exclusive lock
// and writes the result back atomically (temp file + rename).
func (s *FileStore) mutateCollection(collection string, fn func(*collectionFile) error) error {
	path := s.collectionFilePath(collection)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating collection directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", collection, err)
	}
	defer lock.Unlock()

	cf := &collectionFile{
		Version:   currentFileVersion,
		Documents: map[string]json.RawMessage{},
	}
	if data, err := os.ReadFile(path); err == nil { //nolint:gosec // G304: configured store root
		if err := json.Unmarshal(data, cf); err != nil {
			return fmt.Errorf("parsing collection %s: %w", collection, err)
		}
		if cf.Documents == nil {
			cf.Documents = map[string]json.RawMessage{}
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("reading collection %s: %w", collection, err)
	}

	if err := fn(cf); err != nil {
		return err
	}

	out, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding collection %s: %w", collection, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0644); err != nil { //nolint:gosec // G306: roster data is not secret
		return fmt.Errorf("writing collection %s: %w", collection, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing collection %s: %w", collection, err)
	}
	return nil
}

// Get decodes the document with the given ID into v.
func (s *FileStore) Get(ctx context.Context, collection, id string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cf, err := s.readCollection(collection)
	if err != nil {
		return err
	}
	body, ok := cf.Documents[id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return json.Unmarshal(body, v)
}

// Create stores v as a new document under a fresh UUID.
func (s *FileStore) Create(ctx context.Context, collection string, v any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	body, err := encodeBody(v, id)
	if err != nil {
		return "", err
	}
	err = s.mutateCollection(collection, func(cf *collectionFile) error {
		cf.Documents[id] = body
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Set stores v as the full body for the given ID, creating it if absent.
func (s *FileStore) Set(ctx context.Context, collection, id string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := encodeBody(v, id)
	if err != nil {
		return err
	}
	return s.mutateCollection(collection, func(cf *collectionFile) error {
		cf.Documents[id] = body
		return nil
	})
}

// Update merges fields into an existing document.
func (s *FileStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.mutateCollection(collection, func(cf *collectionFile) error {
		existing, ok := cf.Documents[id]
		if !ok {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
		}
		merged, err := mergeBody(existing, fields)
		if err != nil {
			return err
		}
		cf.Documents[id] = merged
		return nil
	})
}

// Delete removes the document. Absent documents are a no-op.
func (s *FileStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.mutateCollection(collection, func(cf *collectionFile) error {
		delete(cf.Documents, id)
		return nil
	})
}

// Subscribe starts a polling watcher on the collection file. The first
// snapshot is delivered before Subscribe returns a cancel handle's
// first tick; every file change after that emits a full replacement
// snapshot. A read failure is delivered to onError once and ends the
// subscription (the caller surfaces it; there is no auto-retry).
func (s *FileStore) Subscribe(collection string, onSnapshot func([]Document), onError func(error)) (CancelFunc, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	id := s.nextSub
	s.nextSub++
	done := make(chan struct{})
	s.cancels[id] = done
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if ch, ok := s.cancels[id]; ok {
			close(ch)
			delete(s.cancels, id)
		}
	}

	// Fingerprint before reading. A write landing between the two is
	// then re-delivered by the first poll instead of silently missed.
	lastFingerprint := s.fingerprint(collection)
	cf, err := s.readCollection(collection)
	if err != nil {
		cancel()
		return nil, err
	}
	onSnapshot(snapshotOf(cf))

	go func() {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
			}

			current := s.fingerprint(collection)
			if current == lastFingerprint {
				continue
			}
			lastFingerprint = current

			cf, err := s.readCollection(collection)
			if err != nil {
				select {
				case <-done:
				default:
					onError(err)
				}
				return
			}
			select {
			case <-done:
				return
			default:
				onSnapshot(snapshotOf(cf))
			}
		}
	}()

	return cancel, nil
}

// fingerprint summarizes the collection file's current state for
// change detection. Missing files fingerprint to the empty string.
func (s *FileStore) fingerprint(collection string) string {
	info, err := os.Stat(s.collectionFilePath(collection))
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d-%d", info.ModTime().UnixNano(), info.Size())
}

// snapshotOf flattens a collection file into a deterministic snapshot,
// ordered by document ID.
func snapshotOf(cf *collectionFile) []Document {
	ids := make([]string, 0, len(cf.Documents))
	for id := range cf.Documents {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, Document{ID: id, Data: cf.Documents[id]})
	}
	return docs
}
