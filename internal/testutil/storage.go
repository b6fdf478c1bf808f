package testutil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dalemusser/waffle/pantry/storage"
)

// ErrStorageDown is returned by a MemStorage with FailPuts set.
var ErrStorageDown = errors.New("storage unavailable")

// MemStorage is an in-memory blob store for tests. Set FailPuts to make
// every Put fail, exercising the inline fallback paths.
//
// The embedded storage.Store satisfies the parts of the interface the
// tests never call; invoking one of those methods panics on the nil
// interface.
type MemStorage struct {
	storage.Store
	mu       sync.Mutex
	objects  map[string][]byte
	FailPuts bool
}

var _ storage.Store = (*MemStorage)(nil)

// NewMemStorage creates an empty in-memory blob store.
func NewMemStorage() *MemStorage {
	return &MemStorage{objects: make(map[string][]byte)}
}

func (m *MemStorage) Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPuts {
		return ErrStorageDown
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[path] = data
	return nil
}

func (m *MemStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[path]
	if !ok {
		return nil, errors.New("object not found: " + path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemStorage) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	return nil
}

func (m *MemStorage) URL(path string) string {
	return "https://blobs.test/" + path
}

// Len returns the number of stored objects.
func (m *MemStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Has reports whether an object exists at path.
func (m *MemStorage) Has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[path]
	return ok
}
