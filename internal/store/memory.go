package store

import (
	"context"
	"sync"

	"github.com/joescharf/clockme/internal/models"
)

// MemoryStore holds the encoded record in memory. Every Load decodes a
// fresh copy, so callers never share state with the store.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte

	// Optional error injection.
	LoadErr error
	SaveErr error

	Saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Raw returns the encoded record, or nil if nothing was saved.
func (m *MemoryStore) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil
	}
	return append([]byte(nil), m.data...)
}

// SetRaw replaces the stored bytes, bypassing validation.
func (m *MemoryStore) SetRaw(data []byte) {
	m.mu.Lock()
	m.data = append([]byte(nil), data...)
	m.mu.Unlock()
}

func (m *MemoryStore) Exists(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data != nil, nil
}

func (m *MemoryStore) Load(_ context.Context) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.data == nil {
		return nil, ErrNotFound
	}
	return Decode(m.data)
}

func (m *MemoryStore) Save(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	data, err := Encode(p)
	if err != nil {
		return err
	}
	m.data = data
	m.Saves++
	return nil
}
