package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore is a bounded in-process store for local runs and tests.
// Sessions are stored serialized so callers never share a live pointer.
type MemoryStore struct {
	cache *expirable.LRU[string, []byte]
}

func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = 10_000
	}
	return &MemoryStore{cache: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	data, ok := m.cache.Get(id)
	if !ok {
		return nil, nil
	}
	return decode(id, data)
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	s.UpdatedAt = time.Now()
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.cache.Add(s.ID, data)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.cache.Remove(id)
	return nil
}
