package nookie

import (
	"sync"
	"time"
)

// MemoryStore is a process-local Store with no persistence, used for tests
// and for Resolve calls that are given no nookie store. It mirrors navix_lib.py's dict-backed NookieStore,
// with TTL support added on top.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]memEntry
}

type memEntry struct {
	value   string
	expires time.Time // zero means no expiry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]memEntry{}}
}

func (s *MemoryStore) Get(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[name]
	if !ok {
		return ""
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		delete(s.data, name)
		return ""
	}
	return e.value
}

func (s *MemoryStore) Set(name, value, expiry string) error {
	ttl, hasTTL, err := parseExpiry(expiry)
	if err != nil {
		return err
	}
	e := memEntry{value: value}
	if hasTTL {
		e.expires = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.data[name] = e
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
