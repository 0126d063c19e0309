package database

import (
	"fmt"
	"sync"
	"time"

	"gitlab.com/aoterocom/MarketForge/models"
)

type memoryEntry struct {
	payload     []byte
	persistedAt time.Time
}

// MemoryModelStore keeps models for the life of the process.
type MemoryModelStore struct {
	mu    sync.RWMutex
	m     map[models.ModelKey]memoryEntry
	now   func() time.Time
	saves int
}

func NewMemoryModelStore() *MemoryModelStore {
	return &MemoryModelStore{m: make(map[models.ModelKey]memoryEntry), now: time.Now}
}

func (s *MemoryModelStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *MemoryModelStore) Save(key models.ModelKey, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = memoryEntry{payload: append([]byte(nil), payload...), persistedAt: s.now()}
	s.saves++
	return nil
}

func (s *MemoryModelStore) Load(key models.ModelKey) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.m[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrModelNotFound, key)
	}
	return e.payload, nil
}

func (s *MemoryModelStore) Age(key models.ModelKey) (time.Duration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.m[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", models.ErrModelNotFound, key)
	}
	return s.now().Sub(e.persistedAt), nil
}

// Saves counts successful Save calls.
func (s *MemoryModelStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
