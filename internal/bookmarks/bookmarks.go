package bookmarks

import (
	"encoding/json"
	"fmt"
	"sync"
)

// storageKey is where the saved-business id set lives in the KV store.
const storageKey = "saved_businesses"

// KV is a durable string key-value store.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Store holds the user's saved business ids, persisted as a JSON array
// under a single key. Reads and writes go through a read-modify-write
// cycle guarded by a lock.
type Store struct {
	mu sync.Mutex
	kv KV
}

// New creates a bookmark store over kv.
func New(kv KV) *Store {
	return &Store{kv: kv}
}

func (s *Store) load() ([]string, error) {
	raw, ok, err := s.kv.Get(storageKey)
	if err != nil {
		return nil, fmt.Errorf("read bookmarks: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode bookmarks: %w", err)
	}
	return ids, nil
}

func (s *Store) save(ids []string) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode bookmarks: %w", err)
	}
	if err := s.kv.Set(storageKey, string(raw)); err != nil {
		return fmt.Errorf("write bookmarks: %w", err)
	}
	return nil
}

// IDs returns the saved business ids in insertion order.
func (s *Store) IDs() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// IsSaved reports whether businessID is bookmarked.
func (s *Store) IsSaved(businessID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, err := s.load()
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == businessID {
			return true, nil
		}
	}
	return false, nil
}

// Toggle adds businessID to the saved set if absent, removes it if present.
// Reports whether the id is saved after the call.
func (s *Store) Toggle(businessID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, err := s.load()
	if err != nil {
		return false, err
	}
	for i, id := range ids {
		if id == businessID {
			ids = append(ids[:i], ids[i+1:]...)
			return false, s.save(ids)
		}
	}
	ids = append(ids, businessID)
	return true, s.save(ids)
}
