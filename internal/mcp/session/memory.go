package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type memoryEntry struct {
	state     []byte
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Expired entries are evicted when read.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, id string) (*mcp.ServerSessionState, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}

	s.mu.Lock()
	entry, ok := s.entries[id]
	if ok && !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	state := &mcp.ServerSessionState{}
	if err := json.Unmarshal(entry.state, state); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeState, err)
	}
	return state, nil
}

// Save implements Store. A non-positive ttl keeps the entry until it is deleted.
func (s *MemoryStore) Save(_ context.Context, id string, state *mcp.ServerSessionState, ttl time.Duration) error {
	if id == "" {
		return ErrEmptySessionID
	}
	if state == nil {
		return ErrNilState
	}

	// Stored encoded so callers never share the engine's pointers.
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodeState, err)
	}

	entry := memoryEntry{state: data}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[id] = entry
	s.mu.Unlock()
	return nil
}

// Delete implements Store. Deleting an unknown ID is not an error.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear drops every session.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]memoryEntry)
	s.mu.Unlock()
}
