package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/livenotes-ai/livenotes/internal/domain/entities"
)

// MemorySessionStore is an in-memory session store with expiration.
// It keeps sessions as serialized documents so reads and writes have the
// same copy semantics as the Redis store. Used for development and tests.
type MemorySessionStore struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]*memoryItem
}

type memoryItem struct {
	value      []byte
	expireTime time.Time
}

// NewMemorySessionStore creates a new in-memory session store
func NewMemorySessionStore() *MemorySessionStore {
	store := &MemorySessionStore{
		ttl:   24 * time.Hour,
		items: make(map[string]*memoryItem),
	}

	// Start cleanup goroutine to remove expired items
	go store.cleanupExpired()

	return store
}

// Create stores a new session document and starts its retention window
func (ms *MemorySessionStore) Create(ctx context.Context, session *entities.Session) error {
	return ms.write(session)
}

// FindByID retrieves a session by its ID
func (ms *MemorySessionStore) FindByID(ctx context.Context, id string) (*entities.Session, error) {
	ms.mu.RLock()
	item, exists := ms.items[id]
	ms.mu.RUnlock()

	if !exists || time.Now().After(item.expireTime) {
		return nil, entities.ErrSessionNotFound
	}

	var session entities.Session
	if err := json.Unmarshal(item.value, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session document: %w", err)
	}
	return &session, nil
}

// Save overwrites an existing session document and refreshes its retention window
func (ms *MemorySessionStore) Save(ctx context.Context, session *entities.Session) error {
	return ms.write(session)
}

// UpdateField sets a single field on the session document. The document is
// read, patched and written back whole; the TTL restarts like any write.
func (ms *MemorySessionStore) UpdateField(ctx context.Context, id, field string, value interface{}) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, exists := ms.items[id]
	if !exists || time.Now().After(item.expireTime) {
		return entities.ErrSessionNotFound
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(item.value, &doc); err != nil {
		return fmt.Errorf("failed to decode session document: %w", err)
	}
	doc[field] = value
	doc["last_activity_at"] = time.Now().UTC().Format(time.RFC3339Nano)

	patched, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode session document: %w", err)
	}
	ms.items[id] = &memoryItem{
		value:      patched,
		expireTime: time.Now().Add(ms.ttl),
	}
	return nil
}

// Delete removes a session document
func (ms *MemorySessionStore) Delete(ctx context.Context, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.items, id)
	return nil
}

func (ms *MemorySessionStore) write(session *entities.Session) error {
	session.Touch()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session document: %w", err)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.items[session.ID] = &memoryItem{
		value:      data,
		expireTime: time.Now().Add(ms.ttl),
	}
	return nil
}

// cleanupExpired periodically removes expired items
func (ms *MemorySessionStore) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ms.mu.Lock()
		now := time.Now()
		for key, item := range ms.items {
			if now.After(item.expireTime) {
				delete(ms.items, key)
			}
		}
		ms.mu.Unlock()
	}
}
