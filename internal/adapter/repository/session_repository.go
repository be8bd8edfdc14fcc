package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/livenotes-ai/livenotes/internal/domain/entities"
)

const (
	sessionKeyPrefix = "session:"

	// Sessions are retained for 24 hours after the last write.
	sessionTTL = 24 * time.Hour
)

// SessionRepository implements the session store interface using Redis.
// Each session is a single JSON document under session:{id}.
type SessionRepository struct {
	client *redis.Client
}

// NewSessionRepository creates a new Redis-backed session repository
func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{
		client: client,
	}
}

// Create stores a new session document and starts its retention window
func (r *SessionRepository) Create(ctx context.Context, session *entities.Session) error {
	if err := r.write(ctx, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID retrieves a session by its ID
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*entities.Session, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, entities.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session by ID: %w", err)
	}

	var session entities.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session document: %w", err)
	}
	return &session, nil
}

// Save overwrites an existing session document and refreshes its retention window
func (r *SessionRepository) Save(ctx context.Context, session *entities.Session) error {
	if err := r.write(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// UpdateField sets a single field on the session document. The document is
// read, patched and written back whole; the TTL restarts like any write.
func (r *SessionRepository) UpdateField(ctx context.Context, id, field string, value interface{}) error {
	data, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return entities.ErrSessionNotFound
		}
		return fmt.Errorf("failed to load session for field update: %w", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode session document: %w", err)
	}
	doc[field] = value
	doc["last_activity_at"] = time.Now().UTC().Format(time.RFC3339Nano)

	patched, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode session document: %w", err)
	}
	return r.client.Set(ctx, sessionKeyPrefix+id, patched, sessionTTL).Err()
}

// Delete removes a session document
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) write(ctx context.Context, session *entities.Session) error {
	session.Touch()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session document: %w", err)
	}
	return r.client.Set(ctx, sessionKeyPrefix+session.ID, data, sessionTTL).Err()
}
