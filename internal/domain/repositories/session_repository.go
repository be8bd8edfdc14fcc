package repositories

import (
	"context"

	"github.com/livenotes-ai/livenotes/internal/domain/entities"
)

// SessionStore defines the interface for session document access
type SessionStore interface {
	// Create stores a new session document and starts its retention window
	Create(ctx context.Context, session *entities.Session) error

	// FindByID retrieves a session by its ID
	FindByID(ctx context.Context, id string) (*entities.Session, error)

	// Save overwrites an existing session document and refreshes its retention window
	Save(ctx context.Context, session *entities.Session) error

	// UpdateField sets a single field on the session document via
	// read-modify-write. Not atomic across concurrent callers; per-session
	// single-writer discipline keeps the remaining races rare.
	UpdateField(ctx context.Context, id, field string, value interface{}) error

	// Delete removes a session document
	Delete(ctx context.Context, id string) error
}
