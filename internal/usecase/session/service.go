package session

import (
	"context"

	"github.com/livenotes-ai/livenotes/internal/domain/entities"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/external/recall"
)

// JoinInput represents input for joining a meeting
type JoinInput struct {
	MeetingURL string
	OwnerID    string
	BotName    string
}

// StatusOutput couples the stored session with the bot provider's view
type StatusOutput struct {
	Session   *entities.Session
	BotStatus *recall.StatusChange
}

// Service defines the interface for session lifecycle operations
type Service interface {
	// Join sends a bot into the meeting and creates a pending session
	Join(ctx context.Context, input JoinInput) (*entities.Session, error)

	// Get retrieves a session by ID
	Get(ctx context.Context, sessionID string) (*entities.Session, error)

	// GetStatus retrieves a session along with the bot's latest status
	GetStatus(ctx context.Context, sessionID string) (*StatusOutput, error)

	// Leave removes the bot and marks the session ended. Leaving an
	// already ended session succeeds without re-triggering side effects.
	Leave(ctx context.Context, sessionID string) error
}

// Ensure SessionService implements Service interface
var _ Service = (*SessionService)(nil)
