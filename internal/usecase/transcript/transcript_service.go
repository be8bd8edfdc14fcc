package transcript

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/livenotes-ai/livenotes/internal/domain/entities"
	"github.com/livenotes-ai/livenotes/internal/domain/repositories"
)

// TranscriptService owns transcript append/read semantics. Appends for a
// single session must arrive from a single logical writer (the relay
// worker bound to that session); the service itself does no locking.
type TranscriptService struct {
	store  repositories.SessionStore
	logger *zap.Logger
}

// NewTranscriptService creates a new transcript service
func NewTranscriptService(store repositories.SessionStore, logger *zap.Logger) *TranscriptService {
	return &TranscriptService{
		store:  store,
		logger: logger,
	}
}

// Append folds a finalized segment into the session's transcript buffer
func (s *TranscriptService) Append(ctx context.Context, sessionID string, segment entities.TranscriptSegment) error {
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session for append: %w", err)
	}

	if !session.AppendTranscript(segment) {
		return nil
	}

	if err := s.store.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}

	s.logger.Debug("📥 Transcript segment appended",
		zap.String("session_id", sessionID),
		zap.String("speaker", segment.Speaker),
		zap.Int("chars", len(segment.Text)),
	)
	return nil
}

// Read returns the transcript buffer, bounded to its trailing maxChars
// characters when maxChars > 0
func (s *TranscriptService) Read(ctx context.Context, sessionID string, maxChars int) (string, error) {
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to load session for read: %w", err)
	}
	return session.TranscriptTail(maxChars), nil
}
