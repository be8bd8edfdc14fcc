package transcript

import (
	"context"

	"github.com/livenotes-ai/livenotes/internal/domain/entities"
)

// Service defines the interface for transcript aggregation
type Service interface {
	// Append folds a finalized segment into the session's transcript buffer
	Append(ctx context.Context, sessionID string, segment entities.TranscriptSegment) error

	// Read returns the transcript buffer, bounded to its trailing maxChars
	// characters when maxChars > 0
	Read(ctx context.Context, sessionID string, maxChars int) (string, error)
}

// Ensure TranscriptService implements Service interface
var _ Service = (*TranscriptService)(nil)
