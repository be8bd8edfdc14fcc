package session

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/livenotes-ai/livenotes/internal/domain/entities"
	"github.com/livenotes-ai/livenotes/internal/domain/repositories"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/events"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/external/recall"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/metrics"
	usecaseErrors "github.com/livenotes-ai/livenotes/internal/usecase/errors"
)

// SessionService implements Service backed by the bot provider and the
// session store.
type SessionService struct {
	store         repositories.SessionStore
	bots          recall.Client
	events        *events.Publisher
	metrics       *metrics.Metrics
	websocketBase string
	logger        *zap.Logger
}

// NewSessionService creates a new session service. websocketBase is the
// external base URL clients and the bot provider reach this server on,
// e.g. "wss://api.example.com".
func NewSessionService(
	store repositories.SessionStore,
	bots recall.Client,
	publisher *events.Publisher,
	m *metrics.Metrics,
	websocketBase string,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		store:         store,
		bots:          bots,
		events:        publisher,
		metrics:       m,
		websocketBase: websocketBase,
		logger:        logger,
	}
}

// Join sends a bot into the meeting and creates the session record.
func (s *SessionService) Join(ctx context.Context, input JoinInput) (*entities.Session, error) {
	meetingURL := strings.TrimSpace(input.MeetingURL)
	if meetingURL == "" {
		return nil, entities.ErrInvalidMeetingURL
	}

	botName := strings.TrimSpace(input.BotName)
	if botName == "" {
		botName = entities.DefaultBotName
	}

	callbackURL := fmt.Sprintf("%s/ws/%s", strings.TrimRight(s.websocketBase, "/"), input.OwnerID)

	bot, err := s.bots.CreateBot(ctx, meetingURL, botName, callbackURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrBotCreateFailed, err)
	}

	session := entities.NewSession(bot.ID, input.OwnerID, bot.ID, botName, meetingURL)
	if err := s.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordSessionJoined()
	}
	// Publisher logs its own failures; lifecycle events are best-effort.
	_ = s.events.PublishSessionEvent(ctx, events.SessionEvent{
		SessionID: session.ID,
		OwnerID:   session.OwnerID,
		Status:    string(session.Status),
		Platform:  string(session.Platform),
	})

	s.logger.Info("✅ Session created",
		zap.String("session_id", session.ID),
		zap.String("owner_id", session.OwnerID),
		zap.String("platform", string(session.Platform)))

	return session, nil
}

// Get returns the session with the given ID.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*entities.Session, error) {
	return s.store.FindByID(ctx, sessionID)
}

// GetStatus returns the session combined with the bot's latest status change.
func (s *SessionService) GetStatus(ctx context.Context, sessionID string) (*StatusOutput, error) {
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	bot, err := s.bots.GetBot(ctx, session.BotID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrBotStatusFailed, err)
	}

	var botStatus *recall.StatusChange
	if len(bot.StatusChanges) > 0 {
		botStatus = &bot.StatusChanges[len(bot.StatusChanges)-1]
	}

	return &StatusOutput{Session: session, BotStatus: botStatus}, nil
}

// Leave removes the bot from the meeting and marks the session ended.
// A session that is already ended is left alone.
func (s *SessionService) Leave(ctx context.Context, sessionID string) error {
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}

	if session.IsEnded() {
		s.logger.Debug("👋 Session already ended, leave is a no-op",
			zap.String("session_id", session.ID))
		return nil
	}

	if err := s.bots.Leave(ctx, session.BotID); err != nil {
		return fmt.Errorf("%w: %v", usecaseErrors.ErrBotLeaveFailed, err)
	}

	if err := session.End(); err != nil {
		// Ended concurrently between the check and here.
		return nil
	}
	if err := s.store.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordSessionEnded("left")
	}
	_ = s.events.PublishSessionEvent(ctx, events.SessionEvent{
		SessionID: session.ID,
		OwnerID:   session.OwnerID,
		Status:    string(session.Status),
		Platform:  string(session.Platform),
	})

	s.logger.Info("👋 Session ended",
		zap.String("session_id", session.ID))

	return nil
}
