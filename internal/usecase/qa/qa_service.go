package qa

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/livenotes-ai/livenotes/internal/domain/repositories"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/external/recall"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/metrics"
	usecaseErrors "github.com/livenotes-ai/livenotes/internal/usecase/errors"
	"github.com/livenotes-ai/livenotes/internal/usecase/transcript"
)

const (
	minQuestionLen = 5
	maxQuestionLen = 500

	// answerContextChars bounds the trailing transcript window handed to
	// the generator as answering context.
	answerContextChars = 2000

	// cannedBrief is returned before any speech has been transcribed.
	cannedBrief = "Meeting is starting. No discussion yet."
)

// QAService coordinates question answering and meeting briefs. It reads
// meeting state, never the other way around: answers are spoken by the bot
// and only re-enter the transcript if the transcription provider picks the
// speech up like any other utterance.
type QAService struct {
	store       repositories.SessionStore
	transcripts transcript.Service
	generator   Generator
	bots        recall.Client
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewQAService creates a new question/answer coordinator
func NewQAService(
	store repositories.SessionStore,
	transcripts transcript.Service,
	generator Generator,
	bots recall.Client,
	m *metrics.Metrics,
	logger *zap.Logger,
) *QAService {
	return &QAService{
		store:       store,
		transcripts: transcripts,
		generator:   generator,
		bots:        bots,
		metrics:     m,
		logger:      logger,
	}
}

// Ask validates the question, generates an answer from the trailing
// transcript window and has the bot speak it in the meeting.
func (s *QAService) Ask(ctx context.Context, input AskInput) (*AskOutput, error) {
	question := strings.TrimSpace(input.Question)
	if len(question) < minQuestionLen {
		return nil, usecaseErrors.ErrQuestionTooShort
	}
	if len(question) > maxQuestionLen {
		return nil, usecaseErrors.ErrQuestionTooLong
	}

	session, err := s.store.FindByID(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	meetingContext, err := s.transcripts.Read(ctx, session.ID, answerContextChars)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript context: %w", err)
	}

	answer, err := s.generator.GenerateAnswer(ctx, question, meetingContext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrGenerationFailed, err)
	}

	if err := s.bots.Speak(ctx, session.BotID, answer); err != nil {
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrBotSpeakFailed, err)
	}

	questionID := "q_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]

	if input.WaitForPause {
		// Recorded for observability only; the bot provider decides the
		// actual speaking moment.
		if err := s.store.UpdateField(ctx, session.ID, "metadata", map[string]interface{}{
			"last_question_id": questionID,
			"wait_for_pause":   true,
		}); err != nil {
			s.logger.Warn("⚠️ Failed to record question metadata",
				zap.String("session_id", session.ID),
				zap.Error(err))
		}
	}

	if s.metrics != nil {
		s.metrics.RecordQuestion()
	}
	s.logger.Info("✅ Question answered",
		zap.String("session_id", session.ID),
		zap.String("question_id", questionID),
		zap.Int("answer_chars", len(answer)))

	return &AskOutput{
		QuestionID:   questionID,
		QuestionText: question,
		ResponseText: answer,
		WillSpeakAt:  time.Now().UTC(),
	}, nil
}

// Brief summarizes the meeting so far. Before any speech has been
// transcribed it returns a canned brief without calling the generator.
func (s *QAService) Brief(ctx context.Context, sessionID string) (*BriefOutput, error) {
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.HasTranscript() {
		return &BriefOutput{
			SessionID:       session.ID,
			Summary:         cannedBrief,
			KeyPoints:       []string{},
			Speakers:        []string{},
			DurationMinutes: 0,
			GeneratedAt:     time.Now().UTC(),
		}, nil
	}

	summary, keyPoints, err := s.generator.GenerateBrief(ctx, session.Transcript)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrGenerationFailed, err)
	}

	speakers := session.Speakers
	if len(speakers) == 0 {
		speakers = s.resolveSpeakers(ctx, session.ID, session.Transcript)
	}

	if s.metrics != nil {
		s.metrics.RecordBrief()
	}
	s.logger.Info("✅ Brief generated",
		zap.String("session_id", session.ID),
		zap.Int("key_points", len(keyPoints)))

	return &BriefOutput{
		SessionID:       session.ID,
		Summary:         summary,
		KeyPoints:       keyPoints,
		Speakers:        speakers,
		DurationMinutes: session.DurationMinutes(),
		GeneratedAt:     time.Now().UTC(),
	}, nil
}

// resolveSpeakers lazily extracts the speaker list and caches it on the
// session record. Extraction failures degrade to an empty list; the brief
// itself still succeeds.
func (s *QAService) resolveSpeakers(ctx context.Context, sessionID, transcriptText string) []string {
	speakers, err := s.generator.ExtractSpeakers(ctx, transcriptText)
	if err != nil {
		s.logger.Warn("⚠️ Speaker extraction failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return []string{}
	}
	if speakers == nil {
		speakers = []string{}
	}

	if err := s.store.UpdateField(ctx, sessionID, "speakers", speakers); err != nil {
		s.logger.Warn("⚠️ Failed to cache speaker list",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
	return speakers
}
