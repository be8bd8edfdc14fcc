package qa

import (
	"context"
	"time"
)

// Generator produces briefs and answers from meeting transcripts.
// *ai.OpenAIClient satisfies this.
type Generator interface {
	// GenerateBrief returns a short summary and its key points.
	GenerateBrief(ctx context.Context, transcript string) (string, []string, error)

	// GenerateAnswer answers the question from the meeting context.
	GenerateAnswer(ctx context.Context, question, meetingContext string) (string, error)

	// ExtractSpeakers lists the unique speakers in the transcript.
	ExtractSpeakers(ctx context.Context, transcript string) ([]string, error)
}

// AskInput carries one question into the meeting.
type AskInput struct {
	SessionID    string
	Question     string
	WaitForPause bool
}

// AskOutput is the result of answering a question in the meeting.
type AskOutput struct {
	QuestionID   string
	QuestionText string
	ResponseText string
	WillSpeakAt  time.Time
}

// BriefOutput is an on-demand summary of the meeting so far.
type BriefOutput struct {
	SessionID       string
	Summary         string
	KeyPoints       []string
	Speakers        []string
	DurationMinutes int
	GeneratedAt     time.Time
}

// Service coordinates question answering and meeting briefs.
type Service interface {
	// Ask validates the question, generates an answer from recent
	// transcript context and has the bot speak it in the meeting.
	Ask(ctx context.Context, input AskInput) (*AskOutput, error)

	// Brief summarizes the meeting so far. Before any transcript exists
	// it returns a canned brief without calling the generator.
	Brief(ctx context.Context, sessionID string) (*BriefOutput, error)
}

// Ensure QAService implements Service interface
var _ Service = (*QAService)(nil)
