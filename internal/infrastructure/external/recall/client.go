package recall

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/livenotes-ai/livenotes/pkg/config"
)

// Client wraps meeting bot operations against the Recall API
type Client interface {
	// CreateBot sends a bot into the meeting and registers the realtime
	// transcript destination
	CreateBot(ctx context.Context, meetingURL, botName, callbackURL string) (*Bot, error)

	// GetBot fetches the bot resource including its status history
	GetBot(ctx context.Context, botID string) (*Bot, error)

	// Speak makes the bot utter the given text in the meeting
	Speak(ctx context.Context, botID, text string) error

	// Leave removes the bot from the meeting
	Leave(ctx context.Context, botID string) error
}

// Bot is the provider's bot resource, reduced to the fields we use
type Bot struct {
	ID            string         `json:"id"`
	StatusChanges []StatusChange `json:"status_changes"`
}

// StatusChange is one entry in the bot's status history
type StatusChange struct {
	Code      string `json:"code"`
	Message   string `json:"message,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// LastStatus returns the code of the most recent status change
func (b *Bot) LastStatus() string {
	if len(b.StatusChanges) == 0 {
		return "unknown"
	}
	return b.StatusChanges[len(b.StatusChanges)-1].Code
}

// CreateBotRequest is the payload for POST /bot/
type CreateBotRequest struct {
	MeetingURL            string                `json:"meeting_url"`
	BotName               string                `json:"bot_name"`
	TranscriptionOptions  TranscriptionOptions  `json:"transcription_options"`
	RealTimeTranscription RealTimeTranscription `json:"real_time_transcription"`
}

// TranscriptionOptions selects the in-meeting transcription engine
type TranscriptionOptions struct {
	Provider string `json:"provider"`
}

// RealTimeTranscription names the websocket endpoint receiving live events
type RealTimeTranscription struct {
	DestinationURL string `json:"destination_url"`
}

type speakRequest struct {
	Text string `json:"text"`
}

// realClient is the real Recall API client implementation
type realClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a new Recall client. BaseURL from config overrides the
// region-derived endpoint, which tests use to point at a local server.
func NewClient(cfg *config.RecallConfig, logger *zap.Logger, useMock bool) Client {
	if useMock {
		return &mockClient{logger: logger}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.recall.ai/api/v1", cfg.Region)
	}

	return &realClient{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// CreateBot sends a bot into the meeting
func (c *realClient) CreateBot(ctx context.Context, meetingURL, botName, callbackURL string) (*Bot, error) {
	payload := CreateBotRequest{
		MeetingURL:            meetingURL,
		BotName:               botName,
		TranscriptionOptions:  TranscriptionOptions{Provider: "deepgram"},
		RealTimeTranscription: RealTimeTranscription{DestinationURL: callbackURL},
	}

	var bot Bot
	if err := c.do(ctx, http.MethodPost, "/bot/", payload, &bot, true); err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	c.logger.Info("✅ Bot created",
		zap.String("bot_id", bot.ID),
		zap.String("meeting_url", meetingURL),
	)
	return &bot, nil
}

// GetBot fetches the bot resource including its status history
func (c *realClient) GetBot(ctx context.Context, botID string) (*Bot, error) {
	var bot Bot
	if err := c.do(ctx, http.MethodGet, "/bot/"+botID+"/", nil, &bot, true); err != nil {
		return nil, fmt.Errorf("failed to get bot: %w", err)
	}
	return &bot, nil
}

// Speak makes the bot utter the given text. Not retried: a repeated
// request would make the bot say the text twice.
func (c *realClient) Speak(ctx context.Context, botID, text string) error {
	if err := c.do(ctx, http.MethodPost, "/bot/"+botID+"/speak/", speakRequest{Text: text}, nil, false); err != nil {
		return fmt.Errorf("failed to make bot speak: %w", err)
	}
	return nil
}

// Leave removes the bot from the meeting
func (c *realClient) Leave(ctx context.Context, botID string) error {
	if err := c.do(ctx, http.MethodPost, "/bot/"+botID+"/leave/", nil, nil, true); err != nil {
		return fmt.Errorf("failed to remove bot: %w", err)
	}
	c.logger.Info("👋 Bot left meeting", zap.String("bot_id", botID))
	return nil
}

// do runs one API call. Network errors and 5xx responses are retried with
// exponential backoff when retryable is set; 4xx responses never are.
func (c *realClient) do(ctx context.Context, method, path string, body, out interface{}, retryable bool) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Token "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("bot provider returned status %d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("bot provider returned status %d", resp.StatusCode))
		}
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return backoff.Permanent(fmt.Errorf("failed to decode bot provider response: %w", err))
			}
		}
		return nil
	}

	if !retryable {
		err := attempt()
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return perm.Err
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(attempt, backoff.WithContext(bo, ctx))
}

// mockClient is a mock implementation for development without credentials
type mockClient struct {
	logger *zap.Logger
}

func (m *mockClient) CreateBot(ctx context.Context, meetingURL, botName, callbackURL string) (*Bot, error) {
	bot := &Bot{
		ID:            "mock-bot-" + uuid.New().String()[:8],
		StatusChanges: []StatusChange{{Code: "joining_call"}},
	}
	m.logger.Info("✅ Mock bot created",
		zap.String("bot_id", bot.ID),
		zap.String("meeting_url", meetingURL),
	)
	return bot, nil
}

func (m *mockClient) GetBot(ctx context.Context, botID string) (*Bot, error) {
	return &Bot{
		ID: botID,
		StatusChanges: []StatusChange{
			{Code: "joining_call"},
			{Code: "in_call_recording"},
		},
	}, nil
}

func (m *mockClient) Speak(ctx context.Context, botID, text string) error {
	m.logger.Info("🔄 Mock bot speaking",
		zap.String("bot_id", botID),
		zap.Int("chars", len(text)),
	)
	return nil
}

func (m *mockClient) Leave(ctx context.Context, botID string) error {
	m.logger.Info("👋 Mock bot left meeting", zap.String("bot_id", botID))
	return nil
}
