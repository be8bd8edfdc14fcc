package session

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/livenotes-ai/livenotes/internal/domain/entities"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/cache"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/events"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/external/recall"
	usecaseErrors "github.com/livenotes-ai/livenotes/internal/usecase/errors"
)

type fakeBots struct {
	createCalls int
	leaveCalls  int

	lastCallbackURL string
	lastBotName     string

	createErr error
	bot       *recall.Bot
}

func (f *fakeBots) CreateBot(ctx context.Context, meetingURL, botName, callbackURL string) (*recall.Bot, error) {
	f.createCalls++
	f.lastBotName = botName
	f.lastCallbackURL = callbackURL
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.bot, nil
}

func (f *fakeBots) GetBot(ctx context.Context, botID string) (*recall.Bot, error) {
	return f.bot, nil
}

func (f *fakeBots) Speak(ctx context.Context, botID, text string) error {
	return nil
}

func (f *fakeBots) Leave(ctx context.Context, botID string) error {
	f.leaveCalls++
	return nil
}

func newTestService(bots *fakeBots) (*SessionService, *cache.MemorySessionStore) {
	store := cache.NewMemorySessionStore()
	publisher := events.NewPublisher(events.Config{Enabled: false}, zap.NewNop(), nil)
	svc := NewSessionService(store, bots, publisher, nil, "wss://api.example.test", zap.NewNop())
	return svc, store
}

func TestJoinCreatesPendingSession(t *testing.T) {
	bots := &fakeBots{bot: &recall.Bot{ID: "bot-123"}}
	svc, store := newTestService(bots)

	session, err := svc.Join(context.Background(), JoinInput{
		MeetingURL: "https://zoom.us/j/123456",
		OwnerID:    "user-1",
	})
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	if session.ID != "bot-123" {
		t.Errorf("session id = %q, want bot id", session.ID)
	}
	if session.Status != entities.SessionStatusPending {
		t.Errorf("status = %q, want pending", session.Status)
	}
	if session.Platform != entities.PlatformZoom {
		t.Errorf("platform = %q, want zoom", session.Platform)
	}
	if bots.lastBotName != entities.DefaultBotName {
		t.Errorf("bot name = %q, want default", bots.lastBotName)
	}
	if bots.lastCallbackURL != "wss://api.example.test/ws/user-1" {
		t.Errorf("callback url = %q", bots.lastCallbackURL)
	}

	stored, err := store.FindByID(context.Background(), "bot-123")
	if err != nil {
		t.Fatalf("session not stored: %v", err)
	}
	if stored.OwnerID != "user-1" {
		t.Errorf("owner = %q", stored.OwnerID)
	}
}

func TestJoinCustomBotName(t *testing.T) {
	bots := &fakeBots{bot: &recall.Bot{ID: "bot-1"}}
	svc, _ := newTestService(bots)

	_, err := svc.Join(context.Background(), JoinInput{
		MeetingURL: "https://meet.google.com/abc-defg-hij",
		OwnerID:    "user-1",
		BotName:    "Notetaker",
	})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if bots.lastBotName != "Notetaker" {
		t.Errorf("bot name = %q, want Notetaker", bots.lastBotName)
	}
}

func TestJoinEmptyURLRejectedBeforeProviderCall(t *testing.T) {
	bots := &fakeBots{bot: &recall.Bot{ID: "bot-1"}}
	svc, _ := newTestService(bots)

	_, err := svc.Join(context.Background(), JoinInput{MeetingURL: "   ", OwnerID: "user-1"})
	if !errors.Is(err, entities.ErrInvalidMeetingURL) {
		t.Fatalf("err = %v, want ErrInvalidMeetingURL", err)
	}
	if bots.createCalls != 0 {
		t.Errorf("provider called %d times for invalid input", bots.createCalls)
	}
}

func TestJoinProviderFailure(t *testing.T) {
	bots := &fakeBots{createErr: errors.New("boom")}
	svc, _ := newTestService(bots)

	_, err := svc.Join(context.Background(), JoinInput{
		MeetingURL: "https://zoom.us/j/1",
		OwnerID:    "user-1",
	})
	if !errors.Is(err, usecaseErrors.ErrBotCreateFailed) {
		t.Fatalf("err = %v, want ErrBotCreateFailed", err)
	}
}

func TestGetStatusReturnsLatestBotStatus(t *testing.T) {
	bots := &fakeBots{bot: &recall.Bot{
		ID: "bot-1",
		StatusChanges: []recall.StatusChange{
			{Code: "joining_call"},
			{Code: "in_call_recording"},
		},
	}}
	svc, store := newTestService(bots)
	seedSession(t, store, "sess-1")

	out, err := svc.GetStatus(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if out.BotStatus == nil || out.BotStatus.Code != "in_call_recording" {
		t.Errorf("bot status = %+v, want in_call_recording", out.BotStatus)
	}
	if out.Session.ID != "sess-1" {
		t.Errorf("session id = %q", out.Session.ID)
	}
}

func TestGetStatusEmptyHistory(t *testing.T) {
	bots := &fakeBots{bot: &recall.Bot{ID: "bot-1"}}
	svc, store := newTestService(bots)
	seedSession(t, store, "sess-1")

	out, err := svc.GetStatus(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if out.BotStatus != nil {
		t.Errorf("bot status = %+v, want nil", out.BotStatus)
	}
}

func TestLeaveIsIdempotent(t *testing.T) {
	bots := &fakeBots{bot: &recall.Bot{ID: "bot-1"}}
	svc, store := newTestService(bots)
	seedSession(t, store, "sess-1")

	if err := svc.Leave(context.Background(), "sess-1"); err != nil {
		t.Fatalf("first leave: %v", err)
	}
	if bots.leaveCalls != 1 {
		t.Fatalf("leave calls = %d, want 1", bots.leaveCalls)
	}

	stored, err := store.FindByID(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("session deleted on leave: %v", err)
	}
	if !stored.IsEnded() {
		t.Errorf("status = %q, want ended", stored.Status)
	}

	// Second leave succeeds without calling the provider again.
	if err := svc.Leave(context.Background(), "sess-1"); err != nil {
		t.Fatalf("second leave: %v", err)
	}
	if bots.leaveCalls != 1 {
		t.Errorf("leave calls = %d after second leave, want 1", bots.leaveCalls)
	}
}

func TestLeaveUnknownSession(t *testing.T) {
	svc, _ := newTestService(&fakeBots{})

	err := svc.Leave(context.Background(), "missing")
	if !errors.Is(err, entities.ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func seedSession(t *testing.T, store *cache.MemorySessionStore, id string) {
	t.Helper()
	session := entities.NewSession(id, "user-1", "bot-1", entities.DefaultBotName, "https://zoom.us/j/1")
	if err := store.Create(context.Background(), session); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}
