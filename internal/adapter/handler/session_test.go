package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/livenotes-ai/livenotes/internal/domain/entities"
	"github.com/livenotes-ai/livenotes/internal/usecase/qa"
	"github.com/livenotes-ai/livenotes/internal/usecase/session"
	pkgvalidator "github.com/livenotes-ai/livenotes/pkg/validator"
)

type fakeSessionService struct {
	joined  *entities.Session
	joinErr error
	status  *session.StatusOutput
	getErr  error
	left    []string
}

func (f *fakeSessionService) Join(ctx context.Context, input session.JoinInput) (*entities.Session, error) {
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	return f.joined, nil
}

func (f *fakeSessionService) Get(ctx context.Context, sessionID string) (*entities.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.joined, nil
}

func (f *fakeSessionService) GetStatus(ctx context.Context, sessionID string) (*session.StatusOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.status, nil
}

func (f *fakeSessionService) Leave(ctx context.Context, sessionID string) error {
	if f.getErr != nil {
		return f.getErr
	}
	f.left = append(f.left, sessionID)
	return nil
}

type fakeQAService struct {
	askInput  qa.AskInput
	askOut    *qa.AskOutput
	askErr    error
	briefOut  *qa.BriefOutput
	briefErr  error
	briefedID string
}

func (f *fakeQAService) Ask(ctx context.Context, input qa.AskInput) (*qa.AskOutput, error) {
	f.askInput = input
	if f.askErr != nil {
		return nil, f.askErr
	}
	return f.askOut, nil
}

func (f *fakeQAService) Brief(ctx context.Context, sessionID string) (*qa.BriefOutput, error) {
	f.briefedID = sessionID
	if f.briefErr != nil {
		return nil, f.briefErr
	}
	return f.briefOut, nil
}

func newTestContext(t *testing.T, method, path, body string) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = pkgvalidator.New()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	return e, e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

func TestJoinCreatesSession(t *testing.T) {
	s := entities.NewSession("bot_1", "user-42", "bot_1", "Notetaker", "https://zoom.us/j/123")
	sessions := &fakeSessionService{joined: s}
	h := NewSessionHandler(sessions, &fakeQAService{}, zap.NewNop())

	_, c, rec := newTestContext(t, http.MethodPost, "/api/v1/sessions/join",
		`{"meeting_url":"https://zoom.us/j/123","owner_id":"user-42","bot_name":"Notetaker"}`)

	if err := h.Join(c); err != nil {
		t.Fatalf("Join returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected data object, got %v", body)
	}
	if data["session_id"] != "bot_1" {
		t.Errorf("expected session_id bot_1, got %v", data["session_id"])
	}
	if data["platform"] != string(entities.PlatformZoom) {
		t.Errorf("expected zoom platform, got %v", data["platform"])
	}
}

func TestJoinRejectsInvalidBody(t *testing.T) {
	h := NewSessionHandler(&fakeSessionService{}, &fakeQAService{}, zap.NewNop())

	// meeting_url is not a URL
	_, c, rec := newTestContext(t, http.MethodPost, "/api/v1/sessions/join",
		`{"meeting_url":"not-a-url","owner_id":"user-42"}`)

	if err := h.Join(c); err != nil {
		t.Fatalf("Join returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBriefUnknownSessionReturns404(t *testing.T) {
	qaSvc := &fakeQAService{briefErr: entities.ErrSessionNotFound}
	h := NewSessionHandler(&fakeSessionService{}, qaSvc, zap.NewNop())

	_, c, rec := newTestContext(t, http.MethodGet, "/", "")
	c.SetPath("/api/v1/sessions/:id/brief")
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := h.Brief(c); err != nil {
		t.Fatalf("Brief returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
	if qaSvc.briefedID != "missing" {
		t.Errorf("expected brief called with missing, got %q", qaSvc.briefedID)
	}
}

func TestAskPassesQuestionThrough(t *testing.T) {
	qaSvc := &fakeQAService{
		askOut: &qa.AskOutput{
			QuestionID:   "q_abc12345",
			QuestionText: "What did we decide?",
			ResponseText: "The launch moves to Friday.",
			WillSpeakAt:  time.Now(),
		},
	}
	h := NewSessionHandler(&fakeSessionService{}, qaSvc, zap.NewNop())

	_, c, rec := newTestContext(t, http.MethodPost, "/",
		`{"question":"What did we decide?","wait_for_pause":true}`)
	c.SetPath("/api/v1/sessions/:id/ask")
	c.SetParamNames("id")
	c.SetParamValues("m1")

	if err := h.Ask(c); err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if qaSvc.askInput.SessionID != "m1" {
		t.Errorf("expected session m1, got %q", qaSvc.askInput.SessionID)
	}
	if !qaSvc.askInput.WaitForPause {
		t.Error("expected wait_for_pause to be passed through")
	}

	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	if data["response_text"] != "The launch moves to Friday." {
		t.Errorf("unexpected response_text: %v", data["response_text"])
	}
	if data["status"] != "speaking" {
		t.Errorf("expected speaking status, got %v", data["status"])
	}
}

func TestAskRejectsShortQuestion(t *testing.T) {
	qaSvc := &fakeQAService{}
	h := NewSessionHandler(&fakeSessionService{}, qaSvc, zap.NewNop())

	_, c, rec := newTestContext(t, http.MethodPost, "/", `{"question":"Hi"}`)
	c.SetPath("/api/v1/sessions/:id/ask")
	c.SetParamNames("id")
	c.SetParamValues("m1")

	if err := h.Ask(c); err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if qaSvc.askInput.Question != "" {
		t.Error("service should not be called for an invalid question")
	}
}

func TestLeaveAcknowledges(t *testing.T) {
	sessions := &fakeSessionService{}
	h := NewSessionHandler(sessions, &fakeQAService{}, zap.NewNop())

	_, c, rec := newTestContext(t, http.MethodPost, "/", "")
	c.SetPath("/api/v1/sessions/:id/leave")
	c.SetParamNames("id")
	c.SetParamValues("m1")

	if err := h.Leave(c); err != nil {
		t.Fatalf("Leave returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(sessions.left) != 1 || sessions.left[0] != "m1" {
		t.Errorf("expected leave called for m1, got %v", sessions.left)
	}

	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	if data["status"] != "left" {
		t.Errorf("expected left status, got %v", data["status"])
	}
}

func TestStatusIncludesBotStatus(t *testing.T) {
	s := entities.NewSession("bot_1", "user-42", "bot_1", "Notetaker", "https://meet.google.com/abc")
	if err := s.Activate(); err != nil {
		t.Fatalf("activate: %v", err)
	}

	sessions := &fakeSessionService{status: &session.StatusOutput{Session: s}}
	h := NewSessionHandler(sessions, &fakeQAService{}, zap.NewNop())

	_, c, rec := newTestContext(t, http.MethodGet, "/", "")
	c.SetPath("/api/v1/sessions/:id/status")
	c.SetParamNames("id")
	c.SetParamValues("bot_1")

	if err := h.Status(c); err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	if data["status"] != string(entities.SessionStatusActive) {
		t.Errorf("expected active status, got %v", data["status"])
	}
	if data["platform"] != string(entities.PlatformMeet) {
		t.Errorf("expected meet platform, got %v", data["platform"])
	}
}
