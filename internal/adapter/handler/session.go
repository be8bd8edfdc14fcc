package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	dto "github.com/livenotes-ai/livenotes/internal/adapter/dto/session"
	"github.com/livenotes-ai/livenotes/internal/adapter/presenter"
	"github.com/livenotes-ai/livenotes/internal/domain/entities"
	"github.com/livenotes-ai/livenotes/internal/usecase/qa"
	"github.com/livenotes-ai/livenotes/internal/usecase/session"
)

// SessionHandler serves the session lifecycle and assistant endpoints
type SessionHandler struct {
	sessions session.Service
	qa       qa.Service
	logger   *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions session.Service, qaService qa.Service, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		qa:       qaService,
		logger:   logger,
	}
}

// Join godoc
// @Summary      Send the bot into a meeting
// @Description  Creates a pending session and dispatches the automated participant to the meeting URL
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        request body session.JoinRequest true "Join request"
// @Success      201 {object} session.JoinResponse
// @Failure      400 {object} map[string]interface{}
// @Failure      502 {object} map[string]interface{}
// @Router       /sessions/join [post]
func (h *SessionHandler) Join(c echo.Context) error {
	var req dto.JoinRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	botName := req.BotName
	if botName == "" {
		botName = entities.DefaultBotName
	}

	result, err := h.sessions.Join(c.Request().Context(), session.JoinInput{
		MeetingURL: req.MeetingURL,
		OwnerID:    req.OwnerID,
		BotName:    botName,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusCreated, presenter.ToJoinResponse(result))
}

// Brief godoc
// @Summary      Get an on-demand meeting brief
// @Description  Summarizes the meeting so far; returns a canned brief before any speech was transcribed
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} session.BriefResponse
// @Failure      404 {object} map[string]interface{}
// @Failure      502 {object} map[string]interface{}
// @Router       /sessions/{id}/brief [get]
func (h *SessionHandler) Brief(c echo.Context) error {
	id, err := requireSessionID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	brief, err := h.qa.Brief(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToBriefResponse(brief))
}

// Ask godoc
// @Summary      Ask a question in the meeting
// @Description  Generates an answer from recent transcript context and has the bot speak it
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body session.AskRequest true "Question"
// @Success      200 {object} session.AskResponse
// @Failure      400 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Failure      502 {object} map[string]interface{}
// @Router       /sessions/{id}/ask [post]
func (h *SessionHandler) Ask(c echo.Context) error {
	id, err := requireSessionID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.AskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	answer, err := h.qa.Ask(c.Request().Context(), qa.AskInput{
		SessionID:    id,
		Question:     req.Question,
		WaitForPause: req.WaitForPause,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToAskResponse(answer))
}

// Status godoc
// @Summary      Get session status
// @Description  Returns stored session state combined with the bot provider's latest status change
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} session.StatusResponse
// @Failure      404 {object} map[string]interface{}
// @Router       /sessions/{id}/status [get]
func (h *SessionHandler) Status(c echo.Context) error {
	id, err := requireSessionID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	status, err := h.sessions.GetStatus(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToStatusResponse(status))
}

// Leave godoc
// @Summary      Remove the bot from a meeting
// @Description  Ends the session; leaving an already ended session succeeds without side effects
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} session.LeaveResponse
// @Failure      404 {object} map[string]interface{}
// @Router       /sessions/{id}/leave [post]
func (h *SessionHandler) Leave(c echo.Context) error {
	id, err := requireSessionID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.sessions.Leave(c.Request().Context(), id); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToLeaveResponse(id))
}
