package handler

import (
	stdErrors "errors"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/livenotes-ai/livenotes/errors"
	"github.com/livenotes-ai/livenotes/internal/domain/entities"
	usecaseErrors "github.com/livenotes-ai/livenotes/internal/usecase/errors"
)

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code      interface{}       `json:"code,omitempty"`
	Message   string            `json:"message,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Info      string            `json:"info,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	return c.Request().Header.Get("X-Request-ID")
}

// HandleSuccess writes a standardized success response
func HandleSuccess(logger *zap.Logger, c echo.Context, status int, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
		)
	}

	return c.JSON(status, resp)
}

// HandleError maps domain errors onto the error envelope and logs them
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	appErr := toAppError(c, err)

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Any("app_code", appErr.Code),
			zap.Error(err),
		)
	}

	info := ""
	if appErr.Raw != nil {
		info = appErr.Raw.Error()
	}

	body := errs{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Details:   appErr.Details,
		Info:      info,
		Timestamp: time.Now().UTC(),
	}

	return c.JSON(appErr.HTTPCode, body)
}

// toAppError translates usecase sentinel errors into the response envelope.
// A caller can distinguish "no such session" from "upstream failure" by the
// code alone.
func toAppError(c echo.Context, err error) errors.AppError {
	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	sessionID := c.Param("id")

	switch {
	case stdErrors.Is(err, entities.ErrSessionNotFound):
		return errors.ErrSessionNotFound(sessionID)
	case stdErrors.Is(err, entities.ErrSessionEnded):
		return errors.ErrSessionEnded(sessionID)
	case stdErrors.Is(err, entities.ErrInvalidMeetingURL):
		return errors.ErrInvalidMeetingURL("")
	case stdErrors.Is(err, usecaseErrors.ErrQuestionTooShort),
		stdErrors.Is(err, usecaseErrors.ErrQuestionTooLong):
		return errors.ErrInvalidQuestion(err.Error())
	case stdErrors.Is(err, usecaseErrors.ErrBotCreateFailed):
		return errors.ErrJoinFailed(err)
	case stdErrors.Is(err, usecaseErrors.ErrBotStatusFailed):
		return errors.ErrBotRequestFailed("status", err)
	case stdErrors.Is(err, usecaseErrors.ErrBotLeaveFailed):
		return errors.ErrBotRequestFailed("leave", err)
	case stdErrors.Is(err, usecaseErrors.ErrBotSpeakFailed):
		return errors.ErrBotSpeakFailed(err)
	case stdErrors.Is(err, usecaseErrors.ErrGenerationFailed):
		return errors.ErrGenerationFailed(err)
	case stdErrors.Is(err, usecaseErrors.ErrStreamStartFailed):
		return errors.ErrTranscriptionFailed(err)
	default:
		return errors.ErrInternal(err)
	}
}

// bindAndValidate decodes the request body and runs struct validation
func bindAndValidate(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return errors.ErrInvalidArgument("Invalid request body")
	}
	if err := c.Validate(v); err != nil {
		return errors.ErrInvalidArgument(err.Error())
	}
	return nil
}

// requireSessionID reads the :id path parameter
func requireSessionID(c echo.Context) (string, error) {
	id := c.Param("id")
	if id == "" {
		return "", errors.ErrInvalidArgument("session id is required")
	}
	return id, nil
}
