package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("resource not found")
	ErrInternalError = errors.New("internal server error")
)

// Bot provider errors
var (
	ErrBotCreateFailed = errors.New("failed to create meeting bot")
	ErrBotStatusFailed = errors.New("failed to fetch bot status")
	ErrBotSpeakFailed  = errors.New("failed to make bot speak")
	ErrBotLeaveFailed  = errors.New("failed to remove bot from meeting")
)

// Assistant errors
var (
	ErrQuestionTooShort = errors.New("question must be at least 5 characters")
	ErrQuestionTooLong  = errors.New("question must be at most 500 characters")
	ErrGenerationFailed = errors.New("text generation failed")
)

// Transcription errors
var (
	ErrStreamStartFailed = errors.New("failed to start transcription stream")
	ErrStreamClosed      = errors.New("transcription stream closed")
)
