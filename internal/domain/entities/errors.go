package entities

import "errors"

// Domain errors
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Lifecycle errors
	ErrSessionEnded      = errors.New("session has ended")
	ErrInvalidTransition = errors.New("invalid status transition")

	// Validation errors
	ErrInvalidMeetingURL = errors.New("invalid meeting url")
	ErrInvalidBotName    = errors.New("invalid bot name")
)
