package errors

import "fmt"

// ErrorCode identifies an application error class independent of transport
type ErrorCode int32

const (
	ErrorCode_HTTP_OK ErrorCode = 200

	// General
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_NOT_FOUND        ErrorCode = 1002

	// Session
	ErrorCode_SESSION_NOT_FOUND   ErrorCode = 2000
	ErrorCode_SESSION_ENDED       ErrorCode = 2001
	ErrorCode_SESSION_INVALID_URL ErrorCode = 2002
	ErrorCode_SESSION_JOIN_FAILED ErrorCode = 2003

	// Bot provider
	ErrorCode_BOT_REQUEST_FAILED ErrorCode = 3000
	ErrorCode_BOT_SPEAK_FAILED   ErrorCode = 3001

	// Assistant
	ErrorCode_AI_GENERATION_FAILED ErrorCode = 4000
	ErrorCode_AI_INVALID_QUESTION  ErrorCode = 4001
	ErrorCode_AI_BRIEF_FAILED      ErrorCode = 4002

	// Transcription
	ErrorCode_STT_STREAM_FAILED ErrorCode = 5000

	// Streaming
	ErrorCode_STREAM_UPGRADE_FAILED ErrorCode = 6000
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:               "HTTP_OK",
	ErrorCode_INTERNAL:              "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:      "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:             "NOT_FOUND",
	ErrorCode_SESSION_NOT_FOUND:     "SESSION_NOT_FOUND",
	ErrorCode_SESSION_ENDED:         "SESSION_ENDED",
	ErrorCode_SESSION_INVALID_URL:   "SESSION_INVALID_URL",
	ErrorCode_SESSION_JOIN_FAILED:   "SESSION_JOIN_FAILED",
	ErrorCode_BOT_REQUEST_FAILED:    "BOT_REQUEST_FAILED",
	ErrorCode_BOT_SPEAK_FAILED:      "BOT_SPEAK_FAILED",
	ErrorCode_AI_GENERATION_FAILED:  "AI_GENERATION_FAILED",
	ErrorCode_AI_INVALID_QUESTION:   "AI_INVALID_QUESTION",
	ErrorCode_AI_BRIEF_FAILED:       "AI_BRIEF_FAILED",
	ErrorCode_STT_STREAM_FAILED:     "STT_STREAM_FAILED",
	ErrorCode_STREAM_UPGRADE_FAILED: "STREAM_UPGRADE_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_%d", int32(c))
}
