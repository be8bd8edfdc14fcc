package session

import "time"

// JoinResponse is returned after the bot was sent into the meeting
type JoinResponse struct {
	SessionID string    `json:"session_id"`
	Status    string    `json:"status"`
	Platform  string    `json:"platform"`
	BotName   string    `json:"bot_name"`
	OwnerID   string    `json:"owner_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

// BriefResponse is an on-demand summary of the meeting so far
type BriefResponse struct {
	SessionID       string    `json:"session_id"`
	Brief           string    `json:"brief"`
	KeyPoints       []string  `json:"key_points"`
	Speakers        []string  `json:"speakers"`
	DurationMinutes int       `json:"duration_minutes"`
	LastUpdated     time.Time `json:"last_updated"`
}

// AskResponse echoes the question and carries the spoken answer
type AskResponse struct {
	Status       string    `json:"status"`
	QuestionID   string    `json:"question_id"`
	QuestionText string    `json:"question_text"`
	ResponseText string    `json:"response_text"`
	WillSpeakAt  time.Time `json:"will_speak_at"`
}

// StatusResponse combines stored session state with the bot provider's view
type StatusResponse struct {
	SessionID       string  `json:"session_id"`
	Status          string  `json:"status"`
	Platform        string  `json:"platform"`
	BotStatus       *string `json:"bot_status"`
	DurationMinutes int     `json:"duration_minutes"`
	HasTranscript   bool    `json:"has_transcript"`
}

// LeaveResponse acknowledges that the bot left the meeting
type LeaveResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}
