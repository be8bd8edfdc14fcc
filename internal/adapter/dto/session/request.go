package session

// JoinRequest asks the bot to join a meeting
type JoinRequest struct {
	MeetingURL string `json:"meeting_url" validate:"required,url" example:"https://zoom.us/j/123456"`
	OwnerID    string `json:"owner_id" validate:"required" example:"user-42"`
	BotName    string `json:"bot_name,omitempty" validate:"omitempty,max=50" example:"AI Meeting Assistant"`
}

// AskRequest asks a question to be answered and spoken in the meeting
type AskRequest struct {
	Question     string `json:"question" validate:"required,min=5,max=500" example:"What did we decide about the launch date?"`
	WaitForPause bool   `json:"wait_for_pause,omitempty"`
}
