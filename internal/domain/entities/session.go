package entities

import (
	"strings"
	"time"
)

// SessionStatus represents the lifecycle state of a meeting session
type SessionStatus string

const (
	SessionStatusPending SessionStatus = "pending"
	SessionStatusActive  SessionStatus = "active"
	SessionStatusEnded   SessionStatus = "ended"
	SessionStatusError   SessionStatus = "error"
)

// MeetingPlatform represents the conferencing platform hosting the meeting
type MeetingPlatform string

const (
	PlatformZoom    MeetingPlatform = "zoom"
	PlatformTeams   MeetingPlatform = "microsoft_teams"
	PlatformMeet    MeetingPlatform = "google_meet"
	PlatformUnknown MeetingPlatform = "unknown"
)

// DefaultBotName is used when a join request omits the bot display name
const DefaultBotName = "AI Meeting Assistant"

// maxStoredSegments bounds the structured segment history kept per session
const maxStoredSegments = 200

// DetectPlatform derives the platform tag from the meeting URL.
// The tag is computed once at creation and never changes.
func DetectPlatform(meetingURL string) MeetingPlatform {
	url := strings.ToLower(meetingURL)
	switch {
	case strings.Contains(url, "zoom.us"):
		return PlatformZoom
	case strings.Contains(url, "teams.microsoft.com"), strings.Contains(url, "teams.live.com"):
		return PlatformTeams
	case strings.Contains(url, "meet.google.com"):
		return PlatformMeet
	default:
		return PlatformUnknown
	}
}

// TranscriptSegment is one finalized utterance as emitted by the
// transcription provider. Segments are folded into the flat transcript
// buffer but a bounded recent history is retained so speaker attribution
// and timing survive the fold.
type TranscriptSegment struct {
	Speaker    string  `json:"speaker,omitempty"`
	Text       string  `json:"text"`
	Timestamp  float64 `json:"timestamp"`
	Confidence float64 `json:"confidence"`
}

// Session represents one tracked meeting-bot participation, from join to end.
// One JSON document per session is persisted under a 24h rolling TTL.
type Session struct {
	ID             string                 `json:"session_id"`
	OwnerID        string                 `json:"owner_id"`
	BotID          string                 `json:"bot_id"`
	BotName        string                 `json:"bot_name"`
	MeetingURL     string                 `json:"meeting_url"`
	Status         SessionStatus          `json:"status"`
	Platform       MeetingPlatform        `json:"platform"`
	Transcript     string                 `json:"transcript"`
	Segments       []TranscriptSegment    `json:"segments,omitempty"`
	Speakers       []string               `json:"speakers"`
	CreatedAt      time.Time              `json:"created_at"`
	LastActivityAt time.Time              `json:"last_activity_at"`
	Metadata       map[string]interface{} `json:"metadata"`
}

// NewSession creates a pending session for a freshly created bot
func NewSession(id, ownerID, botID, botName, meetingURL string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:             id,
		OwnerID:        ownerID,
		BotID:          botID,
		BotName:        botName,
		MeetingURL:     meetingURL,
		Status:         SessionStatusPending,
		Platform:       DetectPlatform(meetingURL),
		Transcript:     "",
		Speakers:       []string{},
		CreatedAt:      now,
		LastActivityAt: now,
		Metadata:       map[string]interface{}{},
	}
}

// IsActive checks if the session is currently live
func (s *Session) IsActive() bool {
	return s.Status == SessionStatusActive
}

// IsEnded checks if the session has ended
func (s *Session) IsEnded() bool {
	return s.Status == SessionStatusEnded
}

// HasTranscript reports whether any finalized speech has been recorded
func (s *Session) HasTranscript() bool {
	return s.Transcript != ""
}

// DurationMinutes returns whole minutes elapsed since the session was created
func (s *Session) DurationMinutes() int {
	return int(time.Since(s.CreatedAt).Minutes())
}

// Activate transitions the session to active. Activating an already
// active session is a no-op; ended and errored sessions stay put.
func (s *Session) Activate() error {
	switch s.Status {
	case SessionStatusPending:
		s.Status = SessionStatusActive
		return nil
	case SessionStatusActive:
		return nil
	case SessionStatusEnded:
		return ErrSessionEnded
	default:
		return ErrInvalidTransition
	}
}

// End transitions the session to ended. There is no way back out of
// ended; callers treat ErrSessionEnded as an idempotent success signal.
func (s *Session) End() error {
	if s.Status == SessionStatusEnded {
		return ErrSessionEnded
	}
	s.Status = SessionStatusEnded
	return nil
}

// Fail marks the session as errored after an unrecoverable relay failure.
// An ended session is never resurrected into error.
func (s *Session) Fail() error {
	if s.Status == SessionStatusEnded {
		return ErrSessionEnded
	}
	s.Status = SessionStatusError
	return nil
}

// AppendTranscript folds a finalized segment into the flat transcript
// buffer, joining segments with a single newline. Empty text is a no-op
// and reports false. The structured segment is pushed onto the bounded
// recent history and a newly observed diarized speaker joins the set.
func (s *Session) AppendTranscript(seg TranscriptSegment) bool {
	text := strings.TrimSpace(seg.Text)
	if text == "" {
		return false
	}
	if s.Transcript == "" {
		s.Transcript = text
	} else {
		s.Transcript = s.Transcript + "\n" + text
	}
	seg.Text = text
	s.Segments = append(s.Segments, seg)
	if len(s.Segments) > maxStoredSegments {
		s.Segments = s.Segments[len(s.Segments)-maxStoredSegments:]
	}
	if seg.Speaker != "" {
		s.AddSpeaker(seg.Speaker)
	}
	return true
}

// AddSpeaker adds a speaker to the observed set if not already present
func (s *Session) AddSpeaker(name string) bool {
	for _, existing := range s.Speakers {
		if existing == name {
			return false
		}
	}
	s.Speakers = append(s.Speakers, name)
	return true
}

// TranscriptTail returns the trailing slice of the transcript buffer,
// at most maxChars characters. maxChars <= 0 returns the full buffer.
// Context windows always favor the most recent speech.
func (s *Session) TranscriptTail(maxChars int) string {
	if maxChars <= 0 || len(s.Transcript) <= maxChars {
		return s.Transcript
	}
	return s.Transcript[len(s.Transcript)-maxChars:]
}

// Touch refreshes the last-activity timestamp
func (s *Session) Touch() {
	s.LastActivityAt = time.Now().UTC()
}
