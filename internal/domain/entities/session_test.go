package entities

import (
	"strings"
	"testing"
)

func TestDetectPlatform(t *testing.T) {
	cases := []struct {
		url  string
		want MeetingPlatform
	}{
		{"https://zoom.us/j/123456789", PlatformZoom},
		{"https://us02web.ZOOM.us/j/987", PlatformZoom},
		{"https://teams.microsoft.com/l/meetup-join/abc", PlatformTeams},
		{"https://teams.live.com/meet/xyz", PlatformTeams},
		{"https://meet.google.com/abc-defg-hij", PlatformMeet},
		{"https://example.com/room/1", PlatformUnknown},
	}

	for _, tc := range cases {
		if got := DetectPlatform(tc.url); got != tc.want {
			t.Errorf("DetectPlatform(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestNewSessionStartsPending(t *testing.T) {
	s := NewSession("bot-1", "user-1", "bot-1", DefaultBotName, "https://zoom.us/j/123")

	if s.Status != SessionStatusPending {
		t.Errorf("new session status = %q, want %q", s.Status, SessionStatusPending)
	}
	if s.Platform != PlatformZoom {
		t.Errorf("platform = %q, want %q", s.Platform, PlatformZoom)
	}
	if s.Transcript != "" {
		t.Errorf("new session transcript = %q, want empty", s.Transcript)
	}
	if len(s.Speakers) != 0 {
		t.Errorf("new session speakers = %v, want empty", s.Speakers)
	}
}

func TestActivate(t *testing.T) {
	s := NewSession("s1", "u1", "b1", DefaultBotName, "https://zoom.us/j/1")

	if err := s.Activate(); err != nil {
		t.Fatalf("Activate from pending: %v", err)
	}
	if s.Status != SessionStatusActive {
		t.Fatalf("status = %q, want active", s.Status)
	}

	// Activating twice is a no-op
	if err := s.Activate(); err != nil {
		t.Fatalf("Activate when active: %v", err)
	}

	if err := s.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	if err := s.Activate(); err != ErrSessionEnded {
		t.Fatalf("Activate after end = %v, want ErrSessionEnded", err)
	}
	if s.Status != SessionStatusEnded {
		t.Fatalf("status mutated after illegal transition: %q", s.Status)
	}
}

func TestNoTransitionOutOfEnded(t *testing.T) {
	s := NewSession("s1", "u1", "b1", DefaultBotName, "https://zoom.us/j/1")
	if err := s.End(); err != nil {
		t.Fatalf("End: %v", err)
	}

	if err := s.End(); err != ErrSessionEnded {
		t.Errorf("second End = %v, want ErrSessionEnded", err)
	}
	if err := s.Fail(); err != ErrSessionEnded {
		t.Errorf("Fail after end = %v, want ErrSessionEnded", err)
	}
	if s.Status != SessionStatusEnded {
		t.Errorf("status = %q, want ended", s.Status)
	}
}

func TestEndFromErrorAllowed(t *testing.T) {
	s := NewSession("s1", "u1", "b1", DefaultBotName, "https://zoom.us/j/1")
	if err := s.Fail(); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if err := s.End(); err != nil {
		t.Fatalf("End from error: %v", err)
	}
	if s.Status != SessionStatusEnded {
		t.Fatalf("status = %q, want ended", s.Status)
	}
}

func TestAppendTranscript(t *testing.T) {
	s := NewSession("s1", "u1", "b1", DefaultBotName, "https://zoom.us/j/1")

	s.AppendTranscript(TranscriptSegment{Text: "point one"})
	s.AppendTranscript(TranscriptSegment{Text: "point two"})

	if s.Transcript != "point one\npoint two" {
		t.Errorf("transcript = %q, want %q", s.Transcript, "point one\npoint two")
	}
	if len(s.Segments) != 2 {
		t.Errorf("segments = %d, want 2", len(s.Segments))
	}
}

func TestAppendTranscriptEmptyIsNoop(t *testing.T) {
	s := NewSession("s1", "u1", "b1", DefaultBotName, "https://zoom.us/j/1")
	s.AppendTranscript(TranscriptSegment{Text: "hello team"})

	s.AppendTranscript(TranscriptSegment{Text: ""})
	s.AppendTranscript(TranscriptSegment{Text: "   "})

	if s.Transcript != "hello team" {
		t.Errorf("transcript = %q, want unchanged", s.Transcript)
	}
	if len(s.Segments) != 1 {
		t.Errorf("segments = %d, want 1", len(s.Segments))
	}
}

func TestAppendTranscriptTracksSpeakers(t *testing.T) {
	s := NewSession("s1", "u1", "b1", DefaultBotName, "https://zoom.us/j/1")

	s.AppendTranscript(TranscriptSegment{Text: "hi", Speaker: "Speaker 0"})
	s.AppendTranscript(TranscriptSegment{Text: "hey", Speaker: "Speaker 1"})
	s.AppendTranscript(TranscriptSegment{Text: "again", Speaker: "Speaker 0"})

	if len(s.Speakers) != 2 {
		t.Fatalf("speakers = %v, want 2 entries", s.Speakers)
	}
	if s.Speakers[0] != "Speaker 0" || s.Speakers[1] != "Speaker 1" {
		t.Errorf("speakers = %v", s.Speakers)
	}
}

func TestSegmentHistoryBounded(t *testing.T) {
	s := NewSession("s1", "u1", "b1", DefaultBotName, "https://zoom.us/j/1")
	for i := 0; i < maxStoredSegments+25; i++ {
		s.AppendTranscript(TranscriptSegment{Text: "x"})
	}

	if len(s.Segments) != maxStoredSegments {
		t.Errorf("segments = %d, want %d", len(s.Segments), maxStoredSegments)
	}
}

func TestTranscriptTail(t *testing.T) {
	s := NewSession("s1", "u1", "b1", DefaultBotName, "https://zoom.us/j/1")
	s.AppendTranscript(TranscriptSegment{Text: "the quick brown fox"})

	tail := s.TranscriptTail(9)
	if tail != "brown fox" {
		t.Errorf("tail = %q, want %q", tail, "brown fox")
	}
	if len(tail) > 9 {
		t.Errorf("tail length = %d, want <= 9", len(tail))
	}
	if !strings.HasSuffix(s.Transcript, tail) {
		t.Errorf("tail %q is not a suffix of %q", tail, s.Transcript)
	}

	if got := s.TranscriptTail(0); got != s.Transcript {
		t.Errorf("tail(0) = %q, want full buffer", got)
	}
	if got := s.TranscriptTail(10000); got != s.Transcript {
		t.Errorf("tail(10000) = %q, want full buffer", got)
	}
}
