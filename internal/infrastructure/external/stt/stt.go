// Package stt provides streaming speech-to-text providers.
package stt

import "context"

// Event is a single transcript update emitted by a provider stream.
// Interim events carry provisional text that later events may rewrite;
// final events are settled and safe to persist. Speaker is only set on
// final events, and only when the provider supports diarization.
type Event struct {
	Text       string
	IsFinal    bool
	Timestamp  float64 // seconds from stream start
	Confidence float64
	Speaker    string
}

// StreamOptions configures a transcription stream.
type StreamOptions struct {
	SampleRate     int
	Language       string
	InterimResults bool
	Diarize        bool
}

// Stream is one live transcription stream. Audio goes in via SendAudio,
// transcript events come out of Events. The channel closes when the
// stream ends; Err reports the terminal error after close, nil when the
// stream ended cleanly.
type Stream interface {
	// SendAudio forwards raw audio bytes to the provider ingest
	SendAudio(ctx context.Context, data []byte) error

	// Events returns the transcript event channel
	Events() <-chan Event

	// Err reports the terminal stream error once Events is closed
	Err() error

	// Close stops the stream and releases resources
	Close() error
}

// Provider opens transcription streams against a speech-to-text service.
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// Start opens a new transcription stream
	Start(ctx context.Context, opts StreamOptions) (Stream, error)
}
