package stt

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ScriptedUtterance is one mock utterance with progressive interim
// transcripts followed by exactly one final transcript.
type ScriptedUtterance struct {
	Partials   []string
	Final      string
	Speaker    string
	Confidence float64
}

// DefaultScript provides sample utterances for local development.
var DefaultScript = []ScriptedUtterance{
	{
		Partials:   []string{"Let's get", "Let's get started with"},
		Final:      "Let's get started with the roadmap review",
		Speaker:    "Speaker 0",
		Confidence: 0.95,
	},
	{
		Partials:   []string{"The launch", "The launch date moved"},
		Final:      "The launch date moved to next Thursday",
		Speaker:    "Speaker 1",
		Confidence: 0.92,
	},
	{
		Partials:   []string{"Action item", "Action item for me"},
		Final:      "Action item for me is the pricing doc",
		Speaker:    "Speaker 0",
		Confidence: 0.9,
	},
}

// MockProvider is a scripted speech-to-text provider for development and
// tests. Each audio frame advances the script one step: interims first,
// then the final. Emission is synchronous so tests stay deterministic.
type MockProvider struct {
	script []ScriptedUtterance
	logger *zap.Logger
}

// NewMockProvider creates a mock provider running the given script.
// A nil script plays DefaultScript.
func NewMockProvider(script []ScriptedUtterance, logger *zap.Logger) *MockProvider {
	if script == nil {
		script = DefaultScript
	}
	return &MockProvider{
		script: script,
		logger: logger,
	}
}

// Name returns the provider identifier
func (p *MockProvider) Name() string {
	return "mock"
}

// Start opens a scripted transcription stream
func (p *MockProvider) Start(ctx context.Context, opts StreamOptions) (Stream, error) {
	p.logger.Info("✅ Transcription stream started",
		zap.String("provider", p.Name()),
		zap.Int("utterances", len(p.script)),
	)
	return &mockStream{
		script:   p.script,
		interims: opts.InterimResults,
		diarize:  opts.Diarize,
		events:   make(chan Event, eventBuffer),
	}, nil
}

type mockStream struct {
	script   []ScriptedUtterance
	interims bool
	diarize  bool

	mu        sync.Mutex
	utterance int
	step      int
	timestamp float64
	events    chan Event
	closed    bool
	err       error
}

// SendAudio advances the script by one step per frame
func (s *mockStream) SendAudio(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStreamClosed
	}
	if s.utterance >= len(s.script) {
		return nil
	}

	utt := s.script[s.utterance]
	s.timestamp += 0.5

	if s.step < len(utt.Partials) {
		if s.interims {
			s.emit(Event{
				Text:      utt.Partials[s.step],
				Timestamp: s.timestamp,
			})
		}
		s.step++
		return nil
	}

	ev := Event{
		Text:       utt.Final,
		IsFinal:    true,
		Timestamp:  s.timestamp,
		Confidence: utt.Confidence,
	}
	if s.diarize {
		ev.Speaker = utt.Speaker
	}
	s.emit(ev)
	s.utterance++
	s.step = 0
	return nil
}

// Events returns the transcript event channel
func (s *mockStream) Events() <-chan Event {
	return s.events
}

// Err reports the terminal stream error once Events is closed
func (s *mockStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the scripted stream
func (s *mockStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	close(s.events)
	return nil
}

// Fail ends the stream with a terminal error, simulating an unrecoverable
// provider failure. Test hook, not part of the Stream contract.
func (s *mockStream) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	close(s.events)
}

func (s *mockStream) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}
