package stt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"

	"github.com/livenotes-ai/livenotes/pkg/config"
)

const (
	defaultSampleRate = 16000
	eventBuffer       = 64

	// utteranceEndMS controls how much trailing silence closes an utterance.
	utteranceEndMS = 1000
)

// ErrStreamClosed is returned by SendAudio after the stream has ended
var ErrStreamClosed = errors.New("transcription stream closed")

// AssemblyAIProvider opens realtime transcription streams against
// AssemblyAI's streaming API.
type AssemblyAIProvider struct {
	apiKey string
	logger *zap.Logger
}

// NewAssemblyAIProvider creates an AssemblyAI streaming provider using the
// provided config. If cfg is nil, falls back to environment variables.
func NewAssemblyAIProvider(cfg *config.AssemblyAIConfig, logger *zap.Logger) *AssemblyAIProvider {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}
	return &AssemblyAIProvider{
		apiKey: apiKey,
		logger: logger,
	}
}

// Name returns the provider identifier
func (p *AssemblyAIProvider) Name() string {
	return "assemblyai"
}

// Start opens a realtime transcription stream. Provider callbacks are
// bridged onto the event channel so the caller consumes a single ordered
// stream instead of registering handlers.
func (p *AssemblyAIProvider) Start(ctx context.Context, opts StreamOptions) (Stream, error) {
	sampleRate := opts.SampleRate
	if sampleRate == 0 {
		sampleRate = defaultSampleRate
	}

	s := &assemblyAIStream{
		events: make(chan Event, eventBuffer),
		logger: p.logger,
	}

	transcriber := &aai.RealTimeTranscriber{
		OnPartialTranscript: func(transcript aai.PartialTranscript) {
			if !opts.InterimResults {
				return
			}
			s.push(Event{
				Text:       transcript.Text,
				Timestamp:  float64(transcript.AudioStart) / 1000,
				Confidence: transcript.Confidence,
			})
		},
		OnFinalTranscript: func(transcript aai.FinalTranscript) {
			s.push(Event{
				Text:       transcript.Text,
				IsFinal:    true,
				Timestamp:  float64(transcript.AudioStart) / 1000,
				Confidence: transcript.Confidence,
			})
		},
		OnSessionTerminated: func(event aai.SessionTerminated) {
			s.terminate(nil)
		},
		OnError: func(err error) {
			p.logger.Error("❌ Transcription stream error", zap.Error(err))
			s.terminate(err)
		},
	}

	client := aai.NewRealTimeClientWithOptions(
		aai.WithRealTimeAPIKey(p.apiKey),
		aai.WithRealTimeSampleRate(sampleRate),
		aai.WithRealTimeTranscriber(transcriber),
	)

	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect transcription stream: %w", err)
	}

	if err := client.SetEndUtteranceSilenceThreshold(ctx, utteranceEndMS); err != nil {
		p.logger.Warn("⚠️ Failed to set utterance end threshold, using provider default",
			zap.Error(err))
	}

	s.client = client
	p.logger.Info("✅ Transcription stream started",
		zap.String("provider", p.Name()),
		zap.Int("sample_rate", sampleRate),
	)
	return s, nil
}

// assemblyAIStream bridges SDK callbacks onto a channel. Callbacks arrive
// on a single SDK goroutine; the mutex orders them against Close from the
// consumer side so the channel is closed exactly once with no writer left.
type assemblyAIStream struct {
	client *aai.RealTimeClient
	logger *zap.Logger

	mu     sync.Mutex
	events chan Event
	closed bool
	err    error
}

// SendAudio forwards raw audio bytes to the provider ingest
func (s *assemblyAIStream) SendAudio(ctx context.Context, data []byte) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrStreamClosed
	}
	return s.client.Send(ctx, data)
}

// Events returns the transcript event channel
func (s *assemblyAIStream) Events() <-chan Event {
	return s.events
}

// Err reports the terminal stream error once Events is closed
func (s *assemblyAIStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the stream. Graceful disconnect lets the provider flush its
// session_terminated event, which closes the channel via the callback; the
// fallback terminate covers disconnects that never see that event.
func (s *assemblyAIStream) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.client.Disconnect(ctx, true)
	s.terminate(nil)
	if err != nil {
		return fmt.Errorf("failed to disconnect transcription stream: %w", err)
	}
	return nil
}

func (s *assemblyAIStream) push(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
		s.logger.Warn("⚠️ Transcript event dropped, consumer lagging",
			zap.Bool("is_final", ev.IsFinal),
		)
	}
}

func (s *assemblyAIStream) terminate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	close(s.events)
}
