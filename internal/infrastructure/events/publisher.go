// Package events publishes session lifecycle and transcript events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/livenotes-ai/livenotes/internal/infrastructure/metrics"
)

// Config holds Kafka publisher configuration.
type Config struct {
	Enabled         bool
	Brokers         []string
	SessionTopic    string
	TranscriptTopic string
}

// SessionEvent is published on session lifecycle changes.
type SessionEvent struct {
	SessionID string    `json:"session_id"`
	OwnerID   string    `json:"owner_id,omitempty"`
	Status    string    `json:"status"`
	Platform  string    `json:"platform,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TranscriptEvent is published for every final transcript segment.
type TranscriptEvent struct {
	SessionID  string  `json:"session_id"`
	Speaker    string  `json:"speaker,omitempty"`
	Text       string  `json:"text"`
	Timestamp  float64 `json:"timestamp"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Publisher writes events to Kafka. When disabled it only logs, which
// keeps local development working without a broker.
type Publisher struct {
	enabled          bool
	sessionWriter    *kafka.Writer
	transcriptWriter *kafka.Writer
	sessionTopic     string
	transcriptTopic  string
	logger           *zap.Logger
	metrics          *metrics.Metrics
}

// NewPublisher creates a Kafka publisher. With Enabled false or no brokers
// configured it runs in log-only mode.
func NewPublisher(cfg Config, logger *zap.Logger, m *metrics.Metrics) *Publisher {
	p := &Publisher{
		enabled:         cfg.Enabled && len(cfg.Brokers) > 0,
		sessionTopic:    cfg.SessionTopic,
		transcriptTopic: cfg.TranscriptTopic,
		logger:          logger,
		metrics:         m,
	}

	if !p.enabled {
		logger.Info("📤 Event publishing disabled, running in log-only mode")
		return p
	}

	p.sessionWriter = newWriter(cfg.Brokers, cfg.SessionTopic)
	p.transcriptWriter = newWriter(cfg.Brokers, cfg.TranscriptTopic)

	logger.Info("✅ Kafka event publisher initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("session_topic", cfg.SessionTopic),
		zap.String("transcript_topic", cfg.TranscriptTopic))

	return p
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}
}

// PublishSessionEvent publishes a session lifecycle event keyed by session ID.
func (p *Publisher) PublishSessionEvent(ctx context.Context, event SessionEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return p.publish(ctx, p.sessionWriter, p.sessionTopic, "session_status", event.SessionID, event)
}

// PublishTranscript publishes a final transcript segment keyed by session ID.
func (p *Publisher) PublishTranscript(ctx context.Context, event TranscriptEvent) error {
	return p.publish(ctx, p.transcriptWriter, p.transcriptTopic, "transcript_final", event.SessionID, event)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if !p.enabled {
		p.logger.Debug("📤 Event (log-only)",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.ByteString("payload", data))
		return nil
	}

	start := time.Now()
	err = writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	})
	if p.metrics != nil {
		p.metrics.RecordEventPublish(topic, err, time.Since(start).Seconds())
	}
	if err != nil {
		p.logger.Error("❌ Failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err))
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Close flushes and closes the Kafka writers.
func (p *Publisher) Close() error {
	if !p.enabled {
		return nil
	}
	if err := p.sessionWriter.Close(); err != nil {
		return fmt.Errorf("failed to close session writer: %w", err)
	}
	if err := p.transcriptWriter.Close(); err != nil {
		return fmt.Errorf("failed to close transcript writer: %w", err)
	}
	return nil
}
