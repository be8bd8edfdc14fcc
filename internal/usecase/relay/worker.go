package relay

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/livenotes-ai/livenotes/internal/domain/entities"
	"github.com/livenotes-ai/livenotes/internal/domain/repositories"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/events"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/external/stt"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/metrics"
	usecaseErrors "github.com/livenotes-ai/livenotes/internal/usecase/errors"
	"github.com/livenotes-ai/livenotes/internal/usecase/transcript"
)

const (
	defaultWriteTimeout = 5 * time.Second
	defaultPingInterval = 20 * time.Second
	outboundBuffer      = 32
	inboundBuffer       = 16
)

// Teardown reasons, recorded on the session-ended metric.
const (
	reasonDisconnect    = "disconnect"
	reasonProviderError = "provider_error"
	reasonStreamEnded   = "stream_ended"
	reasonShutdown      = "shutdown"
)

// Conn is the subset of the websocket connection the worker uses.
// *websocket.Conn satisfies it; tests use a scripted fake.
type Conn interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Config tunes per-connection behavior
type Config struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
	SampleRate   int
}

// Dependencies carries everything a worker needs, built once per
// connection by the stream handler.
type Dependencies struct {
	Conn        Conn
	OwnerID     string
	Provider    stt.Provider
	Store       repositories.SessionStore
	Transcripts transcript.Service
	Events      *events.Publisher
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	Config      Config
}

type inboundFrame struct {
	messageType int
	data        []byte
	err         error
}

// Worker relays one client connection: control and audio frames in,
// transcript events out. A single event-loop goroutine owns all mutable
// per-connection state, so transcript appends for the bound session happen
// serially in provider-emission order without locks.
type Worker struct {
	conn        Conn
	ownerID     string
	provider    stt.Provider
	store       repositories.SessionStore
	transcripts transcript.Service
	events      *events.Publisher
	metrics     *metrics.Metrics
	logger      *zap.Logger
	cfg         Config

	connID string

	// sessionID is set exactly once by the session_started control frame
	// and only touched from the event loop and the once-only teardown.
	sessionID string

	stream   stt.Stream
	outbound chan []byte

	ctx          context.Context
	cancel       context.CancelFunc
	teardownOnce sync.Once
}

// NewWorker creates a relay worker for one accepted connection
func NewWorker(deps Dependencies) *Worker {
	connID := uuid.New().String()[:8]
	return &Worker{
		conn:        deps.Conn,
		ownerID:     deps.OwnerID,
		provider:    deps.Provider,
		store:       deps.Store,
		transcripts: deps.Transcripts,
		events:      deps.Events,
		metrics:     deps.Metrics,
		logger: deps.Logger.With(
			zap.String("conn_id", connID),
			zap.String("owner_id", deps.OwnerID),
		),
		cfg:      deps.Config,
		connID:   connID,
		outbound: make(chan []byte, outboundBuffer),
	}
}

// ID returns the worker's connection identifier
func (w *Worker) ID() string {
	return w.connID
}

// Cancel stops the worker; used by the tracker during shutdown
func (w *Worker) Cancel() {
	if w.cancel != nil {
		w.cancel()
	}
}

// Run drives the connection until disconnect, fatal provider error or
// cancellation. Teardown runs exactly once on every exit path, including
// a panic inside the loop.
func (w *Worker) Run(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	defer w.cancel()

	start := time.Now()
	if w.metrics != nil {
		w.metrics.RecordConnectionStart()
		defer func() {
			w.metrics.RecordConnectionEnd(time.Since(start).Seconds())
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("❌ Relay worker panic", zap.Any("panic", r))
			w.teardown(true, reasonProviderError)
		}
	}()

	stream, err := w.provider.Start(w.ctx, stt.StreamOptions{
		SampleRate:     w.cfg.SampleRate,
		InterimResults: true,
		Diarize:        true,
	})
	if err != nil {
		w.logger.Error("❌ Failed to start transcription stream", zap.Error(err))
		return fmt.Errorf("%w: %v", usecaseErrors.ErrStreamStartFailed, err)
	}
	w.stream = stream

	w.logger.Info("🔌 Streaming connection opened",
		zap.String("provider", w.provider.Name()))

	inbound := make(chan inboundFrame, inboundBuffer)
	go w.readLoop(inbound)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		w.writeLoop()
	}()

	failed, reason := w.loop(inbound)
	w.teardown(failed, reason)

	w.cancel()
	<-writerDone

	w.logger.Info("🔌 Streaming connection closed", zap.String("reason", reason))
	return nil
}

// loop is the single-goroutine event loop multiplexing client frames and
// provider transcript events. Reported reason feeds the teardown.
func (w *Worker) loop(inbound <-chan inboundFrame) (failed bool, reason string) {
	streamEvents := w.stream.Events()

	for {
		select {
		case <-w.ctx.Done():
			return false, reasonShutdown

		case frame, ok := <-inbound:
			if !ok || frame.err != nil {
				if frame.err != nil {
					w.logger.Debug("👋 Client disconnected", zap.Error(frame.err))
				}
				return false, reasonDisconnect
			}
			switch frame.messageType {
			case websocket.TextMessage:
				w.handleControl(frame.data)
			case websocket.BinaryMessage:
				w.handleAudio(frame.data)
			}

		case ev, ok := <-streamEvents:
			if !ok {
				if err := w.stream.Err(); err != nil {
					w.logger.Error("❌ Transcription stream failed", zap.Error(err))
					return true, reasonProviderError
				}
				return false, reasonStreamEnded
			}
			w.handleTranscript(ev)
		}
	}
}

func (w *Worker) readLoop(out chan<- inboundFrame) {
	defer close(out)
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			select {
			case out <- inboundFrame{err: err}:
			case <-w.ctx.Done():
			}
			return
		}
		select {
		case out <- inboundFrame{messageType: messageType, data: data}:
		case <-w.ctx.Done():
			return
		}
	}
}

// writeLoop is the only goroutine writing to the socket, so outbound
// frames keep their queue order.
func (w *Worker) writeLoop() {
	writeTimeout := w.cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	pingInterval := w.cfg.PingInterval
	if pingInterval <= 0 {
		pingInterval = defaultPingInterval
	}

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			deadline := time.Now().Add(writeTimeout)
			_ = w.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			_ = w.conn.Close()
			return

		case data := <-w.outbound:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				w.logger.Warn("⚠️ Failed to write frame", zap.Error(err))
				w.cancel()
				return
			}

		case <-pingTicker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := w.conn.WriteControl(websocket.PingMessage, []byte("ping"), deadline); err != nil {
				w.cancel()
				return
			}
		}
	}
}

func (w *Worker) handleControl(data []byte) {
	msg, err := DecodeControl(data)
	if err != nil {
		// Recoverable per-message error; the connection stays open.
		w.logger.Warn("⚠️ Dropping malformed control frame", zap.Error(err))
		return
	}

	switch msg.Type {
	case ControlSessionStarted:
		w.bindSession(msg.SessionID)
	case ControlPing:
		w.send(EncodePong())
	default:
		w.logger.Warn("⚠️ Dropping unknown control frame", zap.String("type", msg.Type))
	}
}

// bindSession associates this connection with a session and flips its
// lifecycle to active. The first binding wins; later attempts are ignored.
func (w *Worker) bindSession(sessionID string) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		w.logger.Warn("⚠️ session_started frame without session_id")
		w.send(EncodeError("session_id is required"))
		return
	}
	if w.sessionID != "" {
		w.logger.Warn("⚠️ Connection already bound, ignoring session_started",
			zap.String("bound_session_id", w.sessionID),
			zap.String("session_id", sessionID))
		return
	}

	session, err := w.store.FindByID(w.ctx, sessionID)
	if err != nil {
		w.logger.Warn("⚠️ session_started for unknown session",
			zap.String("session_id", sessionID), zap.Error(err))
		w.send(EncodeError("session not found"))
		return
	}

	if err := session.Activate(); err != nil {
		w.logger.Warn("⚠️ Cannot activate session",
			zap.String("session_id", sessionID), zap.Error(err))
		w.send(EncodeError("session cannot be activated"))
		return
	}
	if err := w.store.Save(w.ctx, session); err != nil {
		w.logger.Error("❌ Failed to store session activation",
			zap.String("session_id", sessionID), zap.Error(err))
		w.send(EncodeError("failed to activate session"))
		return
	}

	w.sessionID = sessionID
	w.logger = w.logger.With(zap.String("session_id", sessionID))
	w.publishSessionStatus(session)

	w.logger.Info("✅ Session bound and active")
	w.send(EncodeAck("Session started"))
}

func (w *Worker) handleAudio(data []byte) {
	if w.metrics != nil {
		w.metrics.RecordAudioReceived(len(data))
	}
	if w.sessionID == "" {
		// Forwarded anyway: resulting finals are dropped until a
		// session_started frame arrives.
		w.logger.Debug("📥 Audio frame before session binding", zap.Int("bytes", len(data)))
	}
	if err := w.stream.SendAudio(w.ctx, data); err != nil {
		// The stream's event channel closes on fatal errors, which the
		// event loop picks up as the terminal signal.
		w.logger.Warn("⚠️ Failed to forward audio frame", zap.Error(err))
	}
}

func (w *Worker) handleTranscript(ev stt.Event) {
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}

	update := TranscriptUpdate{
		Text:       text,
		IsFinal:    ev.IsFinal,
		Timestamp:  ev.Timestamp,
		Confidence: ev.Confidence,
	}
	if ev.IsFinal {
		update.Speaker = ev.Speaker
	}
	w.send(EncodeTranscriptUpdate(update))

	if !ev.IsFinal {
		if w.metrics != nil {
			w.metrics.RecordInterimTranscript()
		}
		return
	}

	if w.metrics != nil {
		w.metrics.RecordFinalTranscript()
	}
	if w.sessionID == "" {
		w.logger.Debug("📥 Final transcript dropped, no session bound",
			zap.Int("chars", len(text)))
		return
	}

	segment := entities.TranscriptSegment{
		Speaker:    ev.Speaker,
		Text:       text,
		Timestamp:  ev.Timestamp,
		Confidence: ev.Confidence,
	}
	if err := w.transcripts.Append(w.ctx, w.sessionID, segment); err != nil {
		w.logger.Error("❌ Failed to append transcript segment", zap.Error(err))
		return
	}

	if w.events != nil {
		_ = w.events.PublishTranscript(w.ctx, events.TranscriptEvent{
			SessionID:  w.sessionID,
			Speaker:    ev.Speaker,
			Text:       text,
			Timestamp:  ev.Timestamp,
			Confidence: ev.Confidence,
		})
	}
}

// send queues an encoded frame for the writer goroutine
func (w *Worker) send(data []byte, err error) {
	if err != nil {
		w.logger.Error("❌ Failed to encode frame", zap.Error(err))
		return
	}
	select {
	case w.outbound <- data:
	case <-w.ctx.Done():
	}
}

// teardown stops the provider stream and settles the bound session's
// lifecycle. Best-effort on every step: failures are logged, never raised,
// and never prevent the connection from closing.
func (w *Worker) teardown(failed bool, reason string) {
	w.teardownOnce.Do(func() {
		if w.stream != nil {
			if err := w.stream.Close(); err != nil {
				w.logger.Warn("⚠️ Failed to stop transcription stream", zap.Error(err))
			}
		}

		if w.sessionID == "" {
			return
		}

		// The worker context is usually canceled by now.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		session, err := w.store.FindByID(ctx, w.sessionID)
		if err != nil {
			w.logger.Warn("⚠️ Failed to load session during teardown", zap.Error(err))
			return
		}

		if failed {
			err = session.Fail()
		} else {
			err = session.End()
		}
		if err != nil {
			// Already ended, nothing left to settle.
			w.logger.Debug("👋 Session already settled", zap.Error(err))
			return
		}

		if err := w.store.Save(ctx, session); err != nil {
			w.logger.Warn("⚠️ Failed to store session teardown", zap.Error(err))
			return
		}

		if w.metrics != nil {
			w.metrics.RecordSessionEnded(reason)
		}
		w.publishSessionStatus(session)

		w.logger.Info("👋 Session settled",
			zap.String("status", string(session.Status)),
			zap.String("reason", reason))
	})
}

func (w *Worker) publishSessionStatus(session *entities.Session) {
	if w.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = w.events.PublishSessionEvent(ctx, events.SessionEvent{
		SessionID: session.ID,
		OwnerID:   session.OwnerID,
		Status:    string(session.Status),
		Platform:  string(session.Platform),
	})
}
