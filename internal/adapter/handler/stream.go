package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/livenotes-ai/livenotes/internal/domain/repositories"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/events"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/external/stt"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/metrics"
	"github.com/livenotes-ai/livenotes/internal/usecase/relay"
	"github.com/livenotes-ai/livenotes/internal/usecase/transcript"
)

// maxControlFrameBytes bounds inbound text frames; audio frames are capped
// by the same read limit.
const maxControlFrameBytes = 1 << 20

// StreamHandler upgrades client connections and runs one relay worker per
// connection for its whole lifetime.
type StreamHandler struct {
	provider    stt.Provider
	store       repositories.SessionStore
	transcripts transcript.Service
	events      *events.Publisher
	metrics     *metrics.Metrics
	tracker     *relay.Tracker
	logger      *zap.Logger
	cfg         relay.Config
	upgrader    websocket.Upgrader
}

// NewStreamHandler creates a new streaming handler
func NewStreamHandler(
	provider stt.Provider,
	store repositories.SessionStore,
	transcripts transcript.Service,
	publisher *events.Publisher,
	m *metrics.Metrics,
	tracker *relay.Tracker,
	cfg relay.Config,
	logger *zap.Logger,
) *StreamHandler {
	return &StreamHandler{
		provider:    provider,
		store:       store,
		transcripts: transcripts,
		events:      publisher,
		metrics:     m,
		tracker:     tracker,
		logger:      logger,
		cfg:         cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser clients connect from arbitrary meeting pages.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Stream godoc
// @Summary      Open the realtime streaming connection
// @Description  Websocket endpoint consuming control and audio frames and producing transcript updates
// @Tags         streaming
// @Param        owner_id path string true "Owner ID"
// @Router       /ws/{owner_id} [get]
func (h *StreamHandler) Stream(c echo.Context) error {
	ownerID := c.Param("owner_id")
	if ownerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "owner_id is required")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("⚠️ Websocket upgrade failed",
			zap.String("owner_id", ownerID), zap.Error(err))
		return nil
	}
	conn.SetReadLimit(maxControlFrameBytes)

	worker := relay.NewWorker(relay.Dependencies{
		Conn:        conn,
		OwnerID:     ownerID,
		Provider:    h.provider,
		Store:       h.store,
		Transcripts: h.transcripts,
		Events:      h.events,
		Metrics:     h.metrics,
		Logger:      h.logger,
		Config:      h.cfg,
	})

	unregister := h.tracker.Register(worker.ID(), worker.Cancel)
	defer unregister()

	// Run blocks until disconnect; the worker owns teardown.
	if err := worker.Run(c.Request().Context()); err != nil {
		h.logger.Warn("⚠️ Relay worker exited with error",
			zap.String("owner_id", ownerID), zap.Error(err))
	}
	return nil
}
