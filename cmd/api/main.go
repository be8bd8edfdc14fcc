package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/livenotes-ai/livenotes/docs"

	"github.com/livenotes-ai/livenotes/internal/adapter/handler"
	"github.com/livenotes-ai/livenotes/internal/adapter/repository"
	"github.com/livenotes-ai/livenotes/internal/domain/repositories"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/cache"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/events"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/external/recall"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/external/stt"
	"github.com/livenotes-ai/livenotes/internal/infrastructure/metrics"
	"github.com/livenotes-ai/livenotes/internal/usecase/qa"
	"github.com/livenotes-ai/livenotes/internal/usecase/relay"
	"github.com/livenotes-ai/livenotes/internal/usecase/session"
	"github.com/livenotes-ai/livenotes/internal/usecase/transcript"
	pkgai "github.com/livenotes-ai/livenotes/pkg/ai"
	"github.com/livenotes-ai/livenotes/pkg/config"
	pkgvalidator "github.com/livenotes-ai/livenotes/pkg/validator"
)

// @title           Livenotes API
// @version         1.0
// @description     Live meeting assistant: bot join, realtime transcription relay, briefs and in-meeting Q&A

// @contact.name   API Support
// @contact.email  support@livenotes.ai

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	// Initialize dependencies
	logger.Info("🔧 Initializing dependencies...")

	m := metrics.NewMetrics(prometheus.DefaultRegisterer)

	// Session store: Redis in deployments, in-memory for local development
	var store repositories.SessionStore
	if cfg.UseMemoryStore() {
		logger.Info("📦 No Redis configured, using in-memory session store")
		store = cache.NewMemorySessionStore()
	} else {
		logger.Info("📦 Connecting to Redis...", zap.String("addr", cfg.GetRedisAddr()))
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			logger.Fatal("❌ Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		store = repository.NewSessionRepository(redisClient)
	}

	// Event publisher (log-only unless brokers are configured)
	publisher := events.NewPublisher(events.Config{
		Enabled:         cfg.Events.Enabled,
		Brokers:         cfg.Events.Brokers,
		SessionTopic:    cfg.Events.SessionTopic,
		TranscriptTopic: cfg.Events.TranscriptTopic,
	}, logger, m)
	defer publisher.Close()

	// Bot automation provider
	logger.Info("🤖 Initializing bot provider...", zap.Bool("mock", cfg.UseMockBots()))
	bots := recall.NewClient(&cfg.Recall, logger, cfg.UseMockBots())

	// Speech-to-text provider
	var provider stt.Provider
	if cfg.UseMockSTT() {
		logger.Info("🎙️ No transcription credentials, using scripted provider")
		provider = stt.NewMockProvider(nil, logger)
	} else {
		provider = stt.NewAssemblyAIProvider(&cfg.Assembly, logger)
	}

	// Generative-text provider
	generator := pkgai.NewOpenAIClient(&cfg.OpenAI)

	// Usecase services
	logger.Info("⚙️  Initializing services...")
	transcripts := transcript.NewTranscriptService(store, logger)
	sessions := session.NewSessionService(store, bots, publisher, m, cfg.GetWebsocketBaseURL(), logger)
	assistant := qa.NewQAService(store, transcripts, generator, bots, m, logger)

	// Relay worker tracking for graceful drain
	tracker := relay.NewTracker()

	// Handlers and routes
	logger.Info("🛣️  Setting up routes...")
	sessionHandler := handler.NewSessionHandler(sessions, assistant, logger)
	streamHandler := handler.NewStreamHandler(
		provider, store, transcripts, publisher, m, tracker,
		relay.Config{SampleRate: cfg.Assembly.SampleRate}, logger,
	)

	router := handler.NewRouter(cfg, sessionHandler, streamHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment))

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("❌ Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Stop live relay workers first so sessions settle before the listener closes.
	if canceled := tracker.CancelAll(); canceled > 0 {
		logger.Info("👋 Draining live connections", zap.Int("count", canceled))
		if !tracker.Wait(ctx) {
			logger.Warn("⚠️ Drain timed out with live connections remaining",
				zap.Int("remaining", tracker.Count()))
		}
	}

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("❌ Server forced to shutdown", zap.Error(err))
	}

	logger.Info("✅ Server stopped gracefully")
}
