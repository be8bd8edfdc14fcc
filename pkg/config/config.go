package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Recall   RecallConfig
	Assembly AssemblyAIConfig
	OpenAI   OpenAIConfig
	Events   EventsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int

	// PublicBaseURL is the externally reachable base URL of this server,
	// handed to the bot provider as the realtime transcript destination.
	PublicBaseURL string
}

// RedisConfig holds Redis configuration. An empty host selects the
// in-memory session store for local development.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RecallConfig holds bot automation provider configuration
type RecallConfig struct {
	APIKey  string
	Region  string
	BaseURL string
}

// AssemblyAIConfig holds speech-to-text provider configuration
type AssemblyAIConfig struct {
	APIKey     string
	SampleRate int
}

// OpenAIConfig holds generative-text provider configuration
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// EventsConfig holds Kafka event publishing configuration. Parsed from the
// EVENTS_* environment block; disabled by default.
type EventsConfig struct {
	Enabled         bool     `envconfig:"ENABLED" default:"false"`
	Brokers         []string `envconfig:"BROKERS"`
	SessionTopic    string   `envconfig:"SESSION_TOPIC" default:"livenotes.sessions"`
	TranscriptTopic string   `envconfig:"TRANSCRIPT_TOPIC" default:"livenotes.transcripts"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
			PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Recall: RecallConfig{
			APIKey:  getEnv("RECALL_API_KEY", ""),
			Region:  getEnv("RECALL_REGION", "us-east-1"),
			BaseURL: getEnv("RECALL_BASE_URL", ""),
		},
		Assembly: AssemblyAIConfig{
			APIKey:     getEnv("ASSEMBLYAI_API_KEY", ""),
			SampleRate: getEnvAsInt("ASSEMBLYAI_SAMPLE_RATE", 16000),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_API_URL", ""),
			Model:   getEnv("OPENAI_MODEL", ""),
		},
	}

	if err := envconfig.Process("EVENTS", &config.Events); err != nil {
		return nil, fmt.Errorf("failed to parse events config: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Environment == "production" {
		if c.Recall.APIKey == "" {
			return fmt.Errorf("RECALL_API_KEY is required in production")
		}
		if c.Assembly.APIKey == "" {
			return fmt.Errorf("ASSEMBLYAI_API_KEY is required in production")
		}
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required in production")
		}
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required in production")
		}
	}
	if c.Events.Enabled && len(c.Events.Brokers) == 0 {
		return fmt.Errorf("EVENTS_BROKERS is required when event publishing is enabled")
	}
	return nil
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// UseMemoryStore reports whether the in-memory session store should be
// used instead of Redis
func (c *Config) UseMemoryStore() bool {
	return c.Redis.Host == ""
}

// UseMockBots reports whether the mock bot provider should be used
func (c *Config) UseMockBots() bool {
	return c.Recall.APIKey == ""
}

// UseMockSTT reports whether the scripted transcription provider should
// be used
func (c *Config) UseMockSTT() bool {
	return c.Assembly.APIKey == ""
}

// GetWebsocketBaseURL returns the external websocket base URL derived
// from the public base URL
func (c *Config) GetWebsocketBaseURL() string {
	base := strings.TrimRight(c.Server.PublicBaseURL, "/")
	base = strings.Replace(base, "https://", "wss://", 1)
	base = strings.Replace(base, "http://", "ws://", 1)
	return base
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
