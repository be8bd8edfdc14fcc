package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if !cfg.UseMemoryStore() {
		t.Errorf("UseMemoryStore() = false, want true with no REDIS_HOST")
	}
	if !cfg.UseMockBots() {
		t.Errorf("UseMockBots() = false, want true with no RECALL_API_KEY")
	}
	if !cfg.UseMockSTT() {
		t.Errorf("UseMockSTT() = false, want true with no ASSEMBLYAI_API_KEY")
	}
	if cfg.Events.Enabled {
		t.Errorf("Events.Enabled = true, want false by default")
	}
	if cfg.Events.SessionTopic != "livenotes.sessions" {
		t.Errorf("Events.SessionTopic = %q", cfg.Events.SessionTopic)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("PUBLIC_BASE_URL", "https://api.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want 9090", cfg.Server.Port)
	}
	if got := cfg.GetRedisAddr(); got != "redis.internal:6380" {
		t.Errorf("GetRedisAddr() = %q", got)
	}
	if cfg.UseMemoryStore() {
		t.Errorf("UseMemoryStore() = true with REDIS_HOST set")
	}
	if got := cfg.GetWebsocketBaseURL(); got != "wss://api.example.com" {
		t.Errorf("GetWebsocketBaseURL() = %q", got)
	}
}

func TestValidateProductionRequiresKeys(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() in production without provider keys should fail")
	}
}

func TestValidateEventsRequireBrokers(t *testing.T) {
	t.Setenv("EVENTS_ENABLED", "true")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() with events enabled and no brokers should fail")
	}
}
