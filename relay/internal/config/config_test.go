package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 8084 {
		t.Errorf("Expected default port 8084, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout() != 15*time.Second {
		t.Errorf("Expected default read timeout 15s, got %v", cfg.Server.ReadTimeout())
	}
	if cfg.NATS.URL != "nats://nats:4222" {
		t.Errorf("Expected default NATS URL nats://nats:4222, got %s", cfg.NATS.URL)
	}
	if cfg.NATS.MaxReconnects != -1 {
		t.Errorf("Expected infinite reconnects, got %d", cfg.NATS.MaxReconnects)
	}
	if cfg.ReadModel.URL != "http://readmodel:8080" {
		t.Errorf("Expected default read model URL http://readmodel:8080, got %s", cfg.ReadModel.URL)
	}
	if cfg.ReadModel.Timeout() != 10*time.Second {
		t.Errorf("Expected default read model timeout 10s, got %v", cfg.ReadModel.Timeout())
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("Expected default redis addr redis:6379, got %s", cfg.Redis.Addr)
	}
	if cfg.Redis.RoleTTL() != 60*time.Second {
		t.Errorf("Expected default role TTL 60s, got %v", cfg.Redis.RoleTTL())
	}
	if cfg.Relay.MaxAge() != 20*time.Second {
		t.Errorf("Expected default max age 20s, got %v", cfg.Relay.MaxAge())
	}
	if cfg.Relay.ProcessTimeout() != 10*time.Second {
		t.Errorf("Expected default process timeout 10s, got %v", cfg.Relay.ProcessTimeout())
	}
	if cfg.Relay.WaitAttempts != 5 {
		t.Errorf("Expected default wait attempts 5, got %d", cfg.Relay.WaitAttempts)
	}
	if cfg.Relay.WaitInterval() != 500*time.Millisecond {
		t.Errorf("Expected default wait interval 500ms, got %v", cfg.Relay.WaitInterval())
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected default log format json, got %s", cfg.Logging.Format)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `
server:
  port: 9999

nats:
  url: "nats://test-nats:4222"
  reconnect_wait_seconds: 5

readmodel:
  url: "http://test-readmodel:8080"
  timeout_seconds: 3

relay:
  max_age_seconds: 30
  wait_attempts: 2
  wait_interval_millis: 100

logging:
  level: debug
  format: text
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.NATS.URL != "nats://test-nats:4222" {
		t.Errorf("Expected NATS URL nats://test-nats:4222, got %s", cfg.NATS.URL)
	}
	if cfg.NATS.ReconnectWaitDuration() != 5*time.Second {
		t.Errorf("Expected reconnect wait 5s, got %v", cfg.NATS.ReconnectWaitDuration())
	}
	if cfg.ReadModel.URL != "http://test-readmodel:8080" {
		t.Errorf("Expected read model URL http://test-readmodel:8080, got %s", cfg.ReadModel.URL)
	}
	if cfg.Relay.MaxAge() != 30*time.Second {
		t.Errorf("Expected max age 30s, got %v", cfg.Relay.MaxAge())
	}
	if cfg.Relay.WaitAttempts != 2 {
		t.Errorf("Expected wait attempts 2, got %d", cfg.Relay.WaitAttempts)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Logging.Level)
	}

	// Unset keys keep their defaults
	if cfg.Relay.ProcessTimeout() != 10*time.Second {
		t.Errorf("Expected default process timeout 10s, got %v", cfg.Relay.ProcessTimeout())
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	os.Setenv("RELAY_NATS_URL", "nats://env-nats:4222")
	os.Setenv("RELAY_RELAY_MAX_AGE_SECONDS", "45")
	defer func() {
		os.Unsetenv("RELAY_NATS_URL")
		os.Unsetenv("RELAY_RELAY_MAX_AGE_SECONDS")
	}()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.NATS.URL != "nats://env-nats:4222" {
		t.Errorf("Expected NATS URL from env nats://env-nats:4222, got %s", cfg.NATS.URL)
	}
	if cfg.Relay.MaxAgeSeconds != 45 {
		t.Errorf("Expected max age from env 45, got %d", cfg.Relay.MaxAgeSeconds)
	}
}

func TestLoadConfigNonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error when loading non-existent config file")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	invalidYAML := `
server:
  port: [not, a, number
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid YAML")
	}
}
