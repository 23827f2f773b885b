package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config contains runtime configuration for the relay service.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	NATS      NATSConfig      `yaml:"nats" mapstructure:"nats"`
	ReadModel ReadModelConfig `yaml:"readmodel" mapstructure:"readmodel"`
	Redis     RedisConfig     `yaml:"redis" mapstructure:"redis"`
	Relay     RelayConfig     `yaml:"relay" mapstructure:"relay"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// ServerConfig captures HTTP server settings for the probe/metrics surface.
type ServerConfig struct {
	Port                int `yaml:"port" mapstructure:"port"`
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds" mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds" mapstructure:"write_timeout_seconds"`
	IdleTimeoutSeconds  int `yaml:"idle_timeout_seconds" mapstructure:"idle_timeout_seconds"`
}

// ReadTimeout returns the configured read timeout as a duration.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the configured write timeout as a duration.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// IdleTimeout returns the configured idle timeout as a duration.
func (s ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutSeconds) * time.Second
}

// NATSConfig captures NATS message broker connection settings.
type NATSConfig struct {
	URL           string `yaml:"url" mapstructure:"url"`
	MaxReconnects int    `yaml:"max_reconnects" mapstructure:"max_reconnects"`
	ReconnectWait int    `yaml:"reconnect_wait_seconds" mapstructure:"reconnect_wait_seconds"`
}

// ReconnectWaitDuration returns the reconnect wait as a time.Duration.
func (n NATSConfig) ReconnectWaitDuration() time.Duration {
	return time.Duration(n.ReconnectWait) * time.Second
}

// ReadModelConfig captures the read-model gateway settings.
type ReadModelConfig struct {
	URL            string `yaml:"url" mapstructure:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// Timeout returns the configured request timeout as a duration.
func (r ReadModelConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// RedisConfig captures the role cache connection settings.
type RedisConfig struct {
	Addr           string `yaml:"addr" mapstructure:"addr"`
	Password       string `yaml:"password" mapstructure:"password"`
	DB             int    `yaml:"db" mapstructure:"db"`
	RoleTTLSeconds int    `yaml:"role_ttl_seconds" mapstructure:"role_ttl_seconds"`
}

// RoleTTL returns how long cached role sets stay valid.
func (r RedisConfig) RoleTTL() time.Duration {
	return time.Duration(r.RoleTTLSeconds) * time.Second
}

// RelayConfig captures the pipeline tuning knobs.
type RelayConfig struct {
	// MaxAgeSeconds is the freshness window: events older than this are
	// dropped instead of relayed.
	MaxAgeSeconds int `yaml:"max_age_seconds" mapstructure:"max_age_seconds"`

	// ProcessTimeoutSeconds bounds the wall time spent on one event.
	ProcessTimeoutSeconds int `yaml:"process_timeout_seconds" mapstructure:"process_timeout_seconds"`

	// WaitAttempts and WaitIntervalMillis bound the read-model polling done
	// for eventually consistent enrichments.
	WaitAttempts       int `yaml:"wait_attempts" mapstructure:"wait_attempts"`
	WaitIntervalMillis int `yaml:"wait_interval_millis" mapstructure:"wait_interval_millis"`
}

// MaxAge returns the freshness window as a duration.
func (r RelayConfig) MaxAge() time.Duration {
	return time.Duration(r.MaxAgeSeconds) * time.Second
}

// ProcessTimeout returns the per-event timeout as a duration.
func (r RelayConfig) ProcessTimeout() time.Duration {
	return time.Duration(r.ProcessTimeoutSeconds) * time.Second
}

// WaitInterval returns the poll interval as a duration.
func (r RelayConfig) WaitInterval() time.Duration {
	return time.Duration(r.WaitIntervalMillis) * time.Millisecond
}

// LoggingConfig captures logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
}

// Load reads configuration from the provided path and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set all defaults
	v.SetDefault("server.port", 8084)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 15)
	v.SetDefault("server.idle_timeout_seconds", 60)

	v.SetDefault("nats.url", "nats://nats:4222")
	v.SetDefault("nats.max_reconnects", -1) // Infinite reconnects
	v.SetDefault("nats.reconnect_wait_seconds", 2)

	v.SetDefault("readmodel.url", "http://readmodel:8080")
	v.SetDefault("readmodel.timeout_seconds", 10)

	v.SetDefault("redis.addr", "redis:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.role_ttl_seconds", 60)

	v.SetDefault("relay.max_age_seconds", 20)
	v.SetDefault("relay.process_timeout_seconds", 10)
	v.SetDefault("relay.wait_attempts", 5)
	v.SetDefault("relay.wait_interval_millis", 500)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/relay")
	}

	// Environment variables override
	v.SetEnvPrefix("RELAY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found; use defaults
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
