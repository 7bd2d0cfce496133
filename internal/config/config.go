// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables on top of New().
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/profilebridge/internal/domain/model"
)

// Bus modes.
const (
	BusSync  = "sync"
	BusAsync = "async"
)

// Host transports.
const (
	TransportWebsocket = "websocket"
	TransportRedis     = "redis"
	TransportLog       = "log"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// HostChannel names the host object that receives events.
	HostChannel string `koanf:"host_channel"`

	// ExcludedProviders lists providers whose events never reach the host,
	// by name or decimal value.
	ExcludedProviders []string `koanf:"excluded_providers"`

	// BusMode is sync (dispatch on the publisher) or async (queue + workers).
	BusMode string `koanf:"bus_mode"`

	// QueueSize bounds the async bus backlog.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of async dispatch workers.
	WorkerCount int `koanf:"worker_count"`

	// Transport selects how events reach the host: websocket, redis or log.
	Transport string `koanf:"transport"`

	// RedisAddr is host:port or a redis:// URL.
	RedisAddr string `koanf:"redis_addr"`

	// RedisChannelPrefix prefixes the redis pub/sub channel.
	RedisChannelPrefix string `koanf:"redis_channel_prefix"`

	// WSSendBuffer bounds the per-host websocket backlog.
	WSSendBuffer int `koanf:"ws_send_buffer"`

	// WSWriteTimeoutMS is the websocket write deadline.
	WSWriteTimeoutMS int `koanf:"ws_write_timeout_ms"`

	// ShutdownTimeoutMS bounds graceful shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		HostChannel:        "ProfileEvents",
		ExcludedProviders:  []string{"facebook"},
		BusMode:            BusSync,
		QueueSize:          1024,
		WorkerCount:        runtime.NumCPU(),
		Transport:          TransportWebsocket,
		RedisAddr:          "localhost:6379",
		RedisChannelPrefix: "profilebridge",
		WSSendBuffer:       256,
		WSWriteTimeoutMS:   5000,
		ShutdownTimeoutMS:  10000,
	}
}

// Providers resolves ExcludedProviders.
func (c *Config) Providers() ([]model.Provider, error) {
	out := make([]model.Provider, 0, len(c.ExcludedProviders))
	for _, name := range c.ExcludedProviders {
		if strings.TrimSpace(name) == "" {
			continue
		}
		p, err := model.ParseProvider(name)
		if err != nil {
			return nil, fmt.Errorf("%w: excluded_providers: %w", ErrInvalidConfig, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// WSWriteTimeout returns WSWriteTimeoutMS as a duration.
func (c *Config) WSWriteTimeout() time.Duration {
	return time.Duration(c.WSWriteTimeoutMS) * time.Millisecond
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

// Validate checks every field and reports the first problem wrapped in
// ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.HostChannel == "":
		return fmt.Errorf("%w: host_channel must not be empty", ErrInvalidConfig)
	case c.BusMode != BusSync && c.BusMode != BusAsync:
		return fmt.Errorf("%w: bus_mode must be %s or %s, got %q", ErrInvalidConfig, BusSync, BusAsync, c.BusMode)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.WSSendBuffer <= 0:
		return fmt.Errorf("%w: ws_send_buffer must be positive", ErrInvalidConfig)
	case c.WSWriteTimeoutMS <= 0:
		return fmt.Errorf("%w: ws_write_timeout_ms must be positive", ErrInvalidConfig)
	case c.ShutdownTimeoutMS <= 0:
		return fmt.Errorf("%w: shutdown_timeout_ms must be positive", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	switch c.Transport {
	case TransportWebsocket, TransportLog:
	case TransportRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis transport", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, c.Transport)
	}
	_, err := c.Providers()
	return err
}
