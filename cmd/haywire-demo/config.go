package main

import (
	"time"

	"github.com/rs/zerolog"
)

const envPrefix = "DEMO"

type (
	// Config contains the demo configuration, every field can be set with DEMO_<PATH>, for example
	// DEMO_HTTP_ADDR.
	Config struct {
		Environment string `mapstructure:"env" validate:"required"`
		Tracing     bool
		HTTP        *HTTPConfig
		Log         *LogConfig
		Heartbeat   *HeartbeatConfig
	}

	HTTPConfig struct {
		Addr            string
		ShutdownTimeout time.Duration
	}

	LogConfig struct {
		Level string `validate:"omitempty,oneof=trace debug info warn error"`
	}

	HeartbeatConfig struct {
		Interval time.Duration
	}
)

func (c *HTTPConfig) ApplyDefault() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
}

func (c *LogConfig) ApplyDefault() {
	if c.Level == "" {
		c.Level = zerolog.LevelInfoValue
	}
}

func (c *LogConfig) level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
