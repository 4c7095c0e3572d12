package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// === Config ===

type Config struct {
	Addr          string        `env:"ONCEFORM_ADDR" envDefault:":8080"`
	LogLevel      slog.Level    `env:"ONCEFORM_LOG_LEVEL" envDefault:"info"`
	JobTimeout    time.Duration `env:"ONCEFORM_JOB_TIMEOUT" envDefault:"10m"`
	SubmitDelay   time.Duration `env:"ONCEFORM_SUBMIT_DELAY" envDefault:"2s"`
	SecureCookies bool          `env:"ONCEFORM_SECURE_COOKIES"`

	// Ledger selects where issued tokens are recorded: none, memory, redis
	// or nats.
	Ledger    string `env:"ONCEFORM_LEDGER" envDefault:"none"`
	RedisAddr string `env:"ONCEFORM_REDIS_ADDR" envDefault:"localhost:6379"`
	NATSURL   string `env:"NATS_URL" envDefault:"nats://127.0.0.1:4222"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
