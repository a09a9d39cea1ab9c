package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIAddr        string
	AdminAddr      string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	HistoryLimit   int
	TypingTimeout  time.Duration
	SendBuffer     int
	WriteTimeout   time.Duration
	PongTimeout    time.Duration
	MaxFrameSize   int64
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var err error
	cfg := &Config{
		APIAddr:        getEnv("API_ADDR", ":3001"),
		AdminAddr:      getEnv("ADMIN_ADDR", "localhost:3002"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
	}

	if cfg.HistoryLimit, err = strconv.Atoi(getEnv("HISTORY_LIMIT", "0")); err != nil {
		return nil, fmt.Errorf("HISTORY_LIMIT: %w", err)
	}
	if cfg.SendBuffer, err = strconv.Atoi(getEnv("SEND_BUFFER", "256")); err != nil {
		return nil, fmt.Errorf("SEND_BUFFER: %w", err)
	}
	if cfg.MaxFrameSize, err = strconv.ParseInt(getEnv("MAX_FRAME_SIZE", "65536"), 10, 64); err != nil {
		return nil, fmt.Errorf("MAX_FRAME_SIZE: %w", err)
	}
	if cfg.TypingTimeout, err = time.ParseDuration(getEnv("TYPING_TIMEOUT", "6s")); err != nil {
		return nil, fmt.Errorf("TYPING_TIMEOUT: %w", err)
	}
	if cfg.WriteTimeout, err = time.ParseDuration(getEnv("WRITE_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("WRITE_TIMEOUT: %w", err)
	}
	if cfg.PongTimeout, err = time.ParseDuration(getEnv("PONG_TIMEOUT", "60s")); err != nil {
		return nil, fmt.Errorf("PONG_TIMEOUT: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.APIAddr == "" {
		return fmt.Errorf("API_ADDR is required")
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("HISTORY_LIMIT must not be negative")
	}
	if c.TypingTimeout < 0 {
		return fmt.Errorf("TYPING_TIMEOUT must not be negative")
	}
	if c.SendBuffer <= 0 {
		return fmt.Errorf("SEND_BUFFER must be greater than 0")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("WRITE_TIMEOUT must be greater than 0")
	}
	if c.PongTimeout <= 0 {
		return fmt.Errorf("PONG_TIMEOUT must be greater than 0")
	}
	if c.MaxFrameSize <= 0 {
		return fmt.Errorf("MAX_FRAME_SIZE must be greater than 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// AllowsAnyOrigin reports whether the origin list contains the "*" wildcard.
func (c *Config) AllowsAnyOrigin() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}
