package config

import (
	"errors"
	"os"
	"strings"
)

type HTTPConfig struct {
	Addr string
}

type AppConfig struct {
	ServiceName string
	LogLevel    string
	Env         string
	HTTP        HTTPConfig
	JWTSecret   []byte
	UsersAPIURL string
	DatabaseURL string
	NATSURL     string
}

// Load reads configuration from the environment. The users service base URL
// is injected here rather than read where the client lives, so tests can
// point the resolver at a fake.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		ServiceName: strings.TrimSpace(os.Getenv("SERVICE_NAME")),
		LogLevel:    strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		Env:         strings.TrimSpace(os.Getenv("APP_ENV")),
		HTTP: HTTPConfig{
			Addr: strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		},
		UsersAPIURL: strings.TrimSpace(os.Getenv("USERS_API_URL")),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		NATSURL:     strings.TrimSpace(os.Getenv("NATS_URL")),
	}

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		return AppConfig{}, errors.New("JWT_SECRET is required")
	}
	cfg.JWTSecret = []byte(secret)

	if cfg.UsersAPIURL == "" {
		cfg.UsersAPIURL = "http://localhost:8000"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "comments-service"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// IsProduction reports whether the service runs with production guarantees
// (no in-memory store fallback).
func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
