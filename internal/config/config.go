package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Game     GameConfig     `mapstructure:"game" validate:"required"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Session  SessionConfig  `mapstructure:"session" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// AllowedOrigins lists the origins accepted for websocket connections.
	// Empty means same-origin only.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	// URL is a PostgreSQL connection URL or a SQLite file path.
	URL string `mapstructure:"url" validate:"required"`
}

// GameConfig contains the default per-session limits.
type GameConfig struct {
	MaxPlayers     int `mapstructure:"max_players" validate:"required,gte=2,lte=16"`
	CardsPerPlayer int `mapstructure:"cards_per_player" validate:"required,gte=1,lte=20"`
}

// CatalogConfig points at the card catalog. An empty path selects the
// catalog bundled with the binary.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// SessionConfig controls idle-session expiry.
type SessionConfig struct {
	TimeoutMinutes         int `mapstructure:"timeout_minutes" validate:"required,gt=0"`
	CleanupIntervalSeconds int `mapstructure:"cleanup_interval_seconds" validate:"required,gt=0"`
}

// TTL returns how long a session may stay idle.
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TimeoutMinutes) * time.Minute
}

// CleanupInterval returns how often idle sessions are swept.
func (s SessionConfig) CleanupInterval() time.Duration {
	return time.Duration(s.CleanupIntervalSeconds) * time.Second
}
