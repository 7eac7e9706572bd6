package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every configuration environment variable,
// e.g. CROSSPLAY_SERVER_PORT.
const EnvPrefix = "CROSSPLAY"

// Default configuration values.
const (
	DefaultPort                   = 8080
	DefaultLogLevel               = "info"
	DefaultDatabaseDriver         = "sqlite"
	DefaultDatabaseURL            = "crossplay.db"
	DefaultMaxPlayers             = 8
	DefaultCardsPerPlayer         = 5
	DefaultSessionTimeoutMinutes  = 30
	DefaultCleanupIntervalSeconds = 60
)

var validate = validator.New()

// Load configuration from environment variables and optionally a config.yaml
// in the working directory. Environment variables take precedence over values
// from config files. Returns a populated Config struct or an error if
// loading/validation fails.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFile loads configuration from an explicit file; environment variables
// still take precedence.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.log_level", DefaultLogLevel)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("database.driver", DefaultDatabaseDriver)
	v.SetDefault("database.url", DefaultDatabaseURL)
	v.SetDefault("game.max_players", DefaultMaxPlayers)
	v.SetDefault("game.cards_per_player", DefaultCardsPerPlayer)
	v.SetDefault("catalog.path", "")
	v.SetDefault("session.timeout_minutes", DefaultSessionTimeoutMinutes)
	v.SetDefault("session.cleanup_interval_seconds", DefaultCleanupIntervalSeconds)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
