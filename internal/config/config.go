// Package config reads the service configuration from the environment.
//
// When ENV=dev a .env file in the working directory is loaded first, so
// local runs don't need exported variables. Values already present in the
// environment win over the file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Log output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// MinSecretLength mirrors auth.MinSecretLength; config fails early instead
// of letting the token service reject the secret at startup.
const MinSecretLength = 16

// Config is the full service configuration.
type Config struct {
	Port   int
	DBPath string

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	LogLevel  slog.Level
	LogFormat string

	SeedOnStart bool
	SeedFile    string // empty means the embedded catalog
}

// Load builds a Config from the environment and validates it.
func Load() (Config, error) {
	return load(true)
}

// LoadWithoutAuth is Load for commands that never issue or check tokens
// (migrate, seed): JWT_SECRET may be absent.
func LoadWithoutAuth() (Config, error) {
	return load(false)
}

func load(requireSecret bool) (Config, error) {
	if os.Getenv("ENV") == "dev" {
		// A missing .env is fine in dev.
		_ = godotenv.Load()
	}

	var errs []error

	port, err := getEnvInt("PORT", 8080)
	errs = append(errs, err)
	ttl, err := getEnvDuration("JWT_TTL", 24*time.Hour)
	errs = append(errs, err)
	cost, err := getEnvInt("BCRYPT_COST", 12)
	errs = append(errs, err)
	seed, err := getEnvBool("SEED_ON_START", false)
	errs = append(errs, err)

	cfg := Config{
		Port:        port,
		DBPath:      getEnv("DB_PATH", "data/pokedex.db"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenTTL:    ttl,
		BcryptCost:  cost,
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", FormatText)),
		SeedOnStart: seed,
		SeedFile:    getEnv("SEED_FILE", ""),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	errs = append(errs, cfg.validate(requireSecret))
	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate(requireSecret bool) error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: %d out of range", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH: must not be empty"))
	}
	if requireSecret && len(c.JWTSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET: must be at least %d characters", MinSecretLength))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL: must be positive"))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST: %d outside 4..31", c.BcryptCost))
	}
	if c.LogFormat != FormatText && c.LogFormat != FormatJSON {
		errs = append(errs, fmt.Errorf("LOG_FORMAT: %q is not text or json", c.LogFormat))
	}
	return errors.Join(errs...)
}

// NewLogger builds the process logger described by cfg.
func NewLogger(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, valueStr)
	}
	return value, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
	if err != nil {
		return false, fmt.Errorf("%s: %q is not a boolean", key, valueStr)
	}
	return value, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(valueStr))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a duration", key, valueStr)
	}
	return value, nil
}
