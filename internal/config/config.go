package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/alexjbarnes/admin-console/internal/credstore"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Credential store backends.
const (
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Output formats for command results.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// credentialKeyMinLen matches the sealer's minimum secret length.
const credentialKeyMinLen = 16

// Config holds all environment-based configuration for adminctl.
type Config struct {
	// Base URL of the admin REST API, including any /api prefix.
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:3000/api"`

	// Environment controls log format
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"warn"`

	// Where credentials live between invocations.
	CredentialBackend string `env:"CREDENTIAL_BACKEND" envDefault:"bolt"`

	// Bolt database file. Defaults to ~/.admin-console/session.db.
	StateDBPath string `env:"STATE_DB_PATH"`

	// Redis connection (required when the backend is redis).
	RedisURL       string `env:"REDIS_URL"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"admin-console:"`

	// Optional secret used to seal stored credentials at rest.
	CredentialKey string `env:"CREDENTIAL_KEY"`

	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	ChallengeTTL time.Duration `env:"CHALLENGE_TTL" envDefault:"10m"`

	OutputFormat string `env:"OUTPUT_FORMAT" envDefault:"table"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing credentials to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	cfg.CredentialBackend = strings.ToLower(strings.TrimSpace(cfg.CredentialBackend))
	cfg.OutputFormat = strings.ToLower(strings.TrimSpace(cfg.OutputFormat))

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	if cfg.CredentialBackend == BackendBolt {
		if err := cfg.resolveStatePath(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *Config) resolveStatePath() error {
	if c.StateDBPath == "" {
		p, err := credstore.DefaultPath()
		if err != nil {
			return err
		}

		c.StateDBPath = p

		return nil
	}

	abs, err := filepath.Abs(c.StateDBPath)
	if err != nil {
		return fmt.Errorf("resolving state db path to absolute path: %w", err)
	}

	c.StateDBPath = abs

	return nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute http or https URL, got %q", c.APIBaseURL)
	}

	switch c.CredentialBackend {
	case BackendBolt, BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CREDENTIAL_BACKEND is redis")
		}
	default:
		return fmt.Errorf("CREDENTIAL_BACKEND must be one of bolt, redis or memory, got %q", c.CredentialBackend)
	}

	if c.CredentialKey != "" && len(c.CredentialKey) < credentialKeyMinLen {
		return fmt.Errorf("CREDENTIAL_KEY must be at least %d characters", credentialKeyMinLen)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	if c.ChallengeTTL <= 0 {
		return fmt.Errorf("CHALLENGE_TTL must be positive")
	}

	switch c.OutputFormat {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("OUTPUT_FORMAT must be one of table, json or yaml, got %q", c.OutputFormat)
	}

	return nil
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
