package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	platformerrors "todo-server-go/internal/platform/errors"
)

var configSearchPaths = []string{"config.yaml", ".config.yaml"}

// Loader reads configuration from a yaml file, a .env file and the
// process environment, in that order of increasing precedence.
type Loader struct {
	useDotEnv bool
	path      string
}

// NewLoader creates a loader using the default search paths.
func NewLoader() *Loader {
	return &Loader{useDotEnv: true}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath pins the loader to a specific config file (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load builds the effective configuration and validates it.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		// Missing .env just means the process environment is used as-is.
		_ = godotenv.Load()
	}

	cfg := DefaultConfig()

	path, err := l.readFile(cfg)
	if err != nil {
		return nil, err
	}

	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return &Result{Config: cfg, Path: path}, nil
}

func (l *Loader) readFile(cfg *Config) (string, error) {
	paths := configSearchPaths
	if l.path != "" {
		paths = []string{l.path}
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return "", platformerrors.Wrap(
				platformerrors.KindConfig, "config.load", "read config file", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return "", platformerrors.Wrap(
				platformerrors.KindConfig, "config.load", "parse config file", err)
		}
		return path, nil
	}

	if l.path != "" {
		return "", platformerrors.New(
			platformerrors.KindConfig, "config.load",
			fmt.Sprintf("config file not found: %s", l.path))
	}
	// No file is fine; defaults plus environment carry the config.
	return "", nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		cfg.Server.Auth.SecretKey = v
	}
	if v := os.Getenv("DB_CONFIG"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("INTERNAL_TOKEN"); v != "" {
		cfg.Company.InternalToken = v
	}
}

// Validate rejects configurations the server cannot start with.
func Validate(cfg *Config) error {
	if cfg.Server.Auth.SecretKey == "" {
		return platformerrors.New(
			platformerrors.KindConfig, "config.validate",
			"SECRET_KEY must be set")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return platformerrors.New(
			platformerrors.KindConfig, "config.validate",
			fmt.Sprintf("invalid server port: %d", cfg.Server.Port))
	}
	if cfg.Server.Auth.TokenTTL <= 0 {
		return platformerrors.New(
			platformerrors.KindConfig, "config.validate",
			"token_ttl must be positive")
	}
	if cfg.Database.DSN == "" {
		return platformerrors.New(
			platformerrors.KindConfig, "config.validate",
			"database dsn must not be empty")
	}
	return nil
}
