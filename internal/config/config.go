package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"

	// FallbackPassword is used when no secret is configured anywhere.
	FallbackPassword = "change-me"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port        string
	DataPath    string
	StoreDriver string
	DatabaseURL string

	Password     string
	PasswordHash string
	// PasswordFromFallback is set when neither the environment nor the
	// .env file supplied a secret.
	PasswordFromFallback bool

	JWTSecret string
	TokenTTL  time.Duration

	LogLevel       string
	MetricsEnabled bool
	MetricsToken   string
	CORSOrigin     string

	LoginLimitPerMin int
}

// ReadDotenv parses an env file. A missing file is not an error.
func ReadDotenv(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	m, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return m, nil
}

// Load resolves each key from getenv first, then dotenv, then the default.
// It reads nothing else, so the same inputs always give the same Config.
func Load(getenv func(string) string, dotenv map[string]string) (Config, error) {
	src := source{getenv: getenv, dotenv: dotenv}

	cfg := Config{
		Port:         src.str("PORT", "4000"),
		DataPath:     src.str("DATA_PATH", "data/inventory.json"),
		StoreDriver:  strings.ToLower(src.str("STORE_DRIVER", DriverFile)),
		DatabaseURL:  src.str("DATABASE_URL", ""),
		PasswordHash: src.str("APP_PASSWORD_HASH", ""),
		JWTSecret:    src.str("JWT_SECRET", ""),
		LogLevel:     src.str("LOG_LEVEL", "info"),
		MetricsToken: src.str("METRICS_TOKEN", ""),
		CORSOrigin:   src.str("CORS_ORIGIN", "*"),
	}

	cfg.Password = src.first("APP_PASSWORD", "PASSWORD")
	if cfg.Password == "" && cfg.PasswordHash == "" {
		cfg.Password = FallbackPassword
		cfg.PasswordFromFallback = true
	}

	var err error
	if cfg.TokenTTL, err = src.duration("TOKEN_TTL", 12*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.MetricsEnabled, err = src.boolean("METRICS_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.LoginLimitPerMin, err = src.integer("LOGIN_LIMIT_PER_MIN", 10); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %q", c.Port)
	}

	switch c.StoreDriver {
	case DriverFile:
		if c.DataPath == "" {
			return errors.New("DATA_PATH is required for the file store")
		}
	case DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.LoginLimitPerMin <= 0 {
		return errors.New("LOGIN_LIMIT_PER_MIN must be positive")
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + c.Port
}

type source struct {
	getenv func(string) string
	dotenv map[string]string
}

func (s source) lookup(key string) (string, bool) {
	if s.getenv != nil {
		if v := strings.TrimSpace(s.getenv(key)); v != "" {
			return v, true
		}
	}
	if v := strings.TrimSpace(s.dotenv[key]); v != "" {
		return v, true
	}
	return "", false
}

func (s source) str(key, def string) string {
	if v, ok := s.lookup(key); ok {
		return v
	}
	return def
}

// first returns the first key found, checking every key in the environment
// before falling back to the dotenv file.
func (s source) first(keys ...string) string {
	env := source{getenv: s.getenv}
	for _, k := range keys {
		if v, ok := env.lookup(k); ok {
			return v
		}
	}
	file := source{dotenv: s.dotenv}
	for _, k := range keys {
		if v, ok := file.lookup(k); ok {
			return v
		}
	}
	return ""
}

func (s source) duration(key string, def time.Duration) (time.Duration, error) {
	v, ok := s.lookup(key)
	if !ok {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func (s source) boolean(key string, def bool) (bool, error) {
	v, ok := s.lookup(key)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func (s source) integer(key string, def int) (int, error) {
	v, ok := s.lookup(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
