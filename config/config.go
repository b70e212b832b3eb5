package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Defaults
const (
	DefaultBackendURL    = "http://localhost:8000"
	DefaultHTTPTimeout   = 120 * time.Second
	DefaultStorageDriver = "sqlite"
	DefaultCallbackAddr  = "127.0.0.1:8765"
	DefaultLogLevel      = "info"
	DefaultS3Bucket      = "snaptop-recipe-images"
)

// Config holds all configuration for the client
type Config struct {
	Environment Environment

	// Backend
	BackendURL  string
	HTTPTimeout time.Duration

	// Session storage
	StorageDriver string
	StorageDir    string
	RedisURL      string

	// Identity providers
	GoogleClientID      string
	FacebookAppID       string
	FacebookClientToken string
	FacebookGraphURL    string
	FacebookAPIVersion  string
	CallbackAddr        string

	// Recipe image uploads
	S3Bucket  string
	AWSRegion string

	LogLevel string
}

// LoadConfig reads configuration from the environment, after loading a .env
// file if one exists. ENV_FILE overrides the .env path.
func LoadConfig() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{Environment: GetEnvironment()}
	if err := loadFromEnv(cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to load %s configuration", cfg.Environment)
	}
	if cfg.Environment == Production {
		loadSecrets(cfg)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// loadDotEnv loads variables that are not already set. A missing file is fine.
func loadDotEnv() error {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "failed to load %s", path)
	}
	return nil
}

func loadFromEnv(cfg *Config) error {
	cfg.BackendURL = strings.TrimRight(getEnv("BACKEND_URL", DefaultBackendURL), "/")
	cfg.StorageDriver = getEnv("STORAGE_DRIVER", DefaultStorageDriver)
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	cfg.FacebookAppID = os.Getenv("FACEBOOK_APP_ID")
	cfg.FacebookClientToken = os.Getenv("FACEBOOK_CLIENT_TOKEN")
	cfg.FacebookGraphURL = getEnv("FACEBOOK_GRAPH_URL", "https://graph.facebook.com")
	cfg.FacebookAPIVersion = getEnv("FACEBOOK_API_VERSION", "v18.0")
	cfg.CallbackAddr = getEnv("CALLBACK_ADDR", DefaultCallbackAddr)
	cfg.S3Bucket = getEnv("S3_BUCKET_NAME", DefaultS3Bucket)
	cfg.AWSRegion = os.Getenv("AWS_REGION")
	cfg.LogLevel = getEnv("LOG_LEVEL", DefaultLogLevel)

	timeout, err := parseTimeout(os.Getenv("HTTP_TIMEOUT"))
	if err != nil {
		return err
	}
	cfg.HTTPTimeout = timeout

	cfg.StorageDir = os.Getenv("STORAGE_DIR")
	if cfg.StorageDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return errors.Wrap(err, "STORAGE_DIR is not set and no user config directory is available")
		}
		cfg.StorageDir = filepath.Join(dir, "snaptop")
	}
	return nil
}

// parseTimeout accepts a Go duration ("90s") or a number of seconds ("90")
func parseTimeout(raw string) (time.Duration, error) {
	if raw == "" {
		return DefaultHTTPTimeout, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid HTTP_TIMEOUT %q", raw)
	}
	return d, nil
}

// loadSecrets lets Docker secrets override sensitive values in production
func loadSecrets(cfg *Config) {
	if v := readSecret("facebook_client_token"); v != "" {
		cfg.FacebookClientToken = v
	}
	if v := readSecret("redis_url"); v != "" {
		cfg.RedisURL = v
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
