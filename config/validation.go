package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks the configuration for its environment. It returns
// ValidationErrors listing every problem, or nil.
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	u, err := url.Parse(cfg.BackendURL)
	switch {
	case err != nil || u.Host == "":
		add("BACKEND_URL", "must be an absolute URL")
	case u.Scheme != "http" && u.Scheme != "https":
		add("BACKEND_URL", "scheme must be http or https")
	case cfg.Environment.RequiresHTTPS() && u.Scheme != "https":
		add("BACKEND_URL", "must use https in production")
	}

	if cfg.HTTPTimeout <= 0 {
		add("HTTP_TIMEOUT", "must be positive")
	}

	switch cfg.StorageDriver {
	case "sqlite":
		if cfg.StorageDir == "" {
			add("STORAGE_DIR", "is required for sqlite storage")
		}
	case "redis":
		if cfg.RedisURL == "" {
			add("REDIS_URL", "is required for redis storage")
		}
	case "memory":
		if cfg.Environment == Production {
			add("STORAGE_DRIVER", "memory storage loses the session on exit and is not allowed in production")
		}
	default:
		add("STORAGE_DRIVER", "must be one of sqlite, redis, memory")
	}

	if cfg.FacebookClientToken != "" && cfg.FacebookAppID == "" {
		add("FACEBOOK_APP_ID", "is required when FACEBOOK_CLIENT_TOKEN is set")
	}

	if _, _, err := net.SplitHostPort(cfg.CallbackAddr); err != nil {
		add("CALLBACK_ADDR", "must be host:port")
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		add("LOG_LEVEL", "must be a logrus level such as debug, info or warn")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
