package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

type Config struct {
	APIURL            string `validate:"required,url"`
	DBPath            string `validate:"required"`
	LogLevel          string `validate:"oneof=DEBUG INFO WARN WARNING ERROR"`
	HTTPTimeout       time.Duration
	DueLimit          int    `validate:"min=1,max=10000"`
	FeedbackQueueSize int    `validate:"min=1,max=1024"`
	UIAddr            string `validate:"required"`
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing or invalid.
func Load() Config {
	// .env is optional.
	_ = godotenv.Load()

	return Config{
		APIURL:            strings.TrimRight(envOr("BETTERANK_API_URL", "http://localhost:8000"), "/"),
		DBPath:            envOr("BETTERANK_DB_PATH", "file:betterank.db"),
		LogLevel:          strings.ToUpper(envOr("LOG_LEVEL", "WARN")),
		HTTPTimeout:       time.Duration(envIntOr("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		DueLimit:          envIntOr("DUE_LIMIT", 100),
		FeedbackQueueSize: envIntOr("FEEDBACK_QUEUE_SIZE", 32),
		UIAddr:            envOr("UI_ADDR", "127.0.0.1:8090"),
	}
}

// BindFlags registers command-line overrides on fs. Flag defaults are the
// values already in c, so unset flags leave the environment values alone.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.APIURL, "api-url", c.APIURL, "base URL of the BetterAnk backend")
	fs.StringVar(&c.DBPath, "db", c.DBPath, "path of the local credential database")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "DEBUG, INFO, WARN or ERROR")
	fs.DurationVar(&c.HTTPTimeout, "timeout", c.HTTPTimeout, "per-request HTTP timeout")
	fs.IntVar(&c.DueLimit, "due-limit", c.DueLimit, "maximum number of due cards fetched per session")
	fs.IntVar(&c.FeedbackQueueSize, "feedback-queue-size", c.FeedbackQueueSize, "maximum number of ratings waiting to be posted")
	fs.StringVar(&c.UIAddr, "addr", c.UIAddr, "listen address of the local review page")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration and reports the first offending
// environment variable.
func (c Config) Validate() error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive, got %v", c.HTTPTimeout)
	}
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	name := envNames[fe.Field()]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s cannot be empty", name)
	case "url":
		return fmt.Errorf("%s must be an absolute URL, got %q", name, fe.Value())
	case "oneof":
		return fmt.Errorf("%s must be one of %s, got %q", name, fe.Param(), fe.Value())
	default:
		return fmt.Errorf("%s is out of range (%s=%s), got %v", name, fe.Tag(), fe.Param(), fe.Value())
	}
}

var envNames = map[string]string{
	"APIURL":            "BETTERANK_API_URL",
	"DBPath":            "BETTERANK_DB_PATH",
	"LogLevel":          "LOG_LEVEL",
	"DueLimit":          "DUE_LIMIT",
	"FeedbackQueueSize": "FEEDBACK_QUEUE_SIZE",
	"UIAddr":            "UI_ADDR",
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
