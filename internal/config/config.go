package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// devJWTSecret keeps local runs working without setup. Validate rejects it
// in production.
const devJWTSecret = "financetracker-dev-secret-do-not-use-in-prod"

// MinJWTSecretLength applies in production only.
const MinJWTSecretLength = 32

type Config struct {
	// HTTP Server
	Port            string
	AppEnv          string
	LogLevel        string
	CORSOrigins     []string
	AuthRateLimit   int
	ShutdownTimeout time.Duration

	// Sessions
	JWTSecret    string
	CookieSecure bool

	// Database
	SQLiteDBPath string

	// Dashboard summary cache; a zero TTL disables it.
	SummaryCacheTTL  time.Duration
	SummaryCacheSize int

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// SMTP (welcome mail)
	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	SMTPFrom   string
	SMTPSecure bool

	// Google Sheets journal
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// Load reads configuration from the environment.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("AUTH_RATE_LIMIT", 20)
	v.SetDefault("SHUTDOWN_TIMEOUT", 30*time.Second)
	v.SetDefault("SQLITE_DB_PATH", "./data/financetracker.db")
	v.SetDefault("SUMMARY_CACHE_TTL", 30*time.Second)
	v.SetDefault("SUMMARY_CACHE_SIZE", 1000)
	v.SetDefault("AMQP_EXCHANGE", "financetracker")
	v.SetDefault("AMQP_QUEUE", "financetracker_events")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("GOOGLE_SHEET_NAME", "Journal")

	appEnv := strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV")))

	cfg := &Config{
		Port:            v.GetString("PORT"),
		AppEnv:          appEnv,
		LogLevel:        strings.ToLower(v.GetString("LOG_LEVEL")),
		CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),
		AuthRateLimit:   v.GetInt("AUTH_RATE_LIMIT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),

		JWTSecret:    v.GetString("JWT_SECRET"),
		CookieSecure: appEnv == EnvProduction,

		SQLiteDBPath: v.GetString("SQLITE_DB_PATH"),

		SummaryCacheTTL:  v.GetDuration("SUMMARY_CACHE_TTL"),
		SummaryCacheSize: v.GetInt("SUMMARY_CACHE_SIZE"),

		AMQPURL:      v.GetString("AMQP_URL"),
		AMQPExchange: v.GetString("AMQP_EXCHANGE"),
		AMQPQueue:    v.GetString("AMQP_QUEUE"),

		SMTPHost:   v.GetString("SMTP_HOST"),
		SMTPPort:   v.GetInt("SMTP_PORT"),
		SMTPUser:   v.GetString("SMTP_USER"),
		SMTPPass:   v.GetString("SMTP_PASS"),
		SMTPFrom:   v.GetString("SMTP_FROM"),
		SMTPSecure: v.GetBool("SMTP_SECURE"),

		GoogleSpreadsheetID:      v.GetString("GOOGLE_SPREADSHEET_ID"),
		GoogleSheetName:          v.GetString("GOOGLE_SHEET_NAME"),
		GoogleServiceAccountJSON: v.GetString("GOOGLE_SERVICE_ACCOUNT_JSON"),
		GoogleServiceAccountFile: v.GetString("GOOGLE_SERVICE_ACCOUNT_FILE"),
	}

	if v.IsSet("COOKIE_SECURE") {
		cfg.CookieSecure = v.GetBool("COOKIE_SECURE")
	}
	if cfg.JWTSecret == "" && appEnv != EnvProduction {
		cfg.JWTSecret = devJWTSecret
	}

	return cfg
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// MailEnabled reports whether SMTP is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// JournalEnabled reports whether the Google Sheets journal is configured.
func (c *Config) JournalEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// SlogLevel maps LogLevel onto slog levels, defaulting to Info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.AppEnv {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errors = append(errors, fmt.Sprintf("invalid APP_ENV '%s': must be one of %v", c.AppEnv,
			[]string{EnvDevelopment, EnvProduction, EnvTest}))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid LOG_LEVEL '%s': must be debug, info, warn or error", c.LogLevel))
	}

	// Sessions
	if c.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required in production")
	} else if c.IsProduction() {
		if c.JWTSecret == devJWTSecret {
			errors = append(errors, "JWT_SECRET must be changed from the development default in production")
		} else if len(c.JWTSecret) < MinJWTSecretLength {
			errors = append(errors, fmt.Sprintf("JWT_SECRET must be at least %d characters in production", MinJWTSecretLength))
		}
	}

	if c.AuthRateLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid auth rate limit %d: must be at least 1", c.AuthRateLimit))
	}
	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}
	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			errors = append(errors, "CORS_ORIGINS cannot contain '*' because credentials are allowed")
			continue
		}
		if u, err := url.Parse(origin); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid CORS origin '%s'", origin))
		}
	}

	// Database
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.SummaryCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid summary cache TTL %v: must not be negative", c.SummaryCacheTTL))
	}
	if c.SummaryCacheTTL > 0 && c.SummaryCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid summary cache size %d: must be at least 1", c.SummaryCacheSize))
	}

	// AMQP is optional; when present it must be well-formed.
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.MailEnabled() {
		if c.SMTPPort < 1 || c.SMTPPort > 65535 {
			errors = append(errors, fmt.Sprintf("invalid SMTP port %d: must be between 1 and 65535", c.SMTPPort))
		}
		if (c.SMTPUser == "") != (c.SMTPPass == "") {
			errors = append(errors, "SMTP_USER and SMTP_PASS must be set together")
		}
	}

	if c.JournalEnabled() {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when GOOGLE_SPREADSHEET_ID is set")
		}
		hasJSON := c.GoogleServiceAccountJSON != ""
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasJSON && !hasFile {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for the sheets journal")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
