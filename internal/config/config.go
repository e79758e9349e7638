package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Session
		Lookup
		UI
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		DSN string // SQLite file path or postgres:// URL
	}
	Session struct {
		SecretKey     string
		Lifetime      time.Duration
		SecureCookies bool // Set to false for local dev without HTTPS
	}
	Lookup struct {
		APIKey    string
		SearchURL string        // Book metadata provider base URL
		ISBNURL   string        // ISBN provider base URL
		Timeout   time.Duration // 0 leaves the transport default in place
		ISBNDelay time.Duration // Fixed wait before every ISBN request
	}
	UI struct {
		TemplatesPath string
		StaticPath    string
	}
	Tasks struct {
		Enabled          bool
		Workers          int
		ReleaseAfter     time.Duration
		CleanupInterval  time.Duration
		BackfillSchedule string // Cron format, empty disables the periodic backfill
	}
)

// IsPostgres reports whether the configured DSN points at a PostgreSQL server.
func (d Database) IsPostgres() bool {
	return strings.HasPrefix(d.DSN, "postgres://") ||
		strings.HasPrefix(d.DSN, "postgresql://") ||
		strings.Contains(d.DSN, "host=")
}

func NewConfig() *Config {
	// A missing .env is fine, the process environment still applies
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 5002)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database", DefaultDatabasePath)
	v.SetDefault("templates_path", "./templates")
	v.SetDefault("static_path", "./static")

	v.SetDefault("secret_key", "")
	_ = v.BindEnv("secret_key", "SECRET_KEY", "SECRETKEY")
	v.SetDefault("session_lifetime", "24h")
	v.SetDefault("secure_cookies", false)

	v.SetDefault("api_key", "")
	v.SetDefault("lookup_search_url", DefaultSearchURL)
	v.SetDefault("lookup_isbn_url", DefaultISBNURL)
	v.SetDefault("lookup_timeout", "0s")
	v.SetDefault("isbn_lookup_delay", "1s")

	v.SetDefault("tasks_enabled", false)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("isbn_backfill_schedule", "")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			DSN: v.GetString("DATABASE"),
		},
		Session: Session{
			SecretKey:     v.GetString("SECRET_KEY"),
			Lifetime:      v.GetDuration("SESSION_LIFETIME"),
			SecureCookies: v.GetBool("SECURE_COOKIES"),
		},
		Lookup: Lookup{
			APIKey:    v.GetString("API_KEY"),
			SearchURL: v.GetString("LOOKUP_SEARCH_URL"),
			ISBNURL:   v.GetString("LOOKUP_ISBN_URL"),
			Timeout:   v.GetDuration("LOOKUP_TIMEOUT"),
			ISBNDelay: v.GetDuration("ISBN_LOOKUP_DELAY"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
		},
		Tasks: Tasks{
			Enabled:          v.GetBool("TASKS_ENABLED"),
			Workers:          v.GetInt("TASK_WORKERS"),
			ReleaseAfter:     v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:  v.GetDuration("TASK_CLEANUP_INTERVAL"),
			BackfillSchedule: v.GetString("ISBN_BACKFILL_SCHEDULE"),
		},
	}
}
