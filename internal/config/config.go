package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Mongo    MongoConfig
	Auth     AuthConfig
	Audit    AuditConfig
	Reminder ReminderConfig
	Sheets   SheetsConfig
	LogLevel string
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Backend string
}

// MongoConfig holds settings for MongoDB.
type MongoConfig struct {
	URI    string
	DBName string
}

// AuthConfig holds the bootstrap admin credentials.
type AuthConfig struct {
	AdminUsername string
	AdminPassword string
}

// AuditConfig holds settings for the audit recorder.
type AuditConfig struct {
	BufferSize int
}

// ReminderConfig holds scheduler-related settings.
type ReminderConfig struct {
	CronSchedule string
	Timezone     string
	HorizonDays  int
	WebhookURL   string
}

// SheetsConfig contains configuration required to export reports to Google
// Sheets. Both values empty disables the export feature.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the sheets export is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" && c.SpreadsheetID != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	horizonDays, err := getenvInt("REMINDER_HORIZON_DAYS", 7)
	if err != nil {
		return nil, err
	}
	auditBuffer, err := getenvInt("AUDIT_BUFFER_SIZE", 256)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Store: StoreConfig{
			Backend: getenvWithDefault("STORE_BACKEND", BackendMongo),
		},
		Mongo: MongoConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "campoflow"),
		},
		Auth: AuthConfig{
			AdminUsername: getenvWithDefault("ADMIN_USERNAME", "admin"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
		Audit: AuditConfig{
			BufferSize: auditBuffer,
		},
		Reminder: ReminderConfig{
			CronSchedule: getenvWithDefault("REMINDER_CRON_SCHEDULE", "0 7 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "UTC"),
			HorizonDays:  horizonDays,
			WebhookURL:   os.Getenv("REMINDER_WEBHOOK_URL"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Backend {
	case BackendMongo:
		if c.Mongo.URI == "" {
			return errors.New("MONGODB_URI must be provided for the mongo backend")
		}
		if c.Mongo.DBName == "" {
			return errors.New("MONGODB_DB_NAME must be provided for the mongo backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	if c.Auth.AdminUsername == "" {
		return errors.New("ADMIN_USERNAME must not be empty")
	}
	if c.Auth.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD must be provided")
	}

	if c.Reminder.CronSchedule == "" {
		return errors.New("REMINDER_CRON_SCHEDULE must be provided")
	}
	if c.Reminder.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}
	if c.Reminder.HorizonDays <= 0 {
		return errors.New("REMINDER_HORIZON_DAYS must be greater than zero")
	}

	if c.Audit.BufferSize <= 0 {
		return errors.New("AUDIT_BUFFER_SIZE must be greater than zero")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}
