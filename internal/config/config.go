package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port        string
	CORSOrigins []string

	// Logging
	LogLevel  string
	LogFormat string

	// Backend selection: firestore, sqlite or memory
	DataBackend string

	// SQLite
	SQLiteDBPath string

	// Firebase / Firestore
	FirebaseProjectID       string
	FirebaseCredentialsFile string
	FirestorePrefix         string

	// Authentication: firebase or static
	AuthMode     string
	StaticTokens string

	// Text generation
	GeminiAPIKey string
	GeminiModel  string
	AITimeout    time.Duration
	AIRateLimit  int

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror (worker)
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Worker
	MirrorBatchSize int
	MirrorInterval  time.Duration

	// Insight widget state
	WidgetMaxUsers int
	WidgetTTL      time.Duration

	// Uploads
	MaxUploadBytes int64
}

var (
	validBackends  = []string{"firestore", "sqlite", "memory"}
	validAuthModes = []string{"firebase", "static"}
)

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8081"),
		CORSOrigins: getEnvList("CORS_ORIGINS"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finsight.db"),

		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", os.Getenv("GOOGLE_CLOUD_PROJECT")),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		FirestorePrefix:         getEnv("FIRESTORE_COLLECTION_PREFIX", ""),

		AuthMode:     getEnv("AUTH_MODE", "firebase"),
		StaticTokens: getEnv("AUTH_STATIC_TOKENS", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		AITimeout:    getEnvDuration("AI_TIMEOUT", 60*time.Second),
		AIRateLimit:  getEnvInt("AI_RATE_LIMIT", 20),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finsight"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "records_created"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Records"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		MirrorBatchSize: getEnvInt("MIRROR_BATCH_SIZE", 50),
		MirrorInterval:  getEnvDuration("MIRROR_INTERVAL", time.Minute),

		WidgetMaxUsers: getEnvInt("WIDGET_MAX_USERS", 1000),
		WidgetTTL:      getEnvDuration("WIDGET_TTL", 30*time.Minute),

		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
	}
}

// Validate checks the whole configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}
	if c.DataBackend == "sqlite" && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}
	if c.DataBackend == "firestore" && c.FirebaseProjectID == "" {
		errors = append(errors, "FIREBASE_PROJECT_ID is required when using firestore backend")
	}

	if !slices.Contains(validAuthModes, c.AuthMode) {
		errors = append(errors, fmt.Sprintf("invalid auth mode '%s': must be one of %v", c.AuthMode, validAuthModes))
	}
	if c.AuthMode == "firebase" && c.FirebaseProjectID == "" {
		errors = append(errors, "FIREBASE_PROJECT_ID is required when using firebase auth")
	}
	if c.AuthMode == "static" && strings.TrimSpace(c.StaticTokens) == "" {
		errors = append(errors, "AUTH_STATIC_TOKENS is required when using static auth")
	}

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

	if c.AITimeout < time.Second || c.AITimeout > 10*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid AI timeout %v: must be between 1s and 10m", c.AITimeout))
	}
	if c.AIRateLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid AI rate limit %d: must be at least 1", c.AIRateLimit))
	}
	if c.WidgetMaxUsers < 1 {
		errors = append(errors, fmt.Sprintf("invalid widget max users %d: must be at least 1", c.WidgetMaxUsers))
	}
	if c.MaxUploadBytes < 1024 {
		errors = append(errors, fmt.Sprintf("invalid max upload size %d: must be at least 1024 bytes", c.MaxUploadBytes))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ValidateWorker checks the settings only the mirror worker needs.
func (c *Config) ValidateWorker() error {
	var errors []string

	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required for the mirror worker")
	}
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "GOOGLE_SPREADSHEET_ID is required for the mirror worker")
	}
	if c.MirrorBatchSize < 1 || c.MirrorBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid mirror batch size %d: must be between 1 and 1000", c.MirrorBatchSize))
	}
	if c.MirrorInterval < time.Second || c.MirrorInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid mirror interval %v: must be between 1 second and 24 hours", c.MirrorInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("worker configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
