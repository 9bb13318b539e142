package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort      int
	DatabasePath    string
	Env             string // "development" or "production"
	JWTSecret       string
	CORSOrigin      string
	ResendAPIKey    string // empty means the dev outbox mailer is used
	MailFrom        string
	MaintenanceCron string
	PublicBaseURL   string // base for dev mail preview links
}

// Load loads configuration from environment variables or sets defaults.
// A local .env file is picked up when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:      port,
		DatabasePath:    getEnv("DATABASE_PATH", "./chatterbox.db"),
		Env:             getEnv("ENV", "development"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-me"),
		CORSOrigin:      getEnv("CORS_ORIGIN", "http://localhost:5173"),
		ResendAPIKey:    getEnv("RESEND_API_KEY", ""),
		MailFrom:        getEnv("MAIL_FROM", "Chatterbox <no-reply@localhost>"),
		MaintenanceCron: getEnv("MAINTENANCE_CRON", "@hourly"),
		PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:"+portStr),
	}, nil
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
