package config

import (
	"os"
	"strconv"
	"time"

	"chorequest/internal/models"
)

// Config holds application configuration
type Config struct {
	ServerPort    string
	DatabaseType  string
	DatabaseURL   string
	DatabasePath  string
	JWTSecret     string
	TokenDuration time.Duration

	// GemRatio is how many points convert to one displayed gem.
	GemRatio int

	// Invitation emails via SES; disabled when SESFromEmail is empty.
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string

	// Google OAuth sign-in; disabled when the client ID is empty.
	GoogleClientID     string
	GoogleClientSecret string

	Debug bool
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		ServerPort:    getEnv("PORT", "8080"),
		DatabaseType:  getEnv("DB_TYPE", "sqlite"),
		DatabaseURL:   getEnv("DB_URL", ""),
		DatabasePath:  getEnv("DB_PATH", "./chorequest.db"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		TokenDuration: 24 * time.Hour,
		GemRatio:      getEnvInt("GEM_RATIO", models.DefaultGemRatio),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "ChoreQuest"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:8080"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),

		Debug: getEnv("DEBUG", "") != "",
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
