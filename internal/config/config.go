// Package config reads the app configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Config carries everything the TUI needs to reach the remote services.
type Config struct {
	// FirebaseAPIKey is the web API key of the Firebase project.
	FirebaseAPIKey string
	// ProjectID is the Firestore project.
	ProjectID string
	// CredentialsFile optionally points at a service-account JSON file
	// for the Firestore client.
	CredentialsFile string
	// AuthEndpoint overrides the Identity Toolkit host (emulator).
	AuthEndpoint string
	LogLevel     string
}

func (c Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks the fields needed to reach the remote services. Not
// called in -memory mode, which needs none of them.
func (c Config) Validate() error {
	if c.FirebaseAPIKey == "" {
		return fmt.Errorf("FIREBASE_API_KEY is required")
	}
	if c.ProjectID == "" {
		return fmt.Errorf("FIRESTORE_PROJECT_ID is required")
	}
	return nil
}

func Load() Config {
	return Config{
		FirebaseAPIKey:  os.Getenv("FIREBASE_API_KEY"),
		ProjectID:       os.Getenv("FIRESTORE_PROJECT_ID"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		AuthEndpoint:    os.Getenv("FIREBASE_AUTH_EMULATOR_HOST"),
		LogLevel:        envOrDefault("TOODO_LOG_LEVEL", "info"),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
