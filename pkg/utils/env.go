package utils

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads a .env file if one is present. Missing files are fine;
// deployments configure through real environment variables.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
}

func GetEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
