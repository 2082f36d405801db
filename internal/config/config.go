// Package config loads service configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/insightdelivered/statement-importer/internal/categorize"
)

const (
	defaultLedgerBaseURL  = "http://localhost:8000"
	defaultMongoDatabase  = "expensestracker"
	defaultListenAddr     = ":8080"
	defaultTimeoutSeconds = 10

	envLedgerBaseURL = "LEDGER_BASE_URL"
	envMongoURI      = "MONGO_URI"
	envMongoDatabase = "MONGO_DB"
	envListenAddr    = "LISTEN_ADDR"
	envTimeout       = "HTTP_TIMEOUT_SECONDS"
	envThreshold     = "CATEGORIZE_THRESHOLD"
)

// Config holds the service configuration.
type Config struct {
	LedgerBaseURL string
	MongoURI      string // empty means the in-memory staging store
	MongoDatabase string
	ListenAddr    string
	HTTPTimeout   time.Duration
	// FuzzyThreshold is the minimum fuzzy score (0-100) at which the
	// categorizer accepts an approximate keyword match.
	FuzzyThreshold int
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() *Config {
	return &Config{
		LedgerBaseURL:  getEnv(envLedgerBaseURL, defaultLedgerBaseURL),
		MongoURI:       os.Getenv(envMongoURI),
		MongoDatabase:  getEnv(envMongoDatabase, defaultMongoDatabase),
		ListenAddr:     getEnv(envListenAddr, defaultListenAddr),
		HTTPTimeout:    time.Duration(getEnvInt(envTimeout, defaultTimeoutSeconds)) * time.Second,
		FuzzyThreshold: getEnvInt(envThreshold, categorize.DefaultThreshold),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
