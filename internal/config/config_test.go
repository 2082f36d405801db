package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{envLedgerBaseURL, envMongoURI, envMongoDatabase, envListenAddr, envTimeout, envThreshold} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.LedgerBaseURL != defaultLedgerBaseURL {
		t.Errorf("LedgerBaseURL = %q, want %q", cfg.LedgerBaseURL, defaultLedgerBaseURL)
	}
	if cfg.MongoURI != "" {
		t.Errorf("MongoURI = %q, want empty", cfg.MongoURI)
	}
	if cfg.ListenAddr != defaultListenAddr {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, defaultListenAddr)
	}
	if cfg.HTTPTimeout != defaultTimeoutSeconds*time.Second {
		t.Errorf("HTTPTimeout = %v, want %v", cfg.HTTPTimeout, defaultTimeoutSeconds*time.Second)
	}
	if cfg.FuzzyThreshold != 85 {
		t.Errorf("FuzzyThreshold = %d, want 85", cfg.FuzzyThreshold)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(envLedgerBaseURL, "https://ledger.example.com")
	t.Setenv(envMongoURI, "mongodb://localhost:27017")
	t.Setenv(envThreshold, "90")
	t.Setenv(envTimeout, "3")

	cfg := Load()
	if cfg.LedgerBaseURL != "https://ledger.example.com" {
		t.Errorf("LedgerBaseURL = %q", cfg.LedgerBaseURL)
	}
	if cfg.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("MongoURI = %q", cfg.MongoURI)
	}
	if cfg.FuzzyThreshold != 90 {
		t.Errorf("FuzzyThreshold = %d, want 90", cfg.FuzzyThreshold)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("HTTPTimeout = %v, want 3s", cfg.HTTPTimeout)
	}
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv(envThreshold, "not-a-number")

	cfg := Load()
	if cfg.FuzzyThreshold != 85 {
		t.Errorf("FuzzyThreshold = %d, want default 85", cfg.FuzzyThreshold)
	}
}
