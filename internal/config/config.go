// Package config reads service configuration from the environment.
package config

import (
	"os"
	"strings"
)

// Config is everything the binaries need to wire the service.
type Config struct {
	ListenAddr  string
	DBConnStr   string
	StateDir    string
	BillingURL  string
	BillingKey  string
	SuccessURL  string
	CancelURL   string
	CORSOrigins []string
}

// Load reads configuration from environment variables with local-dev
// defaults.
func Load() Config {
	cfg := Config{
		ListenAddr: getenv("REGLENS_ADDR", ":8080"),
		DBConnStr:  getenv("DB_CONN_STRING", "postgres://localhost:5432/postgres?sslmode=disable"),
		StateDir:   getenv("REGLENS_STATE_DIR", "data/wizard-state"),
		BillingURL: getenv("BILLING_API_URL", "http://127.0.0.1:4242"),
		BillingKey: os.Getenv("BILLING_API_KEY"),
		SuccessURL: getenv("CHECKOUT_SUCCESS_URL", "http://localhost:8080/api/onboarding/checkout/return?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  getenv("CHECKOUT_CANCEL_URL", "http://localhost:8080/onboarding/plan"),
	}
	if origins := os.Getenv("REGLENS_CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = strings.Split(origins, ",")
	}
	return cfg
}

// GeminiAPIKey looks for GEMINI_API_KEY first, then falls back to
// GOOGLE_API_KEY.
func GeminiAPIKey() string {
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		return apiKey
	}
	return os.Getenv("GOOGLE_API_KEY")
}

// IsMockAIMode reports whether the service should use the offline mock
// recommender instead of the Gemini agent.
func IsMockAIMode() bool {
	return strings.EqualFold(os.Getenv("REGLENS_AI_MODE"), "mock")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
