// Package yahoo provides a client for the Yahoo Finance quoteSummary API.
package yahoo

import (
	"os"
	"time"
)

// Config holds configuration for the Yahoo Finance client.
type Config struct {
	BaseURL string        // Base URL for the API (e.g., "https://query2.finance.yahoo.com")
	Timeout time.Duration // HTTP request timeout
}

// LoadConfig loads Yahoo Finance configuration from environment variables.
func LoadConfig() Config {
	return Config{
		BaseURL: os.Getenv("YAHOO_BASE_URL"),
		Timeout: 10 * time.Second,
	}
}
