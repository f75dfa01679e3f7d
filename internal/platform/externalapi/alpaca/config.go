// Package alpaca provides a client for the Alpaca Market Data API.
package alpaca

import (
	"os"
	"time"
)

// Config holds configuration for the Alpaca Market Data API client.
type Config struct {
	APIKey    string        // API key ID for authentication
	APISecret string        // API secret for authentication
	BaseURL   string        // Base URL for the API (e.g., "https://data.alpaca.markets")
	Timeframe string        // Bar timeframe (e.g., "1Hour")
	Timeout   time.Duration // HTTP request timeout
}

// LoadConfig loads Alpaca configuration from environment variables.
func LoadConfig() Config {
	timeframe := os.Getenv("ALPACA_TIMEFRAME")
	if timeframe == "" {
		timeframe = "1Hour"
	}
	return Config{
		APIKey:    os.Getenv("ALPACA_API_KEY"),
		APISecret: os.Getenv("ALPACA_API_SECRET"),
		BaseURL:   os.Getenv("ALPACA_BASE_URL"),
		Timeframe: timeframe,
		Timeout:   10 * time.Second,
	}
}
