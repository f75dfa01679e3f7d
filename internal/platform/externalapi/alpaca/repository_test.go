package alpaca

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stock_collector/internal/shared/provider"
)

var (
	testStart = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
)

func TestNewAlpacaMarket(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIKey:    "test-key",
		APISecret: "test-secret",
		BaseURL:   "https://data.test.com",
		Timeframe: "1Hour",
	}
	market := NewAlpacaMarket(cfg, &http.Client{})

	if market == nil {
		t.Fatal("expected non-nil market")
	}
	if market.cfg.APIKey != cfg.APIKey {
		t.Errorf("expected API key %q, got %q", cfg.APIKey, market.cfg.APIKey)
	}
}

func TestAlpacaMarket_FetchBars_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/stocks/AAPL/bars" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("APCA-API-KEY-ID") != "test-key" {
			t.Errorf("expected key header, got %q", r.Header.Get("APCA-API-KEY-ID"))
		}
		if r.Header.Get("APCA-API-SECRET-KEY") != "test-secret" {
			t.Errorf("expected secret header, got %q", r.Header.Get("APCA-API-SECRET-KEY"))
		}
		if r.URL.Query().Get("timeframe") != "1Hour" {
			t.Errorf("expected timeframe 1Hour, got %s", r.URL.Query().Get("timeframe"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"symbol": "AAPL",
			"next_page_token": null,
			"bars": [
				{"t": "2024-01-02T09:30:00Z", "o": 185, "h": 186.2, "l": 184.8, "c": 186, "v": 1000000},
				{"t": "2024-01-02T10:30:00Z", "o": 186, "h": 186.5, "l": 185.7, "c": 186.3, "v": 800000}
			]
		}`))
	}))
	defer server.Close()

	cfg := Config{APIKey: "test-key", APISecret: "test-secret", BaseURL: server.URL, Timeframe: "1Hour"}
	market := NewAlpacaMarket(cfg, server.Client())

	bars, err := market.FetchBars(context.Background(), "AAPL", testStart, testEnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Timestamp != "2024-01-02T09:30:00Z" {
		t.Errorf("expected timestamp 2024-01-02T09:30:00Z, got %s", bars[0].Timestamp)
	}
	// json.Number は元の表記を保持する
	if bars[0].Open != "185" {
		t.Errorf("expected open 185, got %s", bars[0].Open)
	}
	if bars[1].Close != "186.3" {
		t.Errorf("expected close 186.3, got %s", bars[1].Close)
	}
}

func TestAlpacaMarket_FetchBars_FollowsPagination(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if r.URL.Query().Get("page_token") == "" {
			_, _ = w.Write([]byte(`{
				"symbol": "AAPL",
				"next_page_token": "tok-1",
				"bars": [{"t": "2024-01-02T09:30:00Z", "o": 185, "h": 186.2, "l": 184.8, "c": 186, "v": 1000000}]
			}`))
			return
		}
		if r.URL.Query().Get("page_token") != "tok-1" {
			t.Errorf("unexpected page token %s", r.URL.Query().Get("page_token"))
		}
		_, _ = w.Write([]byte(`{
			"symbol": "AAPL",
			"next_page_token": null,
			"bars": [{"t": "2024-01-02T10:30:00Z", "o": 186, "h": 186.5, "l": 185.7, "c": 186.3, "v": 800000}]
		}`))
	}))
	defer server.Close()

	cfg := Config{BaseURL: server.URL, Timeframe: "1Hour"}
	market := NewAlpacaMarket(cfg, server.Client())

	bars, err := market.FetchBars(context.Background(), "AAPL", testStart, testEnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars across pages, got %d", len(bars))
	}
}

func TestAlpacaMarket_FetchBars_StatusClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		wantKind   provider.Kind
	}{
		{"rate limited", http.StatusTooManyRequests, provider.KindRateLimited},
		{"unauthorized", http.StatusUnauthorized, provider.KindUnauthorized},
		{"forbidden", http.StatusForbidden, provider.KindUnauthorized},
		{"not found", http.StatusNotFound, provider.KindNotFound},
		{"internal server error", http.StatusInternalServerError, provider.KindTransient},
		{"service unavailable", http.StatusServiceUnavailable, provider.KindTransient},
		{"bad request", http.StatusBadRequest, provider.KindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(`{"message": "boom"}`))
			}))
			defer server.Close()

			cfg := Config{BaseURL: server.URL, Timeframe: "1Hour"}
			market := NewAlpacaMarket(cfg, server.Client())

			_, err := market.FetchBars(context.Background(), "AAPL", testStart, testEnd)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if got, _ := provider.KindOf(err); got != tt.wantKind {
				t.Errorf("expected kind %v, got %v (%v)", tt.wantKind, got, err)
			}
		})
	}
}

func TestAlpacaMarket_FetchBars_InvalidJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{invalid json`))
	}))
	defer server.Close()

	cfg := Config{BaseURL: server.URL, Timeframe: "1Hour"}
	market := NewAlpacaMarket(cfg, server.Client())

	_, err := market.FetchBars(context.Background(), "AAPL", testStart, testEnd)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got, _ := provider.KindOf(err); got != provider.KindMalformed {
		t.Errorf("expected malformed, got %v", got)
	}
}

func TestAlpacaMarket_FetchBars_EmptyBars(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"symbol": "AAPL", "next_page_token": null, "bars": []}`))
	}))
	defer server.Close()

	cfg := Config{BaseURL: server.URL, Timeframe: "1Hour"}
	market := NewAlpacaMarket(cfg, server.Client())

	bars, err := market.FetchBars(context.Background(), "AAPL", testStart, testEnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 0 {
		t.Errorf("expected 0 bars, got %d", len(bars))
	}
}

func TestAlpacaMarket_FetchBars_ContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := Config{BaseURL: server.URL, Timeframe: "1Hour"}
	market := NewAlpacaMarket(cfg, server.Client())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := market.FetchBars(ctx, "AAPL", testStart, testEnd)
	if err == nil {
		t.Fatal("expected error due to context cancellation, got nil")
	}
	if got, _ := provider.KindOf(err); got != provider.KindTransient {
		t.Errorf("expected transient, got %v", got)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	cfg := LoadConfig()

	if cfg.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.Timeout)
	}
	if cfg.Timeframe != "1Hour" {
		t.Errorf("expected default timeframe 1Hour, got %s", cfg.Timeframe)
	}
}
