// Package dto defines data transfer objects for the Alpaca Market Data API responses.
package dto

import "encoding/json"

// BarsResponse represents the JSON response from the stock bars endpoint.
// Prices arrive as JSON numbers; they are kept as json.Number so no
// precision is lost before normalization.
type BarsResponse struct {
	Symbol        string  `json:"symbol"`
	NextPageToken *string `json:"next_page_token"`
	Bars          []struct {
		Timestamp string      `json:"t"`
		Open      json.Number `json:"o"`
		High      json.Number `json:"h"`
		Low       json.Number `json:"l"`
		Close     json.Number `json:"c"`
		Volume    json.Number `json:"v"`
	} `json:"bars"`
}

// ErrorResponse is the body Alpaca returns alongside non-2xx statuses.
type ErrorResponse struct {
	Message string `json:"message"`
}
