package alpaca

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"stock_collector/internal/feature/marketdata/domain/entity"
	"stock_collector/internal/feature/marketdata/usecase"
	"stock_collector/internal/platform/externalapi/alpaca/dto"
	"stock_collector/internal/shared/provider"
)

// AlpacaMarket はAlpaca Market Data APIから株価バーを取得するBarProvider実装です。
type AlpacaMarket struct {
	cfg    Config
	client *http.Client
}

// AlpacaMarketがBarProviderを実装していることをコンパイル時に検証します。
var _ usecase.BarProvider = (*AlpacaMarket)(nil)

// NewAlpacaMarket は指定された設定とHTTPクライアントでAlpacaMarketの新しいインスタンスを生成します。
func NewAlpacaMarket(cfg Config, client *http.Client) *AlpacaMarket {
	return &AlpacaMarket{cfg: cfg, client: client}
}

// FetchBars はAlpaca APIから指定銘柄・指定期間のバーを取得します。
// ページングされたレスポンスは next_page_token が尽きるまで辿ります。
// 失敗は provider.Error に分類して返すため、呼び出し側は Kind だけを見て
// 再試行可否を判断できます。
func (a *AlpacaMarket) FetchBars(ctx context.Context, symbol string, start, end time.Time) ([]entity.RawBar, error) {
	var (
		bars      []entity.RawBar
		pageToken string
	)
	for {
		page, next, err := a.fetchPage(ctx, symbol, start, end, pageToken)
		if err != nil {
			return nil, err
		}
		bars = append(bars, page...)
		if next == "" {
			return bars, nil
		}
		pageToken = next
	}
}

func (a *AlpacaMarket) fetchPage(ctx context.Context, symbol string, start, end time.Time, pageToken string) ([]entity.RawBar, string, error) {
	q := url.Values{}
	q.Set("timeframe", a.cfg.Timeframe)
	q.Set("start", start.UTC().Format(time.RFC3339))
	q.Set("end", end.UTC().Format(time.RFC3339))
	q.Set("limit", "10000")
	if pageToken != "" {
		q.Set("page_token", pageToken)
	}

	u := fmt.Sprintf("%s/v2/stocks/%s/bars?%s", a.cfg.BaseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", provider.NewError(provider.KindTransient, symbol, err)
	}
	req.Header.Set("APCA-API-KEY-ID", a.cfg.APIKey)
	req.Header.Set("APCA-API-SECRET-KEY", a.cfg.APISecret)

	res, err := a.client.Do(req)
	if err != nil {
		// タイムアウトやコネクション断はすべて一時障害として扱う
		return nil, "", provider.NewError(provider.KindTransient, symbol, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode != http.StatusOK {
		return nil, "", a.classifyStatus(res, symbol)
	}

	var body dto.BarsResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, "", provider.NewError(provider.KindMalformed, symbol, err)
	}

	raws := make([]entity.RawBar, 0, len(body.Bars))
	for _, b := range body.Bars {
		raws = append(raws, entity.RawBar{
			Timestamp: b.Timestamp,
			Open:      b.Open.String(),
			High:      b.High.String(),
			Low:       b.Low.String(),
			Close:     b.Close.String(),
			Volume:    b.Volume.String(),
		})
	}

	next := ""
	if body.NextPageToken != nil {
		next = *body.NextPageToken
	}
	return raws, next, nil
}

// classifyStatus は非2xxのHTTPステータスをprovider.Errorに写します。
func (a *AlpacaMarket) classifyStatus(res *http.Response, symbol string) error {
	var msg dto.ErrorResponse
	_ = json.NewDecoder(res.Body).Decode(&msg)
	cause := fmt.Errorf("alpaca http %d: %s", res.StatusCode, msg.Message)

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return provider.NewError(provider.KindRateLimited, symbol, cause)
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return provider.NewError(provider.KindUnauthorized, symbol, cause)
	case res.StatusCode == http.StatusNotFound:
		return provider.NewError(provider.KindNotFound, symbol, cause)
	case res.StatusCode >= 500:
		return provider.NewError(provider.KindTransient, symbol, cause)
	default:
		return provider.NewError(provider.KindMalformed, symbol, cause)
	}
}
