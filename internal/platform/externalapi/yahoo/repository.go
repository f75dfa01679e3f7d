package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"stock_collector/internal/feature/company/domain/entity"
	"stock_collector/internal/feature/company/usecase"
	"stock_collector/internal/platform/externalapi/yahoo/dto"
	"stock_collector/internal/shared/provider"
)

// YahooCompany はYahoo FinanceのquoteSummaryから企業プロフィールを取得する
// CompanyProvider実装です。
type YahooCompany struct {
	cfg    Config
	client *http.Client
}

// YahooCompanyがCompanyProviderを実装していることをコンパイル時に検証します。
var _ usecase.CompanyProvider = (*YahooCompany)(nil)

// NewYahooCompany は指定された設定とHTTPクライアントでYahooCompanyの新しいインスタンスを生成します。
func NewYahooCompany(cfg Config, client *http.Client) *YahooCompany {
	return &YahooCompany{cfg: cfg, client: client}
}

// FetchCompany はassetProfileとpriceモジュールを取得し、企業プロフィールに変換します。
// 銘柄が存在しない場合（resultが空、またはNot Foundエラー）はKindNotFoundを返します。
func (y *YahooCompany) FetchCompany(ctx context.Context, symbol string) (entity.CompanyReference, error) {
	q := url.Values{}
	q.Set("modules", "assetProfile,price")

	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s", y.cfg.BaseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return entity.CompanyReference{}, provider.NewError(provider.KindTransient, symbol, err)
	}

	res, err := y.client.Do(req)
	if err != nil {
		return entity.CompanyReference{}, provider.NewError(provider.KindTransient, symbol, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		return entity.CompanyReference{}, provider.NewError(provider.KindRateLimited, symbol, fmt.Errorf("yahoo http %d", res.StatusCode))
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return entity.CompanyReference{}, provider.NewError(provider.KindUnauthorized, symbol, fmt.Errorf("yahoo http %d", res.StatusCode))
	case res.StatusCode == http.StatusNotFound:
		return entity.CompanyReference{}, provider.NewError(provider.KindNotFound, symbol, fmt.Errorf("yahoo http %d", res.StatusCode))
	case res.StatusCode >= 500:
		return entity.CompanyReference{}, provider.NewError(provider.KindTransient, symbol, fmt.Errorf("yahoo http %d", res.StatusCode))
	case res.StatusCode != http.StatusOK:
		return entity.CompanyReference{}, provider.NewError(provider.KindMalformed, symbol, fmt.Errorf("yahoo http %d", res.StatusCode))
	}

	var body dto.QuoteSummaryResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return entity.CompanyReference{}, provider.NewError(provider.KindMalformed, symbol, err)
	}
	if e := body.QuoteSummary.Error; e != nil {
		return entity.CompanyReference{}, provider.NewError(provider.KindNotFound, symbol, fmt.Errorf("yahoo: %s", e.Description))
	}
	if len(body.QuoteSummary.Result) == 0 {
		return entity.CompanyReference{}, provider.NewError(provider.KindNotFound, symbol, fmt.Errorf("yahoo: empty result"))
	}

	return mapResult(symbol, body.QuoteSummary.Result[0]), nil
}

func mapResult(symbol string, r dto.QuoteSummaryResult) entity.CompanyReference {
	ref := entity.CompanyReference{Symbol: symbol}
	if r.Price != nil {
		ref.CompanyName = r.Price.LongName
		if ref.CompanyName == "" {
			ref.CompanyName = r.Price.ShortName
		}
	}
	if r.AssetProfile == nil {
		return ref
	}
	ref.Industry = r.AssetProfile.Industry
	ref.Sector = r.AssetProfile.Sector
	for _, o := range r.AssetProfile.CompanyOfficers {
		ref.Officers = append(ref.Officers, entity.Officer{
			Name:             o.Name,
			Title:            o.Title,
			Age:              o.Age,
			YearBorn:         o.YearBorn,
			FiscalYear:       o.FiscalYear,
			TotalPay:         o.TotalPay.Int64(),
			ExercisedValue:   o.ExercisedValue.Int64(),
			UnexercisedValue: o.UnexercisedValue.Int64(),
		})
	}
	return ref
}
