// Package dto defines data transfer objects for the Yahoo Finance quoteSummary responses.
package dto

// QuoteSummaryResponse represents the JSON envelope of the quoteSummary
// endpoint. Only the assetProfile and price modules are requested.
type QuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []QuoteSummaryResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type QuoteSummaryResult struct {
	AssetProfile *struct {
		Industry        string    `json:"industry"`
		Sector          string    `json:"sector"`
		CompanyOfficers []Officer `json:"companyOfficers"`
	} `json:"assetProfile"`
	Price *struct {
		LongName  string `json:"longName"`
		ShortName string `json:"shortName"`
	} `json:"price"`
}

// Officer carries the officer fields; monetary values arrive wrapped in
// {"raw": n, "fmt": "..."} objects.
type Officer struct {
	Name             string    `json:"name"`
	Title            string    `json:"title"`
	Age              int       `json:"age"`
	YearBorn         int       `json:"yearBorn"`
	FiscalYear       int       `json:"fiscalYear"`
	TotalPay         *RawValue `json:"totalPay"`
	ExercisedValue   *RawValue `json:"exercisedValue"`
	UnexercisedValue *RawValue `json:"unexercisedValue"`
}

type RawValue struct {
	Raw int64 `json:"raw"`
}

// Int64 returns the raw value, or 0 when the field was absent.
func (v *RawValue) Int64() int64 {
	if v == nil {
		return 0
	}
	return v.Raw
}
