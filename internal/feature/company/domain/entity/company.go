package entity

// CompanyReference は銘柄に紐づく企業プロフィールのスナップショット。
// 日次のリフレッシュで全量入れ替えされる。
type CompanyReference struct {
	Symbol      string
	CompanyName string
	Industry    string
	Sector      string
	Officers    []Officer
}

// Officer は企業の役員情報。報酬関連の金額は年次報告の raw 値。
type Officer struct {
	Name             string
	Title            string
	Age              int
	YearBorn         int
	FiscalYear       int
	TotalPay         int64
	ExercisedValue   int64
	UnexercisedValue int64
}
