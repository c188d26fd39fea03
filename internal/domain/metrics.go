package domain

// PeriodSummary is the resumo/totais payload.
type PeriodSummary struct {
	RevenueUSD float64 `json:"recUSD"`
	RevenueBRL float64 `json:"recBRL"`
	ExpenseUSD float64 `json:"despUSD"`
	ExpenseBRL float64 `json:"despBRL"`
}

// ProfitTotals is the lucros payload. AllTime never depends on the requested period.
type ProfitTotals struct {
	Period  float64 `json:"lucroPeriodo"`
	AllTime float64 `json:"lucroTotal"`
}

// SeriesPoint is one month of the revenue vs. expenses series.
type SeriesPoint struct {
	Month            string  `json:"mes"`
	RevenueAmazonUSD float64 `json:"receitas_amz"`
	TotalExpensesUSD float64 `json:"despesas_totais"`
	Result           float64 `json:"resultado"`
}

// ProductSales is a top/bottom sellers row.
type ProductSales struct {
	SKU  string `json:"sku"`
	Name string `json:"nome"`
	Qty  int64  `json:"qty"`
}

const (
	SalesScopeMonth = "month"
	SalesScopeYear  = "year"

	SortAsc  = "asc"
	SortDesc = "desc"

	DefaultSalesLimit = 10

	UnknownSKU  = "(sem SKU)"
	UnknownName = "(sem nome)"
)

// SalesQuery parametrizes the top/bottom sellers ranking. Zero values fall back
// to month scope, descending order, DefaultSalesLimit and the current date.
type SalesQuery struct {
	Scope string
	Order string
	Limit int
	Year  int
	Month int
}

// ProductMetrics carries the per-unit figures derived from a product's costs.
// MarginPercent is nil when the sale price is not positive.
type ProductMetrics struct {
	EffectivePriceToBuy float64  `json:"price_to_buy"`
	GrossProfitPerUnit  float64  `json:"gross_profit_unit"`
	MarginPercent       *float64 `json:"margin_pct"`
	TotalPurchaseCost   float64  `json:"total_purchase_cost"`
}

// ProductView is a product as listed by the API.
type ProductView struct {
	Product
	Metrics ProductMetrics `json:"metrics"`
}
