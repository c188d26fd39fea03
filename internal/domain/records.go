// backend-go/internal/domain/records.go
package domain

// Dates are kept as ISO "YYYY-MM-DD" strings end to end. Bucketing only ever
// looks at their prefix, see MonthKey.

// Expense represents a row of the gastos table
type Expense struct {
	ID          int64   `json:"id" db:"id"`
	Date        string  `json:"data" db:"data"`
	Category    string  `json:"categoria" db:"categoria"`
	Description string  `json:"descricao" db:"descricao"`
	AmountBRL   float64 `json:"valor_brl" db:"valor_brl"`
	AmountUSD   float64 `json:"valor_usd" db:"valor_usd"`
	Method      string  `json:"metodo" db:"metodo"`
	Account     string  `json:"conta" db:"conta"`
	Who         string  `json:"quem" db:"quem"`
}

// Investment represents a row of the investimentos table
type Investment struct {
	ID        int64   `json:"id" db:"id"`
	Date      string  `json:"data" db:"data"`
	AmountBRL float64 `json:"valor_brl" db:"valor_brl"`
	AmountUSD float64 `json:"valor_usd" db:"valor_usd"`
	Method    string  `json:"metodo" db:"metodo"`
	Account   string  `json:"conta" db:"conta"`
	Who       string  `json:"quem" db:"quem"`
}

// Revenue is a generic non-marketplace income row (receitas).
type Revenue struct {
	ID        int64   `json:"id" db:"id"`
	Date      string  `json:"data" db:"data"`
	AmountBRL float64 `json:"valor_brl" db:"valor_brl"`
	AmountUSD float64 `json:"valor_usd" db:"valor_usd"`
}

// Product is a purchased batch of a marketplace listing. Costs are in USD;
// Freight and Tax apply to the whole batch of PurchasedQty units.
type Product struct {
	ID                int64   `json:"id" db:"id"`
	DateAdded         string  `json:"data_add" db:"data_add"`
	DateOnMarketplace *string `json:"data_amz" db:"data_amz"`
	Name              string  `json:"nome" db:"nome"`
	SKU               string  `json:"sku" db:"sku"`
	UPC               string  `json:"upc" db:"upc"`
	ASIN              string  `json:"asin" db:"asin"`
	StockQty          int64   `json:"estoque" db:"estoque"`
	UnitBaseCost      float64 `json:"custo_base" db:"custo_base"`
	BatchFreight      float64 `json:"freight" db:"freight"`
	BatchTax          float64 `json:"tax" db:"tax"`
	PurchasedQty      int64   `json:"quantidade" db:"quantidade"`
	PrepCost          float64 `json:"prep" db:"prep"`
	SalePrice         float64 `json:"sold_for" db:"sold_for"`
	MarketplaceFees   float64 `json:"amazon_fees" db:"amazon_fees"`
	LinkMarketplace   string  `json:"link_amazon" db:"link_amazon"`
	LinkSupplier      string  `json:"link_fornecedor" db:"link_fornecedor"`
}

// EffectiveDate is the marketplace listing date when set, else the date the
// product was added.
func (p Product) EffectiveDate() string {
	if p.DateOnMarketplace != nil && *p.DateOnMarketplace != "" {
		return *p.DateOnMarketplace
	}
	return p.DateAdded
}

// AmazonReceipt is a marketplace sale. SKUSnapshot and NameSnapshot keep the
// product identity at sale time; ProductID may point to a deleted product.
type AmazonReceipt struct {
	ID           int64   `json:"id" db:"id"`
	Date         string  `json:"data" db:"data"`
	ProductID    *int64  `json:"produto_id" db:"produto_id"`
	Quantity     int64   `json:"quantidade" db:"quantidade"`
	AmountUSD    float64 `json:"valor_usd" db:"valor_usd"`
	Who          string  `json:"quem" db:"quem"`
	Note         string  `json:"obs" db:"obs"`
	SKUSnapshot  string  `json:"sku" db:"sku"`
	NameSnapshot string  `json:"produto" db:"produto"`
}

// AmazonBalance is an append-only snapshot of the seller account balance.
type AmazonBalance struct {
	ID        int64   `json:"id,omitempty" db:"id"`
	Date      string  `json:"data,omitempty" db:"data"`
	Available float64 `json:"disponivel" db:"disponivel"`
	Pending   float64 `json:"pendente" db:"pendente"`
	Currency  string  `json:"moeda" db:"moeda"`
}

// DefaultBalance is reported when no snapshot has been recorded yet.
func DefaultBalance() AmazonBalance {
	return AmazonBalance{Currency: "USD"}
}

// RecordKind names a deletable record collection. The value is the table name.
type RecordKind string

const (
	KindExpense    RecordKind = "gastos"
	KindInvestment RecordKind = "investimentos"
	KindRevenue    RecordKind = "receitas"
	KindProduct    RecordKind = "produtos"
	KindReceipt    RecordKind = "amazon_receitas"
	KindBalance    RecordKind = "amazon_saldos"
)

// Valid reports whether k is one of the known collections.
func (k RecordKind) Valid() bool {
	switch k {
	case KindExpense, KindInvestment, KindRevenue, KindProduct, KindReceipt, KindBalance:
		return true
	}
	return false
}

// WriteResult mirrors the {lastID, changes} payload returned by writes.
// LastID is omitted for deletes.
type WriteResult struct {
	LastID  int64 `json:"lastID,omitempty"`
	Changes int64 `json:"changes"`
}
