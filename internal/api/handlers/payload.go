package handlers

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
)

// number decodes a JSON number or numeric string. null and absent leave it
// unset; anything non-numeric decodes as 0.
type number struct {
	value float64
	set   bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*n = number{}
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}

	n.set = true
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		n.value = 0
		return nil
	}
	n.value = f
	return nil
}

func (n number) asFloat() float64 {
	return n.value
}

// asInt rejects fractional values and anything outside the int64 range.
func (n number) asInt(field string) (int64, error) {
	if n.value != math.Trunc(n.value) {
		return 0, &domain.ValidationError{Field: field, Reason: fmt.Sprintf("expected a whole number, got %v", n.value)}
	}
	if n.value < math.MinInt64 || n.value >= math.MaxInt64 {
		return 0, &domain.ValidationError{Field: field, Reason: "out of range"}
	}
	return int64(n.value), nil
}

func (n number) floatOr(def float64) float64 {
	if !n.set {
		return def
	}
	return n.value
}

type expensePayload struct {
	Date        string `json:"data"`
	Category    string `json:"categoria"`
	Description string `json:"descricao"`
	AmountBRL   number `json:"valor_brl"`
	AmountUSD   number `json:"valor_usd"`
	Method      string `json:"metodo"`
	Account     string `json:"conta"`
	Who         string `json:"quem"`
}

func (p expensePayload) toDomain() domain.Expense {
	return domain.Expense{
		Date:        strings.TrimSpace(p.Date),
		Category:    strings.TrimSpace(p.Category),
		Description: p.Description,
		AmountBRL:   p.AmountBRL.asFloat(),
		AmountUSD:   p.AmountUSD.asFloat(),
		Method:      p.Method,
		Account:     p.Account,
		Who:         p.Who,
	}
}

type investmentPayload struct {
	Date      string `json:"data"`
	AmountBRL number `json:"valor_brl"`
	AmountUSD number `json:"valor_usd"`
	Method    string `json:"metodo"`
	Account   string `json:"conta"`
	Who       string `json:"quem"`
}

func (p investmentPayload) toDomain() domain.Investment {
	return domain.Investment{
		Date:      strings.TrimSpace(p.Date),
		AmountBRL: p.AmountBRL.asFloat(),
		AmountUSD: p.AmountUSD.asFloat(),
		Method:    p.Method,
		Account:   p.Account,
		Who:       p.Who,
	}
}

// defaultPrepCost applies when a product is created without a prep value.
const defaultPrepCost = 2

type productPayload struct {
	DateAdded         string  `json:"data_add"`
	DateOnMarketplace *string `json:"data_amz"`
	Name              string  `json:"nome"`
	SKU               string  `json:"sku"`
	UPC               string  `json:"upc"`
	ASIN              string  `json:"asin"`
	StockQty          number  `json:"estoque"`
	UnitBaseCost      number  `json:"custo_base"`
	BatchFreight      number  `json:"freight"`
	BatchTax          number  `json:"tax"`
	PurchasedQty      number  `json:"quantidade"`
	PrepCost          number  `json:"prep"`
	SalePrice         number  `json:"sold_for"`
	MarketplaceFees   number  `json:"amazon_fees"`
	LinkMarketplace   string  `json:"link_amazon"`
	LinkSupplier      string  `json:"link_fornecedor"`
}

func (p productPayload) toDomain() (domain.Product, error) {
	stock, err := p.StockQty.asInt("estoque")
	if err != nil {
		return domain.Product{}, err
	}
	purchased, err := p.PurchasedQty.asInt("quantidade")
	if err != nil {
		return domain.Product{}, err
	}

	var listed *string
	if p.DateOnMarketplace != nil {
		if d := strings.TrimSpace(*p.DateOnMarketplace); d != "" {
			listed = &d
		}
	}
	return domain.Product{
		DateAdded:         strings.TrimSpace(p.DateAdded),
		DateOnMarketplace: listed,
		Name:              strings.TrimSpace(p.Name),
		SKU:               strings.TrimSpace(p.SKU),
		UPC:               strings.TrimSpace(p.UPC),
		ASIN:              strings.TrimSpace(p.ASIN),
		StockQty:          stock,
		UnitBaseCost:      p.UnitBaseCost.asFloat(),
		BatchFreight:      p.BatchFreight.asFloat(),
		BatchTax:          p.BatchTax.asFloat(),
		PurchasedQty:      purchased,
		PrepCost:          p.PrepCost.floatOr(defaultPrepCost),
		SalePrice:         p.SalePrice.asFloat(),
		MarketplaceFees:   p.MarketplaceFees.asFloat(),
		LinkMarketplace:   p.LinkMarketplace,
		LinkSupplier:      p.LinkSupplier,
	}, nil
}

type receiptPayload struct {
	Date         string `json:"data"`
	ProductID    number `json:"produto_id"`
	Quantity     number `json:"quantidade"`
	AmountUSD    number `json:"valor_usd"`
	Who          string `json:"quem"`
	Note         string `json:"obs"`
	SKUSnapshot  string `json:"sku"`
	NameSnapshot string `json:"produto"`
}

func (p receiptPayload) toDomain() (domain.AmazonReceipt, error) {
	qty, err := p.Quantity.asInt("quantidade")
	if err != nil {
		return domain.AmazonReceipt{}, err
	}
	r := domain.AmazonReceipt{
		Date:         strings.TrimSpace(p.Date),
		Quantity:     qty,
		AmountUSD:    p.AmountUSD.asFloat(),
		Who:          p.Who,
		Note:         p.Note,
		SKUSnapshot:  strings.TrimSpace(p.SKUSnapshot),
		NameSnapshot: strings.TrimSpace(p.NameSnapshot),
	}
	if p.ProductID.set {
		id, err := p.ProductID.asInt("produto_id")
		if err != nil {
			return domain.AmazonReceipt{}, err
		}
		if id > 0 {
			r.ProductID = &id
		}
	}
	return r, nil
}

type balancePayload struct {
	Date      string `json:"data"`
	Available number `json:"disponivel"`
	Pending   number `json:"pendente"`
	Currency  string `json:"moeda"`
}

func (p balancePayload) toDomain() domain.AmazonBalance {
	return domain.AmazonBalance{
		Date:      strings.TrimSpace(p.Date),
		Available: p.Available.asFloat(),
		Pending:   p.Pending.asFloat(),
		Currency:  strings.ToUpper(strings.TrimSpace(p.Currency)),
	}
}
