package importer

import (
	"strings"

	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
)

// defaultPrepCost is used when a product row has no prep column value.
const defaultPrepCost = 2

// fieldReader accumulates the first conversion error so row mappers read
// straight through.
type fieldReader struct {
	row
	err error
}

func (f *fieldReader) num(col string) float64 {
	v, err := f.row.num(col)
	if err != nil && f.err == nil {
		f.err = err
	}
	return v
}

func (f *fieldReader) integer(col string) int64 {
	v, err := f.row.integer(col)
	if err != nil && f.err == nil {
		f.err = err
	}
	return v
}

func (f *fieldReader) date(col string) string {
	v, err := f.row.date(col)
	if err != nil && f.err == nil {
		f.err = err
	}
	return v
}

func expenseFromRow(r row) (domain.Expense, error) {
	f := &fieldReader{row: r}
	e := domain.Expense{
		Date:        f.date("data"),
		Category:    f.str("categoria"),
		Description: f.str("descricao"),
		AmountBRL:   f.num("valor_brl"),
		AmountUSD:   f.num("valor_usd"),
		Method:      f.str("metodo"),
		Account:     f.str("conta"),
		Who:         f.str("quem"),
	}
	if f.err != nil {
		return e, f.err
	}
	return e, e.Validate()
}

func investmentFromRow(r row) (domain.Investment, error) {
	f := &fieldReader{row: r}
	i := domain.Investment{
		Date:      f.date("data"),
		AmountBRL: f.num("valor_brl"),
		AmountUSD: f.num("valor_usd"),
		Method:    f.str("metodo"),
		Account:   f.str("conta"),
		Who:       f.str("quem"),
	}
	if f.err != nil {
		return i, f.err
	}
	return i, i.Validate()
}

func revenueFromRow(r row) (domain.Revenue, error) {
	f := &fieldReader{row: r}
	rev := domain.Revenue{
		Date:      f.date("data"),
		AmountBRL: f.num("valor_brl"),
		AmountUSD: f.num("valor_usd"),
	}
	if f.err != nil {
		return rev, f.err
	}
	return rev, rev.Validate()
}

func productFromRow(r row) (domain.Product, error) {
	f := &fieldReader{row: r}
	p := domain.Product{
		DateAdded:       f.date("data_add"),
		Name:            f.str("nome"),
		SKU:             f.str("sku"),
		UPC:             f.str("upc"),
		ASIN:            f.str("asin"),
		StockQty:        f.integer("estoque"),
		UnitBaseCost:    f.num("custo_base"),
		BatchFreight:    f.num("freight"),
		BatchTax:        f.num("tax"),
		PurchasedQty:    f.integer("quantidade"),
		PrepCost:        defaultPrepCost,
		SalePrice:       f.num("sold_for"),
		MarketplaceFees: f.num("amazon_fees"),
		LinkMarketplace: f.str("link_amazon"),
		LinkSupplier:    f.str("link_fornecedor"),
	}
	if r.has("prep") {
		p.PrepCost = f.num("prep")
	}
	if listed := f.date("data_amz"); listed != "" {
		p.DateOnMarketplace = &listed
	}
	if f.err != nil {
		return p, f.err
	}
	return p, p.Validate()
}

func receiptFromRow(r row, bySKU map[string]int64) (domain.AmazonReceipt, error) {
	f := &fieldReader{row: r}
	rc := domain.AmazonReceipt{
		Date:         f.date("data"),
		Quantity:     f.integer("quantidade"),
		AmountUSD:    f.num("valor_usd"),
		Who:          f.str("quem"),
		Note:         f.str("obs"),
		SKUSnapshot:  f.str("sku"),
		NameSnapshot: f.str("produto"),
	}
	if id := f.integer("produto_id"); id > 0 {
		rc.ProductID = &id
	} else if id, ok := bySKU[strings.ToUpper(rc.SKUSnapshot)]; ok && rc.SKUSnapshot != "" {
		rc.ProductID = &id
	}
	if f.err != nil {
		return rc, f.err
	}
	return rc, rc.Validate()
}

func balanceFromRow(r row) (domain.AmazonBalance, error) {
	f := &fieldReader{row: r}
	b := domain.AmazonBalance{
		Date:      f.date("data"),
		Available: f.num("disponivel"),
		Pending:   f.num("pendente"),
		Currency:  strings.ToUpper(f.str("moeda")),
	}
	if b.Currency == "" {
		b.Currency = domain.DefaultBalance().Currency
	}
	if f.err != nil {
		return b, f.err
	}
	return b, b.Validate()
}
