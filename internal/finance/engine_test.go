package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
	"github.com/andresuchdata/qota-finance/backend-go/internal/repository"
	"github.com/andresuchdata/qota-finance/backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func month(t *testing.T, m string) domain.Period {
	t.Helper()
	p, err := domain.MonthPeriod(m)
	require.NoError(t, err)
	return p
}

// seedLedger fills a store with three months of mixed activity and returns the
// id of the profitable product (gross profit 7 per unit).
func seedLedger(t *testing.T, s *memory.Store) int64 {
	t.Helper()
	ctx := context.Background()

	widget, err := s.CreateProduct(ctx, domain.Product{
		DateAdded:       "2024-01-05",
		Name:            "Widget",
		SKU:             "W-1",
		StockQty:        50,
		UnitBaseCost:    5,
		BatchFreight:    50,
		BatchTax:        50,
		PurchasedQty:    10,
		PrepCost:        2,
		SalePrice:       30,
		MarketplaceFees: 6,
	})
	require.NoError(t, err)

	_, err = s.CreateProduct(ctx, domain.Product{
		DateAdded:         "2024-01-28",
		DateOnMarketplace: ptr("2024-02-03"),
		Name:              "Gadget",
		SKU:               "G-1",
		UnitBaseCost:      4,
		PurchasedQty:      5,
		SalePrice:         12,
		MarketplaceFees:   3,
		PrepCost:          1,
		BatchFreight:      5,
	})
	require.NoError(t, err)

	for _, e := range []domain.Expense{
		{Date: "2024-01-10", Category: "software", AmountUSD: 20, AmountBRL: 100},
		{Date: "2024-02-11", Category: "shipping", AmountUSD: 15, AmountBRL: 75},
		{Date: "2024-03-01", Category: "software", AmountUSD: 20, AmountBRL: 100},
	} {
		_, err := s.CreateExpense(ctx, e)
		require.NoError(t, err)
	}

	for _, i := range []domain.Investment{
		{Date: "2024-01-02", AmountUSD: 500, AmountBRL: 2500},
		{Date: "2024-03-15", AmountUSD: 100, AmountBRL: 500},
	} {
		_, err := s.CreateInvestment(ctx, i)
		require.NoError(t, err)
	}

	_, err = s.CreateRevenue(ctx, domain.Revenue{Date: "2024-02-20", AmountUSD: 40, AmountBRL: 200})
	require.NoError(t, err)

	id := widget.LastID
	for _, r := range []domain.AmazonReceipt{
		{Date: "2024-02-14", ProductID: &id, Quantity: 3, AmountUSD: 90, SKUSnapshot: "W-1", NameSnapshot: "Widget"},
		{Date: "2024-03-03", ProductID: &id, Quantity: 2, AmountUSD: 60, SKUSnapshot: "W-1", NameSnapshot: "Widget"},
		{Date: "2024-03-09", Quantity: 1, AmountUSD: 25, SKUSnapshot: "LOOSE", NameSnapshot: "Loose item"},
	} {
		_, err := s.CreateReceipt(ctx, r)
		require.NoError(t, err)
	}

	return id
}

func TestSummaryForMonth(t *testing.T) {
	s := memory.New()
	seedLedger(t, s)
	e := NewEngine(s)

	got, err := e.Summary(context.Background(), month(t, "2024-02"))
	require.NoError(t, err)

	// receipts 90 + revenue 40
	assert.InDelta(t, 130, got.RevenueUSD, 1e-9)
	assert.InDelta(t, 200, got.RevenueBRL, 1e-9)
	// expense 15 + Gadget purchase 5*(4+1+3)+5 listed in February
	assert.InDelta(t, 60, got.ExpenseUSD, 1e-9)
	assert.InDelta(t, 75, got.ExpenseBRL, 1e-9)
}

func TestSummaryIsAdditiveAcrossMonths(t *testing.T) {
	s := memory.New()
	seedLedger(t, s)
	e := NewEngine(s)
	ctx := context.Background()

	totals, err := e.Totals(ctx)
	require.NoError(t, err)

	var sum domain.PeriodSummary
	for _, m := range []string{"2024-01", "2024-02", "2024-03"} {
		part, err := e.Summary(ctx, month(t, m))
		require.NoError(t, err)
		sum.RevenueUSD += part.RevenueUSD
		sum.RevenueBRL += part.RevenueBRL
		sum.ExpenseUSD += part.ExpenseUSD
		sum.ExpenseBRL += part.ExpenseBRL
	}

	assert.InDelta(t, totals.RevenueUSD, sum.RevenueUSD, 1e-9)
	assert.InDelta(t, totals.RevenueBRL, sum.RevenueBRL, 1e-9)
	assert.InDelta(t, totals.ExpenseUSD, sum.ExpenseUSD, 1e-9)
	assert.InDelta(t, totals.ExpenseBRL, sum.ExpenseBRL, 1e-9)

	empty, err := e.Summary(ctx, month(t, "2023-12"))
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodSummary{}, empty)
}

func TestProfitsSkipOrphansButRevenueKeepsThem(t *testing.T) {
	s := memory.New()
	widgetID := seedLedger(t, s)
	e := NewEngine(s)
	ctx := context.Background()

	profits, err := e.Profits(ctx, month(t, "2024-03"))
	require.NoError(t, err)
	// 2 units * 7 in March, the loose receipt has no product
	assert.InDelta(t, 14, profits.Period, 1e-9)
	// 3 * 7 + 2 * 7
	assert.InDelta(t, 35, profits.AllTime, 1e-9)

	_, err = s.Delete(ctx, domain.KindProduct, widgetID)
	require.NoError(t, err)

	profits, err = e.Profits(ctx, month(t, "2024-03"))
	require.NoError(t, err)
	assert.Zero(t, profits.Period)
	assert.Zero(t, profits.AllTime)

	march, err := e.Summary(ctx, month(t, "2024-03"))
	require.NoError(t, err)
	assert.InDelta(t, 85, march.RevenueUSD, 1e-9)
}

func TestProfitsAllTimeIgnoresPeriod(t *testing.T) {
	s := memory.New()
	seedLedger(t, s)
	e := NewEngine(s)

	a, err := e.Profits(context.Background(), month(t, "2024-01"))
	require.NoError(t, err)
	b, err := e.Profits(context.Background(), domain.AllTime())
	require.NoError(t, err)

	assert.Zero(t, a.Period)
	assert.Equal(t, a.AllTime, b.AllTime)
	assert.Equal(t, b.Period, b.AllTime)
}

func TestSingleReceiptProfitContribution(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	p, err := s.CreateProduct(ctx, domain.Product{
		DateAdded: "2024-05-01", Name: "Widget", PurchasedQty: 10, BatchTax: 50, BatchFreight: 50,
		UnitBaseCost: 5, SalePrice: 30, MarketplaceFees: 6, PrepCost: 2,
	})
	require.NoError(t, err)
	_, err = s.CreateReceipt(ctx, domain.AmazonReceipt{Date: "2024-05-09", ProductID: &p.LastID, Quantity: 3, AmountUSD: 90})
	require.NoError(t, err)

	got, err := NewEngine(s).Profits(ctx, domain.AllTime())
	require.NoError(t, err)
	assert.InDelta(t, 21, got.AllTime, 1e-9)
}

func TestSeriesCoversUnionOfMonths(t *testing.T) {
	s := memory.New()
	seedLedger(t, s)
	ctx := context.Background()

	_, err := s.CreateExpense(ctx, domain.Expense{Date: "2023-11-30", Category: "misc", AmountUSD: 5})
	require.NoError(t, err)
	_, err = s.CreateExpense(ctx, domain.Expense{Date: "", Category: "undated", AmountUSD: 999})
	require.NoError(t, err)

	series, err := NewEngine(s).Series(ctx)
	require.NoError(t, err)

	months := make([]string, 0, len(series))
	for _, pt := range series {
		months = append(months, pt.Month)
		assert.InDelta(t, pt.RevenueAmazonUSD-pt.TotalExpensesUSD, pt.Result, 1e-9)
	}
	assert.Equal(t, []string{"2023-11", "2024-01", "2024-02", "2024-03"}, months)

	assert.Zero(t, series[0].RevenueAmazonUSD)
	assert.InDelta(t, 5, series[0].TotalExpensesUSD, 1e-9)

	// January: expense 20 + investment 500 + Widget purchase 10*(5+2+6)+100
	assert.InDelta(t, 750, series[1].TotalExpensesUSD, 1e-9)
	// Generic revenue is not part of the marketplace series
	assert.InDelta(t, 90, series[2].RevenueAmazonUSD, 1e-9)
	assert.InDelta(t, 85, series[3].RevenueAmazonUSD, 1e-9)
}

func TestProductSalesRanking(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	a, _ := s.CreateProduct(ctx, domain.Product{DateAdded: "2024-01-01", Name: "Alpha live", SKU: "A-LIVE"})
	b, _ := s.CreateProduct(ctx, domain.Product{DateAdded: "2024-01-01", Name: "Bravo", SKU: ""})
	deleted, _ := s.CreateProduct(ctx, domain.Product{DateAdded: "2024-01-01", Name: "Gone", SKU: "GONE"})
	_, _ = s.Delete(ctx, domain.KindProduct, deleted.LastID)

	for _, r := range []domain.AmazonReceipt{
		{Date: "2024-06-02", ProductID: &a.LastID, Quantity: 4, SKUSnapshot: "A-OLD", NameSnapshot: "Alpha old"},
		{Date: "2024-06-10", ProductID: &a.LastID, Quantity: 1, SKUSnapshot: "A-OLD", NameSnapshot: "Alpha old"},
		{Date: "2024-06-03", ProductID: &b.LastID, Quantity: 2, SKUSnapshot: "B-SNAP"},
		{Date: "2024-06-04", ProductID: &deleted.LastID, Quantity: 2, SKUSnapshot: "GONE", NameSnapshot: "Gone"},
		{Date: "2024-06-05", Quantity: 3},
		{Date: "2024-05-30", ProductID: &a.LastID, Quantity: 50},
	} {
		_, err := s.CreateReceipt(ctx, r)
		require.NoError(t, err)
	}

	clock := func() time.Time { return time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC) }
	e := NewEngine(s, WithClock(clock))

	got, err := e.ProductSales(ctx, domain.SalesQuery{})
	require.NoError(t, err)
	assert.Equal(t, []domain.ProductSales{
		{SKU: "A-LIVE", Name: "Alpha live", Qty: 5},
		{SKU: domain.UnknownSKU, Name: domain.UnknownName, Qty: 3},
		{SKU: "B-SNAP", Name: "Bravo", Qty: 2},
		{SKU: "GONE", Name: "Gone", Qty: 2},
	}, got)

	asc, err := e.ProductSales(ctx, domain.SalesQuery{Order: "ASC", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []domain.ProductSales{
		{SKU: "B-SNAP", Name: "Bravo", Qty: 2},
		{SKU: "GONE", Name: "Gone", Qty: 2},
	}, asc)

	year, err := e.ProductSales(ctx, domain.SalesQuery{Scope: "year", Year: 2024, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []domain.ProductSales{{SKU: "A-LIVE", Name: "Alpha live", Qty: 55}}, year)

	may, err := e.ProductSales(ctx, domain.SalesQuery{Year: 2024, Month: 5})
	require.NoError(t, err)
	assert.Len(t, may, 1)

	_, err = e.ProductSales(ctx, domain.SalesQuery{Year: 2024, Month: 13})
	assert.ErrorIs(t, err, domain.ErrValidation)

	yearIgnoresMonth, err := e.ProductSales(ctx, domain.SalesQuery{Scope: "year", Year: 2024, Month: 13, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, year, yearIgnoresMonth)
}

type failingReader struct {
	repository.Reader
	err error
}

func (f failingReader) ListExpenses(context.Context, domain.Period) ([]domain.Expense, error) {
	return nil, f.err
}

func (f failingReader) ListInvestments(context.Context, domain.Period) ([]domain.Investment, error) {
	return nil, nil
}

func (f failingReader) ListRevenues(context.Context, domain.Period) ([]domain.Revenue, error) {
	return nil, nil
}

func (f failingReader) ListProducts(context.Context, domain.Period) ([]domain.Product, error) {
	return nil, nil
}

func (f failingReader) ListReceipts(context.Context, domain.Period) ([]domain.AmazonReceipt, error) {
	return nil, f.err
}

func TestEngineSurfacesDataAccessErrors(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	e := NewEngine(failingReader{err: cause})
	ctx := context.Background()

	_, err := e.Summary(ctx, domain.AllTime())
	assert.ErrorIs(t, err, domain.ErrDataAccess)
	assert.ErrorIs(t, err, cause)

	_, err = e.Profits(ctx, domain.AllTime())
	assert.ErrorIs(t, err, domain.ErrDataAccess)

	_, err = e.Series(ctx)
	assert.ErrorIs(t, err, domain.ErrDataAccess)

	_, err = e.ProductSales(ctx, domain.SalesQuery{Year: 2024, Month: 1})
	assert.ErrorIs(t, err, domain.ErrDataAccess)
}
