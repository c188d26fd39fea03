package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
	"github.com/andresuchdata/qota-finance/backend-go/internal/repository/sqlstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "qota.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenIsRerunnable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "qota.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestExpenseRoundTripAndMonthFilter(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, e := range []domain.Expense{
		{Date: "2024-03-02", Category: "tools", Description: "label printer", AmountUSD: 120.5, AmountBRL: 600, Who: "ana"},
		{Date: "2024-04-01", Category: "tools", AmountUSD: 10},
		{Date: "2024-03-28", Category: "fees", AmountUSD: 3.25},
	} {
		res, err := s.CreateExpense(ctx, e)
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.Changes)
		assert.NotZero(t, res.LastID)
	}

	march, err := domain.MonthPeriod("2024-03")
	require.NoError(t, err)

	rows, err := s.ListExpenses(ctx, march)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-03-28", rows[0].Date)
	assert.Equal(t, "label printer", rows[1].Description)
	assert.Equal(t, 120.5, rows[1].AmountUSD)

	all, err := s.ListExpenses(ctx, domain.AllTime())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	res, err := s.CreateInvestment(ctx, domain.Investment{Date: "2024-01-01", AmountUSD: 100})
	require.NoError(t, err)

	first, err := s.Delete(ctx, domain.KindInvestment, res.LastID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Changes)

	second, err := s.Delete(ctx, domain.KindInvestment, res.LastID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.Changes)

	_, err = s.Delete(ctx, domain.RecordKind("sqlite_master"), 1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReceiptClampsStock(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	p, err := s.CreateProduct(ctx, domain.Product{DateAdded: "2024-01-10", Name: "Widget", SKU: "W-1", StockQty: 5, PrepCost: 2})
	require.NoError(t, err)

	for _, qty := range []int64{2, 4, 1} {
		_, err := s.CreateReceipt(ctx, domain.AmazonReceipt{Date: "2024-01-20", ProductID: &p.LastID, Quantity: qty, AmountUSD: 10})
		require.NoError(t, err)
	}

	products, err := s.ListProducts(ctx, domain.AllTime())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(0), products[0].StockQty)

	receipts, err := s.ListReceipts(ctx, domain.AllTime())
	require.NoError(t, err)
	assert.Len(t, receipts, 3)
	require.NotNil(t, receipts[0].ProductID)
	assert.Equal(t, p.LastID, *receipts[0].ProductID)
}

func TestConcurrentReceipts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	p, err := s.CreateProduct(ctx, domain.Product{DateAdded: "2024-01-10", Name: "Widget", StockQty: 30})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateReceipt(ctx, domain.AmazonReceipt{Date: "2024-02-01", ProductID: &p.LastID, Quantity: 2})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	products, err := s.ListProducts(ctx, domain.AllTime())
	require.NoError(t, err)
	assert.Equal(t, int64(10), products[0].StockQty)
}

func TestReceiptWithoutProduct(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.CreateReceipt(ctx, domain.AmazonReceipt{Date: "2024-02-01", Quantity: 1, AmountUSD: 20, SKUSnapshot: "X"})
	require.NoError(t, err)

	rows, err := s.ListReceipts(ctx, domain.AllTime())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].ProductID)
	assert.Equal(t, "X", rows[0].SKUSnapshot)
}

func TestProductEffectiveDateFilter(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	listed := "2024-04-02"
	_, err := s.CreateProduct(ctx, domain.Product{DateAdded: "2024-03-28", DateOnMarketplace: &listed, Name: "Listed"})
	require.NoError(t, err)
	_, err = s.CreateProduct(ctx, domain.Product{DateAdded: "2024-03-05", Name: "Unlisted"})
	require.NoError(t, err)

	april, _ := domain.MonthPeriod("2024-04")
	rows, err := s.ListProducts(ctx, april)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Listed", rows[0].Name)
	require.NotNil(t, rows[0].DateOnMarketplace)
	assert.Equal(t, "2024-04-02", rows[0].EffectiveDate())

	year, _ := domain.YearPeriod(2024)
	rows, err = s.ListProducts(ctx, year)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Nil(t, rows[1].DateOnMarketplace)
}

func TestLatestBalance(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	b, err := s.LatestBalance(ctx)
	require.NoError(t, err)
	assert.Nil(t, b)

	_, err = s.CreateBalance(ctx, domain.AmazonBalance{Date: "2024-06-01", Available: 10, Pending: 2, Currency: "USD"})
	require.NoError(t, err)
	_, err = s.CreateBalance(ctx, domain.AmazonBalance{Date: "2024-06-01", Available: 12, Pending: 1, Currency: "USD"})
	require.NoError(t, err)

	b, err = s.LatestBalance(ctx)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, 12.0, b.Available)
}
