package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New()

	res, err := s.CreateExpense(ctx, domain.Expense{Date: "2024-03-02", Category: "tools", AmountUSD: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.LastID)

	first, err := s.Delete(ctx, domain.KindExpense, res.LastID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Changes)

	second, err := s.Delete(ctx, domain.KindExpense, res.LastID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.Changes)

	rows, err := s.ListExpenses(ctx, domain.AllTime())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDeleteUnknownKind(t *testing.T) {
	_, err := New().Delete(context.Background(), domain.RecordKind("users"), 1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReceiptStockNeverNegative(t *testing.T) {
	ctx := context.Background()
	s := New()

	created, err := s.CreateProduct(ctx, domain.Product{DateAdded: "2024-01-10", Name: "Widget", StockQty: 5})
	require.NoError(t, err)
	id := created.LastID

	for _, qty := range []int64{2, 1, 4, 3} {
		_, err := s.CreateReceipt(ctx, domain.AmazonReceipt{Date: "2024-01-20", ProductID: &id, Quantity: qty})
		require.NoError(t, err)
	}

	products, err := s.ListProducts(ctx, domain.AllTime())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(0), products[0].StockQty)
}

func TestConcurrentReceiptsDecrementExactly(t *testing.T) {
	ctx := context.Background()
	s := New()

	created, err := s.CreateProduct(ctx, domain.Product{DateAdded: "2024-01-10", Name: "Widget", StockQty: 100})
	require.NoError(t, err)
	id := created.LastID

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateReceipt(ctx, domain.AmazonReceipt{Date: "2024-01-20", ProductID: &id, Quantity: 2})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	products, err := s.ListProducts(ctx, domain.AllTime())
	require.NoError(t, err)
	assert.Equal(t, int64(20), products[0].StockQty)
}

func TestListOrdersNewestFirstAndFilters(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, date := range []string{"2024-03-01", "2024-02-15", "2024-03-20", "2024-03-20"} {
		_, err := s.CreateInvestment(ctx, domain.Investment{Date: date, AmountUSD: 1})
		require.NoError(t, err)
	}

	march, err := domain.MonthPeriod("2024-03")
	require.NoError(t, err)

	rows, err := s.ListInvestments(ctx, march)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(4), rows[0].ID)
	assert.Equal(t, int64(3), rows[1].ID)
	assert.Equal(t, "2024-03-01", rows[2].Date)
}

func TestProductsFilterByEffectiveDate(t *testing.T) {
	ctx := context.Background()
	s := New()

	listed := "2024-04-02"
	_, err := s.CreateProduct(ctx, domain.Product{DateAdded: "2024-03-28", DateOnMarketplace: &listed, Name: "A"})
	require.NoError(t, err)
	_, err = s.CreateProduct(ctx, domain.Product{DateAdded: "2024-03-05", Name: "B"})
	require.NoError(t, err)

	march, _ := domain.MonthPeriod("2024-03")
	rows, err := s.ListProducts(ctx, march)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "B", rows[0].Name)
}

func TestLatestBalance(t *testing.T) {
	ctx := context.Background()
	s := New()

	latest, err := s.LatestBalance(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	_, _ = s.CreateBalance(ctx, domain.AmazonBalance{Date: "2024-05-01", Available: 10, Currency: "USD"})
	_, _ = s.CreateBalance(ctx, domain.AmazonBalance{Date: "2024-06-01", Available: 30, Currency: "USD"})
	_, _ = s.CreateBalance(ctx, domain.AmazonBalance{Date: "2024-04-01", Available: 99, Currency: "USD"})

	latest, err = s.LatestBalance(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 30.0, latest.Available)
}

func TestStoredRowsDoNotAliasCallerPointers(t *testing.T) {
	ctx := context.Background()
	s := New()

	listed := "2024-02-01"
	created, err := s.CreateProduct(ctx, domain.Product{DateAdded: "2024-01-10", DateOnMarketplace: &listed, Name: "Widget", StockQty: 5})
	require.NoError(t, err)

	id := created.LastID
	_, err = s.CreateReceipt(ctx, domain.AmazonReceipt{Date: "2024-02-10", ProductID: &id, Quantity: 1})
	require.NoError(t, err)

	listed = "2030-01-01"
	id = 99

	products, err := s.ListProducts(ctx, domain.AllTime())
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.NotNil(t, products[0].DateOnMarketplace)
	assert.Equal(t, "2024-02-01", *products[0].DateOnMarketplace)

	receipts, err := s.ListReceipts(ctx, domain.AllTime())
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	require.NotNil(t, receipts[0].ProductID)
	assert.Equal(t, created.LastID, *receipts[0].ProductID)

	*receipts[0].ProductID = 42
	again, err := s.ListReceipts(ctx, domain.AllTime())
	require.NoError(t, err)
	assert.Equal(t, created.LastID, *again[0].ProductID)
}
