// backend-go/internal/repository/store.go
package repository

import (
	"context"

	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
)

// Reader is the read side of the record store. Every list is filtered by
// period using domain.Period.Contains semantics and ordered newest first
// (date desc, id desc). Products are filtered and ordered by their effective date.
type Reader interface {
	ListExpenses(ctx context.Context, period domain.Period) ([]domain.Expense, error)
	ListInvestments(ctx context.Context, period domain.Period) ([]domain.Investment, error)
	ListRevenues(ctx context.Context, period domain.Period) ([]domain.Revenue, error)
	ListProducts(ctx context.Context, period domain.Period) ([]domain.Product, error)
	ListReceipts(ctx context.Context, period domain.Period) ([]domain.AmazonReceipt, error)
	// LatestBalance returns nil when no snapshot exists.
	LatestBalance(ctx context.Context) (*domain.AmazonBalance, error)
}

// Writer is the write side. Creates return the new id; Delete of a missing id
// reports zero changes and no error.
type Writer interface {
	CreateExpense(ctx context.Context, e domain.Expense) (domain.WriteResult, error)
	CreateInvestment(ctx context.Context, i domain.Investment) (domain.WriteResult, error)
	CreateRevenue(ctx context.Context, r domain.Revenue) (domain.WriteResult, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.WriteResult, error)
	// CreateReceipt inserts the receipt and, when it references a product,
	// applies stock = max(0, stock - quantity) atomically with the insert.
	CreateReceipt(ctx context.Context, r domain.AmazonReceipt) (domain.WriteResult, error)
	CreateBalance(ctx context.Context, b domain.AmazonBalance) (domain.WriteResult, error)
	Delete(ctx context.Context, kind domain.RecordKind, id int64) (domain.WriteResult, error)
}

// Store is a full record store backend.
type Store interface {
	Reader
	Writer
	Close() error
}
