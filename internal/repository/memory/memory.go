package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
	"github.com/andresuchdata/qota-finance/backend-go/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store keeps every table in process memory. It backs tests and the
// DB_DRIVER=memory dev mode.
type Store struct {
	mu          sync.RWMutex
	nextID      map[domain.RecordKind]int64
	expenses    map[int64]domain.Expense
	investments map[int64]domain.Investment
	revenues    map[int64]domain.Revenue
	products    map[int64]domain.Product
	receipts    map[int64]domain.AmazonReceipt
	balances    map[int64]domain.AmazonBalance
}

func New() *Store {
	return &Store{
		nextID:      make(map[domain.RecordKind]int64),
		expenses:    make(map[int64]domain.Expense),
		investments: make(map[int64]domain.Investment),
		revenues:    make(map[int64]domain.Revenue),
		products:    make(map[int64]domain.Product),
		receipts:    make(map[int64]domain.AmazonReceipt),
		balances:    make(map[int64]domain.AmazonBalance),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) allocate(kind domain.RecordKind) int64 {
	s.nextID[kind]++
	return s.nextID[kind]
}

func (s *Store) ListExpenses(_ context.Context, period domain.Period) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.expenses, period, func(e domain.Expense) (string, int64) { return e.Date, e.ID }), nil
}

func (s *Store) ListInvestments(_ context.Context, period domain.Period) ([]domain.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.investments, period, func(i domain.Investment) (string, int64) { return i.Date, i.ID }), nil
}

func (s *Store) ListRevenues(_ context.Context, period domain.Period) ([]domain.Revenue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect(s.revenues, period, func(r domain.Revenue) (string, int64) { return r.Date, r.ID }), nil
}

func (s *Store) ListProducts(_ context.Context, period domain.Period) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := collect(s.products, period, func(p domain.Product) (string, int64) { return p.EffectiveDate(), p.ID })
	for i := range rows {
		rows[i].DateOnMarketplace = clonePtr(rows[i].DateOnMarketplace)
	}
	return rows, nil
}

func (s *Store) ListReceipts(_ context.Context, period domain.Period) ([]domain.AmazonReceipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := collect(s.receipts, period, func(r domain.AmazonReceipt) (string, int64) { return r.Date, r.ID })
	for i := range rows {
		rows[i].ProductID = clonePtr(rows[i].ProductID)
	}
	return rows, nil
}

func (s *Store) LatestBalance(_ context.Context) (*domain.AmazonBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := collect(s.balances, domain.AllTime(), func(b domain.AmazonBalance) (string, int64) { return b.Date, b.ID })
	if len(rows) == 0 {
		return nil, nil
	}
	latest := rows[0]
	return &latest, nil
}

func (s *Store) CreateExpense(_ context.Context, e domain.Expense) (domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.allocate(domain.KindExpense)
	s.expenses[e.ID] = e
	return domain.WriteResult{LastID: e.ID, Changes: 1}, nil
}

func (s *Store) CreateInvestment(_ context.Context, i domain.Investment) (domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i.ID = s.allocate(domain.KindInvestment)
	s.investments[i.ID] = i
	return domain.WriteResult{LastID: i.ID, Changes: 1}, nil
}

func (s *Store) CreateRevenue(_ context.Context, r domain.Revenue) (domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.allocate(domain.KindRevenue)
	s.revenues[r.ID] = r
	return domain.WriteResult{LastID: r.ID, Changes: 1}, nil
}

func (s *Store) CreateProduct(_ context.Context, p domain.Product) (domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.allocate(domain.KindProduct)
	p.DateOnMarketplace = clonePtr(p.DateOnMarketplace)
	s.products[p.ID] = p
	return domain.WriteResult{LastID: p.ID, Changes: 1}, nil
}

// CreateReceipt holds the write lock across the insert and the stock update.
func (s *Store) CreateReceipt(_ context.Context, r domain.AmazonReceipt) (domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.allocate(domain.KindReceipt)
	r.ProductID = clonePtr(r.ProductID)
	s.receipts[r.ID] = r

	if r.ProductID != nil {
		if p, ok := s.products[*r.ProductID]; ok {
			p.StockQty = max(0, p.StockQty-r.Quantity)
			s.products[p.ID] = p
		}
	}
	return domain.WriteResult{LastID: r.ID, Changes: 1}, nil
}

func (s *Store) CreateBalance(_ context.Context, b domain.AmazonBalance) (domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.allocate(domain.KindBalance)
	s.balances[b.ID] = b
	return domain.WriteResult{LastID: b.ID, Changes: 1}, nil
}

func (s *Store) Delete(_ context.Context, kind domain.RecordKind, id int64) (domain.WriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed bool
	switch kind {
	case domain.KindExpense:
		removed = remove(s.expenses, id)
	case domain.KindInvestment:
		removed = remove(s.investments, id)
	case domain.KindRevenue:
		removed = remove(s.revenues, id)
	case domain.KindProduct:
		removed = remove(s.products, id)
	case domain.KindReceipt:
		removed = remove(s.receipts, id)
	case domain.KindBalance:
		removed = remove(s.balances, id)
	default:
		return domain.WriteResult{}, &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown record kind %q", kind)}
	}

	if removed {
		return domain.WriteResult{Changes: 1}, nil
	}
	return domain.WriteResult{Changes: 0}, nil
}

func remove[T any](rows map[int64]T, id int64) bool {
	if _, ok := rows[id]; !ok {
		return false
	}
	delete(rows, id)
	return true
}

// clonePtr copies the pointed-to value so stored rows never alias caller
// memory.
func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// collect filters rows by period and orders them date desc, id desc.
func collect[T any](rows map[int64]T, period domain.Period, key func(T) (string, int64)) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		date, _ := key(row)
		if period.Contains(date) {
			out = append(out, row)
		}
	}
	slices.SortFunc(out, func(a, b T) int {
		da, ia := key(a)
		db, ib := key(b)
		if c := cmp.Compare(db, da); c != 0 {
			return c
		}
		return cmp.Compare(ib, ia)
	})
	return out
}
