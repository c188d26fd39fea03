package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/qota-finance/backend-go/internal/cache"
	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
	"github.com/andresuchdata/qota-finance/backend-go/internal/finance"
	"github.com/andresuchdata/qota-finance/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// RecordService validates and stores ledger records. Every successful write
// drops the cached metrics.
type RecordService struct {
	store repository.Store
	cache cache.MetricsCache
}

func NewRecordService(store repository.Store, cacheImpl cache.MetricsCache) *RecordService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopMetricsCache()
	}
	return &RecordService{store: store, cache: cacheImpl}
}

func (s *RecordService) ListExpenses(ctx context.Context, period domain.Period) ([]domain.Expense, error) {
	return s.store.ListExpenses(ctx, period)
}

func (s *RecordService) ListInvestments(ctx context.Context, period domain.Period) ([]domain.Investment, error) {
	return s.store.ListInvestments(ctx, period)
}

func (s *RecordService) ListRevenues(ctx context.Context, period domain.Period) ([]domain.Revenue, error) {
	return s.store.ListRevenues(ctx, period)
}

func (s *RecordService) ListReceipts(ctx context.Context, period domain.Period) ([]domain.AmazonReceipt, error) {
	return s.store.ListReceipts(ctx, period)
}

// ListProducts returns products with their cost metrics. data_add carries the
// effective date, matching what the dashboard has always displayed.
func (s *RecordService) ListProducts(ctx context.Context, period domain.Period) ([]domain.ProductView, error) {
	products, err := s.store.ListProducts(ctx, period)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ProductView, 0, len(products))
	for _, p := range products {
		metrics := finance.Metrics(p)
		p.DateAdded = p.EffectiveDate()
		out = append(out, domain.ProductView{Product: p, Metrics: metrics})
	}
	return out, nil
}

// LatestBalance returns the newest balance snapshot or the zeroed USD default.
func (s *RecordService) LatestBalance(ctx context.Context) (domain.AmazonBalance, error) {
	b, err := s.store.LatestBalance(ctx)
	if err != nil {
		return domain.AmazonBalance{}, err
	}
	if b == nil {
		return domain.DefaultBalance(), nil
	}
	return *b, nil
}

func (s *RecordService) CreateExpense(ctx context.Context, e domain.Expense) (domain.WriteResult, error) {
	if err := e.Validate(); err != nil {
		return domain.WriteResult{}, err
	}
	return s.afterWrite(ctx, "expense")(s.store.CreateExpense(ctx, e))
}

func (s *RecordService) CreateInvestment(ctx context.Context, i domain.Investment) (domain.WriteResult, error) {
	if err := i.Validate(); err != nil {
		return domain.WriteResult{}, err
	}
	return s.afterWrite(ctx, "investment")(s.store.CreateInvestment(ctx, i))
}

func (s *RecordService) CreateRevenue(ctx context.Context, r domain.Revenue) (domain.WriteResult, error) {
	if err := r.Validate(); err != nil {
		return domain.WriteResult{}, err
	}
	return s.afterWrite(ctx, "revenue")(s.store.CreateRevenue(ctx, r))
}

func (s *RecordService) CreateProduct(ctx context.Context, p domain.Product) (domain.WriteResult, error) {
	if p.DateOnMarketplace != nil && strings.TrimSpace(*p.DateOnMarketplace) == "" {
		p.DateOnMarketplace = nil
	}
	if err := p.Validate(); err != nil {
		return domain.WriteResult{}, err
	}
	return s.afterWrite(ctx, "product")(s.store.CreateProduct(ctx, p))
}

// CreateReceipt stores a sale; a positive produto_id also decrements stock.
func (s *RecordService) CreateReceipt(ctx context.Context, r domain.AmazonReceipt) (domain.WriteResult, error) {
	if r.ProductID != nil && *r.ProductID <= 0 {
		r.ProductID = nil
	}
	if err := r.Validate(); err != nil {
		return domain.WriteResult{}, err
	}
	return s.afterWrite(ctx, "amazon receipt")(s.store.CreateReceipt(ctx, r))
}

func (s *RecordService) CreateBalance(ctx context.Context, b domain.AmazonBalance) (domain.WriteResult, error) {
	if strings.TrimSpace(b.Currency) == "" {
		b.Currency = domain.DefaultBalance().Currency
	}
	if err := b.Validate(); err != nil {
		return domain.WriteResult{}, err
	}
	return s.afterWrite(ctx, "amazon balance")(s.store.CreateBalance(ctx, b))
}

// Delete removes a record. A missing id is not an error: it reports zero changes.
func (s *RecordService) Delete(ctx context.Context, kind domain.RecordKind, id int64) (domain.WriteResult, error) {
	if id <= 0 {
		return domain.WriteResult{}, &domain.ValidationError{Field: "id", Reason: fmt.Sprintf("expected a positive id, got %d", id)}
	}
	res, err := s.store.Delete(ctx, kind, id)
	if err != nil {
		return domain.WriteResult{}, err
	}
	if res.Changes > 0 {
		s.invalidate(ctx)
	}
	return res, nil
}

func (s *RecordService) afterWrite(ctx context.Context, what string) func(domain.WriteResult, error) (domain.WriteResult, error) {
	return func(res domain.WriteResult, err error) (domain.WriteResult, error) {
		if err != nil {
			return domain.WriteResult{}, err
		}
		log.Debug().Str("record", what).Int64("id", res.LastID).Msg("record created")
		s.invalidate(ctx)
		return res, nil
	}
}

func (s *RecordService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("records: cache invalidate failed")
	}
}
