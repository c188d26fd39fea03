package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/qota-finance/backend-go/internal/cache"
	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
	"github.com/andresuchdata/qota-finance/backend-go/internal/finance"
	"github.com/rs/zerolog/log"
)

// MetricsService fronts the aggregation engine with a read-through cache.
type MetricsService struct {
	engine *finance.Engine
	cache  cache.MetricsCache
}

func NewMetricsService(engine *finance.Engine, cacheImpl cache.MetricsCache) *MetricsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopMetricsCache()
	}
	return &MetricsService{engine: engine, cache: cacheImpl}
}

func (s *MetricsService) Summary(ctx context.Context, period domain.Period) (domain.PeriodSummary, error) {
	return readThrough(ctx, s.cache, cache.MetricsKey("resumo", "period="+period.Key()), func() (domain.PeriodSummary, error) {
		return s.engine.Summary(ctx, period)
	})
}

func (s *MetricsService) Totals(ctx context.Context) (domain.PeriodSummary, error) {
	return readThrough(ctx, s.cache, cache.MetricsKey("totais"), func() (domain.PeriodSummary, error) {
		return s.engine.Totals(ctx)
	})
}

func (s *MetricsService) Profits(ctx context.Context, period domain.Period) (domain.ProfitTotals, error) {
	return readThrough(ctx, s.cache, cache.MetricsKey("lucros", "period="+period.Key()), func() (domain.ProfitTotals, error) {
		return s.engine.Profits(ctx, period)
	})
}

func (s *MetricsService) Series(ctx context.Context) ([]domain.SeriesPoint, error) {
	return readThrough(ctx, s.cache, cache.MetricsKey("series"), func() ([]domain.SeriesPoint, error) {
		return s.engine.Series(ctx)
	})
}

// ProductSales is cached only when the period is explicit; the defaults
// depend on the current date.
func (s *MetricsService) ProductSales(ctx context.Context, q domain.SalesQuery) ([]domain.ProductSales, error) {
	if strings.EqualFold(q.Scope, domain.SalesScopeYear) {
		q.Month = 0
	}
	if q.Year != 0 && (q.Month != 0 || strings.EqualFold(q.Scope, domain.SalesScopeYear)) {
		key := cache.MetricsKey("products_sales",
			"scope="+q.Scope, "order="+q.Order, fmt.Sprintf("limit=%d", q.Limit),
			fmt.Sprintf("year=%d", q.Year), fmt.Sprintf("month=%d", q.Month))
		return readThrough(ctx, s.cache, key, func() ([]domain.ProductSales, error) {
			return s.engine.ProductSales(ctx, q)
		})
	}
	return s.engine.ProductSales(ctx, q)
}

func readThrough[T any](ctx context.Context, c cache.MetricsCache, key string, load func() (T, error)) (T, error) {
	var cached T
	if ok, err := c.Get(ctx, key, &cached); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("metrics: cache get failed")
	}

	value, err := load()
	if err != nil {
		var zero T
		return zero, err
	}

	if err := c.Set(ctx, key, value); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("metrics: cache set failed")
	}

	return value, nil
}
