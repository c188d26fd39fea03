// backend-go/internal/finance/engine.go
package finance

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
	"github.com/andresuchdata/qota-finance/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Engine derives period aggregates from the record store. It holds no state
// besides the reader and the clock used for defaulted sales queries.
type Engine struct {
	reader repository.Reader
	now    func() time.Time
}

type EngineOption func(*Engine)

// WithClock overrides time.Now, used to default the sales ranking period.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(reader repository.Reader, opts ...EngineOption) *Engine {
	e := &Engine{reader: reader, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Summary computes revenue and expense totals for a period.
//
// Revenue USD is marketplace receipts plus generic revenues; revenue BRL only
// has the generic leg. Expense USD adds expenses, investments and the purchase
// cost of products bucketed on their effective date; expense BRL has no
// product leg.
func (e *Engine) Summary(ctx context.Context, period domain.Period) (domain.PeriodSummary, error) {
	var (
		expenses    []domain.Expense
		investments []domain.Investment
		revenues    []domain.Revenue
		receipts    []domain.AmazonReceipt
		products    []domain.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		expenses, err = e.reader.ListExpenses(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		investments, err = e.reader.ListInvestments(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		revenues, err = e.reader.ListRevenues(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		receipts, err = e.reader.ListReceipts(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		products, err = e.reader.ListProducts(gctx, period)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.PeriodSummary{}, fmt.Errorf("failed to load summary for %s: %w", period, domain.DataAccess(err))
	}

	var recUSD, recBRL, despUSD, despBRL decimal.Decimal

	for _, r := range receipts {
		if period.Contains(r.Date) {
			recUSD = recUSD.Add(dec(r.AmountUSD))
		}
	}
	for _, r := range revenues {
		if period.Contains(r.Date) {
			recUSD = recUSD.Add(dec(r.AmountUSD))
			recBRL = recBRL.Add(dec(r.AmountBRL))
		}
	}
	for _, x := range expenses {
		if period.Contains(x.Date) {
			despUSD = despUSD.Add(dec(x.AmountUSD))
			despBRL = despBRL.Add(dec(x.AmountBRL))
		}
	}
	for _, i := range investments {
		if period.Contains(i.Date) {
			despUSD = despUSD.Add(dec(i.AmountUSD))
			despBRL = despBRL.Add(dec(i.AmountBRL))
		}
	}
	for _, p := range products {
		if period.Contains(p.EffectiveDate()) {
			despUSD = despUSD.Add(totalPurchaseCost(p))
		}
	}

	return domain.PeriodSummary{
		RevenueUSD: recUSD.InexactFloat64(),
		RevenueBRL: recBRL.InexactFloat64(),
		ExpenseUSD: despUSD.InexactFloat64(),
		ExpenseBRL: despBRL.InexactFloat64(),
	}, nil
}

// Totals is Summary over all time.
func (e *Engine) Totals(ctx context.Context) (domain.PeriodSummary, error) {
	return e.Summary(ctx, domain.AllTime())
}

// Profits sums gross profit per unit times quantity over receipts. Receipts
// whose product no longer exists contribute nothing. AllTime always covers
// every receipt regardless of period.
func (e *Engine) Profits(ctx context.Context, period domain.Period) (domain.ProfitTotals, error) {
	var (
		receipts []domain.AmazonReceipt
		products []domain.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		receipts, err = e.reader.ListReceipts(gctx, domain.AllTime())
		return err
	})
	g.Go(func() (err error) {
		products, err = e.reader.ListProducts(gctx, domain.AllTime())
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.ProfitTotals{}, fmt.Errorf("failed to load profit inputs: %w", domain.DataAccess(err))
	}

	byID := indexProducts(products)

	var inPeriod, total decimal.Decimal
	orphans := 0
	for _, r := range receipts {
		p, ok := lookupProduct(byID, r.ProductID)
		if !ok {
			orphans++
			continue
		}
		contribution := grossProfitPerUnit(p).Mul(decimal.NewFromInt(r.Quantity))
		total = total.Add(contribution)
		if period.Contains(r.Date) {
			inPeriod = inPeriod.Add(contribution)
		}
	}

	if orphans > 0 {
		log.Debug().Int("orphans", orphans).Str("period", period.String()).Msg("receipts without product skipped in profit totals")
	}

	return domain.ProfitTotals{
		Period:  inPeriod.InexactFloat64(),
		AllTime: total.InexactFloat64(),
	}, nil
}

// Series returns one point per month that has any receipt, expense,
// investment or product, sorted ascending.
func (e *Engine) Series(ctx context.Context) ([]domain.SeriesPoint, error) {
	var (
		receipts    []domain.AmazonReceipt
		expenses    []domain.Expense
		investments []domain.Investment
		products    []domain.Product
	)

	all := domain.AllTime()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		receipts, err = e.reader.ListReceipts(gctx, all)
		return err
	})
	g.Go(func() (err error) {
		expenses, err = e.reader.ListExpenses(gctx, all)
		return err
	})
	g.Go(func() (err error) {
		investments, err = e.reader.ListInvestments(gctx, all)
		return err
	})
	g.Go(func() (err error) {
		products, err = e.reader.ListProducts(gctx, all)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load monthly series: %w", domain.DataAccess(err))
	}

	revenue := monthBuckets{}
	spend := monthBuckets{}

	for _, r := range receipts {
		revenue.add(r.Date, dec(r.AmountUSD))
	}
	for _, x := range expenses {
		spend.add(x.Date, dec(x.AmountUSD))
	}
	for _, i := range investments {
		spend.add(i.Date, dec(i.AmountUSD))
	}
	for _, p := range products {
		spend.add(p.EffectiveDate(), totalPurchaseCost(p))
	}

	months := make(map[string]struct{}, len(revenue)+len(spend))
	for m := range revenue {
		months[m] = struct{}{}
	}
	for m := range spend {
		months[m] = struct{}{}
	}

	keys := make([]string, 0, len(months))
	for m := range months {
		keys = append(keys, m)
	}
	sort.Strings(keys)

	out := make([]domain.SeriesPoint, 0, len(keys))
	for _, m := range keys {
		rev := revenue[m]
		exp := spend[m]
		out = append(out, domain.SeriesPoint{
			Month:            m,
			RevenueAmazonUSD: rev.InexactFloat64(),
			TotalExpensesUSD: exp.InexactFloat64(),
			Result:           rev.Sub(exp).InexactFloat64(),
		})
	}
	return out, nil
}

// ProductSales ranks products by units sold in a month or year.
func (e *Engine) ProductSales(ctx context.Context, q domain.SalesQuery) ([]domain.ProductSales, error) {
	q = e.normalizeSalesQuery(q)
	if q.Scope == domain.SalesScopeMonth && (q.Month < 1 || q.Month > 12) {
		return nil, &domain.ValidationError{Field: "month", Reason: fmt.Sprintf("expected 1-12, got %d", q.Month)}
	}

	var (
		period domain.Period
		err    error
	)
	if q.Scope == domain.SalesScopeYear {
		period, err = domain.YearPeriod(q.Year)
	} else {
		period, err = domain.MonthPeriod(fmt.Sprintf("%04d-%02d", q.Year, q.Month))
	}
	if err != nil {
		return nil, err
	}

	var (
		receipts []domain.AmazonReceipt
		products []domain.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		receipts, err = e.reader.ListReceipts(gctx, period)
		return err
	})
	g.Go(func() (err error) {
		products, err = e.reader.ListProducts(gctx, domain.AllTime())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load product sales for %s: %w", period, domain.DataAccess(err))
	}

	byID := indexProducts(products)

	type salesKey struct{ sku, name string }
	totals := make(map[salesKey]int64)
	for _, r := range receipts {
		if !period.Contains(r.Date) {
			continue
		}
		sku, name := r.SKUSnapshot, r.NameSnapshot
		if p, ok := lookupProduct(byID, r.ProductID); ok {
			sku = firstNonBlank(p.SKU, sku)
			name = firstNonBlank(p.Name, name)
		}
		key := salesKey{
			sku:  firstNonBlank(sku, domain.UnknownSKU),
			name: firstNonBlank(name, domain.UnknownName),
		}
		totals[key] += r.Quantity
	}

	out := make([]domain.ProductSales, 0, len(totals))
	for k, qty := range totals {
		out = append(out, domain.ProductSales{SKU: k.sku, Name: k.name, Qty: qty})
	}

	asc := q.Order == domain.SortAsc
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Qty != b.Qty {
			if asc {
				return a.Qty < b.Qty
			}
			return a.Qty > b.Qty
		}
		if a.SKU != b.SKU {
			return a.SKU < b.SKU
		}
		return a.Name < b.Name
	})

	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (e *Engine) normalizeSalesQuery(q domain.SalesQuery) domain.SalesQuery {
	if strings.EqualFold(q.Scope, domain.SalesScopeYear) {
		q.Scope = domain.SalesScopeYear
	} else {
		q.Scope = domain.SalesScopeMonth
	}
	if strings.EqualFold(q.Order, domain.SortAsc) {
		q.Order = domain.SortAsc
	} else {
		q.Order = domain.SortDesc
	}
	if q.Limit <= 0 {
		q.Limit = domain.DefaultSalesLimit
	}
	now := e.now()
	if q.Year == 0 {
		q.Year = now.Year()
	}
	if q.Month == 0 {
		q.Month = int(now.Month())
	}
	return q
}

type monthBuckets map[string]decimal.Decimal

func (b monthBuckets) add(date string, amount decimal.Decimal) {
	key := domain.MonthKey(date)
	if key == "" {
		return
	}
	b[key] = b[key].Add(amount)
}

func indexProducts(products []domain.Product) map[int64]domain.Product {
	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID
}

func lookupProduct(byID map[int64]domain.Product, id *int64) (domain.Product, bool) {
	if id == nil {
		return domain.Product{}, false
	}
	p, ok := byID[*id]
	return p, ok
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
