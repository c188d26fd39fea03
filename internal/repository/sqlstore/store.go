// backend-go/internal/repository/sqlstore/store.go
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
	"github.com/andresuchdata/qota-finance/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

var _ repository.Store = (*Store)(nil)

// Store implements repository.Store over any sqlx connection. Backend
// packages open the connection, run migrations and pick the dialect.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
	sem     *semaphore.Weighted
	mapErr  func(error) error
}

type Option func(*Store)

// WithErrorMapper translates driver errors before they are returned.
// Unmapped errors are tagged as data access failures.
func WithErrorMapper(fn func(error) error) Option {
	return func(s *Store) {
		s.mapErr = fn
	}
}

// WithMaxConcurrentTx bounds the number of open write transactions.
func WithMaxConcurrentTx(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.sem = semaphore.NewWeighted(n)
		}
	}
}

func New(db *sqlx.DB, dialect Dialect, opts ...Option) *Store {
	s := &Store{
		db:      db,
		dialect: dialect,
		sem:     semaphore.NewWeighted(10),
		mapErr:  domain.DataAccess,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) wrap(op string, err error) error {
	mapped := s.mapErr(err)
	if !errors.Is(mapped, domain.ErrValidation) {
		mapped = domain.DataAccess(mapped)
	}
	return fmt.Errorf("failed to %s: %w", op, mapped)
}

// WithTx executes fn within a transaction, bounded by the store semaphore.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer s.sem.Release(1)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// periodClause builds the WHERE clause for a period filter on dateExpr.
func (s *Store) periodClause(dateExpr string, period domain.Period) (string, []interface{}) {
	if period.IsAllTime() {
		return "", nil
	}
	return fmt.Sprintf(" WHERE %s = ?", s.dialect.DatePrefix(dateExpr, period.Len())), []interface{}{period.Key()}
}

func (s *Store) selectRows(ctx context.Context, op string, dest interface{}, query string, args ...interface{}) error {
	if err := s.db.SelectContext(ctx, dest, s.db.Rebind(query), args...); err != nil {
		return s.wrap(op, err)
	}
	return nil
}

func (s *Store) ListExpenses(ctx context.Context, period domain.Period) ([]domain.Expense, error) {
	where, args := s.periodClause("data", period)
	query := fmt.Sprintf(`
		SELECT id, %s AS data, categoria, descricao, valor_brl, valor_usd, metodo, conta, quem
		FROM gastos%s
		ORDER BY data DESC, id DESC`, s.dialect.DateOut("data"), where)

	rows := []domain.Expense{}
	if err := s.selectRows(ctx, "list expenses", &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) ListInvestments(ctx context.Context, period domain.Period) ([]domain.Investment, error) {
	where, args := s.periodClause("data", period)
	query := fmt.Sprintf(`
		SELECT id, %s AS data, valor_brl, valor_usd, metodo, conta, quem
		FROM investimentos%s
		ORDER BY data DESC, id DESC`, s.dialect.DateOut("data"), where)

	rows := []domain.Investment{}
	if err := s.selectRows(ctx, "list investments", &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) ListRevenues(ctx context.Context, period domain.Period) ([]domain.Revenue, error) {
	where, args := s.periodClause("data", period)
	query := fmt.Sprintf(`
		SELECT id, %s AS data, valor_brl, valor_usd
		FROM receitas%s
		ORDER BY data DESC, id DESC`, s.dialect.DateOut("data"), where)

	rows := []domain.Revenue{}
	if err := s.selectRows(ctx, "list revenues", &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) ListProducts(ctx context.Context, period domain.Period) ([]domain.Product, error) {
	effective := "COALESCE(data_amz, data_add)"
	where, args := s.periodClause(effective, period)
	query := fmt.Sprintf(`
		SELECT id, %s AS data_add, %s AS data_amz, nome, sku, upc, asin, estoque,
		       custo_base, freight, tax, quantidade, prep, sold_for, amazon_fees,
		       link_amazon, link_fornecedor
		FROM produtos%s
		ORDER BY %s DESC, id DESC`,
		s.dialect.DateOut("data_add"), s.dialect.DateOut("data_amz"), where, effective)

	rows := []domain.Product{}
	if err := s.selectRows(ctx, "list products", &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) ListReceipts(ctx context.Context, period domain.Period) ([]domain.AmazonReceipt, error) {
	where, args := s.periodClause("data", period)
	query := fmt.Sprintf(`
		SELECT id, %s AS data, produto_id, quantidade, valor_usd, quem, obs, sku, produto
		FROM amazon_receitas%s
		ORDER BY data DESC, id DESC`, s.dialect.DateOut("data"), where)

	rows := []domain.AmazonReceipt{}
	if err := s.selectRows(ctx, "list amazon receipts", &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) LatestBalance(ctx context.Context) (*domain.AmazonBalance, error) {
	query := fmt.Sprintf(`
		SELECT id, %s AS data, disponivel, pendente, moeda
		FROM amazon_saldos
		ORDER BY data DESC, id DESC
		LIMIT 1`, s.dialect.DateOut("data"))

	var b domain.AmazonBalance
	err := s.db.GetContext(ctx, &b, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, s.wrap("get latest balance", err)
	}
	return &b, nil
}

func (s *Store) insert(ctx context.Context, q sqlx.QueryerContext, op, query string, args ...interface{}) (domain.WriteResult, error) {
	var id int64
	if err := sqlx.GetContext(ctx, q, &id, s.db.Rebind(query+" RETURNING id"), args...); err != nil {
		return domain.WriteResult{}, s.wrap(op, err)
	}
	return domain.WriteResult{LastID: id, Changes: 1}, nil
}

func (s *Store) CreateExpense(ctx context.Context, e domain.Expense) (domain.WriteResult, error) {
	return s.insert(ctx, s.db, "create expense", `
		INSERT INTO gastos (data, categoria, descricao, valor_brl, valor_usd, metodo, conta, quem)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Date, e.Category, e.Description, e.AmountBRL, e.AmountUSD, e.Method, e.Account, e.Who)
}

func (s *Store) CreateInvestment(ctx context.Context, i domain.Investment) (domain.WriteResult, error) {
	return s.insert(ctx, s.db, "create investment", `
		INSERT INTO investimentos (data, valor_brl, valor_usd, metodo, conta, quem)
		VALUES (?, ?, ?, ?, ?, ?)`,
		i.Date, i.AmountBRL, i.AmountUSD, i.Method, i.Account, i.Who)
}

func (s *Store) CreateRevenue(ctx context.Context, r domain.Revenue) (domain.WriteResult, error) {
	return s.insert(ctx, s.db, "create revenue", `
		INSERT INTO receitas (data, valor_brl, valor_usd)
		VALUES (?, ?, ?)`,
		r.Date, r.AmountBRL, r.AmountUSD)
}

func (s *Store) CreateProduct(ctx context.Context, p domain.Product) (domain.WriteResult, error) {
	return s.insert(ctx, s.db, "create product", `
		INSERT INTO produtos (data_add, nome, sku, upc, asin, estoque, custo_base, freight, tax,
		                      quantidade, prep, sold_for, amazon_fees, link_amazon, link_fornecedor, data_amz)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.DateAdded, p.Name, p.SKU, p.UPC, p.ASIN, p.StockQty, p.UnitBaseCost, p.BatchFreight, p.BatchTax,
		p.PurchasedQty, p.PrepCost, p.SalePrice, p.MarketplaceFees, p.LinkMarketplace, p.LinkSupplier,
		nullableDate(p.DateOnMarketplace))
}

// CreateReceipt inserts the receipt and clamps the product stock in one
// transaction. The decrement is a single UPDATE so concurrent receipts for the
// same product cannot lose updates.
func (s *Store) CreateReceipt(ctx context.Context, r domain.AmazonReceipt) (domain.WriteResult, error) {
	var out domain.WriteResult
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := s.insert(ctx, tx, "create amazon receipt", `
			INSERT INTO amazon_receitas (data, produto_id, quantidade, valor_usd, quem, obs, sku, produto)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.Date, r.ProductID, r.Quantity, r.AmountUSD, r.Who, r.Note, r.SKUSnapshot, r.NameSnapshot)
		if err != nil {
			return err
		}
		out = res

		if r.ProductID == nil {
			return nil
		}

		update := fmt.Sprintf("UPDATE produtos SET estoque = %s(0, estoque - ?) WHERE id = ?", s.dialect.Greatest)
		if _, err := tx.ExecContext(ctx, tx.Rebind(update), r.Quantity, *r.ProductID); err != nil {
			return s.wrap("decrement product stock", err)
		}
		return nil
	})
	if err != nil {
		return domain.WriteResult{}, err
	}
	return out, nil
}

func (s *Store) CreateBalance(ctx context.Context, b domain.AmazonBalance) (domain.WriteResult, error) {
	return s.insert(ctx, s.db, "create amazon balance", `
		INSERT INTO amazon_saldos (data, disponivel, pendente, moeda)
		VALUES (?, ?, ?, ?)`,
		b.Date, b.Available, b.Pending, b.Currency)
}

func (s *Store) Delete(ctx context.Context, kind domain.RecordKind, id int64) (domain.WriteResult, error) {
	if !kind.Valid() {
		return domain.WriteResult{}, &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown record kind %q", kind)}
	}

	// kind is one of the fixed table names checked above
	query := s.db.Rebind("DELETE FROM " + string(kind) + " WHERE id = ?")
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return domain.WriteResult{}, s.wrap("delete from "+string(kind), err)
	}

	changes, err := res.RowsAffected()
	if err != nil {
		return domain.WriteResult{}, s.wrap("read affected rows", err)
	}
	return domain.WriteResult{Changes: changes}, nil
}

func nullableDate(d *string) interface{} {
	if d == nil || strings.TrimSpace(*d) == "" {
		return nil
	}
	return *d
}
