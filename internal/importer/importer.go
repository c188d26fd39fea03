// Package importer loads ledger records in bulk from CSV files and XLSX
// workbooks. A file (or workbook sheet) is mapped to a record kind by its
// name, e.g. gastos.csv or a sheet called "produtos".
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
	"github.com/andresuchdata/qota-finance/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// Sink receives parsed records. Both *service.RecordService and any
// repository.Writer satisfy it.
type Sink interface {
	CreateExpense(ctx context.Context, e domain.Expense) (domain.WriteResult, error)
	CreateInvestment(ctx context.Context, i domain.Investment) (domain.WriteResult, error)
	CreateRevenue(ctx context.Context, r domain.Revenue) (domain.WriteResult, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.WriteResult, error)
	CreateReceipt(ctx context.Context, r domain.AmazonReceipt) (domain.WriteResult, error)
	CreateBalance(ctx context.Context, b domain.AmazonBalance) (domain.WriteResult, error)
}

// importOrder lists kinds so products exist before receipts reference them.
// Prefix matching relies on amazon_receitas being checked before receitas.
var importOrder = []domain.RecordKind{
	domain.KindProduct,
	domain.KindExpense,
	domain.KindInvestment,
	domain.KindRevenue,
	domain.KindReceipt,
	domain.KindBalance,
}

var matchOrder = []domain.RecordKind{
	domain.KindReceipt,
	domain.KindBalance,
	domain.KindInvestment,
	domain.KindProduct,
	domain.KindRevenue,
	domain.KindExpense,
}

// KindFromName maps a file or sheet name such as "amazon_receitas_2024.csv"
// to its record kind.
func KindFromName(name string) (domain.RecordKind, bool) {
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	base = strings.Join(strings.Fields(base), "_")
	for _, kind := range matchOrder {
		if strings.HasPrefix(base, string(kind)) {
			return kind, true
		}
	}
	return "", false
}

// RowError records a row that was skipped because it failed validation.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Result summarizes one imported sheet.
type Result struct {
	Source   string
	Kind     domain.RecordKind
	Imported int
	Skipped  []RowError
}

type Importer struct {
	sink     Sink
	products repository.Reader
}

type Option func(*Importer)

// WithProductLookup links receipts without produto_id to the product with the
// same SKU.
func WithProductLookup(reader repository.Reader) Option {
	return func(i *Importer) {
		i.products = reader
	}
}

func New(sink Sink, opts ...Option) *Importer {
	imp := &Importer{sink: sink}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// ImportDir imports every .csv and .xlsx file in dir, products first.
func (imp *Importer) ImportDir(ctx context.Context, dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read import dir %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".xlsx":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return imp.ImportFiles(ctx, paths)
}

// ImportFiles imports the given files, ordered so that products precede
// receipts. Files whose kind cannot be inferred are imported last and only
// succeed if they are workbooks with named sheets.
func (imp *Importer) ImportFiles(ctx context.Context, paths []string) ([]Result, error) {
	sorted := slices.Clone(paths)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return rank(a) - rank(b)
	})

	var results []Result
	for _, path := range sorted {
		res, err := imp.ImportFile(ctx, path)
		results = append(results, res...)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func rank(path string) int {
	kind, ok := KindFromName(path)
	if !ok {
		return len(importOrder)
	}
	return slices.Index(importOrder, kind)
}

// ImportFile imports a CSV file, or every recognised sheet of an XLSX
// workbook.
func (imp *Importer) ImportFile(ctx context.Context, path string) ([]Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	fileKind, fileKindOK := KindFromName(path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		if !fileKindOK {
			return nil, &domain.ValidationError{Field: "file", Reason: fmt.Sprintf("cannot infer record kind from %s", filepath.Base(path))}
		}
		rows, err := ReadCSV(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		res, err := imp.ImportRows(ctx, fileKind, filepath.Base(path), rows)
		return []Result{res}, err

	case ".xlsx":
		sheets, err := ReadWorkbook(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return imp.importSheets(ctx, path, sheets, fileKind, fileKindOK)

	default:
		return nil, &domain.ValidationError{Field: "file", Reason: fmt.Sprintf("unsupported file type %s", filepath.Ext(path))}
	}
}

func (imp *Importer) importSheets(ctx context.Context, path string, sheets []Sheet, fileKind domain.RecordKind, fileKindOK bool) ([]Result, error) {
	type job struct {
		kind  domain.RecordKind
		sheet Sheet
	}

	var jobs []job
	for i, sheet := range sheets {
		if kind, ok := KindFromName(sheet.Name); ok {
			jobs = append(jobs, job{kind: kind, sheet: sheet})
			continue
		}
		if i == 0 && fileKindOK {
			jobs = append(jobs, job{kind: fileKind, sheet: sheet})
			continue
		}
		log.Debug().Str("file", path).Str("sheet", sheet.Name).Msg("skipping sheet with unknown record kind")
	}
	if len(jobs) == 0 {
		return nil, &domain.ValidationError{Field: "file", Reason: fmt.Sprintf("no importable sheet in %s", filepath.Base(path))}
	}

	slices.SortStableFunc(jobs, func(a, b job) int {
		return slices.Index(importOrder, a.kind) - slices.Index(importOrder, b.kind)
	})

	var results []Result
	for _, j := range jobs {
		res, err := imp.ImportRows(ctx, j.kind, filepath.Base(path)+"#"+j.sheet.Name, j.sheet.Rows)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// ImportRows imports rows (header first) as records of kind. Rows failing
// validation are skipped and reported; any other error aborts the import.
func (imp *Importer) ImportRows(ctx context.Context, kind domain.RecordKind, source string, rows [][]string) (Result, error) {
	res := Result{Source: source, Kind: kind}
	if len(rows) == 0 {
		return res, nil
	}

	write, err := imp.writerFor(ctx, kind)
	if err != nil {
		return res, err
	}

	cols := indexHeader(rows[0])
	for i, record := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		r := row{line: i + 2, cols: cols, record: record}
		if r.blank() {
			continue
		}

		if err := write(ctx, r); err != nil {
			if errors.Is(err, domain.ErrValidation) {
				res.Skipped = append(res.Skipped, RowError{Line: r.line, Err: err})
				continue
			}
			return res, fmt.Errorf("%s line %d: %w", source, r.line, err)
		}
		res.Imported++
	}

	ev := log.Info()
	if len(res.Skipped) > 0 {
		ev = log.Warn()
	}
	ev.Str("source", source).
		Str("kind", string(kind)).
		Int("imported", res.Imported).
		Int("skipped", len(res.Skipped)).
		Msg("import finished")

	return res, nil
}

type rowWriter func(ctx context.Context, r row) error

func (imp *Importer) writerFor(ctx context.Context, kind domain.RecordKind) (rowWriter, error) {
	switch kind {
	case domain.KindExpense:
		return func(ctx context.Context, r row) error {
			e, err := expenseFromRow(r)
			if err != nil {
				return err
			}
			_, err = imp.sink.CreateExpense(ctx, e)
			return err
		}, nil
	case domain.KindInvestment:
		return func(ctx context.Context, r row) error {
			inv, err := investmentFromRow(r)
			if err != nil {
				return err
			}
			_, err = imp.sink.CreateInvestment(ctx, inv)
			return err
		}, nil
	case domain.KindRevenue:
		return func(ctx context.Context, r row) error {
			rev, err := revenueFromRow(r)
			if err != nil {
				return err
			}
			_, err = imp.sink.CreateRevenue(ctx, rev)
			return err
		}, nil
	case domain.KindProduct:
		return func(ctx context.Context, r row) error {
			p, err := productFromRow(r)
			if err != nil {
				return err
			}
			_, err = imp.sink.CreateProduct(ctx, p)
			return err
		}, nil
	case domain.KindReceipt:
		bySKU, err := imp.productsBySKU(ctx)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, r row) error {
			rc, err := receiptFromRow(r, bySKU)
			if err != nil {
				return err
			}
			_, err = imp.sink.CreateReceipt(ctx, rc)
			return err
		}, nil
	case domain.KindBalance:
		return func(ctx context.Context, r row) error {
			b, err := balanceFromRow(r)
			if err != nil {
				return err
			}
			_, err = imp.sink.CreateBalance(ctx, b)
			return err
		}, nil
	default:
		return nil, &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown record kind %q", kind)}
	}
}

func (imp *Importer) productsBySKU(ctx context.Context) (map[string]int64, error) {
	if imp.products == nil {
		return nil, nil
	}
	products, err := imp.products.ListProducts(ctx, domain.AllTime())
	if err != nil {
		return nil, fmt.Errorf("failed to load products for receipt linking: %w", err)
	}
	bySKU := make(map[string]int64, len(products))
	for _, p := range products {
		sku := strings.ToUpper(strings.TrimSpace(p.SKU))
		if sku == "" {
			continue
		}
		// keep the most recent product for a repeated SKU
		if _, seen := bySKU[sku]; !seen {
			bySKU[sku] = p.ID
		}
	}
	return bySKU, nil
}
