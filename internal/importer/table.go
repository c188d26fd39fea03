package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet is one tabular source: a CSV file or a workbook sheet. The first row
// is the header.
type Sheet struct {
	Name string
	Rows [][]string
}

// ReadCSV reads a whole CSV document. Rows may have a variable number of
// fields.
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

// ReadWorkbook returns every sheet of an XLSX workbook with cell values as
// displayed.
func ReadWorkbook(r io.Reader) ([]Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read rows from sheet %s: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	return sheets, nil
}

// columnAliases maps common english headers onto the stored column names.
var columnAliases = map[string]string{
	"date":        "data",
	"category":    "categoria",
	"description": "descricao",
	"method":      "metodo",
	"account":     "conta",
	"who":         "quem",
	"name":        "nome",
	"stock":       "estoque",
	"product_id":  "produto_id",
	"product":     "produto",
	"qty":         "quantidade",
	"quantity":    "quantidade",
	"note":        "obs",
	"available":   "disponivel",
	"pending":     "pendente",
	"currency":    "moeda",
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	h = strings.Join(strings.Fields(h), "_")
	if alias, ok := columnAliases[h]; ok {
		return alias
	}
	return h
}

// row gives typed access to one record by header name.
type row struct {
	line   int
	cols   map[string]int
	record []string
}

func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if name == "" {
			continue
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

func (r row) has(col string) bool {
	idx, ok := r.cols[col]
	return ok && idx < len(r.record) && strings.TrimSpace(r.record[idx]) != ""
}

func (r row) str(col string) string {
	if idx, ok := r.cols[col]; ok && idx < len(r.record) {
		return strings.TrimSpace(r.record[idx])
	}
	return ""
}

func (r row) blank() bool {
	for _, v := range r.record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (r row) num(col string) (float64, error) {
	raw := r.str(col)
	if raw == "" {
		return 0, nil
	}
	v, err := parseNumber(raw)
	if err != nil {
		return 0, &domain.ValidationError{Field: col, Reason: fmt.Sprintf("not a number: %q", raw)}
	}
	return v, nil
}

func (r row) integer(col string) (int64, error) {
	v, err := r.num(col)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
		return 0, &domain.ValidationError{Field: col, Reason: fmt.Sprintf("expected a whole number, got %q", r.str(col))}
	}
	return int64(v), nil
}

func (r row) date(col string) (string, error) {
	raw := r.str(col)
	if raw == "" {
		return "", nil
	}
	d, err := parseDate(raw)
	if err != nil {
		return "", &domain.ValidationError{Field: col, Reason: fmt.Sprintf("unrecognised date %q", raw)}
	}
	return d, nil
}

// parseNumber accepts plain numbers, currency prefixes and both 1,234.56 and
// 1.234,56 grouping. A separator repeated without the other one is grouping
// (1,234,567 or 1.234.567); a lone one is the decimal point, except that R$
// amounts always use the Brazilian convention.
func parseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	brl := strings.HasPrefix(s, "R$")
	for _, prefix := range []string{"R$", "US$", "$"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")

	commas := strings.Count(s, ",")
	dots := strings.Count(s, ".")
	switch {
	case commas > 0 && dots > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case commas > 1:
		s = strings.ReplaceAll(s, ",", "")
	case commas == 1:
		s = strings.Replace(s, ",", ".", 1)
	case dots > 1, dots == 1 && brl:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

var dateLayouts = []string{
	domain.DateLayout,
	"02/01/2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseDate normalizes a date cell to YYYY-MM-DD. Bare numbers are treated as
// spreadsheet serial dates.
func parseDate(raw string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(domain.DateLayout), nil
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return "", err
		}
		return t.Format(domain.DateLayout), nil
	}
	return "", fmt.Errorf("unrecognised date %q", raw)
}
