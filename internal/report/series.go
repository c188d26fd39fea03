// Package report renders aggregates as CSV documents for export.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
	"github.com/andresuchdata/qota-finance/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const ContentTypeCSV = "text/csv"

var seriesHeader = []string{"mes", "receitas_amz", "despesas_totais", "resultado"}

// SeriesSource is satisfied by the aggregation engine and the metrics service.
type SeriesSource interface {
	Series(ctx context.Context) ([]domain.SeriesPoint, error)
}

// WriteSeriesCSV writes one row per month with amounts fixed to two decimals.
func WriteSeriesCSV(w io.Writer, points []domain.SeriesPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(seriesHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, p := range points {
		record := []string{
			p.Month,
			money(p.RevenueAmazonUSD),
			money(p.TotalExpensesUSD),
			money(p.Result),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", p.Month, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// SeriesKey names an export object, e.g. reports/series-2024-03-20.csv.
func SeriesKey(prefix string, at time.Time) string {
	return path.Join(prefix, fmt.Sprintf("series-%s.csv", at.Format(domain.DateLayout)))
}

// Exporter renders the monthly series and hands it to a destination.
type Exporter struct {
	source SeriesSource
	now    func() time.Time
}

func NewExporter(source SeriesSource) *Exporter {
	return &Exporter{source: source, now: time.Now}
}

// Render returns the series CSV document.
func (e *Exporter) Render(ctx context.Context) ([]byte, error) {
	points, err := e.source.Series(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteSeriesCSV(&buf, points); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Upload renders the series and stores it under prefix, returning the key.
func (e *Exporter) Upload(ctx context.Context, store storage.ObjectStorage, prefix string) (string, error) {
	data, err := e.Render(ctx)
	if err != nil {
		return "", err
	}

	key := SeriesKey(prefix, e.now())
	if err := store.UploadObject(ctx, key, data, ContentTypeCSV); err != nil {
		return "", err
	}

	log.Info().Str("key", key).Int("bytes", len(data)).Msg("series report uploaded")
	return key, nil
}
