package postgres

import (
	"errors"
	"strings"

	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// mapError turns input-shaped server errors (bad dates, NOT NULL or CHECK
// violations) into validation errors. Everything else is a data access error.
func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classify(string(pqErr.Code), pqErr.Column, pqErr.Message, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classify(pgErr.Code, pgErr.ColumnName, pgErr.Message, err)
	}

	return domain.DataAccess(err)
}

func classify(code, column, message string, err error) error {
	switch {
	case code == "23502", code == "23514", strings.HasPrefix(code, "22"):
		field := column
		if field == "" {
			field = "record"
		}
		return &domain.ValidationError{Field: field, Reason: message}
	default:
		return domain.DataAccess(err)
	}
}
