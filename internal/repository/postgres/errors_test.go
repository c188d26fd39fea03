package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/andresuchdata/qota-finance/backend-go/internal/config"
	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorPQ(t *testing.T) {
	err := fmt.Errorf("exec: %w", &pq.Error{Code: "22007", Message: `invalid input syntax for type date: "03/2024"`})

	mapped := mapError(err)
	assert.ErrorIs(t, mapped, domain.ErrValidation)

	var vErr *domain.ValidationError
	assert.True(t, errors.As(mapped, &vErr))
	assert.Equal(t, "record", vErr.Field)
}

func TestMapErrorPgconn(t *testing.T) {
	mapped := mapError(&pgconn.PgError{Code: "23502", ColumnName: "nome", Message: "null value in column"})

	var vErr *domain.ValidationError
	assert.True(t, errors.As(mapped, &vErr))
	assert.Equal(t, "nome", vErr.Field)
}

func TestMapErrorFallsBackToDataAccess(t *testing.T) {
	unique := mapError(&pgconn.PgError{Code: "57P01", Message: "terminating connection"})
	assert.ErrorIs(t, unique, domain.ErrDataAccess)

	plain := mapError(errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"))
	assert.ErrorIs(t, plain, domain.ErrDataAccess)
}

func TestDSN(t *testing.T) {
	driver, dsn := DSN(config.DatabaseConfig{URL: "postgres://u:p@neon.example/qota?sslmode=require"})
	assert.Equal(t, "pgx", driver)
	assert.Equal(t, "postgres://u:p@neon.example/qota?sslmode=require", dsn)

	driver, dsn = DSN(config.DatabaseConfig{Host: "db", Port: "5432", User: "app", Password: "secret", DBName: "qota", SSLMode: "disable"})
	assert.Equal(t, "postgres", driver)
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=qota sslmode=disable", dsn)
}
