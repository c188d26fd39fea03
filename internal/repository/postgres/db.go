package postgres

import (
	"fmt"
	"time"

	"github.com/andresuchdata/qota-finance/backend-go/internal/config"
	"github.com/andresuchdata/qota-finance/backend-go/internal/repository/sqlstore"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const maxConcurrentTx = 10

// DSN returns the driver name and connection string for cfg. A DATABASE_URL
// goes through pgx (hosted providers hand out URLs); discrete fields use lib/pq.
func DSN(cfg config.DatabaseConfig) (driver, dsn string) {
	if cfg.URL != "" {
		return "pgx", cfg.URL
	}
	return "postgres", fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// Open connects, applies migrations and returns the record store.
func Open(cfg config.DatabaseConfig) (*sqlstore.Store, error) {
	driver, dsn := DSN(cfg)

	if err := RunMigrations(driver, dsn); err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Info().Str("driver", driver).Msg("postgres record store ready")

	return sqlstore.New(db, sqlstore.Postgres,
		sqlstore.WithErrorMapper(mapError),
		sqlstore.WithMaxConcurrentTx(maxConcurrentTx),
	), nil
}
