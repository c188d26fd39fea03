package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andresuchdata/qota-finance/backend-go/internal/bootstrap"
	"github.com/andresuchdata/qota-finance/backend-go/internal/config"
	"github.com/andresuchdata/qota-finance/backend-go/internal/importer"
	"github.com/andresuchdata/qota-finance/backend-go/internal/repository"
	"github.com/andresuchdata/qota-finance/backend-go/internal/service"
	"github.com/andresuchdata/qota-finance/backend-go/pkg/logger"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

type storeKey struct{}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db-driver",
			Usage:   "Record store backend: postgres, sqlite or memory",
			EnvVars: []string{"DB_DRIVER"},
		},
		&cli.StringFlag{
			Name:    "db-url",
			Usage:   "Postgres connection URL",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.StringFlag{
			Name:    "sqlite-path",
			Usage:   "SQLite database file",
			EnvVars: []string{"SQLITE_PATH"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level",
			Value:   "info",
			EnvVars: []string{"LOG_LEVEL"},
		},
	}
}

// loadConfig applies flag overrides on top of the environment.
func loadConfig(c *cli.Context) *config.Config {
	cfg := config.Load()
	if url := c.String("db-url"); url != "" {
		cfg.Database.URL = url
	}
	if path := c.String("sqlite-path"); path != "" {
		cfg.Database.SQLitePath = path
	}
	if driver := c.String("db-driver"); driver != "" {
		cfg.Database.Driver = driver
	} else if c.IsSet("db-url") {
		cfg.Database.Driver = bootstrap.DriverPostgres
	}
	return cfg
}

func openStore(c *cli.Context) error {
	logger.SetLevel(c.String("log-level"))

	cfg := loadConfig(c)
	store, err := bootstrap.OpenStore(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}

	c.Context = context.WithValue(c.Context, storeKey{}, store)
	return nil
}

func closeStore(c *cli.Context) error {
	if store, ok := c.Context.Value(storeKey{}).(repository.Store); ok && store != nil {
		return store.Close()
	}
	return nil
}

func storeFrom(c *cli.Context) (repository.Store, error) {
	store, ok := c.Context.Value(storeKey{}).(repository.Store)
	if !ok || store == nil {
		return nil, fmt.Errorf("record store not initialised")
	}
	return store, nil
}

// newImporter writes through the record service so imports get the same
// validation and cache invalidation as the API.
func newImporter(c *cli.Context, store repository.Store) *importer.Importer {
	cfg := loadConfig(c)
	records := service.NewRecordService(store, bootstrap.OpenCache(cfg.Cache))
	return importer.New(records, importer.WithProductLookup(store))
}

func main() {
	app := &cli.App{
		Name:  "seed",
		Usage: "Migrate the record store and bulk import ledger files",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply database migrations and exit",
				Flags:  storeFlags(),
				Before: openStore,
				After:  closeStore,
				Action: func(c *cli.Context) error {
					log.Info().Msg("record store migrated")
					return nil
				},
			},
			{
				Name:      "csv",
				Usage:     "Import CSV files named after their table (gastos.csv, produtos.csv, ...)",
				ArgsUsage: "FILE...",
				Flags:     storeFlags(),
				Before:    openStore,
				After:     closeStore,
				Action:    importFilesAction(".csv"),
			},
			{
				Name:      "xlsx",
				Usage:     "Import XLSX workbooks, one sheet per table",
				ArgsUsage: "FILE...",
				Flags:     storeFlags(),
				Before:    openStore,
				After:     closeStore,
				Action:    importFilesAction(".xlsx"),
			},
			{
				Name:  "dir",
				Usage: "Import every CSV and XLSX file in a directory",
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing import files",
						Value:   "./data/seeds",
						EnvVars: []string{"SEED_DATA_DIR"},
					},
				),
				Before: openStore,
				After:  closeStore,
				Action: importDir,
			},
			{
				Name:   "drive",
				Usage:  "Download import files from a Google Drive folder and import them",
				Flags:  append(storeFlags(), driveFlags()...),
				Before: openStore,
				After:  closeStore,
				Action: importFromDrive,
			},
			{
				Name:   "bucket",
				Usage:  "Download import files from S3-compatible storage and import them",
				Flags:  append(storeFlags(), bucketFlags()...),
				Before: openStore,
				After:  closeStore,
				Action: importFromBucket,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}
