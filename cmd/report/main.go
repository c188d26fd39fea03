package main

import (
	"fmt"
	"os"

	"github.com/andresuchdata/qota-finance/backend-go/internal/bootstrap"
	"github.com/andresuchdata/qota-finance/backend-go/internal/config"
	"github.com/andresuchdata/qota-finance/backend-go/internal/finance"
	"github.com/andresuchdata/qota-finance/backend-go/internal/report"
	"github.com/andresuchdata/qota-finance/backend-go/internal/storage"
	"github.com/andresuchdata/qota-finance/backend-go/pkg/logger"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "report",
		Usage: "Export ledger aggregates",
		Commands: []*cli.Command{
			{
				Name:  "series",
				Usage: "Export the monthly revenue/expense series as CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Write to this file, - for stdout",
						Value:   "-",
					},
					&cli.BoolFlag{
						Name:  "upload",
						Usage: "Upload to the configured S3-compatible bucket instead of writing locally",
					},
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Object key prefix for uploads",
						Value: "reports",
					},
					&cli.StringFlag{
						Name:    "log-level",
						Value:   "info",
						EnvVars: []string{"LOG_LEVEL"},
					},
				},
				Action: exportSeries,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("report failed")
	}
}

func exportSeries(c *cli.Context) error {
	logger.SetLevel(c.String("log-level"))
	cfg := config.Load()

	store, err := bootstrap.OpenStore(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}
	defer store.Close()

	exporter := report.NewExporter(finance.NewEngine(store))

	if c.Bool("upload") {
		client, err := storage.NewS3Client(cfg.Storage)
		if err != nil {
			return err
		}
		key, err := exporter.Upload(c.Context, client, c.String("prefix"))
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, key)
		return nil
	}

	data, err := exporter.Render(c.Context)
	if err != nil {
		return err
	}

	out := c.String("out")
	if out == "-" {
		_, err = c.App.Writer.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	log.Info().Str("path", out).Int("bytes", len(data)).Msg("series report written")
	return nil
}
