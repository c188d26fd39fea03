package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/qota-finance/backend-go/internal/importer"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func importFilesAction(ext string) cli.ActionFunc {
	return func(c *cli.Context) error {
		paths := c.Args().Slice()
		if len(paths) == 0 {
			return fmt.Errorf("no %s files given", ext)
		}
		for _, p := range paths {
			if !strings.EqualFold(filepath.Ext(p), ext) {
				return fmt.Errorf("%s is not a %s file", p, ext)
			}
		}
		return runImport(c, paths)
	}
}

func importDir(c *cli.Context) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	results, err := newImporter(c, store).ImportDir(c.Context, c.String("data-dir"))
	report(results)
	return err
}

func runImport(c *cli.Context, paths []string) error {
	store, err := storeFrom(c)
	if err != nil {
		return err
	}
	results, err := newImporter(c, store).ImportFiles(c.Context, paths)
	report(results)
	return err
}

func report(results []importer.Result) {
	for _, res := range results {
		for _, skipped := range res.Skipped {
			log.Warn().Str("source", res.Source).Int("line", skipped.Line).Err(skipped.Err).Msg("row skipped")
		}
	}

	imported, skipped := 0, 0
	for _, res := range results {
		imported += res.Imported
		skipped += len(res.Skipped)
	}
	log.Info().Int("sources", len(results)).Int("imported", imported).Int("skipped", skipped).Msg("import completed")
}

// importable accepts workbooks and CSV files the importer can map to a table.
func importable(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return true
	case ".csv":
		_, ok := importer.KindFromName(name)
		return ok
	}
	return false
}
