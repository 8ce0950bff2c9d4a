// Command build_card_db ingests a cards.json export into a fresh card
// database file (spec.md §6's CLI surface table). The real MTGJSON/Scryfall
// dump format is an out-of-scope external collaborator (spec.md §1); this
// binary reads the simplified per-card record internal/ingest documents,
// grounded on the original's own src/bin/build_card_db.rs sketch.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/wilSecord/mtg-organizer/carddb"
	"github.com/wilSecord/mtg-organizer/internal/ingest"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	app := &cli.App{
		Name:      "build_card_db",
		Usage:     "build a fresh card database file from a cards.json export",
		ArgsUsage: "<cards.json> <sets.json> <db_file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "condense",
				Usage: "run Condense on every tree once the bulk load finishes",
			},
		},
		Action: func(c *cli.Context) error {
			return run(logger, c)
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("build_card_db failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, c *cli.Context) error {
	if c.NArg() != 3 {
		return cli.Exit("usage: build_card_db <cards.json> <sets.json> <db_file>", 1)
	}
	cardsPath, setsPath, dbPath := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)

	// Per spec.md §6: delete the db file if present, then open fresh.
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing existing %s: %w", dbPath, err)
	}

	knownSets, err := loadSetNames(setsPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", setsPath, err)
	}
	logger.Info("loaded set metadata", "sets", len(knownSets))

	records, err := loadRecords(cardsPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", cardsPath, err)
	}
	logger.Info("loaded card records", "count", len(records))

	db, err := carddb.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	defer db.Close()

	var inserted, skipped int
	for i, rec := range records {
		ref, c, err := ingest.ParseCard(rec)
		if err != nil {
			skipped++
			logger.Warn("skipping malformed record", "index", i, "name", rec.Name, "err", err)
			continue
		}
		if ref.Set != "" {
			if _, ok := knownSets[ref.Set]; !ok {
				logger.Warn("card references an unlisted set", "set", ref.Set, "name", rec.Name)
			}
		}
		if err := db.Insert(ref, c); err != nil {
			skipped++
			logger.Warn("insert failed", "index", i, "name", rec.Name, "err", err)
			continue
		}
		inserted++
	}

	if c.Bool("condense") {
		logger.Info("condensing trees")
		if err := db.Condense(); err != nil {
			return fmt.Errorf("condense: %w", err)
		}
	}

	logger.Info("build complete", "inserted", inserted, "skipped", skipped)
	return nil
}

// loadRecords reads cards.json as a JSON array of ingest.Record.
func loadRecords(path string) ([]ingest.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []ingest.Record
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

// loadSetNames reads sets.json (the out-of-scope set-name metadata file,
// spec.md §1) only far enough to build a set-code -> display-name map used
// for a sanity-check warning; nothing else in this binary depends on its
// contents.
func loadSetNames(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	defer f.Close()

	var sets map[string]string
	if err := json.NewDecoder(f).Decode(&sets); err != nil {
		return nil, err
	}
	return sets, nil
}
