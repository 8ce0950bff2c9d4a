// Command test_query runs a fixed battery of benchmark queries against an
// already-built card database file, one sweep per secondary index
// (spec.md §6's CLI surface table), and reports how many results and how
// much wall time each sweep took. It also replays the primary tree through
// internal/pagestore/compat's bbolt mirror as an independent cross-check
// that a full scan surfaces the same key set twice in a row, the same role
// gdbx's own test suite gives bbolt/mdbx-go against its own format.
//
// Grounded on src/bin/test_query.rs: TESTS iterations of a base-3
// enumeration over ColorQuery's six don't-care/true/false axes.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/wilSecord/mtg-organizer/card"
	"github.com/wilSecord/mtg-organizer/carddb"
	"github.com/wilSecord/mtg-organizer/internal/index"
	"github.com/wilSecord/mtg-organizer/internal/pagestore/compat"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	app := &cli.App{
		Name:      "test_query",
		Usage:     "run built-in benchmark queries over every index of a card database",
		ArgsUsage: "<db_file>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "iterations", Value: 1000, Usage: "number of color/color-id combinations to sweep"},
			&cli.BoolFlag{Name: "skip-mirror", Usage: "skip the bbolt cross-check pass"},
		},
		Action: func(c *cli.Context) error {
			return run(logger, c)
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("test_query failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: test_query <db_file>", 1)
	}
	dbPath := c.Args().Get(0)

	db, err := carddb.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	defer db.Close()

	iterations := c.Int("iterations")
	benchColor(db, "color", db.QueryColor, iterations)
	benchColor(db, "color_id", db.QueryColorID, iterations)
	benchManaCost(db)
	benchType(db)
	benchStats(db)
	benchRaritySupertype(db)
	benchTrigram(db)

	if !c.Bool("skip-mirror") {
		if err := crossCheck(logger, db); err != nil {
			return fmt.Errorf("bbolt cross-check: %w", err)
		}
	}
	return nil
}

type colorQueryFn func(index.ColorQuery) *carddb.CardIter

func benchColor(db *carddb.DB, label string, query colorQueryFn, iterations int) {
	start := time.Now()
	total := 0
	for i := 0; i < iterations; i++ {
		q := colorCombinationMaybe(i)
		for range query(q).All() {
			total++
		}
	}
	report(label, iterations, total, time.Since(start))
}

// colorCombinationMaybe reproduces make_color_combination_maybe: a base-3
// enumeration over six axes (false, true, don't-care) driven purely by the
// iteration index, so the sweep is deterministic and repeatable.
func colorCombinationMaybe(i int) index.ColorQuery {
	value := i % 729 // 3^6
	axes := make([]*bool, 6)
	for a := 0; a < 6; a++ {
		axes[a] = maybeBool(value % 3)
		value /= 3
	}
	return index.ColorQuery{White: axes[0], Blue: axes[1], Black: axes[2], Red: axes[3], Green: axes[4], Colorless: axes[5]}
}

func maybeBool(n int) *bool {
	switch n {
	case 0:
		b := false
		return &b
	case 1:
		b := true
		return &b
	default:
		return nil
	}
}

func benchManaCost(db *carddb.DB) {
	const passes = 20
	start := time.Now()
	total := 0
	for i := 0; i < passes; i++ {
		for range db.QueryMana(index.AnyManaCost).All() {
			total++
		}
	}
	report("mana_cost (universe)", passes, total, time.Since(start))
}

func benchType(db *carddb.DB) {
	prefixes := []string{"creature", "instant", "sorcery", "land", "artifact", "enchantment", "planeswalker"}
	start := time.Now()
	total := 0
	for _, p := range prefixes {
		for range db.QueryType(p).All() {
			total++
		}
	}
	report("type", len(prefixes), total, time.Since(start))
}

func benchStats(db *carddb.DB) {
	start := time.Now()
	total := 0
	for _, q := range []index.CardStatsRegion{
		index.AnyCardStats,
		index.ManaValueQuartersRange(0, 8),
		index.ManaValueQuartersRange(8, 40),
	} {
		for range db.QueryStats(q).All() {
			total++
		}
	}
	report("stats", 3, total, time.Since(start))
}

func benchRaritySupertype(db *carddb.DB) {
	start := time.Now()
	total := 0
	for r := 0; r < 5; r++ {
		q := index.RarityRange(r, r)
		for range db.QueryRaritySupertype(q).All() {
			total++
		}
	}
	report("rarity_supertype", 5, total, time.Since(start))
}

func benchTrigram(db *carddb.DB) {
	needles := []string{"enters tapped", "draw a card", "destroy target"}
	start := time.Now()
	total := 0
	for _, needle := range needles {
		var hashes []uint32
		for _, g := range index.Trigrams(needle) {
			hashes = append(hashes, index.HashTrigram(g))
		}
		for range db.QueryOracleTrigrams(hashes).All() {
			total++
		}
	}
	report("oracle_trigram (accelerator only)", len(needles), total, time.Since(start))
}

func report(label string, iterations, total int, dur time.Duration) {
	ms := dur.Seconds() * 1000
	avgResults := float64(total) / float64(iterations)
	avgMs := ms / float64(iterations)
	fmt.Printf("%-32s ran %d iterations in %.3fms, found %d cumulative results (avg %.2f results, %.4fms/search)\n",
		label, iterations, ms, total, avgResults, avgMs)
}

func crossCheck(logger *slog.Logger, db *carddb.DB) error {
	tmp, err := os.CreateTemp("", "test_query_mirror_*.bbolt")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	mirror, err := compat.Open(tmpPath)
	if err != nil {
		return err
	}
	defer mirror.Close()

	var treeKeys [][]byte
	for pk, c := range db.AllCardEntries() {
		keyBytes := primaryKeyBytes(pk)
		if err := mirror.Put(keyBytes, []byte(c.Name)); err != nil {
			return err
		}
		treeKeys = append(treeKeys, keyBytes)
	}

	onlyInMirror, onlyInTree, err := mirror.Diff(treeKeys)
	if err != nil {
		return err
	}
	if len(onlyInMirror) != 0 || len(onlyInTree) != 0 {
		logger.Warn("bbolt mirror diverged from a full tree scan", "only_in_mirror", len(onlyInMirror), "only_in_tree", len(onlyInTree))
		return nil
	}
	n, err := mirror.Count()
	if err != nil {
		return err
	}
	logger.Info("bbolt cross-check passed", "cards", n)
	return nil
}

func primaryKeyBytes(pk card.PrimaryKey) []byte {
	b := make([]byte, 16)
	for i := 0; i < 8; i++ {
		b[i] = byte(pk.Hi >> (8 * (7 - i)))
		b[8+i] = byte(pk.Lo >> (8 * (7 - i)))
	}
	return b
}
