// Command update_card_data fetches the MTGJSON AllSetFiles archive, extracts
// it, and distills each set's card/token names into a set-code -> entries
// map written as fullsets.json (spec.md §6's CLI surface table). Grounded on
// src/bin/update_card_data.rs: download-if-missing, extract-if-missing, walk
// every per-set JSON file, merge token names into their set's entry list.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/wilSecord/mtg-organizer/internal/appdir"
)

const (
	mtgjsonURL  = "https://mtgjson.com/api/v5/AllSetFiles.tar.xz"
	archiveName = "AllSetFiles.tar.xz"
	extractDir  = "AllSetFiles"
	outputName  = "fullsets.json"
)

// setEntry is one {name, number} pair inside a set's card/token list.
type setEntry [2]string

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	app := &cli.App{
		Name:      "update_card_data",
		Usage:     "download MTGJSON set data and distill it into fullsets.json",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data-dir", Usage: "working directory for the archive, extracted sets and fullsets.json (default: appdir.DataDir())"},
		},
		Action: func(c *cli.Context) error {
			return run(logger, c)
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("update_card_data failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, c *cli.Context) error {
	dataDir := c.String("data-dir")
	if dataDir == "" {
		dir, err := appdir.DataDir()
		if err != nil {
			return fmt.Errorf("resolving data dir: %w", err)
		}
		dataDir = dir
	}

	archivePath := filepath.Join(dataDir, archiveName)
	if _, err := os.Stat(archivePath); os.IsNotExist(err) {
		logger.Info("downloading set archive", "url", mtgjsonURL, "to", archivePath)
		if err := runShell("curl", "-o", archivePath, mtgjsonURL); err != nil {
			return fmt.Errorf("downloading %s: %w", mtgjsonURL, err)
		}
	} else if err != nil {
		return err
	}

	setsDir := filepath.Join(dataDir, extractDir)
	if _, err := os.Stat(setsDir); os.IsNotExist(err) {
		logger.Info("extracting set archive", "archive", archivePath)
		if err := runShell("tar", "--xz", "-xf", archivePath, "-C", dataDir); err != nil {
			return fmt.Errorf("extracting %s: %w", archivePath, err)
		}
	} else if err != nil {
		return err
	}

	files, err := os.ReadDir(setsDir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", setsDir, err)
	}

	results := make([]map[string][]setEntry, 0, len(files))
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		logger.Info("processing set", "file", f.Name())
		set, err := processSetFile(filepath.Join(setsDir, f.Name()))
		if err != nil {
			return fmt.Errorf("processing %s: %w", f.Name(), err)
		}
		results = append(results, set)
	}

	outPath := filepath.Join(dataDir, outputName)
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	logger.Info("update complete", "sets", len(results), "output", outPath)
	return nil
}

// setFileData is the slice of an MTGJSON per-set file this package actually
// reads: code, card/token names and collector numbers, and the token set's
// own code for the merge-or-separate decision below.
type setFileData struct {
	Data struct {
		Code         string `json:"code"`
		TokenSetCode string `json:"tokenSetCode"`
		Cards        []struct {
			Name   string `json:"name"`
			Number string `json:"number"`
		} `json:"cards"`
		Tokens []struct {
			Name   string `json:"name"`
			Number string `json:"number"`
		} `json:"tokens"`
	} `json:"data"`
}

// processSetFile mirrors update_card_data.rs's per-file body: build the
// set's own card-name entries, then either fold its tokens into that same
// entry (when tokenSetCode equals the set's own code, e.g. most sets) or
// file them under a separate key (e.g. a set whose tokens ship under a
// distinct token-set code).
func processSetFile(path string) (map[string][]setEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var data setFileData
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return nil, err
	}
	if data.Data.Code == "" {
		return nil, fmt.Errorf("set file has no data.code")
	}

	sets := make(map[string][]setEntry)
	entries := make([]setEntry, 0, len(data.Data.Cards))
	for _, c := range data.Data.Cards {
		entries = append(entries, setEntry{c.Name, c.Number})
	}
	sets[data.Data.Code] = entries

	if data.Data.TokenSetCode != "" {
		tokenEntries := make([]setEntry, 0, len(data.Data.Tokens))
		for _, t := range data.Data.Tokens {
			tokenEntries = append(tokenEntries, setEntry{t.Name, t.Number})
		}
		if data.Data.TokenSetCode == data.Data.Code {
			sets[data.Data.Code] = append(sets[data.Data.Code], tokenEntries...)
		} else {
			sets[data.Data.TokenSetCode] = tokenEntries
		}
	}

	return sets, nil
}

func runShell(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
