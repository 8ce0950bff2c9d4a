// Package decklist parses the plain-text "<count> <name>" deck-list format
// and scores how much of a list a compiled query's results cover —
// SPEC_FULL.md's SUPPLEMENTED FEATURES item 3. The terminal UI that
// normally renders a decklist alongside search results is out of scope
// (spec.md §1's Non-goal); this package only covers parsing and scoring.
//
// Grounded on SimonWaldherr/tinySQL's internal/importer package for the
// line-oriented bufio.Scanner parse shape and its ImportResult's
// inserted/skipped/Errors accounting style.
package decklist

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wilSecord/mtg-organizer/card"
)

// Entry is one line of a parsed decklist: a positive copy count and the
// card name that followed it.
type Entry struct {
	Count int
	Name  string
}

// ParseResult is what Parse returns: every successfully parsed entry, plus
// enough bookkeeping to report malformed lines without aborting the whole
// list, mirroring ImportResult's inserted/skipped/Errors split.
type ParseResult struct {
	Entries     []Entry
	LinesParsed int
	LinesSkipped int
	Errors      []string
}

// Parse reads one "<count> <name>" entry per line from r. Blank lines and
// lines starting with "//" are ignored. A line that doesn't start with a
// positive integer followed by a space is recorded in Errors and skipped,
// rather than failing the whole parse — a single typo in a 60-card list
// shouldn't discard the other 59 entries.
func Parse(r io.Reader) (ParseResult, error) {
	var res ParseResult
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		count, name, ok := splitCountAndName(line)
		if !ok {
			res.LinesSkipped++
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: %q is not \"<count> <name>\"", lineNo, line))
			continue
		}

		res.Entries = append(res.Entries, Entry{Count: count, Name: name})
		res.LinesParsed++
	}
	if err := scanner.Err(); err != nil {
		return res, err
	}
	return res, nil
}

// splitCountAndName implements SPEC_FULL.md's "first space is the split
// point" rule: everything before the first space must parse as a positive
// integer, everything after is the name verbatim (so multi-word names with
// their own internal spacing survive untouched).
func splitCountAndName(line string) (count int, name string, ok bool) {
	i := strings.IndexByte(line, ' ')
	if i < 0 {
		return 0, "", false
	}
	n, err := strconv.Atoi(line[:i])
	if err != nil || n <= 0 {
		return 0, "", false
	}
	name = strings.TrimSpace(line[i+1:])
	if name == "" {
		return 0, "", false
	}
	return n, name, true
}

// CoverageReport is Score's result: how many of the decklist's distinct
// entries (and how many total copies) are accounted for by the matching
// card set.
type CoverageReport struct {
	EntriesTotal   int
	EntriesMatched int
	CopiesTotal    int
	CopiesMatched  int
	Unmatched      []Entry
}

// Score reports how much of entries is covered by matches: a query's
// result set, or any other source of cards to check names against. Matching
// is a case-insensitive exact name comparison — the fuzzy-name matcher
// itself is out of scope (spec.md §1's Non-goal; SPEC_FULL.md's
// SUPPLEMENTED FEATURES note 3), so a decklist entry whose name isn't an
// exact match to something in matches counts as unmatched even if a fuzzy
// matcher would have resolved it.
func Score(entries []Entry, matches []card.Card) CoverageReport {
	names := make(map[string]bool, len(matches))
	for _, c := range matches {
		names[strings.ToLower(c.Name)] = true
	}

	var report CoverageReport
	for _, e := range entries {
		report.EntriesTotal++
		report.CopiesTotal += e.Count
		if names[strings.ToLower(e.Name)] {
			report.EntriesMatched++
			report.CopiesMatched += e.Count
		} else {
			report.Unmatched = append(report.Unmatched, e)
		}
	}
	return report
}
