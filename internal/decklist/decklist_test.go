package decklist

import (
	"strings"
	"testing"

	"github.com/wilSecord/mtg-organizer/card"
)

func TestParseBasic(t *testing.T) {
	input := `4 Lightning Bolt
// a comment line

1 Sol Ring
2 Goblin Guide
`
	res, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(res.Entries) != 3 {
		t.Fatalf("got %d entries, want 3: %+v", len(res.Entries), res.Entries)
	}
	want := []Entry{
		{Count: 4, Name: "Lightning Bolt"},
		{Count: 1, Name: "Sol Ring"},
		{Count: 2, Name: "Goblin Guide"},
	}
	for i, e := range res.Entries {
		if e != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, e, want[i])
		}
	}
}

func TestParseSkipsMalformedLines(t *testing.T) {
	input := "4 Lightning Bolt\nnot a valid line\n0 Zero Copies\nx Bad Count\n2 Shock\n"
	res, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("got %d entries, want 2, entries=%+v errors=%v", len(res.Entries), res.Entries, res.Errors)
	}
	if res.LinesSkipped != 3 {
		t.Fatalf("got %d skipped lines, want 3", res.LinesSkipped)
	}
	if len(res.Errors) != 3 {
		t.Fatalf("got %d error messages, want 3", len(res.Errors))
	}
}

func TestParseMultiWordNameWithInternalSpacing(t *testing.T) {
	res, err := Parse(strings.NewReader("1 Urza, Lord High Artificer\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(res.Entries) != 1 || res.Entries[0].Name != "Urza, Lord High Artificer" {
		t.Fatalf("got %+v, want a single entry named 'Urza, Lord High Artificer'", res.Entries)
	}
}

func TestScoreCoverage(t *testing.T) {
	entries := []Entry{
		{Count: 4, Name: "Lightning Bolt"},
		{Count: 1, Name: "Sol Ring"},
		{Count: 2, Name: "Goblin Guide"},
	}
	matches := []card.Card{
		{Name: "lightning bolt"},
		{Name: "Goblin Guide"},
	}

	report := Score(entries, matches)
	if report.EntriesTotal != 3 {
		t.Fatalf("got EntriesTotal %d, want 3", report.EntriesTotal)
	}
	if report.EntriesMatched != 2 {
		t.Fatalf("got EntriesMatched %d, want 2", report.EntriesMatched)
	}
	if report.CopiesTotal != 7 {
		t.Fatalf("got CopiesTotal %d, want 7", report.CopiesTotal)
	}
	if report.CopiesMatched != 6 {
		t.Fatalf("got CopiesMatched %d, want 6 (4 bolts + 2 guides)", report.CopiesMatched)
	}
	if len(report.Unmatched) != 1 || report.Unmatched[0].Name != "Sol Ring" {
		t.Fatalf("got Unmatched %+v, want just Sol Ring", report.Unmatched)
	}
}
