package ingest

import (
	"testing"

	"github.com/wilSecord/mtg-organizer/card"
)

func TestParseManaCost(t *testing.T) {
	got, err := ParseManaCost("{W}{W}{B}{3}")
	if err != nil {
		t.Fatalf("ParseManaCost: %v", err)
	}
	want := []card.ManaSymbol{
		card.ConventionalColoredSymbol(false, false, card.ColorWhite, nil),
		card.ConventionalColoredSymbol(false, false, card.ColorWhite, nil),
		card.ConventionalColoredSymbol(false, false, card.ColorBlack, nil),
		card.GenericNumber(3),
	}
	if len(got.Symbols) != len(want) {
		t.Fatalf("got %d symbols, want %d", len(got.Symbols), len(want))
	}
	for i := range want {
		if got.Symbols[i] != want[i] {
			t.Errorf("symbol %d: got %+v, want %+v", i, got.Symbols[i], want[i])
		}
	}
}

func TestParseManaCostHybridAndPhyrexian(t *testing.T) {
	cases := map[string]card.ManaSymbol{
		"{X}":     card.Variable(card.ManaVariableX),
		"{S}":     card.Snow(),
		"{W/P}":   card.ConventionalColoredSymbol(true, false, card.ColorWhite, nil),
		"{2/U}":   card.ConventionalColoredSymbol(false, true, card.ColorBlue, nil),
		"{R/G}":   card.ConventionalColoredSymbol(false, false, card.ColorRed, ptr(card.ColorGreen)),
	}
	for src, want := range cases {
		got, err := ParseManaCost(src)
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		if len(got.Symbols) != 1 || got.Symbols[0] != want {
			t.Errorf("%s: got %+v, want %+v", src, got.Symbols, want)
		}
	}
}

func TestParseManaCostUnterminated(t *testing.T) {
	if _, err := ParseManaCost("{W"); err == nil {
		t.Fatal("expected an error for an unterminated mana symbol")
	}
}

func TestParseColorCombination(t *testing.T) {
	got := parseColorCombination("WUBRG")
	if !got.White || !got.Blue || !got.Black || !got.Red || !got.Green || got.Colorless {
		t.Fatalf("got %+v", got)
	}
}

func TestParseCardRoundTrip(t *testing.T) {
	rec := Record{
		Set:             "ABC",
		CollectorNumber: []byte(`"42"`),
		Name:            "Test Card",
		ManaCost:        "{2}{U}",
		ManaValue:       3,
		Color:           "U",
		ColorID:         "U",
		SuperTypes:      "Legendary",
		Types:           "Creature, Wizard",
		Subtypes:        "Human, Wizard",
		SetsReleased:    "ABC, DEF",
		Rarity:          "rare",
		OracleText:      "Draw a card.",
		Power:           []byte(`"*"`),
		Toughness:       []byte(`3`),
		Loyalty:         nil,
		Defense:         0,
		GameChanger:     "true",
	}

	ref, c, err := ParseCard(rec)
	if err != nil {
		t.Fatalf("ParseCard: %v", err)
	}
	if ref.Set != "ABC" {
		t.Errorf("ref.Set = %q, want ABC", ref.Set)
	}
	if c.Name != "Test Card" {
		t.Errorf("c.Name = %q", c.Name)
	}
	if !c.Power.IsDynamic() {
		t.Error("expected dynamic power from \"*\"")
	}
	if v, ok := c.Toughness.Value(); !ok || v != 3 {
		t.Errorf("toughness = %v, %v", v, ok)
	}
	if len(c.SuperTypes) != 1 || c.SuperTypes[0] != card.SupertypeLegendary {
		t.Errorf("super_types = %v", c.SuperTypes)
	}
	if !c.GameChanger {
		t.Error("expected game_changer = true")
	}
	if c.ManaValueTimes4 != 12 {
		t.Errorf("mana_value_times_4 = %d, want 12", c.ManaValueTimes4)
	}
}

func TestParseCardRejectsUnknownRarity(t *testing.T) {
	rec := Record{Set: "ABC", Rarity: "bogus", Power: []byte(`0`), Toughness: []byte(`0`), Loyalty: []byte(`0`)}
	if _, _, err := ParseCard(rec); err == nil {
		t.Fatal("expected an error for an unrecognized rarity")
	}
}

func ptr(c card.Color) *card.Color { return &c }
