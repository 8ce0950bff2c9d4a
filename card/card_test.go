package card

import (
	"bytes"
	"testing"

	"github.com/wilSecord/mtg-organizer/internal/index"
)

func colorPair(color Color) ManaSymbol {
	return ConventionalColoredSymbol(false, false, color, nil)
}

func TestManaSymbolRoundTrip(t *testing.T) {
	blue := ColorBlue
	cases := []ManaSymbol{
		Snow(),
		Variable(ManaVariableX),
		Variable(ManaVariableY),
		Variable(ManaVariableZ),
		LandDrop(),
		Legendary(),
		HalfWhite(),
		OneMillionGenericMana(),
		GenericNumber(0),
		GenericNumber(12),
		GenericNumber(13),
		GenericNumber(1000),
		colorPair(ColorWhite),
		colorPair(ColorColorless),
		ConventionalColoredSymbol(true, false, ColorRed, nil),
		ConventionalColoredSymbol(false, true, ColorGreen, nil),
		ConventionalColoredSymbol(true, true, ColorBlack, nil),
		ConventionalColoredSymbol(true, true, ColorBlack, &blue),
	}
	for i, sym := range cases {
		var buf bytes.Buffer
		if err := sym.encodeByte(&buf); err != nil {
			t.Fatalf("case %d: encode: %v", i, err)
		}
		got, err := decodeManaSymbol(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("case %d: decode: %v", i, err)
		}
		if got != sym {
			t.Fatalf("case %d: got %+v want %+v", i, got, sym)
		}
	}
}

// TestManaSymbolEncodingAvoidsOriginalCollision exercises the exact case the
// original's mana_symbol_to_byte mishandles: a ConventionalColored symbol
// with both phyrexian and splitTwoGeneric set lands on a byte whose top two
// bits are both 1, which the original also uses to mark low GenericNumber
// values. This format keeps the two disjoint (see manasymbol.go).
func TestManaSymbolEncodingAvoidsOriginalCollision(t *testing.T) {
	colored := ConventionalColoredSymbol(true, true, ColorWhite, nil)
	var coloredBuf bytes.Buffer
	if err := colored.encodeByte(&coloredBuf); err != nil {
		t.Fatal(err)
	}

	generic := GenericNumber(0)
	var genericBuf bytes.Buffer
	if err := generic.encodeByte(&genericBuf); err != nil {
		t.Fatal(err)
	}

	if coloredBuf.Bytes()[0] == genericBuf.Bytes()[0] {
		t.Fatalf("phyrexian+split colored symbol collided with GenericNumber(0): both encode to %#x", coloredBuf.Bytes()[0])
	}

	gotColored, err := decodeManaSymbol(bytes.NewReader(coloredBuf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if gotColored != colored {
		t.Fatalf("got %+v want %+v", gotColored, colored)
	}

	gotGeneric, err := decodeManaSymbol(bytes.NewReader(genericBuf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if gotGeneric != generic {
		t.Fatalf("got %+v want %+v", gotGeneric, generic)
	}
}

func TestManaCostRoundTrip(t *testing.T) {
	blue := ColorBlue
	mc := ManaCost{Symbols: []ManaSymbol{
		GenericNumber(3),
		colorPair(ColorWhite),
		colorPair(ColorWhite),
		ConventionalColoredSymbol(true, false, ColorBlack, nil),
		Variable(ManaVariableX),
		ConventionalColoredSymbol(false, true, ColorGreen, &blue),
	}}
	var buf bytes.Buffer
	if err := mc.write(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := readManaCost(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Symbols) != len(mc.Symbols) {
		t.Fatalf("got %d symbols want %d", len(got.Symbols), len(mc.Symbols))
	}
	for i := range mc.Symbols {
		if got.Symbols[i] != mc.Symbols[i] {
			t.Fatalf("symbol %d: got %+v want %+v", i, got.Symbols[i], mc.Symbols[i])
		}
	}
}

func TestDeriveManaCostCount(t *testing.T) {
	blue := ColorBlue
	mc := ManaCost{Symbols: []ManaSymbol{
		GenericNumber(2),
		colorPair(ColorWhite),
		colorPair(ColorWhite),
		colorPair(ColorBlue),
		ConventionalColoredSymbol(true, false, ColorBlack, nil),
		ConventionalColoredSymbol(false, true, ColorGreen, nil),
		ConventionalColoredSymbol(false, false, ColorRed, &blue),
		Variable(ManaVariableX),
		Snow(),
		OneMillionGenericMana(),
	}}
	got := DeriveManaCostCount(mc)
	want := index.ManaCostCount{
		White: 2, Blue: 1, Black: 1, Red: 1, Green: 1,
		Generic:             1_000_002,
		AnyPhyrexian:        1,
		AnySplitGeneric:     1,
		AnyColorSplit:       1,
		VariablesUsed:       1,
		OddEdgeCaseSymbols:  1,
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestCardDynamicNumberRoundTrip(t *testing.T) {
	cases := []CardDynamicNumber{DynamicNumber, FixedNumber(0), FixedNumber(1), FixedNumber(99)}
	for _, n := range cases {
		var buf bytes.Buffer
		if err := n.write(&buf); err != nil {
			t.Fatal(err)
		}
		got, err := readCardDynamicNumber(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatal(err)
		}
		if got != n {
			t.Fatalf("got %+v want %+v", got, n)
		}
	}
}

func TestParseCardDynamicNumberDynamicLiterals(t *testing.T) {
	for _, lit := range []string{"*", "?", "X", "1+*", "1.5", "-1"} {
		got, err := ParseCardDynamicNumber(lit)
		if err != nil {
			t.Fatalf("%q: %v", lit, err)
		}
		if !got.IsDynamic() {
			t.Fatalf("%q should parse as dynamic", lit)
		}
	}
	got, err := ParseCardDynamicNumber("7")
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := got.Value(); !ok || v != 7 {
		t.Fatalf("got %+v, want fixed 7", got)
	}
}

func TestSupertypeListRoundTrip(t *testing.T) {
	cases := [][]Supertype{
		nil,
		{SupertypeLegendary},
		{SupertypeLegendary, SupertypeSnow},
		{SupertypeBasic, SupertypeLegendary, SupertypeSnow},
		{SupertypeBasic, SupertypeLegendary, SupertypeSnow, SupertypeWorld},
	}
	for i, types := range cases {
		var buf bytes.Buffer
		if err := writeSupertypeList(&buf, types); err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		got, err := readSupertypeList(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if len(got) != len(types) {
			t.Fatalf("case %d: got %v want %v", i, got, types)
		}
		for j := range types {
			if got[j] != types[j] {
				t.Fatalf("case %d: got %v want %v", i, got, types)
			}
		}
	}
}

func sampleCard() Card {
	blue := ColorBlue
	return Card{
		Name: "Fog Giant",
		ManaCost: ManaCost{Symbols: []ManaSymbol{
			GenericNumber(2),
			colorPair(ColorGreen),
			ConventionalColoredSymbol(true, false, ColorBlue, &blue),
		}},
		ManaValueTimes4: 12,
		Color:           index.ColorCombination{Blue: true, Green: true},
		ColorID:         index.ColorCombination{Blue: true, Green: true},
		SuperTypes:      []Supertype{SupertypeLegendary, SupertypeSnow},
		Types:           []string{"Creature"},
		Subtypes:        []string{"Giant", "Druid"},
		SetsReleased:    []string{"FOG", "FOG2"},
		Rarity:          RarityMythic,
		OracleText:      "When Fog Giant enters the battlefield, fog.",
		Power:           FixedNumber(4),
		Toughness:       FixedNumber(5),
		Loyalty:         DynamicNumber,
		Defense:         0,
		GameChanger:     true,
	}
}

func TestCardRoundTrip(t *testing.T) {
	c := sampleCard()
	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := ReadCard(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}

	if got.Name != c.Name || got.Rarity != c.Rarity || got.GameChanger != c.GameChanger {
		t.Fatalf("got %+v want %+v", got, c)
	}
	if got.OracleText != c.OracleText {
		t.Fatalf("oracle text mismatch: got %q want %q", got.OracleText, c.OracleText)
	}
	if got.ManaValueTimes4 != c.ManaValueTimes4 {
		t.Fatalf("mana value mismatch")
	}
	if len(got.ManaCost.Symbols) != len(c.ManaCost.Symbols) {
		t.Fatalf("mana cost length mismatch")
	}
	if got.Color != c.Color || got.ColorID != c.ColorID {
		t.Fatalf("color mismatch: got %+v/%+v want %+v/%+v", got.Color, got.ColorID, c.Color, c.ColorID)
	}
	if len(got.SuperTypes) != len(c.SuperTypes) {
		t.Fatalf("supertype mismatch: got %v want %v", got.SuperTypes, c.SuperTypes)
	}
	if len(got.Types) != len(c.Types) || len(got.Subtypes) != len(c.Subtypes) || len(got.SetsReleased) != len(c.SetsReleased) {
		t.Fatalf("string vector mismatch: got %+v want %+v", got, c)
	}
	if got.Power != c.Power || got.Toughness != c.Toughness || got.Loyalty != c.Loyalty || got.Defense != c.Defense {
		t.Fatalf("stat mismatch: got %+v want %+v", got, c)
	}
}

func TestCardRoundTripEmptyFields(t *testing.T) {
	c := Card{
		Name:      "",
		Rarity:    RarityCommon,
		Power:     DynamicNumber,
		Toughness: DynamicNumber,
		Loyalty:   DynamicNumber,
	}
	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := ReadCard(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "" || got.Rarity != RarityCommon || len(got.SuperTypes) != 0 || len(got.Types) != 0 {
		t.Fatalf("got %+v, want zeroed card", got)
	}
}

func TestDeriveCardStats(t *testing.T) {
	c := sampleCard()
	stats := c.DeriveCardStats()
	if uint64(stats.Power) != c.Power.ReprUint64() || uint64(stats.Toughness) != c.Toughness.ReprUint64() {
		t.Fatalf("got %+v", stats)
	}
	if stats.Defense != c.Defense+1 {
		t.Fatalf("defense not shifted: got %d want %d", stats.Defense, c.Defense+1)
	}
	if stats.GameChanger != 1 {
		t.Fatalf("game changer flag not set")
	}
	if stats.ManaValueQuarters != c.ManaValueTimes4 {
		t.Fatalf("mana value quarters mismatch")
	}
}

func TestDeriveRaritySupertype(t *testing.T) {
	c := sampleCard()
	rs := c.DeriveRaritySupertype()
	if rs.Rarity != int(RarityMythic) {
		t.Fatalf("got rarity %d", rs.Rarity)
	}
	want := index.SupertypeLegendary | index.SupertypeSnow
	if rs.Supertypes != want {
		t.Fatalf("got mask %b want %b", rs.Supertypes, want)
	}
}

func TestDeriveTypeKeysIncludesSubtypes(t *testing.T) {
	c := sampleCard()
	keys := c.DeriveTypeKeys()
	if len(keys) != len(c.Types)+len(c.Subtypes) {
		t.Fatalf("got %d keys, want %d", len(keys), len(c.Types)+len(c.Subtypes))
	}
	wantCreature := index.StringPrefixFromString("creature")
	found := false
	for _, k := range keys {
		if k == wantCreature {
			found = true
		}
	}
	if !found {
		t.Fatal("lowercased \"Creature\" type not found among derived keys")
	}
}

func TestDeriveTrigramHashesDeduplicates(t *testing.T) {
	c := Card{OracleText: "fog fog fog"}
	hashes := c.DeriveTrigramHashes()
	seen := make(map[uint32]bool)
	for _, h := range hashes {
		if seen[h] {
			t.Fatalf("duplicate trigram hash %d", h)
		}
		seen[h] = true
	}
	if len(hashes) == 0 {
		t.Fatal("expected at least one trigram hash")
	}
}
