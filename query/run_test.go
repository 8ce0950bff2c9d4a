package query

import (
	"path/filepath"
	"testing"

	"github.com/wilSecord/mtg-organizer/card"
	"github.com/wilSecord/mtg-organizer/carddb"
	"github.com/wilSecord/mtg-organizer/internal/index"
)

func testCardRef(set string, n uint64) card.CardRef {
	return card.CardRef{Set: set, CollectorNumber: card.NumericCollectorNumber(n)}
}

func openTestDB(t *testing.T) *carddb.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.cards")
	db, err := carddb.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustInsert(t *testing.T, db *carddb.DB, ref card.CardRef, c card.Card) {
	t.Helper()
	if err := db.Insert(ref, c); err != nil {
		t.Fatalf("Insert(%+v) failed: %v", ref, err)
	}
}

func TestRunColorQueryFiltersByResidualTerm(t *testing.T) {
	db := openTestDB(t)

	goblin := card.Card{
		Name: "Fog Goblin",
		ManaCost: card.ManaCost{Symbols: []card.ManaSymbol{
			card.GenericNumber(2),
			card.ConventionalColoredSymbol(false, false, card.ColorRed, nil),
		}},
		ManaValueTimes4: 12,
		Color:           index.ColorCombination{Red: true},
		ColorID:         index.ColorCombination{Red: true},
		Types:           []string{"Creature"},
		Subtypes:        []string{"Goblin"},
		Rarity:          card.RarityCommon,
		OracleText:      "Whenever this creature attacks, it deals 1 damage to any target.",
		Power:           card.FixedNumber(3),
		Toughness:       card.FixedNumber(3),
	}
	elf := card.Card{
		Name:            "Fog Elf",
		ManaValueTimes4: 4,
		Color:           index.ColorCombination{Green: true},
		ColorID:         index.ColorCombination{Green: true},
		Types:           []string{"Creature"},
		Subtypes:        []string{"Elf"},
		Rarity:          card.RarityCommon,
		OracleText:      "Reach.",
		Power:           card.FixedNumber(1),
		Toughness:       card.FixedNumber(1),
	}

	mustInsert(t, db, testCardRef("FOG", 1), goblin)
	mustInsert(t, db, testCardRef("FOG", 2), elf)

	dq, _, err := Compile("c:red t:goblin")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	result := dq.Run(db)

	var names []string
	for c := range result.All() {
		names = append(names, c.Name)
	}
	if err := result.Err(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(names) != 1 || names[0] != "Fog Goblin" {
		t.Fatalf("got %v, want [\"Fog Goblin\"]", names)
	}
}

func TestRunEmptyIndexYieldsNothing(t *testing.T) {
	db := openTestDB(t)
	mustInsert(t, db, testCardRef("FOG", 1), card.Card{
		Name:   "Fog Goblin",
		Rarity: card.RarityCommon,
	})

	sink := &CollectingSink{}
	dq, _, fastPath := BuildSearchQuery(`!"Fog Goblin" !"Something Else"`, sink)
	if fastPath {
		t.Fatal("expected a structured compile, not the fast path")
	}
	result := dq.Run(db)

	count := 0
	for range result.All() {
		count++
	}
	if count != 0 {
		t.Fatalf("got %d cards from an Empty-index query, want 0", count)
	}
}

func TestRunNoIndexScansAllCards(t *testing.T) {
	db := openTestDB(t)
	mustInsert(t, db, testCardRef("FOG", 1), card.Card{
		Name:       "Fog Goblin",
		Rarity:     card.RarityCommon,
		OracleText: "Haste.",
	})
	mustInsert(t, db, testCardRef("FOG", 2), card.Card{
		Name:       "Fog Elf",
		Rarity:     card.RarityCommon,
		OracleText: "Reach.",
	})

	dq, _, err := Compile("o:haste")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if dq.Index != nil {
		t.Fatalf("o: has no index to drive, expected nil, got %+v", dq.Index)
	}
	result := dq.Run(db)

	var names []string
	for c := range result.All() {
		names = append(names, c.Name)
	}
	if len(names) != 1 || names[0] != "Fog Goblin" {
		t.Fatalf("got %v, want [\"Fog Goblin\"]", names)
	}
}
