package carddb

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/wilSecord/mtg-organizer/card"
	"github.com/wilSecord/mtg-organizer/internal/index"
)

func testCardRef(set string, n uint64) card.CardRef {
	return card.CardRef{Set: set, CollectorNumber: card.NumericCollectorNumber(n)}
}

func testCard(name string, rarity card.Rarity) card.Card {
	return card.Card{
		Name: name,
		ManaCost: card.ManaCost{Symbols: []card.ManaSymbol{
			card.GenericNumber(2),
			card.ConventionalColoredSymbol(false, false, card.ColorRed, nil),
		}},
		ManaValueTimes4: 12,
		Color:           index.ColorCombination{Red: true},
		ColorID:         index.ColorCombination{Red: true},
		Types:           []string{"Creature"},
		Subtypes:        []string{"Goblin"},
		SetsReleased:    []string{"FOG"},
		Rarity:          rarity,
		OracleText:      "Whenever this creature attacks, it deals 1 damage to any target.",
		Power:           card.FixedNumber(3),
		Toughness:       card.FixedNumber(3),
		Loyalty:         card.FixedNumber(0),
		Defense:         0,
	}
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.cards")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenFreshCreatesLayout(t *testing.T) {
	db := openTestDB(t)
	if db.primary == nil || db.color == nil || db.trigram == nil || db.raritySupertype == nil {
		t.Fatal("Open did not attach every tree")
	}
}

func TestInsertAndGetCard(t *testing.T) {
	db := openTestDB(t)
	ref := testCardRef("FOG", 1)
	c := testCard("Fog Goblin", card.RarityCommon)

	if err := db.Insert(ref, c); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetCard(ref)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != c.Name {
		t.Fatalf("got name %q, want %q", got.Name, c.Name)
	}
}

func TestGetCardNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetCard(testCardRef("NOPE", 1))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestReopenAttachesSameData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.cards")
	ref := testCardRef("FOG", 1)
	c := testCard("Fog Goblin", card.RarityCommon)

	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Insert(ref, c); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	db2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db2.Close()

	got, err := db2.GetCard(ref)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != c.Name {
		t.Fatalf("got name %q after reopen, want %q", got.Name, c.Name)
	}
}

func TestQueryColorFindsInsertedCard(t *testing.T) {
	db := openTestDB(t)
	ref := testCardRef("FOG", 1)
	c := testCard("Fog Goblin", card.RarityCommon)
	if err := db.Insert(ref, c); err != nil {
		t.Fatal(err)
	}

	found := false
	it := db.QueryColor(index.AnyColor)
	for got := range it.All() {
		if got.Name == c.Name {
			found = true
		}
	}
	if err := it.Err(); err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("QueryColor(AnyColor) did not return the inserted card")
	}
}

func TestQueryTypeCaseInsensitivePrefix(t *testing.T) {
	db := openTestDB(t)
	ref := testCardRef("FOG", 1)
	c := testCard("Fog Goblin", card.RarityCommon)
	if err := db.Insert(ref, c); err != nil {
		t.Fatal(err)
	}

	found := false
	for got := range db.QueryType("creat").All() {
		if got.Name == c.Name {
			found = true
		}
	}
	if !found {
		t.Fatal("QueryType(\"creat\") did not find a Creature-typed card")
	}
}

func TestQueryRaritySupertype(t *testing.T) {
	db := openTestDB(t)
	ref := testCardRef("FOG", 1)
	c := testCard("Fog Goblin", card.RarityCommon)
	if err := db.Insert(ref, c); err != nil {
		t.Fatal(err)
	}

	found := false
	for got := range db.QueryRaritySupertype(index.AnyRaritySupertype).All() {
		if got.Name == c.Name {
			found = true
		}
	}
	if !found {
		t.Fatal("QueryRaritySupertype(AnyRaritySupertype) did not find the inserted card")
	}
}

func TestQueryOracleTrigrams(t *testing.T) {
	db := openTestDB(t)
	ref := testCardRef("FOG", 1)
	c := testCard("Fog Goblin", card.RarityCommon)
	if err := db.Insert(ref, c); err != nil {
		t.Fatal(err)
	}

	hashes := c.DeriveTrigramHashes()
	if len(hashes) == 0 {
		t.Fatal("sample card's oracle text produced no trigrams")
	}

	found := false
	for got := range db.QueryOracleTrigrams(hashes[:1]).All() {
		if got.Name == c.Name {
			found = true
		}
	}
	if !found {
		t.Fatal("QueryOracleTrigrams did not find the inserted card by its own trigram hash")
	}
}

func TestAllCardsIteratesEverything(t *testing.T) {
	db := openTestDB(t)
	names := []string{"Fog Goblin", "Mist Elemental", "Cloud Serpent"}
	for i, name := range names {
		ref := testCardRef("FOG", uint64(i+1))
		c := testCard(name, card.RarityCommon)
		if err := db.Insert(ref, c); err != nil {
			t.Fatal(err)
		}
	}

	seen := map[string]bool{}
	it := db.AllCards()
	for c := range it.All() {
		seen[c.Name] = true
	}
	if err := it.Err(); err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if !seen[name] {
			t.Fatalf("AllCards missed %q", name)
		}
	}
}

func TestUpdateCallbackCanInsert(t *testing.T) {
	db := openTestDB(t)
	err := db.Update(func(db *DB) error {
		return db.Insert(testCardRef("FOG", 1), testCard("Fog Goblin", card.RarityCommon))
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetCard(testCardRef("FOG", 1)); err != nil {
		t.Fatal(err)
	}
}
