package carddb

import (
	"iter"
	"strings"

	"github.com/wilSecord/mtg-organizer/card"
	"github.com/wilSecord/mtg-organizer/internal/index"
)

// CardIter is every query method's return type: a lazy, restartable
// sequence of resolved Cards, mirroring ktree's own EntryIter/ItemIter
// scan-then-Err idiom (iter.Seq has no room for an error return, so Err
// reports whatever the most recent full range hit).
type CardIter struct {
	keys func() iter.Seq[card.PrimaryKey]
	db   *DB
	err  error
}

// All returns the sequence. Ranging over it again re-runs the underlying
// secondary-index scan and the primary-key resolution from scratch.
func (it *CardIter) All() iter.Seq[card.Card] {
	return func(yield func(card.Card) bool) {
		it.err = nil
		for pk := range it.keys() {
			c, found, err := it.db.primary.GetReadRef(index.PointRegion(pk.ToIndexKey()))
			if err != nil {
				it.err = err
				return
			}
			if !found {
				// A secondary hit that hasn't resolved in the primary tree
				// yet (§5's primary-last insert ordering): skip, not error.
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Err reports any I/O error hit by the most recent full range over All.
func (it *CardIter) Err() error { return it.err }

func newCardIter(db *DB, keys func() iter.Seq[card.PrimaryKey]) *CardIter {
	return &CardIter{db: db, keys: keys}
}

// QueryColor looks up cards by their cast color (spec.md §4.5's
// query_color).
func (db *DB) QueryColor(q index.ColorQuery) *CardIter {
	return newCardIter(db, db.color.FindItemsInBox(q).All)
}

// QueryColorID looks up cards by color identity (query_color_id).
func (db *DB) QueryColorID(q index.ColorQuery) *CardIter {
	return newCardIter(db, db.colorID.FindItemsInBox(q).All)
}

// QueryMana looks up cards by mana cost shape (query_mana).
func (db *DB) QueryMana(q index.ManaCostRegion) *CardIter {
	return newCardIter(db, db.manaCost.FindItemsInBox(q).All)
}

// QueryType looks up cards whose type or subtype line starts with prefix,
// case-insensitively (query_type).
func (db *DB) QueryType(prefix string) *CardIter {
	region := index.PrefixRegion(strings.ToLower(prefix))
	return newCardIter(db, db.types.FindItemsInBox(region).All)
}

// QueryName looks up cards whose name starts with prefix, case-insensitively
// (query_name).
func (db *DB) QueryName(prefix string) *CardIter {
	region := index.PrefixRegion(strings.ToLower(prefix))
	return newCardIter(db, db.names.FindItemsInBox(region).All)
}

// QueryStats looks up cards by power/toughness/loyalty/defense/game-changer
// /mana-value-quarters (query_stats).
func (db *DB) QueryStats(q index.CardStatsRegion) *CardIter {
	return newCardIter(db, db.stats.FindItemsInBox(q).All)
}

// QueryRaritySupertype looks up cards by rarity and/or supertype bitmask —
// the supplemented index SPEC_FULL.md adds beyond spec.md's core six.
func (db *DB) QueryRaritySupertype(q index.RaritySupertypeRegion) *CardIter {
	return newCardIter(db, db.raritySupertype.FindItemsInBox(q).All)
}

// QueryOracleTrigrams narrows by a set of oracle-text trigram hashes, as a
// *candidate accelerator* only (SPEC_FULL.md's SUPPLEMENTED FEATURES #2):
// this never substitutes for the residual predicate's literal substring
// check, since a trigram hit only proves the 3-gram appears somewhere, not
// where.
func (db *DB) QueryOracleTrigrams(hashes []uint32) *CardIter {
	return newCardIter(db, func() iter.Seq[card.PrimaryKey] {
		return func(yield func(card.PrimaryKey) bool) {
			seen := make(map[card.PrimaryKey]bool)
			for _, h := range hashes {
				region := index.TrigramHashRegion(h)
				for pk := range db.trigram.FindItemsInBox(region).All() {
					if seen[pk] {
						continue
					}
					seen[pk] = true
					if !yield(pk) {
						return
					}
				}
			}
		}
	})
}

// AllCards iterates every stored card (all_cards). Unlike the other query
// methods it reads the primary tree directly — there is no secondary-index
// hop, so no resolution race to skip over.
func (db *DB) AllCards() *allCardsIter {
	return &allCardsIter{db: db}
}

// AllCardEntries iterates every stored (PrimaryKey, Card) pair. It exists
// for callers that need the raw primary key alongside the card — cmd/test_query's
// bbolt cross-check (through internal/pagestore/compat) being the only one today —
// rather than forcing them to re-derive a key from the CardRef they may no
// longer have on hand.
func (db *DB) AllCardEntries() iter.Seq2[card.PrimaryKey, card.Card] {
	return func(yield func(card.PrimaryKey, card.Card) bool) {
		for k, c := range db.primary.FindEntriesInBox(db.primary.Universe()).All() {
			if !yield(card.PrimaryKeyFromIndexKey(k), c) {
				return
			}
		}
	}
}

type allCardsIter struct {
	db  *DB
	err error
}

func (it *allCardsIter) All() iter.Seq[card.Card] {
	return func(yield func(card.Card) bool) {
		it.err = nil
		inner := it.db.primary.FindItemsInBox(it.db.primary.Universe())
		for c := range inner.All() {
			if !yield(c) {
				return
			}
		}
		it.err = inner.Err()
	}
}

func (it *allCardsIter) Err() error { return it.err }
