package carddb

import (
	"bytes"

	"github.com/wilSecord/mtg-organizer/internal/codec"
	"github.com/wilSecord/mtg-organizer/internal/pagestore"
)

// layoutPageID is always the first page ever allocated in a fresh file —
// every other page (primary tree root, then one root per secondary index)
// is allocated after it, in initFresh's fixed order (db.go).
const layoutPageID = pagestore.PageID(1)

// secondaryIndexOrder fixes the wire order spec.md §6 names for the
// layout page's first six secondary root ids: color, color_id, mana_cost,
// types, card_names, stats — part of the byte-for-byte wire contract.
// Indices 6 and 7 extend that contract with the two supplemented indexes
// (rarity/supertype, oracle-text trigram accelerator) SPEC_FULL.md adds;
// since this format has no pre-existing files to stay compatible with,
// appending rather than inventing a second page keeps Open a single read.
const (
	idxColor = iota
	idxColorID
	idxManaCost
	idxTypes
	idxNames
	idxStats
	idxRaritySupertype
	idxTrigram
	numSecondaryIndexes
)

// layout is the first page's decoded content: num_cards (a relaxed,
// approximate hint per §5 — never required to equal the true row count),
// the primary tree's root, and the eight secondary roots in the fixed
// order above.
type layout struct {
	numCards uint64
	primary  pagestore.PageID
	roots    [numSecondaryIndexes]pagestore.PageID
}

func encodeLayout(l layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := codec.WriteUvarint(&buf, l.numCards); err != nil {
		return nil, err
	}
	if err := codec.WriteUvarint(&buf, uint64(l.primary)); err != nil {
		return nil, err
	}
	for _, id := range l.roots {
		if err := codec.WriteUvarint(&buf, uint64(id)); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func decodeLayout(raw []byte) (layout, error) {
	r := bytes.NewReader(raw)
	numCards, err := codec.ReadUvarint(r)
	if err != nil {
		return layout{}, err
	}
	primary, err := codec.ReadUvarint(r)
	if err != nil {
		return layout{}, err
	}
	var l layout
	l.numCards = numCards
	l.primary = pagestore.PageID(primary)
	for i := range l.roots {
		id, err := codec.ReadUvarint(r)
		if err != nil {
			return layout{}, err
		}
		l.roots[i] = pagestore.PageID(id)
	}
	return l, nil
}
