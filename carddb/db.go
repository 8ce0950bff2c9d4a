// Package carddb is the card store facade (spec.md §4.5): it owns the
// paged store, the primary key->Card tree, and one secondary tree per
// index, all living in a single file. Grounded on Giulio2002/gdbx's Env
// for the locking model and its View/Update naming, and on bbolt's public
// surface for the same two method names.
package carddb

import (
	"bytes"
	"os"
	"sync"

	"github.com/wilSecord/mtg-organizer/card"
	"github.com/wilSecord/mtg-organizer/internal/index"
	"github.com/wilSecord/mtg-organizer/internal/ktree"
	"github.com/wilSecord/mtg-organizer/internal/pagestore"
)

// leafCap bounds every tree's leaf page before it splits. Chosen so a leaf
// of small fixed-size keys (every secondary index's value is a 16-byte
// PrimaryKey) comfortably fits pagestore.DefaultPageSize with room to
// spare for the Card-valued primary tree's larger leaves.
const leafCap = 64

var primaryCodec = ktree.Codec[index.StringPrefixRegion, index.StringPrefix, card.Card]{
	EncodeRegion: index.EncodeStringPrefixRegion,
	DecodeRegion: index.DecodeStringPrefixRegion,
	EncodeKey:    index.EncodeStringPrefixKey,
	DecodeKey:    index.DecodeStringPrefixKey,
	EncodeValue:  func(w *bytes.Buffer, v card.Card) error { return v.Write(w) },
	DecodeValue:  func(r *bytes.Reader) (card.Card, error) { return card.ReadCard(r) },
}

func encodePrimaryKey(w *bytes.Buffer, v card.PrimaryKey) error { return v.Write(w) }
func decodePrimaryKey(r *bytes.Reader) (card.PrimaryKey, error) { return card.ReadPrimaryKey(r) }

var colorCodec = ktree.Codec[index.ColorQuery, index.ColorCombination, card.PrimaryKey]{
	EncodeRegion: index.EncodeColorRegion,
	DecodeRegion: index.DecodeColorRegion,
	EncodeKey:    index.EncodeColorKey,
	DecodeKey:    index.DecodeColorKey,
	EncodeValue:  encodePrimaryKey,
	DecodeValue:  decodePrimaryKey,
}

var manaCostCodec = ktree.Codec[index.ManaCostRegion, index.ManaCostCount, card.PrimaryKey]{
	EncodeRegion: index.EncodeManaCostRegion,
	DecodeRegion: index.DecodeManaCostRegion,
	EncodeKey:    index.EncodeManaCostKey,
	DecodeKey:    index.DecodeManaCostKey,
	EncodeValue:  encodePrimaryKey,
	DecodeValue:  decodePrimaryKey,
}

var stringPrefixToPrimaryKeyCodec = ktree.Codec[index.StringPrefixRegion, index.StringPrefix, card.PrimaryKey]{
	EncodeRegion: index.EncodeStringPrefixRegion,
	DecodeRegion: index.DecodeStringPrefixRegion,
	EncodeKey:    index.EncodeStringPrefixKey,
	DecodeKey:    index.DecodeStringPrefixKey,
	EncodeValue:  encodePrimaryKey,
	DecodeValue:  decodePrimaryKey,
}

var statsCodec = ktree.Codec[index.CardStatsRegion, index.CardStats, card.PrimaryKey]{
	EncodeRegion: index.EncodeCardStatsRegion,
	DecodeRegion: index.DecodeCardStatsRegion,
	EncodeKey:    index.EncodeCardStatsKey,
	DecodeKey:    index.DecodeCardStatsKey,
	EncodeValue:  encodePrimaryKey,
	DecodeValue:  decodePrimaryKey,
}

var raritySupertypeCodec = ktree.Codec[index.RaritySupertypeRegion, index.RaritySupertype, card.PrimaryKey]{
	EncodeRegion: index.EncodeRaritySupertypeRegion,
	DecodeRegion: index.DecodeRaritySupertypeRegion,
	EncodeKey:    index.EncodeRaritySupertypeKey,
	DecodeKey:    index.DecodeRaritySupertypeKey,
	EncodeValue:  encodePrimaryKey,
	DecodeValue:  decodePrimaryKey,
}

var trigramCodec = ktree.Codec[index.TrigramRegion, index.TrigramKey, card.PrimaryKey]{
	EncodeRegion: index.EncodeTrigramRegion,
	DecodeRegion: index.DecodeTrigramRegion,
	EncodeKey:    index.EncodeTrigramKey,
	DecodeKey:    index.DecodeTrigramKey,
	EncodeValue:  encodePrimaryKey,
	DecodeValue:  decodePrimaryKey,
}

// DB is one opened card database file: the primary tree plus the six
// secondary indexes spec.md §6 fixes the wire order of, plus the two
// supplemented indexes (rarity/supertype, oracle-text trigrams) layout.go
// appends to that same page.
type DB struct {
	store *pagestore.Store

	// insertMu serializes Insert the way gdbx's Env serializes its single
	// write transaction: one writer stream at a time; readers are never
	// blocked by it (§5's concurrency model — see SPEC_FULL.md's AMBIENT
	// STACK section on the locking model).
	insertMu sync.Mutex

	numCards uint64 // mutated only under insertMu; a relaxed hint, not a consistency anchor (§5)

	// trigramOrdinal assigns each trigram-tree insertion a distinct ordinal
	// so repeated trigrams (common 3-grams like "the") don't collide as
	// duplicate keys; mutated only under insertMu.
	trigramOrdinal uint32

	primary         *ktree.Tree[index.StringPrefixRegion, index.StringPrefix, card.Card]
	color           *ktree.Tree[index.ColorQuery, index.ColorCombination, card.PrimaryKey]
	colorID         *ktree.Tree[index.ColorQuery, index.ColorCombination, card.PrimaryKey]
	manaCost        *ktree.Tree[index.ManaCostRegion, index.ManaCostCount, card.PrimaryKey]
	types           *ktree.Tree[index.StringPrefixRegion, index.StringPrefix, card.PrimaryKey]
	names           *ktree.Tree[index.StringPrefixRegion, index.StringPrefix, card.PrimaryKey]
	stats           *ktree.Tree[index.CardStatsRegion, index.CardStats, card.PrimaryKey]
	raritySupertype *ktree.Tree[index.RaritySupertypeRegion, index.RaritySupertype, card.PrimaryKey]
	trigram         *ktree.Tree[index.TrigramRegion, index.TrigramKey, card.PrimaryKey]
}

// Open opens an existing card database file, or creates one if it doesn't
// exist. A freshly created file gets a layout page (always page 1) plus
// one empty root page per tree (primary, then the eight secondaries in
// layout.go's fixed order); an existing file reads that same layout back
// and attaches to the stored root ids.
func Open(path string) (*DB, error) {
	info, statErr := os.Stat(path)
	fresh := statErr != nil || info.Size() == 0

	store, err := pagestore.Open(path, pagestore.DefaultPageSize)
	if err != nil {
		return nil, wrapErr("open", err)
	}

	db := &DB{store: store}
	if fresh {
		if err := db.initFresh(); err != nil {
			store.Close()
			return nil, wrapErr("open", err)
		}
		return db, nil
	}
	if err := db.attachExisting(); err != nil {
		store.Close()
		return nil, wrapErr("open", err)
	}
	return db, nil
}

func (db *DB) initFresh() error {
	// Reserve page 1 for the layout before any tree gets to allocate it:
	// NewPageWith hands out ids sequentially starting at 1, so this call
	// must run first. Its content is overwritten once every root id below
	// is known.
	placeholderID, err := db.store.NewPageWith(func(pagestore.PageID) ([]byte, error) {
		return nil, nil
	})
	if err != nil {
		return err
	}
	if placeholderID != layoutPageID {
		return &Error{Op: "open", Err: errLayoutPageMismatch}
	}

	var l layout
	var treeErr error
	db.primary, l.primary, treeErr = ktree.Open(db.store, pagestore.NullPage, index.AnyStringPrefix, primaryCodec, leafCap)
	if treeErr != nil {
		return treeErr
	}
	db.color, l.roots[idxColor], treeErr = ktree.Open(db.store, pagestore.NullPage, index.AnyColor, colorCodec, leafCap)
	if treeErr != nil {
		return treeErr
	}
	db.colorID, l.roots[idxColorID], treeErr = ktree.Open(db.store, pagestore.NullPage, index.AnyColor, colorCodec, leafCap)
	if treeErr != nil {
		return treeErr
	}
	db.manaCost, l.roots[idxManaCost], treeErr = ktree.Open(db.store, pagestore.NullPage, index.AnyManaCost, manaCostCodec, leafCap)
	if treeErr != nil {
		return treeErr
	}
	db.types, l.roots[idxTypes], treeErr = ktree.Open(db.store, pagestore.NullPage, index.AnyStringPrefix, stringPrefixToPrimaryKeyCodec, leafCap)
	if treeErr != nil {
		return treeErr
	}
	db.names, l.roots[idxNames], treeErr = ktree.Open(db.store, pagestore.NullPage, index.AnyStringPrefix, stringPrefixToPrimaryKeyCodec, leafCap)
	if treeErr != nil {
		return treeErr
	}
	db.stats, l.roots[idxStats], treeErr = ktree.Open(db.store, pagestore.NullPage, index.AnyCardStats, statsCodec, leafCap)
	if treeErr != nil {
		return treeErr
	}
	db.raritySupertype, l.roots[idxRaritySupertype], treeErr = ktree.Open(db.store, pagestore.NullPage, index.AnyRaritySupertype, raritySupertypeCodec, leafCap)
	if treeErr != nil {
		return treeErr
	}
	db.trigram, l.roots[idxTrigram], treeErr = ktree.Open(db.store, pagestore.NullPage, index.AnyTrigram, trigramCodec, leafCap)
	if treeErr != nil {
		return treeErr
	}

	data, err := encodeLayout(l)
	if err != nil {
		return err
	}
	return db.store.Write(layoutPageID, data)
}

func (db *DB) attachExisting() error {
	raw, err := db.store.Read(layoutPageID)
	if err != nil {
		return err
	}
	l, err := decodeLayout(raw)
	if err != nil {
		return err
	}
	db.numCards = l.numCards

	var treeErr error
	db.primary, _, treeErr = ktree.Open(db.store, l.primary, index.AnyStringPrefix, primaryCodec, leafCap)
	if treeErr != nil {
		return treeErr
	}
	db.color, _, treeErr = ktree.Open(db.store, l.roots[idxColor], index.AnyColor, colorCodec, leafCap)
	if treeErr != nil {
		return treeErr
	}
	db.colorID, _, treeErr = ktree.Open(db.store, l.roots[idxColorID], index.AnyColor, colorCodec, leafCap)
	if treeErr != nil {
		return treeErr
	}
	db.manaCost, _, treeErr = ktree.Open(db.store, l.roots[idxManaCost], index.AnyManaCost, manaCostCodec, leafCap)
	if treeErr != nil {
		return treeErr
	}
	db.types, _, treeErr = ktree.Open(db.store, l.roots[idxTypes], index.AnyStringPrefix, stringPrefixToPrimaryKeyCodec, leafCap)
	if treeErr != nil {
		return treeErr
	}
	db.names, _, treeErr = ktree.Open(db.store, l.roots[idxNames], index.AnyStringPrefix, stringPrefixToPrimaryKeyCodec, leafCap)
	if treeErr != nil {
		return treeErr
	}
	db.stats, _, treeErr = ktree.Open(db.store, l.roots[idxStats], index.AnyCardStats, statsCodec, leafCap)
	if treeErr != nil {
		return treeErr
	}
	db.raritySupertype, _, treeErr = ktree.Open(db.store, l.roots[idxRaritySupertype], index.AnyRaritySupertype, raritySupertypeCodec, leafCap)
	if treeErr != nil {
		return treeErr
	}
	db.trigram, _, treeErr = ktree.Open(db.store, l.roots[idxTrigram], index.AnyTrigram, trigramCodec, leafCap)
	if treeErr != nil {
		return treeErr
	}
	return nil
}

// Close writes the current num_cards hint back to the layout page, along
// with the tree root ids (which never change once a file is created), and
// releases the underlying file. Insert never writes the layout page, so the
// hint on disk is only as current as the last Close — see DESIGN.md.
func (db *DB) Close() error {
	db.insertMu.Lock()
	defer db.insertMu.Unlock()

	var roots [numSecondaryIndexes]pagestore.PageID
	roots[idxColor] = db.color.RootID()
	roots[idxColorID] = db.colorID.RootID()
	roots[idxManaCost] = db.manaCost.RootID()
	roots[idxTypes] = db.types.RootID()
	roots[idxNames] = db.names.RootID()
	roots[idxStats] = db.stats.RootID()
	roots[idxRaritySupertype] = db.raritySupertype.RootID()
	roots[idxTrigram] = db.trigram.RootID()

	l := layout{
		numCards: db.numCards,
		primary:  db.primaryRootID(),
		roots:    roots,
	}
	data, err := encodeLayout(l)
	if err != nil {
		return wrapErr("close", err)
	}
	if err := db.store.Write(layoutPageID, data); err != nil {
		return wrapErr("close", err)
	}
	return wrapErr("close", db.store.Close())
}

func (db *DB) primaryRootID() pagestore.PageID { return db.primary.RootID() }

// View runs fn with read access to the database. It exists to mirror
// gdbx's Env.View/bbolt's DB.View naming; it opens no transaction and takes
// no snapshot (query methods read pages as they iterate, so an Insert that
// lands mid-iteration may or may not be seen), so fn just receives db back.
func (db *DB) View(fn func(db *DB) error) error {
	return wrapErr("view", fn(db))
}

// Update runs fn with write access. It exists to mirror gdbx's Env.Update/
// bbolt's DB.Update naming; the actual "single writer stream" §5 describes
// is enforced per-call by Insert's own insertMu, not by Update itself —
// Update takes no lock of its own so a callback that calls Insert (the
// expected use) doesn't deadlock against it.
func (db *DB) Update(fn func(db *DB) error) error {
	return wrapErr("update", fn(db))
}

// Insert adds one card, per spec.md §4.5: secondary indexes are populated
// before the primary tree, so a reader that finds an index hit may briefly
// fail to resolve the card in the primary tree (§5/§7 — callers must treat
// that as "skip", never as an error, and every query method here already
// does).
func (db *DB) Insert(ref card.CardRef, c card.Card) error {
	pk, err := ref.ToPrimaryKey()
	if err != nil {
		return wrapErr("insert", err)
	}

	db.insertMu.Lock()
	defer db.insertMu.Unlock()

	db.numCards++

	if err := db.color.Insert(c.DeriveColorKey(), pk); err != nil {
		return wrapErr("insert", err)
	}
	if err := db.colorID.Insert(c.DeriveColorIDKey(), pk); err != nil {
		return wrapErr("insert", err)
	}
	if err := db.manaCost.Insert(card.DeriveManaCostCount(c.ManaCost), pk); err != nil {
		return wrapErr("insert", err)
	}
	for _, k := range c.DeriveTypeKeys() {
		if err := db.types.Insert(k, pk); err != nil {
			return wrapErr("insert", err)
		}
	}
	if err := db.names.Insert(c.DeriveNamePrefixKey(), pk); err != nil {
		return wrapErr("insert", err)
	}
	if err := db.stats.Insert(c.DeriveCardStats(), pk); err != nil {
		return wrapErr("insert", err)
	}
	if err := db.raritySupertype.Insert(c.DeriveRaritySupertype(), pk); err != nil {
		return wrapErr("insert", err)
	}
	for _, h := range c.DeriveTrigramHashes() {
		db.trigramOrdinal++
		key := index.TrigramKey{Hash: h, Ordinal: db.trigramOrdinal}
		if err := db.trigram.Insert(key, pk); err != nil {
			return wrapErr("insert", err)
		}
	}

	if err := db.primary.Insert(pk.ToIndexKey(), c); err != nil {
		return wrapErr("insert", err)
	}
	return nil
}

// Condense rebalances every tree's overflow buffer into its child pages
// (spec.md §4.3's condense()). It is never called automatically by Insert
// or Close (SPEC_FULL.md's Open Question resolution): a caller — today
// only cmd/build_card_db's --condense flag, run once after a bulk load
// finishes — invokes it explicitly.
func (db *DB) Condense() error {
	db.insertMu.Lock()
	defer db.insertMu.Unlock()

	trees := []interface{ Condense() error }{
		db.primary, db.color, db.colorID, db.manaCost,
		db.types, db.names, db.stats, db.raritySupertype, db.trigram,
	}
	for _, t := range trees {
		if err := t.Condense(); err != nil {
			return wrapErr("condense", err)
		}
	}
	return nil
}

// GetCard is the primary-key point lookup spec.md §4.5 names.
func (db *DB) GetCard(ref card.CardRef) (card.Card, error) {
	pk, err := ref.ToPrimaryKey()
	if err != nil {
		return card.Card{}, wrapErr("get_card", err)
	}
	c, found, err := db.primary.GetReadRef(index.PointRegion(pk.ToIndexKey()))
	if err != nil {
		return card.Card{}, wrapErr("get_card", err)
	}
	if !found {
		return card.Card{}, ErrNotFound
	}
	return c, nil
}

var errLayoutPageMismatch = dbInternalError("layout page did not get page id 1 on a fresh file")

type dbInternalError string

func (e dbInternalError) Error() string { return string(e) }
