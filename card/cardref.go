package card

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/wilSecord/mtg-organizer/internal/codec"
	"github.com/wilSecord/mtg-organizer/internal/index"
)

// CollectorNumber is a StringishUsize: usually a plain number, but
// occasionally a non-numeric string (promos, playtest cards). Exactly one
// of the two fields is meaningful, selected by IsNumber.
type CollectorNumber struct {
	IsNumber bool
	Number   uint64
	Text     string
}

// NumericCollectorNumber builds the common case.
func NumericCollectorNumber(n uint64) CollectorNumber {
	return CollectorNumber{IsNumber: true, Number: n}
}

// TextCollectorNumber builds the rare non-numeric case.
func TextCollectorNumber(s string) CollectorNumber {
	return CollectorNumber{Text: s}
}

// CardRef identifies a specific printed card: its set, collector number,
// and an optional printing disambiguator for sets that reprint the exact
// same collector number more than once (e.g. serialized variants).
type CardRef struct {
	Set             string
	CollectorNumber CollectorNumber
	Printing        uint64 // 0 means absent, matching the original's NonZero<usize>
}

// PrimaryKey is the 128-bit value every card is keyed by throughout the
// database, built deterministically from a CardRef by ToPrimaryKey. Modeled
// as two uint64 halves (no 128-bit integer in Go) interpreted the way the
// original interprets its byte buffer: Lo holds the first 8 bytes written,
// Hi the next 8, both little-endian — equivalent to u128::from_le_bytes on
// the concatenation.
type PrimaryKey struct {
	Lo, Hi uint64
}

// ToPrimaryKey packs a CardRef into its PrimaryKey the way
// dbs/allcards/cardref_key.rs::card_ref_to_index does: set code first (its
// length-prefix byte carries the "is collector number numeric" bit), then
// the collector number itself, then the printing number — all written
// left to right into a 16-byte buffer and read back as one little-endian
// integer.
func (cr CardRef) ToPrimaryKey() (PrimaryKey, error) {
	var buf bytes.Buffer

	ext := codec.ExternalBits{Claimed: 1}
	if cr.CollectorNumber.IsNumber {
		ext.FirstByte = 1 << 7
	}
	if err := codec.WriteString(&buf, cr.Set, ext); err != nil {
		return PrimaryKey{}, err
	}

	if cr.CollectorNumber.IsNumber {
		if err := codec.WriteUvarint(&buf, cr.CollectorNumber.Number); err != nil {
			return PrimaryKey{}, err
		}
	} else {
		if err := codec.WriteString(&buf, cr.CollectorNumber.Text, codec.NoExternalBits); err != nil {
			return PrimaryKey{}, err
		}
	}

	if err := codec.WriteUvarint(&buf, cr.Printing); err != nil {
		return PrimaryKey{}, err
	}

	if buf.Len() > 16 {
		return PrimaryKey{}, codec.ErrInvalidData
	}
	var b [16]byte
	copy(b[:], buf.Bytes())
	return PrimaryKey{
		Lo: binary.LittleEndian.Uint64(b[0:8]),
		Hi: binary.LittleEndian.Uint64(b[8:16]),
	}, nil
}

// CardRefFromPrimaryKey is ToPrimaryKey's inverse, mirroring
// index_to_card_ref. It only works for keys produced by ToPrimaryKey
// itself — the 16-byte buffer is read back in the same field order.
func CardRefFromPrimaryKey(pk PrimaryKey) (CardRef, error) {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], pk.Lo)
	binary.LittleEndian.PutUint64(b[8:16], pk.Hi)

	isNumber := b[0]&(1<<7) != 0
	r := bytes.NewReader(b[1:])

	set, err := codec.ReadString(r, codec.ExternalBits{FirstByte: b[0], Claimed: 1})
	if err != nil {
		return CardRef{}, err
	}

	var cn CollectorNumber
	if isNumber {
		n, err := codec.ReadUvarint(r)
		if err != nil {
			return CardRef{}, err
		}
		cn = NumericCollectorNumber(n)
	} else {
		s, err := codec.ReadString(r, codec.NoExternalBits)
		if err != nil {
			return CardRef{}, err
		}
		cn = TextCollectorNumber(s)
	}

	printing, err := codec.ReadUvarint(r)
	if err != nil {
		return CardRef{}, err
	}

	return CardRef{Set: set, CollectorNumber: cn, Printing: printing}, nil
}

// Write/Read let PrimaryKey itself flow through the same codec contract
// used for every stored value — the primary tree's key type.
func (k PrimaryKey) Write(buf *bytes.Buffer) error {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], k.Lo)
	binary.LittleEndian.PutUint64(b[8:16], k.Hi)
	_, err := buf.Write(b[:])
	return err
}

// ToIndexKey reinterprets a PrimaryKey as the 128-bit key type
// internal/index's longest-prefix machinery already implements, letting the
// primary card tree (key -> Card) reuse StringPrefix/StringPrefixRegion
// rather than stand up a dedicated region type for what is, for the
// primary tree's purposes, always an exact-match point: the tree is never
// asked to do an actual prefix scan over primary keys, only the single-bit
// round-robin split StringPrefixRegion already provides.
func (k PrimaryKey) ToIndexKey() index.StringPrefix {
	return index.StringPrefix{Hi: k.Hi, Lo: k.Lo}
}

// PrimaryKeyFromIndexKey is ToIndexKey's inverse.
func PrimaryKeyFromIndexKey(k index.StringPrefix) PrimaryKey {
	return PrimaryKey{Hi: k.Hi, Lo: k.Lo}
}

func ReadPrimaryKey(r *bytes.Reader) (PrimaryKey, error) {
	var b [16]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return PrimaryKey{}, err
	}
	return PrimaryKey{
		Lo: binary.LittleEndian.Uint64(b[0:8]),
		Hi: binary.LittleEndian.Uint64(b[8:16]),
	}, nil
}
