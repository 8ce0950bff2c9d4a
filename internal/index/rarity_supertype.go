package index

import (
	"bytes"

	"github.com/wilSecord/mtg-organizer/internal/codec"
)

// Supplemented index, grounded on dbs/indexes/rarity_supertype.rs. That
// file keeps rarity and supertype as two completely independent
// single-field key types (rarity::Key{rarity: u8}, supertype::Key{
// supertype: u8}); this merges both into one key on a single tree, since
// "rarity:mythic" and "is:legendary" are cheap, frequently-combined
// filters that don't justify a second nearly-empty secondary tree.

const (
	rsAxisRarity = iota
	rsAxisSupertypeMask
	rsAxisCount
)

// Supertype bitmask layout. Rarity is stored as a small ordinal
// (0=Common .. 4=Special); supertypes are a bitmask since a card can carry
// more than one (e.g. Legendary Snow).
const (
	SupertypeBasic = 1 << iota
	SupertypeLegendary
	SupertypeOngoing
	SupertypeSnow
	SupertypeWorld
	SupertypeElite
	SupertypeHost
)

// RaritySupertype is the key: a card's rarity ordinal paired with its
// supertype bitmask.
type RaritySupertype struct {
	Rarity     int
	Supertypes int
}

func (k RaritySupertype) values() []int { return []int{k.Rarity, k.Supertypes} }

// IsContainedIn reports whether both axes fall in region's ranges. Note
// this treats the supertype bitmask as a plain integer range, not a
// per-bit pattern, so a box query cannot select "has this supertype bit
// set" — coarser than the color index's per-axis wildcards. The query
// compiler drives this index only from rarity terms; `is:` terms are
// checked against each candidate card's bitmask in the residual predicate.
func (k RaritySupertype) IsContainedIn(region RaritySupertypeRegion) bool {
	return valuesContained(k.values(), region.axes[:])
}

// RaritySupertypeRegion is a 2-axis range box over (rarity, supertype mask).
type RaritySupertypeRegion struct {
	axes [rsAxisCount]Range
}

// AnyRaritySupertype is the universe.
var AnyRaritySupertype = RaritySupertypeRegion{
	axes: [rsAxisCount]Range{{0, 4}, {0, 127}},
}

func (r RaritySupertypeRegion) Contains(other RaritySupertypeRegion) bool {
	return rangesContains(r.axes[:], other.axes[:])
}

func (r RaritySupertypeRegion) Overlaps(other RaritySupertypeRegion) bool {
	return rangesOverlap(r.axes[:], other.axes[:])
}

// Intersect narrows r to the portion it shares with other, per axis —
// mirrors CardStatsRegion.Intersect.
func (r RaritySupertypeRegion) Intersect(other RaritySupertypeRegion) (RaritySupertypeRegion, bool) {
	axes, ok := rangesIntersect(r.axes[:], other.axes[:])
	if !ok {
		return RaritySupertypeRegion{}, false
	}
	var out RaritySupertypeRegion
	copy(out.axes[:], axes)
	return out, true
}

func (r RaritySupertypeRegion) NumAxes() int { return rsAxisCount }

func (r RaritySupertypeRegion) SplitEvenly(axis int) (left, right RaritySupertypeRegion) {
	l, rr := rangesSplit(r.axes[:], axis)
	copy(left.axes[:], l)
	copy(right.axes[:], rr)
	return left, right
}

// RarityRange builds a RaritySupertypeRegion narrowed to [lo, hi] on the
// rarity axis, leaving the supertype mask axis at its universe bound — the
// shape the `rarity`/`r` query keyword needs.
func RarityRange(lo, hi int) RaritySupertypeRegion {
	r := AnyRaritySupertype
	r.axes[rsAxisRarity] = Range{lo, hi}
	return r
}

// EncodeRaritySupertypeKey writes both axes relative to region, as varints.
func EncodeRaritySupertypeKey(buf *bytes.Buffer, k RaritySupertype, parent RaritySupertypeRegion) error {
	for i, v := range k.values() {
		if err := codec.WriteUvarint(buf, uint64(v-parent.axes[i].Lo)); err != nil {
			return err
		}
	}
	return nil
}

// DecodeRaritySupertypeKey is EncodeRaritySupertypeKey's inverse.
func DecodeRaritySupertypeKey(r *bytes.Reader, parent RaritySupertypeRegion) (RaritySupertype, error) {
	vals := make([]int, rsAxisCount)
	for i := range vals {
		d, err := codec.ReadUvarint(r)
		if err != nil {
			return RaritySupertype{}, err
		}
		vals[i] = parent.axes[i].Lo + int(d)
	}
	return RaritySupertype{Rarity: vals[rsAxisRarity], Supertypes: vals[rsAxisSupertypeMask]}, nil
}

// EncodeRaritySupertypeRegion writes the two axis ranges as pairs of varints.
func EncodeRaritySupertypeRegion(buf *bytes.Buffer, r RaritySupertypeRegion) error {
	for _, a := range r.axes {
		if err := codec.WriteUvarint(buf, uint64(a.Lo)); err != nil {
			return err
		}
		if err := codec.WriteUvarint(buf, uint64(a.Hi)); err != nil {
			return err
		}
	}
	return nil
}

// DecodeRaritySupertypeRegion is EncodeRaritySupertypeRegion's inverse.
func DecodeRaritySupertypeRegion(r *bytes.Reader) (RaritySupertypeRegion, error) {
	var out RaritySupertypeRegion
	for i := range out.axes {
		lo, err := codec.ReadUvarint(r)
		if err != nil {
			return RaritySupertypeRegion{}, err
		}
		hi, err := codec.ReadUvarint(r)
		if err != nil {
			return RaritySupertypeRegion{}, err
		}
		out.axes[i] = Range{int(lo), int(hi)}
	}
	return out, nil
}
