package index

import (
	"bytes"

	"github.com/wilSecord/mtg-organizer/internal/codec"
)

// maxCount bounds every counter axis. No card prints anywhere near this
// many pips of anything; it only exists so the universe region has finite,
// serializable bounds.
const maxCount = 1 << 30

// Mana cost axis indices, in the fixed order both ManaCostCount and
// ManaCostRegion store their counters.
const (
	axisWhite = iota
	axisBlue
	axisBlack
	axisRed
	axisGreen
	axisColorless
	axisGeneric
	axisAnyPhyrexian
	axisAnySplitGeneric
	axisAnyColorSplit
	axisVariablesUsed
	axisOddEdgeCaseSymbols
	manaCostAxisCount
)

// ManaCostCount is the 12-counter derived shape a ManaCost reduces to for
// indexing: how many pips of each color, how much generic mana, and how
// many symbols fell into each of the odd-case buckets. See DeriveManaCostCount
// in the card package for how a parsed mana cost produces one of these.
type ManaCostCount struct {
	White, Blue, Black, Red, Green, Colorless int
	Generic                                   int
	AnyPhyrexian                              int
	AnySplitGeneric                           int
	AnyColorSplit                             int
	VariablesUsed                             int
	OddEdgeCaseSymbols                        int
}

func (m ManaCostCount) values() []int {
	return []int{
		m.White, m.Blue, m.Black, m.Red, m.Green, m.Colorless,
		m.Generic, m.AnyPhyrexian, m.AnySplitGeneric, m.AnyColorSplit,
		m.VariablesUsed, m.OddEdgeCaseSymbols,
	}
}

// IsContainedIn reports whether every counter falls within region's
// per-axis inclusive range.
func (m ManaCostCount) IsContainedIn(region ManaCostRegion) bool {
	return valuesContained(m.values(), region.axes[:])
}

// ManaCostRegion is a 12-dimensional axis-aligned box of counter ranges —
// the region type ManaCostCount trees are built from.
type ManaCostRegion struct {
	axes [manaCostAxisCount]Range
}

// AnyManaCost is the universe: every counter unconstrained from 0 up.
var AnyManaCost = newManaCostUniverse()

func newManaCostUniverse() ManaCostRegion {
	var r ManaCostRegion
	for i := range r.axes {
		r.axes[i] = Range{0, maxCount}
	}
	return r
}

func (r ManaCostRegion) Contains(other ManaCostRegion) bool {
	return rangesContains(r.axes[:], other.axes[:])
}

func (r ManaCostRegion) Overlaps(other ManaCostRegion) bool {
	return rangesOverlap(r.axes[:], other.axes[:])
}

// Intersect narrows r to the portion it shares with other, per axis —
// mirrors CardStatsRegion.Intersect.
func (r ManaCostRegion) Intersect(other ManaCostRegion) (ManaCostRegion, bool) {
	axes, ok := rangesIntersect(r.axes[:], other.axes[:])
	if !ok {
		return ManaCostRegion{}, false
	}
	var out ManaCostRegion
	copy(out.axes[:], axes)
	return out, true
}

func (r ManaCostRegion) NumAxes() int { return manaCostAxisCount }

func (r ManaCostRegion) SplitEvenly(axis int) (left, right ManaCostRegion) {
	l, rr := rangesSplit(r.axes[:], axis)
	copy(left.axes[:], l)
	copy(right.axes[:], rr)
	return left, right
}

// EncodeManaCostKey writes a ManaCostCount as 12 varints, each relative to
// its region's lower bound (the delta-from-parent compression: a narrow
// region's counters serialize in far fewer bytes than the raw count).
func EncodeManaCostKey(buf *bytes.Buffer, m ManaCostCount, parent ManaCostRegion) error {
	for i, v := range m.values() {
		if err := codec.WriteUvarint(buf, uint64(v-parent.axes[i].Lo)); err != nil {
			return err
		}
	}
	return nil
}

// DecodeManaCostKey is EncodeManaCostKey's inverse.
func DecodeManaCostKey(r *bytes.Reader, parent ManaCostRegion) (ManaCostCount, error) {
	vals := make([]int, manaCostAxisCount)
	for i := range vals {
		d, err := codec.ReadUvarint(r)
		if err != nil {
			return ManaCostCount{}, err
		}
		vals[i] = parent.axes[i].Lo + int(d)
	}
	return ManaCostCount{
		White: vals[axisWhite], Blue: vals[axisBlue], Black: vals[axisBlack],
		Red: vals[axisRed], Green: vals[axisGreen], Colorless: vals[axisColorless],
		Generic:            vals[axisGeneric],
		AnyPhyrexian:       vals[axisAnyPhyrexian],
		AnySplitGeneric:    vals[axisAnySplitGeneric],
		AnyColorSplit:      vals[axisAnyColorSplit],
		VariablesUsed:      vals[axisVariablesUsed],
		OddEdgeCaseSymbols: vals[axisOddEdgeCaseSymbols],
	}, nil
}

// EncodeManaCostRegion writes the 12 axis ranges as pairs of varints.
func EncodeManaCostRegion(buf *bytes.Buffer, r ManaCostRegion) error {
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

// DecodeManaCostRegion is EncodeManaCostRegion's inverse.
func DecodeManaCostRegion(r *bytes.Reader) (ManaCostRegion, error) {
	var out ManaCostRegion
	for i := range out.axes {
		lo, err := codec.ReadUvarint(r)
		if err != nil {
			return ManaCostRegion{}, err
		}
		hi, err := codec.ReadUvarint(r)
		if err != nil {
			return ManaCostRegion{}, err
		}
		out.axes[i] = Range{int(lo), int(hi)}
	}
	return out, nil
}
