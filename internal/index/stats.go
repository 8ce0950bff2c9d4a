package index

import (
	"bytes"

	"github.com/wilSecord/mtg-organizer/internal/codec"
)

const (
	statAxisPower = iota
	statAxisToughness
	statAxisLoyalty
	statAxisDefense
	statAxisGameChanger
	statAxisManaValueQuarters
	statAxisCount
)

// CardStats is the 6-dimensional stat line a card indexes under: power,
// toughness and loyalty in their raw CardDynamicNumber form (0 = dynamic,
// n = value n-1), defense stored as defense+1 so 0 means "no defense",
// a 0/1 game-changer flag, and mana value scaled by 4 so half-integer
// costs (from symbols like half-white mana) stay exact integers.
type CardStats struct {
	Power, Toughness, Loyalty int
	Defense                   int
	GameChanger               int
	ManaValueQuarters         int
}

func (s CardStats) values() []int {
	return []int{s.Power, s.Toughness, s.Loyalty, s.Defense, s.GameChanger, s.ManaValueQuarters}
}

// IsContainedIn reports whether every stat axis falls within region.
func (s CardStats) IsContainedIn(region CardStatsRegion) bool {
	return valuesContained(s.values(), region.axes[:])
}

// CardStatsRegion is an axis-aligned box over the six stat axes.
type CardStatsRegion struct {
	axes [statAxisCount]Range
}

// AnyCardStats is the universe: every axis unconstrained.
var AnyCardStats = newCardStatsUniverse()

func newCardStatsUniverse() CardStatsRegion {
	var r CardStatsRegion
	for i := range r.axes {
		r.axes[i] = Range{0, maxCount}
	}
	return r
}

func (r CardStatsRegion) Contains(other CardStatsRegion) bool {
	return rangesContains(r.axes[:], other.axes[:])
}

func (r CardStatsRegion) Overlaps(other CardStatsRegion) bool {
	return rangesOverlap(r.axes[:], other.axes[:])
}

// Intersect narrows r to the portion it shares with other, per axis. ok is
// false when some axis ends up empty, meaning the query compiler's two
// candidate CardStats regions (e.g. two "mv" terms) can never both match a
// card — the caller turns that into an Empty index plus a warning.
func (r CardStatsRegion) Intersect(other CardStatsRegion) (CardStatsRegion, bool) {
	axes, ok := rangesIntersect(r.axes[:], other.axes[:])
	if !ok {
		return CardStatsRegion{}, false
	}
	var out CardStatsRegion
	copy(out.axes[:], axes)
	return out, true
}

func (r CardStatsRegion) NumAxes() int { return statAxisCount }

func (r CardStatsRegion) SplitEvenly(axis int) (left, right CardStatsRegion) {
	l, rr := rangesSplit(r.axes[:], axis)
	copy(left.axes[:], l)
	copy(right.axes[:], rr)
	return left, right
}

// ManaValueQuartersRange builds a CardStatsRegion with every axis left at
// its universe bound except mana_value_quarters, narrowed to [lo, hi] —
// the shape the `mv`/`manavalue` query keyword needs (§4.6.4), since a
// mana-value comparison says nothing about power/toughness/loyalty/
// defense/game-changer.
func ManaValueQuartersRange(lo, hi int) CardStatsRegion {
	r := AnyCardStats
	r.axes[statAxisManaValueQuarters] = Range{lo, hi}
	return r
}

// EncodeCardStatsKey writes a CardStats key relative to its region's lower
// bounds, one varint per axis.
func EncodeCardStatsKey(buf *bytes.Buffer, s CardStats, parent CardStatsRegion) error {
	for i, v := range s.values() {
		if err := codec.WriteUvarint(buf, uint64(v-parent.axes[i].Lo)); err != nil {
			return err
		}
	}
	return nil
}

// DecodeCardStatsKey is EncodeCardStatsKey's inverse.
func DecodeCardStatsKey(r *bytes.Reader, parent CardStatsRegion) (CardStats, error) {
	vals := make([]int, statAxisCount)
	for i := range vals {
		d, err := codec.ReadUvarint(r)
		if err != nil {
			return CardStats{}, err
		}
		vals[i] = parent.axes[i].Lo + int(d)
	}
	return CardStats{
		Power: vals[statAxisPower], Toughness: vals[statAxisToughness], Loyalty: vals[statAxisLoyalty],
		Defense: vals[statAxisDefense], GameChanger: vals[statAxisGameChanger],
		ManaValueQuarters: vals[statAxisManaValueQuarters],
	}, nil
}

// EncodeCardStatsRegion writes the six axis ranges as pairs of varints.
func EncodeCardStatsRegion(buf *bytes.Buffer, r CardStatsRegion) error {
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

// DecodeCardStatsRegion is EncodeCardStatsRegion's inverse.
func DecodeCardStatsRegion(r *bytes.Reader) (CardStatsRegion, error) {
	var out CardStatsRegion
	for i := range out.axes {
		lo, err := codec.ReadUvarint(r)
		if err != nil {
			return CardStatsRegion{}, err
		}
		hi, err := codec.ReadUvarint(r)
		if err != nil {
			return CardStatsRegion{}, err
		}
		out.axes[i] = Range{int(lo), int(hi)}
	}
	return out, nil
}
