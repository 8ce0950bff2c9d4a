package index

import (
	"bytes"
	"hash/fnv"
	"strings"

	"github.com/wilSecord/mtg-organizer/internal/codec"
)

// Supplemented index, grounded on dbs/indexes/string_trigram.rs. That file
// packs a 3-byte ASCII window plus a field tag losslessly into a u32
// (abc_as_u32) for an exact, collision-free key; oracle text isn't
// ASCII-only, and three arbitrary runes don't pack into 32 bits the same
// way three bytes do, so this hashes each 3-rune window instead. It is
// purely an accelerator, not a source of truth — a hash collision can make
// an unrelated card's text come back as a candidate, so every consumer must
// re-check the actual oracle text before treating a hit as a match. What
// it buys is avoiding a full table scan for "o:flying" style substring
// searches.

// TrigramKey is one (hashed trigram, card ordinal) pair. Ordinal lets the
// same trigram appear against many cards without needing tree-level
// multimap support.
type TrigramKey struct {
	Hash    uint32
	Ordinal uint32
}

func (k TrigramKey) values() []int { return []int{int(k.Hash), int(k.Ordinal)} }

// IsContainedIn reports whether both the hash and the ordinal fall in
// region's ranges.
func (k TrigramKey) IsContainedIn(region TrigramRegion) bool {
	return valuesContained(k.values(), region.axes[:])
}

// TrigramRegion is a 2-axis range box over (hash, ordinal).
type TrigramRegion struct {
	axes [2]Range
}

// AnyTrigram is the universe.
var AnyTrigram = TrigramRegion{axes: [2]Range{{0, 1<<32 - 1}, {0, maxCount}}}

func (r TrigramRegion) Contains(other TrigramRegion) bool { return rangesContains(r.axes[:], other.axes[:]) }
func (r TrigramRegion) Overlaps(other TrigramRegion) bool { return rangesOverlap(r.axes[:], other.axes[:]) }
func (r TrigramRegion) NumAxes() int                      { return 2 }

func (r TrigramRegion) SplitEvenly(axis int) (left, right TrigramRegion) {
	l, rr := rangesSplit(r.axes[:], axis)
	copy(left.axes[:], l)
	copy(right.axes[:], rr)
	return left, right
}

// HashTrigram hashes a 3-rune (lowercased) window of oracle text into the
// fixed-width key the trigram tree indexes on. There's no ecosystem hash
// library in play here (trigram indexing is bespoke to this spec, and
// nothing else in the dependency set brings one in), so this leans on
// hash/fnv: a stable, allocation-free non-cryptographic hash, which is all
// an accelerator index needs.
func HashTrigram(trigram string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(trigram))
	return h.Sum32()
}

// Trigrams yields every lowercase 3-rune window of s — the set a caller
// should hash and insert (or query) against the trigram tree for s.
func Trigrams(s string) []string {
	s = strings.ToLower(s)
	runes := []rune(s)
	if len(runes) < 3 {
		return nil
	}
	out := make([]string, 0, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		out = append(out, string(runes[i:i+3]))
	}
	return out
}

// TrigramHashRegion narrows to exactly one hash value, every ordinal: the
// region a caller box-queries with to find every card carrying a given
// trigram, regardless of which occurrence within that card it came from.
func TrigramHashRegion(hash uint32) TrigramRegion {
	return TrigramRegion{axes: [2]Range{{int(hash), int(hash)}, AnyTrigram.axes[1]}}
}

// EncodeTrigramKey writes both axes relative to region, as varints.
func EncodeTrigramKey(buf *bytes.Buffer, k TrigramKey, parent TrigramRegion) error {
	for i, v := range k.values() {
		if err := codec.WriteUvarint(buf, uint64(v-parent.axes[i].Lo)); err != nil {
			return err
		}
	}
	return nil
}

// DecodeTrigramKey is EncodeTrigramKey's inverse.
func DecodeTrigramKey(r *bytes.Reader, parent TrigramRegion) (TrigramKey, error) {
	vals := make([]int, 2)
	for i := range vals {
		d, err := codec.ReadUvarint(r)
		if err != nil {
			return TrigramKey{}, err
		}
		vals[i] = parent.axes[i].Lo + int(d)
	}
	return TrigramKey{Hash: uint32(vals[0]), Ordinal: uint32(vals[1])}, nil
}

// EncodeTrigramRegion writes the two axis ranges as pairs of varints.
func EncodeTrigramRegion(buf *bytes.Buffer, r TrigramRegion) error {
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

// DecodeTrigramRegion is EncodeTrigramRegion's inverse.
func DecodeTrigramRegion(r *bytes.Reader) (TrigramRegion, error) {
	var out TrigramRegion
	for i := range out.axes {
		lo, err := codec.ReadUvarint(r)
		if err != nil {
			return TrigramRegion{}, err
		}
		hi, err := codec.ReadUvarint(r)
		if err != nil {
			return TrigramRegion{}, err
		}
		out.axes[i] = Range{int(lo), int(hi)}
	}
	return out, nil
}
