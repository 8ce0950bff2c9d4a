package index

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/wilSecord/mtg-organizer/internal/codec"
)

// StringPrefix is a fully-specified 128-bit key: the first 16 bytes of a
// string, zero-padded, big-endian. Strings that agree on their first 16
// bytes collide — an accepted tradeoff for a name/prefix index, not a bug.
type StringPrefix struct {
	Hi, Lo uint64
}

// StringPrefixFromString builds a key from s's first 16 bytes.
func StringPrefixFromString(s string) StringPrefix {
	var buf [16]byte
	copy(buf[:], s)
	return StringPrefix{
		Hi: binary.BigEndian.Uint64(buf[0:8]),
		Lo: binary.BigEndian.Uint64(buf[8:16]),
	}
}

// IsContainedIn reports whether region's top BitLen bits match the key's.
func (k StringPrefix) IsContainedIn(region StringPrefixRegion) bool {
	return topBitsEqual(region.Hi, region.Lo, k.Hi, k.Lo, region.BitLen)
}

// StringPrefixRegion is a longest-prefix-match region: only its top BitLen
// bits (of a possible 128) are meaningful.
type StringPrefixRegion struct {
	BitLen int
	Hi, Lo uint64
}

// AnyStringPrefix is the universe: zero bits pinned down.
var AnyStringPrefix = StringPrefixRegion{}

// Contains reports whether child agrees with the receiver on the
// receiver's own prefix, and is at least as specific.
func (r StringPrefixRegion) Contains(child StringPrefixRegion) bool {
	return r.BitLen <= child.BitLen && topBitsEqual(r.Hi, r.Lo, child.Hi, child.Lo, r.BitLen)
}

// Overlaps reports whether the shorter of the two prefixes is a prefix of
// the longer.
func (r StringPrefixRegion) Overlaps(other StringPrefixRegion) bool {
	n := r.BitLen
	if other.BitLen < n {
		n = other.BitLen
	}
	return topBitsEqual(r.Hi, r.Lo, other.Hi, other.Lo, n)
}

// NumAxes is always 1 — there is only ever one axis to split (append a bit).
func (r StringPrefixRegion) NumAxes() int { return 1 }

// SplitEvenly appends one bit to the prefix: axis is ignored, since a
// 1-dimensional region only ever has one thing to split.
func (r StringPrefixRegion) SplitEvenly(_ int) (left, right StringPrefixRegion) {
	left = StringPrefixRegion{BitLen: r.BitLen + 1, Hi: r.Hi, Lo: r.Lo}
	rightHi, rightLo := setBit(r.Hi, r.Lo, r.BitLen)
	right = StringPrefixRegion{BitLen: r.BitLen + 1, Hi: rightHi, Lo: rightLo}
	return left, right
}

func setBit(hi, lo uint64, pos int) (uint64, uint64) {
	if pos < 64 {
		return hi | (1 << uint(63-pos)), lo
	}
	return hi, lo | (1 << uint(63-(pos-64)))
}

func topBitsEqual(aHi, aLo, bHi, bLo uint64, n int) bool {
	switch {
	case n <= 0:
		return true
	case n >= 128:
		return aHi == bHi && aLo == bLo
	case n <= 64:
		shift := uint(64 - n)
		return aHi>>shift == bHi>>shift
	default:
		if aHi != bHi {
			return false
		}
		shift := uint(64 - (n - 64))
		return aLo>>shift == bLo>>shift
	}
}

// PointRegion builds the most specific possible region around k: a region
// exactly one key wide, suitable for a carddb-style exact-match lookup
// (the primary key tree's GetReadRef, or an id->value secondary index).
func PointRegion(k StringPrefix) StringPrefixRegion {
	return StringPrefixRegion{BitLen: 128, Hi: k.Hi, Lo: k.Lo}
}

// PrefixRegion builds the region every key sharing s's first bytes falls
// into — the region a name- or type-prefix query box-searches with.
func PrefixRegion(s string) StringPrefixRegion {
	full := StringPrefixFromString(s)
	n := len(s) * 8
	if n > 128 {
		n = 128
	}
	return StringPrefixRegion{BitLen: n, Hi: full.Hi, Lo: full.Lo}
}

// EncodeStringPrefixKey writes the 128-bit key as two fixed u64s; there is
// no parent-relative compression for a single atomic key.
func EncodeStringPrefixKey(buf *bytes.Buffer, k StringPrefix, _ StringPrefixRegion) error {
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], k.Hi)
	binary.BigEndian.PutUint64(b[8:16], k.Lo)
	_, err := buf.Write(b[:])
	return err
}

// DecodeStringPrefixKey is EncodeStringPrefixKey's inverse.
func DecodeStringPrefixKey(r *bytes.Reader, _ StringPrefixRegion) (StringPrefix, error) {
	var b [16]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return StringPrefix{}, err
	}
	return StringPrefix{Hi: binary.BigEndian.Uint64(b[0:8]), Lo: binary.BigEndian.Uint64(b[8:16])}, nil
}

// EncodeStringPrefixRegion writes BitLen as a varint followed by the 128
// bits of prefix (only the top BitLen of which are meaningful, but the
// full width is written to keep decoding branch-free).
func EncodeStringPrefixRegion(buf *bytes.Buffer, r StringPrefixRegion) error {
	if err := codec.WriteUvarint(buf, uint64(r.BitLen)); err != nil {
		return err
	}
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], r.Hi)
	binary.BigEndian.PutUint64(b[8:16], r.Lo)
	_, err := buf.Write(b[:])
	return err
}

// DecodeStringPrefixRegion is EncodeStringPrefixRegion's inverse.
func DecodeStringPrefixRegion(r *bytes.Reader) (StringPrefixRegion, error) {
	bitLen, err := codec.ReadUvarint(r)
	if err != nil {
		return StringPrefixRegion{}, err
	}
	var b [16]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return StringPrefixRegion{}, err
	}
	return StringPrefixRegion{
		BitLen: int(bitLen),
		Hi:     binary.BigEndian.Uint64(b[0:8]),
		Lo:     binary.BigEndian.Uint64(b[8:16]),
	}, nil
}
