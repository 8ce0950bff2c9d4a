package index

import (
	"bytes"

	"github.com/wilSecord/mtg-organizer/internal/codec"
)

// Color is one axis of the 6-dimensional color space. Its round-robin
// order (White, Blue, Red, Green, Black, Colorless) is the axis cycle a
// ColorQuery split walks; it is not the same order the struct fields are
// declared in, which follows WUBRG-plus-colorless instead.
type Color int

const (
	ColorWhite Color = iota
	ColorBlue
	ColorRed
	ColorGreen
	ColorBlack
	ColorColorless
)

// NextAxis advances through the round-robin split order.
func (c Color) NextAxis() Color { return (c + 1) % 6 }

// ColorCombination is a fully-specified point in color space: one bit per
// color, no wildcards. It is the key type stored in the color and color
// identity trees.
type ColorCombination struct {
	White, Blue, Black, Red, Green, Colorless bool
}

// IsContainedIn reports whether every axis query sets matches, or is a
// don't-care, in region.
func (c ColorCombination) IsContainedIn(region ColorQuery) bool {
	return (region.White == nil || *region.White == c.White) &&
		(region.Blue == nil || *region.Blue == c.Blue) &&
		(region.Black == nil || *region.Black == c.Black) &&
		(region.Red == nil || *region.Red == c.Red) &&
		(region.Green == nil || *region.Green == c.Green) &&
		(region.Colorless == nil || *region.Colorless == c.Colorless)
}

// ColorQuery is a 6-tuple of optional bools: nil means "don't care" on
// that axis. It is both the region type the color trees are organized
// around and the shape a compiled query predicate ("c>=wu", "id:colorless")
// narrows down to before it ever reaches a tree.
type ColorQuery struct {
	White, Blue, Black, Red, Green, Colorless *bool
}

// AnyColor is the tree's universe: every axis a don't-care.
var AnyColor = ColorQuery{}

func boolPtr(b bool) *bool { return &b }

// Contains reports whether every axis the receiver pins down agrees with
// other's pin (or other leaves it open) — i.e. every key matching other
// also matches the receiver.
func (r ColorQuery) Contains(other ColorQuery) bool {
	return axisContains(r.White, other.White) &&
		axisContains(r.Blue, other.Blue) &&
		axisContains(r.Black, other.Black) &&
		axisContains(r.Red, other.Red) &&
		axisContains(r.Green, other.Green) &&
		axisContains(r.Colorless, other.Colorless)
}

func axisContains(self, other *bool) bool {
	return self == nil || (other != nil && *self == *other)
}

// Overlaps reports whether some key satisfies both regions at once: every
// axis where both sides pin a value must agree.
func (r ColorQuery) Overlaps(other ColorQuery) bool {
	return axisOverlaps(r.White, other.White) &&
		axisOverlaps(r.Blue, other.Blue) &&
		axisOverlaps(r.Black, other.Black) &&
		axisOverlaps(r.Red, other.Red) &&
		axisOverlaps(r.Green, other.Green) &&
		axisOverlaps(r.Colorless, other.Colorless)
}

func axisOverlaps(a, b *bool) bool {
	return a == nil || b == nil || *a == *b
}

// Intersect narrows r to the portion it shares with other: an axis pinned
// by only one side keeps that side's pin, an axis pinned by both must
// agree (ok is false otherwise — the compiler's two color candidates can
// never both match the same card), and an axis neither side pins stays a
// don't-care.
func (r ColorQuery) Intersect(other ColorQuery) (ColorQuery, bool) {
	out := ColorQuery{}
	axes := []struct {
		self, other *bool
		dst         **bool
	}{
		{r.White, other.White, &out.White},
		{r.Blue, other.Blue, &out.Blue},
		{r.Black, other.Black, &out.Black},
		{r.Red, other.Red, &out.Red},
		{r.Green, other.Green, &out.Green},
		{r.Colorless, other.Colorless, &out.Colorless},
	}
	for _, a := range axes {
		switch {
		case a.self == nil:
			*a.dst = a.other
		case a.other == nil:
			*a.dst = a.self
		case *a.self != *a.other:
			return ColorQuery{}, false
		default:
			*a.dst = a.self
		}
	}
	return out, true
}

// NumAxes is 6: one per color.
func (r ColorQuery) NumAxes() int { return 6 }

// SplitEvenly fixes axis to false in the left half and true in the right
// half. An axis the region already pins is left untouched on both sides —
// mirroring a get-or-insert, this only ever happens if a caller requests a
// split on an axis round-robin wouldn't have picked next.
func (r ColorQuery) SplitEvenly(axis int) (left, right ColorQuery) {
	left, right = r, r
	switch Color(axis) {
	case ColorWhite:
		if r.White == nil {
			left.White, right.White = boolPtr(false), boolPtr(true)
		}
	case ColorBlue:
		if r.Blue == nil {
			left.Blue, right.Blue = boolPtr(false), boolPtr(true)
		}
	case ColorRed:
		if r.Red == nil {
			left.Red, right.Red = boolPtr(false), boolPtr(true)
		}
	case ColorGreen:
		if r.Green == nil {
			left.Green, right.Green = boolPtr(false), boolPtr(true)
		}
	case ColorBlack:
		if r.Black == nil {
			left.Black, right.Black = boolPtr(false), boolPtr(true)
		}
	case ColorColorless:
		if r.Colorless == nil {
			left.Colorless, right.Colorless = boolPtr(false), boolPtr(true)
		}
	}
	return left, right
}

// EncodeColorKey packs a ColorCombination into the single byte described in the
// serialization notes: one bit per color. The parent region doesn't
// narrow a fully-specified point any further, so there's nothing to
// compress it against.
func EncodeColorKey(buf *bytes.Buffer, c ColorCombination, _ ColorQuery) error {
	buf.WriteByte(codec.PackBools(c.White, c.Blue, c.Black, c.Red, c.Green, c.Colorless))
	return nil
}

// DecodeColorKey is EncodeColorKey's inverse.
func DecodeColorKey(r *bytes.Reader, _ ColorQuery) (ColorCombination, error) {
	b, err := codec.ReadByte(r)
	if err != nil {
		return ColorCombination{}, err
	}
	bits := codec.UnpackBools(b, 6)
	return ColorCombination{
		White: bits[0], Blue: bits[1], Black: bits[2],
		Red: bits[3], Green: bits[4], Colorless: bits[5],
	}, nil
}

// EncodeColorRegion packs a ColorQuery as a base-3 integer (false=0, true=1,
// don't-care=2 per axis), most-significant axis first.
func EncodeColorRegion(buf *bytes.Buffer, r ColorQuery) error {
	n := uint64(0)
	for _, p := range []*bool{r.White, r.Blue, r.Black, r.Red, r.Green, r.Colorless} {
		n = n*3 + axisIdx(p)
	}
	return codec.WriteUvarint(buf, n)
}

func axisIdx(p *bool) uint64 {
	if p == nil {
		return 2
	}
	if *p {
		return 1
	}
	return 0
}

func axisFromIdx(i uint64) *bool {
	switch i % 3 {
	case 0:
		return boolPtr(false)
	case 1:
		return boolPtr(true)
	default:
		return nil
	}
}

// DecodeColorRegion is EncodeColorRegion's inverse.
func DecodeColorRegion(r *bytes.Reader) (ColorQuery, error) {
	n, err := codec.ReadUvarint(r)
	if err != nil {
		return ColorQuery{}, err
	}
	var digits [6]uint64
	for i := 5; i >= 0; i-- {
		digits[i] = n % 3
		n /= 3
	}
	return ColorQuery{
		White:     axisFromIdx(digits[0]),
		Blue:      axisFromIdx(digits[1]),
		Black:     axisFromIdx(digits[2]),
		Red:       axisFromIdx(digits[3]),
		Green:     axisFromIdx(digits[4]),
		Colorless: axisFromIdx(digits[5]),
	}, nil
}
