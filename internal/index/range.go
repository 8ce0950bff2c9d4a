// Package index implements the region/key pairs ktree.Tree is instantiated
// over for each queryable aspect of a card: color, color identity, mana
// cost shape, stat line, name prefix, rarity/supertype, and oracle-text
// trigrams. Each type here is deliberately small and self-contained — it
// knows nothing about cards, only about its own slice of the key space —
// so the card package can derive one from a Card without this package
// ever importing that one back.
package index

// Range is an inclusive integer bound along one axis of a range-query
// region. It backs every counter-shaped index (mana cost, stats) so the
// bisection and containment math is written once.
type Range struct {
	Lo, Hi int
}

func rangesContains(self, other []Range) bool {
	for i := range self {
		if other[i].Lo < self[i].Lo || other[i].Hi > self[i].Hi {
			return false
		}
	}
	return true
}

func rangesOverlap(a, b []Range) bool {
	for i := range a {
		if a[i].Hi < b[i].Lo || a[i].Lo > b[i].Hi {
			return false
		}
	}
	return true
}

// rangesIntersect computes the per-axis overlap of a and b. ok is false if
// any axis ends up empty (lo > hi), meaning the two boxes share no point.
func rangesIntersect(a, b []Range) (result []Range, ok bool) {
	out := make([]Range, len(a))
	for i := range a {
		lo, hi := a[i].Lo, a[i].Hi
		if b[i].Lo > lo {
			lo = b[i].Lo
		}
		if b[i].Hi < hi {
			hi = b[i].Hi
		}
		if lo > hi {
			return nil, false
		}
		out[i] = Range{lo, hi}
	}
	return out, true
}

func rangesSplit(axes []Range, axis int) (left, right []Range) {
	left = append([]Range(nil), axes...)
	right = append([]Range(nil), axes...)
	r := axes[axis]
	mid := r.Lo + (r.Hi-r.Lo)/2
	if mid < r.Lo {
		mid = r.Lo
	}
	left[axis] = Range{r.Lo, mid}
	right[axis] = Range{mid + 1, r.Hi}
	return left, right
}

func valuesContained(values []int, axes []Range) bool {
	for i, v := range values {
		if v < axes[i].Lo || v > axes[i].Hi {
			return false
		}
	}
	return true
}
