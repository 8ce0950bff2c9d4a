package ktree

import (
	"iter"

	"github.com/wilSecord/mtg-organizer/internal/pagestore"
)

// EntryIter is a restartable lazy sequence over (key, value) pairs found
// by a box query. Call All and range over it; after ranging fully (or
// breaking early with every match already seen), check Err for any I/O
// failure the walk hit along the way — mirroring bufio.Scanner's
// scan-then-Err idiom, since iter.Seq2 has no room for an error return.
type EntryIter[Q Region[Q], K Key[K, Q], V any] struct {
	tree  *Tree[Q, K, V]
	query Q
	err   error
}

// All returns the sequence itself. Re-ranging it re-runs the walk from
// scratch — a fresh tree read each time, never cached — so it stays valid
// across concurrent inserts made between two ranges (each of which takes
// its own page reads).
func (it *EntryIter[Q, K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		it.err = nil
		root, err := it.tree.readRoot()
		if err != nil {
			it.err = err
			return
		}
		for _, e := range root.Overflow {
			if e.Key.IsContainedIn(it.query) {
				if !yield(e.Key, e.Value) {
					return
				}
			}
		}
		if root.Child == pagestore.NullPage {
			return
		}
		it.tree.walk(root.Child, root.Universe, it.query, yield, it)
	}
}

// Err reports any I/O error the most recent walk hit. Call it after
// ranging over All, the same way you'd call bufio.Scanner.Err.
func (it *EntryIter[Q, K, V]) Err() error { return it.err }

// walk depth-first visits every subtree whose region overlaps query,
// yielding leaf entries that are actually contained in query. It returns
// false to signal the caller (a parent walk or All itself) to stop
// recursing, either because the consumer broke out of range or because an
// I/O error occurred.
func (t *Tree[Q, K, V]) walk(id pagestore.PageID, region Q, query Q, yield func(K, V) bool, it *EntryIter[Q, K, V]) bool {
	if !region.Overlaps(query) {
		return true
	}

	n, err := t.readNode(id, region)
	if err != nil {
		it.err = err
		return false
	}

	if n.IsLeaf {
		for _, e := range n.Entries {
			if e.Key.IsContainedIn(query) {
				if !yield(e.Key, e.Value) {
					return false
				}
			}
		}
		return true
	}

	left, right := region.SplitEvenly(n.Axis)
	if !t.walk(n.Left, left, query, yield, it) {
		return false
	}
	return t.walk(n.Right, right, query, yield, it)
}

// FindEntriesInBox returns a lazy, restartable sequence of every (key,
// value) pair whose key is contained in query.
func (t *Tree[Q, K, V]) FindEntriesInBox(query Q) *EntryIter[Q, K, V] {
	return &EntryIter[Q, K, V]{tree: t, query: query}
}

// ItemIter is FindEntriesInBox's value-only counterpart.
type ItemIter[Q Region[Q], K Key[K, Q], V any] struct {
	entries *EntryIter[Q, K, V]
}

// All returns the value-only sequence.
func (it *ItemIter[Q, K, V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		it.entries.All()(func(_ K, v V) bool { return yield(v) })
	}
}

// Err reports any I/O error from the most recent walk.
func (it *ItemIter[Q, K, V]) Err() error { return it.entries.Err() }

// FindItemsInBox returns a lazy, restartable sequence of every value whose
// key is contained in query.
func (t *Tree[Q, K, V]) FindItemsInBox(query Q) *ItemIter[Q, K, V] {
	return &ItemIter[Q, K, V]{entries: t.FindEntriesInBox(query)}
}
