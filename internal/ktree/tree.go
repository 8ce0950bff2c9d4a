// Package ktree implements the generalized multidimensional sparse tree
// that backs every index in the card database: a single primary key->Card
// tree, plus one tree per secondary index (color, mana cost, stats, name
// prefix, ...), all sharing the same page-store idiom. Regions are
// axis-aligned boxes in a D-dimensional discrete space; a tree holds one
// region per page and splits along a round-robin axis once a leaf overflows.
package ktree

import (
	"bytes"
	"fmt"

	"github.com/wilSecord/mtg-organizer/internal/codec"
	"github.com/wilSecord/mtg-organizer/internal/pagestore"
)

// Region is an axis-aligned box in a D-dimensional key space. Implementors
// must be comparable-by-value (regions are copied freely; a tree never
// mutates one in place).
type Region[Q any] interface {
	// Contains reports whether other is entirely within the receiver.
	Contains(other Q) bool
	// Overlaps reports whether the receiver and other share any point.
	Overlaps(other Q) bool
	// SplitEvenly bisects the receiver along axis into two regions whose
	// union is the receiver and which do not overlap.
	SplitEvenly(axis int) (left, right Q)
	// NumAxes is the region's dimensionality D, used to round-robin axis.
	NumAxes() int
}

// Key is a single point in the space a Region[Q] describes.
type Key[K any, Q any] interface {
	// IsContainedIn reports whether the key falls inside region.
	IsContainedIn(region Q) bool
}

// Codec supplies the region/key/value (de)serialization a Tree needs.
// Key encoding is relative to a region (the "delta from parent" compression
// described for the on-disk format): the same key serializes to fewer
// bytes under a narrower region.
type Codec[Q any, K any, V any] struct {
	EncodeRegion func(w *bytes.Buffer, r Q) error
	DecodeRegion func(r *bytes.Reader) (Q, error)
	EncodeKey    func(w *bytes.Buffer, k K, parent Q) error
	DecodeKey    func(r *bytes.Reader, parent Q) (K, error)
	EncodeValue  func(w *bytes.Buffer, v V) error
	DecodeValue  func(r *bytes.Reader) (V, error)
}

type entry[K any, V any] struct {
	Key   K
	Value V
}

type nodeTag byte

const (
	tagLeaf  nodeTag = 0
	tagInner nodeTag = 1
)

// node is the decoded form of every non-root page: either a leaf holding
// entries directly, or an inner node holding the two children a prior
// split produced. A child's region is never stored — it is recomputed by
// re-running SplitEvenly on the parent's region and axis, which is
// deterministic and saves a region's worth of bytes per child pointer.
type node[K any, V any] struct {
	IsLeaf  bool
	Entries []entry[K, V] // leaf only

	Axis  int // inner only: the axis this node's own split used
	Left  pagestore.PageID
	Right pagestore.PageID
}

type rootPage[Q any, K any, V any] struct {
	Universe Q
	Axis     int // round-robin axis the *next* split performed under Child uses
	Child    pagestore.PageID
	Overflow []entry[K, V]
}

// Tree is a persistent key->value map over a D-dimensional discrete space,
// stored as a DAG of pages in a pagestore.Store. LeafCap bounds how many
// entries a leaf page holds before it splits.
type Tree[Q Region[Q], K Key[K, Q], V any] struct {
	pages   *pagestore.Store
	codec   Codec[Q, K, V]
	rootID  pagestore.PageID
	leafCap int
	numAxes int
	univ    Q
}

// Open attaches to an existing tree's root page, or — when rootID is
// pagestore.NullPage — creates a fresh, empty tree rooted at universe and
// returns the page id the caller should persist (in, say, a carddb layout
// page) for next time.
func Open[Q Region[Q], K Key[K, Q], V any](store *pagestore.Store, rootID pagestore.PageID, universe Q, c Codec[Q, K, V], leafCap int) (*Tree[Q, K, V], pagestore.PageID, error) {
	t := &Tree[Q, K, V]{
		pages:   store,
		codec:   c,
		leafCap: leafCap,
		numAxes: universe.NumAxes(),
		univ:    universe,
	}

	if rootID != pagestore.NullPage {
		t.rootID = rootID
		root, err := t.readRoot()
		if err != nil {
			return nil, pagestore.NullPage, err
		}
		t.univ = root.Universe
		return t, rootID, nil
	}

	root := rootPage[Q, K, V]{Universe: universe, Axis: 0, Child: pagestore.NullPage}
	id, err := store.NewPageWith(func(pagestore.PageID) ([]byte, error) {
		return t.encodeRoot(root)
	})
	if err != nil {
		return nil, pagestore.NullPage, err
	}
	t.rootID = id
	return t, id, nil
}

// Universe returns the tree's root region (every key ever inserted is
// contained in it).
func (t *Tree[Q, K, V]) Universe() Q { return t.univ }

// RootID returns the page id a caller (carddb's layout page) should
// persist to reattach to this tree on a later Open.
func (t *Tree[Q, K, V]) RootID() pagestore.PageID { return t.rootID }

func (t *Tree[Q, K, V]) nextAxis(axis int) int {
	return (axis + 1) % t.numAxes
}

// Insert adds key->value. Re-inserting an already-present key appends a
// second entry rather than replacing the first — callers that want
// replace semantics (the primary card tree does) must arrange that
// themselves, e.g. by checking GetReadRef first. Deletion is not supported.
func (t *Tree[Q, K, V]) Insert(key K, value V) error {
	root, err := t.readRoot()
	if err != nil {
		return err
	}

	if root.Child == pagestore.NullPage {
		root.Overflow = append(root.Overflow, entry[K, V]{key, value})
		if len(root.Overflow) > t.leafCap {
			childID, err := t.buildNode(root.Universe, root.Axis, root.Overflow)
			if err != nil {
				return err
			}
			root.Child = childID
			root.Overflow = nil
		}
		return t.writeRoot(root)
	}

	return t.insertInto(root.Child, root.Universe, root.Axis, key, value)
}

// insertInto descends into the subtree rooted at id (covering region, with
// axis the split axis a leaf found there would use) and inserts key/value.
// A leaf's own page id never changes when it splits into an inner node —
// the inner node is written back over the same id — so no parent ever
// needs to learn about a child's split.
func (t *Tree[Q, K, V]) insertInto(id pagestore.PageID, region Q, axis int, key K, value V) error {
	n, err := t.readNode(id, region)
	if err != nil {
		return err
	}

	if !n.IsLeaf {
		left, right := region.SplitEvenly(n.Axis)
		next := t.nextAxis(n.Axis)
		switch {
		case key.IsContainedIn(left):
			return t.insertInto(n.Left, left, next, key, value)
		case key.IsContainedIn(right):
			return t.insertInto(n.Right, right, next, key, value)
		default:
			return fmt.Errorf("ktree: key fits neither half of region split on axis %d", n.Axis)
		}
	}

	n.Entries = append(n.Entries, entry[K, V]{key, value})
	if len(n.Entries) <= t.leafCap {
		return t.putNode(id, region, n)
	}

	left, right := region.SplitEvenly(axis)
	var leftEntries, rightEntries []entry[K, V]
	for _, e := range n.Entries {
		if e.Key.IsContainedIn(left) {
			leftEntries = append(leftEntries, e)
		} else {
			rightEntries = append(rightEntries, e)
		}
	}
	next := t.nextAxis(axis)
	leftID, err := t.putNewNode(left, node[K, V]{IsLeaf: true, Entries: leftEntries})
	if err != nil {
		return err
	}
	rightID, err := t.putNewNode(right, node[K, V]{IsLeaf: true, Entries: rightEntries})
	if err != nil {
		return err
	}
	return t.putNode(id, region, node[K, V]{IsLeaf: false, Axis: axis, Left: leftID, Right: rightID})
}

// buildNode materializes a fresh subtree covering region for entries,
// splitting recursively (starting on axis, round-robin thereafter) until
// every leaf is within leafCap. Used to flush the root overflow buffer,
// where many entries can land in one shot rather than one at a time.
func (t *Tree[Q, K, V]) buildNode(region Q, axis int, entries []entry[K, V]) (pagestore.PageID, error) {
	if len(entries) <= t.leafCap {
		return t.putNewNode(region, node[K, V]{IsLeaf: true, Entries: entries})
	}

	left, right := region.SplitEvenly(axis)
	var leftEntries, rightEntries []entry[K, V]
	for _, e := range entries {
		if e.Key.IsContainedIn(left) {
			leftEntries = append(leftEntries, e)
		} else {
			rightEntries = append(rightEntries, e)
		}
	}
	next := t.nextAxis(axis)
	leftID, err := t.buildNode(left, next, leftEntries)
	if err != nil {
		return pagestore.NullPage, err
	}
	rightID, err := t.buildNode(right, next, rightEntries)
	if err != nil {
		return pagestore.NullPage, err
	}
	return t.putNewNode(region, node[K, V]{IsLeaf: false, Axis: axis, Left: leftID, Right: rightID})
}

// Condense flushes any pending overflow entries into the tree body. It is
// a no-op when the overflow buffer is empty, so calling it speculatively
// after a batch load is always safe.
func (t *Tree[Q, K, V]) Condense() error {
	root, err := t.readRoot()
	if err != nil {
		return err
	}
	if len(root.Overflow) == 0 {
		return nil
	}

	if root.Child == pagestore.NullPage {
		childID, err := t.buildNode(root.Universe, root.Axis, root.Overflow)
		if err != nil {
			return err
		}
		root.Child = childID
	} else {
		for _, e := range root.Overflow {
			if err := t.insertInto(root.Child, root.Universe, root.Axis, e.Key, e.Value); err != nil {
				return err
			}
		}
	}
	root.Overflow = nil
	return t.writeRoot(root)
}

// GetReadRef runs a point query (point expressed as a region containing
// exactly one key, e.g. a 1-entry range) and returns its value. found is
// false when nothing in the tree sits inside point.
func (t *Tree[Q, K, V]) GetReadRef(point Q) (value V, found bool, err error) {
	it := t.FindEntriesInBox(point)
	for _, v := range it.All() {
		return v, true, nil
	}
	return value, false, it.Err()
}

func (t *Tree[Q, K, V]) readRoot() (rootPage[Q, K, V], error) {
	raw, err := t.pages.Read(t.rootID)
	if err != nil {
		return rootPage[Q, K, V]{}, err
	}
	r := bytes.NewReader(raw)

	universe, err := t.codec.DecodeRegion(r)
	if err != nil {
		return rootPage[Q, K, V]{}, err
	}
	axis, err := codec.ReadUvarint(r)
	if err != nil {
		return rootPage[Q, K, V]{}, err
	}
	child, err := codec.ReadUvarint(r)
	if err != nil {
		return rootPage[Q, K, V]{}, err
	}
	count, err := codec.ReadUvarint(r)
	if err != nil {
		return rootPage[Q, K, V]{}, err
	}
	overflow := make([]entry[K, V], 0, count)
	for i := uint64(0); i < count; i++ {
		k, err := t.codec.DecodeKey(r, universe)
		if err != nil {
			return rootPage[Q, K, V]{}, err
		}
		v, err := t.codec.DecodeValue(r)
		if err != nil {
			return rootPage[Q, K, V]{}, err
		}
		overflow = append(overflow, entry[K, V]{k, v})
	}

	return rootPage[Q, K, V]{
		Universe: universe,
		Axis:     int(axis),
		Child:    pagestore.PageID(child),
		Overflow: overflow,
	}, nil
}

func (t *Tree[Q, K, V]) writeRoot(root rootPage[Q, K, V]) error {
	data, err := t.encodeRoot(root)
	if err != nil {
		return err
	}
	return t.pages.Write(t.rootID, data)
}

func (t *Tree[Q, K, V]) encodeRoot(root rootPage[Q, K, V]) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.codec.EncodeRegion(&buf, root.Universe); err != nil {
		return nil, err
	}
	if err := codec.WriteUvarint(&buf, uint64(root.Axis)); err != nil {
		return nil, err
	}
	if err := codec.WriteUvarint(&buf, uint64(root.Child)); err != nil {
		return nil, err
	}
	if err := codec.WriteUvarint(&buf, uint64(len(root.Overflow))); err != nil {
		return nil, err
	}
	for _, e := range root.Overflow {
		if err := t.codec.EncodeKey(&buf, e.Key, root.Universe); err != nil {
			return nil, err
		}
		if err := t.codec.EncodeValue(&buf, e.Value); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (t *Tree[Q, K, V]) readNode(id pagestore.PageID, region Q) (node[K, V], error) {
	raw, err := t.pages.Read(id)
	if err != nil {
		return node[K, V]{}, err
	}
	r := bytes.NewReader(raw)

	tagByte, err := codec.ReadByte(r)
	if err != nil {
		return node[K, V]{}, err
	}

	switch nodeTag(tagByte) {
	case tagLeaf:
		count, err := codec.ReadUvarint(r)
		if err != nil {
			return node[K, V]{}, err
		}
		entries := make([]entry[K, V], 0, count)
		for i := uint64(0); i < count; i++ {
			k, err := t.codec.DecodeKey(r, region)
			if err != nil {
				return node[K, V]{}, err
			}
			v, err := t.codec.DecodeValue(r)
			if err != nil {
				return node[K, V]{}, err
			}
			entries = append(entries, entry[K, V]{k, v})
		}
		return node[K, V]{IsLeaf: true, Entries: entries}, nil

	case tagInner:
		axis, err := codec.ReadUvarint(r)
		if err != nil {
			return node[K, V]{}, err
		}
		left, err := codec.ReadUvarint(r)
		if err != nil {
			return node[K, V]{}, err
		}
		right, err := codec.ReadUvarint(r)
		if err != nil {
			return node[K, V]{}, err
		}
		return node[K, V]{IsLeaf: false, Axis: int(axis), Left: pagestore.PageID(left), Right: pagestore.PageID(right)}, nil

	default:
		return node[K, V]{}, fmt.Errorf("ktree: unknown node tag %d", tagByte)
	}
}

func (t *Tree[Q, K, V]) putNode(id pagestore.PageID, region Q, n node[K, V]) error {
	data, err := t.encodeNode(region, n)
	if err != nil {
		return err
	}
	return t.pages.Write(id, data)
}

func (t *Tree[Q, K, V]) putNewNode(region Q, n node[K, V]) (pagestore.PageID, error) {
	return t.pages.NewPageWith(func(pagestore.PageID) ([]byte, error) {
		return t.encodeNode(region, n)
	})
}

func (t *Tree[Q, K, V]) encodeNode(region Q, n node[K, V]) ([]byte, error) {
	var buf bytes.Buffer
	if n.IsLeaf {
		buf.WriteByte(byte(tagLeaf))
		if err := codec.WriteUvarint(&buf, uint64(len(n.Entries))); err != nil {
			return nil, err
		}
		for _, e := range n.Entries {
			if err := t.codec.EncodeKey(&buf, e.Key, region); err != nil {
				return nil, err
			}
			if err := t.codec.EncodeValue(&buf, e.Value); err != nil {
				return nil, err
			}
		}
		return buf.Bytes(), nil
	}

	buf.WriteByte(byte(tagInner))
	if err := codec.WriteUvarint(&buf, uint64(n.Axis)); err != nil {
		return nil, err
	}
	if err := codec.WriteUvarint(&buf, uint64(n.Left)); err != nil {
		return nil, err
	}
	if err := codec.WriteUvarint(&buf, uint64(n.Right)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
