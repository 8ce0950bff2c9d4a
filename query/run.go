package query

import (
	"iter"

	"github.com/wilSecord/mtg-organizer/card"
	"github.com/wilSecord/mtg-organizer/carddb"
)

// cardSource is the lazy-iterator shape every carddb query method returns
// (carddb.CardIter and its unexported AllCards counterpart both satisfy
// it structurally).
type cardSource interface {
	All() iter.Seq[card.Card]
	Err() error
}

// Result is what Run returns: a lazy sequence of cards that already passed
// the compiled residual predicate.
type Result struct {
	src   cardSource
	tree  DbQueryTree
	empty bool
	err   error
}

// All returns the sequence. Ranging over it again re-runs the underlying
// index scan and residual filter from scratch, mirroring carddb.CardIter's
// own restartable idiom.
func (r *Result) All() iter.Seq[card.Card] {
	return func(yield func(card.Card) bool) {
		r.err = nil
		if r.empty {
			return
		}
		for c := range r.src.All() {
			if !r.tree.Evaluate(c) {
				continue
			}
			if !yield(c) {
				return
			}
		}
		r.err = r.src.Err()
	}
}

// Err reports any I/O error hit by the most recent full range over All.
func (r *Result) Err() error { return r.err }

// Run drives the compiled query against db, per §4.6.5:
//   - Index == Empty: yield nothing, no tree touched.
//   - Index == Some(...): drive the matching query_* method, then filter
//     every candidate through the residual tree.
//   - Index == None: iterate every card and filter.
func (q *DbQuery) Run(db *carddb.DB) *Result {
	if q.Index != nil && q.Index.Kind == IndexEmpty {
		return &Result{empty: true, tree: q.Tree}
	}

	var src cardSource
	switch {
	case q.Index == nil:
		src = db.AllCards()
	default:
		switch q.Index.Kind {
		case IndexColor:
			src = db.QueryColor(q.Index.Color)
		case IndexColorID:
			src = db.QueryColorID(q.Index.Color)
		case IndexCardStats:
			src = db.QueryStats(q.Index.Stats)
		case IndexType:
			src = db.QueryType(q.Index.Type)
		case IndexManaCost:
			src = db.QueryMana(q.Index.ManaCost)
		case IndexNameExact:
			// QueryName is a prefix scan; the residual tree's FieldNameExact
			// predicate still enforces the exact match against each
			// candidate row, same as the trigram accelerator pattern in
			// carddb.QueryOracleTrigrams.
			src = db.QueryName(q.Index.Type)
		case IndexRaritySupertype:
			src = db.QueryRaritySupertype(q.Index.Rarity)
		}
	}
	return &Result{src: src, tree: q.Tree}
}
