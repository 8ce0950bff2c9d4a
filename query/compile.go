package query

import (
	"strconv"
	"strings"

	"github.com/wilSecord/mtg-organizer/card"
	"github.com/wilSecord/mtg-organizer/internal/index"
)

// IndexParamKind is which secondary index (if any) a compiled query can be
// driven by, mirroring DbQueryIndex.
type IndexParamKind int

const (
	IndexColor IndexParamKind = iota
	IndexColorID
	IndexCardStats
	IndexType
	IndexManaCost
	IndexNameExact
	IndexRaritySupertype
	// IndexEmpty marks a query whose index candidates can provably never
	// both match the same card (§4.6.4 rule 2's "intersecting two regions
	// that share no point produces Empty and emits a warning"). Run
	// recognizes this and yields nothing without touching any tree.
	IndexEmpty
)

// IndexParam is the single index scan a compiled query can drive off of.
// Only the field matching Kind is meaningful.
type IndexParam struct {
	Kind     IndexParamKind
	Color    index.ColorQuery
	Stats    index.CardStatsRegion
	ManaCost index.ManaCostRegion
	Rarity   index.RaritySupertypeRegion
	Type     string
}

// FieldKind enumerates every residual predicate a search term can compile
// to. The first eleven mirror spec.md §4.6.4's FieldPredicate list exactly;
// Rarity and Supertype are SPEC_FULL.md's supplemented `rarity`/`r` and
// `is` keywords.
type FieldKind int

const (
	FieldColor FieldKind = iota
	FieldColorID
	FieldType
	FieldTypeNot
	FieldNameIncludes
	FieldNameExact
	FieldNameNotIncludes
	FieldNotNameExact
	FieldOracleIncludes
	FieldOracleNotIncludes
	FieldCardStats
	FieldManaCost
	FieldRarity
	FieldSupertype
	FieldNotSupertype
	FieldTerm // bare positive term outside the fast path (e.g. inside an Or)
	FieldNegTerm
)

// FieldPredicate is one leaf of the residual tree every candidate row is
// re-checked against, regardless of which index (if any) produced it.
type FieldPredicate struct {
	Kind          FieldKind
	Str           string
	Color         index.ColorQuery
	Stats         index.CardStatsRegion
	ManaCost      index.ManaCostRegion
	Rarity        index.RaritySupertypeRegion
	SupertypeMask int
}

// Evaluate reports whether c satisfies the predicate. fuzzyContains
// implements §4.6.4 rule 5: case-insensitive, whitespace-ignored-on-both-
// sides substring matching.
func (f FieldPredicate) Evaluate(c card.Card) bool {
	switch f.Kind {
	case FieldColor:
		return c.DeriveColorKey().IsContainedIn(f.Color)
	case FieldColorID:
		return c.DeriveColorIDKey().IsContainedIn(f.Color)
	case FieldType:
		return anyFuzzyContains(typeLines(c), f.Str)
	case FieldTypeNot:
		return !anyFuzzyContains(typeLines(c), f.Str)
	case FieldNameIncludes:
		return fuzzyContains(c.Name, f.Str)
	case FieldNameNotIncludes:
		return !fuzzyContains(c.Name, f.Str)
	case FieldNameExact:
		return strings.EqualFold(c.Name, f.Str)
	case FieldNotNameExact:
		return !strings.EqualFold(c.Name, f.Str)
	case FieldOracleIncludes:
		return fuzzyContains(c.OracleText, f.Str)
	case FieldOracleNotIncludes:
		return !fuzzyContains(c.OracleText, f.Str)
	case FieldCardStats:
		return c.DeriveCardStats().IsContainedIn(f.Stats)
	case FieldManaCost:
		return card.DeriveManaCostCount(c.ManaCost).IsContainedIn(f.ManaCost)
	case FieldRarity:
		return c.DeriveRaritySupertype().IsContainedIn(f.Rarity)
	case FieldSupertype:
		return c.DeriveRaritySupertype().Supertypes&f.SupertypeMask != 0
	case FieldNotSupertype:
		return c.DeriveRaritySupertype().Supertypes&f.SupertypeMask == 0
	case FieldTerm:
		return fuzzyContains(c.Name, f.Str) || fuzzyContains(c.OracleText, f.Str) || anyFuzzyContains(typeLines(c), f.Str)
	case FieldNegTerm:
		return !(fuzzyContains(c.Name, f.Str) || fuzzyContains(c.OracleText, f.Str) || anyFuzzyContains(typeLines(c), f.Str))
	}
	return false
}

func typeLines(c card.Card) []string {
	return append(append([]string{}, c.Types...), c.Subtypes...)
}

func anyFuzzyContains(haystacks []string, needle string) bool {
	for _, h := range haystacks {
		if fuzzyContains(h, needle) {
			return true
		}
	}
	return false
}

// fuzzyContains scans every starting position of haystack for needle,
// case-insensitively, skipping ASCII whitespace in both strings as it
// compares — so "enters tapped" matches oracle text wrapped across a
// reminder-text newline or extra spacing.
func fuzzyContains(haystack, needle string) bool {
	h := []rune(strings.ToLower(haystack))
	n := []rune(strings.ToLower(needle))
	n = stripSpaces(n)
	if len(n) == 0 {
		return true
	}
	for start := 0; start < len(h); start++ {
		hi, ni := start, 0
		for hi < len(h) && ni < len(n) {
			if isRuneSpace(h[hi]) {
				hi++
				continue
			}
			if isRuneSpace(n[ni]) {
				ni++
				continue
			}
			if h[hi] != n[ni] {
				break
			}
			hi++
			ni++
		}
		if ni == len(n) {
			return true
		}
	}
	return false
}

func stripSpaces(rs []rune) []rune {
	out := rs[:0:0]
	for _, r := range rs {
		if !isRuneSpace(r) {
			out = append(out, r)
		}
	}
	return out
}

func isRuneSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

// indexParamOf reports the IndexParam a predicate can drive, if any —
// DbQueryFieldParam::into_index_param's Go equivalent.
func indexParamOf(f FieldPredicate) (IndexParam, bool) {
	switch f.Kind {
	case FieldColor:
		return IndexParam{Kind: IndexColor, Color: f.Color}, true
	case FieldColorID:
		return IndexParam{Kind: IndexColorID, Color: f.Color}, true
	case FieldType:
		return IndexParam{Kind: IndexType, Type: f.Str}, true
	case FieldCardStats:
		return IndexParam{Kind: IndexCardStats, Stats: f.Stats}, true
	case FieldManaCost:
		return IndexParam{Kind: IndexManaCost, ManaCost: f.ManaCost}, true
	case FieldNameExact:
		return IndexParam{Kind: IndexNameExact, Type: f.Str}, true
	case FieldRarity:
		return IndexParam{Kind: IndexRaritySupertype, Rarity: f.Rarity}, true
	default:
		return IndexParam{}, false
	}
}

// DbQueryTreeKind distinguishes the three shapes a compiled residual tree
// node can take, mirroring DbQueryTree.
type DbQueryTreeKind int

const (
	DbAnd DbQueryTreeKind = iota
	DbOr
	DbTerm
)

// DbQueryTree is the compiled residual predicate tree: it is always built,
// even when an index drives the scan, and enforces the full predicate
// against every candidate row (§4.6.4 rule 3).
type DbQueryTree struct {
	Kind     DbQueryTreeKind
	Children []DbQueryTree
	Term     FieldPredicate
}

// Evaluate walks the tree against c.
func (t DbQueryTree) Evaluate(c card.Card) bool {
	switch t.Kind {
	case DbAnd:
		for _, child := range t.Children {
			if !child.Evaluate(c) {
				return false
			}
		}
		return true
	case DbOr:
		for _, child := range t.Children {
			if child.Evaluate(c) {
				return true
			}
		}
		return false
	default:
		return t.Term.Evaluate(c)
	}
}

// DbQuery is a fully compiled search: an optional index to drive the scan,
// and the residual predicate every candidate must still pass.
type DbQuery struct {
	Index *IndexParam
	Tree  DbQueryTree
}

// BuildSearchQuery runs the lex/parse/flatten/compile pipeline over raw.
// When the query is a bare bag of positive terms with no keywords, no
// negation, no Or, and no parens (§4.6.4 rule 1), it returns
// (nil, joinedTerms, true) so the caller can fall back to fuzzy name
// matching instead of a structured query. A nil DbQuery with fastPath
// false means the pipeline failed outright (a Message was already sent to
// sink explaining why); the caller's fallback in that case is still the
// original raw query text, just not by way of the fast path.
func BuildSearchQuery(raw string, sink MessageSink) (q *DbQuery, fastPathText string, fastPath bool) {
	sq := Parse(raw, sink)
	if sq == nil {
		return nil, raw, false
	}
	*sq = Flatten(*sq)

	if text, ok := fastPathTerms(*sq); ok {
		return nil, text, true
	}

	dq, ok := compile(*sq, sink)
	if !ok {
		return nil, raw, false
	}
	return dq, "", false
}

// fastPathTerms reports whether q is purely an And of (or a single) bare
// positive Term — no keywords, no negation, no Or, no parens — and if so
// returns the terms joined by a single space.
func fastPathTerms(q SearchQuery) (string, bool) {
	switch q.Kind {
	case QueryTerm:
		if q.Term.Kind == TermBare {
			return q.Term.Val, true
		}
		return "", false
	case QueryAnd:
		var words []string
		for _, child := range q.Children {
			if child.Kind != QueryTerm || child.Term.Kind != TermBare {
				return "", false
			}
			words = append(words, child.Term.Val)
		}
		return strings.Join(words, " "), true
	default:
		return "", false
	}
}

func compile(q SearchQuery, sink MessageSink) (*DbQuery, bool) {
	var idx *IndexParam
	if q.Kind != QueryOr {
		idx = findIndexParam(q, sink)
	}
	tree, ok := treeToTree(q, sink)
	if !ok {
		return nil, false
	}
	return &DbQuery{Index: idx, Tree: tree}, true
}

func treeToTree(q SearchQuery, sink MessageSink) (DbQueryTree, bool) {
	switch q.Kind {
	case QueryAnd, QueryOr:
		children := make([]DbQueryTree, 0, len(q.Children))
		for _, c := range q.Children {
			ct, ok := treeToTree(c, sink)
			if !ok {
				return DbQueryTree{}, false
			}
			children = append(children, ct)
		}
		kind := DbAnd
		if q.Kind == QueryOr {
			kind = DbOr
		}
		return DbQueryTree{Kind: kind, Children: children}, true
	default:
		f, ok := termToField(q.Term, q.Start, sink)
		if !ok {
			return DbQueryTree{}, false
		}
		return DbQueryTree{Kind: DbTerm, Term: f}, true
	}
}

// findIndexParam walks q looking for the index this And (or single Term)
// should be driven by. An Or can never drive the index (a match doesn't
// require every branch's predicate to hold), so it returns nil — exactly
// the original's "due to the way the DB indices work, we can't really OR
// query on them".
func findIndexParam(q SearchQuery, sink MessageSink) *IndexParam {
	switch q.Kind {
	case QueryOr:
		return nil
	case QueryTerm:
		f, ok := termToField(q.Term, q.Start, sink)
		if !ok {
			return nil
		}
		p, ok := indexParamOf(f)
		if !ok {
			return nil
		}
		return &p
	case QueryAnd:
		return selectIndex(q.Children, q.Start, sink)
	}
	return nil
}

// selectIndex implements §4.6.4 rule 2: gather every IndexParam candidate
// reachable from q's direct Term children (an Or child contributes none,
// since it can't drive an index itself), pick the most frequent candidate
// kind, and intersect all of its occurrences. Type can't be intersected —
// only the first Type candidate drives the scan, the rest stay residual
// only. Two or more NameExact candidates can never both match the same
// card, so that combination compiles to Empty plus a warning.
func selectIndex(children []SearchQuery, pos int, sink MessageSink) *IndexParam {
	var candidates []IndexParam
	for _, c := range children {
		if c.Kind != QueryTerm {
			continue
		}
		f, ok := termToField(c.Term, c.Start, sink)
		if !ok {
			continue
		}
		if p, ok := indexParamOf(f); ok {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	counts := map[IndexParamKind]int{}
	for _, c := range candidates {
		counts[c.Kind]++
	}
	best := candidates[0].Kind
	bestCount := 0
	for _, c := range candidates {
		if counts[c.Kind] > bestCount {
			best = c.Kind
			bestCount = counts[c.Kind]
		}
	}

	group := make([]IndexParam, 0, bestCount)
	for _, c := range candidates {
		if c.Kind == best {
			group = append(group, c)
		}
	}

	if best == IndexType {
		return &group[0]
	}
	if best == IndexNameExact {
		if len(group) > 1 {
			sink.Emit(Message{Severity: SeverityWarning, Text: "combination will never match: multiple exact-name filters can't both be true", BytePos: pos, Phase: PhaseCompile})
			return &IndexParam{Kind: IndexEmpty}
		}
		return &group[0]
	}

	result := group[0]
	for _, next := range group[1:] {
		var ok bool
		switch best {
		case IndexColor:
			result.Color, ok = result.Color.Intersect(next.Color)
		case IndexColorID:
			result.Color, ok = result.Color.Intersect(next.Color)
		case IndexCardStats:
			result.Stats, ok = result.Stats.Intersect(next.Stats)
		case IndexManaCost:
			result.ManaCost, ok = result.ManaCost.Intersect(next.ManaCost)
		case IndexRaritySupertype:
			result.Rarity, ok = result.Rarity.Intersect(next.Rarity)
		default:
			ok = true
		}
		if !ok {
			sink.Emit(Message{Severity: SeverityWarning, Text: "combination will never match", BytePos: pos, Phase: PhaseCompile})
			return &IndexParam{Kind: IndexEmpty}
		}
	}
	return &result
}

func termToField(t SearchTerm, pos int, sink MessageSink) (FieldPredicate, bool) {
	switch t.Kind {
	case TermBare:
		return FieldPredicate{Kind: FieldTerm, Str: t.Val}, true
	case TermNegBare:
		return FieldPredicate{Kind: FieldNegTerm, Str: t.Val}, true
	case TermExact:
		return FieldPredicate{Kind: FieldNameExact, Str: t.Val}, true
	case TermNegExact:
		return FieldPredicate{Kind: FieldNotNameExact, Str: t.Val}, true
	case TermKeyVal:
		return keyOpToField(t.Key, OpEq, t.Val, pos, sink)
	case TermKeyNeq:
		return keyOpToField(t.Key, OpNeq, t.Val, pos, sink)
	case TermKeyGt:
		return keyOpToField(t.Key, OpGt, t.Val, pos, sink)
	case TermKeyGte:
		return keyOpToField(t.Key, OpGte, t.Val, pos, sink)
	case TermKeyLt:
		return keyOpToField(t.Key, OpLt, t.Val, pos, sink)
	case TermKeyLte:
		return keyOpToField(t.Key, OpLte, t.Val, pos, sink)
	}
	return FieldPredicate{}, false
}

func keyOpToField(key string, op CompareOp, val string, pos int, sink MessageSink) (FieldPredicate, bool) {
	switch key {
	case "o", "oracle":
		if op != OpEq && op != OpNeq {
			sink.Emit(Message{Severity: SeverityWarning, Text: "comparison operators on 'o:' behave like a plain match", BytePos: pos, Phase: PhaseCompile})
		}
		if op == OpNeq {
			return FieldPredicate{Kind: FieldOracleNotIncludes, Str: val}, true
		}
		return FieldPredicate{Kind: FieldOracleIncludes, Str: val}, true

	case "t", "type":
		if op != OpEq && op != OpNeq {
			sink.Emit(Message{Severity: SeverityWarning, Text: "comparison operators on 't:' behave like a plain prefix match", BytePos: pos, Phase: PhaseCompile})
		}
		lower := strings.ToLower(val)
		if op == OpNeq {
			return FieldPredicate{Kind: FieldTypeNot, Str: lower}, true
		}
		return FieldPredicate{Kind: FieldType, Str: lower}, true

	case "mv", "manavalue":
		if val == "even" || val == "odd" {
			sink.Emit(Message{Severity: SeverityError, Text: "'" + val + "' is not supported for 'mv:'", BytePos: pos, Phase: PhaseCompile})
			return FieldPredicate{}, false
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			sink.Emit(Message{Severity: SeverityError, Text: "'" + val + "' is not a valid mana value", BytePos: pos, Phase: PhaseCompile})
			return FieldPredicate{}, false
		}
		return FieldPredicate{Kind: FieldCardStats, Stats: index.ManaValueQuartersRange(manaValueBounds(op, n))}, true

	case "rarity", "r":
		ord, ok := rarityOrdinal(val)
		if !ok {
			sink.Emit(Message{Severity: SeverityError, Text: "'" + val + "' is not a valid rarity", BytePos: pos, Phase: PhaseCompile})
			return FieldPredicate{}, false
		}
		lo, hi := rarityBounds(op, ord)
		return FieldPredicate{Kind: FieldRarity, Rarity: index.RarityRange(lo, hi)}, true

	case "is":
		if op != OpEq && op != OpNeq {
			sink.Emit(Message{Severity: SeverityError, Text: "comparison operators are not supported for 'is:'", BytePos: pos, Phase: PhaseCompile})
			return FieldPredicate{}, false
		}
		mask, ok := supertypeMask(val)
		if !ok {
			sink.Emit(Message{Severity: SeverityError, Text: "'" + val + "' is not a valid 'is:' value", BytePos: pos, Phase: PhaseCompile})
			return FieldPredicate{}, false
		}
		if op == OpNeq {
			return FieldPredicate{Kind: FieldNotSupertype, SupertypeMask: mask}, true
		}
		return FieldPredicate{Kind: FieldSupertype, SupertypeMask: mask}, true

	case "c", "color", "id", "identity":
		set, ok := ColorName(val, pos, sink)
		if !ok {
			return FieldPredicate{}, false
		}
		q := ColorQueryFor(op, set)
		if key == "id" || key == "identity" {
			return FieldPredicate{Kind: FieldColorID, Color: q}, true
		}
		return FieldPredicate{Kind: FieldColor, Color: q}, true

	default:
		sink.Emit(Message{Severity: SeverityError, Text: "'" + key + "' is not a recognized search keyword", BytePos: pos, Phase: PhaseCompile})
		return FieldPredicate{}, false
	}
}

// manaValueBounds and rarityBounds share the same one-axis comparison
// translation (§4.6.4's "4n..=4n for ==, ..=4n-1 for <, etc."): != has no
// axis-aligned-box representation, so — matching the color-comparison
// precedent in query/colorquery.go — it falls back to the same bound "<"
// produces.
func manaValueBounds(op CompareOp, n int) (lo, hi int) {
	v := 4 * n
	switch op {
	case OpGt:
		return v + 1, 1<<30 - 1
	case OpGte:
		return v, 1<<30 - 1
	case OpLt, OpNeq:
		return 0, max0(v - 1)
	case OpLte:
		return 0, v
	default: // OpEq
		return v, v
	}
}

func rarityBounds(op CompareOp, ord int) (lo, hi int) {
	switch op {
	case OpGt:
		return ord + 1, 4
	case OpGte:
		return ord, 4
	case OpLt, OpNeq:
		return 0, max0(ord - 1)
	case OpLte:
		return 0, ord
	default: // OpEq
		return ord, ord
	}
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func rarityOrdinal(s string) (int, bool) {
	switch strings.ToLower(s) {
	case "common":
		return int(card.RarityCommon), true
	case "uncommon":
		return int(card.RarityUncommon), true
	case "rare":
		return int(card.RarityRare), true
	case "mythic":
		return int(card.RarityMythic), true
	case "special":
		return int(card.RaritySpecial), true
	default:
		return 0, false
	}
}

func supertypeMask(s string) (int, bool) {
	switch strings.ToLower(s) {
	case "basic":
		return index.SupertypeBasic, true
	case "legendary":
		return index.SupertypeLegendary, true
	case "ongoing":
		return index.SupertypeOngoing, true
	case "snow":
		return index.SupertypeSnow, true
	case "world":
		return index.SupertypeWorld, true
	case "elite":
		return index.SupertypeElite, true
	case "host":
		return index.SupertypeHost, true
	default:
		return 0, false
	}
}
