package query

// SearchTermKind mirrors SearchTerm (parse.rs): the same shape as a lexer
// Token, minus the parens/Or tokens which never survive into the tree.
type SearchTermKind int

const (
	TermBare SearchTermKind = iota
	TermNegBare
	TermExact
	TermNegExact
	TermKeyVal
	TermKeyNeq
	TermKeyGt
	TermKeyLt
	TermKeyLte
	TermKeyGte
)

// SearchTerm is one leaf of a parsed query tree.
type SearchTerm struct {
	Kind SearchTermKind
	Key  string
	Val  string
}

// searchTermFromToken converts a lexer Token into a SearchTerm. The
// original's TokenType::NegExact arm maps to SearchTerm::Term, dropping
// both the "exact" and "negated" modifiers — almost certainly a copy-paste
// slip from adjacent match arms, since every other TokenType variant maps
// to its same-named SearchTerm variant. We correct it to TermNegExact.
func searchTermFromToken(t Token) (SearchTerm, bool) {
	switch t.Kind {
	case TokTerm:
		return SearchTerm{Kind: TermBare, Val: t.Val}, true
	case TokNegTerm:
		return SearchTerm{Kind: TermNegBare, Val: t.Val}, true
	case TokExact:
		return SearchTerm{Kind: TermExact, Val: t.Val}, true
	case TokNegExact:
		return SearchTerm{Kind: TermNegExact, Val: t.Val}, true
	case TokKeyVal:
		return SearchTerm{Kind: TermKeyVal, Key: t.Key, Val: t.Val}, true
	case TokKeyNeq:
		return SearchTerm{Kind: TermKeyNeq, Key: t.Key, Val: t.Val}, true
	case TokKeyGt:
		return SearchTerm{Kind: TermKeyGt, Key: t.Key, Val: t.Val}, true
	case TokKeyGte:
		return SearchTerm{Kind: TermKeyGte, Key: t.Key, Val: t.Val}, true
	case TokKeyLte:
		return SearchTerm{Kind: TermKeyLte, Key: t.Key, Val: t.Val}, true
	case TokKeyLt:
		return SearchTerm{Kind: TermKeyLt, Key: t.Key, Val: t.Val}, true
	default:
		return SearchTerm{}, false
	}
}

// QueryTreeKind distinguishes the three shapes a SearchQuery node can take.
type QueryTreeKind int

const (
	QueryAnd QueryTreeKind = iota
	QueryOr
	QueryTerm
)

// SearchQuery is one node of the parsed query tree: either a boolean
// combinator over child queries, or a single leaf term.
type SearchQuery struct {
	Kind     QueryTreeKind
	Children []SearchQuery // And/Or
	Term     SearchTerm    // Term
	Start    int
	End      int
}

type tokenCursor struct {
	toks []Token
	pos  int
}

func (c *tokenCursor) next() (Token, bool) {
	if c.pos >= len(c.toks) {
		return Token{}, false
	}
	t := c.toks[c.pos]
	c.pos++
	return t, true
}

// Parse runs the full lex+parse pipeline over src, returning nil if the
// query was malformed (a Message describing why was already sent to sink).
func Parse(src string, sink MessageSink) *SearchQuery {
	toks := Lex(src, sink)
	cur := &tokenCursor{toks: toks}
	return parse(cur, sink)
}

// parse consumes tokens from cur until it runs out or hits an unmatched
// CloseParen, which ends a parenthesized group and returns control to the
// caller that opened it. A recursive call gets its own, independent
// previousTokenOr/combinedUsingAnd state — parentheses are the only thing
// that resets the sticky "or absorbs everything after it" behavior
// described below.
func parse(cur *tokenCursor, sink MessageSink) *SearchQuery {
	var list []SearchQuery
	combinedUsingAnd := 0
	// previousTokenOr is never reset to false once an Or token is seen
	// (matching the original, not a bug): "a or b c" parses as Or(a, b, c),
	// not And(Or(a, b), c) — every adjacent term after an "or" keeps
	// joining the same Or node until a close paren starts a fresh group.
	previousTokenOr := false

	start, haveStart := 0, false
	end := 0

loop:
	for {
		t, ok := cur.next()
		if !ok {
			break
		}
		if !haveStart {
			start, haveStart = t.Pos, true
		}
		end = t.End

		if term, ok := searchTermFromToken(t); ok {
			addQueryTree(SearchQuery{Kind: QueryTerm, Term: term, Start: t.Pos, End: end}, &previousTokenOr, &list, &combinedUsingAnd)
			continue
		}

		switch t.Kind {
		case TokOpenParen:
			child := parse(cur, sink)
			if child == nil {
				return nil
			}
			addQueryElement(*child, &previousTokenOr, &list, &combinedUsingAnd)
		case TokCloseParen:
			break loop
		case TokOr:
			if len(list) == 0 {
				sink.Emit(Message{Severity: SeverityError, Text: "'or' operator is at the start of a list", BytePos: t.Pos, Phase: PhaseParse})
				return nil
			}
			if combinedUsingAnd >= 2 {
				sink.Emit(Message{Severity: SeverityWarning, Text: "Mixed 'or' operators without using parentheses. You can clarify your intent by grouping your search terms.", BytePos: t.Pos, Phase: PhaseParse})
			}
			previousTokenOr = true
		}
	}

	if len(list) == 1 {
		return &list[0]
	}
	s := 0
	if haveStart {
		s = start
	}
	return &SearchQuery{Kind: QueryAnd, Children: list, Start: s, End: end}
}

func addQueryElement(q SearchQuery, previousTokenOr *bool, list *[]SearchQuery, combinedUsingAnd *int) {
	if *previousTokenOr && len(*list) > 0 {
		*combinedUsingAnd = 0
		last := &(*list)[len(*list)-1]
		if last.Kind == QueryOr {
			last.Children = append(last.Children, q)
			last.End = q.End
			return
		}
		prev := (*list)[len(*list)-1]
		*list = (*list)[:len(*list)-1]
		*list = append(*list, SearchQuery{
			Kind:     QueryOr,
			Children: []SearchQuery{prev, q},
			Start:    prev.Start,
			End:      q.End,
		})
		return
	}
	*combinedUsingAnd++
	*list = append(*list, q)
}

func addQueryTree(q SearchQuery, previousTokenOr *bool, list *[]SearchQuery, combinedUsingAnd *int) {
	addQueryElement(q, previousTokenOr, list, combinedUsingAnd)
}
