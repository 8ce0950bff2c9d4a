package query

import "testing"

// countTerms counts every QueryTerm leaf reachable from q.
func countTerms(q SearchQuery) int {
	switch q.Kind {
	case QueryTerm:
		return 1
	default:
		n := 0
		for _, c := range q.Children {
			n += countTerms(c)
		}
		return n
	}
}

func TestParseSimpleAnd(t *testing.T) {
	q := Parse("goblin t:creature", IgnoreMessages)
	if q == nil {
		t.Fatal("Parse returned nil")
	}
	if q.Kind != QueryAnd {
		t.Fatalf("got Kind %v, want QueryAnd", q.Kind)
	}
	if len(q.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(q.Children))
	}
	if q.Children[0].Term.Kind != TermBare || q.Children[0].Term.Val != "goblin" {
		t.Fatalf("first child = %+v, want bare term 'goblin'", q.Children[0].Term)
	}
	if q.Children[1].Term.Kind != TermKeyVal || q.Children[1].Term.Key != "t" {
		t.Fatalf("second child = %+v, want t:creature", q.Children[1].Term)
	}
}

// "a or b c" should parse as Or(a, b, c), not And(Or(a, b), c): the
// original's previousTokenOr state is never reset until a close paren,
// which we preserve deliberately (see the sticky-Or comment in parser.go's parse).
func TestParseOrAbsorbsTrailingTerms(t *testing.T) {
	q := Parse("a or b c", IgnoreMessages)
	if q == nil {
		t.Fatal("Parse returned nil")
	}
	if q.Kind != QueryOr {
		t.Fatalf("got Kind %v, want QueryOr", q.Kind)
	}
	if len(q.Children) != 3 {
		t.Fatalf("got %d children, want 3 (a, b, c all absorbed into the Or)", len(q.Children))
	}
}

// Parens reset the sticky-Or state: "(a or b) c" is And(Or(a,b), c).
func TestParseParensResetOrState(t *testing.T) {
	q := Parse("(a or b) c", IgnoreMessages)
	if q == nil {
		t.Fatal("Parse returned nil")
	}
	if q.Kind != QueryAnd {
		t.Fatalf("got Kind %v, want QueryAnd", q.Kind)
	}
	if len(q.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(q.Children))
	}
	if q.Children[0].Kind != QueryOr {
		t.Fatalf("first child Kind = %v, want QueryOr", q.Children[0].Kind)
	}
	if q.Children[1].Term.Val != "c" {
		t.Fatalf("second child = %+v, want bare term 'c'", q.Children[1].Term)
	}
}

func TestParseSingleTermHasNoWrapperAnd(t *testing.T) {
	q := Parse("goblin", IgnoreMessages)
	if q == nil {
		t.Fatal("Parse returned nil")
	}
	if q.Kind != QueryTerm {
		t.Fatalf("got Kind %v, want QueryTerm (single term should not be wrapped in And)", q.Kind)
	}
}

func TestParseOrAtStartIsError(t *testing.T) {
	sink := &CollectingSink{}
	q := Parse("or b", sink)
	if q != nil {
		t.Fatal("expected nil for a leading 'or'")
	}
	if !sink.HasErrors() {
		t.Fatal("expected an error message for a leading 'or'")
	}
}

// Corrected dead-code fix: combinedUsingAnd now actually increments on
// plain adjacency, so two-or-more Ands before an Or triggers the "mixed
// or operators" warning the original declares but never reaches.
func TestParseMixedOrWarns(t *testing.T) {
	sink := &CollectingSink{}
	q := Parse("a b c or d", sink)
	if q == nil {
		t.Fatal("Parse returned nil")
	}
	found := false
	for _, m := range sink.Messages {
		if m.Severity == SeverityWarning {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a mixed-or warning for 'a b c or d'")
	}
}

func TestParseNegExactKeepsBothModifiers(t *testing.T) {
	q := Parse(`-!"sift through sands"`, IgnoreMessages)
	if q == nil {
		t.Fatal("Parse returned nil")
	}
	if q.Kind != QueryTerm {
		t.Fatalf("got Kind %v, want QueryTerm", q.Kind)
	}
	if q.Term.Kind != TermNegExact {
		t.Fatalf("got term kind %v, want TermNegExact (both '-' and '!' preserved)", q.Term.Kind)
	}
	if q.Term.Val != "sift through sands" {
		t.Fatalf("got val %q, want 'sift through sands'", q.Term.Val)
	}
}

func TestFlattenCollapsesNestedAnd(t *testing.T) {
	q := SearchQuery{
		Kind: QueryAnd,
		Children: []SearchQuery{
			{Kind: QueryTerm, Term: SearchTerm{Kind: TermBare, Val: "a"}},
			{Kind: QueryAnd, Children: []SearchQuery{
				{Kind: QueryTerm, Term: SearchTerm{Kind: TermBare, Val: "b"}},
				{Kind: QueryTerm, Term: SearchTerm{Kind: TermBare, Val: "c"}},
			}},
		},
	}
	flat := Flatten(q)
	if flat.Kind != QueryAnd {
		t.Fatalf("got Kind %v, want QueryAnd", flat.Kind)
	}
	if len(flat.Children) != 3 {
		t.Fatalf("got %d children, want 3 flattened terms", len(flat.Children))
	}
	if countTerms(flat) != 3 {
		t.Fatalf("got %d terms, want 3", countTerms(flat))
	}
}
