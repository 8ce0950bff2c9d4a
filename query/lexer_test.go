package query

import "testing"

// Cases ported from the original's src/query/lex.rs test_lexer, translated
// from assert_eq! panics into table-driven Go checks.
func TestLex(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Token
	}{
		{
			name: "bare exact term",
			src:  `!"sift through sands"`,
			want: []Token{{Kind: TokExact, Val: "sift through sands"}},
		},
		{
			name: "keyword binops",
			src:  "c>=br is:spell f:duel",
			want: []Token{
				{Kind: TokKeyGte, Key: "c", Val: "br"},
				{Kind: TokKeyVal, Key: "is", Val: "spell"},
				{Kind: TokKeyVal, Key: "f", Val: "duel"},
			},
		},
		{
			name: "parens and or",
			src:  "a (b or c)",
			want: []Token{
				{Kind: TokTerm, Val: "a"},
				{Kind: TokOpenParen},
				{Kind: TokTerm, Val: "b"},
				{Kind: TokOr},
				{Kind: TokTerm, Val: "c"},
				{Kind: TokCloseParen},
			},
		},
		{
			name: "negated bare term",
			src:  "-goblin",
			want: []Token{{Kind: TokNegTerm, Val: "goblin"}},
		},
		{
			name: "negated keyword binop",
			src:  "-t:instant",
			want: []Token{{Kind: TokKeyNeq, Key: "t", Val: "instant"}},
		},
		{
			name: "quoted keyword value",
			src:  `o:"enters tapped"`,
			want: []Token{{Kind: TokKeyVal, Key: "o", Val: "enters tapped"}},
		},
		{
			name: "gte before gt, lte before lt",
			src:  "mv>=3 mv>3 mv<=3 mv<3",
			want: []Token{
				{Kind: TokKeyGte, Key: "mv", Val: "3"},
				{Kind: TokKeyGt, Key: "mv", Val: "3"},
				{Kind: TokKeyLte, Key: "mv", Val: "3"},
				{Kind: TokKeyLt, Key: "mv", Val: "3"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := Lex(tt.src, IgnoreMessages)
			if len(toks) != len(tt.want) {
				t.Fatalf("Lex(%q) = %d tokens, want %d: %+v", tt.src, len(toks), len(tt.want), toks)
			}
			for i, got := range toks {
				want := tt.want[i]
				if got.Kind != want.Kind || got.Key != want.Key || got.Val != want.Val {
					t.Fatalf("Lex(%q)[%d] = %+v, want %+v", tt.src, i, got, want)
				}
			}
		})
	}
}

func TestLexUnbalancedQuoteIsFatal(t *testing.T) {
	sink := &CollectingSink{}
	toks := Lex(`o:"enters tapped`, sink)
	if len(toks) != 0 {
		t.Fatalf("got %d tokens from an unbalanced quote, want 0", len(toks))
	}
	if !sink.HasErrors() {
		t.Fatal("expected an error message for an unbalanced quote")
	}
}

func TestLexExactKeywordIsFatal(t *testing.T) {
	sink := &CollectingSink{}
	Lex("!t:instant", sink)
	if !sink.HasErrors() {
		t.Fatal("expected an error message for '!' applied to a keyword")
	}
}

func TestLexMisspelledOrWarns(t *testing.T) {
	sink := &CollectingSink{}
	Lex("a oR b", sink)
	if !sink.HasErrors() && len(sink.Messages) == 0 {
		t.Fatal("expected a warning for non-canonical 'or' casing")
	}
	for _, m := range sink.Messages {
		if m.Severity == SeverityError {
			t.Fatalf("'oR' should only warn, got error: %s", m.Text)
		}
	}
}
