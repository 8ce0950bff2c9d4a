// Package query implements the Scryfall-like textual search language: a
// lexer, a recursive-descent parser, a flattener, and a compiler that turns
// a parsed query into a carddb index scan plus a residual predicate.
//
// Grounded on the original's src/query/{lex,parse,compile,err_warn_support}.rs
// for token/parse/compile semantics, and on SimonWaldherr/tinySQL's sql.go
// for the Go shape of a hand-rolled scanner and parser.
package query

// Phase identifies which stage of the pipeline produced a Message.
type Phase int

const (
	PhaseLex Phase = iota
	PhaseParse
	PhaseCompile
)

func (p Phase) String() string {
	switch p {
	case PhaseLex:
		return "lex"
	case PhaseParse:
		return "parse"
	case PhaseCompile:
		return "compile"
	default:
		return "unknown"
	}
}

// Severity distinguishes a message that stops compilation from one that
// merely advises the user.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// Message is one diagnostic produced while lexing, parsing, or compiling a
// query string, mirroring the original's Message{msg_type, msg_content,
// byte_pos, source_phase_index}.
type Message struct {
	Severity Severity
	Text     string
	BytePos  int
	Phase    Phase
}

// MessageSink receives every Message a pipeline stage emits. It plays the
// role the original's MessageSink trait plays: callers that only care about
// the final result can use IgnoreMessages, while a CLI can collect them for
// display.
type MessageSink interface {
	Emit(Message)
}

// IgnoreMessages is a MessageSink that discards everything, for callers
// that only want the compiled query and don't care about warnings.
var IgnoreMessages MessageSink = ignoreSink{}

type ignoreSink struct{}

func (ignoreSink) Emit(Message) {}

// CollectingSink accumulates every message it receives, in order. It is the
// sink `cmd/test_query` and friends pass in so they can print warnings
// after compilation finishes.
type CollectingSink struct {
	Messages []Message
}

func (s *CollectingSink) Emit(m Message) {
	s.Messages = append(s.Messages, m)
}

// HasErrors reports whether any collected message is at SeverityError.
func (s *CollectingSink) HasErrors() bool {
	for _, m := range s.Messages {
		if m.Severity == SeverityError {
			return true
		}
	}
	return false
}
