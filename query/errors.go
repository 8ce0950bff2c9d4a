package query

import "fmt"

// Error wraps a failed compile with the diagnostic messages that explain
// why, the same Op/Err-flavored wrapping carddb.Error uses for its own
// failure domain — here "Op" is always "compile" and "Err" doesn't apply,
// since a bad query string isn't an I/O failure, so the messages stand in
// for it.
type Error struct {
	Query    string
	Messages []Message
}

func (e *Error) Error() string {
	for _, m := range e.Messages {
		if m.Severity == SeverityError {
			return fmt.Sprintf("query %q: %s", e.Query, m.Text)
		}
	}
	return fmt.Sprintf("query %q: compile failed", e.Query)
}

// Compile is the convenience entry point for callers that want a plain Go
// error instead of managing a MessageSink themselves. On success it
// returns a compiled DbQuery or — for the fast-path bag-of-terms case — a
// nil DbQuery plus the plain text to hand to a fuzzy name matcher.
func Compile(raw string) (q *DbQuery, fastPathText string, err error) {
	sink := &CollectingSink{}
	q, fastPathText, isFastPath := BuildSearchQuery(raw, sink)
	if sink.HasErrors() {
		return nil, "", &Error{Query: raw, Messages: sink.Messages}
	}
	if isFastPath {
		return nil, fastPathText, nil
	}
	return q, "", nil
}
