package query

// Flatten rewrites nested And(And(...)) into a single And([...]), and
// likewise for Or, so the compiler's index-selection counting heuristic
// sees every sibling term at one level instead of having to recurse through
// redundant wrapper nodes. The original does this with a pop/splice dance
// over a Vec using mem::replace; Go's value semantics make a straight
// recursive rebuild simpler.
func Flatten(q SearchQuery) SearchQuery {
	if q.Kind != QueryAnd && q.Kind != QueryOr {
		return q
	}

	var flat []SearchQuery
	for _, child := range q.Children {
		fc := Flatten(child)
		if fc.Kind == q.Kind {
			flat = append(flat, fc.Children...)
		} else {
			flat = append(flat, fc)
		}
	}
	q.Children = flat
	return q
}
