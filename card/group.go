package card

// PhysicalCard is one physical copy (or stack of identical copies) a user
// owns. duplicates lets a single PhysicalCard stand in for many identical
// copies instead of requiring one PhysicalCard per copy.
type PhysicalCard struct {
	Ref        CardRef
	Duplicates int
}

// GroupKind enumerates the kinds of named CardRef collections a user can
// build. Deck is the only variety the original names; more are expected to
// show up as actual usage demands them.
type GroupKind int

const (
	GroupDeck GroupKind = iota
)

// Group is a generic named collection of cards: a deck, a box, a binder
// page, whatever the user wants to call it. Exclusive marks groups whose
// cards can't simultaneously belong to another exclusive group (e.g. a
// card can be in only one deck's maindeck at a time, but can also sit in
// a non-exclusive "wishlist" group).
type Group struct {
	Kind      GroupKind
	Name      string
	Refs      []CardRef
	Exclusive bool
}
