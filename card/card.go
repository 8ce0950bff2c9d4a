// Package card holds the data model this database stores and queries: the
// Card record itself, its mana cost and dynamic-number fields, and the
// deterministic derivations from a Card to each secondary index's key type
// (internal/index). Grounded on the original's data_model/card.rs and
// dbs/serialization/mod.rs for the exact field set and wire layout.
package card

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wilSecord/mtg-organizer/internal/codec"
	"github.com/wilSecord/mtg-organizer/internal/index"
)

// Rarity is a closed 5-variant enumeration, in the fixed order the wire
// format assigns ordinals 0-4.
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityMythic
	RaritySpecial
)

func (r Rarity) String() string {
	switch r {
	case RarityCommon:
		return "common"
	case RarityUncommon:
		return "uncommon"
	case RarityRare:
		return "rare"
	case RarityMythic:
		return "mythic"
	case RaritySpecial:
		return "special"
	default:
		return fmt.Sprintf("rarity(%d)", int(r))
	}
}

// Supertype is a closed 7-variant enumeration. Ordinals here are the wire
// ordinals writeSupertypeList/readSupertypeList pack two-per-byte.
type Supertype int

const (
	SupertypeBasic Supertype = iota
	SupertypeLegendary
	SupertypeOngoing
	SupertypeSnow
	SupertypeWorld
	SupertypeElite
	SupertypeHost
)

func (s Supertype) String() string {
	switch s {
	case SupertypeBasic:
		return "basic"
	case SupertypeLegendary:
		return "legendary"
	case SupertypeOngoing:
		return "ongoing"
	case SupertypeSnow:
		return "snow"
	case SupertypeWorld:
		return "world"
	case SupertypeElite:
		return "elite"
	case SupertypeHost:
		return "host"
	default:
		return fmt.Sprintf("supertype(%d)", int(s))
	}
}

// supertypeBit is the bitmask index.RaritySupertype expects for a
// Supertype, matching the order declared in internal/index/rarity_supertype.go.
func supertypeBit(s Supertype) int {
	switch s {
	case SupertypeBasic:
		return index.SupertypeBasic
	case SupertypeLegendary:
		return index.SupertypeLegendary
	case SupertypeOngoing:
		return index.SupertypeOngoing
	case SupertypeSnow:
		return index.SupertypeSnow
	case SupertypeWorld:
		return index.SupertypeWorld
	case SupertypeElite:
		return index.SupertypeElite
	case SupertypeHost:
		return index.SupertypeHost
	default:
		return 0
	}
}

// CardDynamicNumber represents a non-negative integer stat that is either a
// fixed value or "dynamic" (determined by game state, e.g. Plague Rats'
// power). The zero value is dynamic. repr follows the original's niche
// encoding: 0 means dynamic, n means the value (n-1).
type CardDynamicNumber struct {
	repr uint64
}

// DynamicNumber is the "unknown/determined by the game" sentinel.
var DynamicNumber = CardDynamicNumber{}

// FixedNumber builds a CardDynamicNumber holding a known, non-negative value.
func FixedNumber(v uint64) CardDynamicNumber {
	return CardDynamicNumber{repr: v + 1}
}

// IsDynamic reports whether this is the "unknown" sentinel.
func (n CardDynamicNumber) IsDynamic() bool { return n.repr == 0 }

// Value returns the fixed value and true, or (0, false) if dynamic.
func (n CardDynamicNumber) Value() (uint64, bool) {
	if n.repr == 0 {
		return 0, false
	}
	return n.repr - 1, true
}

// ReprUint64 returns the raw wire representation (0 = dynamic, n = value n-1).
func (n CardDynamicNumber) ReprUint64() uint64 { return n.repr }

// CardDynamicNumberFromRepr rebuilds a CardDynamicNumber from its wire form.
func CardDynamicNumberFromRepr(repr uint64) CardDynamicNumber { return CardDynamicNumber{repr: repr} }

// dynamicLiterals are the printed forms MTGJSON/Scryfall use for "this
// isn't a fixed number" stats. Matches the original's FromStr match arm
// exactly (§8 round-trip property covers this set).
var dynamicLiterals = map[string]bool{
	"*": true, "*+1": true, "2+*": true, "7-*": true, "1+*": true,
	"?": true, "X": true, "1d4+1": true, "∞": true,
	"-1": true, "-0": true, "1.5": true, "3.5": true, ".5": true, "2.5": true,
	"*²": true,
}

// ParseCardDynamicNumber parses s the way the original's FromStr impl does:
// a fixed closed set of "dynamic" literal spellings, else a base-10
// non-negative integer.
func ParseCardDynamicNumber(s string) (CardDynamicNumber, error) {
	if dynamicLiterals[s] {
		return DynamicNumber, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return CardDynamicNumber{}, err
	}
	return FixedNumber(v), nil
}

func (n CardDynamicNumber) write(buf *bytes.Buffer) error {
	return codec.WriteUvarint(buf, n.repr)
}

func readCardDynamicNumber(r *bytes.Reader) (CardDynamicNumber, error) {
	v, err := codec.ReadUvarint(r)
	if err != nil {
		return CardDynamicNumber{}, err
	}
	return CardDynamicNumber{repr: v}, nil
}

// ManaCost is an ordered sequence of mana symbols, the shape a card's
// casting cost takes.
type ManaCost struct {
	Symbols []ManaSymbol
}

func (m ManaCost) write(buf *bytes.Buffer) error {
	if err := codec.WriteUvarint(buf, uint64(len(m.Symbols))); err != nil {
		return err
	}
	for _, s := range m.Symbols {
		if err := s.encodeByte(buf); err != nil {
			return err
		}
	}
	return nil
}

func readManaCost(r *bytes.Reader) (ManaCost, error) {
	n, err := codec.ReadUvarint(r)
	if err != nil {
		return ManaCost{}, err
	}
	syms := make([]ManaSymbol, 0, n)
	for i := uint64(0); i < n; i++ {
		s, err := decodeManaSymbol(r)
		if err != nil {
			return ManaCost{}, err
		}
		syms = append(syms, s)
	}
	return ManaCost{Symbols: syms}, nil
}

// Card is one Magic: The Gathering card record, as described in spec.md §3.
type Card struct {
	Name            string
	ManaCost        ManaCost
	ManaValueTimes4 int
	Color           index.ColorCombination
	ColorID         index.ColorCombination
	SuperTypes      []Supertype
	Types           []string
	Subtypes        []string
	SetsReleased    []string
	Rarity          Rarity
	OracleText      string
	Power           CardDynamicNumber
	Toughness       CardDynamicNumber
	Loyalty         CardDynamicNumber
	Defense         int
	GameChanger     bool
}

// --- index key derivations -------------------------------------------------

// DeriveColorKey is the key this card contributes to the color index.
func (c Card) DeriveColorKey() index.ColorCombination { return c.Color }

// DeriveColorIDKey is the key this card contributes to the color-identity
// index.
func (c Card) DeriveColorIDKey() index.ColorCombination { return c.ColorID }

// DeriveCardStats builds the 6-dimensional stats key per spec.md §4.4:
// defense is stored as defense+1 so 0 means "no defense", and power,
// toughness, and loyalty use CardDynamicNumber's own repr directly (0 =
// dynamic, n = value n-1), so no further shift is needed for them.
func (c Card) DeriveCardStats() index.CardStats {
	gc := 0
	if c.GameChanger {
		gc = 1
	}
	return index.CardStats{
		Power:             int(c.Power.ReprUint64()),
		Toughness:         int(c.Toughness.ReprUint64()),
		Loyalty:           int(c.Loyalty.ReprUint64()),
		Defense:           c.Defense + 1,
		GameChanger:       gc,
		ManaValueQuarters: c.ManaValueTimes4,
	}
}

// DeriveRaritySupertype builds the packed rarity+supertype-bitmask key.
func (c Card) DeriveRaritySupertype() index.RaritySupertype {
	mask := 0
	for _, s := range c.SuperTypes {
		mask |= supertypeBit(s)
	}
	return index.RaritySupertype{Rarity: int(c.Rarity), Supertypes: mask}
}

// DeriveNamePrefixKey is this card's key in the name-prefix (StringPrefix)
// index.
func (c Card) DeriveNamePrefixKey() index.StringPrefix {
	return index.StringPrefixFromString(strings.ToLower(c.Name))
}

// DeriveTypeKeys returns one StringPrefix key per type string this card
// should be discoverable under. Per SPEC_FULL's resolution of the
// "split/adventure" open question, subtypes share the same type index as
// types (the original's own behavior), each lowercased so prefix queries
// are case-insensitive.
func (c Card) DeriveTypeKeys() []index.StringPrefix {
	out := make([]index.StringPrefix, 0, len(c.Types)+len(c.Subtypes))
	for _, t := range c.Types {
		out = append(out, index.StringPrefixFromString(strings.ToLower(t)))
	}
	for _, t := range c.Subtypes {
		out = append(out, index.StringPrefixFromString(strings.ToLower(t)))
	}
	return out
}

// DeriveTrigramHashes returns the accelerator keys this card's oracle text
// should be indexed under (see internal/index.Trigram).
func (c Card) DeriveTrigramHashes() []uint32 {
	grams := index.Trigrams(c.OracleText)
	out := make([]uint32, 0, len(grams))
	seen := make(map[uint32]bool, len(grams))
	for _, g := range grams {
		h := index.HashTrigram(g)
		if !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	return out
}

// DeriveManaCostCount reduces a ManaCost to the 12-counter shape
// index.ManaCostCount trees on, per the derivation rules in spec.md §4.4.
func DeriveManaCostCount(mc ManaCost) index.ManaCostCount {
	var out index.ManaCostCount
	for _, sym := range mc.Symbols {
		if _, ok := sym.Variable(); ok {
			out.VariablesUsed++
			continue
		}
		if n, ok := sym.GenericNumber(); ok {
			out.Generic += n
			continue
		}
		if sym.IsOneMillionGeneric() {
			out.Generic += 1_000_000
			continue
		}
		if sym.IsLandDrop() || sym.IsLegendary() || sym.IsHalfWhite() || sym.IsSnow() {
			out.OddEdgeCaseSymbols++
			continue
		}
		phyrexian, splitTwoGeneric, color, splitColor, ok := sym.ConventionalColored()
		if !ok {
			continue
		}
		if phyrexian {
			out.AnyPhyrexian++
		}
		if splitTwoGeneric {
			out.AnySplitGeneric++
		}
		if splitColor != nil {
			out.AnyColorSplit++
		}
		switch color {
		case ColorWhite:
			out.White++
		case ColorBlue:
			out.Blue++
		case ColorBlack:
			out.Black++
		case ColorRed:
			out.Red++
		case ColorGreen:
			out.Green++
		case ColorColorless:
			out.Colorless++
		}
	}
	return out
}

// --- Card codec --------------------------------------------------------
//
// Mirrors dbs/serialization/mod.rs's layout exactly: rarity (3 bits) is
// packed into the top bits of the name's length-prefix byte, and
// game_changer (1 bit) into the top bit of the oracle text's length-prefix
// byte — the canonical "external bits" example spec.md §4.1 calls out.

// Write serializes a Card using the bit-packed codec contract.
func (c Card) Write(buf *bytes.Buffer) error {
	rarityExt := codec.ExternalBits{FirstByte: byte(c.Rarity) << 5, Claimed: 3}
	if err := codec.WriteString(buf, c.Name, rarityExt); err != nil {
		return err
	}

	if err := codec.WriteUvarint(buf, uint64(c.ManaValueTimes4)); err != nil {
		return err
	}
	if err := c.ManaCost.write(buf); err != nil {
		return err
	}

	if err := writeColorCombination(buf, c.Color); err != nil {
		return err
	}
	if err := writeColorCombination(buf, c.ColorID); err != nil {
		return err
	}

	if err := writeSupertypeList(buf, c.SuperTypes); err != nil {
		return err
	}

	if err := codec.WriteVector(buf, c.Types, writeStringItem); err != nil {
		return err
	}
	if err := codec.WriteVector(buf, c.Subtypes, writeStringItem); err != nil {
		return err
	}
	if err := codec.WriteVector(buf, c.SetsReleased, writeStringItem); err != nil {
		return err
	}

	var gcByte byte
	if c.GameChanger {
		gcByte = 1 << 7
	}
	if err := codec.WriteString(buf, c.OracleText, codec.ExternalBits{FirstByte: gcByte, Claimed: 1}); err != nil {
		return err
	}

	if err := c.Power.write(buf); err != nil {
		return err
	}
	if err := c.Toughness.write(buf); err != nil {
		return err
	}
	if err := c.Loyalty.write(buf); err != nil {
		return err
	}
	return codec.WriteUvarint(buf, uint64(c.Defense))
}

func writeStringItem(w io.Writer, s string) error {
	return codec.WriteString(w, s, codec.NoExternalBits)
}

// ReadCard deserializes a Card written by Card.Write.
func ReadCard(r *bytes.Reader) (Card, error) {
	nameFB, err := codec.ReadByte(r)
	if err != nil {
		return Card{}, err
	}
	rarity := Rarity(nameFB >> 5)
	if rarity > RaritySpecial {
		return Card{}, codec.ErrInvalidData
	}
	name, err := codec.ReadString(r, codec.ExternalBits{FirstByte: nameFB, Claimed: 3})
	if err != nil {
		return Card{}, err
	}

	mv, err := codec.ReadUvarint(r)
	if err != nil {
		return Card{}, err
	}
	mc, err := readManaCost(r)
	if err != nil {
		return Card{}, err
	}

	color, err := readColorCombination(r)
	if err != nil {
		return Card{}, err
	}
	colorID, err := readColorCombination(r)
	if err != nil {
		return Card{}, err
	}

	superTypes, err := readSupertypeList(r)
	if err != nil {
		return Card{}, err
	}

	types, err := codec.ReadVector(r, readStringItem)
	if err != nil {
		return Card{}, err
	}
	subtypes, err := codec.ReadVector(r, readStringItem)
	if err != nil {
		return Card{}, err
	}
	sets, err := codec.ReadVector(r, readStringItem)
	if err != nil {
		return Card{}, err
	}

	gcByte, err := codec.ReadByte(r)
	if err != nil {
		return Card{}, err
	}
	gameChanger := gcByte&(1<<7) != 0
	oracleText, err := codec.ReadString(r, codec.ExternalBits{FirstByte: gcByte, Claimed: 1})
	if err != nil {
		return Card{}, err
	}

	power, err := readCardDynamicNumber(r)
	if err != nil {
		return Card{}, err
	}
	toughness, err := readCardDynamicNumber(r)
	if err != nil {
		return Card{}, err
	}
	loyalty, err := readCardDynamicNumber(r)
	if err != nil {
		return Card{}, err
	}
	defense, err := codec.ReadUvarint(r)
	if err != nil {
		return Card{}, err
	}

	return Card{
		Name:            name,
		ManaCost:        mc,
		ManaValueTimes4: int(mv),
		Color:           color,
		ColorID:         colorID,
		SuperTypes:      superTypes,
		Types:           types,
		Subtypes:        subtypes,
		SetsReleased:    sets,
		Rarity:          rarity,
		OracleText:      oracleText,
		Power:           power,
		Toughness:       toughness,
		Loyalty:         loyalty,
		Defense:         int(defense),
		GameChanger:     gameChanger,
	}, nil
}

func readStringItem(r io.Reader) (string, error) {
	return codec.ReadString(r, codec.NoExternalBits)
}

func writeColorCombination(buf *bytes.Buffer, c index.ColorCombination) error {
	buf.WriteByte(codec.PackBools(c.White, c.Blue, c.Black, c.Red, c.Green, c.Colorless))
	return nil
}

func readColorCombination(r *bytes.Reader) (index.ColorCombination, error) {
	b, err := codec.ReadByte(r)
	if err != nil {
		return index.ColorCombination{}, err
	}
	bits := codec.UnpackBools(b, 6)
	return index.ColorCombination{
		White: bits[0], Blue: bits[1], Black: bits[2],
		Red: bits[3], Green: bits[4], Colorless: bits[5],
	}, nil
}

// writeSupertypeList writes a varint count followed by the supertypes packed
// two per byte (4-bit ordinal each, first one in the high nibble); an odd
// final item has its low nibble set to the 0x0F "no second item" sentinel.
// An empty list costs one byte: the zero count.
func writeSupertypeList(buf *bytes.Buffer, types []Supertype) error {
	if len(types) == 0 {
		return codec.WriteUvarint(buf, 0)
	}
	if err := codec.WriteUvarint(buf, uint64(len(types))); err != nil {
		return err
	}
	for i := 0; i < len(types); i += 2 {
		var b byte
		b |= byte(types[i]) << 4
		if i+1 < len(types) {
			b |= byte(types[i+1])
		} else {
			b |= 0x0F
		}
		if err := buf.WriteByte(b); err != nil {
			return err
		}
	}
	return nil
}

func readSupertypeList(r *bytes.Reader) ([]Supertype, error) {
	n, err := codec.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]Supertype, 0, n)
	for uint64(len(out)) < n {
		b, err := codec.ReadByte(r)
		if err != nil {
			return nil, err
		}
		hi := Supertype(b >> 4)
		out = append(out, hi)
		if uint64(len(out)) < n {
			lo := b & 0x0F
			if lo != 0x0F {
				out = append(out, Supertype(lo))
			}
		}
	}
	return out, nil
}
