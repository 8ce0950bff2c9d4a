// Package ingest parses the simplified per-card JSON record cmd/build_card_db
// reads, field-for-field the shape src/bin/build_card_db.rs::parse_card and
// its mana-cost/color helpers sketch out. Real MTGJSON/Scryfall dumps are an
// out-of-scope external collaborator (spec.md §1): this package only covers
// the record shape the original's own (unfinished, panic-on-error) parser
// already committed to, rewritten to return errors instead of panicking —
// a batch tool may still abort on bad input (§7), but a caller gets to
// decide that instead of the package doing it via panic.
package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/wilSecord/mtg-organizer/card"
	"github.com/wilSecord/mtg-organizer/internal/index"
)

// Record is one cards.json entry. Field names mirror parse_card's indexing
// into a serde_json::Value one-for-one; CollectorNumber/Printing/Set are the
// CardRef fields parse_card's sketch never got around to wiring in.
type Record struct {
	Set             string          `json:"set"`
	CollectorNumber json.RawMessage `json:"collector_number"`
	Printing        uint64          `json:"printing"`
	Name            string          `json:"name"`
	ManaCost        string          `json:"mana_cost"`
	ManaValue       float64         `json:"mana_value"`
	Color           string          `json:"color"`
	ColorID         string          `json:"color_id"`
	SuperTypes      string          `json:"super_types"`
	Types           string          `json:"types"`
	Subtypes        string          `json:"subtypes"`
	SetsReleased    string          `json:"sets_released"`
	Rarity          string          `json:"rarity"`
	OracleText      string          `json:"oracle_text"`
	Power           json.RawMessage `json:"power"`
	Toughness       json.RawMessage `json:"toughness"`
	Loyalty         json.RawMessage `json:"loyalty"`
	Defense         uint64          `json:"defense"`
	GameChanger     string          `json:"game_changer"`
}

// ParseCard converts one Record into the (CardRef, Card) pair carddb.Insert
// wants, returning an error instead of parse_card's expect()-driven panics
// for every field that can't be interpreted.
func ParseCard(rec Record) (card.CardRef, card.Card, error) {
	manaCost, err := ParseManaCost(rec.ManaCost)
	if err != nil {
		return card.CardRef{}, card.Card{}, fmt.Errorf("mana_cost: %w", err)
	}

	superTypes, err := parseSuperTypes(rec.SuperTypes)
	if err != nil {
		return card.CardRef{}, card.Card{}, fmt.Errorf("super_types: %w", err)
	}

	rarity, err := parseRarity(rec.Rarity)
	if err != nil {
		return card.CardRef{}, card.Card{}, fmt.Errorf("rarity: %w", err)
	}

	power, err := parseDynamicNumber(rec.Power)
	if err != nil {
		return card.CardRef{}, card.Card{}, fmt.Errorf("power: %w", err)
	}
	toughness, err := parseDynamicNumber(rec.Toughness)
	if err != nil {
		return card.CardRef{}, card.Card{}, fmt.Errorf("toughness: %w", err)
	}
	loyalty, err := parseDynamicNumber(rec.Loyalty)
	if err != nil {
		return card.CardRef{}, card.Card{}, fmt.Errorf("loyalty: %w", err)
	}

	gameChanger, err := parseBool(rec.GameChanger)
	if err != nil {
		return card.CardRef{}, card.Card{}, fmt.Errorf("game_changer: %w", err)
	}

	c := card.Card{
		Name:            rec.Name,
		ManaCost:        manaCost,
		ManaValueTimes4: int(rec.ManaValue*4 + 0.5),
		Color:           parseColorCombination(rec.Color),
		ColorID:         parseColorCombination(rec.ColorID),
		SuperTypes:      superTypes,
		Types:           splitNonEmpty(rec.Types, ", "),
		Subtypes:        splitNonEmpty(rec.Subtypes, ", "),
		SetsReleased:    splitNonEmpty(rec.SetsReleased, ", "),
		Rarity:          rarity,
		OracleText:      rec.OracleText,
		Power:           power,
		Toughness:       toughness,
		Loyalty:         loyalty,
		Defense:         int(rec.Defense),
		GameChanger:     gameChanger,
	}

	ref, err := parseCardRef(rec)
	if err != nil {
		return card.CardRef{}, card.Card{}, fmt.Errorf("card ref: %w", err)
	}
	return ref, c, nil
}

func parseCardRef(rec Record) (card.CardRef, error) {
	if rec.Set == "" {
		return card.CardRef{}, fmt.Errorf("missing set code")
	}
	var cn card.CollectorNumber
	if len(rec.CollectorNumber) > 0 {
		var asNum uint64
		if err := json.Unmarshal(rec.CollectorNumber, &asNum); err == nil {
			cn = card.NumericCollectorNumber(asNum)
		} else {
			var asStr string
			if err := json.Unmarshal(rec.CollectorNumber, &asStr); err != nil {
				return card.CardRef{}, fmt.Errorf("collector_number: %w", err)
			}
			cn = card.TextCollectorNumber(asStr)
		}
	}
	return card.CardRef{Set: rec.Set, CollectorNumber: cn, Printing: rec.Printing}, nil
}

// parseColorCombination reads a letter combination ("WUBRG"/"C") the way
// build_card_db.rs::parse_color_combination does: one character per color,
// unrecognized characters silently ignored.
func parseColorCombination(combo string) index.ColorCombination {
	var cc index.ColorCombination
	for _, ch := range combo {
		switch ch {
		case 'W':
			cc.White = true
		case 'U':
			cc.Blue = true
		case 'B':
			cc.Black = true
		case 'R':
			cc.Red = true
		case 'G':
			cc.Green = true
		case 'C':
			cc.Colorless = true
		}
	}
	return cc
}

func parseSuperTypes(field string) ([]card.Supertype, error) {
	if field == "" {
		return nil, nil
	}
	parts := strings.Split(field, "/")
	out := make([]card.Supertype, 0, len(parts))
	for _, p := range parts {
		var st card.Supertype
		switch p {
		case "Basic":
			st = card.SupertypeBasic
		case "Legendary":
			st = card.SupertypeLegendary
		case "Elite":
			st = card.SupertypeElite
		case "Ongoing":
			st = card.SupertypeOngoing
		case "Host":
			st = card.SupertypeHost
		case "World":
			st = card.SupertypeWorld
		case "Snow":
			st = card.SupertypeSnow
		default:
			return nil, fmt.Errorf("unknown supertype %q", p)
		}
		out = append(out, st)
	}
	return out, nil
}

func parseRarity(s string) (card.Rarity, error) {
	switch s {
	case "common":
		return card.RarityCommon, nil
	case "uncommon":
		return card.RarityUncommon, nil
	case "rare":
		return card.RarityRare, nil
	case "mythic":
		return card.RarityMythic, nil
	case "special":
		return card.RaritySpecial, nil
	default:
		return 0, fmt.Errorf("unexpected rarity value %q", s)
	}
}

// parseDynamicNumber reads a power/toughness/loyalty field that is either a
// JSON number or the "*" sentinel string for a dynamic, game-determined
// value — a case build_card_db.rs's own u64-or-panic parser never handled,
// added here since spec.md §3 requires CardDynamicNumber support.
func parseDynamicNumber(raw json.RawMessage) (card.CardDynamicNumber, error) {
	if len(raw) == 0 {
		return card.DynamicNumber, nil
	}
	var asStr string
	if err := json.Unmarshal(raw, &asStr); err == nil {
		if asStr == "*" {
			return card.DynamicNumber, nil
		}
		return card.ParseCardDynamicNumber(asStr)
	}
	var asNum uint64
	if err := json.Unmarshal(raw, &asNum); err != nil {
		return card.CardDynamicNumber{}, fmt.Errorf("not a number or \"*\": %s", raw)
	}
	return card.FixedNumber(asNum), nil
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected \"true\"/\"false\", got %q", s)
	}
	return b, nil
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}

// ParseManaCost reads a bracketed mana cost string ("{W}{W}{B}{3}") the way
// build_card_db.rs::parse_mana_cost/parse_mana_symbol does: scan for
// {...} groups in order, classify each group's contents.
func ParseManaCost(src string) (card.ManaCost, error) {
	var syms []card.ManaSymbol
	rest := src
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		rest = rest[open+1:]
		closeIdx := strings.IndexByte(rest, '}')
		if closeIdx < 0 {
			return card.ManaCost{}, fmt.Errorf("unterminated mana symbol in %q", src)
		}
		body := rest[:closeIdx]
		rest = rest[closeIdx+1:]

		sym, err := parseManaSymbol(body)
		if err != nil {
			return card.ManaCost{}, err
		}
		syms = append(syms, sym)
	}
	return card.ManaCost{Symbols: syms}, nil
}

func parseManaSymbol(src string) (card.ManaSymbol, error) {
	if src == "" {
		return card.ManaSymbol{}, fmt.Errorf("empty mana symbol")
	}
	if isAllDigits(src) {
		n, err := strconv.Atoi(src)
		if err != nil {
			return card.ManaSymbol{}, err
		}
		return card.GenericNumber(n), nil
	}
	switch src {
	case "S":
		return card.Snow(), nil
	case "X":
		return card.Variable(card.ManaVariableX), nil
	case "Y":
		return card.Variable(card.ManaVariableY), nil
	case "Z":
		return card.Variable(card.ManaVariableZ), nil
	}

	var phyrexian, splitTwoGeneric bool
	var colors []card.Color
	for _, spec := range strings.Split(src, "/") {
		switch spec {
		case "P":
			phyrexian = true
		case "2":
			splitTwoGeneric = true
		default:
			if len(spec) != 1 {
				return card.ManaSymbol{}, fmt.Errorf("bad mana symbol {%s}", src)
			}
			c, err := parseColor(rune(spec[0]))
			if err != nil {
				return card.ManaSymbol{}, fmt.Errorf("bad mana symbol {%s}: %w", src, err)
			}
			colors = append(colors, c)
		}
	}

	switch len(colors) {
	case 2:
		return card.ConventionalColoredSymbol(phyrexian, splitTwoGeneric, colors[0], &colors[1]), nil
	case 1:
		return card.ConventionalColoredSymbol(phyrexian, splitTwoGeneric, colors[0], nil), nil
	default:
		return card.ManaSymbol{}, fmt.Errorf("bad mana symbol {%s}", src)
	}
}

func parseColor(ch rune) (card.Color, error) {
	switch ch {
	case 'W':
		return card.ColorWhite, nil
	case 'U':
		return card.ColorBlue, nil
	case 'B':
		return card.ColorBlack, nil
	case 'R':
		return card.ColorRed, nil
	case 'G':
		return card.ColorGreen, nil
	case 'C':
		return card.ColorColorless, nil
	default:
		return 0, fmt.Errorf("%q is not a valid color", ch)
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
