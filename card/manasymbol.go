package card

import (
	"bytes"

	"github.com/wilSecord/mtg-organizer/internal/codec"
)

// Color is the plain 6-color enumeration a single mana symbol (or half of a
// hybrid one) names. It intentionally mirrors index.Color's axis order for
// the common case, but lives in this package since ManaSymbol needs it
// independent of any index's round-robin concerns.
type Color int

const (
	ColorWhite Color = iota
	ColorBlue
	ColorRed
	ColorGreen
	ColorBlack
	ColorColorless
)

// ManaVariable is the closed set of variable mana symbols a cost can use
// (X, Y, Z).
type ManaVariable int

const (
	ManaVariableX ManaVariable = iota
	ManaVariableY
	ManaVariableZ
)

// manaSymbolKind discriminates ManaSymbol's tagged union.
type manaSymbolKind int

const (
	msSnow manaSymbolKind = iota
	msVariable
	msLandDrop
	msLegendary
	msHalfWhite
	msOneMillionGeneric
	msGenericNumber
	msConventionalColored
)

// ManaSymbol is one element of a ManaCost: a tagged union over the
// variants spec.md §3 lists (snow; variable X/Y/Z; land-drop marker;
// legendary marker; half-white; one-million-generic sentinel; generic
// number N; conventional colored with optional phyrexian/split flags).
// Implemented as a flat struct with a kind tag rather than an interface:
// every variant but ConventionalColored carries at most one scalar payload,
// so a sum-of-fields struct is simpler to serialize and compare than a
// family of concrete types satisfying a marker interface.
type ManaSymbol struct {
	kind manaSymbolKind

	variable ManaVariable // msVariable
	generic  int          // msGenericNumber

	phyrexian       bool // msConventionalColored
	splitTwoGeneric bool
	color           Color
	splitColor      Color
	hasSplitColor   bool
}

// Constructors, one per variant.

func Snow() ManaSymbol                { return ManaSymbol{kind: msSnow} }
func Variable(v ManaVariable) ManaSymbol { return ManaSymbol{kind: msVariable, variable: v} }
func LandDrop() ManaSymbol             { return ManaSymbol{kind: msLandDrop} }
func Legendary() ManaSymbol            { return ManaSymbol{kind: msLegendary} }
func HalfWhite() ManaSymbol            { return ManaSymbol{kind: msHalfWhite} }
func OneMillionGenericMana() ManaSymbol {
	return ManaSymbol{kind: msOneMillionGeneric}
}
func GenericNumber(n int) ManaSymbol {
	return ManaSymbol{kind: msGenericNumber, generic: n}
}

// ConventionalColoredSymbol builds the common case: a (possibly Phyrexian,
// possibly split-with-generic, possibly split-with-another-color) colored
// pip.
func ConventionalColoredSymbol(phyrexian, splitTwoGeneric bool, color Color, splitColor *Color) ManaSymbol {
	s := ManaSymbol{
		kind:            msConventionalColored,
		phyrexian:       phyrexian,
		splitTwoGeneric: splitTwoGeneric,
		color:           color,
	}
	if splitColor != nil {
		s.hasSplitColor = true
		s.splitColor = *splitColor
	}
	return s
}

// Accessors used by DeriveManaCostCount and by equality-style tests.

func (s ManaSymbol) IsSnow() bool        { return s.kind == msSnow }
func (s ManaSymbol) IsLandDrop() bool    { return s.kind == msLandDrop }
func (s ManaSymbol) IsLegendary() bool   { return s.kind == msLegendary }
func (s ManaSymbol) IsHalfWhite() bool   { return s.kind == msHalfWhite }
func (s ManaSymbol) IsOneMillionGeneric() bool { return s.kind == msOneMillionGeneric }

func (s ManaSymbol) Variable() (ManaVariable, bool) {
	return s.variable, s.kind == msVariable
}
func (s ManaSymbol) GenericNumber() (int, bool) {
	return s.generic, s.kind == msGenericNumber
}
func (s ManaSymbol) ConventionalColored() (phyrexian, splitTwoGeneric bool, color Color, splitColor *Color, ok bool) {
	if s.kind != msConventionalColored {
		return false, false, 0, nil, false
	}
	if s.hasSplitColor {
		c := s.splitColor
		splitColor = &c
	}
	return s.phyrexian, s.splitTwoGeneric, s.color, splitColor, true
}

// colorOrdinal/splitOrdinal give ConventionalColored's color_combo a fixed
// 0-41 range: color_combo = splitOrdinal*6 + colorOrdinal, where
// splitOrdinal 6 means "no split color". Matches the byte layout in the
// original's dbs/serialization/mod.rs::mana_symbol_to_byte.
func colorOrdinal(c Color) uint8 {
	switch c {
	case ColorWhite:
		return 0
	case ColorBlue:
		return 1
	case ColorRed:
		return 2
	case ColorGreen:
		return 3
	case ColorBlack:
		return 4
	default:
		return 5
	}
}

func ordinalToColor(o uint8) Color {
	switch o {
	case 0:
		return ColorWhite
	case 1:
		return ColorBlue
	case 2:
		return ColorRed
	case 3:
		return ColorGreen
	case 4:
		return ColorBlack
	default:
		return ColorColorless
	}
}

// Wire layout: a ConventionalColored symbol packs into one byte as
// (phyrexian<<7)|(splitTwoGeneric<<6)|color_combo, color_combo in 0..41.
// That leaves every byte whose low 6 bits are >= 42 unreachable by any
// ConventionalColored symbol regardless of the two flag bits — 4*22 = 88
// free codes, of which this format uses 22 (flag bits fixed at 0b00):
// the original's mana_symbol_to_byte reused these same low-6 "holes" for
// Snow/Variable/GenericNumber, but its GenericNumber arm collided with
// ConventionalColored whenever phyrexian && splitTwoGeneric were both set
// (top bits 0b11 is not actually a free combination, since ConventionalColored
// legitimately sets those flags too) -- so low generic numbers round-tripped
// incorrectly. This layout fixes that by keeping the marker codes entirely
// inside the genuinely-unreachable low6>=42 band with flag bits pinned to 0,
// and spills GenericNumber values too large for one direct code into a
// varint continuation instead of silently aliasing a colored symbol.
const (
	codeSnow               = 42
	codeVariableX          = 43
	codeVariableY          = 44
	codeVariableZ          = 45
	codeLandDrop           = 46
	codeLegendary          = 47
	codeHalfWhite          = 48
	codeOneMillionGeneric  = 49
	codeGenericDirectBase  = 50 // codes 50..62 => GenericNumber(code-50), i.e. 0..12
	codeGenericDirectMax   = 62
	codeGenericContinued   = 63 // GenericNumber(13 + following varint)
)

// encodeByte writes one ManaSymbol to buf. Most variants fit in a single
// byte; GenericNumber values above what a direct code covers write a
// trailing varint after it.
func (s ManaSymbol) encodeByte(buf *bytes.Buffer) error {
	switch s.kind {
	case msSnow:
		return buf.WriteByte(codeSnow)
	case msVariable:
		switch s.variable {
		case ManaVariableX:
			return buf.WriteByte(codeVariableX)
		case ManaVariableY:
			return buf.WriteByte(codeVariableY)
		default:
			return buf.WriteByte(codeVariableZ)
		}
	case msLandDrop:
		return buf.WriteByte(codeLandDrop)
	case msLegendary:
		return buf.WriteByte(codeLegendary)
	case msHalfWhite:
		return buf.WriteByte(codeHalfWhite)
	case msOneMillionGeneric:
		return buf.WriteByte(codeOneMillionGeneric)
	case msGenericNumber:
		if s.generic >= 0 && s.generic <= codeGenericDirectMax-codeGenericDirectBase {
			return buf.WriteByte(byte(codeGenericDirectBase + s.generic))
		}
		if err := buf.WriteByte(codeGenericContinued); err != nil {
			return err
		}
		spill := uint64(s.generic) - uint64(codeGenericDirectMax-codeGenericDirectBase+1)
		return codec.WriteUvarint(buf, spill)
	default: // msConventionalColored
		var flags uint8
		if s.phyrexian {
			flags |= 1 << 7
		}
		if s.splitTwoGeneric {
			flags |= 1 << 6
		}
		splitOrd := uint8(6)
		if s.hasSplitColor {
			splitOrd = colorOrdinal(s.splitColor)
		}
		colorCombo := splitOrd*6 + colorOrdinal(s.color)
		return buf.WriteByte(flags | colorCombo)
	}
}

// decodeManaSymbol is encodeByte's inverse.
func decodeManaSymbol(r *bytes.Reader) (ManaSymbol, error) {
	b, err := codec.ReadByte(r)
	if err != nil {
		return ManaSymbol{}, err
	}

	switch b {
	case codeSnow:
		return Snow(), nil
	case codeVariableX:
		return Variable(ManaVariableX), nil
	case codeVariableY:
		return Variable(ManaVariableY), nil
	case codeVariableZ:
		return Variable(ManaVariableZ), nil
	case codeLandDrop:
		return LandDrop(), nil
	case codeLegendary:
		return Legendary(), nil
	case codeHalfWhite:
		return HalfWhite(), nil
	case codeOneMillionGeneric:
		return OneMillionGenericMana(), nil
	case codeGenericContinued:
		spill, err := codec.ReadUvarint(r)
		if err != nil {
			return ManaSymbol{}, err
		}
		n := int(spill) + (codeGenericDirectMax - codeGenericDirectBase + 1)
		return GenericNumber(n), nil
	}

	if b >= codeGenericDirectBase && b <= codeGenericDirectMax {
		return GenericNumber(int(b - codeGenericDirectBase)), nil
	}

	phyrexian := b&(1<<7) != 0
	splitTwoGeneric := b&(1<<6) != 0
	colorCombo := b & 0x3F
	colorOrd := colorCombo % 6
	splitOrd := colorCombo / 6

	var splitColor *Color
	if splitOrd != 6 {
		c := ordinalToColor(splitOrd)
		splitColor = &c
	}
	return ConventionalColoredSymbol(phyrexian, splitTwoGeneric, ordinalToColor(colorOrd), splitColor), nil
}
