package card

import (
	"bytes"
	"testing"
)

func TestCardRefPrimaryKeyRoundTrip(t *testing.T) {
	cases := []CardRef{
		{Set: "FOG", CollectorNumber: NumericCollectorNumber(42), Printing: 0},
		{Set: "FOG", CollectorNumber: NumericCollectorNumber(42), Printing: 2},
		{Set: "PROMO", CollectorNumber: TextCollectorNumber("P1"), Printing: 0},
		{Set: "X", CollectorNumber: NumericCollectorNumber(0)},
	}
	for i, cr := range cases {
		pk, err := cr.ToPrimaryKey()
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		got, err := CardRefFromPrimaryKey(pk)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if got.Set != cr.Set || got.Printing != cr.Printing {
			t.Fatalf("case %d: got %+v want %+v", i, got, cr)
		}
		if got.CollectorNumber != cr.CollectorNumber {
			t.Fatalf("case %d: collector number mismatch: got %+v want %+v", i, got.CollectorNumber, cr.CollectorNumber)
		}
	}
}

func TestDistinctCardRefsProduceDistinctKeys(t *testing.T) {
	a, err := (CardRef{Set: "FOG", CollectorNumber: NumericCollectorNumber(1)}).ToPrimaryKey()
	if err != nil {
		t.Fatal(err)
	}
	b, err := (CardRef{Set: "FOG", CollectorNumber: NumericCollectorNumber(2)}).ToPrimaryKey()
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("different collector numbers produced the same primary key")
	}

	c, err := (CardRef{Set: "FOG", CollectorNumber: NumericCollectorNumber(1), Printing: 1}).ToPrimaryKey()
	if err != nil {
		t.Fatal(err)
	}
	if a == c {
		t.Fatal("different printings produced the same primary key")
	}
}

func TestPrimaryKeyWireRoundTrip(t *testing.T) {
	pk := PrimaryKey{Lo: 0x1122334455667788, Hi: 0x99AABBCCDDEEFF00}
	var buf bytes.Buffer
	if err := pk.Write(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := ReadPrimaryKey(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if got != pk {
		t.Fatalf("got %+v want %+v", got, pk)
	}
}

func TestToPrimaryKeyRejectsOverlongSet(t *testing.T) {
	cr := CardRef{
		Set:             "THIS SET CODE IS DEFINITELY LONGER THAN SIXTEEN BYTES",
		CollectorNumber: NumericCollectorNumber(1),
	}
	if _, err := cr.ToPrimaryKey(); err == nil {
		t.Fatal("expected an error for a set code too long to fit the fixed-size key")
	}
}
