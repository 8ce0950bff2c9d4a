package codec

import (
	"bytes"
	"io"
	"testing"
)

func TestUvarintRoundTrip(t *testing.T) {
	vals := []uint64{0, 1, 2, 63, 64, 127, 128, 300, 1 << 20, 1_000_000, 1 << 40, ^uint64(0)}
	for _, v := range vals {
		var buf bytes.Buffer
		if err := WriteUvarint(&buf, v); err != nil {
			t.Fatalf("write %d: %v", v, err)
		}
		got, err := ReadUvarint(&buf)
		if err != nil {
			t.Fatalf("read %d: %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip %d -> %d", v, got)
		}
	}
}

func TestVarintSigned(t *testing.T) {
	vals := []int64{0, 1, -1, 42, -42, 1 << 30, -(1 << 30)}
	for _, v := range vals {
		var buf bytes.Buffer
		if err := WriteVarint(&buf, v); err != nil {
			t.Fatal(err)
		}
		got, err := ReadVarint(&buf)
		if err != nil {
			t.Fatal(err)
		}
		if got != v {
			t.Fatalf("round trip %d -> %d", v, got)
		}
	}
}

func TestUvarintExtRoundTrip(t *testing.T) {
	for claimed := uint8(0); claimed < 6; claimed++ {
		claimedBits := byte(0)
		if claimed > 0 {
			claimedBits = 0b101 // arbitrary nonzero high bits, only top `claimed` used
			claimedBits <<= (8 - claimed)
			claimedBits &= ^(byte(0xff) >> claimed) // keep only top `claimed` bits
		}
		for _, v := range []uint64{0, 1, 3, 40, 4096, 1 << 20} {
			var buf bytes.Buffer
			ext := ExternalBits{FirstByte: claimedBits, Claimed: claimed}
			if err := WriteUvarintExt(&buf, v, ext); err != nil {
				t.Fatalf("claimed=%d write %d: %v", claimed, v, err)
			}

			firstByte := buf.Bytes()[0]
			rest := bytes.NewReader(buf.Bytes()[1:])
			if claimed == 0 {
				// Nothing claimed: the reader consumes its own first byte.
				rest = bytes.NewReader(buf.Bytes())
			}

			got, err := ReadUvarintExt(rest, ExternalBits{FirstByte: firstByte, Claimed: claimed})
			if err != nil {
				t.Fatalf("claimed=%d read %d: %v", claimed, v, err)
			}
			if got != v {
				t.Fatalf("claimed=%d round trip %d -> %d", claimed, v, got)
			}
			if claimed > 0 {
				mask := byte(0xff) << (8 - claimed)
				if firstByte&mask != claimedBits&mask {
					t.Fatalf("claimed bits clobbered: wrote %08b read back %08b", claimedBits, firstByte)
				}
			}
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	cases := []string{"", "a", "Sift Through Sands", "unicode: カード"}
	for _, s := range cases {
		var buf bytes.Buffer
		if err := WriteString(&buf, s, NoExternalBits); err != nil {
			t.Fatal(err)
		}
		got, err := ReadString(&buf, NoExternalBits)
		if err != nil {
			t.Fatal(err)
		}
		if got != s {
			t.Fatalf("round trip %q -> %q", s, got)
		}
	}
}

func TestStringSharedFirstByte(t *testing.T) {
	// a 3-bit rarity shares the top of the name's length byte, as in §4.1's
	// worked example.
	rarity := byte(0b101)
	ext := ExternalBits{FirstByte: rarity << 5, Claimed: 3}

	var buf bytes.Buffer
	name := "Sift Through Sands"
	if err := WriteString(&buf, name, ext); err != nil {
		t.Fatal(err)
	}

	firstByte, err := ReadByte(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if firstByte>>5 != rarity {
		t.Fatalf("rarity bits lost: got %03b want %03b", firstByte>>5, rarity)
	}

	got, err := ReadString(&buf, ExternalBits{FirstByte: firstByte, Claimed: 3})
	if err != nil {
		t.Fatal(err)
	}
	if got != name {
		t.Fatalf("round trip %q -> %q", name, got)
	}
}

func TestVectorRoundTrip(t *testing.T) {
	items := []string{"Forest", "Island", "Swamp"}
	var buf bytes.Buffer
	writeItem := func(w io.Writer, s string) error { return WriteString(w, s, NoExternalBits) }
	readItem := func(r io.Reader) (string, error) { return ReadString(r, NoExternalBits) }

	if err := WriteVector(&buf, items, writeItem); err != nil {
		t.Fatal(err)
	}
	got, err := ReadVector(&buf, readItem)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(items) {
		t.Fatalf("length mismatch: %d vs %d", len(got), len(items))
	}
	for i := range items {
		if got[i] != items[i] {
			t.Fatalf("index %d: %q vs %q", i, got[i], items[i])
		}
	}
}

func TestPackBools(t *testing.T) {
	b := PackBools(true, false, true, true, false, false)
	got := UnpackBools(b, 6)
	want := []bool{true, false, true, true, false, false}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestShortReadIsUnexpectedEOF(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteString(&buf, "truncated", NoExternalBits); err != nil {
		t.Fatal(err)
	}
	truncated := bytes.NewReader(buf.Bytes()[:2])
	if _, err := ReadString(truncated, NoExternalBits); err != io.ErrUnexpectedEOF {
		t.Fatalf("want io.ErrUnexpectedEOF, got %v", err)
	}
}
