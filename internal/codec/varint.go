package codec

import "io"

// WriteUvarint emits v in the plain self-terminating varint form: the
// most-significant bit of each byte is the "more follows" flag, the
// remaining 7 bits are little-endian payload.
func WriteUvarint(w io.Writer, v uint64) error {
	var buf [10]byte
	n := 0
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf[n] = b | 0x80
			n++
			continue
		}
		buf[n] = b
		n++
		break
	}
	_, err := w.Write(buf[:n])
	return err
}

// ReadUvarint decodes a plain varint written by WriteUvarint.
func ReadUvarint(r io.Reader) (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := ReadByte(r)
		if err != nil {
			return 0, err
		}
		if shift >= 64 {
			return 0, ErrInvalidData
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// WriteUvarintExt emits v sharing its first byte with ext's already-claimed
// top bits. Unlike WriteUvarint's continuation-bit convention, the shared
// first byte uses a dedicated "end" bit sitting directly below the claimed
// bits: 1 means this is the only byte, 0 means a plain-varint continuation
// (via WriteUvarint) follows carrying the remaining high-order bits.
func WriteUvarintExt(w io.Writer, v uint64, ext ExternalBits) error {
	if ext.Claimed == 0 {
		return WriteUvarint(w, v)
	}
	free := ext.freeBits()
	if free < 1 {
		return ErrInvalidData
	}
	payloadBits := free - 1
	mask := (uint64(1) << payloadBits) - 1
	low := v & mask
	rest := v >> payloadBits

	var endFlag byte
	if rest == 0 {
		endFlag = 1
	}

	first := ext.FirstByte | (endFlag << payloadBits) | byte(low)
	if err := writeByte(w, first); err != nil {
		return err
	}
	if rest != 0 {
		return WriteUvarint(w, rest)
	}
	return nil
}

// ReadUvarintExt decodes a value written by WriteUvarintExt. ext.FirstByte
// must be the byte the caller already read off the wire (with Claimed set
// to how many top bits belong to the caller); if ext.Claimed == 0 the value
// reads and consumes its own first byte via ReadUvarint.
func ReadUvarintExt(r io.Reader, ext ExternalBits) (uint64, error) {
	if ext.Claimed == 0 {
		return ReadUvarint(r)
	}
	free := ext.freeBits()
	if free < 1 {
		return 0, ErrInvalidData
	}
	payloadBits := free - 1
	mask := byte((uint64(1) << payloadBits) - 1)
	low := ext.FirstByte & mask
	end := (ext.FirstByte >> payloadBits) & 1

	if end == 1 {
		return uint64(low), nil
	}
	rest, err := ReadUvarint(r)
	if err != nil {
		return 0, err
	}
	return (rest << payloadBits) | uint64(low), nil
}

// WriteVarint emits a signed integer using zigzag encoding over WriteUvarint.
func WriteVarint(w io.Writer, v int64) error {
	return WriteUvarint(w, zigzagEncode(v))
}

// ReadVarint decodes a signed integer written by WriteVarint.
func ReadVarint(r io.Reader) (int64, error) {
	u, err := ReadUvarint(r)
	if err != nil {
		return 0, err
	}
	return zigzagDecode(u), nil
}

func zigzagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func zigzagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}
