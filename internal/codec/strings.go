package codec

import "io"

// WriteString emits a length-prefixed UTF-8 string. The length uses the
// varint encoding, sharing its first byte with ext when the caller has
// claimed bits of it (e.g. a 3-bit rarity packed into the top of a card
// name's length byte).
func WriteString(w io.Writer, s string, ext ExternalBits) error {
	if err := WriteUvarintExt(w, uint64(len(s)), ext); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// ReadString decodes a string written by WriteString.
func ReadString(r io.Reader, ext ExternalBits) (string, error) {
	n, err := ReadUvarintExt(r, ext)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// SkipString advances past a string without allocating its content. It is
// the fast-codec seek_after operation for strings: there's no way to skip a
// variable-length string without decoding its length, so this still reads
// a varint, but discards the body via io.CopyN into io.Discard instead of
// building a string.
func SkipString(r io.Reader, ext ExternalBits) error {
	n, err := ReadUvarintExt(r, ext)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	_, err = io.CopyN(io.Discard, r, int64(n))
	return err
}

// WriteVector emits a length-prefixed sequence, each element serialized in
// order by writeItem.
func WriteVector[T any](w io.Writer, items []T, writeItem func(io.Writer, T) error) error {
	if err := WriteUvarint(w, uint64(len(items))); err != nil {
		return err
	}
	for _, it := range items {
		if err := writeItem(w, it); err != nil {
			return err
		}
	}
	return nil
}

// ReadVector decodes a sequence written by WriteVector.
func ReadVector[T any](r io.Reader, readItem func(io.Reader) (T, error)) ([]T, error) {
	n, err := ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]T, 0, n)
	for i := uint64(0); i < n; i++ {
		it, err := readItem(r)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

// SkipVector advances past a sequence written by WriteVector without
// allocating a slice of decoded elements.
func SkipVector(r io.Reader, skipItem func(io.Reader) error) error {
	n, err := ReadUvarint(r)
	if err != nil {
		return err
	}
	for i := uint64(0); i < n; i++ {
		if err := skipItem(r); err != nil {
			return err
		}
	}
	return nil
}
