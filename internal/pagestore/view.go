package pagestore

import "bytes"

// View specializes a Store for one value type T, so a tree never has to
// juggle raw bytes directly. Different trees in the same file use
// different Views over the same underlying Store — the "multitype page
// store, single-type view" split called for in §4.2.
type View[T any] struct {
	Store  *Store
	Encode func(T) ([]byte, error)
	Decode func([]byte) (T, error)
}

// NewView builds a typed view over an already-open Store.
func NewView[T any](s *Store, encode func(T) ([]byte, error), decode func([]byte) (T, error)) View[T] {
	return View[T]{Store: s, Encode: encode, Decode: decode}
}

// Get decodes the page at id as a T.
func (v View[T]) Get(id PageID) (T, error) {
	var zero T
	raw, err := v.Store.Read(id)
	if err != nil {
		return zero, err
	}
	return v.Decode(raw)
}

// NewWith allocates a page and fills it from a T-producing callback.
func (v View[T]) NewWith(fill func(id PageID) (T, error)) (PageID, error) {
	return v.Store.NewPageWith(func(id PageID) ([]byte, error) {
		val, err := fill(id)
		if err != nil {
			return nil, err
		}
		return v.Encode(val)
	})
}

// Put re-encodes and writes a value over an already-allocated page.
func (v View[T]) Put(id PageID, val T) error {
	data, err := v.Encode(val)
	if err != nil {
		return err
	}
	return v.Store.Write(id, data)
}

// BytesReader is a small helper so Decode callbacks that want an io.Reader
// (most of them, since the codec package works over io.Reader/io.Writer)
// don't each need to import bytes themselves.
func BytesReader(b []byte) *bytes.Reader { return bytes.NewReader(b) }
