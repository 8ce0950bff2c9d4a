package pagestore

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestNewPageWithFirstPageIsOne(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.cards")
	s, err := Open(path, DefaultPageSize)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	id, err := s.NewPageWith(func(PageID) ([]byte, error) { return []byte("layout"), nil })
	if err != nil {
		t.Fatal(err)
	}
	if id != 1 {
		t.Fatalf("first page id = %d, want 1", id)
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.cards")
	s, err := Open(path, DefaultPageSize)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	id, err := s.NewPageWith(func(PageID) ([]byte, error) { return []byte("hello"), nil })
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.Read(id)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got[:5], []byte("hello")) {
		t.Fatalf("got %q", got[:5])
	}
	if len(got) != DefaultPageSize {
		t.Fatalf("page not padded to page size: %d", len(got))
	}
}

func TestNestedAllocationObservedBeforeReturn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.cards")
	s, err := Open(path, DefaultPageSize)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var childID PageID
	parentID, err := s.NewPageWith(func(PageID) ([]byte, error) {
		var err error
		childID, err = s.NewPageWith(func(PageID) ([]byte, error) { return []byte("child"), nil })
		return []byte("parent"), err
	})
	if err != nil {
		t.Fatal(err)
	}
	if childID == NullPage || parentID == NullPage {
		t.Fatal("expected both pages allocated")
	}
	if childID == parentID {
		t.Fatal("child and parent got the same id")
	}

	gotChild, err := s.Read(childID)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(gotChild[:5], []byte("child")) {
		t.Fatalf("child page content wrong: %q", gotChild[:5])
	}
}

func TestReadPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.cards")
	s, err := Open(path, DefaultPageSize)
	if err != nil {
		t.Fatal(err)
	}
	id, err := s.NewPageWith(func(PageID) ([]byte, error) { return []byte("persisted"), nil })
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Sync(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := Open(path, DefaultPageSize)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	got, err := s2.Read(id)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got[:9], []byte("persisted")) {
		t.Fatalf("got %q", got[:9])
	}
}

func TestWriteRejectsOversizedPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.cards")
	s, err := Open(path, 16)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	err = s.Write(1, make([]byte, 17))
	if err == nil {
		t.Fatal("expected error writing oversized page")
	}
}
