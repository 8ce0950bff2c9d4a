// Package compat provides a cross-check harness for the primary-key tree:
// it mirrors every inserted primary key into a scratch bbolt bucket and
// later diffs bbolt's own key set against a full scan of the real tree.
// This plays the same role in our test binaries that gdbx's own compat
// tests give to bbolt and mdbx-go: an independently-implemented embedded
// store used purely as an oracle, never as the production engine.
package compat

import (
	"bytes"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("mirror")

// Mirror is a disposable bbolt database used only to double-check that
// every primary key inserted into the real card database is also found by
// a full scan of it.
type Mirror struct {
	db *bolt.DB
}

// Open creates (or reuses) a scratch bbolt file at path.
func Open(path string) (*Mirror, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Mirror{db: db}, nil
}

// Close releases the underlying bbolt file.
func (m *Mirror) Close() error { return m.db.Close() }

// Put mirrors one primary key/value pair.
func (m *Mirror) Put(key, value []byte) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, value)
	})
}

// Count returns the number of mirrored entries.
func (m *Mirror) Count() (int, error) {
	n := 0
	err := m.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Diff compares the mirrored key set against treeKeys, a full scan of the
// real primary-key tree. onlyInMirror are keys bbolt has that the tree scan
// didn't surface (a missed insert); onlyInTree is the reverse (a key the
// tree has that was never mirrored — a harness bug, not a tree bug, since
// every Put call happens right alongside the real Insert).
func (m *Mirror) Diff(treeKeys [][]byte) (onlyInMirror, onlyInTree [][]byte, err error) {
	treeSet := make(map[string]bool, len(treeKeys))
	for _, k := range treeKeys {
		treeSet[string(k)] = true
	}

	err = m.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if !treeSet[string(k)] {
				onlyInMirror = append(onlyInMirror, bytes.Clone(k))
			} else {
				delete(treeSet, string(k))
			}
		}
		return nil
	})
	for k := range treeSet {
		onlyInTree = append(onlyInTree, []byte(k))
	}
	return onlyInMirror, onlyInTree, err
}
