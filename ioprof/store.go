package ioprof

import (
	"github.com/tidwall/buntdb"
)

// ExtentStore is an optional on-disk backing for the file->LBA-range
// index. Large extent sets on a memory-constrained host can spill
// FilesToLBAs here instead of holding every range string in a Go map.
type ExtentStore struct {
	db *buntdb.DB
}

// OpenExtentStore opens (or creates) a buntdb-backed extent store at
// path, or an in-memory one when path is ":memory:".
func OpenExtentStore(path string) (*ExtentStore, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}
	return &ExtentStore{db: db}, nil
}

func (s *ExtentStore) Close() error { return s.db.Close() }

// Put appends a range string for path, matching GlobalState.MergeExtents'
// accumulate-by-concatenation semantics so the two backends are
// interchangeable.
func (s *ExtentStore) Put(path, ranges string) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		if existing, err := tx.Get(path); err == nil {
			ranges = existing + " " + ranges
		} else if err != buntdb.ErrNotFound {
			return err
		}
		_, _, err := tx.Set(path, ranges, nil)
		return err
	})
}

// Each calls fn for every stored (path, ranges) pair, in the same shape
// BuildInvertedIndex expects from GlobalState.FilesToLBAs.
func (s *ExtentStore) Each(fn func(path, ranges string) bool) error {
	return s.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(key, value string) bool {
			return fn(key, value)
		})
	})
}
