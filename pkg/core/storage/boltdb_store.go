package storage

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/n3-go/core/pkg/core/storage/dbconfig"
	bolt "go.etcd.io/bbolt"
)

var bucket = []byte("n3")

// BoltDBStore is a Store backed by a single bbolt bucket.
type BoltDBStore struct {
	db *bolt.DB
}

// NewBoltDBStore opens (creating if necessary) a BoltDB store at the
// configured path.
func NewBoltDBStore(cfg dbconfig.BoltDBOptions) (*BoltDBStore, error) {
	if err := ensureDir(cfg.FilePath); err != nil {
		return nil, err
	}
	db, err := bolt.Open(cfg.FilePath, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltDBStore{db: db}, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0750)
}

func (s *BoltDBStore) Get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucket).Get(key)
		if v == nil {
			return ErrKeyNotFound
		}
		value = bytes.Clone(v)
		return nil
	})
	return value, err
}

func (s *BoltDBStore) Put(key, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put(key, value)
	})
}

func (s *BoltDBStore) Delete(key []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete(key)
	})
}

func (s *BoltDBStore) PutChangeSet(puts map[string][]byte, dels map[string][]byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		for k, v := range puts {
			if err := b.Put([]byte(k), v); err != nil {
				return err
			}
		}
		for k := range dels {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltDBStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	_ = s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucket).Cursor()
		if rng.Backwards {
			return seekBackwards(c, rng, f)
		}
		return seekForwards(c, rng, f)
	})
}

func seekForwards(c *bolt.Cursor, rng SeekRange, f func(k, v []byte) bool) error {
	start := rng.Prefix
	if len(rng.Start) > 0 {
		start = append(append([]byte{}, rng.Prefix...), rng.Start...)
	}
	for k, v := c.Seek(start); k != nil && bytes.HasPrefix(k, rng.Prefix); k, v = c.Next() {
		if !f(bytes.Clone(k), bytes.Clone(v)) {
			break
		}
	}
	return nil
}

func seekBackwards(c *bolt.Cursor, rng SeekRange, f func(k, v []byte) bool) error {
	var k, v []byte
	if len(rng.Start) > 0 {
		start := append(append([]byte{}, rng.Prefix...), rng.Start...)
		k, v = c.Seek(start)
		if k == nil {
			k, v = c.Last()
		} else if bytes.Compare(k, start) > 0 {
			k, v = c.Prev()
		}
	} else {
		k, v = c.Last()
	}
	for ; k != nil; k, v = c.Prev() {
		if bytes.HasPrefix(k, rng.Prefix) {
			if !f(bytes.Clone(k), bytes.Clone(v)) {
				break
			}
		} else if bytes.Compare(k, rng.Prefix) < 0 {
			break
		}
	}
	return nil
}

func (s *BoltDBStore) SeekGC(rng SeekRange, keep func(k, v []byte) bool) error {
	var toDrop [][]byte
	s.Seek(rng, func(k, v []byte) bool {
		if !keep(k, v) {
			toDrop = append(toDrop, bytes.Clone(k))
		}
		return true
	})
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		for _, k := range toDrop {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltDBStore) Close() error { return s.db.Close() }
