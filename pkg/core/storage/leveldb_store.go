package storage

import (
	"bytes"

	"github.com/n3-go/core/pkg/core/storage/dbconfig"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDBStore is a Store backed by goleveldb, the other widely used
// embedded-LSM option alongside BoltDB.
type LevelDBStore struct {
	db *leveldb.DB
}

// NewLevelDBStore opens (creating if necessary) a LevelDB store at the
// configured directory.
func NewLevelDBStore(cfg dbconfig.LevelDBOptions) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(cfg.DataDirectoryPath, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBStore{db: db}, nil
}

func (s *LevelDBStore) Get(key []byte) ([]byte, error) {
	v, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrKeyNotFound
	}
	return v, err
}

func (s *LevelDBStore) Put(key, value []byte) error {
	return s.db.Put(key, value, nil)
}

func (s *LevelDBStore) Delete(key []byte) error {
	return s.db.Delete(key, nil)
}

func (s *LevelDBStore) PutChangeSet(puts map[string][]byte, dels map[string][]byte) error {
	batch := new(leveldb.Batch)
	for k, v := range puts {
		batch.Put([]byte(k), v)
	}
	for k := range dels {
		batch.Delete([]byte(k))
	}
	return s.db.Write(batch, nil)
}

func (s *LevelDBStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	if len(rng.Start) > 0 {
		start := append(append([]byte{}, rng.Prefix...), rng.Start...)
		inner := f
		f = func(k, v []byte) bool {
			c := bytes.Compare(k, start)
			if (!rng.Backwards && c < 0) || (rng.Backwards && c > 0) {
				return true
			}
			return inner(k, v)
		}
	}
	iter := s.db.NewIterator(util.BytesPrefix(rng.Prefix), nil)
	defer iter.Release()
	if rng.Backwards {
		for ok := iter.Last(); ok; ok = iter.Prev() {
			if !f(cloneLevelDBKey(iter), cloneLevelDBValue(iter)) {
				return
			}
		}
		return
	}
	for iter.Next() {
		if !f(cloneLevelDBKey(iter), cloneLevelDBValue(iter)) {
			return
		}
	}
}

func cloneLevelDBKey(iter interface{ Key() []byte }) []byte {
	k := iter.Key()
	out := make([]byte, len(k))
	copy(out, k)
	return out
}

func cloneLevelDBValue(iter interface{ Value() []byte }) []byte {
	v := iter.Value()
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

func (s *LevelDBStore) SeekGC(rng SeekRange, keep func(k, v []byte) bool) error {
	var toDrop [][]byte
	s.Seek(rng, func(k, v []byte) bool {
		if !keep(k, v) {
			toDrop = append(toDrop, k)
		}
		return true
	})
	batch := new(leveldb.Batch)
	for _, k := range toDrop {
		batch.Delete(k)
	}
	return s.db.Write(batch, nil)
}

func (s *LevelDBStore) Close() error { return s.db.Close() }
