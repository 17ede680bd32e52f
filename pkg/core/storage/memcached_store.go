package storage

import (
	"bytes"
	"sort"
	"sync"
)

type cacheOp int

const (
	opNone cacheOp = iota
	opPut
	opDel
)

// MemCachedStore overlays a persistent Store with a volatile, lockable
// write-back cache: reads check the local overlay first and fall back
// to the wrapped Store, writes accumulate locally until Persist flushes
// them down in one batch. This is the overlay the DAO layer stacks
// per-block and per-transaction to get cheap rollback.
type MemCachedStore struct {
	MemoryStore

	mut      sync.RWMutex
	ps       Store
	private  bool
	ops      map[string]cacheOp
}

// NewMemCachedStore wraps ps with a shared (non-private) cache.
func NewMemCachedStore(ps Store) *MemCachedStore {
	return &MemCachedStore{
		MemoryStore: *NewMemoryStore(),
		ps:          ps,
		ops:         make(map[string]cacheOp),
	}
}

// NewPrivateMemCachedStore wraps ps with a private cache: a failed
// Persist does not lose already-applied writes the way a shared cache's
// parent state would, since nothing but this overlay observes them until
// Persist succeeds.
func NewPrivateMemCachedStore(ps Store) *MemCachedStore {
	s := NewMemCachedStore(ps)
	s.private = true
	return s
}

func (s *MemCachedStore) Get(key []byte) ([]byte, error) {
	s.mut.RLock()
	op, tracked := s.ops[string(key)]
	s.mut.RUnlock()
	if tracked {
		if op == opDel {
			return nil, ErrKeyNotFound
		}
		return s.MemoryStore.Get(key)
	}
	return s.ps.Get(key)
}

func (s *MemCachedStore) Put(key, value []byte) error {
	s.mut.Lock()
	defer s.mut.Unlock()
	s.ops[string(key)] = opPut
	return s.MemoryStore.Put(key, value)
}

func (s *MemCachedStore) Delete(key []byte) error {
	s.mut.Lock()
	defer s.mut.Unlock()
	s.ops[string(key)] = opDel
	return s.MemoryStore.Delete(key)
}

func (s *MemCachedStore) PutChangeSet(puts map[string][]byte, dels map[string][]byte) error {
	s.mut.Lock()
	defer s.mut.Unlock()
	for k, v := range puts {
		s.ops[k] = opPut
		s.MemoryStore.mem[k] = v
	}
	for k := range dels {
		s.ops[k] = opDel
		delete(s.MemoryStore.mem, k)
	}
	return nil
}

// Seek iterates over the merged view: local overlay entries take
// precedence over the wrapped Store, results are returned in sorted key
// order (matching the on-disk backends' cursor order).
func (s *MemCachedStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	s.mut.RLock()
	seen := make(map[string]struct{}, len(s.ops))
	var merged []KeyValue
	for k, op := range s.ops {
		if !bytes.HasPrefix([]byte(k), rng.Prefix) {
			continue
		}
		seen[k] = struct{}{}
		if op == opPut {
			merged = append(merged, KeyValue{Key: []byte(k), Value: s.MemoryStore.mem[k]})
		}
	}
	s.mut.RUnlock()

	s.ps.Seek(SeekRange{Prefix: rng.Prefix}, func(k, v []byte) bool {
		if _, ok := seen[string(k)]; ok {
			return true
		}
		merged = append(merged, KeyValue{Key: bytes.Clone(k), Value: bytes.Clone(v)})
		return true
	})

	sort.Slice(merged, func(i, j int) bool {
		if rng.Backwards {
			return bytes.Compare(merged[i].Key, merged[j].Key) > 0
		}
		return bytes.Compare(merged[i].Key, merged[j].Key) < 0
	})
	var start []byte
	if len(rng.Start) > 0 {
		start = append(append([]byte{}, rng.Prefix...), rng.Start...)
	}
	for _, kv := range merged {
		if start != nil {
			c := bytes.Compare(kv.Key, start)
			if (!rng.Backwards && c < 0) || (rng.Backwards && c > 0) {
				continue
			}
		}
		if !f(kv.Key, kv.Value) {
			return
		}
	}
}

func (s *MemCachedStore) SeekGC(rng SeekRange, keep func(k, v []byte) bool) error {
	var toDrop [][]byte
	s.Seek(rng, func(k, v []byte) bool {
		if !keep(k, v) {
			toDrop = append(toDrop, bytes.Clone(k))
		}
		return true
	})
	for _, k := range toDrop {
		if err := s.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// GetBatch materializes the pending overlay as a MemBatch, annotating
// each entry with whether it already existed in the wrapped Store.
func (s *MemCachedStore) GetBatch() *MemBatch {
	s.mut.RLock()
	defer s.mut.RUnlock()
	b := &MemBatch{}
	for k, op := range s.ops {
		_, errGet := s.ps.Get([]byte(k))
		existed := errGet == nil
		switch op {
		case opPut:
			b.Put = append(b.Put, KeyValueExists{
				KeyValue: KeyValue{Key: []byte(k), Value: s.MemoryStore.mem[k]},
				Exists:   existed,
			})
		case opDel:
			b.Deleted = append(b.Deleted, KeyValueExists{
				KeyValue: KeyValue{Key: []byte(k)},
				Exists:   existed,
			})
		}
	}
	return b
}

// Persist flushes the pending overlay into the wrapped Store in a single
// PutChangeSet call and clears the local cache on success. It returns the
// number of keys flushed. A failure leaves the overlay untouched so the
// caller can retry or, for a private store, keep serving the buffered
// writes.
func (s *MemCachedStore) Persist() (int, error) {
	return s.persist(false)
}

// PersistSync is Persist without any additional durability guarantee
// beyond what the wrapped Store's PutChangeSet already provides; kept
// distinct from Persist to mirror call sites that need to state their
// synchronicity intent explicitly.
func (s *MemCachedStore) PersistSync() (int, error) {
	return s.persist(true)
}

func (s *MemCachedStore) persist(_ bool) (int, error) {
	s.mut.Lock()
	if len(s.ops) == 0 {
		s.mut.Unlock()
		return 0, nil
	}
	puts := make(map[string][]byte)
	dels := make(map[string][]byte)
	for k, op := range s.ops {
		switch op {
		case opPut:
			puts[k] = s.MemoryStore.mem[k]
		case opDel:
			dels[k] = nil
		}
	}
	n := len(puts) + len(dels)
	s.mut.Unlock()

	err := s.ps.PutChangeSet(puts, dels)
	if err != nil {
		return 0, err
	}

	s.mut.Lock()
	for k := range puts {
		delete(s.ops, k)
		delete(s.MemoryStore.mem, k)
	}
	for k := range dels {
		delete(s.ops, k)
		delete(s.MemoryStore.mem, k)
	}
	s.mut.Unlock()
	return n, nil
}

func (s *MemCachedStore) Close() error {
	if s.private {
		return nil
	}
	return s.ps.Close()
}
