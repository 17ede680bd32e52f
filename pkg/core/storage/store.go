// Package storage implements the node's key/value persistence layer: a
// common Store interface, concrete backends (in-memory, BoltDB, LevelDB),
// and the MemCachedStore overlay the rest of the state layer builds on.
package storage

import (
	"errors"
	"fmt"

	"github.com/n3-go/core/pkg/core/storage/dbconfig"
	"github.com/n3-go/core/pkg/core/storage/dboper"
)

// KeyPrefix is the first byte of every key, partitioning the single
// key/value namespace into logical regions (MPT nodes, contract storage
// items, block/header index, ...).
type KeyPrefix byte

// Key-space prefixes. Values are spaced out to leave room for the full
// C# node prefix table without collisions.
const (
	DataExecutable KeyPrefix = 0x01
	DataMPT        KeyPrefix = 0x03
	STStorage      KeyPrefix = 0x70
	STTempStorage  KeyPrefix = 0x71
	IXHeaderHashList KeyPrefix = 0x80
	SYSCurrentBlock  KeyPrefix = 0xc0
	SYSCurrentHeader KeyPrefix = 0xc1
	SYSVersion       KeyPrefix = 0xf0
)

// ErrKeyNotFound is returned by Get when no value exists for a key.
var ErrKeyNotFound = errors.New("key not found")

// KeyValue is a single key/value pair.
type KeyValue struct {
	Key   []byte
	Value []byte
}

// KeyValueExists pairs a KeyValue with whether the key already existed in
// the backing store before this write, used to distinguish Added from
// Changed in the operation log.
type KeyValueExists struct {
	KeyValue
	Exists bool
}

// SeekRange restricts Seek/SeekGC to keys sharing Prefix, optionally
// starting from Start (exclusive of Prefix) and iterating backwards.
type SeekRange struct {
	Prefix    []byte
	Start     []byte
	Backwards bool
}

// Store is the minimal persistence contract every backend implements.
type Store interface {
	Get([]byte) ([]byte, error)
	Put(k, v []byte) error
	Delete(k []byte) error
	// PutChangeSet atomically applies a set of puts and deletes; values
	// of puts are the map values, deletes carry nil/empty value.
	PutChangeSet(puts map[string][]byte, dels map[string][]byte) error
	Seek(rng SeekRange, f func(k, v []byte) bool)
	// SeekGC is like Seek but f decides whether to keep (true) or
	// garbage-collect (false) each key, used by MPT pruning.
	SeekGC(rng SeekRange, keep func(k, v []byte) bool) error
	Close() error
}

// MemBatch is a set of pending writes and deletes awaiting Persist,
// already annotated with Exists for change-log classification.
type MemBatch struct {
	Put     []KeyValueExists
	Deleted []KeyValueExists
}

// BatchToOperations renders a MemBatch into the Added/Changed/Deleted
// operation log used by state-change subscribers.
func BatchToOperations(b *MemBatch) []dboper.Operation {
	var ops []dboper.Operation
	for _, kv := range b.Put {
		state := "Added"
		if kv.Exists {
			state = "Changed"
		}
		ops = append(ops, dboper.Operation{State: state, Key: kv.Key, Value: kv.Value})
	}
	for _, kv := range b.Deleted {
		if !kv.Exists {
			continue
		}
		ops = append(ops, dboper.Operation{State: "Deleted", Key: kv.Key})
	}
	return ops
}

// NewStore constructs the backend named by cfg.Type.
func NewStore(cfg dbconfig.DBConfiguration) (Store, error) {
	switch cfg.Type {
	case dbconfig.InMemoryDB, "":
		return NewMemoryStore(), nil
	case dbconfig.BoltDB:
		return NewBoltDBStore(cfg.BoltDBOptions)
	case dbconfig.LevelDB:
		return NewLevelDBStore(cfg.LevelDBOptions)
	default:
		return nil, fmt.Errorf("storage: unknown store type %q", cfg.Type)
	}
}
