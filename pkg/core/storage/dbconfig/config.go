// Package dbconfig carries the on-disk store configuration, independent of
// the storage package itself so it can be embedded in node-wide config
// structures without pulling in bbolt/leveldb.
package dbconfig

// Store type names accepted by storage.NewStore.
const (
	BoltDB    = "boltdb"
	LevelDB   = "leveldb"
	InMemoryDB = "inmemory"
)

// LevelDBOptions configures the goleveldb-backed store.
type LevelDBOptions struct {
	DataDirectoryPath string `yaml:"DataDirectoryPath"`
}

// BoltDBOptions configures the bbolt-backed store.
type BoltDBOptions struct {
	FilePath string `yaml:"FilePath"`
}

// DBConfiguration selects and configures one concrete backing store.
type DBConfiguration struct {
	Type           string         `yaml:"Type"`
	LevelDBOptions LevelDBOptions `yaml:"LevelDBOptions"`
	BoltDBOptions  BoltDBOptions  `yaml:"BoltDBOptions"`
}
