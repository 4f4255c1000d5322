// Package storage selects one of the block storage backends by name.
package storage

import (
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage/leveldb"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage/memory"
)

// Set of storage engines the node can run with.
const (
	EngineMemory  = "memory"
	EngineDisk    = "disk"
	EngineLevelDB = "leveldb"
)

// Open constructs the storage backend for the named engine. The path is
// ignored by the memory engine.
func Open(engine string, path string) (database.Storage, error) {
	switch engine {
	case EngineMemory:
		return memory.New(), nil
	case EngineDisk:
		return disk.New(path)
	case EngineLevelDB:
		return leveldb.New(path)
	}

	return nil, fmt.Errorf("unknown storage engine %q", engine)
}
