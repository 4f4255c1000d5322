// Package leveldb implements the ability to read and write blocks to an
// embedded LevelDB key/value store.
package leveldb

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// blockPrefix namespaces the block keys. Keys are the prefix followed by the
// big-endian block id so the natural key order is the chain order.
var blockPrefix = []byte("blk-")

// ErrNotFound is returned when a block id isn't stored.
var ErrNotFound = ldberrors.ErrNotFound

// LevelDB represents the serialization implementation for reading and storing
// blocks in LevelDB. This implements the database.Storage interface.
type LevelDB struct {
	db *leveldb.DB
}

// New opens or creates the database at the specified path. A corrupted
// database is recovered before use.
func New(dbPath string) (*LevelDB, error) {
	opts := opt.Options{
		Filter: filter.NewBloomFilter(10),
	}

	db, err := leveldb.OpenFile(dbPath, &opts)
	if err != nil {
		if !ldberrors.IsCorrupted(err) {
			return nil, err
		}
		if db, err = leveldb.RecoverFile(dbPath, nil); err != nil {
			return nil, fmt.Errorf("recovering %s: %w", dbPath, err)
		}
	}

	return &LevelDB{db: db}, nil
}

// Close releases the database files.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

// Write stores the specified block under its id.
func (l *LevelDB) Write(block database.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return err
	}

	return l.db.Put(key(block.ID), data, nil)
}

// GetBlock returns the block with the specified id.
func (l *LevelDB) GetBlock(id uint64) (database.Block, error) {
	data, err := l.db.Get(key(id), nil)
	if err != nil {
		return database.Block{}, err
	}

	var block database.Block
	if err := json.Unmarshal(data, &block); err != nil {
		return database.Block{}, fmt.Errorf("decoding blk[%d]: %w", id, err)
	}

	return block, nil
}

// ForEach returns an iterator to walk through all the blocks in id order.
func (l *LevelDB) ForEach() database.Iterator {
	return &levelDBIterator{iter: l.db.NewIterator(util.BytesPrefix(blockPrefix), nil)}
}

// Reset deletes every stored block in a single batch.
func (l *LevelDB) Reset() error {
	iter := l.db.NewIterator(util.BytesPrefix(blockPrefix), nil)
	defer iter.Release()

	var batch leveldb.Batch
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	if err := iter.Error(); err != nil {
		return err
	}

	return l.db.Write(&batch, nil)
}

// key forms the storage key for the specified block id.
func key(id uint64) []byte {
	k := make([]byte, len(blockPrefix)+8)
	copy(k, blockPrefix)
	binary.BigEndian.PutUint64(k[len(blockPrefix):], id)
	return k
}

// =============================================================================

// levelDBIterator adapts a LevelDB iterator to the database Iterator
// interface. The underlying iterator is released on the first failure or
// at the end of chain, whichever comes first.
type levelDBIterator struct {
	iter iterator.Iterator
	err  error
	eoc  bool
}

// Next decodes the next stored block.
func (li *levelDBIterator) Next() (database.Block, error) {
	if li.eoc {
		return database.Block{}, errors.New("end of chain")
	}

	if li.err != nil {
		return database.Block{}, li.err
	}

	if !li.iter.Next() {
		err := li.iter.Error()
		li.iter.Release()

		// An iteration failure is reported before the end of chain so the
		// caller doesn't mistake a partial read for the whole chain.
		if err != nil {
			li.err = err
			return database.Block{}, err
		}

		li.eoc = true
		return database.Block{}, errors.New("end of chain")
	}

	var block database.Block
	if err := json.Unmarshal(li.iter.Value(), &block); err != nil {
		li.err = fmt.Errorf("decoding key %x: %w", li.iter.Key(), err)
		li.iter.Release()
		return database.Block{}, li.err
	}

	return block, nil
}

// Done returns the end of chain value.
func (li *levelDBIterator) Done() bool {
	return li.eoc
}
