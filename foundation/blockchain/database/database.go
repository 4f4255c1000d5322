// Package database handles the block format, the proof of work search and
// the validation and fork-choice rules for a chain of blocks. It also defines
// the storage behavior used to persist a chain.
package database

import "fmt"

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Storage interface {
	Write(block Block) error
	GetBlock(id uint64) (Block, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (Block, error)
	Done() bool
}

// =============================================================================

// ReadChain reads every block from storage starting with genesis. The blocks
// are returned as stored, no validation is performed.
func ReadChain(strg Storage) ([]Block, error) {
	var chain []Block

	iter := strg.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, fmt.Errorf("reading blk[%d]: %w", len(chain), err)
		}
		chain = append(chain, block)
	}

	return chain, nil
}

// WriteChain clears the storage and writes the specified chain in order.
func WriteChain(strg Storage, chain []Block) error {
	if err := strg.Reset(); err != nil {
		return fmt.Errorf("reset storage: %w", err)
	}

	for _, block := range chain {
		if err := strg.Write(block); err != nil {
			return fmt.Errorf("write blk[%d]: %w", block.ID, err)
		}
	}

	return nil
}
