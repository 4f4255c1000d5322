// Package genesis maintains access to the genesis block and the chain
// settings fixed at initialization.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
)

// DefaultDifficulty is the number of leading zero bits required when no
// genesis file overrides it.
const DefaultDifficulty uint = 20

// Fixture constants for the genesis block. The hash is accepted by fiat and
// is not a recomputation of the other fields.
const (
	blockData      = "genesis"
	blockHash      = "0000f0e671ceac529fee3f68db0ae3937a85e23b3c98d51a1a7796c3c042f17a"
	blockNonce     = 69
	blockTimestamp = 1577836800
)

// ErrInvalidDifficulty is returned when the difficulty can't be satisfied by
// any digest.
var ErrInvalidDifficulty = errors.New("invalid difficulty")

// Genesis represents the genesis file.
type Genesis struct {
	Date       time.Time `json:"date"`
	ChainID    uint16    `json:"chain_id"`   // The chain id represents an unique id for this running instance.
	Difficulty uint      `json:"difficulty"` // Number of leading zero bits needed to solve the work problem.
}

// Default returns the genesis settings used when no file is provided.
func Default() Genesis {
	return Genesis{
		Date:       time.Unix(blockTimestamp, 0).UTC(),
		ChainID:    1,
		Difficulty: DefaultDifficulty,
	}
}

// Load opens and consumes the genesis file. Fields missing from the file keep
// their default values.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, fmt.Errorf("validating %s: %w", path, err)
	}

	return genesis, nil
}

// Validate checks the settings can be used to run a chain. It must be called
// again after any field is overridden.
func (g Genesis) Validate() error {
	if g.Difficulty > digest.MaxDifficulty {
		return fmt.Errorf("%w: got %d, max %d", ErrInvalidDifficulty, g.Difficulty, digest.MaxDifficulty)
	}

	return nil
}

// Block returns the genesis block, the trust anchor of every chain.
func Block() database.Block {
	return database.Block{
		ID:           0,
		Data:         blockData,
		Hash:         blockHash,
		PreviousHash: digest.ZeroHash,
		Timestamp:    blockTimestamp,
		Nonce:        blockNonce,
	}
}
