package public

import (
	"github.com/ardanlabs/powchain/business/sys/validate"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
)

// submitData is the payload a client asks the node to mine.
type submitData struct {
	Data string `json:"data" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (sd submitData) Validate() error {
	return validate.Check(sd)
}

type submitted struct {
	Status  string `json:"status"`
	Seq     uint64 `json:"seq"`
	Pending int    `json:"pending"`
}

type genesisInfo struct {
	Genesis genesis.Genesis `json:"genesis"`
	Block   database.Block  `json:"block"`
}
