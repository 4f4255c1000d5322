package cmd

import (
	"encoding/json"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/spf13/cobra"
)

// genesisCmd represents the genesis command
var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Print the genesis settings and block",
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, err := loadGenesis()
		if err != nil {
			return err
		}

		out := struct {
			Genesis genesis.Genesis `json:"genesis"`
			Block   database.Block  `json:"block"`
		}{
			Genesis: gen,
			Block:   genesis.Block(),
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(genesisCmd)
}
