package cmd

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage"
	"github.com/spf13/cobra"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validate every block of a stored chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, err := loadGenesis()
		if err != nil {
			return err
		}

		strg, err := storage.Open(engine, dbPath)
		if err != nil {
			return err
		}
		defer strg.Close()

		chain, err := database.ReadChain(strg)
		if err != nil {
			return fmt.Errorf("reading chain: %w", err)
		}

		if err := database.ValidateChain(gen.Difficulty, chain); err != nil {
			var ce *database.ChainError
			if errors.As(err, &ce) {
				fmt.Fprintf(cmd.OutOrStdout(), "INVALID: index[%d] id[%d] reason[%s]\n", ce.Index, ce.ID, database.Reason(err))
			}
			return err
		}

		tip := chain[len(chain)-1]
		fmt.Fprintf(cmd.OutOrStdout(), "VALID: length[%d] latest[%s]\n", len(chain), tip.Hash)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
