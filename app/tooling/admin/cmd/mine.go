package cmd

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/state"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage"
	"github.com/spf13/cobra"
)

var data string

// mineCmd represents the mine command
var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine a payload onto the stored chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		if data == "" {
			return errors.New("data is required")
		}

		gen, err := loadGenesis()
		if err != nil {
			return err
		}

		strg, err := storage.Open(engine, dbPath)
		if err != nil {
			return err
		}

		st, err := state.New(state.Config{
			Genesis: gen,
			Storage: strg,
		})
		if err != nil {
			strg.Close()
			return err
		}
		defer st.Shutdown()

		block, err := st.MineData(cmd.Context(), data)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "MINED: id[%d] nonce[%d] hash[%s]\n", block.ID, block.Nonce, block.Hash)

		return nil
	},
}

func init() {
	mineCmd.Flags().StringVar(&data, "data", "", "Payload to record in the block.")
	rootCmd.AddCommand(mineCmd)
}
