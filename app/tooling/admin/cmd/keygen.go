package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var keyPath string

// keygenCmd represents the keygen command
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate the miner key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		privateKey, err := crypto.GenerateKey()
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(keyPath), 0755); err != nil {
			return err
		}

		if err := crypto.SaveECDSA(keyPath, privateKey); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "KEY: path[%s] address[%s]\n", keyPath, crypto.PubkeyToAddress(privateKey.PublicKey).Hex())

		return nil
	},
}

func init() {
	keygenCmd.Flags().StringVar(&keyPath, "path", "zblock/miner.ecdsa", "Path to write the private key.")
	rootCmd.AddCommand(keygenCmd)
}
