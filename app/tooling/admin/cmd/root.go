// Package cmd contains the admin app commands.
package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/spf13/cobra"
)

var (
	engine      string
	dbPath      string
	genesisPath string
	difficulty  uint
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "admin",
	Short:        "Administrative tasks for the proof of work node",
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&engine, "engine", "e", "disk", "Storage engine: memory, disk or leveldb.")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "zblock/blocks/", "Path to the block storage.")
	rootCmd.PersistentFlags().StringVarP(&genesisPath, "genesis", "g", "zblock/genesis.json", "Path to the genesis file.")
	rootCmd.PersistentFlags().UintVar(&difficulty, "difficulty", 0, "Overrides the genesis difficulty when set.")
}

// loadGenesis returns the genesis settings with the difficulty override
// applied. A missing genesis file falls back to the defaults.
func loadGenesis() (genesis.Genesis, error) {
	gen, err := genesis.Load(genesisPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		gen = genesis.Default()
	case err != nil:
		return genesis.Genesis{}, err
	}

	if difficulty != 0 {
		gen.Difficulty = difficulty
	}

	if err := gen.Validate(); err != nil {
		return genesis.Genesis{}, err
	}

	return gen, nil
}
