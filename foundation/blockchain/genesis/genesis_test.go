package genesis_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Block(t *testing.T) {
	t.Log("Given the need to anchor every chain with the same genesis block.")
	{
		blk := genesis.Block()

		if blk.ID != 0 || blk.Nonce != 69 || blk.Data != "genesis" {
			t.Fatalf("\t%s\tShould get the fixture values: %+v", failed, blk)
		}
		t.Logf("\t%s\tShould get the fixture values.", success)

		if blk != genesis.Block() {
			t.Fatalf("\t%s\tShould get the same block on every call.", failed)
		}
		t.Logf("\t%s\tShould get the same block on every call.", success)
	}
}

func Test_Load(t *testing.T) {
	t.Log("Given the need to load chain settings from a file.")
	{
		path := filepath.Join(t.TempDir(), "genesis.json")
		if err := os.WriteFile(path, []byte(`{"chain_id":7,"difficulty":12}`), 0600); err != nil {
			t.Fatalf("\t%s\tShould be able to write the file: %v", failed, err)
		}

		gen, err := genesis.Load(path)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to load the file: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to load the file.", success)

		if gen.ChainID != 7 || gen.Difficulty != 12 {
			t.Fatalf("\t%s\tShould get the file values: %+v", failed, gen)
		}
		t.Logf("\t%s\tShould get the file values.", success)

		if gen.Date != genesis.Default().Date {
			t.Fatalf("\t%s\tShould keep defaults for missing fields.", failed)
		}
		t.Logf("\t%s\tShould keep defaults for missing fields.", success)

		if _, err := genesis.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
			t.Fatalf("\t%s\tShould fail on a missing file.", failed)
		}
		t.Logf("\t%s\tShould fail on a missing file.", success)
	}
}

func Test_Validate(t *testing.T) {
	t.Log("Given the need to reject a difficulty no digest can satisfy.")
	{
		gen := genesis.Default()
		gen.Difficulty = 256
		if err := gen.Validate(); err != nil {
			t.Fatalf("\t%s\tShould accept a difficulty of 256: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept a difficulty of 256.", success)

		gen.Difficulty = 257
		if err := gen.Validate(); !errors.Is(err, genesis.ErrInvalidDifficulty) {
			t.Fatalf("\t%s\tShould reject a difficulty of 257: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a difficulty of 257.", success)

		path := filepath.Join(t.TempDir(), "genesis.json")
		if err := os.WriteFile(path, []byte(`{"difficulty":1000}`), 0600); err != nil {
			t.Fatalf("\t%s\tShould be able to write the file: %v", failed, err)
		}
		if _, err := genesis.Load(path); !errors.Is(err, genesis.ErrInvalidDifficulty) {
			t.Fatalf("\t%s\tShould fail to load a file with difficulty 1000: %v", failed, err)
		}
		t.Logf("\t%s\tShould fail to load a file with difficulty 1000.", success)
	}
}
