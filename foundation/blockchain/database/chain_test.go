package database_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
)

func Test_ValidateChain(t *testing.T) {
	honest := mineChain(t, "a", "b", "c")

	tt := []struct {
		name   string
		chain  func() []database.Block
		exp    error
		index  int
		reason string
	}{
		{
			name:  "honest",
			chain: func() []database.Block { return honest },
		},
		{
			name:  "genesis-only",
			chain: func() []database.Block { return []database.Block{genesis.Block()} },
		},
		{
			name:   "empty",
			chain:  func() []database.Block { return nil },
			exp:    database.ErrEmptyChain,
			reason: "empty_chain",
		},
		{
			name: "tampered-data",
			chain: func() []database.Block {
				c := copyChain(honest)
				c[2].Data = "x"
				return c
			},
			exp:    database.ErrHashMismatch,
			index:  2,
			reason: "hash_mismatch",
		},
		{
			name: "tampered-link",
			chain: func() []database.Block {
				c := copyChain(honest)
				c[1].PreviousHash = "1111111111111111111111111111111111111111111111111111111111111111"
				return c
			},
			exp:    database.ErrPreviousHashMismatch,
			index:  1,
			reason: "previous_hash_mismatch",
		},
		{
			name: "tampered-tail",
			chain: func() []database.Block {
				c := copyChain(honest)
				c[3].Nonce++
				return c
			},
			exp:    database.ErrHashMismatch,
			index:  3,
			reason: "hash_mismatch",
		},
		{
			name: "invalid-payload",
			chain: func() []database.Block {
				c := copyChain(honest)
				c[2].Data = "b\xff"
				return c
			},
			exp:    database.ErrInvalidPayload,
			index:  2,
			reason: "invalid_payload",
		},
	}

	t.Log("Given the need to validate every adjacent pair of a chain.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				err := database.ValidateChain(testDifficulty, tst.chain())

				if tst.exp == nil {
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be a valid chain: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be a valid chain.", success, testID)
					return
				}

				if !errors.Is(err, tst.exp) {
					t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
					t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.exp)
					t.Fatalf("\t%s\tTest %d:\tShould fail the right check.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould fail the right check.", success, testID)

				if got := database.Reason(err); got != tst.reason {
					t.Fatalf("\t%s\tTest %d:\tShould get reason %q, got %q.", failed, testID, tst.reason, got)
				}
				t.Logf("\t%s\tTest %d:\tShould get reason %q.", success, testID, tst.reason)

				if tst.index == 0 {
					return
				}

				var ce *database.ChainError
				if !errors.As(err, &ce) || ce.Index != tst.index {
					t.Fatalf("\t%s\tTest %d:\tShould fail at index %d: %v", failed, testID, tst.index, err)
				}
				t.Logf("\t%s\tTest %d:\tShould fail at index %d.", success, testID, tst.index)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_ChooseChain(t *testing.T) {
	local3 := mineChain(t, "l1", "l2")
	remote5 := mineChain(t, "r1", "r2", "r3", "r4")
	local4 := mineChain(t, "l1", "l2", "l3")
	remote4 := mineChain(t, "r1", "r2", "r3")
	remote3 := mineChain(t, "r1", "r2")

	// A length 5 chain whose block at index 3 skips an id.
	badLocal5 := mineChain(t, "l1", "l2")
	badLocal5 = append(badLocal5, mineWithID(t, badLocal5[2], 4, "l3"))
	badLocal5 = append(badLocal5, mineWithID(t, badLocal5[3], 5, "l4"))

	tampered := copyChain(remote4)
	tampered[2].Data = "x"

	tt := []struct {
		name   string
		local  []database.Block
		remote []database.Block
		choice database.ForkChoice
		exp    []database.Block
	}{
		{"remote-longer", local3, remote5, database.AdoptRemote, remote5},
		{"local-longer", remote5, local3, database.KeepLocal, remote5},
		{"equal-length", local4, remote4, database.KeepLocal, local4},
		{"local-invalid", badLocal5, remote3, database.AdoptRemote, remote3},
		{"remote-invalid", local3, tampered, database.KeepLocal, local3},
	}

	t.Log("Given the need to choose between two candidate chains.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				res, err := database.ChooseChain(testDifficulty, tst.local, tst.remote)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to choose a chain: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to choose a chain.", success, testID)

				if res.Choice != tst.choice {
					t.Fatalf("\t%s\tTest %d:\tShould %s, got %s.", failed, testID, tst.choice, res.Choice)
				}
				t.Logf("\t%s\tTest %d:\tShould %s.", success, testID, tst.choice)

				if !sameChain(res.Chain, tst.exp) {
					t.Fatalf("\t%s\tTest %d:\tShould return the chosen chain.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould return the chosen chain.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}

	t.Log("Given the need to report when neither chain is valid.")
	{
		if err := database.ValidateChain(testDifficulty, badLocal5); !errors.Is(err, database.ErrNonSequentialID) {
			t.Fatalf("\t%s\tShould have a local chain failing the id check: %v", failed, err)
		}
		t.Logf("\t%s\tShould have a local chain failing the id check.", success)

		res, err := database.ChooseChain(testDifficulty, badLocal5, tampered)
		if !errors.Is(err, database.ErrBothChainsInvalid) {
			t.Fatalf("\t%s\tShould get a consensus error: %v", failed, err)
		}
		t.Logf("\t%s\tShould get a consensus error.", success)

		var ce *database.ConsensusError
		if !errors.As(err, &ce) || !errors.Is(ce.LocalErr, database.ErrNonSequentialID) || !errors.Is(ce.RemoteErr, database.ErrHashMismatch) {
			t.Fatalf("\t%s\tShould get both reasons in the consensus error: %v", failed, err)
		}
		t.Logf("\t%s\tShould get both reasons in the consensus error.", success)

		if res.Chain != nil {
			t.Fatalf("\t%s\tShould not return either chain.", failed)
		}
		t.Logf("\t%s\tShould not return either chain.", success)
	}
}

// =============================================================================

func copyChain(chain []database.Block) []database.Block {
	return append([]database.Block(nil), chain...)
}

func sameChain(a, b []database.Block) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
