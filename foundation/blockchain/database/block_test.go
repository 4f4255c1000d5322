package database_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// testDifficulty keeps mining in the tests to a few hundred attempts.
const testDifficulty = 8

func noop(v string, args ...any) {}

// =============================================================================

func Test_Mine(t *testing.T) {
	t.Log("Given the need to find the smallest nonce that solves the puzzle.")
	{
		const (
			id        = 1
			timestamp = 1600000000
			data      = "a"
		)
		prevHash := genesis.Block().Hash

		sol, err := database.Mine(context.Background(), testDifficulty, id, timestamp, prevHash, data, noop)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to mine.", success)

		sum := digest.Sum(id, prevHash, data, timestamp, sol.Nonce)
		if digest.Hex(sum) != sol.Hash {
			t.Fatalf("\t%s\tShould get a hash that matches an independent recomputation.", failed)
		}
		t.Logf("\t%s\tShould get a hash that matches an independent recomputation.", success)

		if digest.LeadingZeroBits(sum[:]) < testDifficulty {
			t.Fatalf("\t%s\tShould get a hash with %d leading zero bits.", failed, testDifficulty)
		}
		t.Logf("\t%s\tShould get a hash with %d leading zero bits.", success, testDifficulty)

		for nonce := uint64(0); nonce < sol.Nonce; nonce++ {
			sum := digest.Sum(id, prevHash, data, timestamp, nonce)
			if digest.Solved(testDifficulty, sum[:]) {
				t.Fatalf("\t%s\tShould get the smallest solving nonce, %d also solves.", failed, nonce)
			}
		}
		t.Logf("\t%s\tShould get the smallest solving nonce.", success)

		if sol.Attempts != sol.Nonce+1 {
			t.Fatalf("\t%s\tShould count one attempt per nonce: got %d, exp %d.", failed, sol.Attempts, sol.Nonce+1)
		}
		t.Logf("\t%s\tShould count one attempt per nonce.", success)
	}
}

func Test_MineCancel(t *testing.T) {
	t.Log("Given the need to stop a mining search that can't finish.")
	{
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var progress int
		ev := func(v string, args ...any) {
			if strings.Contains(v, "attempts") && !strings.Contains(v, "CANCELLED") {
				progress++
				cancel()
			}
		}

		// No digest has more leading zero bits than it has bits.
		_, err := database.Mine(ctx, 256, 1, 0, digest.ZeroHash, "x", ev)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("\t%s\tShould get a cancellation error: %v", failed, err)
		}
		t.Logf("\t%s\tShould get a cancellation error.", success)

		if progress != 1 {
			t.Fatalf("\t%s\tShould get one progress event before cancelling, got %d.", failed, progress)
		}
		t.Logf("\t%s\tShould get one progress event before cancelling.", success)
	}
}

func Test_MineDifficultyTooHigh(t *testing.T) {
	t.Log("Given the need to refuse a search no digest can satisfy.")
	{
		_, err := database.Mine(context.Background(), digest.MaxDifficulty+1, 1, 0, digest.ZeroHash, "a", noop)
		if !errors.Is(err, database.ErrDifficultyTooHigh) {
			t.Fatalf("\t%s\tShould fail with ErrDifficultyTooHigh: %v", failed, err)
		}
		t.Logf("\t%s\tShould fail with ErrDifficultyTooHigh.", success)
	}
}

func Test_POW(t *testing.T) {
	t.Log("Given the need to mine the block that follows genesis.")
	{
		gen := genesis.Block()

		blk, sol, err := database.POW(context.Background(), testDifficulty, gen, "a", noop)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to mine a block.", success)

		if blk.ID != 1 || blk.PreviousHash != gen.Hash || blk.Nonce != sol.Nonce || blk.Hash != sol.Hash {
			t.Fatalf("\t%s\tShould link the block to genesis: %+v", failed, blk)
		}
		t.Logf("\t%s\tShould link the block to genesis.", success)

		if err := database.ValidateBlock(testDifficulty, gen, blk); err != nil {
			t.Fatalf("\t%s\tShould be able to validate the block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to validate the block.", success)
	}
}

func Test_InvalidPayload(t *testing.T) {
	gen := genesis.Block()

	t.Log("Given the need to refuse mining a payload that isn't valid UTF-8.")
	{
		if _, _, err := database.POW(context.Background(), testDifficulty, gen, "pay \xff", noop); !errors.Is(err, database.ErrInvalidPayload) {
			t.Fatalf("\t%s\tShould fail with ErrInvalidPayload: %v", failed, err)
		}
		t.Logf("\t%s\tShould fail with ErrInvalidPayload.", success)
	}

	t.Log("Given the need to catch payload bytes the canonical encoding can't tell apart.")
	{
		blk := database.Block{
			ID:           1,
			Data:         "pay \xff",
			PreviousHash: gen.Hash,
			Timestamp:    1600000000,
		}
		blk.Hash = blk.ComputeHash()

		tampered := blk
		tampered.Data = "pay \xfe"
		if tampered.ComputeHash() != blk.Hash {
			t.Fatalf("\t%s\tShould hash both invalid payloads the same.", failed)
		}
		t.Logf("\t%s\tShould hash both invalid payloads the same.", success)

		if err := database.ValidateBlock(0, gen, tampered); !errors.Is(err, database.ErrInvalidPayload) {
			t.Fatalf("\t%s\tShould reject the tampered block with ErrInvalidPayload: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject the tampered block with ErrInvalidPayload.", success)
	}
}

func Test_ValidateBlock(t *testing.T) {
	gen := genesis.Block()
	chain := mineChain(t, "a", "b")
	blk := chain[1]

	tt := []struct {
		name   string
		mutate func(b database.Block) database.Block
		exp    error
	}{
		{"valid", func(b database.Block) database.Block { return b }, nil},
		{"previous-hash", func(b database.Block) database.Block { b.PreviousHash = digest.ZeroHash; return b }, database.ErrPreviousHashMismatch},
		{"difficulty", func(b database.Block) database.Block { b.Hash = "ff" + b.Hash[2:]; return b }, database.ErrDifficultyNotMet},
		{"id", func(b database.Block) database.Block { b.ID = 5; return b }, database.ErrNonSequentialID},
		{"data", func(b database.Block) database.Block { b.Data = "x"; return b }, database.ErrHashMismatch},
		{"timestamp", func(b database.Block) database.Block { b.Timestamp++; return b }, database.ErrHashMismatch},
		{"invalid-utf8", func(b database.Block) database.Block { b.Data = "a\xff"; return b }, database.ErrInvalidPayload},
	}

	t.Log("Given the need to identify which block check failed.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				err := database.ValidateBlock(testDifficulty, gen, tst.mutate(blk))

				switch {
				case tst.exp == nil && err != nil:
					t.Fatalf("\t%s\tTest %d:\tShould accept the block: %v", failed, testID, err)
				case tst.exp != nil && !errors.Is(err, tst.exp):
					t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
					t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.exp)
					t.Fatalf("\t%s\tTest %d:\tShould fail the right check.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get reason %q.", success, testID, database.Reason(err))
			}

			t.Run(tst.name, f)
		}
	}
}

// =============================================================================

// mineChain builds an honest chain from genesis with one block per payload.
func mineChain(t *testing.T, data ...string) []database.Block {
	t.Helper()

	chain := []database.Block{genesis.Block()}
	for _, d := range data {
		blk, _, err := database.POW(context.Background(), testDifficulty, chain[len(chain)-1], d, noop)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine block %q: %v", failed, d, err)
		}
		chain = append(chain, blk)
	}

	return chain
}

// mineWithID mines a block on prev using an explicit id, which allows the
// construction of a block that fails only the sequential id check.
func mineWithID(t *testing.T, prev database.Block, id uint64, data string) database.Block {
	t.Helper()

	const timestamp = 1600000000
	sol, err := database.Mine(context.Background(), testDifficulty, id, timestamp, prev.Hash, data, noop)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to mine block %q: %v", failed, data, err)
	}

	return database.Block{
		ID:           id,
		Data:         data,
		Hash:         sol.Hash,
		PreviousHash: prev.Hash,
		Timestamp:    timestamp,
		Nonce:        sol.Nonce,
	}
}
