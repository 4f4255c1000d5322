package database

// ForkChoice identifies which chain the fork-choice rule selected.
type ForkChoice int

// Set of possible fork-choice outcomes.
const (
	KeepLocal ForkChoice = iota
	AdoptRemote
)

// String implements the fmt.Stringer interface.
func (fc ForkChoice) String() string {
	if fc == AdoptRemote {
		return "adopt_remote"
	}
	return "keep_local"
}

// Resolution is the outcome of running the fork-choice rule.
type Resolution struct {
	Chain     []Block
	Choice    ForkChoice
	LocalErr  error
	RemoteErr error
}

// =============================================================================

// ValidateChain checks every adjacent pair of blocks in order and returns a
// ChainError for the first pair that fails. Index 0 is assumed to be the
// genesis block and is not validated against itself.
func ValidateChain(difficulty uint, chain []Block) error {
	if len(chain) == 0 {
		return ErrEmptyChain
	}

	for i := 1; i < len(chain); i++ {
		if err := ValidateBlock(difficulty, chain[i-1], chain[i]); err != nil {
			return &ChainError{Index: i, ID: chain[i].ID, Err: err}
		}
	}

	return nil
}

// ChooseChain validates both chains independently and selects the one to
// keep. When both are valid the strictly longer chain wins and a tie keeps
// the local chain. When neither is valid a ConsensusError is returned.
//
// Length approximates accumulated work only because difficulty is the same
// for every block.
func ChooseChain(difficulty uint, local []Block, remote []Block) (Resolution, error) {
	localErr := ValidateChain(difficulty, local)
	remoteErr := ValidateChain(difficulty, remote)

	switch {
	case localErr == nil && remoteErr == nil:
		if len(remote) > len(local) {
			return Resolution{Chain: remote, Choice: AdoptRemote}, nil
		}
		return Resolution{Chain: local, Choice: KeepLocal}, nil

	case localErr == nil:
		return Resolution{Chain: local, Choice: KeepLocal, RemoteErr: remoteErr}, nil

	case remoteErr == nil:
		return Resolution{Chain: remote, Choice: AdoptRemote, LocalErr: localErr}, nil
	}

	return Resolution{LocalErr: localErr, RemoteErr: remoteErr}, &ConsensusError{LocalErr: localErr, RemoteErr: remoteErr}
}
