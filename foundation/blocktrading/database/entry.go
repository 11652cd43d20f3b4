package database

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/signature"
)

// Entry represents an accepted transaction as it's recorded in the journal.
// Entries are numbered from 1 and each one carries the hash of the entry
// before it.
type Entry struct {
	Number    uint64   `json:"number"`    // Position of the entry in the journal.
	PrevHash  string   `json:"prev_hash"` // Hash of the previous entry, ZeroHash for the first one.
	TimeStamp uint64   `json:"timestamp"` // Time the transaction was accepted, in milliseconds.
	Tx        SignedTx `json:"tx"`        // The call that was applied.
}

// Hash returns the unique hash for the entry.
func (e Entry) Hash() string {
	if e.Number == 0 {
		return signature.ZeroHash
	}

	return signature.Hash(e)
}

// ValidateFollows checks the entry is the next entry after prev.
func (e Entry) ValidateFollows(prev Entry) error {
	if e.Number != prev.Number+1 {
		return fmt.Errorf("%w: entry %d follows entry %d", ErrChainBroken, e.Number, prev.Number)
	}

	if e.PrevHash != prev.Hash() {
		return fmt.Errorf("%w: entry %d prev hash %s, exp %s", ErrChainBroken, e.Number, e.PrevHash, prev.Hash())
	}

	return nil
}

// =============================================================================

// Set of error variables for journal handling.
var (
	ErrNotFound    = errors.New("entry not found")
	ErrOutOfOrder  = errors.New("entry is out of order")
	ErrChainBroken = errors.New("journal chain is broken")
)
