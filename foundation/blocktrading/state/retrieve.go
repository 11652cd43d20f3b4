package state

import (
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/accounts"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/genesis"
)

// QueryLatest represents to query the latest entry in the journal.
const QueryLatest = ^uint64(0) >> 1

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveAccountID returns the account of the node.
func (s *State) RetrieveAccountID() accounts.AccountID {
	return s.accountID
}

// RetrieveAccounts returns a copy of every known account.
func (s *State) RetrieveAccounts() map[accounts.AccountID]accounts.Info {
	return s.accounts.Copy()
}

// RetrieveLatestEntry returns the most recent journal entry.
func (s *State) RetrieveLatestEntry() database.Entry {
	return s.journal.Latest()
}

// RetrieveEntries returns the journal entries from through to inclusive.
// QueryLatest can be used for either bound.
func (s *State) RetrieveEntries(from uint64, to uint64) ([]database.Entry, error) {
	latest := s.journal.Latest().Number

	if from == QueryLatest {
		from = latest
	}
	if to == QueryLatest {
		to = latest
	}

	return s.journal.Entries(from, to)
}
