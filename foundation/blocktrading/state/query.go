package state

import (
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/accounts"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/registry"
	"github.com/holiman/uint256"
)

// QueryBlock returns the state of the block at index.
func (s *State) QueryBlock(index uint64) registry.Info {
	return s.registry.BlockInfo(index)
}

// QueryBlocks returns the state of the blocks from start to end inclusive.
func (s *State) QueryBlocks(start uint64, end uint64) ([]registry.Info, error) {
	return s.registry.BlocksInfo(start, end)
}

// QueryBlocksByOwner returns the indices of the blocks held by the account.
func (s *State) QueryBlocksByOwner(owner accounts.AccountID) []uint64 {
	return s.registry.BlocksByOwner(owner)
}

// QueryMintPrice returns the current mint price.
func (s *State) QueryMintPrice() *uint256.Int {
	return s.registry.MintPrice()
}

// QueryRegistryBalance returns the funds held by the registry.
func (s *State) QueryRegistryBalance() *uint256.Int {
	return s.registry.Balance()
}

// QueryAdminOwner returns the account allowed to make admin calls.
func (s *State) QueryAdminOwner() accounts.AccountID {
	return s.registry.AdminOwner()
}

// QueryAccount returns the balance and nonce of the account.
func (s *State) QueryAccount(accountID accounts.AccountID) accounts.Info {
	return s.accounts.Query(accountID)
}
