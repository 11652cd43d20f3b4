// Package accounts maintains account balances and nonces. It is the monetary
// transfer primitive the registry settles payments through.
package accounts

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/genesis"
	"github.com/holiman/uint256"
)

// Info represents information stored for an individual account.
type Info struct {
	Balance *uint256.Int `json:"balance"`
	Nonce   uint64       `json:"nonce"`
}

// Accounts manages data related to accounts who have transacted with
// the registry.
type Accounts struct {
	genesis genesis.Genesis
	info    map[AccountID]Info
	mu      sync.RWMutex
}

// New constructs the accounts with the genesis balances applied.
func New(genesis genesis.Genesis) (*Accounts, error) {
	accts := Accounts{
		genesis: genesis,
	}

	if err := accts.Reset(); err != nil {
		return nil, err
	}

	return &accts, nil
}

// Reset re-initalizes the accounts back to the genesis information.
func (act *Accounts) Reset() error {
	info := make(map[AccountID]Info)
	for accountStr, balance := range act.genesis.Balances {
		accountID, err := ToAccountID(accountStr)
		if err != nil {
			return fmt.Errorf("genesis account %q: %w", accountStr, err)
		}

		bal := new(uint256.Int)
		if balance != nil {
			bal.Set(balance)
		}
		info[accountID] = Info{Balance: bal}
	}

	act.mu.Lock()
	defer act.mu.Unlock()

	act.info = info
	return nil
}

// Checkpoint holds the information a set of accounts had when it was taken.
type Checkpoint struct {
	info map[AccountID]*Info
}

// Checkpoint captures the current information of the specified accounts so
// the changes made to them can be undone with Restore.
func (act *Accounts) Checkpoint(accountIDs ...AccountID) Checkpoint {
	act.mu.RLock()
	defer act.mu.RUnlock()

	cp := Checkpoint{info: make(map[AccountID]*Info, len(accountIDs))}
	for _, accountID := range accountIDs {
		info, exists := act.info[accountID]
		if !exists {
			cp.info[accountID] = nil
			continue
		}
		cp.info[accountID] = &Info{Balance: info.Balance.Clone(), Nonce: info.Nonce}
	}

	return cp
}

// Restore puts the accounts held by the checkpoint back the way they were.
// Accounts that didn't exist at the time are removed.
func (act *Accounts) Restore(cp Checkpoint) {
	act.mu.Lock()
	defer act.mu.Unlock()

	for accountID, info := range cp.info {
		if info == nil {
			delete(act.info, accountID)
			continue
		}
		act.info[accountID] = Info{Balance: info.Balance.Clone(), Nonce: info.Nonce}
	}
}

// Copy makes a copy of the current information for all accounts.
func (act *Accounts) Copy() map[AccountID]Info {
	return act.copy()
}

// Query returns the information for the specified account. Unknown accounts
// report a zero balance and nonce.
func (act *Accounts) Query(accountID AccountID) Info {
	act.mu.RLock()
	defer act.mu.RUnlock()

	info, exists := act.info[accountID]
	if !exists {
		return Info{Balance: new(uint256.Int)}
	}

	return Info{Balance: info.Balance.Clone(), Nonce: info.Nonce}
}

// ValidateNonce validates the nonce is larger than the last nonce used by
// the account.
func (act *Accounts) ValidateNonce(accountID AccountID, nonce uint64) error {
	act.mu.RLock()
	defer act.mu.RUnlock()

	info := act.info[accountID]
	if nonce <= info.Nonce {
		return fmt.Errorf("%w, got %d, exp > %d", ErrInvalidNonce, nonce, info.Nonce)
	}

	return nil
}

// UpdateNonce records the nonce as the last one used by the account.
func (act *Accounts) UpdateNonce(accountID AccountID, nonce uint64) {
	act.mu.Lock()
	defer act.mu.Unlock()

	info := act.ensure(accountID)
	info.Nonce = nonce
	act.info[accountID] = info
}

// Debit removes the amount from the account's balance.
func (act *Accounts) Debit(accountID AccountID, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}

	act.mu.Lock()
	defer act.mu.Unlock()

	info := act.ensure(accountID)
	if info.Balance.Lt(amount) {
		return fmt.Errorf("%w, %s has %s, needs %s", ErrInsufficientFunds, accountID, info.Balance, amount)
	}

	info.Balance = new(uint256.Int).Sub(info.Balance, amount)
	act.info[accountID] = info

	return nil
}

// Credit adds the amount to the account's balance.
func (act *Accounts) Credit(accountID AccountID, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}

	act.mu.Lock()
	defer act.mu.Unlock()

	info := act.ensure(accountID)
	bal, overflow := new(uint256.Int).AddOverflow(info.Balance, amount)
	if overflow {
		return fmt.Errorf("crediting %s: balance overflow", accountID)
	}

	info.Balance = bal
	act.info[accountID] = info

	return nil
}

// =============================================================================

// copy performs a deep copy of the account information.
func (act *Accounts) copy() map[AccountID]Info {
	act.mu.RLock()
	defer act.mu.RUnlock()

	accounts := make(map[AccountID]Info, len(act.info))
	for accountID, info := range act.info {
		accounts[accountID] = Info{Balance: info.Balance.Clone(), Nonce: info.Nonce}
	}
	return accounts
}

// ensure returns the info for the account, materializing it with a zero
// balance if needed. The caller must hold the write lock.
func (act *Accounts) ensure(accountID AccountID) Info {
	info, exists := act.info[accountID]
	if !exists {
		info = Info{Balance: new(uint256.Int)}
	}
	return info
}
