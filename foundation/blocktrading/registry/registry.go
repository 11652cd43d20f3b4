// Package registry implements the block trading state machine. It owns the
// ownership, price and color of every numbered block, the mint price and the
// funds collected from purchases.
package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/accounts"
	"github.com/holiman/uint256"
)

// Config represents the deployment settings of a registry.
type Config struct {
	AdminOwner   accounts.AccountID
	MintPrice    *uint256.Int
	DefaultColor Color
	MaxBlocks    uint64 // Number of blocks, 0 means the index space is unbounded.
	MaxRange     uint64 // Largest number of blocks a range read may return.
}

// Registry manages the set of blocks. All calls are serialized by a single
// lock and each call either applies completely or not at all.
type Registry struct {
	adminOwner   accounts.AccountID
	defaultColor Color
	maxBlocks    uint64
	maxRange     uint64

	mu        sync.RWMutex
	mintPrice *uint256.Int
	balance   *uint256.Int
	blocks    map[uint64]*block
}

// New constructs a registry with no block minted and an empty balance.
func New(cfg Config) (*Registry, error) {
	if !cfg.AdminOwner.IsAccountID() || cfg.AdminOwner.IsZero() {
		return nil, fmt.Errorf("admin owner %q: %w", cfg.AdminOwner, accounts.ErrInvalidAccount)
	}

	if cfg.MaxRange == 0 {
		return nil, fmt.Errorf("max range must be greater than zero")
	}

	mintPrice := new(uint256.Int)
	if cfg.MintPrice != nil {
		mintPrice.Set(cfg.MintPrice)
	}

	r := Registry{
		adminOwner:   cfg.AdminOwner,
		defaultColor: cfg.DefaultColor,
		maxBlocks:    cfg.MaxBlocks,
		maxRange:     cfg.MaxRange,
		mintPrice:    mintPrice,
		balance:      new(uint256.Int),
		blocks:       make(map[uint64]*block),
	}

	return &r, nil
}

// =============================================================================
// Purchases

// BuyBlock mints the unowned block at index for the caller at the current
// mint price.
func (r *Registry) BuyBlock(caller accounts.AccountID, index uint64, payment *uint256.Int) (Receipt, error) {
	return r.BuyMultipleBlocks(caller, []uint64{index}, payment)
}

// BuyMultipleBlocks mints every block in indices for the caller. The payment
// must cover the mint price for each block. Either every block is minted or
// none is.
func (r *Registry) BuyMultipleBlocks(caller accounts.AccountID, indices []uint64, payment *uint256.Int) (Receipt, error) {
	if len(indices) == 0 {
		return Receipt{}, ErrNoBlocks
	}
	payment = orZero(payment)

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[uint64]struct{}, len(indices))
	for _, index := range indices {
		if err := r.checkIndex(index); err != nil {
			return Receipt{}, err
		}

		if _, exists := seen[index]; exists {
			return Receipt{}, fmt.Errorf("%w: %d", ErrDuplicateBlock, index)
		}
		seen[index] = struct{}{}

		if _, exists := r.blocks[index]; exists {
			return Receipt{}, fmt.Errorf("%w: %d", ErrBlockOwned, index)
		}
	}

	required, overflow := new(uint256.Int).MulOverflow(r.mintPrice, uint256.NewInt(uint64(len(indices))))
	if overflow || payment.Lt(required) {
		return Receipt{}, fmt.Errorf("%w, got %s, exp %s", ErrInsufficientPayment, payment, required)
	}

	// Everything is validated, from here on nothing can fail.
	for _, index := range indices {
		r.blocks[index] = &block{
			owner: caller,
			color: r.defaultColor,
			price: new(uint256.Int),
		}
	}
	r.balance.Add(r.balance, payment)

	return newReceipt(payment), nil
}

// BuyFromUser transfers a listed block from its owner to the caller. The
// listed price is paid out to the previous owner, anything paid above it is
// retained by the registry. The block is delisted after the sale.
func (r *Registry) BuyFromUser(caller accounts.AccountID, index uint64, payment *uint256.Int) (Receipt, error) {
	payment = orZero(payment)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIndex(index); err != nil {
		return Receipt{}, err
	}

	blk, exists := r.blocks[index]
	if !exists || blk.price.IsZero() {
		return Receipt{}, fmt.Errorf("%w: %d", ErrNotForSale, index)
	}

	if blk.owner == caller {
		return Receipt{}, fmt.Errorf("%w: %d", ErrSelfPurchase, index)
	}

	if payment.Lt(blk.price) {
		return Receipt{}, fmt.Errorf("%w, got %s, exp %s", ErrInsufficientPayment, payment, blk.price)
	}

	seller := blk.owner
	price := blk.price

	excess := new(uint256.Int).Sub(payment, price)
	r.balance.Add(r.balance, excess)

	blk.owner = caller
	blk.price = new(uint256.Int)

	rcpt := Receipt{
		Paid:     payment.Clone(),
		Retained: excess,
		Transfers: []Transfer{
			{To: seller, Amount: price},
		},
	}

	return rcpt, nil
}

// =============================================================================
// Owner calls

// SellBlock lists the block for resale at price. A price of zero takes the
// block off the market.
func (r *Registry) SellBlock(caller accounts.AccountID, index uint64, price *uint256.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	blk, err := r.ownedBy(caller, index)
	if err != nil {
		return err
	}

	blk.price = orZero(price).Clone()

	return nil
}

// SetColor paints the block.
func (r *Registry) SetColor(caller accounts.AccountID, index uint64, color Color) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	blk, err := r.ownedBy(caller, index)
	if err != nil {
		return err
	}

	blk.color = color

	return nil
}

// =============================================================================
// Admin calls

// SetMintPrice changes the price of minting a block.
func (r *Registry) SetMintPrice(caller accounts.AccountID, price *uint256.Int) error {
	if err := r.requireAdmin(caller); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.mintPrice = orZero(price).Clone()

	return nil
}

// Withdraw pays the whole registry balance out to the admin owner.
func (r *Registry) Withdraw(caller accounts.AccountID) (Receipt, error) {
	if err := r.requireAdmin(caller); err != nil {
		return Receipt{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.balance.IsZero() {
		return Receipt{}, ErrEmptyBalance
	}

	rcpt := Receipt{
		Paid:     new(uint256.Int),
		Retained: new(uint256.Int),
		Transfers: []Transfer{
			{To: r.adminOwner, Amount: r.balance},
		},
	}
	r.balance = new(uint256.Int)

	return rcpt, nil
}

// =============================================================================
// Reads

// BlockInfo returns the state of the block at index. Blocks that were never
// minted, including indices past the end of the grid, report as unowned.
func (r *Registry) BlockInfo(index uint64) Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.blocks[index].info(index)
}

// BlocksInfo returns the state of every block from start to end inclusive.
func (r *Registry) BlocksInfo(start uint64, end uint64) ([]Info, error) {
	if end < start || end-start >= r.maxRange {
		return nil, fmt.Errorf("%w: %d-%d", ErrInvalidRange, start, end)
	}

	if r.maxBlocks > 0 && end >= r.maxBlocks {
		return nil, fmt.Errorf("%w: %d-%d", ErrInvalidRange, start, end)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, end-start+1)
	for index := start; ; index++ {
		infos = append(infos, r.blocks[index].info(index))
		if index == end {
			break
		}
	}

	return infos, nil
}

// BlocksByOwner returns the indices of every block held by the account in
// ascending order.
func (r *Registry) BlocksByOwner(owner accounts.AccountID) []uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var indices []uint64
	for index, blk := range r.blocks {
		if blk.owner == owner {
			indices = append(indices, index)
		}
	}
	slices.Sort(indices)

	return indices
}

// MintPrice returns the current price for minting a block.
func (r *Registry) MintPrice() *uint256.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.mintPrice.Clone()
}

// Balance returns the funds held by the registry.
func (r *Registry) Balance() *uint256.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.balance.Clone()
}

// AdminOwner returns the account allowed to make admin calls.
func (r *Registry) AdminOwner() accounts.AccountID {
	return r.adminOwner
}

// Copy returns a deep copy of the registry.
func (r *Registry) Copy() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	blocks := make(map[uint64]*block, len(r.blocks))
	for index, blk := range r.blocks {
		blocks[index] = &block{
			owner: blk.owner,
			color: blk.color,
			price: blk.price.Clone(),
		}
	}

	return &Registry{
		adminOwner:   r.adminOwner,
		defaultColor: r.defaultColor,
		maxBlocks:    r.maxBlocks,
		maxRange:     r.maxRange,
		mintPrice:    r.mintPrice.Clone(),
		balance:      r.balance.Clone(),
		blocks:       blocks,
	}
}

// Replace restores the registry to the state held by the specified copy.
func (r *Registry) Replace(from *Registry) {
	cpy := from.Copy()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.mintPrice = cpy.mintPrice
	r.balance = cpy.balance
	r.blocks = cpy.blocks
}

// Checkpoint holds the mint price, the balance and a set of blocks as they
// were when it was taken.
type Checkpoint struct {
	mintPrice *uint256.Int
	balance   *uint256.Int
	blocks    map[uint64]*block
}

// Checkpoint captures what a call touching the blocks at indices can change
// so it can be undone with Restore.
func (r *Registry) Checkpoint(indices ...uint64) Checkpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cp := Checkpoint{
		mintPrice: r.mintPrice.Clone(),
		balance:   r.balance.Clone(),
		blocks:    make(map[uint64]*block, len(indices)),
	}

	for _, index := range indices {
		blk, exists := r.blocks[index]
		if !exists {
			cp.blocks[index] = nil
			continue
		}
		cp.blocks[index] = &block{owner: blk.owner, color: blk.color, price: blk.price.Clone()}
	}

	return cp
}

// Restore rolls the registry back to the checkpoint. Blocks that were not
// minted at the time lose their record.
func (r *Registry) Restore(cp Checkpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.mintPrice = cp.mintPrice.Clone()
	r.balance = cp.balance.Clone()

	for index, blk := range cp.blocks {
		if blk == nil {
			delete(r.blocks, index)
			continue
		}
		r.blocks[index] = &block{owner: blk.owner, color: blk.color, price: blk.price.Clone()}
	}
}

// =============================================================================

// ownedBy returns the block at index when the caller owns it. The caller
// must hold the write lock.
func (r *Registry) ownedBy(caller accounts.AccountID, index uint64) (*block, error) {
	if err := r.checkIndex(index); err != nil {
		return nil, err
	}

	blk, exists := r.blocks[index]
	if !exists || blk.owner != caller {
		return nil, fmt.Errorf("%w: %d", ErrNotBlockOwner, index)
	}

	return blk, nil
}

// requireAdmin fails unless the caller is the admin owner.
func (r *Registry) requireAdmin(caller accounts.AccountID) error {
	if caller != r.adminOwner {
		return fmt.Errorf("%w: %s", ErrUnauthorized, caller)
	}
	return nil
}

// checkIndex validates the index against the size of the grid.
func (r *Registry) checkIndex(index uint64) error {
	if r.maxBlocks > 0 && index >= r.maxBlocks {
		return fmt.Errorf("%w: %d", ErrInvalidBlock, index)
	}
	return nil
}

// orZero treats a missing amount as zero.
func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}
