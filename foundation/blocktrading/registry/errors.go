package registry

import "errors"

// Set of error variables returned by registry calls. Every failed call
// leaves the registry unchanged.
var (
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrNotBlockOwner       = errors.New("not the owner of the block")
	ErrUnauthorized        = errors.New("unauthorized account")
	ErrInvalidRange        = errors.New("invalid range")
	ErrNotForSale          = errors.New("block not for sale")
	ErrBlockOwned          = errors.New("block already owned")
	ErrSelfPurchase        = errors.New("cannot buy your own block")
	ErrDuplicateBlock      = errors.New("duplicate block in request")
	ErrNoBlocks            = errors.New("no blocks requested")
	ErrEmptyBalance        = errors.New("no funds to withdraw")
	ErrInvalidBlock        = errors.New("block index out of range")
)
