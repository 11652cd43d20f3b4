package database

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/accounts"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/signature"
	"github.com/ardanlabs/blocktrading/foundation/validate"
	"github.com/holiman/uint256"
)

// Call names the registry operation a transaction invokes.
type Call string

// Set of calls a transaction can make into the registry.
const (
	CallBuyBlock          Call = "buy_block"
	CallBuyMultipleBlocks Call = "buy_multiple_blocks"
	CallSellBlock         Call = "sell_block"
	CallBuyFromUser       Call = "buy_from_user"
	CallSetColor          Call = "set_color"
	CallSetMintPrice      Call = "set_mint_price"
	CallWithdraw          Call = "withdraw"
)

// Calls lists every call a transaction can make.
var Calls = []Call{
	CallBuyBlock,
	CallBuyMultipleBlocks,
	CallSellBlock,
	CallBuyFromUser,
	CallSetColor,
	CallSetMintPrice,
	CallWithdraw,
}

// Payable reports whether the call accepts a value from the caller.
func (c Call) Payable() bool {
	switch c {
	case CallBuyBlock, CallBuyMultipleBlocks, CallBuyFromUser:
		return true
	}
	return false
}

// =============================================================================

// Tx is a call into the registry made by the account that signs it. Only the
// fields the call uses need to be set.
type Tx struct {
	ChainID uint16       `json:"chain_id" validate:"required"`                                                                                            // Ethereum: The chain id that is listed in the genesis file.
	Nonce   uint64       `json:"nonce" validate:"required"`                                                                                               // Ethereum: Unique id for the transaction supplied by the user.
	Call    Call         `json:"call" validate:"required,oneof=buy_block buy_multiple_blocks sell_block buy_from_user set_color set_mint_price withdraw"` // The registry operation to run.
	Block   uint64       `json:"block"`                                                                                                                   // Index of the block the call works on.
	Blocks  []uint64     `json:"blocks,omitempty" validate:"required_if=Call buy_multiple_blocks,max=1000"`                                               // Indices for buy_multiple_blocks.
	Color   uint8        `json:"color"`                                                                                                                   // New color for set_color.
	Price   *uint256.Int `json:"price,omitempty"`                                                                                                         // Listing price for sell_block, new mint price for set_mint_price.
	Value   *uint256.Int `json:"value,omitempty"`                                                                                                         // Ethereum: Monetary value attached to payable calls.
}

// Sign uses the specified private key to sign the transaction.
func (tx Tx) Sign(privateKey *ecdsa.PrivateKey) (SignedTx, error) {
	if err := validate.Check(tx); err != nil {
		return SignedTx{}, err
	}

	// Sign the transaction with the private key to produce a signature.
	v, r, s, err := signature.Sign(tx, privateKey)
	if err != nil {
		return SignedTx{}, err
	}

	// Construct the signed transaction by adding the signature
	// in the [R|S|V] format.
	signedTx := SignedTx{
		Tx: tx,
		V:  v,
		R:  r,
		S:  s,
	}

	return signedTx, nil
}

// Amount returns the value attached to the transaction, zero when none is.
func (tx Tx) Amount() *uint256.Int {
	if tx.Value == nil {
		return new(uint256.Int)
	}
	return tx.Value.Clone()
}

// =============================================================================

// SignedTx is a signed version of the transaction. This is how clients like
// a wallet submit calls to the node.
type SignedTx struct {
	Tx
	V *big.Int `json:"v"` // Ethereum: Recovery identifier, either 31 or 32 with tradingID.
	R *big.Int `json:"r"` // Ethereum: First coordinate of the ECDSA signature.
	S *big.Int `json:"s"` // Ethereum: Second coordinate of the ECDSA signature.
}

// Validate verifies the transaction is well formed and has a proper signature
// that conforms to our standards.
func (tx SignedTx) Validate() error {
	if err := validate.Check(tx.Tx); err != nil {
		return err
	}

	if !tx.Call.Payable() && tx.Value != nil && !tx.Value.IsZero() {
		return fmt.Errorf("call %s does not accept a value", tx.Call)
	}

	if err := signature.VerifySignature(tx.V, tx.R, tx.S); err != nil {
		return err
	}

	return nil
}

// FromAccount extracts the account id that signed the transaction.
func (tx SignedTx) FromAccount() (accounts.AccountID, error) {
	address, err := signature.FromAddress(tx.Tx, tx.V, tx.R, tx.S)
	return accounts.AccountID(address), err
}

// SignatureString returns the signature as a string.
func (tx SignedTx) SignatureString() string {
	return signature.SignatureString(tx.V, tx.R, tx.S)
}

// String implements the fmt.Stringer interface for logging.
func (tx SignedTx) String() string {
	from, err := tx.FromAccount()
	if err != nil {
		from = "unknown"
	}

	return fmt.Sprintf("%s:%d:%s", from, tx.Nonce, tx.Call)
}
