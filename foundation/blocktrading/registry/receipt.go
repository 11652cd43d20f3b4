package registry

import (
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/accounts"
	"github.com/holiman/uint256"
)

// Transfer is money the registry owes to an account as the result of a call.
type Transfer struct {
	To     accounts.AccountID `json:"to"`
	Amount *uint256.Int       `json:"amount"`
}

// Receipt describes the money movement of a successful payable call. The
// caller is charged Paid in full. Retained stays in the registry balance
// and Transfers are paid out to other accounts.
type Receipt struct {
	Paid      *uint256.Int `json:"paid"`
	Retained  *uint256.Int `json:"retained"`
	Transfers []Transfer   `json:"transfers,omitempty"`
}

// newReceipt constructs a receipt where the registry keeps everything paid.
func newReceipt(paid *uint256.Int) Receipt {
	return Receipt{
		Paid:     paid.Clone(),
		Retained: paid.Clone(),
	}
}
