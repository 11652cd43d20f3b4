package registry

import (
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/accounts"
	"github.com/holiman/uint256"
)

// Color is the attribute an owner can paint a block with.
type Color uint8

// block is the record kept for every block that has ever been minted.
// Blocks nobody minted have no record.
type block struct {
	owner accounts.AccountID
	color Color
	price *uint256.Int
}

// Info is the read-only view of a block.
type Info struct {
	Index uint64             `json:"index"`
	Owned bool               `json:"owned"`
	Owner accounts.AccountID `json:"owner"`
	Color Color              `json:"color"`
	Price *uint256.Int       `json:"price"`
}

// ForSale reports whether the block can be bought from its owner.
func (inf Info) ForSale() bool {
	return inf.Owned && !inf.Price.IsZero()
}

// info converts the record into its public view.
func (b *block) info(index uint64) Info {
	if b == nil {
		return Info{
			Index: index,
			Owner: accounts.ZeroAccountID,
			Price: new(uint256.Int),
		}
	}

	return Info{
		Index: index,
		Owned: true,
		Owner: b.owner,
		Color: b.color,
		Price: b.price.Clone(),
	}
}
