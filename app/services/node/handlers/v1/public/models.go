package public

import (
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/accounts"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/registry"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/state"
	"github.com/ardanlabs/blocktrading/foundation/nameservice"
	"github.com/holiman/uint256"
)

type info struct {
	Account accounts.AccountID `json:"account"`
	Name    string             `json:"name"`
	Balance *uint256.Int       `json:"balance"`
	Nonce   uint64             `json:"nonce"`
}

type actInfo struct {
	LatestEntry uint64 `json:"latest_entry"`
	Accounts    []info `json:"accounts"`
}

type registryInfo struct {
	ChainID     uint16             `json:"chain_id"`
	AdminOwner  accounts.AccountID `json:"admin_owner"`
	AdminName   string             `json:"admin_name"`
	MintPrice   *uint256.Int       `json:"mint_price"`
	Balance     *uint256.Int       `json:"balance"`
	MaxBlocks   uint64             `json:"max_blocks"`
	MaxRange    uint64             `json:"max_range"`
	LatestEntry uint64             `json:"latest_entry"`
	LatestHash  string             `json:"latest_hash"`
}

type block struct {
	Index   uint64             `json:"index"`
	Owned   bool               `json:"owned"`
	Owner   accounts.AccountID `json:"owner"`
	Name    string             `json:"name,omitempty"`
	Color   registry.Color     `json:"color"`
	Price   *uint256.Int       `json:"price"`
	ForSale bool               `json:"for_sale"`
}

func toBlock(inf registry.Info, ns *nameservice.NameService) block {
	blk := block{
		Index:   inf.Index,
		Owned:   inf.Owned,
		Owner:   inf.Owner,
		Color:   inf.Color,
		Price:   inf.Price,
		ForSale: inf.ForSale(),
	}
	if inf.Owned {
		blk.Name = ns.Lookup(inf.Owner)
	}
	return blk
}

type ownedBlocks struct {
	Account accounts.AccountID `json:"account"`
	Name    string             `json:"name"`
	Blocks  []uint64           `json:"blocks"`
}

type tx struct {
	From      accounts.AccountID `json:"from"`
	FromName  string             `json:"from_name"`
	ChainID   uint16             `json:"chain_id"`
	Nonce     uint64             `json:"nonce"`
	Call      database.Call      `json:"call"`
	Block     uint64             `json:"block"`
	Blocks    []uint64           `json:"blocks,omitempty"`
	Color     uint8              `json:"color"`
	Price     *uint256.Int       `json:"price,omitempty"`
	Value     *uint256.Int       `json:"value"`
	Signature string             `json:"sig"`
}

type entry struct {
	Number    uint64 `json:"number"`
	Hash      string `json:"hash"`
	PrevHash  string `json:"prev_hash"`
	TimeStamp uint64 `json:"timestamp"`
	Tx        tx     `json:"tx"`
}

func toEntry(dbEntry database.Entry, ns *nameservice.NameService) entry {
	signedTx := dbEntry.Tx

	// Entries in the journal were verified when they were loaded.
	from, _ := signedTx.FromAccount()

	return entry{
		Number:    dbEntry.Number,
		Hash:      dbEntry.Hash(),
		PrevHash:  dbEntry.PrevHash,
		TimeStamp: dbEntry.TimeStamp,
		Tx: tx{
			From:      from,
			FromName:  ns.Lookup(from),
			ChainID:   signedTx.ChainID,
			Nonce:     signedTx.Nonce,
			Call:      signedTx.Call,
			Block:     signedTx.Block,
			Blocks:    signedTx.Blocks,
			Color:     signedTx.Color,
			Price:     signedTx.Price,
			Value:     signedTx.Amount(),
			Signature: signedTx.SignatureString(),
		},
	}
}

type transfer struct {
	To     accounts.AccountID `json:"to"`
	Name   string             `json:"name"`
	Amount *uint256.Int       `json:"amount"`
}

type result struct {
	Entry     entry        `json:"entry"`
	Paid      *uint256.Int `json:"paid,omitempty"`
	Retained  *uint256.Int `json:"retained,omitempty"`
	Transfers []transfer   `json:"transfers,omitempty"`
}

func toResult(res state.Result, ns *nameservice.NameService) result {
	r := result{
		Entry:    toEntry(res.Entry, ns),
		Paid:     res.Receipt.Paid,
		Retained: res.Receipt.Retained,
	}

	for _, tr := range res.Receipt.Transfers {
		r.Transfers = append(r.Transfers, transfer{
			To:     tr.To,
			Name:   ns.Lookup(tr.To),
			Amount: tr.Amount,
		})
	}

	return r
}
