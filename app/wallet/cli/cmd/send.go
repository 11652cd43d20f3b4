package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// send signs the call with the wallet key, submits it and prints the result.
func send(tx database.Tx) error {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		return err
	}

	tx.ChainID = chainID
	tx.Nonce = nonce

	result, err := newClient(url).submit(privateKey, tx)
	if err != nil {
		return err
	}

	return printJSON(os.Stdout, result)
}

// mintCost returns the value to attach to a mint of count blocks. An explicit
// value wins, otherwise the node is asked for the current mint price.
func mintCost(value string, count int) (*uint256.Int, error) {
	if value != "" {
		return parseAmount(value)
	}

	var reg struct {
		MintPrice *uint256.Int `json:"mint_price"`
	}
	if err := newClient(url).get("/v1/registry", &reg); err != nil {
		return nil, err
	}
	if reg.MintPrice == nil {
		return nil, fmt.Errorf("node did not report a mint price")
	}

	return new(uint256.Int).Mul(reg.MintPrice, uint256.NewInt(uint64(count))), nil
}

// listedPrice returns the value to attach to a resale purchase. An explicit
// value wins, otherwise the node is asked for the listed price.
func listedPrice(value string, index uint64) (*uint256.Int, error) {
	if value != "" {
		return parseAmount(value)
	}

	var blk struct {
		Price   *uint256.Int `json:"price"`
		ForSale bool         `json:"for_sale"`
	}
	if err := newClient(url).get(fmt.Sprintf("/v1/blocks/%d", index), &blk); err != nil {
		return nil, err
	}
	if !blk.ForSale {
		return nil, fmt.Errorf("block %d is not for sale", index)
	}

	return blk.Price, nil
}

func parseIndex(s string) (uint64, error) {
	index, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("block index %q: %w", s, err)
	}
	return index, nil
}
