// Package genesis maintains access to the genesis file that deploys the
// registry.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/holiman/uint256"
)

// Ether is the number of wei in one ether.
var Ether = uint256.NewInt(1_000_000_000_000_000_000)

// Genesis represents the genesis file.
type Genesis struct {
	Date         time.Time               `json:"date"`
	ChainID      uint16                  `json:"chain_id"`      // The chain id represents an unique id for this running instance.
	AdminOwner   string                  `json:"admin_owner"`   // Account allowed to change the mint price and withdraw. Empty means the node account.
	MintPrice    *uint256.Int            `json:"mint_price"`    // Price in wei for acquiring a never owned block.
	DefaultColor uint8                   `json:"default_color"` // Color a block carries right after it is minted.
	MaxBlocks    uint64                  `json:"max_blocks"`    // Number of blocks in the registry, 0 is unbounded.
	MaxRange     uint64                  `json:"max_range"`     // Largest span a single range read may cover.
	Balances     map[string]*uint256.Int `json:"balances"`
}

// Default returns the genesis used by the original deployment: chain 1337,
// a 0.1 ether mint price and a grid of ten thousand blocks.
func Default() Genesis {
	return Genesis{
		Date:         time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		ChainID:      1337,
		MintPrice:    FromEther(1, 10),
		DefaultColor: 1,
		MaxBlocks:    10_000,
		MaxRange:     1_000,
		Balances:     map[string]*uint256.Int{},
	}
}

// FromEther returns num/den ether expressed in wei.
func FromEther(num uint64, den uint64) *uint256.Int {
	v := new(uint256.Int).Mul(Ether, uint256.NewInt(num))
	return v.Div(v, uint256.NewInt(den))
}

// =============================================================================

// Load opens and consumes the genesis file. Fields missing from the file
// take the values from Default.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis: %w", err)
	}

	if genesis.MintPrice == nil {
		genesis.MintPrice = Default().MintPrice
	}

	return genesis, nil
}
