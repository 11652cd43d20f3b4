package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/genesis"
	"github.com/holiman/uint256"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Load(t *testing.T) {
	const doc = `{
		"chain_id": 7,
		"admin_owner": "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4",
		"mint_price": "200000000000000000",
		"balances": {
			"0xF01813E4B85e178A83e29B8E7bF26BD830a25f32": "0x0de0b6b3a7640000"
		}
	}`

	t.Log("Given the need to load a genesis file.")
	{
		t.Logf("\tTest 0:\tWhen handling a partial genesis file.")
		{
			path := filepath.Join(t.TempDir(), "genesis.json")
			if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to write the file: %v", failed, err)
			}

			gen, err := genesis.Load(path)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to load the genesis: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to load the genesis.", success)

			if gen.ChainID != 7 {
				t.Errorf("\t%s\tTest 0:\tShould have the chain id from the file: got %d", failed, gen.ChainID)
			} else {
				t.Logf("\t%s\tTest 0:\tShould have the chain id from the file.", success)
			}

			if !gen.MintPrice.Eq(genesis.FromEther(2, 10)) {
				t.Errorf("\t%s\tTest 0:\tShould have the mint price from the file: got %s", failed, gen.MintPrice)
			} else {
				t.Logf("\t%s\tTest 0:\tShould have the mint price from the file.", success)
			}

			if gen.MaxBlocks != 10_000 || gen.DefaultColor != 1 {
				t.Errorf("\t%s\tTest 0:\tShould keep the defaults for missing fields: %d %d", failed, gen.MaxBlocks, gen.DefaultColor)
			} else {
				t.Logf("\t%s\tTest 0:\tShould keep the defaults for missing fields.", success)
			}

			bal := gen.Balances["0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"]
			if bal == nil || !bal.Eq(uint256.NewInt(1_000_000_000_000_000_000)) {
				t.Errorf("\t%s\tTest 0:\tShould decode hex balances: got %v", failed, bal)
			} else {
				t.Logf("\t%s\tTest 0:\tShould decode hex balances.", success)
			}
		}
	}
}
