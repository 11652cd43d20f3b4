package database_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database/storage/memory"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/genesis"
	"github.com/ardanlabs/blocktrading/foundation/validate"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const pavelKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

func sign(t *testing.T, tx database.Tx) database.SignedTx {
	t.Helper()

	pk, err := crypto.HexToECDSA(pavelKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to parse the private key: %v", failed, err)
	}

	signedTx, err := tx.Sign(pk)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to sign the transaction: %v", failed, err)
	}

	return signedTx
}

// =============================================================================

func Test_SignedTx(t *testing.T) {
	type table struct {
		name  string
		tx    database.Tx
		valid bool
	}

	tt := []table{
		{name: "buy", tx: database.Tx{ChainID: 1337, Nonce: 1, Call: database.CallBuyBlock, Block: 3, Value: genesis.FromEther(1, 10)}, valid: true},
		{name: "color", tx: database.Tx{ChainID: 1337, Nonce: 2, Call: database.CallSetColor, Block: 3, Color: 5}, valid: true},
		{name: "bad-call", tx: database.Tx{ChainID: 1337, Nonce: 1, Call: "transfer"}},
		{name: "no-nonce", tx: database.Tx{ChainID: 1337, Call: database.CallWithdraw}},
		{name: "no-blocks", tx: database.Tx{ChainID: 1337, Nonce: 1, Call: database.CallBuyMultipleBlocks}},
	}

	t.Log("Given the need to sign and validate transactions.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling a %s call.", testID, tst.tx.Call)
				{
					pk, err := crypto.HexToECDSA(pavelKey)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to parse the private key: %v", failed, testID, err)
					}

					signedTx, err := tst.tx.Sign(pk)
					if !tst.valid {
						if !validate.IsFieldErrors(err) {
							t.Fatalf("\t%s\tTest %d:\tShould reject the transaction: %v", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould reject the transaction.", success, testID)
						return
					}

					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to sign the transaction: %v", failed, testID, err)
					}

					if err := signedTx.Validate(); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould validate the transaction: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould validate the transaction.", success, testID)

					from, err := signedTx.FromAccount()
					if err != nil || from != "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4" {
						t.Fatalf("\t%s\tTest %d:\tShould recover the signer: %s %v", failed, testID, from, err)
					}
					t.Logf("\t%s\tTest %d:\tShould recover the signer.", success, testID)

					tampered := signedTx
					tampered.Block++
					if from, _ := tampered.FromAccount(); from == "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4" {
						t.Fatalf("\t%s\tTest %d:\tShould not recover the signer from tampered data.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould not recover the signer from tampered data.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_ValueOnFreeCall(t *testing.T) {
	t.Log("Given the need to reject money sent to calls that don't take any.")
	{
		signedTx := sign(t, database.Tx{ChainID: 1337, Nonce: 1, Call: database.CallSetColor, Color: 2, Value: genesis.FromEther(1, 1)})

		if err := signedTx.Validate(); err == nil {
			t.Fatalf("\t%s\tShould reject the transaction.", failed)
		}
		t.Logf("\t%s\tShould reject the transaction.", success)
	}
}

func Test_Journal(t *testing.T) {
	t.Log("Given the need to journal accepted transactions.")
	{
		storage, err := memory.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
		}

		journal, err := database.New(storage)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the journal: %v", failed, err)
		}

		t.Logf("\tTest 0:\tWhen appending entries.")
		{
			for nonce := uint64(1); nonce <= 3; nonce++ {
				tx := database.Tx{ChainID: 1337, Nonce: nonce, Call: database.CallBuyBlock, Block: nonce, Value: genesis.FromEther(1, 10)}
				if _, err := journal.Append(sign(t, tx), 1_000+nonce); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to append entry %d: %v", failed, nonce, err)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould be able to append entries.", success)

			latest := journal.Latest()
			if latest.Number != 3 || latest.Tx.Block != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould report the latest entry: %+v", failed, latest)
			}
			t.Logf("\t%s\tTest 0:\tShould report the latest entry.", success)
		}

		t.Logf("\tTest 1:\tWhen reopening the journal.")
		{
			reopened, err := database.New(storage)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to reopen the journal: %v", failed, err)
			}

			if reopened.Latest().Hash() != journal.Latest().Hash() {
				t.Fatalf("\t%s\tTest 1:\tShould find the same latest entry.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould find the same latest entry.", success)

			var nums []uint64
			err = reopened.ForEach(func(entry database.Entry) error {
				nums = append(nums, entry.Number)
				return nil
			})
			if err != nil || len(nums) != 3 || nums[0] != 1 || nums[2] != 3 {
				t.Fatalf("\t%s\tTest 1:\tShould walk the entries in order: %v", failed, nums)
			}
			t.Logf("\t%s\tTest 1:\tShould walk the entries in order.", success)
		}

		t.Logf("\tTest 2:\tWhen reading a range of entries.")
		{
			entries, err := journal.Entries(2, 10)
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to read entries: %v", failed, err)
			}

			if len(entries) != 2 || entries[0].Number != 2 || entries[1].PrevHash != entries[0].Hash() {
				t.Fatalf("\t%s\tTest 2:\tShould get the chained entries: %+v", failed, entries)
			}
			t.Logf("\t%s\tTest 2:\tShould get the chained entries.", success)
		}

		t.Logf("\tTest 3:\tWhen the chain has been tampered with.")
		{
			bad, _ := memory.New()
			first := database.Entry{Number: 1, PrevHash: "0x00", Tx: sign(t, database.Tx{ChainID: 1337, Nonce: 1, Call: database.CallWithdraw})}
			if err := bad.Write(first); err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould be able to write the entry: %v", failed, err)
			}

			if _, err := database.New(bad); !errors.Is(err, database.ErrChainBroken) {
				t.Fatalf("\t%s\tTest 3:\tShould detect the broken chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould detect the broken chain.", success)
		}

		t.Logf("\tTest 4:\tWhen resetting the journal.")
		{
			if err := journal.Reset(); err != nil {
				t.Fatalf("\t%s\tTest 4:\tShould be able to reset: %v", failed, err)
			}

			if journal.Latest().Number != 0 {
				t.Fatalf("\t%s\tTest 4:\tShould be empty.", failed)
			}
			t.Logf("\t%s\tTest 4:\tShould be empty.", success)
		}
	}
}
