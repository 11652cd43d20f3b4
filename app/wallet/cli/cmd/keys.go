package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Create a new key file and print its account",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path := getPrivateKeyPath()
		if _, err := os.Stat(path); err == nil {
			log.Fatalf("key file %s already exists", path)
		}

		privateKey, err := crypto.GenerateKey()
		if err != nil {
			log.Fatal(err)
		}

		if err := crypto.SaveECDSA(path, privateKey); err != nil {
			log.Fatal(err)
		}

		fmt.Println(accounts.PublicKeyToAccountID(privateKey.PublicKey))
	},
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the account of the key file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		accountID, err := walletAccount()
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(accountID)
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the balance, nonce and blocks the node has for the account",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		accountID, err := walletAccount()
		if err != nil {
			log.Fatal(err)
		}

		c := newClient(url)

		act, err := c.account(accountID)
		if err != nil {
			log.Fatal(err)
		}

		var owned struct {
			Blocks []uint64 `json:"blocks"`
		}
		if err := c.get(fmt.Sprintf("/v1/blocks/owner/%s", accountID), &owned); err != nil {
			log.Fatal(err)
		}

		fmt.Println("Account:", accountID)
		fmt.Println("Balance:", act.Balance)
		fmt.Println("Nonce:  ", act.Nonce)
		fmt.Println("Blocks: ", owned.Blocks)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd, accountCmd, balanceCmd)
}

// walletAccount returns the account of the configured key file.
func walletAccount() (accounts.AccountID, error) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		return "", err
	}

	return accounts.PublicKeyToAccountID(privateKey.PublicKey), nil
}
