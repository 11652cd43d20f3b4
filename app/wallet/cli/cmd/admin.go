package cmd

import (
	"log"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database"
	"github.com/spf13/cobra"
)

var mintPriceCmd = &cobra.Command{
	Use:   "mint-price <price>",
	Short: "Change the price of minting a block, admin only",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		price, err := parseAmount(args[0])
		if err != nil {
			log.Fatal(err)
		}

		tx := database.Tx{
			Call:  database.CallSetMintPrice,
			Price: price,
		}
		if err := send(tx); err != nil {
			log.Fatal(err)
		}
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Pay the registry balance out to the admin, admin only",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		tx := database.Tx{
			Call: database.CallWithdraw,
		}
		if err := send(tx); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(mintPriceCmd, withdrawCmd)
}
