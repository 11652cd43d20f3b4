package cmd

import (
	"fmt"
	"log"
	"strconv"

	"github.com/ardanlabs/blocktrading/foundation/blocktrading/database"
	"github.com/spf13/cobra"
)

var (
	buyValue     string
	buyManyValue string
	buyFromValue string
)

var buyCmd = &cobra.Command{
	Use:   "buy <index>",
	Short: "Mint a block that has never been owned",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		index, err := parseIndex(args[0])
		if err != nil {
			log.Fatal(err)
		}

		value, err := mintCost(buyValue, 1)
		if err != nil {
			log.Fatal(err)
		}

		tx := database.Tx{
			Call:  database.CallBuyBlock,
			Block: index,
			Value: value,
		}
		if err := send(tx); err != nil {
			log.Fatal(err)
		}
	},
}

var buyManyCmd = &cobra.Command{
	Use:   "buy-many <index,index,...>",
	Short: "Mint several blocks in one call",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		indices, err := parseIndices(args[0])
		if err != nil {
			log.Fatal(err)
		}

		value, err := mintCost(buyManyValue, len(indices))
		if err != nil {
			log.Fatal(err)
		}

		tx := database.Tx{
			Call:   database.CallBuyMultipleBlocks,
			Blocks: indices,
			Value:  value,
		}
		if err := send(tx); err != nil {
			log.Fatal(err)
		}
	},
}

var sellCmd = &cobra.Command{
	Use:   "sell <index> <price>",
	Short: "List one of your blocks for sale, a price of 0 takes it off the market",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		index, err := parseIndex(args[0])
		if err != nil {
			log.Fatal(err)
		}

		price, err := parseAmount(args[1])
		if err != nil {
			log.Fatal(err)
		}

		tx := database.Tx{
			Call:  database.CallSellBlock,
			Block: index,
			Price: price,
		}
		if err := send(tx); err != nil {
			log.Fatal(err)
		}
	},
}

var buyFromCmd = &cobra.Command{
	Use:   "buy-from <index>",
	Short: "Buy a block another account listed for sale",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		index, err := parseIndex(args[0])
		if err != nil {
			log.Fatal(err)
		}

		value, err := listedPrice(buyFromValue, index)
		if err != nil {
			log.Fatal(err)
		}

		tx := database.Tx{
			Call:  database.CallBuyFromUser,
			Block: index,
			Value: value,
		}
		if err := send(tx); err != nil {
			log.Fatal(err)
		}
	},
}

var colorCmd = &cobra.Command{
	Use:   "color <index> <color>",
	Short: "Paint one of your blocks",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		index, err := parseIndex(args[0])
		if err != nil {
			log.Fatal(err)
		}

		color, err := strconv.ParseUint(args[1], 10, 8)
		if err != nil {
			log.Fatal(fmt.Errorf("color %q: %w", args[1], err))
		}

		tx := database.Tx{
			Call:  database.CallSetColor,
			Block: index,
			Color: uint8(color),
		}
		if err := send(tx); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(buyCmd, buyManyCmd, sellCmd, buyFromCmd, colorCmd)
	buyCmd.Flags().StringVarP(&buyValue, "value", "v", "", "Wei to pay, decimal or 0x hex. Defaults to the mint price.")
	buyManyCmd.Flags().StringVarP(&buyManyValue, "value", "v", "", "Wei to pay, decimal or 0x hex. Defaults to the mint price per block.")
	buyFromCmd.Flags().StringVarP(&buyFromValue, "value", "v", "", "Wei to pay, decimal or 0x hex. Defaults to the listed price.")
}
