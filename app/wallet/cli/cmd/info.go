package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <index>",
	Short: "Print the owner, color and price of a block",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		index, err := parseIndex(args[0])
		if err != nil {
			log.Fatal(err)
		}

		var blk json.RawMessage
		if err := newClient(url).get(fmt.Sprintf("/v1/blocks/%d", index), &blk); err != nil {
			log.Fatal(err)
		}

		if err := printJSON(os.Stdout, blk); err != nil {
			log.Fatal(err)
		}
	},
}

var rangeCmd = &cobra.Command{
	Use:   "range <start> <end>",
	Short: "Print every block from start to end inclusive",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		start, err := parseIndex(args[0])
		if err != nil {
			log.Fatal(err)
		}

		end, err := parseIndex(args[1])
		if err != nil {
			log.Fatal(err)
		}

		var blks json.RawMessage
		if err := newClient(url).get(fmt.Sprintf("/v1/blocks/range/%d/%d", start, end), &blks); err != nil {
			log.Fatal(err)
		}

		if err := printJSON(os.Stdout, blks); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd, rangeCmd)
}
