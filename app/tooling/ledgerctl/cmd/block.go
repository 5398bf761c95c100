package cmd

import (
	"log"
	"strconv"

	"github.com/spf13/cobra"
)

var blockCmd = &cobra.Command{
	Use:   "block <height>",
	Short: "Print a committed block by height.",
	Args:  cobra.ExactArgs(1),
	Run:   blockRun,
}

func init() {
	rootCmd.AddCommand(blockCmd)
}

func blockRun(cmd *cobra.Command, args []string) {
	height, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		log.Fatal(err)
	}

	if err := runQuery(queryRequest{Kind: "get_block", Height: height}); err != nil {
		log.Fatal(err)
	}
}
