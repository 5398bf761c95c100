package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Print the registered network peers.",
	Run:   peersRun,
}

func init() {
	rootCmd.AddCommand(peersCmd)
}

func peersRun(cmd *cobra.Command, args []string) {
	if err := runQuery(queryRequest{Kind: "get_peers"}); err != nil {
		log.Fatal(err)
	}
}
