package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account [account_id]",
	Short: "Print an account and its roles.",
	Args:  cobra.MaximumNArgs(1),
	Run:   accountRun,
}

func init() {
	rootCmd.AddCommand(accountCmd)
}

func accountRun(cmd *cobra.Command, args []string) {
	req := queryRequest{Kind: "get_account"}
	if len(args) == 1 {
		req.TargetID = args[0]
	}

	if err := runQuery(req); err != nil {
		log.Fatal(err)
	}
}
