package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

var assetsPageSize int

var assetsCmd = &cobra.Command{
	Use:   "assets [account_id]",
	Short: "Print an account's asset balances.",
	Args:  cobra.MaximumNArgs(1),
	Run:   assetsRun,
}

func init() {
	rootCmd.AddCommand(assetsCmd)
	assetsCmd.Flags().IntVarP(&assetsPageSize, "page-size", "s", 100, "Maximum balances per page.")
}

func assetsRun(cmd *cobra.Command, args []string) {
	req := queryRequest{Kind: "get_account_assets", PageSize: assetsPageSize}
	if len(args) == 1 {
		req.TargetID = args[0]
	}

	if err := runQuery(req); err != nil {
		log.Fatal(err)
	}
}
