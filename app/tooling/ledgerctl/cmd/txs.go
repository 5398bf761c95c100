package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

var (
	txsPageSize  int
	txsFirstHash string
	txsPending   bool
)

var txsCmd = &cobra.Command{
	Use:   "txs [account_id]",
	Short: "Print an account's committed or pending transactions.",
	Args:  cobra.MaximumNArgs(1),
	Run:   txsRun,
}

func init() {
	rootCmd.AddCommand(txsCmd)
	txsCmd.Flags().IntVarP(&txsPageSize, "page-size", "s", 20, "Maximum transactions per page.")
	txsCmd.Flags().StringVarP(&txsFirstHash, "first-hash", "f", "", "Hash to start the page at.")
	txsCmd.Flags().BoolVar(&txsPending, "pending", false, "Read the pending pool instead of the chain.")
}

func txsRun(cmd *cobra.Command, args []string) {
	req := queryRequest{
		Kind:      "get_account_transactions",
		PageSize:  txsPageSize,
		FirstHash: txsFirstHash,
	}
	if txsPending {
		req.Kind = "get_pending_transactions"
		req.Paged = true
	}
	if len(args) == 1 {
		req.TargetID = args[0]
	}

	if err := runQuery(req); err != nil {
		log.Fatal(err)
	}
}
