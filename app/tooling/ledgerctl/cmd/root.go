// Package cmd contains the ledgerctl commands.
package cmd

import (
	"crypto/ecdsa"
	"os"

	"github.com/spf13/cobra"

	"github.com/permledger/permledger/foundation/keystore"
)

var (
	url       string
	creatorID string
	keyName   string
	keyPath   string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	rootCmd.PersistentFlags().StringVarP(&creatorID, "creator", "c", "", "Account id issuing the query.")
	rootCmd.PersistentFlags().StringVarP(&keyName, "key", "k", "", "Name of the key whose public key is sent as the signer.")
	rootCmd.PersistentFlags().StringVarP(&keyPath, "key-path", "p", "zblock/keys/", "Path to the directory with private keys.")
}

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Query a permissioned ledger node",
}

// Execute runs the configured command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadKey loads the configured private key, or returns nil when no key
// name is set.
func loadKey() (*ecdsa.PrivateKey, error) {
	if keyName == "" {
		return nil, nil
	}

	ks, err := keystore.New(keyPath)
	if err != nil {
		return nil, err
	}

	return ks.Key(keyName)
}
