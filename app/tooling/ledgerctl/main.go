// This program provides an operator CLI for issuing queries against a
// running node.
package main

import "github.com/permledger/permledger/app/tooling/ledgerctl/cmd"

func main() {
	cmd.Execute()
}
