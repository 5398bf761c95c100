package memory_test

import (
	"context"
	"testing"

	"github.com/permledger/permledger/business/ledger/wsv"
	"github.com/permledger/permledger/business/ledger/wsv/memory"
	"github.com/permledger/permledger/foundation/ledger/genesis"
	"github.com/permledger/permledger/foundation/ledger/id"
	"github.com/permledger/permledger/foundation/ledger/permission"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func seedGenesis() genesis.Genesis {
	return genesis.Genesis{
		ChainID: "test-ledger",
		Roles: []genesis.Role{
			{RoleID: "user", Permissions: []string{"can_get_my_account", "can_get_my_signatories"}},
			{RoleID: "admin", Permissions: []string{"root"}},
		},
		Domains: []genesis.Domain{
			{DomainID: "domain", DefaultRole: "user"},
		},
		Accounts: []genesis.Account{
			{AccountID: "id@domain", Quorum: 1, Roles: []string{"user"}, Signatories: []string{"0x04aa"}},
			{AccountID: "admin@domain", Quorum: 2, Roles: []string{"admin"}},
		},
		Assets: []genesis.Asset{
			{AssetID: "coin#domain", Precision: 2},
		},
		Balances: map[string]map[string]string{
			"id@domain": {"coin#domain": "12.50"},
		},
		Peers: []genesis.Peer{
			{Address: "0.0.0.0:10001", PublicKey: "0x04peer0"},
		},
	}
}

func TestGenesisLoad(t *testing.T) {
	t.Log("Given the need to seed the world state from a genesis document.")
	{
		t.Logf("\tTest 0:\tWhen loading a complete document.")
		{
			str, err := memory.New(seedGenesis())
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to build the store: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to build the store.", success)

			reader, err := str.View(context.Background())
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to open a snapshot: %v", failed, err)
			}
			defer reader.Close()

			account, err := reader.Account("id@domain")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould find the seeded account: %v", failed, err)
			}
			if account.DomainID != "domain" || account.Quorum != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould carry the seeded domain and quorum.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould find the seeded account.", success)

			roles, err := reader.AccountRoles("admin@domain")
			if err != nil || len(roles) != 1 || roles[0] != "admin" {
				t.Fatalf("\t%s\tTest 0:\tShould resolve the admin role: %v", failed, err)
			}
			set, err := reader.RolePermissions("admin")
			if err != nil || !set.HasRoot() {
				t.Fatalf("\t%s\tTest 0:\tShould resolve root on the admin role: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould resolve roles and permissions.", success)

			page, err := reader.AccountAssets("id@domain", 10, "")
			if err != nil || len(page.Assets) != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould find the seeded balance: %v", failed, err)
			}
			if got := page.Assets[0].BalanceString(); got != "12.50" {
				t.Fatalf("\t%s\tTest 0:\tShould render the seeded balance, got %q.", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould render the seeded balance.", success)
		}

		t.Logf("\tTest 1:\tWhen the document references a missing entity.")
		{
			gen := seedGenesis()
			gen.Accounts = append(gen.Accounts, genesis.Account{AccountID: "x@nowhere", Roles: []string{"user"}})

			if _, err := memory.New(gen); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould reject an account in an unknown domain.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reject an account in an unknown domain.", success)
		}
	}
}

func TestSnapshotIsolation(t *testing.T) {
	t.Log("Given the need for snapshots to ignore commits that land mid-query.")
	{
		t.Logf("\tTest 0:\tWhen mutating the store after opening a view.")
		{
			str, err := memory.New(seedGenesis())
			if err != nil {
				t.Fatalf("unable to build store: %v", err)
			}

			reader, err := str.View(context.Background())
			if err != nil {
				t.Fatalf("unable to open snapshot: %v", err)
			}
			defer reader.Close()

			str.SetBalance("id@domain", "coin#domain", 99_999)
			str.UpdateHeight(42)
			str.Grant("id@domain", "admin@domain", permission.GrantMySignatories)

			page, err := reader.AccountAssets("id@domain", 10, "")
			if err != nil || page.Assets[0].BalanceString() != "12.50" {
				t.Fatalf("\t%s\tTest 0:\tShould still observe the snapshot balance.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould still observe the snapshot balance.", success)

			if reader.Height() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould still observe the snapshot height.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould still observe the snapshot height.", success)

			granted, err := reader.HasGrantable("id@domain", "admin@domain", permission.GrantMySignatories)
			if err != nil || granted {
				t.Fatalf("\t%s\tTest 0:\tShould not observe the mid-query grant.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould not observe the mid-query grant.", success)

			after, err := str.View(context.Background())
			if err != nil {
				t.Fatalf("unable to open second snapshot: %v", err)
			}
			defer after.Close()

			if after.Height() != 42 {
				t.Fatalf("\t%s\tTest 0:\tShould observe the commit from a later snapshot.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould observe the commit from a later snapshot.", success)
		}
	}
}

func TestAccountDetailFilters(t *testing.T) {
	t.Log("Given the need to filter account detail by writer and key.")
	{
		t.Logf("\tTest 0:\tWhen reading with every filter combination.")
		{
			str, err := memory.New(seedGenesis())
			if err != nil {
				t.Fatalf("unable to build store: %v", err)
			}

			target := id.AccountID("id@domain")
			str.SetAccountDetail(target, "admin@domain", "age", "24")
			str.SetAccountDetail(target, "admin@domain", "city", "minsk")
			str.SetAccountDetail(target, "id@domain", "age", "25")

			reader, err := str.View(context.Background())
			if err != nil {
				t.Fatalf("unable to open snapshot: %v", err)
			}
			defer reader.Close()

			page, err := reader.AccountDetail(target, "", "", 10, nil)
			if err != nil || page.Total != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould count 3 records unfiltered: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould count 3 records unfiltered.", success)

			page, err = reader.AccountDetail(target, "admin@domain", "", 10, nil)
			if err != nil || page.Total != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould count 2 records for the writer: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould count 2 records for the writer.", success)

			page, err = reader.AccountDetail(target, "", "age", 10, nil)
			if err != nil || page.Total != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould count 2 records for the key: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould count 2 records for the key.", success)

			page, err = reader.AccountDetail(target, "admin@domain", "age", 10, nil)
			if err != nil || page.Detail != `{"admin@domain":{"age":"24"}}` {
				t.Fatalf("\t%s\tTest 0:\tShould isolate one record, got %q.", failed, page.Detail)
			}
			t.Logf("\t%s\tTest 0:\tShould isolate one record.", success)

			if _, err := reader.AccountDetail(target, "ghost@domain", "", 10, nil); err != wsv.ErrNotFound {
				t.Fatalf("\t%s\tTest 0:\tShould report an absent subtree: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould report an absent subtree.", success)
		}
	}
}
