package id_test

import (
	"testing"

	"github.com/permledger/permledger/foundation/ledger/id"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestAccountID(t *testing.T) {
	type table struct {
		name   string
		input  string
		valid  bool
		domain string
	}

	tt := []table{
		{name: "basic", input: "id@domain", valid: true, domain: "domain"},
		{name: "underscore", input: "some_user@test.soramitsu.co.jp", valid: true, domain: "test.soramitsu.co.jp"},
		{name: "digits", input: "user1@domain1", valid: true, domain: "domain1"},
		{name: "missing separator", input: "iddomain", valid: false},
		{name: "empty name", input: "@domain", valid: false},
		{name: "empty domain", input: "id@", valid: false},
		{name: "uppercase name", input: "Id@domain", valid: false},
		{name: "name too long", input: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa@domain", valid: false},
		{name: "bad label edge", input: "id@-domain", valid: false},
		{name: "empty label", input: "id@domain..com", valid: false},
	}

	t.Log("Given the need to validate account identifier parsing.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling account id %q.", testID, tst.input)
			{
				accountID, err := id.ToAccountID(tst.input)

				if tst.valid {
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to parse the account id: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to parse the account id.", success, testID)

					if accountID.Domain() != tst.domain {
						t.Fatalf("\t%s\tTest %d:\tShould get back the right domain, got %q exp %q.", failed, testID, accountID.Domain(), tst.domain)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right domain.", success, testID)
					continue
				}

				if err == nil {
					t.Fatalf("\t%s\tTest %d:\tShould reject the malformed account id.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould reject the malformed account id.", success, testID)
			}
		}
	}
}

func TestAssetID(t *testing.T) {
	type table struct {
		name  string
		input string
		valid bool
	}

	tt := []table{
		{name: "basic", input: "coin#domain", valid: true},
		{name: "wrong separator", input: "coin@domain", valid: false},
		{name: "empty name", input: "#domain", valid: false},
		{name: "uppercase", input: "Coin#domain", valid: false},
	}

	t.Log("Given the need to validate asset identifier parsing.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling asset id %q.", testID, tst.input)
			{
				assetID, err := id.ToAssetID(tst.input)

				if tst.valid {
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to parse the asset id: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to parse the asset id.", success, testID)

					if assetID.Name() != "coin" || assetID.Domain() != "domain" {
						t.Fatalf("\t%s\tTest %d:\tShould split the asset id into name and domain.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould split the asset id into name and domain.", success, testID)
					continue
				}

				if err == nil {
					t.Fatalf("\t%s\tTest %d:\tShould reject the malformed asset id.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould reject the malformed asset id.", success, testID)
			}
		}
	}
}

func TestRoleID(t *testing.T) {
	t.Log("Given the need to validate role identifier parsing.")
	{
		t.Logf("\tTest 0:\tWhen handling valid and invalid role ids.")
		{
			if _, err := id.ToRoleID("money_creator"); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to parse a valid role id: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to parse a valid role id.", success)

			if _, err := id.ToRoleID("Admin"); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject an uppercase role id.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject an uppercase role id.", success)
		}
	}
}
