package permission_test

import (
	"testing"

	"github.com/permledger/permledger/foundation/ledger/permission"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestSet(t *testing.T) {
	t.Log("Given the need to validate the permission set api.")
	{
		t.Logf("\tTest 0:\tWhen combining role permission sets.")
		{
			reader := permission.NewSet(permission.GetMyAccount, permission.GetMySignatories)
			admin := permission.NewSet(permission.GetAllAccounts)

			all := reader.Union(admin)

			for _, p := range []permission.Permission{permission.GetMyAccount, permission.GetMySignatories, permission.GetAllAccounts} {
				if !all.Has(p) {
					t.Fatalf("\t%s\tTest 0:\tShould contain permission %s after union.", failed, p)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould contain all permissions after union.", success)

			if all.Has(permission.GetBlocks) {
				t.Fatalf("\t%s\tTest 0:\tShould not contain a permission that was never added.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould not contain a permission that was never added.", success)

			if all.HasRoot() {
				t.Fatalf("\t%s\tTest 0:\tShould not report root for a non-root set.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould not report root for a non-root set.", success)
		}

		t.Logf("\tTest 1:\tWhen handling the root bit.")
		{
			root := permission.NewSet(permission.Root)
			if !root.HasRoot() {
				t.Fatalf("\t%s\tTest 1:\tShould report root when the root bit is set.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould report root when the root bit is set.", success)
		}

		t.Logf("\tTest 2:\tWhen round-tripping permission names.")
		{
			for _, p := range permission.NewSet(permission.GetDomainAccounts, permission.GetAllTxs, permission.Root).List() {
				parsed, err := permission.Parse(p.String())
				if err != nil {
					t.Fatalf("\t%s\tTest 2:\tShould be able to parse %q: %v", failed, p.String(), err)
				}
				if parsed != p {
					t.Fatalf("\t%s\tTest 2:\tShould parse %q back to the same bit.", failed, p.String())
				}
			}
			t.Logf("\t%s\tTest 2:\tShould round-trip permission names.", success)

			if _, err := permission.Parse("can_fly"); err == nil {
				t.Fatalf("\t%s\tTest 2:\tShould reject an unknown permission name.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould reject an unknown permission name.", success)
		}
	}
}
