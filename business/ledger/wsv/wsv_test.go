package wsv_test

import (
	"testing"

	"github.com/permledger/permledger/business/ledger/wsv"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestBalanceRendering(t *testing.T) {
	type table struct {
		name      string
		units     uint64
		precision uint8
		want      string
	}

	tt := []table{
		{name: "two digits", units: 1250, precision: 2, want: "12.50"},
		{name: "zero precision", units: 42, precision: 0, want: "42"},
		{name: "leading zeros", units: 5, precision: 3, want: "0.005"},
		{name: "zero balance", units: 0, precision: 2, want: "0.00"},
	}

	t.Log("Given the need to render balances with exact precision.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen rendering %d units at precision %d.", testID, tst.units, tst.precision)
			{
				got := wsv.FormatBalance(tst.units, tst.precision)
				if got != tst.want {
					t.Fatalf("\t%s\tTest %d:\tShould render %q, got %q.", failed, testID, tst.want, got)
				}
				t.Logf("\t%s\tTest %d:\tShould render %q.", success, testID, got)

				back, err := wsv.ParseBalance(got, tst.precision)
				if err != nil || back != tst.units {
					t.Fatalf("\t%s\tTest %d:\tShould parse back to %d units: %v", failed, testID, tst.units, err)
				}
				t.Logf("\t%s\tTest %d:\tShould parse back to the same units.", success, testID)
			}
		}
	}
}

func TestParseBalanceRejects(t *testing.T) {
	t.Log("Given the need to reject malformed amounts.")
	{
		t.Logf("\tTest 0:\tWhen the amount has too many fractional digits.")
		{
			if _, err := wsv.ParseBalance("1.005", 2); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject excess fractional digits.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject excess fractional digits.", success)
		}

		t.Logf("\tTest 1:\tWhen the amount is not a number.")
		{
			if _, err := wsv.ParseBalance("12.x0", 2); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould reject a non-decimal amount.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reject a non-decimal amount.", success)
		}
	}
}
