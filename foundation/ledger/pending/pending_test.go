package pending_test

import (
	"errors"
	"testing"

	"github.com/permledger/permledger/foundation/ledger/id"
	"github.com/permledger/permledger/foundation/ledger/pending"
	"github.com/permledger/permledger/foundation/ledger/tx"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const creator = id.AccountID("id@domain")

func newTx(timeMs uint64) tx.SignedTx {
	return tx.SignedTx{
		Tx: tx.Tx{
			CreatorID:     creator,
			CreatedTimeMs: timeMs,
			Commands: []tx.Command{{
				Kind:          tx.CmdTransferAsset,
				SrcAccountID:  creator,
				DestAccountID: "id2@domain",
				AssetID:       "coin#domain",
				Amount:        "1.00",
			}},
		},
	}
}

func TestCRUD(t *testing.T) {
	t.Log("Given the need to validate the pending pool api.")
	{
		t.Logf("\tTest 0:\tWhen adding, replacing and removing transactions.")
		{
			pool := pending.New()

			tx1 := newTx(100)
			tx2 := newTx(101)

			if _, err := pool.Upsert(tx1); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to add a transaction: %v", failed, err)
			}
			if _, err := pool.Upsert(tx2); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to add a transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to add transactions.", success)

			if _, err := pool.Upsert(tx1); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to replace a transaction: %v", failed, err)
			}
			if pool.Count() != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould keep the count at 2 after a replace, got %d.", failed, pool.Count())
			}
			t.Logf("\t%s\tTest 0:\tShould keep the count at 2 after a replace.", success)

			if err := pool.Delete(tx1); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to remove a transaction: %v", failed, err)
			}
			if pool.Count() != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould have 1 transaction left, got %d.", failed, pool.Count())
			}
			t.Logf("\t%s\tTest 0:\tShould be able to remove a transaction.", success)

			pool.Truncate()
			if pool.Count() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould be able to truncate the pool.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to truncate the pool.", success)
		}
	}
}

func TestPaging(t *testing.T) {
	t.Log("Given the need to page a creator's pending queue.")
	{
		t.Logf("\tTest 0:\tWhen walking the queue with hash markers.")
		{
			pool := pending.New()

			txs := make([]tx.SignedTx, 5)
			for i := range 5 {
				txs[i] = newTx(uint64(100 + i))
				if _, err := pool.Upsert(txs[i]); err != nil {
					t.Fatalf("unable to upsert: %v", err)
				}
			}

			page, err := pool.Get(creator, 2, "")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to get the first page: %v", failed, err)
			}
			if len(page.Txs) != 2 || page.Total != 5 || page.NextHash != txs[2].Hash() {
				t.Fatalf("\t%s\tTest 0:\tShould get 2 of 5 pointing at the third.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get 2 of 5 pointing at the third.", success)

			page, err = pool.Get(creator, 10, page.NextHash)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to get the tail page: %v", failed, err)
			}
			if len(page.Txs) != 3 || page.NextHash != "" {
				t.Fatalf("\t%s\tTest 0:\tShould drain the queue with no next hash.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould drain the queue with no next hash.", success)
		}

		t.Logf("\tTest 1:\tWhen the marker is not pending.")
		{
			pool := pending.New()
			if _, err := pool.Upsert(newTx(100)); err != nil {
				t.Fatalf("unable to upsert: %v", err)
			}

			if _, err := pool.Get(creator, 2, "0x0000000000000000000000000000000000000000000000000000000000000001"); !errors.Is(err, pending.ErrNotFound) {
				t.Fatalf("\t%s\tTest 1:\tShould report the unknown marker: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould report the unknown marker.", success)
		}

		t.Logf("\tTest 2:\tWhen the creator has nothing pending.")
		{
			pool := pending.New()

			page, err := pool.Get(creator, 2, "")
			if err != nil || len(page.Txs) != 0 || page.Total != 0 {
				t.Fatalf("\t%s\tTest 2:\tShould get an empty page: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould get an empty page.", success)
		}
	}
}
