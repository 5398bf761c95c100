// Package pending maintains the in-memory pool of transactions that have
// been submitted but not yet committed to a block.
package pending

import (
	"errors"
	"sync"

	"github.com/permledger/permledger/foundation/ledger/id"
	"github.com/permledger/permledger/foundation/ledger/tx"
)

// ErrNotFound is returned by Get when the pagination hash does not match
// any transaction currently pending for the account.
var ErrNotFound = errors.New("pagination hash not found")

// =============================================================================

// Page is one chunk of a creator's pending queue. NextHash points at the
// first transaction after the chunk and is empty when the queue is
// exhausted.
type Page struct {
	Txs      []tx.SignedTx
	NextHash string
	Total    int
}

// entry keeps a pending transaction together with its content hash so the
// hash is not recomputed on every page request.
type entry struct {
	hash string
	tx   tx.SignedTx
}

// Pool represents the cache of pending transactions organized as one
// insertion-ordered queue per creator account.
type Pool struct {
	mu   sync.RWMutex
	pool map[id.AccountID][]entry
}

// New constructs a new pending pool.
func New() *Pool {
	return &Pool{
		pool: make(map[id.AccountID][]entry),
	}
}

// Count returns the current number of transactions in the pool.
func (p *Pool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var total int
	for _, queue := range p.pool {
		total += len(queue)
	}

	return total
}

// Upsert adds or replaces a transaction in the pool. A transaction whose
// hash is already pending is replaced in place, which is how a partially
// signed transaction collects additional signatures.
func (p *Pool) Upsert(transaction tx.SignedTx) (int, error) {
	if !transaction.CreatorID.IsValid() {
		return 0, errors.New("transaction creator is not properly formatted")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	hash := transaction.Hash()
	queue := p.pool[transaction.CreatorID]

	for i, ent := range queue {
		if ent.hash == hash {
			queue[i].tx = transaction
			return len(queue), nil
		}
	}

	p.pool[transaction.CreatorID] = append(queue, entry{hash: hash, tx: transaction})

	return len(queue) + 1, nil
}

// Delete removes a transaction from the pool. Used by the write path when
// a pending transaction is committed or expired.
func (p *Pool) Delete(transaction tx.SignedTx) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	hash := transaction.Hash()
	queue := p.pool[transaction.CreatorID]

	for i, ent := range queue {
		if ent.hash == hash {
			p.pool[transaction.CreatorID] = append(queue[:i], queue[i+1:]...)
			if len(p.pool[transaction.CreatorID]) == 0 {
				delete(p.pool, transaction.CreatorID)
			}
			return nil
		}
	}

	return errors.New("transaction not in pool")
}

// Truncate clears all the transactions from the pool.
func (p *Pool) Truncate() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pool = make(map[id.AccountID][]entry)
}

// All returns every transaction currently pending for the account in
// insertion order.
//
// Deprecated: All backs the legacy unpaged pending-transactions query.
// New callers should use Get.
func (p *Pool) All(accountID id.AccountID) []tx.SignedTx {
	p.mu.RLock()
	defer p.mu.RUnlock()

	queue := p.pool[accountID]
	out := make([]tx.SignedTx, len(queue))
	for i, ent := range queue {
		out[i] = ent.tx
	}

	return out
}

// Get returns one page of the account's pending queue. When firstHash is
// set the page starts at the transaction with that hash; an unknown hash
// fails with ErrNotFound.
func (p *Pool) Get(accountID id.AccountID, pageSize int, firstHash string) (Page, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	queue := p.pool[accountID]

	start := 0
	if firstHash != "" {
		start = -1
		for i, ent := range queue {
			if ent.hash == firstHash {
				start = i
				break
			}
		}
		if start == -1 {
			return Page{}, ErrNotFound
		}
	}

	end := start + pageSize
	if end > len(queue) {
		end = len(queue)
	}

	page := Page{
		Txs:   make([]tx.SignedTx, 0, end-start),
		Total: len(queue),
	}
	for _, ent := range queue[start:end] {
		page.Txs = append(page.Txs, ent.tx)
	}

	if end < len(queue) {
		page.NextHash = queue[end].hash
	}

	return page, nil
}
