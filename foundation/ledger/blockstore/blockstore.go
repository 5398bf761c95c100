// Package blockstore provides random access to the append-only log of
// committed blocks and the transaction indexes derived from it.
package blockstore

import (
	"errors"
	"sync"

	"github.com/permledger/permledger/foundation/ledger/block"
	"github.com/permledger/permledger/foundation/ledger/id"
	"github.com/permledger/permledger/foundation/ledger/tx"
)

// ErrInvalidHeight is returned when a block is requested at height zero or
// beyond the current ledger height.
var ErrInvalidHeight = errors.New("invalid block height")

// ErrNotFound is returned when a transaction hash is not part of any
// committed block.
var ErrNotFound = errors.New("transaction not found")

// =============================================================================

// Serializer interface represents the behavior required to be implemented
// by any package providing support for storing and reading the block log.
type Serializer interface {
	Write(blockData block.Data) error
	GetBlock(height uint64) (block.Data, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by
// any package providing support to iterate over the blocks.
type Iterator interface {
	Next() (block.Data, error)
	Done() bool
}

// =============================================================================

// TxLocation identifies where a committed transaction lives in the chain.
type TxLocation struct {
	Height uint64
	Index  int
}

// TxRecord is a committed transaction together with its location and
// canonical hash.
type TxRecord struct {
	Hash   string
	Height uint64
	Index  int
	Tx     tx.SignedTx
}

// =============================================================================

// Store manages the committed block log and the secondary indexes needed
// to page transaction streams in numeric (height, index) order.
type Store struct {
	mu sync.RWMutex

	serializer  Serializer
	latestBlock block.Block
	evHandler   func(v string, args ...any)

	txs       []TxRecord
	byHash    map[string]int
	byCreator map[id.AccountID][]int
	byTouched map[id.AccountID][]int
}

// New constructs a store and loads the chain held by the serializer,
// validating block linkage and building the transaction indexes.
func New(serializer Serializer, evHandler func(v string, args ...any)) (*Store, error) {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	str := Store{
		serializer: serializer,
		evHandler:  ev,
		byHash:     make(map[string]int),
		byCreator:  make(map[id.AccountID][]int),
		byTouched:  make(map[id.AccountID][]int),
	}

	var latestBlock block.Block

	iter := serializer.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		blk, err := block.ToBlock(blockData)
		if err != nil {
			return nil, err
		}

		if err := blk.ValidateBlock(latestBlock, ev); err != nil {
			return nil, err
		}

		str.index(blk)
		latestBlock = blk
	}

	str.latestBlock = latestBlock

	return &str, nil
}

// Close releases the underlying serializer.
func (str *Store) Close() {
	str.serializer.Close()
}

// Height returns the current ledger height. Zero means no block has been
// committed yet.
func (str *Store) Height() uint64 {
	str.mu.RLock()
	defer str.mu.RUnlock()

	return str.latestBlock.Header.Height
}

// LatestBlock returns the most recently committed block.
func (str *Store) LatestBlock() block.Block {
	str.mu.RLock()
	defer str.mu.RUnlock()

	return str.latestBlock
}

// Write appends a new block to the log. The write path owns calling this;
// the query engine only reads.
func (str *Store) Write(blk block.Block) error {
	str.mu.Lock()
	defer str.mu.Unlock()

	if err := blk.ValidateBlock(str.latestBlock, str.evHandler); err != nil {
		return err
	}

	if err := str.serializer.Write(block.NewData(blk)); err != nil {
		return err
	}

	str.index(blk)
	str.latestBlock = blk

	return nil
}

// GetBlock returns the block at the specified height. The height must be
// in the interval [1, current height].
func (str *Store) GetBlock(height uint64) (block.Block, error) {
	str.mu.RLock()
	current := str.latestBlock.Header.Height
	str.mu.RUnlock()

	if height == 0 || height > current {
		return block.Block{}, ErrInvalidHeight
	}

	blockData, err := str.serializer.GetBlock(height)
	if err != nil {
		return block.Block{}, err
	}

	return block.ToBlock(blockData)
}

// GetTx returns a committed transaction and its location by hash.
func (str *Store) GetTx(hash string) (TxRecord, error) {
	str.mu.RLock()
	defer str.mu.RUnlock()

	pos, exists := str.byHash[hash]
	if !exists {
		return TxRecord{}, ErrNotFound
	}

	return str.txs[pos], nil
}

// AccountTxs returns the committed transactions created by the specified
// account, in ascending (height, index) order, bounded by maxHeight so a
// query never observes blocks beyond its snapshot.
func (str *Store) AccountTxs(accountID id.AccountID, maxHeight uint64) []TxRecord {
	str.mu.RLock()
	defer str.mu.RUnlock()

	return str.collect(str.byCreator[accountID], maxHeight, nil)
}

// AccountAssetTxs returns the committed transactions that move the
// specified asset while touching the specified account as sender or
// recipient, in ascending (height, index) order.
func (str *Store) AccountAssetTxs(accountID id.AccountID, assetID id.AssetID, maxHeight uint64) []TxRecord {
	str.mu.RLock()
	defer str.mu.RUnlock()

	match := func(rec TxRecord) bool {
		return rec.Tx.MovesAssetFor(accountID, assetID)
	}

	return str.collect(str.byTouched[accountID], maxHeight, match)
}

// =============================================================================

// index adds the transactions of a block to the secondary indexes. Blocks
// arrive in height order, so appending keeps every position list sorted by
// (height, index) without any comparison on stringified heights.
func (str *Store) index(blk block.Block) {
	for i, transaction := range blk.Trans.Values() {
		rec := TxRecord{
			Hash:   transaction.Hash(),
			Height: blk.Header.Height,
			Index:  i,
			Tx:     transaction,
		}

		pos := len(str.txs)
		str.txs = append(str.txs, rec)
		str.byHash[rec.Hash] = pos
		str.byCreator[transaction.CreatorID] = append(str.byCreator[transaction.CreatorID], pos)

		touched := make(map[id.AccountID]struct{})
		for _, cmd := range transaction.Commands {
			switch cmd.Kind {
			case tx.CmdTransferAsset, tx.CmdAddAssetQty, tx.CmdSubtractAssetQty:
				if cmd.SrcAccountID != "" {
					touched[cmd.SrcAccountID] = struct{}{}
				}
				if cmd.DestAccountID != "" {
					touched[cmd.DestAccountID] = struct{}{}
				}
			}
		}
		for accountID := range touched {
			str.byTouched[accountID] = append(str.byTouched[accountID], pos)
		}
	}
}

// collect materializes an index position list into records, applying the
// height bound and an optional match filter.
func (str *Store) collect(positions []int, maxHeight uint64, match func(TxRecord) bool) []TxRecord {
	var out []TxRecord
	for _, pos := range positions {
		rec := str.txs[pos]
		if rec.Height > maxHeight {
			break
		}
		if match != nil && !match(rec) {
			continue
		}
		out = append(out, rec)
	}

	return out
}
