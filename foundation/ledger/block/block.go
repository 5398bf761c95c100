// Package block maintains the committed block type and its integrity rules.
package block

import (
	"errors"
	"fmt"

	"github.com/permledger/permledger/foundation/ledger/signature"
	"github.com/permledger/permledger/foundation/ledger/tx"
	"github.com/permledger/permledger/foundation/merkle"
)

// =============================================================================

// Header represents common information required for each block. The block
// hash covers the header only, so the chain can be checked with headers
// alone.
type Header struct {
	Height        uint64 `json:"height"`          // Position in the chain, first block is 1.
	PrevBlockHash string `json:"prev_block_hash"` // Hash of the previous block, zero for height 1.
	CreatedTimeMs uint64 `json:"created_time_ms"` // Time the block was produced.
	TransRoot     string `json:"trans_root"`      // Merkle tree root hash for the transactions in this block.
}

// Block represents a group of committed transactions.
type Block struct {
	Header Header
	Trans  *merkle.Tree[tx.SignedTx]
}

// New constructs a block from an ordered list of transactions. Block
// production lives on the write path; this constructor exists for the
// stores and the tests.
func New(height uint64, prevBlockHash string, createdTimeMs uint64, txs []tx.SignedTx) (Block, error) {
	if height == 0 {
		return Block{}, errors.New("block height must be 1 or greater")
	}

	tree, err := merkle.NewTree(txs)
	if err != nil {
		return Block{}, err
	}

	b := Block{
		Header: Header{
			Height:        height,
			PrevBlockHash: prevBlockHash,
			CreatedTimeMs: createdTimeMs,
			TransRoot:     tree.RootHex(),
		},
		Trans: tree,
	}

	return b, nil
}

// Hash returns the unique hash for the block.
func (b Block) Hash() string {
	if b.Header.Height == 0 {
		return signature.ZeroHash
	}

	return signature.Hash(b.Header)
}

// ValidateBlock takes a block and validates it against its predecessor
// before it is accepted into the block log.
func (b Block) ValidateBlock(previousBlock Block, evHandler func(v string, args ...any)) error {
	evHandler("block: ValidateBlock: validate: blk[%d]: check: heights are dense", b.Header.Height)

	if b.Header.Height != previousBlock.Header.Height+1 {
		return fmt.Errorf("block height %d is not next after %d", b.Header.Height, previousBlock.Header.Height)
	}

	evHandler("block: ValidateBlock: validate: blk[%d]: check: hash chain is intact", b.Header.Height)

	if b.Header.PrevBlockHash != previousBlock.Hash() {
		return fmt.Errorf("block %d prev hash %s does not match %s", b.Header.Height, b.Header.PrevBlockHash, previousBlock.Hash())
	}

	evHandler("block: ValidateBlock: validate: blk[%d]: check: trans root matches", b.Header.Height)

	if err := b.Trans.Verify(); err != nil {
		return err
	}
	if b.Header.TransRoot != b.Trans.RootHex() {
		return fmt.Errorf("block %d trans root %s does not match %s", b.Header.Height, b.Header.TransRoot, b.Trans.RootHex())
	}

	return nil
}

// =============================================================================

// Data represents what can be serialized to disk and over the network.
type Data struct {
	Hash   string        `json:"hash"`
	Header Header        `json:"header"`
	Trans  []tx.SignedTx `json:"trans"`
}

// NewData constructs the serializable form of a block.
func NewData(b Block) Data {
	return Data{
		Hash:   b.Hash(),
		Header: b.Header,
		Trans:  b.Trans.Values(),
	}
}

// ToBlock converts the serialized form back into a usable block.
func ToBlock(data Data) (Block, error) {
	tree, err := merkle.NewTree(data.Trans)
	if err != nil {
		return Block{}, err
	}

	b := Block{
		Header: data.Header,
		Trans:  tree,
	}

	return b, nil
}
