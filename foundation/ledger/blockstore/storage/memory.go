package storage

import (
	"errors"
	"sync"

	"github.com/permledger/permledger/foundation/ledger/block"
	"github.com/permledger/permledger/foundation/ledger/blockstore"
)

// Memory represents the serialization implementation for keeping the block
// log in memory. Used by tests and by nodes that follow the chain without
// durability requirements. This implements the blockstore.Serializer
// interface.
type Memory struct {
	mu     sync.RWMutex
	blocks []block.Data
}

// NewMemory constructs a Memory value for use.
func NewMemory() *Memory {
	return &Memory{}
}

// Close in this implementation has nothing to do.
func (m *Memory) Close() error {
	return nil
}

// Write appends the specified block data to the in-memory log.
func (m *Memory) Write(blockData block.Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if blockData.Header.Height != uint64(len(m.blocks))+1 {
		return errors.New("block height out of sequence")
	}

	m.blocks = append(m.blocks, blockData)
	return nil
}

// GetBlock returns the contents of the specified block by height.
func (m *Memory) GetBlock(height uint64) (block.Data, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if height == 0 || height > uint64(len(m.blocks)) {
		return block.Data{}, errors.New("block does not exist")
	}

	return m.blocks[height-1], nil
}

// ForEach returns an iterator to walk through all the blocks starting
// with block height 1.
func (m *Memory) ForEach() blockstore.Iterator {
	return &memoryIterator{storage: m}
}

// Reset will clear out the in-memory block log.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = nil
	return nil
}

// =============================================================================

// memoryIterator represents the iteration implementation for walking
// through the in-memory block log. This implements the blockstore
// Iterator interface.
type memoryIterator struct {
	storage *Memory
	current uint64
	eoc     bool
}

// Next retrieves the next block from memory.
func (mi *memoryIterator) Next() (block.Data, error) {
	if mi.eoc {
		return block.Data{}, errors.New("end of chain")
	}

	mi.storage.mu.RLock()
	total := uint64(len(mi.storage.blocks))
	mi.storage.mu.RUnlock()

	mi.current++
	if mi.current > total {
		mi.eoc = true
		return block.Data{}, nil
	}

	return mi.storage.GetBlock(mi.current)
}

// Done returns the end of chain value.
func (mi *memoryIterator) Done() bool {
	return mi.eoc
}
