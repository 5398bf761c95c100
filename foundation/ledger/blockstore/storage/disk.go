// Package storage implements the serializers the block store can use to
// keep the block log.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"

	"github.com/permledger/permledger/foundation/ledger/block"
	"github.com/permledger/permledger/foundation/ledger/blockstore"
)

// Disk represents the serialization implementation for reading and storing
// blocks in their own separate files on disk. This implements the
// blockstore.Serializer interface.
type Disk struct {
	dbPath string
}

// NewDisk constructs a Disk value for use.
func NewDisk(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each new block and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Write takes the specified block data and stores it on disk in a
// file labeled with the block height.
func (d *Disk) Write(blockData block.Data) error {

	// Marshal the block for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(blockData, "", "  ")
	if err != nil {
		return err
	}

	// Create a new file for this block and name it based on the block height.
	f, err := os.OpenFile(d.getPath(blockData.Header.Height), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	// Write the new block to disk.
	if _, err := f.Write(data); err != nil {
		return err
	}

	return nil
}

// GetBlock searches the block log on disk to locate and return the
// contents of the specified block by height.
func (d *Disk) GetBlock(height uint64) (block.Data, error) {

	// Open the block file for the specified height.
	f, err := os.OpenFile(d.getPath(height), os.O_RDONLY, 0600)
	if err != nil {
		return block.Data{}, err
	}
	defer f.Close()

	// Decode the contents of the block.
	var blockData block.Data
	if err := json.NewDecoder(f).Decode(&blockData); err != nil {
		return block.Data{}, err
	}

	return blockData, nil
}

// ForEach returns an iterator to walk through all the blocks starting
// with block height 1.
func (d *Disk) ForEach() blockstore.Iterator {
	return &diskIterator{storage: d}
}

// Reset will clear out the block log on disk.
func (d *Disk) Reset() error {
	if err := os.RemoveAll(d.dbPath); err != nil {
		return err
	}

	return os.MkdirAll(d.dbPath, 0755)
}

// getPath forms the path to the specified block.
func (d *Disk) getPath(height uint64) string {
	name := strconv.FormatUint(height, 10)
	return path.Join(d.dbPath, fmt.Sprintf("%s.json", name))
}

// =============================================================================

// diskIterator represents the iteration implementation for walking
// through and reading blocks on disk. This implements the blockstore
// Iterator interface.
type diskIterator struct {
	storage *Disk  // Access to the disk storage API.
	current uint64 // Current block height being iterated over.
	eoc     bool   // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from disk.
func (bi *diskIterator) Next() (block.Data, error) {
	if bi.eoc {
		return block.Data{}, errors.New("end of chain")
	}

	bi.current++
	blockData, err := bi.storage.GetBlock(bi.current)
	if errors.Is(err, fs.ErrNotExist) {
		bi.eoc = true
		return block.Data{}, nil
	}

	return blockData, err
}

// Done returns the end of chain value.
func (bi *diskIterator) Done() bool {
	return bi.eoc
}
