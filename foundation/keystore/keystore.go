// Package keystore maintains access to the ecdsa private keys stored on
// disk for the tooling and the node.
package keystore

import (
	"crypto/ecdsa"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/permledger/permledger/foundation/ledger/signature"
)

// KeyStore manages the set of named private keys found in a folder. The
// file name without the .ecdsa extension is the key name.
type KeyStore struct {
	folder string
	keys   map[string]*ecdsa.PrivateKey
}

// New constructs a key store by loading every .ecdsa file in the folder.
func New(folder string) (*KeyStore, error) {
	ks := KeyStore{
		folder: folder,
		keys:   make(map[string]*ecdsa.PrivateKey),
	}

	fn := func(fileName string, dirEntry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if dirEntry.IsDir() || path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("load private key %q: %w", fileName, err)
		}

		name := strings.TrimSuffix(path.Base(fileName), ".ecdsa")
		ks.keys[name] = privateKey

		return nil
	}

	if err := filepath.WalkDir(folder, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ks, nil
}

// Key returns the private key stored under the specified name.
func (ks *KeyStore) Key(name string) (*ecdsa.PrivateKey, error) {
	privateKey, exists := ks.keys[name]
	if !exists {
		return nil, fmt.Errorf("key %q not found in %q", name, ks.folder)
	}

	return privateKey, nil
}

// PublicKeys returns the hex form of every public key by name.
func (ks *KeyStore) PublicKeys() map[string]string {
	out := make(map[string]string, len(ks.keys))
	for name, privateKey := range ks.keys {
		out[name] = signature.PublicKeyString(privateKey.PublicKey)
	}

	return out
}
