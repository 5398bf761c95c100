// Package tx maintains the transaction and command types shared by the
// block log and the pending pool.
package tx

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/permledger/permledger/foundation/ledger/id"
	"github.com/permledger/permledger/foundation/ledger/signature"
)

// CommandKind tags the operation a command performs.
type CommandKind string

// The set of commands the read side understands. The engine never executes
// commands, it only classifies them when filtering transaction streams.
const (
	CmdTransferAsset    CommandKind = "transfer_asset"
	CmdAddAssetQty      CommandKind = "add_asset_quantity"
	CmdSubtractAssetQty CommandKind = "subtract_asset_quantity"
	CmdSetAccountDetail CommandKind = "set_account_detail"
	CmdCreateAccount    CommandKind = "create_account"
	CmdCreateAsset      CommandKind = "create_asset"
	CmdAddSignatory     CommandKind = "add_signatory"
)

// Command is a single instruction inside a transaction. Which fields are
// meaningful depends on the kind.
type Command struct {
	Kind CommandKind `json:"kind"`

	SrcAccountID  id.AccountID `json:"src_account_id,omitempty"`
	DestAccountID id.AccountID `json:"dest_account_id,omitempty"`
	AssetID       id.AssetID   `json:"asset_id,omitempty"`
	Amount        string       `json:"amount,omitempty"`

	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`

	PublicKey string `json:"public_key,omitempty"`
}

// MovesAsset reports whether the command transfers, adds or subtracts
// the specified asset.
func (c Command) MovesAsset(assetID id.AssetID) bool {
	switch c.Kind {
	case CmdTransferAsset, CmdAddAssetQty, CmdSubtractAssetQty:
		return c.AssetID == assetID
	}

	return false
}

// Touches reports whether the command names the specified account as
// sender or recipient.
func (c Command) Touches(accountID id.AccountID) bool {
	return c.SrcAccountID == accountID || c.DestAccountID == accountID
}

// =============================================================================

// Tx is the unsigned transaction content. Its hash is the canonical
// transaction identity across the system.
type Tx struct {
	CreatorID     id.AccountID `json:"creator_id"`
	CreatedTimeMs uint64       `json:"created_time_ms"`
	Commands      []Command    `json:"commands"`
}

// Hash returns the unique hash for the transaction content.
func (t Tx) Hash() string {
	return signature.Hash(t)
}

// Sign uses the specified private key to sign the transaction.
func (t Tx) Sign(privateKey *ecdsa.PrivateKey) (SignedTx, error) {
	if !t.CreatorID.IsValid() {
		return SignedTx{}, fmt.Errorf("creator account is not properly formatted: %q", t.CreatorID)
	}

	v, r, s, err := signature.Sign(t, privateKey)
	if err != nil {
		return SignedTx{}, err
	}

	return SignedTx{
		Tx:         t,
		Signatures: []Signature{{V: v, R: r, S: s}},
	}, nil
}

// =============================================================================

// Signature is one ECDSA signature over the transaction content in the
// [R|S|V] format.
type Signature struct {
	V *big.Int `json:"v"`
	R *big.Int `json:"r"`
	S *big.Int `json:"s"`
}

// SignedTx is a transaction with the signatures collected from the
// creator's signatories. An account with quorum > 1 carries one
// signature per signatory.
type SignedTx struct {
	Tx
	Signatures []Signature `json:"signatures"`
}

// Resign appends a signature from an additional signatory.
func (tx SignedTx) Resign(privateKey *ecdsa.PrivateKey) (SignedTx, error) {
	v, r, s, err := signature.Sign(tx.Tx, privateKey)
	if err != nil {
		return SignedTx{}, err
	}

	tx.Signatures = append(tx.Signatures, Signature{V: v, R: r, S: s})
	return tx, nil
}

// Validate checks the creator id and that every signature conforms to our
// standards (recovery id and value ranges). It does not check which key
// produced a signature; SignerKeys recovers those keys.
func (tx SignedTx) Validate() error {
	if !tx.CreatorID.IsValid() {
		return fmt.Errorf("creator account is not properly formatted: %q", tx.CreatorID)
	}

	if len(tx.Signatures) == 0 {
		return fmt.Errorf("transaction %s carries no signatures", tx.Hash())
	}

	for _, sig := range tx.Signatures {
		if err := signature.VerifySignature(sig.V, sig.R, sig.S); err != nil {
			return err
		}
	}

	return nil
}

// SignerKeys extracts the hex public keys that produced the signatures.
func (tx SignedTx) SignerKeys() ([]string, error) {
	keys := make([]string, 0, len(tx.Signatures))
	for _, sig := range tx.Signatures {
		key, err := signature.PublicKey(tx.Tx, sig.V, sig.R, sig.S)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	return keys, nil
}

// MovesAssetFor reports whether any command in the transaction moves the
// specified asset while touching the specified account.
func (tx SignedTx) MovesAssetFor(accountID id.AccountID, assetID id.AssetID) bool {
	for _, cmd := range tx.Commands {
		if cmd.MovesAsset(assetID) && cmd.Touches(accountID) {
			return true
		}
	}

	return false
}

// MerkleHash implements the merkle Hashable interface for providing a
// raw hash of the transaction content.
func (tx SignedTx) MerkleHash() ([]byte, error) {
	return hexutil.Decode(tx.Hash())
}

// Equals implements the merkle Hashable interface for providing an
// equality check between two transactions. Two transactions with the
// same content hash are the same.
func (tx SignedTx) Equals(other SignedTx) bool {
	return tx.Hash() == other.Hash()
}

// String implements the fmt.Stringer interface for logging.
func (tx SignedTx) String() string {
	return fmt.Sprintf("%s:%d", tx.CreatorID, tx.CreatedTimeMs)
}
