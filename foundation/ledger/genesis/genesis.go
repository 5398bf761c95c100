// Package genesis maintains access to the genesis file that seeds the
// world state.
package genesis

import (
	"encoding/json"
	"os"
	"time"
)

// Domain declares a domain and the role every account created in it
// starts with.
type Domain struct {
	DomainID    string `json:"domain_id"`
	DefaultRole string `json:"default_role"`
}

// Role declares a role and the permission names it unions into its
// holders.
type Role struct {
	RoleID      string   `json:"role_id"`
	Permissions []string `json:"permissions"`
}

// Account declares an account, its roles, its signatory public keys and
// its key/value details grouped by writer.
type Account struct {
	AccountID   string                       `json:"account_id"`
	Quorum      uint32                       `json:"quorum"`
	Roles       []string                     `json:"roles"`
	Signatories []string                     `json:"signatories"`
	Details     map[string]map[string]string `json:"details,omitempty"`
}

// Asset declares an asset and the decimal placement of its balances.
type Asset struct {
	AssetID   string `json:"asset_id"`
	Precision uint8  `json:"precision"`
}

// Grant declares a per-pair grantable permission from grantor to grantee.
type Grant struct {
	Grantor    string `json:"grantor"`
	Grantee    string `json:"grantee"`
	Permission string `json:"permission"`
}

// Peer declares a network peer.
type Peer struct {
	Address        string `json:"address"`
	PublicKey      string `json:"public_key"`
	TLSCertificate string `json:"tls_certificate,omitempty"`
}

// Genesis represents the genesis file.
type Genesis struct {
	Date     time.Time                    `json:"date"`
	ChainID  string                       `json:"chain_id"` // Unique id for this running ledger.
	Domains  []Domain                     `json:"domains"`
	Roles    []Role                       `json:"roles"`
	Accounts []Account                    `json:"accounts"`
	Assets   []Asset                      `json:"assets"`
	Balances map[string]map[string]string `json:"balances"` // account id -> asset id -> amount.
	Grants   []Grant                      `json:"grants,omitempty"`
	Peers    []Peer                       `json:"peers"`
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	err = json.Unmarshal(content, &genesis)
	if err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}
