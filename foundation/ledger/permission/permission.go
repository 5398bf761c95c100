// Package permission maintains the role permission bits and the fixed-width
// set used for authorization decisions.
package permission

import (
	"fmt"
	"strings"
)

// Permission identifies a single role permission bit.
type Permission uint8

// The set of role permissions understood by the engine. The reader triples
// share a My/Domain/All prefix convention so authorization can reason about
// the three concentric scopes uniformly.
const (
	GetMyAccount Permission = iota
	GetDomainAccounts
	GetAllAccounts

	GetMyAccountTxs
	GetDomainAccountTxs
	GetAllAccountTxs

	GetMyAccountAssetTxs
	GetDomainAccountAssetTxs
	GetAllAccountAssetTxs

	GetMySignatories
	GetDomainSignatories
	GetAllSignatories

	GetMyAccountDetail
	GetDomainAccountDetail
	GetAllAccountDetail

	GetMyAccountAssets
	GetDomainAccountAssets
	GetAllAccountAssets

	GetMyTxs
	GetAllTxs

	GetBlocks
	GetRoles
	ReadAssets
	GetPeers

	Root

	numPermissions
)

var names = map[Permission]string{
	GetMyAccount:             "can_get_my_account",
	GetDomainAccounts:        "can_get_domain_accounts",
	GetAllAccounts:           "can_get_all_accounts",
	GetMyAccountTxs:          "can_get_my_acc_txs",
	GetDomainAccountTxs:      "can_get_domain_acc_txs",
	GetAllAccountTxs:         "can_get_all_acc_txs",
	GetMyAccountAssetTxs:     "can_get_my_acc_ast_txs",
	GetDomainAccountAssetTxs: "can_get_domain_acc_ast_txs",
	GetAllAccountAssetTxs:    "can_get_all_acc_ast_txs",
	GetMySignatories:         "can_get_my_signatories",
	GetDomainSignatories:     "can_get_domain_signatories",
	GetAllSignatories:        "can_get_all_signatories",
	GetMyAccountDetail:       "can_get_my_acc_detail",
	GetDomainAccountDetail:   "can_get_domain_acc_detail",
	GetAllAccountDetail:      "can_get_all_acc_detail",
	GetMyAccountAssets:       "can_get_my_acc_ast",
	GetDomainAccountAssets:   "can_get_domain_acc_ast",
	GetAllAccountAssets:      "can_get_all_acc_ast",
	GetMyTxs:                 "can_get_my_txs",
	GetAllTxs:                "can_get_all_txs",
	GetBlocks:                "can_get_blocks",
	GetRoles:                 "can_get_roles",
	ReadAssets:               "can_read_assets",
	GetPeers:                 "can_get_peers",
	Root:                     "root",
}

// String implements the fmt.Stringer interface.
func (p Permission) String() string {
	if name, exists := names[p]; exists {
		return name
	}
	return fmt.Sprintf("permission(%d)", uint8(p))
}

// Parse converts a permission name back into its bit. This is how the
// genesis document and the relational store spell permissions.
func Parse(name string) (Permission, error) {
	for p, n := range names {
		if n == name {
			return p, nil
		}
	}

	return 0, fmt.Errorf("unknown permission: %q", name)
}

// =============================================================================

// Grantable identifies a per-pair delegated permission kind. A grant
// extends the grantee's reach into the grantor's account for one action.
type Grantable uint8

// The set of grantable permission kinds consumed by the read side.
const (
	GrantMyAccountAssets Grantable = iota
	GrantMySignatories
	GrantMyAccountDetail
	GrantMyAccountTxs
	GrantMyAccountAssetTxs

	numGrantable
)

var grantableNames = map[Grantable]string{
	GrantMyAccountAssets:   "can_get_my_acc_ast",
	GrantMySignatories:     "can_get_my_signatories",
	GrantMyAccountDetail:   "can_get_my_acc_detail",
	GrantMyAccountTxs:      "can_get_my_acc_txs",
	GrantMyAccountAssetTxs: "can_get_my_acc_ast_txs",
}

// String implements the fmt.Stringer interface.
func (g Grantable) String() string {
	if name, exists := grantableNames[g]; exists {
		return name
	}
	return fmt.Sprintf("grantable(%d)", uint8(g))
}

// ParseGrantable converts a grantable permission name back into its kind.
func ParseGrantable(name string) (Grantable, error) {
	for g, n := range grantableNames {
		if n == name {
			return g, nil
		}
	}

	return 0, fmt.Errorf("unknown grantable permission: %q", name)
}

// =============================================================================

// Set is a fixed-width bitmap of role permissions. The zero value is the
// empty set and is ready for use.
type Set struct {
	bits uint64
}

// NewSet constructs a set holding the specified permissions.
func NewSet(perms ...Permission) Set {
	var s Set
	for _, p := range perms {
		s = s.With(p)
	}

	return s
}

// With returns a copy of the set with the specified permission added.
func (s Set) With(p Permission) Set {
	if p >= numPermissions {
		return s
	}

	s.bits |= 1 << uint(p)
	return s
}

// Union returns the union of the two sets.
func (s Set) Union(other Set) Set {
	s.bits |= other.bits
	return s
}

// Has returns true if the set contains the specified permission.
func (s Set) Has(p Permission) bool {
	if p >= numPermissions {
		return false
	}

	return s.bits&(1<<uint(p)) != 0
}

// HasRoot returns true if the set contains the root permission. Root
// satisfies every permission check unconditionally.
func (s Set) HasRoot() bool {
	return s.Has(Root)
}

// IsEmpty returns true if no permission bit is set.
func (s Set) IsEmpty() bool {
	return s.bits == 0
}

// List returns the permissions in the set in bit order.
func (s Set) List() []Permission {
	var out []Permission
	for p := Permission(0); p < numPermissions; p++ {
		if s.Has(p) {
			out = append(out, p)
		}
	}

	return out
}

// String implements the fmt.Stringer interface for logging.
func (s Set) String() string {
	perms := s.List()
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = p.String()
	}

	return strings.Join(names, ",")
}
