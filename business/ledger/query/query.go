// Package query is the read-side core of the ledger. It authorizes a
// signed query against the caller's roles and grants, executes it against
// one world-state snapshot plus the block log and the pending pool, and
// returns a typed response or a structured error.
package query

import (
	"github.com/permledger/permledger/business/ledger/wsv"
	"github.com/permledger/permledger/foundation/ledger/id"
)

// Kind identifies a query variant. Dispatch and authorization are
// table-driven from this tag.
type Kind int

// The set of query kinds the engine executes.
const (
	KindGetAccount Kind = iota
	KindGetSignatories
	KindGetAccountTxs
	KindGetAccountAssetTxs
	KindGetTransactions
	KindGetAccountAssets
	KindGetAccountDetail
	KindGetRoles
	KindGetRolePermissions
	KindGetAssetInfo
	KindGetPendingTxs
	KindGetBlock
	KindGetPeers
)

var kindNames = map[Kind]string{
	KindGetAccount:         "get_account",
	KindGetSignatories:     "get_signatories",
	KindGetAccountTxs:      "get_account_transactions",
	KindGetAccountAssetTxs: "get_account_asset_transactions",
	KindGetTransactions:    "get_transactions",
	KindGetAccountAssets:   "get_account_assets",
	KindGetAccountDetail:   "get_account_detail",
	KindGetRoles:           "get_roles",
	KindGetRolePermissions: "get_role_permissions",
	KindGetAssetInfo:       "get_asset_info",
	KindGetPendingTxs:      "get_pending_transactions",
	KindGetBlock:           "get_block",
	KindGetPeers:           "get_peers",
}

// String implements the fmt.Stringer interface.
func (k Kind) String() string {
	if name, exists := kindNames[k]; exists {
		return name
	}
	return "unknown"
}

// =============================================================================

// Meta carries the fields every query shares. SignerKey is the hex public
// key claimed to have signed the query; it is only consulted when the
// engine was constructed with signatory validation enabled.
type Meta struct {
	CreatorID     id.AccountID `json:"creator_id"`
	CreatedTimeMs uint64       `json:"created_time_ms"`
	SignerKey     string       `json:"signer_key,omitempty"`
}

// Query is the behavior all query values exhibit. Concrete queries are
// plain data; the engine owns all evaluation.
type Query interface {
	Kind() Kind
	QueryMeta() Meta
}

// =============================================================================

// GetAccount requests an account and its roles.
type GetAccount struct {
	Meta     Meta         `json:"meta"`
	TargetID id.AccountID `json:"target_id"`
}

// Kind implements the Query interface.
func (q GetAccount) Kind() Kind { return KindGetAccount }

// QueryMeta implements the Query interface.
func (q GetAccount) QueryMeta() Meta { return q.Meta }

// GetSignatories requests the signatory public keys of an account.
type GetSignatories struct {
	Meta     Meta         `json:"meta"`
	TargetID id.AccountID `json:"target_id"`
}

// Kind implements the Query interface.
func (q GetSignatories) Kind() Kind { return KindGetSignatories }

// QueryMeta implements the Query interface.
func (q GetSignatories) QueryMeta() Meta { return q.Meta }

// GetAccountTxs requests one page of the committed transactions created
// by the target account.
type GetAccountTxs struct {
	Meta      Meta         `json:"meta"`
	TargetID  id.AccountID `json:"target_id"`
	PageSize  int          `json:"page_size"`
	FirstHash string       `json:"first_hash,omitempty"`
}

// Kind implements the Query interface.
func (q GetAccountTxs) Kind() Kind { return KindGetAccountTxs }

// QueryMeta implements the Query interface.
func (q GetAccountTxs) QueryMeta() Meta { return q.Meta }

// GetAccountAssetTxs requests one page of the committed transactions that
// move the asset while touching the target account.
type GetAccountAssetTxs struct {
	Meta      Meta         `json:"meta"`
	TargetID  id.AccountID `json:"target_id"`
	AssetID   id.AssetID   `json:"asset_id"`
	PageSize  int          `json:"page_size"`
	FirstHash string       `json:"first_hash,omitempty"`
}

// Kind implements the Query interface.
func (q GetAccountAssetTxs) Kind() Kind { return KindGetAccountAssetTxs }

// QueryMeta implements the Query interface.
func (q GetAccountAssetTxs) QueryMeta() Meta { return q.Meta }

// GetTransactions requests specific committed transactions by hash, in
// the order of the hashes.
type GetTransactions struct {
	Meta   Meta     `json:"meta"`
	Hashes []string `json:"hashes"`
}

// Kind implements the Query interface.
func (q GetTransactions) Kind() Kind { return KindGetTransactions }

// QueryMeta implements the Query interface.
func (q GetTransactions) QueryMeta() Meta { return q.Meta }

// GetAccountAssets requests one page of the balances held by the target
// account.
type GetAccountAssets struct {
	Meta       Meta         `json:"meta"`
	TargetID   id.AccountID `json:"target_id"`
	PageSize   int          `json:"page_size"`
	FirstAsset id.AssetID   `json:"first_asset,omitempty"`
}

// Kind implements the Query interface.
func (q GetAccountAssets) Kind() Kind { return KindGetAccountAssets }

// QueryMeta implements the Query interface.
func (q GetAccountAssets) QueryMeta() Meta { return q.Meta }

// GetAccountDetail requests one page of the target account's detail
// document, optionally restricted to one writer and/or one key.
type GetAccountDetail struct {
	Meta        Meta              `json:"meta"`
	TargetID    id.AccountID      `json:"target_id"`
	Writer      id.AccountID      `json:"writer,omitempty"`
	Key         string            `json:"key,omitempty"`
	PageSize    int               `json:"page_size"`
	FirstRecord *wsv.DetailRecord `json:"first_record,omitempty"`
}

// Kind implements the Query interface.
func (q GetAccountDetail) Kind() Kind { return KindGetAccountDetail }

// QueryMeta implements the Query interface.
func (q GetAccountDetail) QueryMeta() Meta { return q.Meta }

// GetRoles requests all role ids known to the ledger.
type GetRoles struct {
	Meta Meta `json:"meta"`
}

// Kind implements the Query interface.
func (q GetRoles) Kind() Kind { return KindGetRoles }

// QueryMeta implements the Query interface.
func (q GetRoles) QueryMeta() Meta { return q.Meta }

// GetRolePermissions requests the permission set of one role.
type GetRolePermissions struct {
	Meta   Meta      `json:"meta"`
	RoleID id.RoleID `json:"role_id"`
}

// Kind implements the Query interface.
func (q GetRolePermissions) Kind() Kind { return KindGetRolePermissions }

// QueryMeta implements the Query interface.
func (q GetRolePermissions) QueryMeta() Meta { return q.Meta }

// GetAssetInfo requests the registration record of one asset.
type GetAssetInfo struct {
	Meta    Meta       `json:"meta"`
	AssetID id.AssetID `json:"asset_id"`
}

// Kind implements the Query interface.
func (q GetAssetInfo) Kind() Kind { return KindGetAssetInfo }

// QueryMeta implements the Query interface.
func (q GetAssetInfo) QueryMeta() Meta { return q.Meta }

// GetPendingTxs requests the caller's not-yet-committed transactions.
// When Paged is false the legacy unpaged form is served: every pending
// transaction, no pagination metadata.
type GetPendingTxs struct {
	Meta      Meta   `json:"meta"`
	Paged     bool   `json:"paged"`
	PageSize  int    `json:"page_size,omitempty"`
	FirstHash string `json:"first_hash,omitempty"`
}

// Kind implements the Query interface.
func (q GetPendingTxs) Kind() Kind { return KindGetPendingTxs }

// QueryMeta implements the Query interface.
func (q GetPendingTxs) QueryMeta() Meta { return q.Meta }

// GetBlock requests one committed block by height.
type GetBlock struct {
	Meta   Meta   `json:"meta"`
	Height uint64 `json:"height"`
}

// Kind implements the Query interface.
func (q GetBlock) Kind() Kind { return KindGetBlock }

// QueryMeta implements the Query interface.
func (q GetBlock) QueryMeta() Meta { return q.Meta }

// GetPeers requests the registered network peers.
type GetPeers struct {
	Meta Meta `json:"meta"`
}

// Kind implements the Query interface.
func (q GetPeers) Kind() Kind { return KindGetPeers }

// QueryMeta implements the Query interface.
func (q GetPeers) QueryMeta() Meta { return q.Meta }

// =============================================================================

// BlocksQuery is the subscription authorization check for the block
// stream. The engine only validates it; stream delivery lives elsewhere.
type BlocksQuery struct {
	Meta Meta `json:"meta"`
}
