package query

import (
	"github.com/permledger/permledger/business/ledger/wsv"
	"github.com/permledger/permledger/foundation/ledger/block"
	"github.com/permledger/permledger/foundation/ledger/id"
	"github.com/permledger/permledger/foundation/ledger/tx"
)

// The stable stateful error codes. These values are part of the protocol
// surface and must never be renumbered.
const (
	CodeNoStatefulError   uint32 = 0
	CodeNoPermissions     uint32 = 2
	CodeInvalidHeight     uint32 = 3
	CodeInvalidPagination uint32 = 4
	CodeInvalidAccountID  uint32 = 5
	CodeInvalidAssetID    uint32 = 6
)

// ErrorKind tags the variant of an error response. The specific No* kinds
// always carry code zero; StatefulFailed carries one of the stable codes.
type ErrorKind string

// The set of error response kinds.
const (
	KindStatefulFailed  ErrorKind = "stateful_failed"
	KindNoAccount       ErrorKind = "no_account"
	KindNoSignatories   ErrorKind = "no_signatories"
	KindNoAccountAssets ErrorKind = "no_account_assets"
	KindNoAccountDetail ErrorKind = "no_account_detail"
	KindNoRoles         ErrorKind = "no_roles"
	KindNoAsset         ErrorKind = "no_asset"
	KindNotSupported    ErrorKind = "not_supported"
)

// =============================================================================

// Response is the behavior all query responses exhibit. Every response
// carries the hash of the query that produced it.
type Response interface {
	Hash() string
}

// AccountResponse returns an account and the roles it holds.
type AccountResponse struct {
	QueryHash string      `json:"query_hash"`
	Account   wsv.Account `json:"account"`
	Roles     []id.RoleID `json:"roles"`
}

// Hash implements the Response interface.
func (r AccountResponse) Hash() string { return r.QueryHash }

// SignatoriesResponse returns the signatory public keys of an account.
type SignatoriesResponse struct {
	QueryHash string   `json:"query_hash"`
	Keys      []string `json:"keys"`
}

// Hash implements the Response interface.
func (r SignatoriesResponse) Hash() string { return r.QueryHash }

// AccountAssetsResponse returns one page of an account's balances.
type AccountAssetsResponse struct {
	QueryHash   string             `json:"query_hash"`
	Assets      []wsv.AccountAsset `json:"assets"`
	NextAssetID id.AssetID         `json:"next_asset_id,omitempty"`
	Total       int                `json:"total"`
}

// Hash implements the Response interface.
func (r AccountAssetsResponse) Hash() string { return r.QueryHash }

// AccountDetailResponse returns one page of an account's detail document.
type AccountDetailResponse struct {
	QueryHash  string            `json:"query_hash"`
	Detail     string            `json:"detail"`
	NextRecord *wsv.DetailRecord `json:"next_record,omitempty"`
	Total      int               `json:"total"`
}

// Hash implements the Response interface.
func (r AccountDetailResponse) Hash() string { return r.QueryHash }

// AssetResponse returns the registration record of an asset.
type AssetResponse struct {
	QueryHash string    `json:"query_hash"`
	Asset     wsv.Asset `json:"asset"`
}

// Hash implements the Response interface.
func (r AssetResponse) Hash() string { return r.QueryHash }

// RolesResponse returns all role ids in their insertion order.
type RolesResponse struct {
	QueryHash string      `json:"query_hash"`
	Roles     []id.RoleID `json:"roles"`
}

// Hash implements the Response interface.
func (r RolesResponse) Hash() string { return r.QueryHash }

// RolePermissionsResponse returns the permission names held by a role.
type RolePermissionsResponse struct {
	QueryHash   string   `json:"query_hash"`
	Permissions []string `json:"permissions"`
}

// Hash implements the Response interface.
func (r RolePermissionsResponse) Hash() string { return r.QueryHash }

// PeersResponse returns the registered network peers.
type PeersResponse struct {
	QueryHash string     `json:"query_hash"`
	Peers     []wsv.Peer `json:"peers"`
}

// Hash implements the Response interface.
func (r PeersResponse) Hash() string { return r.QueryHash }

// BlockResponse returns one committed block.
type BlockResponse struct {
	QueryHash string     `json:"query_hash"`
	Block     block.Data `json:"block"`
}

// Hash implements the Response interface.
func (r BlockResponse) Hash() string { return r.QueryHash }

// TransactionsPageResponse returns one page of a hash-ordered transaction
// stream. NextTxHash is the hash of the first transaction after the page
// and is empty when the stream is exhausted.
type TransactionsPageResponse struct {
	QueryHash  string        `json:"query_hash"`
	Txs        []tx.SignedTx `json:"txs"`
	NextTxHash string        `json:"next_tx_hash,omitempty"`
	Total      int           `json:"total"`
}

// Hash implements the Response interface.
func (r TransactionsPageResponse) Hash() string { return r.QueryHash }

// TransactionsResponse returns transactions resolved by hash, in the
// order they were requested.
type TransactionsResponse struct {
	QueryHash string        `json:"query_hash"`
	Txs       []tx.SignedTx `json:"txs"`
}

// Hash implements the Response interface.
func (r TransactionsResponse) Hash() string { return r.QueryHash }

// PendingTxsResponse returns the caller's pending transactions. The
// legacy unpaged form leaves NextTxHash empty and sets Total to the
// number of returned transactions.
type PendingTxsResponse struct {
	QueryHash  string        `json:"query_hash"`
	Txs        []tx.SignedTx `json:"txs"`
	NextTxHash string        `json:"next_tx_hash,omitempty"`
	Total      int           `json:"total"`
}

// Hash implements the Response interface.
func (r PendingTxsResponse) Hash() string { return r.QueryHash }

// =============================================================================

// ErrorResponse is the single error value every failed query produces.
// Kind selects the variant; Code is one of the stable stateful codes and
// is zero for the specific No* kinds.
type ErrorResponse struct {
	QueryHash string    `json:"query_hash"`
	Kind      ErrorKind `json:"kind"`
	Code      uint32    `json:"code"`
	Message   string    `json:"message,omitempty"`
}

// Hash implements the Response interface.
func (r ErrorResponse) Hash() string { return r.QueryHash }

// =============================================================================
// Response factory. Handlers never construct error values directly so the
// code/kind pairing stays in one place.

func errNoPermissions(queryHash string) ErrorResponse {
	return ErrorResponse{QueryHash: queryHash, Kind: KindStatefulFailed, Code: CodeNoPermissions, Message: "caller does not hold a permitting role or grant"}
}

func errInvalidHeight(queryHash string) ErrorResponse {
	return ErrorResponse{QueryHash: queryHash, Kind: KindStatefulFailed, Code: CodeInvalidHeight, Message: "height is outside the committed chain"}
}

func errInvalidPagination(queryHash string) ErrorResponse {
	return ErrorResponse{QueryHash: queryHash, Kind: KindStatefulFailed, Code: CodeInvalidPagination, Message: "pagination marker does not match any row"}
}

func errInvalidAccountID(queryHash string) ErrorResponse {
	return ErrorResponse{QueryHash: queryHash, Kind: KindStatefulFailed, Code: CodeInvalidAccountID, Message: "account id references no account"}
}

func errInvalidAssetID(queryHash string) ErrorResponse {
	return ErrorResponse{QueryHash: queryHash, Kind: KindStatefulFailed, Code: CodeInvalidAssetID, Message: "asset id references no asset"}
}

func errBadInput(queryHash string, message string) ErrorResponse {
	return ErrorResponse{QueryHash: queryHash, Kind: KindStatefulFailed, Code: CodeInvalidPagination, Message: message}
}

func errNoAccount(queryHash string) ErrorResponse {
	return ErrorResponse{QueryHash: queryHash, Kind: KindNoAccount, Code: CodeNoStatefulError}
}

func errNoSignatories(queryHash string) ErrorResponse {
	return ErrorResponse{QueryHash: queryHash, Kind: KindNoSignatories, Code: CodeNoStatefulError}
}

func errNoAccountDetail(queryHash string) ErrorResponse {
	return ErrorResponse{QueryHash: queryHash, Kind: KindNoAccountDetail, Code: CodeNoStatefulError}
}

func errNoRoles(queryHash string) ErrorResponse {
	return ErrorResponse{QueryHash: queryHash, Kind: KindNoRoles, Code: CodeNoStatefulError}
}

func errNoAsset(queryHash string) ErrorResponse {
	return ErrorResponse{QueryHash: queryHash, Kind: KindNoAsset, Code: CodeNoStatefulError}
}

func errNotSupported(queryHash string) ErrorResponse {
	return ErrorResponse{QueryHash: queryHash, Kind: KindNotSupported, Code: CodeNoStatefulError, Message: "query kind disabled by policy"}
}
