// Package wsv defines the read-only world-state contracts the query engine
// executes against, together with the entity types the world state holds.
package wsv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/permledger/permledger/foundation/ledger/id"
	"github.com/permledger/permledger/foundation/ledger/permission"
)

// ErrNotFound is returned when the requested entity does not exist in the
// snapshot.
var ErrNotFound = errors.New("not found")

// ErrInvalidPagination is returned when a pagination marker does not match
// any row for the queried entity.
var ErrInvalidPagination = errors.New("invalid pagination marker")

// =============================================================================

// Account represents the information stored for an individual account.
type Account struct {
	AccountID id.AccountID
	DomainID  id.DomainID
	Quorum    uint32
	JSONData  string
}

// Domain represents a registered domain.
type Domain struct {
	DomainID    id.DomainID
	DefaultRole id.RoleID
}

// Asset represents a registered asset. Precision fixes the decimal
// placement of balances.
type Asset struct {
	AssetID   id.AssetID
	DomainID  id.DomainID
	Precision uint8
}

// AccountAsset represents the balance an account holds in one asset.
// Balance is kept in integer minor units; the canonical string form is
// produced with the asset precision.
type AccountAsset struct {
	AccountID id.AccountID
	AssetID   id.AssetID
	Balance   uint64
	Precision uint8
}

// BalanceString renders the balance with exactly Precision fractional
// digits.
func (aa AccountAsset) BalanceString() string {
	return FormatBalance(aa.Balance, aa.Precision)
}

// Peer represents a node in the network.
type Peer struct {
	Address        string
	PublicKey      string
	TLSCertificate string
}

// DetailRecord identifies one account-detail row by the account that wrote
// it and the key it wrote.
type DetailRecord struct {
	Writer id.AccountID
	Key    string
}

// =============================================================================

// AccountAssetsPage is one chunk of an account's balances. NextAssetID is
// empty when the listing is exhausted.
type AccountAssetsPage struct {
	Assets      []AccountAsset
	NextAssetID id.AssetID
	Total       int
}

// AccountDetailPage is one chunk of an account's detail document rendered
// as a JSON subtree grouped by writer.
type AccountDetailPage struct {
	Detail     string
	NextRecord *DetailRecord
	Total      int
}

// =============================================================================

// Reader represents a consistent snapshot of the world state. One Reader is
// opened per query execution and must be released with Close on every exit
// path.
type Reader interface {
	Height() uint64
	Account(accountID id.AccountID) (Account, error)
	AccountRoles(accountID id.AccountID) ([]id.RoleID, error)
	RolePermissions(roleID id.RoleID) (permission.Set, error)
	Roles() ([]id.RoleID, error)
	Signatories(accountID id.AccountID) ([]string, error)
	Asset(assetID id.AssetID) (Asset, error)
	AccountAssets(accountID id.AccountID, pageSize int, firstAsset id.AssetID) (AccountAssetsPage, error)
	AccountDetail(accountID id.AccountID, writer id.AccountID, key string, pageSize int, firstRecord *DetailRecord) (AccountDetailPage, error)
	Peers() ([]Peer, error)
	HasGrantable(grantor id.AccountID, grantee id.AccountID, kind permission.Grantable) (bool, error)
	Close() error
}

// Store represents the behavior required of a world-state backend: handing
// out snapshot readers consistent with the most recently committed block.
type Store interface {
	View(ctx context.Context) (Reader, error)
}

// =============================================================================

// FormatBalance renders integer minor units with exactly precision
// fractional digits.
func FormatBalance(units uint64, precision uint8) string {
	if precision == 0 {
		return fmt.Sprintf("%d", units)
	}

	p := uint64(1)
	for i := uint8(0); i < precision; i++ {
		p *= 10
	}

	return fmt.Sprintf("%d.%0*d", units/p, precision, units%p)
}

// ParseBalance converts the canonical string form back into integer minor
// units for the specified precision.
func ParseBalance(s string, precision uint8) (uint64, error) {
	whole, frac, found := strings.Cut(s, ".")
	if !found {
		frac = ""
	}

	if len(frac) > int(precision) {
		return 0, fmt.Errorf("amount %q has more than %d fractional digits", s, precision)
	}
	for len(frac) < int(precision) {
		frac += "0"
	}

	var units uint64
	for _, c := range whole + frac {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("amount %q is not a decimal number", s)
		}
		units = units*10 + uint64(c-'0')
	}

	return units, nil
}
