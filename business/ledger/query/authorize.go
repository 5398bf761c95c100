package query

import (
	"errors"

	"github.com/permledger/permledger/business/ledger/wsv"
	"github.com/permledger/permledger/foundation/ledger/id"
	"github.com/permledger/permledger/foundation/ledger/permission"
)

// permRecord encodes the permission requirement of one query kind. Adding
// a query kind is adding a table row, not branching code.
type permRecord struct {
	scoped bool
	self   permission.Permission
	domain permission.Permission
	all    permission.Permission

	hasGrantable bool
	grantable    permission.Grantable

	hasPlain bool
	plain    permission.Permission

	// open marks a kind every caller may issue against their own data.
	open bool
}

// permTable maps every query kind to its permission requirement.
var permTable = map[Kind]permRecord{
	KindGetAccount: {
		scoped: true,
		self:   permission.GetMyAccount, domain: permission.GetDomainAccounts, all: permission.GetAllAccounts,
	},
	KindGetSignatories: {
		scoped: true,
		self:   permission.GetMySignatories, domain: permission.GetDomainSignatories, all: permission.GetAllSignatories,
		hasGrantable: true, grantable: permission.GrantMySignatories,
	},
	KindGetAccountTxs: {
		scoped: true,
		self:   permission.GetMyAccountTxs, domain: permission.GetDomainAccountTxs, all: permission.GetAllAccountTxs,
		hasGrantable: true, grantable: permission.GrantMyAccountTxs,
	},
	KindGetAccountAssetTxs: {
		scoped: true,
		self:   permission.GetMyAccountAssetTxs, domain: permission.GetDomainAccountAssetTxs, all: permission.GetAllAccountAssetTxs,
		hasGrantable: true, grantable: permission.GrantMyAccountAssetTxs,
	},
	KindGetAccountAssets: {
		scoped: true,
		self:   permission.GetMyAccountAssets, domain: permission.GetDomainAccountAssets, all: permission.GetAllAccountAssets,
		hasGrantable: true, grantable: permission.GrantMyAccountAssets,
	},
	KindGetAccountDetail: {
		scoped: true,
		self:   permission.GetMyAccountDetail, domain: permission.GetDomainAccountDetail, all: permission.GetAllAccountDetail,
		hasGrantable: true, grantable: permission.GrantMyAccountDetail,
	},
	KindGetTransactions: {
		// Special: GetMyTxs admits the caller, but the handler then
		// rejects any hash that resolves to a foreign transaction
		// unless GetAllTxs is also held.
		hasPlain: true, plain: permission.GetMyTxs,
	},
	KindGetRoles:           {hasPlain: true, plain: permission.GetRoles},
	KindGetRolePermissions: {hasPlain: true, plain: permission.GetRoles},
	KindGetAssetInfo:       {hasPlain: true, plain: permission.ReadAssets},
	KindGetPeers:           {hasPlain: true, plain: permission.GetPeers},
	KindGetBlock:           {hasPlain: true, plain: permission.GetBlocks},
	KindGetPendingTxs:      {open: true},
}

// =============================================================================

// creatorPermissions unions the permission sets of every role the creator
// holds. A creator unknown to the world state holds the empty set.
func creatorPermissions(reader wsv.Reader, creator id.AccountID) (permission.Set, error) {
	roles, err := reader.AccountRoles(creator)
	if err != nil {
		if errors.Is(err, wsv.ErrNotFound) {
			return permission.Set{}, nil
		}
		return permission.Set{}, err
	}

	var set permission.Set
	for _, roleID := range roles {
		perms, err := reader.RolePermissions(roleID)
		if err != nil {
			if errors.Is(err, wsv.ErrNotFound) {
				continue
			}
			return permission.Set{}, err
		}
		set = set.Union(perms)
	}

	return set, nil
}

// authorize decides whether the creator may execute the query against the
// target. The decision precedes every existence check: a caller without
// permission learns nothing about the target.
func authorize(reader wsv.Reader, creator id.AccountID, kind Kind, target id.AccountID, perms permission.Set) (bool, error) {
	if perms.HasRoot() {
		return true, nil
	}

	rec, exists := permTable[kind]
	if !exists {
		return false, nil
	}

	if rec.open {
		return true, nil
	}

	if rec.scoped {
		if target == creator && perms.Has(rec.self) {
			return true, nil
		}
		if target.Domain() == creator.Domain() && perms.Has(rec.domain) {
			return true, nil
		}
		if perms.Has(rec.all) {
			return true, nil
		}
		if rec.hasGrantable {
			granted, err := reader.HasGrantable(target, creator, rec.grantable)
			if err != nil {
				return false, err
			}
			if granted {
				return true, nil
			}
		}
		return false, nil
	}

	if rec.hasPlain {
		if perms.Has(rec.plain) {
			return true, nil
		}
		if kind == KindGetTransactions && perms.Has(permission.GetAllTxs) {
			return true, nil
		}
	}

	return false, nil
}
