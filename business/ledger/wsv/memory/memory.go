// Package memory implements the world-state contracts with mutex-guarded
// maps seeded from the genesis document. A View hands out an immutable
// deep copy, which makes every reader a consistent snapshot.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/permledger/permledger/business/ledger/wsv"
	"github.com/permledger/permledger/foundation/ledger/genesis"
	"github.com/permledger/permledger/foundation/ledger/id"
	"github.com/permledger/permledger/foundation/ledger/permission"
)

// accountRecord keeps everything the world state tracks per account.
type accountRecord struct {
	account     wsv.Account
	roles       []id.RoleID
	signatories []string
	details     map[id.AccountID]map[string]string
}

// grantKey identifies one grantable-permission edge.
type grantKey struct {
	grantor id.AccountID
	grantee id.AccountID
	kind    permission.Grantable
}

// Store manages the in-memory world state.
type Store struct {
	mu sync.RWMutex

	height    uint64
	domains   map[id.DomainID]wsv.Domain
	roles     map[id.RoleID]permission.Set
	roleOrder []id.RoleID
	accounts  map[id.AccountID]*accountRecord
	assets    map[id.AssetID]wsv.Asset
	balances  map[id.AccountID]map[id.AssetID]uint64
	grants    map[grantKey]struct{}
	peers     []wsv.Peer
}

// New constructs a store seeded from the genesis document.
func New(gen genesis.Genesis) (*Store, error) {
	str := Store{
		domains:  make(map[id.DomainID]wsv.Domain),
		roles:    make(map[id.RoleID]permission.Set),
		accounts: make(map[id.AccountID]*accountRecord),
		assets:   make(map[id.AssetID]wsv.Asset),
		balances: make(map[id.AccountID]map[id.AssetID]uint64),
		grants:   make(map[grantKey]struct{}),
	}

	for _, r := range gen.Roles {
		roleID, err := id.ToRoleID(r.RoleID)
		if err != nil {
			return nil, err
		}

		var set permission.Set
		for _, name := range r.Permissions {
			p, err := permission.Parse(name)
			if err != nil {
				return nil, err
			}
			set = set.With(p)
		}

		if err := str.AddRole(roleID, set); err != nil {
			return nil, err
		}
	}

	for _, d := range gen.Domains {
		domainID, err := id.ToDomainID(d.DomainID)
		if err != nil {
			return nil, err
		}

		if err := str.AddDomain(wsv.Domain{DomainID: domainID, DefaultRole: id.RoleID(d.DefaultRole)}); err != nil {
			return nil, err
		}
	}

	for _, a := range gen.Accounts {
		accountID, err := id.ToAccountID(a.AccountID)
		if err != nil {
			return nil, err
		}

		quorum := a.Quorum
		if quorum == 0 {
			quorum = 1
		}

		roles := make([]id.RoleID, len(a.Roles))
		for i, r := range a.Roles {
			roles[i] = id.RoleID(r)
		}

		if err := str.AddAccount(accountID, quorum, roles, a.Signatories); err != nil {
			return nil, err
		}

		for writer, kvs := range a.Details {
			for key, value := range kvs {
				str.SetAccountDetail(accountID, id.AccountID(writer), key, value)
			}
		}
	}

	for _, a := range gen.Assets {
		assetID, err := id.ToAssetID(a.AssetID)
		if err != nil {
			return nil, err
		}

		if err := str.AddAsset(wsv.Asset{AssetID: assetID, DomainID: id.DomainID(assetID.Domain()), Precision: a.Precision}); err != nil {
			return nil, err
		}
	}

	for accountStr, assets := range gen.Balances {
		accountID, err := id.ToAccountID(accountStr)
		if err != nil {
			return nil, err
		}

		for assetStr, amount := range assets {
			assetID, err := id.ToAssetID(assetStr)
			if err != nil {
				return nil, err
			}

			asset, exists := str.assets[assetID]
			if !exists {
				return nil, fmt.Errorf("balance references unknown asset %q", assetID)
			}

			units, err := wsv.ParseBalance(amount, asset.Precision)
			if err != nil {
				return nil, err
			}

			str.SetBalance(accountID, assetID, units)
		}
	}

	for _, g := range gen.Grants {
		kind, err := permission.ParseGrantable(g.Permission)
		if err != nil {
			return nil, err
		}

		str.Grant(id.AccountID(g.Grantor), id.AccountID(g.Grantee), kind)
	}

	for _, p := range gen.Peers {
		str.AddPeer(wsv.Peer{Address: p.Address, PublicKey: p.PublicKey, TLSCertificate: p.TLSCertificate})
	}

	return &str, nil
}

// =============================================================================
// Mutators used by the genesis loader, the write path and the tests. The
// query engine never calls these.

// UpdateHeight records the height of the most recently committed block so
// snapshots can bound their block-store reads.
func (str *Store) UpdateHeight(height uint64) {
	str.mu.Lock()
	defer str.mu.Unlock()

	str.height = height
}

// AddRole registers a role and its permission set.
func (str *Store) AddRole(roleID id.RoleID, set permission.Set) error {
	str.mu.Lock()
	defer str.mu.Unlock()

	if _, exists := str.roles[roleID]; exists {
		return fmt.Errorf("role %q already exists", roleID)
	}

	str.roles[roleID] = set
	str.roleOrder = append(str.roleOrder, roleID)

	return nil
}

// AddDomain registers a domain.
func (str *Store) AddDomain(domain wsv.Domain) error {
	str.mu.Lock()
	defer str.mu.Unlock()

	if _, exists := str.domains[domain.DomainID]; exists {
		return fmt.Errorf("domain %q already exists", domain.DomainID)
	}
	if _, exists := str.roles[domain.DefaultRole]; !exists {
		return fmt.Errorf("domain %q references unknown default role %q", domain.DomainID, domain.DefaultRole)
	}

	str.domains[domain.DomainID] = domain

	return nil
}

// AddAccount registers an account with its roles and signatories.
func (str *Store) AddAccount(accountID id.AccountID, quorum uint32, roles []id.RoleID, signatories []string) error {
	str.mu.Lock()
	defer str.mu.Unlock()

	domainID := id.DomainID(accountID.Domain())
	if _, exists := str.domains[domainID]; !exists {
		return fmt.Errorf("account %q references unknown domain %q", accountID, domainID)
	}
	if _, exists := str.accounts[accountID]; exists {
		return fmt.Errorf("account %q already exists", accountID)
	}

	if len(roles) == 0 {
		roles = []id.RoleID{str.domains[domainID].DefaultRole}
	}
	for _, roleID := range roles {
		if _, exists := str.roles[roleID]; !exists {
			return fmt.Errorf("account %q references unknown role %q", accountID, roleID)
		}
	}

	str.accounts[accountID] = &accountRecord{
		account: wsv.Account{
			AccountID: accountID,
			DomainID:  domainID,
			Quorum:    quorum,
		},
		roles:       roles,
		signatories: signatories,
		details:     make(map[id.AccountID]map[string]string),
	}

	return nil
}

// AddAsset registers an asset.
func (str *Store) AddAsset(asset wsv.Asset) error {
	str.mu.Lock()
	defer str.mu.Unlock()

	if _, exists := str.assets[asset.AssetID]; exists {
		return fmt.Errorf("asset %q already exists", asset.AssetID)
	}

	str.assets[asset.AssetID] = asset

	return nil
}

// SetBalance sets an account's balance in integer minor units.
func (str *Store) SetBalance(accountID id.AccountID, assetID id.AssetID, units uint64) {
	str.mu.Lock()
	defer str.mu.Unlock()

	if str.balances[accountID] == nil {
		str.balances[accountID] = make(map[id.AssetID]uint64)
	}
	str.balances[accountID][assetID] = units
}

// SetAccountDetail records one key/value pair written by writer into the
// account's detail document.
func (str *Store) SetAccountDetail(accountID id.AccountID, writer id.AccountID, key string, value string) {
	str.mu.Lock()
	defer str.mu.Unlock()

	rec, exists := str.accounts[accountID]
	if !exists {
		return
	}

	if rec.details[writer] == nil {
		rec.details[writer] = make(map[string]string)
	}
	rec.details[writer][key] = value
}

// Grant records a grantable-permission edge from grantor to grantee.
func (str *Store) Grant(grantor id.AccountID, grantee id.AccountID, kind permission.Grantable) {
	str.mu.Lock()
	defer str.mu.Unlock()

	str.grants[grantKey{grantor: grantor, grantee: grantee, kind: kind}] = struct{}{}
}

// AddPeer registers a network peer.
func (str *Store) AddPeer(peer wsv.Peer) {
	str.mu.Lock()
	defer str.mu.Unlock()

	str.peers = append(str.peers, peer)
}

// =============================================================================

// View returns a snapshot reader over a deep copy of the current state.
// The copy makes the snapshot immune to commits that land while a query
// is still executing.
func (str *Store) View(ctx context.Context) (wsv.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	str.mu.RLock()
	defer str.mu.RUnlock()

	r := reader{
		height:    str.height,
		domains:   make(map[id.DomainID]wsv.Domain, len(str.domains)),
		roles:     make(map[id.RoleID]permission.Set, len(str.roles)),
		roleOrder: append([]id.RoleID(nil), str.roleOrder...),
		accounts:  make(map[id.AccountID]accountRecord, len(str.accounts)),
		assets:    make(map[id.AssetID]wsv.Asset, len(str.assets)),
		balances:  make(map[id.AccountID]map[id.AssetID]uint64, len(str.balances)),
		grants:    make(map[grantKey]struct{}, len(str.grants)),
		peers:     append([]wsv.Peer(nil), str.peers...),
	}

	for k, v := range str.domains {
		r.domains[k] = v
	}
	for k, v := range str.roles {
		r.roles[k] = v
	}
	for k, v := range str.accounts {
		rec := accountRecord{
			account:     v.account,
			roles:       append([]id.RoleID(nil), v.roles...),
			signatories: append([]string(nil), v.signatories...),
			details:     make(map[id.AccountID]map[string]string, len(v.details)),
		}
		for writer, kvs := range v.details {
			copied := make(map[string]string, len(kvs))
			for key, value := range kvs {
				copied[key] = value
			}
			rec.details[writer] = copied
		}
		r.accounts[k] = rec
	}
	for k, v := range str.assets {
		r.assets[k] = v
	}
	for k, v := range str.balances {
		copied := make(map[id.AssetID]uint64, len(v))
		for assetID, units := range v {
			copied[assetID] = units
		}
		r.balances[k] = copied
	}
	for k := range str.grants {
		r.grants[k] = struct{}{}
	}

	return &r, nil
}

// =============================================================================

// reader is an immutable snapshot of the store. It implements the
// wsv.Reader interface.
type reader struct {
	height    uint64
	domains   map[id.DomainID]wsv.Domain
	roles     map[id.RoleID]permission.Set
	roleOrder []id.RoleID
	accounts  map[id.AccountID]accountRecord
	assets    map[id.AssetID]wsv.Asset
	balances  map[id.AccountID]map[id.AssetID]uint64
	grants    map[grantKey]struct{}
	peers     []wsv.Peer
}

// Height returns the ledger height the snapshot was taken at.
func (r *reader) Height() uint64 {
	return r.height
}

// Close releases the snapshot. The copy holds no external resources.
func (r *reader) Close() error {
	return nil
}

// Account returns the account or wsv.ErrNotFound.
func (r *reader) Account(accountID id.AccountID) (wsv.Account, error) {
	rec, exists := r.accounts[accountID]
	if !exists {
		return wsv.Account{}, wsv.ErrNotFound
	}

	account := rec.account
	account.JSONData = renderDetails(rec.details)

	return account, nil
}

// AccountRoles returns the roles held by the account.
func (r *reader) AccountRoles(accountID id.AccountID) ([]id.RoleID, error) {
	rec, exists := r.accounts[accountID]
	if !exists {
		return nil, wsv.ErrNotFound
	}

	return append([]id.RoleID(nil), rec.roles...), nil
}

// RolePermissions returns the permission set of the role.
func (r *reader) RolePermissions(roleID id.RoleID) (permission.Set, error) {
	set, exists := r.roles[roleID]
	if !exists {
		return permission.Set{}, wsv.ErrNotFound
	}

	return set, nil
}

// Roles returns all role ids in their insertion order.
func (r *reader) Roles() ([]id.RoleID, error) {
	return append([]id.RoleID(nil), r.roleOrder...), nil
}

// Signatories returns the account's signatory public keys. An account
// that is missing or has no signatories reports wsv.ErrNotFound.
func (r *reader) Signatories(accountID id.AccountID) ([]string, error) {
	rec, exists := r.accounts[accountID]
	if !exists || len(rec.signatories) == 0 {
		return nil, wsv.ErrNotFound
	}

	return append([]string(nil), rec.signatories...), nil
}

// Asset returns the asset or wsv.ErrNotFound.
func (r *reader) Asset(assetID id.AssetID) (wsv.Asset, error) {
	asset, exists := r.assets[assetID]
	if !exists {
		return wsv.Asset{}, wsv.ErrNotFound
	}

	return asset, nil
}

// AccountAssets returns one page of the account's balances ordered by
// asset id.
func (r *reader) AccountAssets(accountID id.AccountID, pageSize int, firstAsset id.AssetID) (wsv.AccountAssetsPage, error) {
	balances := r.balances[accountID]

	assetIDs := make([]id.AssetID, 0, len(balances))
	for assetID := range balances {
		assetIDs = append(assetIDs, assetID)
	}
	sort.Slice(assetIDs, func(i, j int) bool { return assetIDs[i] < assetIDs[j] })

	start := 0
	if firstAsset != "" {
		start = -1
		for i, assetID := range assetIDs {
			if assetID == firstAsset {
				start = i
				break
			}
		}
		if start == -1 {
			return wsv.AccountAssetsPage{}, wsv.ErrInvalidPagination
		}
	}

	end := start + pageSize
	if end > len(assetIDs) {
		end = len(assetIDs)
	}

	page := wsv.AccountAssetsPage{
		Assets: make([]wsv.AccountAsset, 0, end-start),
		Total:  len(assetIDs),
	}
	for _, assetID := range assetIDs[start:end] {
		page.Assets = append(page.Assets, wsv.AccountAsset{
			AccountID: accountID,
			AssetID:   assetID,
			Balance:   balances[assetID],
			Precision: r.assets[assetID].Precision,
		})
	}

	if end < len(assetIDs) {
		page.NextAssetID = assetIDs[end]
	}

	return page, nil
}

// AccountDetail returns one page of the account's detail document,
// filtered by writer and/or key when specified.
func (r *reader) AccountDetail(accountID id.AccountID, writer id.AccountID, key string, pageSize int, firstRecord *wsv.DetailRecord) (wsv.AccountDetailPage, error) {
	rec, exists := r.accounts[accountID]
	if !exists {
		return wsv.AccountDetailPage{}, wsv.ErrNotFound
	}

	records := flattenDetails(rec.details, writer, key)
	if len(records) == 0 && (writer != "" || key != "") {
		return wsv.AccountDetailPage{}, wsv.ErrNotFound
	}

	start := 0
	if firstRecord != nil {
		start = -1
		for i, dr := range records {
			if dr.record.Writer == firstRecord.Writer && dr.record.Key == firstRecord.Key {
				start = i
				break
			}
		}
		if start == -1 {
			return wsv.AccountDetailPage{}, wsv.ErrInvalidPagination
		}
	}

	end := len(records)
	if pageSize > 0 && start+pageSize < end {
		end = start + pageSize
	}

	subtree := make(map[id.AccountID]map[string]string)
	for _, dr := range records[start:end] {
		if subtree[dr.record.Writer] == nil {
			subtree[dr.record.Writer] = make(map[string]string)
		}
		subtree[dr.record.Writer][dr.record.Key] = dr.value
	}

	page := wsv.AccountDetailPage{
		Detail: renderDetails(subtree),
		Total:  len(records),
	}
	if end < len(records) {
		next := records[end].record
		page.NextRecord = &next
	}

	return page, nil
}

// Peers returns all registered peers.
func (r *reader) Peers() ([]wsv.Peer, error) {
	return append([]wsv.Peer(nil), r.peers...), nil
}

// HasGrantable reports whether grantor has granted the kind to grantee.
func (r *reader) HasGrantable(grantor id.AccountID, grantee id.AccountID, kind permission.Grantable) (bool, error) {
	_, exists := r.grants[grantKey{grantor: grantor, grantee: grantee, kind: kind}]
	return exists, nil
}
