// Package postgres implements the world-state contracts over a relational
// schema. A View opens one repeatable-read read-only transaction, which is
// the snapshot the query executes against.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"

	// Calls init function to register the postgres driver.
	_ "github.com/lib/pq"

	"github.com/permledger/permledger/business/ledger/wsv"
	"github.com/permledger/permledger/foundation/ledger/id"
	"github.com/permledger/permledger/foundation/ledger/permission"
)

// Config is the required properties to use the database.
type Config struct {
	User         string
	Password     string
	Host         string
	Name         string
	MaxIdleConns int
	MaxOpenConns int
	DisableTLS   bool
}

// Open knows how to open a database connection based on the configuration.
func Open(cfg Config) (*sqlx.DB, error) {
	sslMode := "require"
	if cfg.DisableTLS {
		sslMode = "disable"
	}

	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host,
		Path:     cfg.Name,
		RawQuery: q.Encode(),
	}

	db, err := sqlx.Open("postgres", u.String())
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	return db, nil
}

// StatusCheck returns nil if it can successfully talk to the database.
func StatusCheck(ctx context.Context, db *sqlx.DB) error {
	var pingError error
	for attempts := 1; ; attempts++ {
		pingError = db.PingContext(ctx)
		if pingError == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	const q = `SELECT true`
	var tmp bool
	return db.QueryRowContext(ctx, q).Scan(&tmp)
}

// =============================================================================

// Store manages world-state access through a relational backend.
type Store struct {
	db *sqlx.DB
}

// NewStore constructs a store for use over an open database.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// View opens a snapshot reader backed by a repeatable-read read-only
// transaction. The caller owns releasing it with Close.
func (s *Store) View(ctx context.Context) (wsv.Reader, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot tx: %w", err)
	}

	const q = `SELECT height FROM ledger_state`

	var height uint64
	if err := tx.QueryRowContext(ctx, q).Scan(&height); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("read ledger height: %w", err)
	}

	return &reader{ctx: ctx, tx: tx, height: height}, nil
}

// =============================================================================

// reader is a snapshot over one read-only transaction. It implements the
// wsv.Reader interface.
type reader struct {
	ctx    context.Context
	tx     *sqlx.Tx
	height uint64
}

// Height returns the ledger height the snapshot was taken at.
func (r *reader) Height() uint64 {
	return r.height
}

// Close releases the snapshot transaction.
func (r *reader) Close() error {
	return r.tx.Rollback()
}

// Account returns the account or wsv.ErrNotFound.
func (r *reader) Account(accountID id.AccountID) (wsv.Account, error) {
	const q = `
	SELECT account_id, domain_id, quorum
	FROM account
	WHERE account_id = $1`

	var account wsv.Account
	if err := r.tx.QueryRowContext(r.ctx, q, accountID).Scan(&account.AccountID, &account.DomainID, &account.Quorum); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return wsv.Account{}, wsv.ErrNotFound
		}
		return wsv.Account{}, fmt.Errorf("select account: %w", err)
	}

	rows, err := r.detailRows(accountID, "", "")
	if err != nil {
		return wsv.Account{}, err
	}
	account.JSONData = renderDetailRows(rows)

	return account, nil
}

// AccountRoles returns the roles held by the account.
func (r *reader) AccountRoles(accountID id.AccountID) ([]id.RoleID, error) {
	if _, err := r.Account(accountID); err != nil {
		return nil, err
	}

	const q = `
	SELECT role_id
	FROM account_has_roles
	WHERE account_id = $1
	ORDER BY position`

	var roles []id.RoleID
	if err := r.tx.SelectContext(r.ctx, &roles, q, accountID); err != nil {
		return nil, fmt.Errorf("select account roles: %w", err)
	}

	return roles, nil
}

// RolePermissions returns the permission set of the role.
func (r *reader) RolePermissions(roleID id.RoleID) (permission.Set, error) {
	const qRole = `SELECT role_id FROM role WHERE role_id = $1`

	var exists string
	if err := r.tx.QueryRowContext(r.ctx, qRole, roleID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return permission.Set{}, wsv.ErrNotFound
		}
		return permission.Set{}, fmt.Errorf("select role: %w", err)
	}

	const q = `
	SELECT permission
	FROM role_has_permissions
	WHERE role_id = $1`

	var names []string
	if err := r.tx.SelectContext(r.ctx, &names, q, roleID); err != nil {
		return permission.Set{}, fmt.Errorf("select role permissions: %w", err)
	}

	var set permission.Set
	for _, name := range names {
		p, err := permission.Parse(name)
		if err != nil {
			return permission.Set{}, err
		}
		set = set.With(p)
	}

	return set, nil
}

// Roles returns all role ids in their insertion order.
func (r *reader) Roles() ([]id.RoleID, error) {
	const q = `
	SELECT role_id
	FROM role
	ORDER BY position`

	var roles []id.RoleID
	if err := r.tx.SelectContext(r.ctx, &roles, q); err != nil {
		return nil, fmt.Errorf("select roles: %w", err)
	}

	return roles, nil
}

// Signatories returns the account's signatory public keys. An account that
// is missing or has no signatories reports wsv.ErrNotFound.
func (r *reader) Signatories(accountID id.AccountID) ([]string, error) {
	const q = `
	SELECT public_key
	FROM account_has_signatory
	WHERE account_id = $1
	ORDER BY public_key`

	var keys []string
	if err := r.tx.SelectContext(r.ctx, &keys, q, accountID); err != nil {
		return nil, fmt.Errorf("select signatories: %w", err)
	}

	if len(keys) == 0 {
		return nil, wsv.ErrNotFound
	}

	return keys, nil
}

// Asset returns the asset or wsv.ErrNotFound.
func (r *reader) Asset(assetID id.AssetID) (wsv.Asset, error) {
	const q = `
	SELECT asset_id, domain_id, precision
	FROM asset
	WHERE asset_id = $1`

	var asset wsv.Asset
	if err := r.tx.QueryRowContext(r.ctx, q, assetID).Scan(&asset.AssetID, &asset.DomainID, &asset.Precision); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return wsv.Asset{}, wsv.ErrNotFound
		}
		return wsv.Asset{}, fmt.Errorf("select asset: %w", err)
	}

	return asset, nil
}

// AccountAssets returns one page of the account's balances ordered by
// asset id.
func (r *reader) AccountAssets(accountID id.AccountID, pageSize int, firstAsset id.AssetID) (wsv.AccountAssetsPage, error) {
	const q = `
	SELECT aha.asset_id, aha.amount, ast.precision
	FROM account_has_asset AS aha
	JOIN asset AS ast ON ast.asset_id = aha.asset_id
	WHERE aha.account_id = $1
	ORDER BY aha.asset_id`

	rows, err := r.tx.QueryContext(r.ctx, q, accountID)
	if err != nil {
		return wsv.AccountAssetsPage{}, fmt.Errorf("select account assets: %w", err)
	}
	defer rows.Close()

	var assets []wsv.AccountAsset
	for rows.Next() {
		aa := wsv.AccountAsset{AccountID: accountID}
		if err := rows.Scan(&aa.AssetID, &aa.Balance, &aa.Precision); err != nil {
			return wsv.AccountAssetsPage{}, fmt.Errorf("scan account asset: %w", err)
		}
		assets = append(assets, aa)
	}
	if err := rows.Err(); err != nil {
		return wsv.AccountAssetsPage{}, fmt.Errorf("iterate account assets: %w", err)
	}

	start := 0
	if firstAsset != "" {
		start = -1
		for i, aa := range assets {
			if aa.AssetID == firstAsset {
				start = i
				break
			}
		}
		if start == -1 {
			return wsv.AccountAssetsPage{}, wsv.ErrInvalidPagination
		}
	}

	end := start + pageSize
	if end > len(assets) {
		end = len(assets)
	}

	page := wsv.AccountAssetsPage{
		Assets: assets[start:end],
		Total:  len(assets),
	}
	if end < len(assets) {
		page.NextAssetID = assets[end].AssetID
	}

	return page, nil
}

// AccountDetail returns one page of the account's detail document,
// filtered by writer and/or key when specified.
func (r *reader) AccountDetail(accountID id.AccountID, writer id.AccountID, key string, pageSize int, firstRecord *wsv.DetailRecord) (wsv.AccountDetailPage, error) {
	if _, err := r.Account(accountID); err != nil {
		return wsv.AccountDetailPage{}, err
	}

	rows, err := r.detailRows(accountID, writer, key)
	if err != nil {
		return wsv.AccountDetailPage{}, err
	}

	if len(rows) == 0 && (writer != "" || key != "") {
		return wsv.AccountDetailPage{}, wsv.ErrNotFound
	}

	start := 0
	if firstRecord != nil {
		start = -1
		for i, dr := range rows {
			if dr.Writer == firstRecord.Writer && dr.Key == firstRecord.Key {
				start = i
				break
			}
		}
		if start == -1 {
			return wsv.AccountDetailPage{}, wsv.ErrInvalidPagination
		}
	}

	end := len(rows)
	if pageSize > 0 && start+pageSize < end {
		end = start + pageSize
	}

	page := wsv.AccountDetailPage{
		Detail: renderDetailRows(rows[start:end]),
		Total:  len(rows),
	}
	if end < len(rows) {
		page.NextRecord = &wsv.DetailRecord{Writer: rows[end].Writer, Key: rows[end].Key}
	}

	return page, nil
}

// Peers returns all registered peers.
func (r *reader) Peers() ([]wsv.Peer, error) {
	const q = `
	SELECT public_key, address, COALESCE(tls_certificate, '')
	FROM peer
	ORDER BY public_key`

	rows, err := r.tx.QueryContext(r.ctx, q)
	if err != nil {
		return nil, fmt.Errorf("select peers: %w", err)
	}
	defer rows.Close()

	var peers []wsv.Peer
	for rows.Next() {
		var peer wsv.Peer
		if err := rows.Scan(&peer.PublicKey, &peer.Address, &peer.TLSCertificate); err != nil {
			return nil, fmt.Errorf("scan peer: %w", err)
		}
		peers = append(peers, peer)
	}

	return peers, rows.Err()
}

// HasGrantable reports whether grantor has granted the kind to grantee.
func (r *reader) HasGrantable(grantor id.AccountID, grantee id.AccountID, kind permission.Grantable) (bool, error) {
	const q = `
	SELECT COUNT(*)
	FROM account_has_grantable_permissions
	WHERE account_id = $1 AND permittee_account_id = $2 AND permission = $3`

	var count int
	if err := r.tx.QueryRowContext(r.ctx, q, grantor, grantee, kind.String()).Scan(&count); err != nil {
		return false, fmt.Errorf("select grantable permission: %w", err)
	}

	return count > 0, nil
}
