package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/permledger/permledger/business/ledger/wsv"
	"github.com/permledger/permledger/foundation/ledger/blockstore"
	"github.com/permledger/permledger/foundation/ledger/id"
	"github.com/permledger/permledger/foundation/ledger/pending"
	"github.com/permledger/permledger/foundation/ledger/permission"
	"github.com/permledger/permledger/foundation/ledger/signature"
)

// EventHandler defines a function that is called when events occur in the
// processing of queries.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to construct the engine.
type Config struct {
	WSV                 wsv.Store
	Blocks              *blockstore.Store
	Pending             *pending.Pool
	EvHandler           EventHandler
	ValidateSignatories bool
	Disabled            []Kind
}

// Engine executes queries against committed state. It never mutates the
// stores it reads.
type Engine struct {
	wsv          wsv.Store
	blocks       *blockstore.Store
	pending      *pending.Pool
	evHandler    EventHandler
	validateSigs bool
	disabled     map[Kind]bool
}

// New constructs a query engine for use.
func New(cfg Config) (*Engine, error) {
	if cfg.WSV == nil {
		return nil, errors.New("world-state store is required")
	}
	if cfg.Blocks == nil {
		return nil, errors.New("block store is required")
	}
	if cfg.Pending == nil {
		return nil, errors.New("pending pool is required")
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	disabled := make(map[Kind]bool)
	for _, kind := range cfg.Disabled {
		disabled[kind] = true
	}

	engine := Engine{
		wsv:          cfg.WSV,
		blocks:       cfg.Blocks,
		pending:      cfg.Pending,
		evHandler:    ev,
		validateSigs: cfg.ValidateSignatories,
		disabled:     disabled,
	}

	return &engine, nil
}

// =============================================================================

// Execute runs one query to completion against a single world-state
// snapshot. A nil error with an ErrorResponse is a well-formed negative
// answer; a non-nil error is a storage or cancellation fault and carries
// no response.
func (e *Engine) Execute(ctx context.Context, q Query) (Response, error) {
	queryHash := signature.Hash(q)
	meta := q.QueryMeta()

	e.evHandler("query: execute: kind[%s] creator[%s]", q.Kind(), meta.CreatorID)

	if e.disabled[q.Kind()] {
		return errNotSupported(queryHash), nil
	}

	reader, err := e.wsv.View(ctx)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer reader.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.validateSigs {
		ok, err := e.checkSignatory(reader, meta)
		if err != nil {
			return nil, err
		}
		if !ok {
			return errNoPermissions(queryHash), nil
		}
	}

	perms, err := creatorPermissions(reader, meta.CreatorID)
	if err != nil {
		return nil, err
	}

	ok, err := authorize(reader, meta.CreatorID, q.Kind(), targetOf(q), perms)
	if err != nil {
		return nil, err
	}
	if !ok {
		e.evHandler("query: execute: kind[%s] creator[%s]: DENIED", q.Kind(), meta.CreatorID)
		return errNoPermissions(queryHash), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch qv := q.(type) {
	case GetAccount:
		return e.getAccount(reader, qv, queryHash)
	case GetSignatories:
		return e.getSignatories(reader, qv, queryHash)
	case GetAccountTxs:
		return e.getAccountTxs(reader, qv, queryHash)
	case GetAccountAssetTxs:
		return e.getAccountAssetTxs(reader, qv, queryHash)
	case GetTransactions:
		return e.getTransactions(reader, qv, perms, queryHash)
	case GetAccountAssets:
		return e.getAccountAssets(reader, qv, queryHash)
	case GetAccountDetail:
		return e.getAccountDetail(reader, qv, queryHash)
	case GetRoles:
		return e.getRoles(reader, qv, queryHash)
	case GetRolePermissions:
		return e.getRolePermissions(reader, qv, queryHash)
	case GetAssetInfo:
		return e.getAssetInfo(reader, qv, queryHash)
	case GetPendingTxs:
		return e.getPendingTxs(qv, queryHash)
	case GetBlock:
		return e.getBlock(reader, qv, queryHash)
	case GetPeers:
		return e.getPeers(reader, qv, queryHash)
	}

	return errNotSupported(queryHash), nil
}

// ValidateBlocksQuery authorizes a blocks-subscription request. The engine
// does not stream blocks; a true result tells the transport layer it may.
func (e *Engine) ValidateBlocksQuery(ctx context.Context, bq BlocksQuery) (bool, error) {
	reader, err := e.wsv.View(ctx)
	if err != nil {
		return false, fmt.Errorf("open snapshot: %w", err)
	}
	defer reader.Close()

	perms, err := creatorPermissions(reader, bq.Meta.CreatorID)
	if err != nil {
		return false, err
	}

	return perms.HasRoot() || perms.Has(permission.GetBlocks), nil
}

// =============================================================================

// checkSignatory verifies the claimed signer key is one of the creator's
// registered signatories.
func (e *Engine) checkSignatory(reader wsv.Reader, meta Meta) (bool, error) {
	if meta.SignerKey == "" {
		return false, nil
	}

	keys, err := reader.Signatories(meta.CreatorID)
	if err != nil {
		if errors.Is(err, wsv.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	for _, key := range keys {
		if key == meta.SignerKey {
			return true, nil
		}
	}

	return false, nil
}

// targetOf extracts the account the query reaches into. Untargeted queries
// aim at the creator's own account.
func targetOf(q Query) id.AccountID {
	switch qv := q.(type) {
	case GetAccount:
		return qv.TargetID
	case GetSignatories:
		return qv.TargetID
	case GetAccountTxs:
		return qv.TargetID
	case GetAccountAssetTxs:
		return qv.TargetID
	case GetAccountAssets:
		return qv.TargetID
	case GetAccountDetail:
		return qv.TargetID
	}

	return q.QueryMeta().CreatorID
}
