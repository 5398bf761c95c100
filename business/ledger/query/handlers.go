package query

import (
	"errors"

	"github.com/permledger/permledger/business/ledger/wsv"
	"github.com/permledger/permledger/foundation/ledger/block"
	"github.com/permledger/permledger/foundation/ledger/blockstore"
	"github.com/permledger/permledger/foundation/ledger/pending"
	"github.com/permledger/permledger/foundation/ledger/permission"
	"github.com/permledger/permledger/foundation/ledger/signature"
	"github.com/permledger/permledger/foundation/ledger/tx"
)

// getAccount builds the account response for an authorized caller.
func (e *Engine) getAccount(reader wsv.Reader, q GetAccount, queryHash string) (Response, error) {
	account, err := reader.Account(q.TargetID)
	if err != nil {
		if errors.Is(err, wsv.ErrNotFound) {
			return errNoAccount(queryHash), nil
		}
		return nil, err
	}

	roles, err := reader.AccountRoles(q.TargetID)
	if err != nil {
		return nil, err
	}

	return AccountResponse{QueryHash: queryHash, Account: account, Roles: roles}, nil
}

// getSignatories returns the target account's signatory public keys.
func (e *Engine) getSignatories(reader wsv.Reader, q GetSignatories, queryHash string) (Response, error) {
	keys, err := reader.Signatories(q.TargetID)
	if err != nil {
		if errors.Is(err, wsv.ErrNotFound) {
			return errNoSignatories(queryHash), nil
		}
		return nil, err
	}

	return SignatoriesResponse{QueryHash: queryHash, Keys: keys}, nil
}

// getAccountTxs pages the committed transactions created by the target.
// ID validity is judged ahead of the pagination arguments.
func (e *Engine) getAccountTxs(reader wsv.Reader, q GetAccountTxs, queryHash string) (Response, error) {
	if _, err := reader.Account(q.TargetID); err != nil {
		if errors.Is(err, wsv.ErrNotFound) {
			return errInvalidAccountID(queryHash), nil
		}
		return nil, err
	}

	if q.PageSize < 1 {
		return errInvalidPagination(queryHash), nil
	}

	records := e.blocks.AccountTxs(q.TargetID, reader.Height())

	return pageTxRecords(records, q.PageSize, q.FirstHash, queryHash)
}

// getAccountAssetTxs pages the committed transactions that move the asset
// while touching the target. The target account is checked before the
// asset, so a request where both are missing reports InvalidAccountId.
func (e *Engine) getAccountAssetTxs(reader wsv.Reader, q GetAccountAssetTxs, queryHash string) (Response, error) {
	if _, err := reader.Account(q.TargetID); err != nil {
		if errors.Is(err, wsv.ErrNotFound) {
			return errInvalidAccountID(queryHash), nil
		}
		return nil, err
	}

	if _, err := reader.Asset(q.AssetID); err != nil {
		if errors.Is(err, wsv.ErrNotFound) {
			return errInvalidAssetID(queryHash), nil
		}
		return nil, err
	}

	if q.PageSize < 1 {
		return errInvalidPagination(queryHash), nil
	}

	records := e.blocks.AccountAssetTxs(q.TargetID, q.AssetID, reader.Height())

	return pageTxRecords(records, q.PageSize, q.FirstHash, queryHash)
}

// getTransactions resolves specific committed transactions by hash. All
// listed hashes must resolve; a single bad hash fails the whole query.
func (e *Engine) getTransactions(reader wsv.Reader, q GetTransactions, perms permission.Set, queryHash string) (Response, error) {
	for _, h := range q.Hashes {
		if !signature.IsHash(h) {
			return errBadInput(queryHash, "malformed transaction hash"), nil
		}
	}

	records := make([]blockstore.TxRecord, 0, len(q.Hashes))
	for _, h := range q.Hashes {
		rec, err := e.blocks.GetTx(h)
		if err != nil {
			if errors.Is(err, blockstore.ErrNotFound) {
				return errBadInput(queryHash, "unknown transaction hash"), nil
			}
			return nil, err
		}
		records = append(records, rec)
	}

	if !perms.HasRoot() && !perms.Has(permission.GetAllTxs) {
		for _, rec := range records {
			if rec.Tx.CreatorID != q.Meta.CreatorID {
				return errNoPermissions(queryHash), nil
			}
		}
	}

	txs := make([]tx.SignedTx, len(records))
	for i, rec := range records {
		txs[i] = rec.Tx
	}

	return TransactionsResponse{QueryHash: queryHash, Txs: txs}, nil
}

// getAccountAssets pages the balances held by the target account.
func (e *Engine) getAccountAssets(reader wsv.Reader, q GetAccountAssets, queryHash string) (Response, error) {
	if q.PageSize < 1 {
		return errInvalidPagination(queryHash), nil
	}

	page, err := reader.AccountAssets(q.TargetID, q.PageSize, q.FirstAsset)
	if err != nil {
		if errors.Is(err, wsv.ErrInvalidPagination) {
			return errInvalidPagination(queryHash), nil
		}
		return nil, err
	}

	return AccountAssetsResponse{
		QueryHash:   queryHash,
		Assets:      page.Assets,
		NextAssetID: page.NextAssetID,
		Total:       page.Total,
	}, nil
}

// getAccountDetail pages the target account's detail document.
func (e *Engine) getAccountDetail(reader wsv.Reader, q GetAccountDetail, queryHash string) (Response, error) {
	if q.PageSize < 1 {
		return errInvalidPagination(queryHash), nil
	}

	page, err := reader.AccountDetail(q.TargetID, q.Writer, q.Key, q.PageSize, q.FirstRecord)
	if err != nil {
		switch {
		case errors.Is(err, wsv.ErrInvalidPagination):
			return errInvalidPagination(queryHash), nil
		case errors.Is(err, wsv.ErrNotFound):
			return errNoAccountDetail(queryHash), nil
		}
		return nil, err
	}

	return AccountDetailResponse{
		QueryHash:  queryHash,
		Detail:     page.Detail,
		NextRecord: page.NextRecord,
		Total:      page.Total,
	}, nil
}

// getRoles returns every role id in insertion order.
func (e *Engine) getRoles(reader wsv.Reader, q GetRoles, queryHash string) (Response, error) {
	roles, err := reader.Roles()
	if err != nil {
		return nil, err
	}

	return RolesResponse{QueryHash: queryHash, Roles: roles}, nil
}

// getRolePermissions returns the permission names of one role.
func (e *Engine) getRolePermissions(reader wsv.Reader, q GetRolePermissions, queryHash string) (Response, error) {
	set, err := reader.RolePermissions(q.RoleID)
	if err != nil {
		if errors.Is(err, wsv.ErrNotFound) {
			return errNoRoles(queryHash), nil
		}
		return nil, err
	}

	perms := set.List()
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = p.String()
	}

	return RolePermissionsResponse{QueryHash: queryHash, Permissions: names}, nil
}

// getAssetInfo returns the registration record of one asset.
func (e *Engine) getAssetInfo(reader wsv.Reader, q GetAssetInfo, queryHash string) (Response, error) {
	asset, err := reader.Asset(q.AssetID)
	if err != nil {
		if errors.Is(err, wsv.ErrNotFound) {
			return errNoAsset(queryHash), nil
		}
		return nil, err
	}

	return AssetResponse{QueryHash: queryHash, Asset: asset}, nil
}

// getPendingTxs returns the caller's pending transactions. Pending reads
// are real-time; they do not observe the query snapshot.
func (e *Engine) getPendingTxs(q GetPendingTxs, queryHash string) (Response, error) {
	if !q.Paged {
		txs := e.pending.All(q.Meta.CreatorID)
		return PendingTxsResponse{QueryHash: queryHash, Txs: txs, Total: len(txs)}, nil
	}

	if q.PageSize < 1 {
		return errInvalidPagination(queryHash), nil
	}

	page, err := e.pending.Get(q.Meta.CreatorID, q.PageSize, q.FirstHash)
	if err != nil {
		if errors.Is(err, pending.ErrNotFound) {
			return errInvalidPagination(queryHash), nil
		}
		return nil, err
	}

	return PendingTxsResponse{
		QueryHash:  queryHash,
		Txs:        page.Txs,
		NextTxHash: page.NextHash,
		Total:      page.Total,
	}, nil
}

// getBlock returns one committed block. The height bound comes from the
// snapshot, so a block committed mid-query is not visible.
func (e *Engine) getBlock(reader wsv.Reader, q GetBlock, queryHash string) (Response, error) {
	if q.Height == 0 || q.Height > reader.Height() {
		return errInvalidHeight(queryHash), nil
	}

	blk, err := e.blocks.GetBlock(q.Height)
	if err != nil {
		if errors.Is(err, blockstore.ErrInvalidHeight) {
			return errInvalidHeight(queryHash), nil
		}
		return nil, err
	}

	return BlockResponse{QueryHash: queryHash, Block: block.NewData(blk)}, nil
}

// getPeers returns the registered network peers.
func (e *Engine) getPeers(reader wsv.Reader, q GetPeers, queryHash string) (Response, error) {
	peers, err := reader.Peers()
	if err != nil {
		return nil, err
	}

	return PeersResponse{QueryHash: queryHash, Peers: peers}, nil
}

// =============================================================================

// pageTxRecords applies the hash-marker pagination convention to a stream
// of committed transactions already in ascending (height, index) order.
func pageTxRecords(records []blockstore.TxRecord, pageSize int, firstHash string, queryHash string) (Response, error) {
	start := 0
	if firstHash != "" {
		start = -1
		for i, rec := range records {
			if rec.Hash == firstHash {
				start = i
				break
			}
		}
		if start == -1 {
			return errInvalidPagination(queryHash), nil
		}
	}

	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}

	resp := TransactionsPageResponse{
		QueryHash: queryHash,
		Txs:       make([]tx.SignedTx, 0, end-start),
		Total:     len(records),
	}
	for _, rec := range records[start:end] {
		resp.Txs = append(resp.Txs, rec.Tx)
	}

	if end < len(records) {
		resp.NextTxHash = records[end].Hash
	}

	return resp, nil
}
