package querygrp

import (
	"fmt"

	"github.com/permledger/permledger/business/ledger/query"
	"github.com/permledger/permledger/business/ledger/wsv"
	"github.com/permledger/permledger/foundation/ledger/id"
)

// request is the JSON form of a query. Kind selects the variant; the
// schema layer validates the creator, target, asset and role ids here so
// those never reach the engine malformed. Pagination markers, the detail
// writer filter and hashes are passed through as given.
type request struct {
	Kind          string `json:"kind" validate:"required"`
	CreatorID     string `json:"creator_id" validate:"required"`
	CreatedTimeMs uint64 `json:"created_time_ms"`
	SignerKey     string `json:"signer_key"`

	TargetID   string   `json:"target_id"`
	AssetID    string   `json:"asset_id"`
	RoleID     string   `json:"role_id"`
	Writer     string   `json:"writer"`
	Key        string   `json:"key"`
	Height     uint64   `json:"height"`
	Hashes     []string `json:"hashes"`
	PageSize   int      `json:"page_size" validate:"gte=0"`
	FirstHash  string   `json:"first_hash"`
	FirstAsset string   `json:"first_asset"`
	Paged      bool     `json:"paged"`

	FirstRecordWriter string `json:"first_record_writer"`
	FirstRecordKey    string `json:"first_record_key"`
}

// toQuery converts the request into the engine's query value.
func (req request) toQuery() (query.Query, error) {
	creatorID, err := id.ToAccountID(req.CreatorID)
	if err != nil {
		return nil, err
	}

	meta := query.Meta{
		CreatorID:     creatorID,
		CreatedTimeMs: req.CreatedTimeMs,
		SignerKey:     req.SignerKey,
	}

	targetID := func() (id.AccountID, error) {
		if req.TargetID == "" {
			return creatorID, nil
		}
		return id.ToAccountID(req.TargetID)
	}

	switch req.Kind {
	case "get_account":
		target, err := targetID()
		if err != nil {
			return nil, err
		}
		return query.GetAccount{Meta: meta, TargetID: target}, nil

	case "get_signatories":
		target, err := targetID()
		if err != nil {
			return nil, err
		}
		return query.GetSignatories{Meta: meta, TargetID: target}, nil

	case "get_account_transactions":
		target, err := targetID()
		if err != nil {
			return nil, err
		}
		return query.GetAccountTxs{Meta: meta, TargetID: target, PageSize: req.PageSize, FirstHash: req.FirstHash}, nil

	case "get_account_asset_transactions":
		target, err := targetID()
		if err != nil {
			return nil, err
		}
		assetID, err := id.ToAssetID(req.AssetID)
		if err != nil {
			return nil, err
		}
		return query.GetAccountAssetTxs{Meta: meta, TargetID: target, AssetID: assetID, PageSize: req.PageSize, FirstHash: req.FirstHash}, nil

	case "get_transactions":
		return query.GetTransactions{Meta: meta, Hashes: req.Hashes}, nil

	case "get_account_assets":
		target, err := targetID()
		if err != nil {
			return nil, err
		}
		return query.GetAccountAssets{Meta: meta, TargetID: target, PageSize: req.PageSize, FirstAsset: id.AssetID(req.FirstAsset)}, nil

	case "get_account_detail":
		target, err := targetID()
		if err != nil {
			return nil, err
		}
		q := query.GetAccountDetail{Meta: meta, TargetID: target, Writer: id.AccountID(req.Writer), Key: req.Key, PageSize: req.PageSize}
		if req.FirstRecordWriter != "" || req.FirstRecordKey != "" {
			q.FirstRecord = &wsv.DetailRecord{Writer: id.AccountID(req.FirstRecordWriter), Key: req.FirstRecordKey}
		}
		return q, nil

	case "get_roles":
		return query.GetRoles{Meta: meta}, nil

	case "get_role_permissions":
		roleID, err := id.ToRoleID(req.RoleID)
		if err != nil {
			return nil, err
		}
		return query.GetRolePermissions{Meta: meta, RoleID: roleID}, nil

	case "get_asset_info":
		assetID, err := id.ToAssetID(req.AssetID)
		if err != nil {
			return nil, err
		}
		return query.GetAssetInfo{Meta: meta, AssetID: assetID}, nil

	case "get_pending_transactions":
		return query.GetPendingTxs{Meta: meta, Paged: req.Paged, PageSize: req.PageSize, FirstHash: req.FirstHash}, nil

	case "get_block":
		return query.GetBlock{Meta: meta, Height: req.Height}, nil

	case "get_peers":
		return query.GetPeers{Meta: meta}, nil
	}

	return nil, fmt.Errorf("unknown query kind %q", req.Kind)
}
