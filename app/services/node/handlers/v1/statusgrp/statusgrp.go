// Package statusgrp maintains the group of handlers for node health and
// chain status.
package statusgrp

import (
	"context"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/permledger/permledger/foundation/ledger/blockstore"
	"github.com/permledger/permledger/foundation/web"
)

// Handlers manages the set of status endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	Blocks *blockstore.Store
}

// Status returns the current chain position of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	latest := h.Blocks.LatestBlock()

	status := struct {
		Height          uint64 `json:"height"`
		LatestBlockHash string `json:"latest_block_hash"`
	}{
		Height:          latest.Header.Height,
		LatestBlockHash: latest.Hash(),
	}

	return web.Respond(ctx, w, status, http.StatusOK)
}

// Liveness returns simple status info for orchestration probes.
func (h Handlers) Liveness(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	host, err := os.Hostname()
	if err != nil {
		host = "unavailable"
	}

	info := struct {
		Status string `json:"status"`
		Host   string `json:"host"`
	}{
		Status: "up",
		Host:   host,
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}
