// Package querygrp maintains the group of handlers for the query surface.
package querygrp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/permledger/permledger/business/ledger/query"
	"github.com/permledger/permledger/business/web/errs"
	"github.com/permledger/permledger/foundation/events"
	"github.com/permledger/permledger/foundation/ledger/id"
	"github.com/permledger/permledger/foundation/web"
)

// Handlers manages the set of query endpoints.
type Handlers struct {
	Log    *zap.SugaredLogger
	Engine *query.Engine
	Evts   *events.Events
	WS     websocket.Upgrader
}

// Query decodes one query request, executes it and responds with the
// typed response or the structured error value. Storage faults abort the
// request with a transport-level failure.
func (h Handlers) Query(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req request
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	q, err := req.toQuery()
	if err != nil {
		return errs.NewQueryRejected(err, query.CodeInvalidPagination)
	}

	resp, err := h.Engine.Execute(ctx, q)
	if err != nil {
		h.Log.Errorw("query storage fault", "traceid", web.GetTraceID(ctx), "ERROR", err)
		return errs.NewStorageFault()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Events handles a web socket to deliver engine activity to a client.
// The caller must pass the blocks-subscription authorization check before
// the stream is attached.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	creatorID, err := id.ToAccountID(r.URL.Query().Get("creator_id"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	ok, err := h.Engine.ValidateBlocksQuery(ctx, query.BlocksQuery{Meta: query.Meta{CreatorID: creatorID}})
	if err != nil {
		return err
	}
	if !ok {
		return errs.NewTrusted(errors.New("caller is not authorized for block events"), http.StatusForbidden)
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	h.Log.Infow("events subscription", "traceid", v.TraceID, "creator", creatorID)

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}
			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
