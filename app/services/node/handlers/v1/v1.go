// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"
	"os"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/permledger/permledger/app/services/node/handlers/v1/querygrp"
	"github.com/permledger/permledger/app/services/node/handlers/v1/statusgrp"
	"github.com/permledger/permledger/business/ledger/query"
	"github.com/permledger/permledger/business/web/v1/mid"
	"github.com/permledger/permledger/foundation/events"
	"github.com/permledger/permledger/foundation/ledger/blockstore"
	"github.com/permledger/permledger/foundation/web"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Shutdown chan os.Signal
	Log      *zap.SugaredLogger
	Engine   *query.Engine
	Blocks   *blockstore.Store
	Evts     *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(cfg Config) http.Handler {
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Metrics(),
		mid.Cors("*"),
		mid.Panics(),
	)

	// Answer preflight requests for every route with the read-only
	// method surface.
	preflight := mid.CorsPreflight("*")
	app.OptionsHandler = func(w http.ResponseWriter, r *http.Request, _ map[string]string) {
		preflight(w, r)
	}

	qgh := querygrp.Handlers{
		Log:    cfg.Log,
		Engine: cfg.Engine,
		Evts:   cfg.Evts,
		WS:     websocket.Upgrader{},
	}
	app.Handle(http.MethodPost, "/v1/query", qgh.Query)
	app.Handle(http.MethodGet, "/v1/events", qgh.Events)

	sgh := statusgrp.Handlers{
		Log:    cfg.Log,
		Blocks: cfg.Blocks,
	}
	app.Handle(http.MethodGet, "/v1/node/status", sgh.Status)
	app.Handle(http.MethodGet, "/v1/node/liveness", sgh.Liveness)

	return app
}
