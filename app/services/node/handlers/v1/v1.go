// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/blocktrading/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/blocktrading/foundation/blocktrading/state"
	"github.com/ardanlabs/blocktrading/foundation/events"
	"github.com/ardanlabs/blocktrading/foundation/nameservice"
	"github.com/ardanlabs/blocktrading/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/registry", pbl.Registry)
	app.Handle(http.MethodGet, version, "/blocks/:index", pbl.Block)
	app.Handle(http.MethodGet, version, "/blocks/range/:start/:end", pbl.BlocksRange)
	app.Handle(http.MethodGet, version, "/blocks/owner/:account", pbl.BlocksByOwner)
	app.Handle(http.MethodGet, version, "/accounts/list", pbl.Accounts)
	app.Handle(http.MethodGet, version, "/accounts/list/:account", pbl.Accounts)
	app.Handle(http.MethodGet, version, "/journal/list/:from/:to", pbl.Journal)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitTransaction)
}
