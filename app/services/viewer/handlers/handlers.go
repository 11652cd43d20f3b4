// Package handlers contains the full set of handler functions and routes
// supported by the viewer website.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/ardanlabs/blocktrading/business/web/mid"
	"github.com/ardanlabs/blocktrading/foundation/web"
	"go.uber.org/zap"
)

// UIConfig contains all the mandatory systems required by the viewer.
type UIConfig struct {
	Build    string
	Shutdown chan os.Signal
	Log      *zap.SugaredLogger
	NodeURL  string
	Width    int
	Height   int
}

// UIMux constructs an http.Handler with all application routes defined.
func UIMux(cfg UIConfig) (*web.App, error) {
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Metrics(),
		mid.Errors(cfg.Log),
		mid.Panics(),
	)

	// Register the index page for the website.
	ig, err := newIndex(cfg)
	if err != nil {
		return nil, fmt.Errorf("loading index template: %w", err)
	}
	app.Handle(http.MethodGet, "", "/", ig.handler)

	// The build lets an operator check which viewer is deployed.
	version := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		data := struct {
			Build   string `json:"build"`
			NodeURL string `json:"node_url"`
		}{
			Build:   cfg.Build,
			NodeURL: cfg.NodeURL,
		}
		return web.Respond(ctx, w, data, http.StatusOK)
	}
	app.Handle(http.MethodGet, "", "/version", version)

	return app, nil
}
