package mid

import (
	"context"
	"net/http"
	"time"

	"github.com/ardanlabs/blocktrading/business/sys/metrics"
	"github.com/ardanlabs/blocktrading/foundation/web"
)

// Metrics updates the request counters and latency histograms.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			started := time.Now()

			// Call the next handler.
			err := handler(ctx, w, r)

			// The errors middleware sits inside this one so the status
			// code is final by now.
			status := http.StatusOK
			if v, verr := web.GetValues(ctx); verr == nil && v.StatusCode != 0 {
				status = v.StatusCode
			}
			metrics.ObserveRequest(r.Method, status, started)

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}
