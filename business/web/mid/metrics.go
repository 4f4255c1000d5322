package mid

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ardanlabs/powchain/foundation/blockchain/metrics"
	"github.com/ardanlabs/powchain/foundation/web"
)

// Metrics counts requests by the status code written to the client.
func Metrics(m *metrics.Metrics) web.Middleware {

	// This is the actual middleware function to be executed.
	mw := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Call the next handler.
			err := handler(ctx, w, r)

			// Errors runs inside this middleware so the status code is final.
			// Hijacked connections never write a status through Respond.
			status := http.StatusOK
			if err != nil {
				status = http.StatusInternalServerError
			}
			if v, verr := web.GetValues(ctx); verr == nil && v.StatusCode != 0 {
				status = v.StatusCode
			}
			m.Request(strconv.Itoa(status))

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return mw
}
