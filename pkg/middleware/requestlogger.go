package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/pkg/logger"
)

// ListingIDHeader lets a client tag requests with the listing screen it is
// currently showing, so wish-list calls can be correlated with a listing.
const ListingIDHeader = "X-Listing-ID"

// RequestLogger stores a request-scoped logger in context, enriched with
// correlation_id, listing_id, trace_id and span_id. Handlers retrieve it with
// logger.FromContext. Mount it after RequestLogging and Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if id := r.Header.Get(ListingIDHeader); id != "" && logger.ListingIDFromContext(ctx) == "" {
				ctx = logger.WithListingID(ctx, id)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
