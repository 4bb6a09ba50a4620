// Package middleware provides HTTP middleware for the Invoice Engine API.
package middleware

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/finopsys/invoice-engine/internal/observability"
)

type contextKey string

const vendorIDKey contextKey = "vendor_id"

// VendorID extracts the vendor scope from a request context, "" when
// absent.
func VendorID(ctx context.Context) string {
	v, _ := ctx.Value(vendorIDKey).(string)
	return v
}

// VendorScope requires a vendor identity on every request, from the
// X-Vendor-ID header or the vendor_id query parameter. Requests without
// one are rejected: there is no unscoped access to invoice data.
func VendorScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vendorID := r.Header.Get("X-Vendor-ID")
		if vendorID == "" {
			vendorID = r.URL.Query().Get("vendor_id")
		}
		if vendorID == "" {
			http.Error(w, `{"error":"missing vendor identity: set X-Vendor-ID"}`, http.StatusBadRequest)
			return
		}
		ctx := context.WithValue(r.Context(), vendorIDKey, vendorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogger logs one line per request with timing and status.
func RequestLogger(logger *observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", chimiddleware.GetReqID(r.Context())).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}

// CORS allows cross-origin access for browser clients.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Vendor-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
