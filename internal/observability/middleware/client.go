package middleware

import (
	"net/http"

	"accounts/internal/netutil"
)

// WithClientMeta records the caller's IP and user agent for audit rows.
func WithClientMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := netutil.WithClient(r.Context(), netutil.Client{
			IP:        netutil.ClientIP(r),
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
