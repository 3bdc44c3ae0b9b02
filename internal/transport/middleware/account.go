package middleware

import (
	"net/http"
	"strconv"

	"github.com/hrlink/people-sync/internal"
	"github.com/hrlink/people-sync/pkg/logger"
)

// AccountContext resolves the calling person account from the gateway-set
// header. Authentication itself happens upstream; this layer only needs the
// account id to refuse operations on contracts the caller does not own.
func AccountContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-Account-ID")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		accountID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := internal.ContextWithAccountID(r.Context(), accountID)
		ctx = logger.With(ctx, "accountID", accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
