package middleware

import (
	"net/http"

	"github.com/frahmantamala/warehouse-management/internal"
	"github.com/frahmantamala/warehouse-management/pkg/logger"
)

// UserContext binds the authenticated user's store to the request logger. It must
// run after the auth middleware; anonymous requests pass through untouched.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if internal.UsernameFromContext(r.Context()) == "" {
			next.ServeHTTP(w, r)
			return
		}

		storeID := internal.StoreIDFromContext(r.Context())
		if storeID == "" {
			storeID = "global"
		}
		ctx := logger.With(r.Context(), "store_id", storeID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
