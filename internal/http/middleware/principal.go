package middleware

import (
	"net/http"

	"github.com/tapcellar/beer-catalog/pkg/principal"
)

// Principal lifts the acting-principal header into the request context.
// Authentication itself happens upstream of this service.
func Principal() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p := r.Header.Get(principal.Header); p != "" {
				r = r.WithContext(principal.NewContext(r.Context(), p))
			}

			next.ServeHTTP(w, r)
		})
	}
}
