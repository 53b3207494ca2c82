package daemon

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"primetime/internal/api"
)

// requireAuth guards an API handler with the configured bearer token. An
// empty token disables the check; the daemon then trusts whatever reaches
// the bind address.
func requireAuth(token string, next http.HandlerFunc) http.HandlerFunc {
	if token == "" {
		return next
	}
	expected := []byte(token)
	return func(w http.ResponseWriter, r *http.Request) {
		presented, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "unauthorized"})
			return
		}
		next(w, r)
	}
}
