package security

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/noah-isme/tour-inventory/internal/common"
)

// BasicAuth guards operator-only routes such as catalog refresh and pprof.
// An empty User disables the check.
type BasicAuth struct {
	User     string
	Password string
	Realm    string
}

// Middleware rejects requests whose credentials do not match.
func (b BasicAuth) Middleware(next http.Handler) http.Handler {
	user := strings.TrimSpace(b.User)
	if user == "" {
		return next
	}
	realm := b.Realm
	if realm == "" {
		realm = "restricted"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(b.Password)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "credentials required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
