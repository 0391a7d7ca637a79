package security

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBasicAuthMiddleware(t *testing.T) {
	guard := BasicAuth{User: "ops", Password: "s3cret", Realm: "admin"}
	handler := guard.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/catalog/refresh", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, `Basic realm="admin"`, rr.Header().Get("WWW-Authenticate"))

	req := httptest.NewRequest(http.MethodPost, "/admin/catalog/refresh", nil)
	req.SetBasicAuth("ops", "wrong")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/admin/catalog/refresh", nil)
	req.SetBasicAuth("ops", "s3cret")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusAccepted, rr.Code)
}

func TestBasicAuthDisabledWithoutUser(t *testing.T) {
	handler := BasicAuth{}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}
