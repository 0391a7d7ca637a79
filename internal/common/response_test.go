package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	Data(rr, http.StatusAccepted, map[string]string{"status": "queued"}, map[string]any{"generatedAt": "2026-01-01T00:00:00Z"})
	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.JSONEq(t, `{"data":{"status":"queued"},"generatedAt":"2026-01-01T00:00:00Z"}`, rr.Body.String())
}

func TestPagedIncludesTotals(t *testing.T) {
	rr := httptest.NewRecorder()
	Paged(rr, []string{"rate-a"}, NewPagination(2, 1, 3))
	require.JSONEq(t, `{"data":["rate-a"],"pagination":{"page":2,"per_page":1,"total_items":3,"total_pages":3}}`, rr.Body.String())
}

func TestNewPagination(t *testing.T) {
	require.Equal(t, 0, NewPagination(1, 50, 0).TotalPages)
	require.Equal(t, 1, NewPagination(1, 50, 50).TotalPages)
	require.Equal(t, 2, NewPagination(1, 50, 51).TotalPages)
	require.Equal(t, 0, NewPagination(1, 0, 10).TotalPages)
}

func TestParsePagination(t *testing.T) {
	page, per := ParsePagination(httptest.NewRequest(http.MethodGet, "/?page=3&limit=25", nil), 10)
	require.Equal(t, 3, page)
	require.Equal(t, 25, per)

	page, per = ParsePagination(httptest.NewRequest(http.MethodGet, "/?page=-1&limit=abc", nil), 10)
	require.Equal(t, 1, page)
	require.Equal(t, 10, per)
}
