package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visitorCookieFrom(t *testing.T, header http.Header) *http.Cookie {
	t.Helper()
	for _, c := range (&http.Response{Header: header}).Cookies() {
		if c.Name == visitorCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie in %v", visitorCookie, header)
	return nil
}

func TestCatalogSummary(t *testing.T) {
	ts := setupTestServer(t)
	borrower, _ := ts.member(t, "reader@example.com", false)
	book := ts.book(t, "Dune")
	ts.loan(t, book.ID, borrower.ID, 7)

	resp := ts.api.Get("/api/v1/catalog/summary")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[CatalogSummaryResponse](t, resp.Body.Bytes())
	assert.True(t, env.Success)
	assert.Equal(t, 1, env.Data.NumBooks)
	assert.Equal(t, 1, env.Data.NumInstances)
	assert.Equal(t, 0, env.Data.NumInstancesAvailable)
	assert.Equal(t, int64(0), env.Data.NumVisits)

	cookie := visitorCookieFrom(t, resp.Header())
	require.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	// Returning visitors see how often they came before.
	for want := int64(1); want <= 2; want++ {
		resp = ts.api.Get("/api/v1/catalog/summary", "Cookie: "+visitorCookie+"="+cookie.Value)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, want, decode[CatalogSummaryResponse](t, resp.Body.Bytes()).Data.NumVisits)
		assert.Equal(t, cookie.Value, visitorCookieFrom(t, resp.Header()).Value)
	}

	// A new visitor starts over.
	resp = ts.api.Get("/api/v1/catalog/summary")
	assert.Equal(t, int64(0), decode[CatalogSummaryResponse](t, resp.Body.Bytes()).Data.NumVisits)
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[HealthResponse](t, resp.Body.Bytes())
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "healthy", env.Data.Components["database"].Status)
	assert.Equal(t, "healthy", env.Data.Components["sessions"].Status)
	assert.Equal(t, "healthy", env.Data.Components["search"].Status)
}

func TestHealthCheck_WithoutSearch(t *testing.T) {
	ts := setupTestServer(t)
	ts.server.services.Search = nil

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "degraded", env.Data.Status)
	assert.Equal(t, "degraded", env.Data.Components["search"].Status)
}
