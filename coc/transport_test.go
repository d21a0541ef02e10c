package coc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPTransport(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name    string
		baseURL string
		token   string
		errMsg  string
	}{
		{name: "valid config", baseURL: DefaultBaseURL, token: "token"},
		{name: "missing URL", baseURL: "", token: "token", errMsg: "base URL is required"},
		{name: "missing token", baseURL: DefaultBaseURL, token: "", errMsg: "API token is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport, err := NewHTTPTransport(tt.baseURL, tt.token, logger)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, transport)
		})
	}
}

func TestHTTPTransportDo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/clans/%232PPC8L2QP/warlog?limit=5", r.RequestURI)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "clashofclans-test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "max-age=600")
		w.Write([]byte(`{"items":[],"paging":{"cursors":{}}}`))
	}))
	defer server.Close()

	transport, err := NewHTTPTransport(server.URL+"/v1/", "secret-token", zerolog.Nop(), WithUserAgent("clashofclans-test"))
	require.NoError(t, err)

	resp, err := transport.Do(context.Background(), http.MethodGet, clanPath("#2PPC8L2QP", "warlog"), url.Values{"limit": {"5"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "max-age=600", resp.Header.Get("Cache-Control"))
	assert.JSONEq(t, `{"items":[],"paging":{"cursors":{}}}`, resp.Text())
}

func TestHTTPTransportReturnsErrorStatuses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"reason":"inMaintenance"}`))
	}))
	defer server.Close()

	transport, err := NewHTTPTransport(server.URL, "token", zerolog.Nop())
	require.NoError(t, err)

	resp, err := transport.Do(context.Background(), http.MethodGet, "locations", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, `{"reason":"inMaintenance"}`, resp.Text())
}

func TestHTTPTransportTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	transport, err := NewHTTPTransport(server.URL, "token", zerolog.Nop(), WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, err = transport.Do(context.Background(), http.MethodGet, "locations", nil)
	require.Error(t, err)
}

func TestClientOverHTTP(t *testing.T) {
	fixture := loadFixture(t, "search_clans.json")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/clans":
			assert.Equal(t, "coconut", r.URL.Query().Get("name"))
			w.Write(fixture)
		case "/v1/clans/#PYCGG8LY":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"reason":"notFound"}`))
		default:
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"reason":"accessDenied","message":"Invalid authorization"}`))
		}
	}))
	defer server.Close()

	client, err := NewClient("token", zerolog.Nop(), WithBaseURL(server.URL+"/v1"))
	require.NoError(t, err)
	ctx := context.Background()

	page, err := client.SearchClans(ctx, SearchClansQuery{Name: Ptr("coconut")})
	require.NoError(t, err)
	assert.Equal(t, "coconut", page.Items[0].Name)

	clan, err := client.FindClanByTag(ctx, "#PYCGG8LY")
	require.NoError(t, err)
	assert.Nil(t, clan)

	_, err = client.ListLocations(ctx, ListLocationsQuery{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsUnauthorized())
	assert.Equal(t, http.StatusForbidden, client.LastResponse().StatusCode)
}
