package vastcluster

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/snowch/vast-sp-console/pkg/errors"
	"github.com/snowch/vast-sp-console/pkg/logger"
)

// fakeCluster stands in for a VAST management API over TLS.
func fakeCluster(t *testing.T, handler http.Handler) (string, int) {
	t.Helper()
	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return u.Hostname(), port
}

func clusterMux(t *testing.T, loginStatus int, loginBody string) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/token/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(loginStatus)
		_, _ = w.Write([]byte(loginBody))
	})
	return mux
}

func TestAuthenticateSuccessCachesSession(t *testing.T) {
	mux := clusterMux(t, http.StatusOK, `{"access":"acc-1","refresh":"ref-1"}`)
	mux.HandleFunc("/api/tenants/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer acc-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"default"}]`))
	})
	host, port := fakeCluster(t, mux)

	client := New(true, logger.NewNop())
	ctx := context.Background()

	session, err := client.Authenticate(ctx, host, port, "admin", "secret", "default")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", session.AccessToken)
	assert.Equal(t, "ref-1", session.RefreshToken)
	assert.Equal(t, "admin", session.Username)

	// The cached identity serves downstream calls.
	raw, err := client.GetTenants(ctx, host, port, "default")
	require.NoError(t, err)
	var tenants []map[string]string
	require.NoError(t, json.Unmarshal(raw, &tenants))
	assert.Len(t, tenants, 1)
}

func TestAuthenticateInvalidCredentials(t *testing.T) {
	host, port := fakeCluster(t, clusterMux(t, http.StatusUnauthorized, `{"message":"bad login"}`))

	client := New(true, logger.NewNop())
	_, err := client.Authenticate(context.Background(), host, port, "admin", "wrong", "default")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))
}

func TestAuthenticateMalformedTokenResponse(t *testing.T) {
	// Access token present but refresh token missing.
	host, port := fakeCluster(t, clusterMux(t, http.StatusOK, `{"access":"acc-only"}`))

	client := New(true, logger.NewNop())
	_, err := client.Authenticate(context.Background(), host, port, "admin", "secret", "default")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
}

func TestAuthenticateUnreachableHostShortCircuits(t *testing.T) {
	// Reserve a port and close it so the probe gets connection refused.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().(*net.TCPAddr)
	require.NoError(t, l.Close())

	client := New(true, logger.NewNop())
	_, err = client.Authenticate(context.Background(), "127.0.0.1", addr.Port, "admin", "secret", "default")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUpstreamConnection, apperrors.KindOf(err))
}

func TestGetTenantsWithoutSession(t *testing.T) {
	client := New(true, logger.NewNop())
	_, err := client.GetTenants(context.Background(), "10.1.2.3", 443, "default")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))
}

func TestVerifyToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tenants/configured_idp/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer live-token" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})
	host, port := fakeCluster(t, mux)

	client := New(true, logger.NewNop())

	ok, err := client.VerifyToken(context.Background(), "live-token", host, port)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.VerifyToken(context.Background(), "dead-token", host, port)
	require.NoError(t, err)
	assert.False(t, ok)
}
