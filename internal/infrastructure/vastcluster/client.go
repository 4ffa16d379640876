// Package vastcluster implements the login and liveness round trips against
// a VAST cluster's management REST API, plus the per-cluster identity cache.
package vastcluster

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/snowch/vast-sp-console/internal/domain/models"
	"github.com/snowch/vast-sp-console/internal/domain/service"
	"github.com/snowch/vast-sp-console/pkg/constants"
	apperrors "github.com/snowch/vast-sp-console/pkg/errors"
	"github.com/snowch/vast-sp-console/pkg/logger"
)

// Client talks to VAST cluster management APIs. Authenticated identities are
// cached per host:port:tenant for the session TTL and evicted lazily.
type Client struct {
	httpClient   *http.Client
	sessions     *gocache.Cache
	log          logger.Logger
	probeTimeout time.Duration
	loginTimeout time.Duration
}

var _ service.ClusterAuthService = (*Client)(nil)

// New creates a cluster client. Certificate verification is usually skipped
// because clusters ship self-signed certificates.
func New(skipTLSVerify bool, log logger.Logger) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: skipTLSVerify},
	}
	return &Client{
		httpClient:   &http.Client{Transport: transport},
		sessions:     gocache.New(constants.ClusterSessionTTL, 30*time.Minute),
		log:          log,
		probeTimeout: constants.ClusterProbeTimeout,
		loginTimeout: constants.ClusterLoginTimeout,
	}
}

func baseURL(host string, port int) string {
	return fmt.Sprintf("https://%s:%d/api", host, port)
}

func sessionKey(host string, port int, tenant string) string {
	return fmt.Sprintf("%s:%d:%s", host, port, tenant)
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	Message string `json:"message"`
}

// Authenticate logs in against the cluster's token endpoint. A short
// reachability probe runs first so an unreachable host fails in seconds
// instead of masking the problem behind the longer login timeout.
func (c *Client) Authenticate(ctx context.Context, host string, port int, username, password, tenant string) (*models.ClusterSession, error) {
	if err := c.probe(ctx, host, port); err != nil {
		return nil, err
	}

	endpoint := baseURL(host, port) + "/token/"
	if tenant != "" && tenant != "default" {
		endpoint = fmt.Sprintf("%s/token/%s", baseURL(host, port), tenant)
	}

	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, apperrors.Internal("failed to encode login request").WithCause(err)
	}

	loginCtx, cancel := context.WithTimeout(ctx, c.loginTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(loginCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Internal("failed to build login request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, "VAST cluster login")
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != http.StatusOK {
		return nil, classifyLoginStatus(resp.StatusCode, payload)
	}

	var token tokenResponse
	if err := json.Unmarshal(payload, &token); err != nil || token.Access == "" || token.Refresh == "" {
		return nil, apperrors.Internal("malformed token response from VAST cluster")
	}

	session := &models.ClusterSession{
		Host:         host,
		Port:         port,
		Tenant:       tenant,
		Username:     username,
		AccessToken:  token.Access,
		RefreshToken: token.Refresh,
		CreatedAt:    time.Now(),
	}
	c.sessions.Set(sessionKey(host, port, tenant), session, gocache.DefaultExpiration)

	c.log.Info(ctx, "authenticated against VAST cluster",
		logger.String("host", host),
		logger.Int("port", port),
		logger.String("tenant", tenant),
		logger.String("username", username),
	)
	return session, nil
}

// probe performs a lightweight reachability check with a short deadline.
func (c *Client) probe(ctx context.Context, host string, port int) error {
	probeCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, baseURL(host, port)+"/", nil)
	if err != nil {
		return apperrors.Internal("failed to build probe request").WithCause(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err, "VAST cluster probe")
	}
	// Any HTTP response proves reachability; the status does not matter.
	resp.Body.Close()
	return nil
}

// VerifyToken checks token liveness with a cheap authenticated read. A dead
// token does not evict the cached identity; entries age out on their own.
func (c *Client) VerifyToken(ctx context.Context, accessToken, host string, port int) (bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, baseURL(host, port)+"/tenants/configured_idp/", nil)
	if err != nil {
		return false, apperrors.Internal("failed to build verify request").WithCause(err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, classifyTransportError(err, "VAST cluster token check")
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

// GetTenants lists the cluster's tenants using the cached identity.
func (c *Client) GetTenants(ctx context.Context, host string, port int, tenant string) (json.RawMessage, error) {
	return c.authenticatedGet(ctx, host, port, tenant, "/tenants/")
}

// GetVipPools lists the cluster's VIP pools using the cached identity.
func (c *Client) GetVipPools(ctx context.Context, host string, port int, tenant string) (json.RawMessage, error) {
	return c.authenticatedGet(ctx, host, port, tenant, "/vippools/")
}

func (c *Client) authenticatedGet(ctx context.Context, host string, port int, tenant, path string) (json.RawMessage, error) {
	session := c.cachedSession(host, port, tenant)
	if session == nil {
		return nil, apperrors.Unauthenticated("no authenticated session found")
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.loginTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, baseURL(host, port)+path, nil)
	if err != nil {
		return nil, apperrors.Internal("failed to build cluster request").WithCause(err)
	}
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, "VAST cluster request")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, apperrors.Internal("failed to read cluster response").WithCause(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Newf(apperrors.KindInternal, "VAST cluster returned HTTP %d", resp.StatusCode)
	}
	return json.RawMessage(payload), nil
}

// cachedSession returns the identity for host:port:tenant, or nil when it is
// absent or older than the session TTL.
func (c *Client) cachedSession(host string, port int, tenant string) *models.ClusterSession {
	value, ok := c.sessions.Get(sessionKey(host, port, tenant))
	if !ok {
		return nil
	}
	return value.(*models.ClusterSession)
}

func classifyLoginStatus(status int, payload []byte) error {
	switch {
	case status == http.StatusUnauthorized:
		return apperrors.Unauthenticated("invalid credentials")
	case status == http.StatusForbidden:
		return apperrors.Forbidden("access to the cluster is forbidden")
	case status == http.StatusNotFound:
		return apperrors.NotFound("VAST API endpoint not found; check host and port")
	case status >= 500:
		return apperrors.Unavailable("VAST cluster returned a server error")
	default:
		var remote struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload, &remote); err == nil && remote.Message != "" {
			return apperrors.Newf(apperrors.KindInternal, "authentication failed: %s", remote.Message)
		}
		return apperrors.Newf(apperrors.KindInternal, "authentication failed: HTTP %d", status)
	}
}

func classifyTransportError(err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Newf(apperrors.KindUpstreamTimeout, "%s timed out", op).WithCause(err)
	}
	return apperrors.Newf(apperrors.KindUpstreamConnection, "%s failed: cannot reach host", op).WithCause(err)
}
