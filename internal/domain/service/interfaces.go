// Package service declares the interfaces consumed by the application and
// HTTP layers. Implementations live under internal/infrastructure.
package service

import (
	"context"
	"encoding/json"

	"github.com/snowch/vast-sp-console/internal/domain/models"
)

// TokenCodec mints and verifies signed session tokens. Mint stamps the
// issued-at and expires-at timestamps; Verify rejects tampered tokens with
// an unauthenticated "invalid" failure and stale ones with "expired".
type TokenCodec interface {
	Mint(bundle *models.SessionBundle) (string, error)
	Verify(token string) (*models.SessionClaims, error)
}

// ClusterAuthService performs the login and liveness round trips against a
// VAST cluster's management API and owns the per-cluster identity cache.
type ClusterAuthService interface {
	// Authenticate probes reachability, posts credentials to the tenant
	// token endpoint, and caches the resulting identity.
	Authenticate(ctx context.Context, host string, port int, username, password, tenant string) (*models.ClusterSession, error)

	// VerifyToken reports whether an access token is still accepted by the
	// cluster. A false result does not evict the cached identity.
	VerifyToken(ctx context.Context, accessToken, host string, port int) (bool, error)

	// GetTenants and GetVipPools require an unexpired cached identity and
	// pass the cluster's response through untouched.
	GetTenants(ctx context.Context, host string, port int, tenant string) (json.RawMessage, error)
	GetVipPools(ctx context.Context, host string, port int, tenant string) (json.RawMessage, error)
}

// StoreService exposes schema and table administration on the tabular
// store. All failures come back already classified into the API error
// taxonomy.
type StoreService interface {
	ConnectionInfo(ctx context.Context) models.ConnectionInfo
	TestConnection(ctx context.Context) error
	CreateSchema(ctx context.Context, name string, failIfExists bool) (*models.Schema, error)
	ListSchemas(ctx context.Context) ([]models.Schema, error)
	GetSchema(ctx context.Context, name string) (*models.Schema, error)
	DeleteSchema(ctx context.Context, name string) error
	CreateTable(ctx context.Context, schemaName, tableName string, columns []models.Column) (*models.Table, error)
}

// RateLimitService is sliding-window admission control keyed by client.
type RateLimitService interface {
	// Allow records the request and reports whether it is admitted. A
	// rejected request is not recorded against the window.
	Allow(ctx context.Context, clientKey string) (bool, error)
}
