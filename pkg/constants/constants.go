// Package constants defines shared default values and context keys for the
// VAST SP console backend.
package constants

import "time"

// Service identity.
const (
	ServiceName    = "vast-sp-console"
	ServiceVersion = "1.0.0"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Rate limiting defaults: 100 requests per trailing 15 minutes per client.
const (
	DefaultRateLimitMaxCalls = 100
	DefaultRateLimitWindow   = 15 * time.Minute
)

// Remote cluster timeouts. The probe is deliberately short so an unreachable
// host is diagnosed before the longer login round trip is attempted.
const (
	ClusterProbeTimeout = 5 * time.Second
	ClusterLoginTimeout = 15 * time.Second
)

// ClusterSessionTTL is how long a cached cluster identity stays usable.
const ClusterSessionTTL = 8 * time.Hour

// StoreRequestTimeout bounds every call against the tabular store.
const StoreRequestTimeout = 30 * time.Second

// DefaultTokenLifetime is used when no session token lifetime is configured.
const DefaultTokenLifetime = "8h"

// ContextKey is the type for request-scoped context keys.
type ContextKey string

const (
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyClaims    ContextKey = "session_claims"
)

// UnknownClientKey buckets all traffic whose peer address cannot be
// determined. Address-less clients share one rate-limit budget.
const UnknownClientKey = "unknown"
