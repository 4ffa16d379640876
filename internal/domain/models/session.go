// Package models defines the domain types shared across the console's
// services: session credential bundles, cluster identities, and the
// schema/table descriptors returned by the tabular store.
package models

import "time"

// SessionBundle is the set of facts proving a user is authenticated against
// a specific VAST cluster and tenant. It is minted at login, serialized into
// a signed token, and immutable afterwards.
type SessionBundle struct {
	Username     string
	VastHost     string
	VastPort     int
	Tenant       string
	AccessToken  string
	RefreshToken string
}

// SessionClaims is a verified SessionBundle plus the timestamps the codec
// stamped at mint time.
type SessionClaims struct {
	SessionBundle
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// User is the client-visible subset of a session. The raw cluster tokens
// never leave the signed session token.
type User struct {
	Username string `json:"username"`
	VastHost string `json:"vastHost"`
	VastPort int    `json:"vastPort"`
	Tenant   string `json:"tenant"`
}

// User projects the claims onto their client-visible shape.
func (c *SessionClaims) User() User {
	return User{
		Username: c.Username,
		VastHost: c.VastHost,
		VastPort: c.VastPort,
		Tenant:   c.Tenant,
	}
}

// ClusterSession is a cached identity against a VAST cluster, keyed by
// host:port:tenant. Entries older than the session TTL are treated as
// absent.
type ClusterSession struct {
	Host         string
	Port         int
	Tenant       string
	Username     string
	AccessToken  string
	RefreshToken string
	CreatedAt    time.Time
}
