// Package crypto implements the session token codec. Session tokens are
// HS256-signed JWTs carrying the full credential bundle, including the raw
// cluster access and refresh tokens. This is the only place those
// credentials touch serialized bytes; the service itself keeps no
// server-side session state.
package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/snowch/vast-sp-console/internal/domain/models"
	"github.com/snowch/vast-sp-console/internal/domain/service"
	apperrors "github.com/snowch/vast-sp-console/pkg/errors"
)

// Verification failure causes, reachable through errors.Is on the returned
// AppError chain.
var (
	ErrSessionExpired = errors.New("session token has expired")
	ErrSessionInvalid = errors.New("session token is invalid")
)

type sessionClaims struct {
	VastHost     string `json:"vast_host"`
	VastPort     int    `json:"vast_port"`
	Tenant       string `json:"tenant"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens with a symmetric secret.
type Codec struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

var _ service.TokenCodec = (*Codec)(nil)

// NewCodec creates a codec. The lifetime has already been validated at
// startup by config.Load.
func NewCodec(secret []byte, lifetime time.Duration) *Codec {
	return &Codec{
		secret:   secret,
		lifetime: lifetime,
		now:      time.Now,
	}
}

// Mint serializes the bundle into a signed token, stamping issued-at now
// and expires-at now plus the configured lifetime.
func (c *Codec) Mint(bundle *models.SessionBundle) (string, error) {
	now := c.now()
	claims := sessionClaims{
		VastHost:     bundle.VastHost,
		VastPort:     bundle.VastPort,
		Tenant:       bundle.Tenant,
		AccessToken:  bundle.AccessToken,
		RefreshToken: bundle.RefreshToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   bundle.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", apperrors.Internal("failed to sign session token").WithCause(err)
	}
	return signed, nil
}

// Verify checks signature integrity first, then expiry, and returns the
// embedded claims unchanged. Tampered or foreign-signed tokens never yield
// partial claims.
func (c *Codec) Verify(tokenString string) (*models.SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &sessionClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrSessionInvalid
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.Unauthenticated("session token has expired").WithCause(ErrSessionExpired)
		}
		return nil, apperrors.Unauthenticated("session token is invalid").WithCause(ErrSessionInvalid)
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return nil, apperrors.Unauthenticated("session token is invalid").WithCause(ErrSessionInvalid)
	}

	result := &models.SessionClaims{
		SessionBundle: models.SessionBundle{
			Username:     claims.Subject,
			VastHost:     claims.VastHost,
			VastPort:     claims.VastPort,
			Tenant:       claims.Tenant,
			AccessToken:  claims.AccessToken,
			RefreshToken: claims.RefreshToken,
		},
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	result.ExpiresAt = claims.ExpiresAt.Time
	return result, nil
}
