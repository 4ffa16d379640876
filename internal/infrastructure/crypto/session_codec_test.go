package crypto

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowch/vast-sp-console/internal/domain/models"
	apperrors "github.com/snowch/vast-sp-console/pkg/errors"
)

func testBundle() *models.SessionBundle {
	return &models.SessionBundle{
		Username:     "admin",
		VastHost:     "10.0.0.5",
		VastPort:     443,
		Tenant:       "default",
		AccessToken:  "cluster-access-token",
		RefreshToken: "cluster-refresh-token",
	}
}

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec([]byte("unit-test-secret"), time.Hour)

	token, err := codec.Mint(testBundle())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "10.0.0.5", claims.VastHost)
	assert.Equal(t, 443, claims.VastPort)
	assert.Equal(t, "default", claims.Tenant)
	assert.Equal(t, "cluster-access-token", claims.AccessToken)
	assert.Equal(t, "cluster-refresh-token", claims.RefreshToken)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt))
}

func TestCodecExpiry(t *testing.T) {
	codec := NewCodec([]byte("unit-test-secret"), time.Hour)
	minted := time.Now()

	token, err := codec.Mint(testBundle())
	require.NoError(t, err)

	t.Run("valid just before expiry", func(t *testing.T) {
		codec.now = func() time.Time { return minted.Add(59 * time.Minute) }
		_, err := codec.Verify(token)
		assert.NoError(t, err)
	})

	t.Run("expired just after expiry", func(t *testing.T) {
		codec.now = func() time.Time { return minted.Add(61 * time.Minute) }
		_, err := codec.Verify(token)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrSessionExpired))
		assert.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))
	})
}

func TestCodecTamper(t *testing.T) {
	codec := NewCodec([]byte("unit-test-secret"), time.Hour)

	token, err := codec.Mint(testBundle())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	t.Run("corrupt signature", func(t *testing.T) {
		sig := []byte(parts[2])
		sig[0] ^= 0x01
		tampered := parts[0] + "." + parts[1] + "." + string(sig)

		claims, err := codec.Verify(tampered)
		require.Error(t, err)
		assert.Nil(t, claims)
		assert.True(t, errors.Is(err, ErrSessionInvalid))
	})

	t.Run("foreign secret", func(t *testing.T) {
		other := NewCodec([]byte("a-different-secret"), time.Hour)
		foreign, err := other.Mint(testBundle())
		require.NoError(t, err)

		claims, err := codec.Verify(foreign)
		require.Error(t, err)
		assert.Nil(t, claims)
		assert.True(t, errors.Is(err, ErrSessionInvalid))
	})

	t.Run("garbage input", func(t *testing.T) {
		claims, err := codec.Verify("not-a-token")
		require.Error(t, err)
		assert.Nil(t, claims)
		assert.True(t, errors.Is(err, ErrSessionInvalid))
	})
}
