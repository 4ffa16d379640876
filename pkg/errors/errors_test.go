package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindUnauthenticated:    http.StatusUnauthorized,
		KindNotFound:           http.StatusNotFound,
		KindAlreadyExists:      http.StatusConflict,
		KindInvalidArgument:    http.StatusBadRequest,
		KindForbidden:          http.StatusForbidden,
		KindTooLarge:           http.StatusRequestEntityTooLarge,
		KindUnavailable:        http.StatusServiceUnavailable,
		KindUpstreamTimeout:    http.StatusGatewayTimeout,
		KindUpstreamConnection: http.StatusBadGateway,
		KindRateLimited:        http.StatusTooManyRequests,
		KindInternal:           http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.HTTPStatus(), string(kind))
	}

	assert.Equal(t, http.StatusInternalServerError, Kind("bogus").HTTPStatus())
}

func TestWithCausePreservesChain(t *testing.T) {
	sentinel := errors.New("dial refused")
	appErr := Unavailable("store unreachable").WithCause(sentinel)

	assert.True(t, errors.Is(appErr, sentinel))
	assert.Contains(t, appErr.Error(), "dial refused")

	// WithCause does not mutate the original.
	base := NotFound("missing")
	derived := base.WithCause(sentinel)
	assert.NoError(t, base.Unwrap())
	assert.Error(t, derived.Unwrap())
}

func TestAsAppError(t *testing.T) {
	appErr := Forbidden("read-only tenant")
	wrapped := fmt.Errorf("handling request: %w", appErr)

	got, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Same(t, appErr, got)

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("missing")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.True(t, IsKind(Unauthenticated("nope"), KindUnauthenticated))
	assert.False(t, IsKind(Unauthenticated("nope"), KindForbidden))
}
