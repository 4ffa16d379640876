package vastdb

import (
	"context"
	"errors"

	apperrors "github.com/snowch/vast-sp-console/pkg/errors"
)

// TranslateError maps a store failure onto the closed API error taxonomy.
// Classification is by typed category, never by message matching. Failures
// that carry no known category map to Internal with a generic message; the
// caller logs the full detail server-side.
func TranslateError(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}

	// Already classified errors pass through unchanged.
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}

	switch {
	case errors.Is(err, ErrMissingBucket),
		errors.Is(err, ErrMissingSchema),
		errors.Is(err, ErrMissingTable):
		return apperrors.NotFound(err.Error()).WithCause(err)

	case errors.Is(err, ErrSchemaExists),
		errors.Is(err, ErrTableExists):
		return apperrors.AlreadyExists(err.Error()).WithCause(err)

	case errors.Is(err, ErrBadRequest):
		return apperrors.InvalidArgument(err.Error()).WithCause(err)

	case errors.Is(err, ErrForbidden):
		return apperrors.Forbidden(err.Error()).WithCause(err)

	case errors.Is(err, ErrTooLarge):
		return apperrors.New(apperrors.KindTooLarge, err.Error()).WithCause(err)

	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return apperrors.New(apperrors.KindUpstreamTimeout, "VAST Database request timed out").WithCause(err)

	case errors.Is(err, ErrConnection):
		return apperrors.New(apperrors.KindUpstreamConnection, "failed to connect to VAST Database").WithCause(err)

	case errors.Is(err, ErrUnavailable):
		return apperrors.Unavailable("VAST Database is unavailable").WithCause(err)

	default:
		return apperrors.Internal("an unexpected VAST Database error occurred").WithCause(err)
	}
}
