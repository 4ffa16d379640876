package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/snowch/vast-sp-console/internal/application/dto"
	"github.com/snowch/vast-sp-console/internal/domain/service"
	"github.com/snowch/vast-sp-console/internal/infrastructure/monitoring"
	"github.com/snowch/vast-sp-console/pkg/constants"
	"github.com/snowch/vast-sp-console/pkg/errors"
	"github.com/snowch/vast-sp-console/pkg/logger"
)

// ClientKey derives the rate-limit bucket for a request: the first address
// in X-Forwarded-For, else the peer address, else a shared "unknown" bucket.
// All address-less traffic sharing one budget is accepted coarseness.
func ClientKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return constants.UnknownClientKey
}

// RateLimit applies sliding-window admission control per client. A limiter
// backend failure fails open.
func RateLimit(limiter service.RateLimitService, metrics *monitoring.Metrics, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ClientKey(c.Request)

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Error(c.Request.Context(), "rate limiter backend failed", err)
			c.Next()
			return
		}

		if !allowed {
			if metrics != nil {
				metrics.RecordRateLimitRejection()
			}
			log.Warn(c.Request.Context(), "rate limit exceeded", logger.String("client", key))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.ErrorResponse(errors.New(errors.KindRateLimited, "too many requests, please try again later"), RequestIDFrom(c)))
			return
		}

		c.Next()
	}
}
