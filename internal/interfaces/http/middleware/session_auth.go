package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/snowch/vast-sp-console/internal/application/dto"
	appservice "github.com/snowch/vast-sp-console/internal/application/service"
	"github.com/snowch/vast-sp-console/internal/domain/models"
	"github.com/snowch/vast-sp-console/pkg/constants"
	"github.com/snowch/vast-sp-console/pkg/errors"
)

// SessionAuth requires a valid Bearer session token and places the decoded
// claims in the request context. Token validity is checked locally; the
// cluster round trip belongs to the explicit verify endpoint.
func SessionAuth(auth appservice.AuthAppService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthenticated(c, "authorization header with a bearer token is required")
			return
		}

		claims, err := auth.Claims(token)
		if err != nil {
			status := http.StatusUnauthorized
			if appErr, isApp := errors.AsAppError(err); isApp {
				status = appErr.HTTPStatus()
			}
			c.AbortWithStatusJSON(status, dto.ErrorResponse(err, RequestIDFrom(c)))
			return
		}

		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyClaims, claims)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ClaimsFrom returns the session claims placed by SessionAuth, or nil.
func ClaimsFrom(c *gin.Context) *models.SessionClaims {
	claims, _ := c.Request.Context().Value(constants.ContextKeyClaims).(*models.SessionClaims)
	return claims
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *gin.Context) (string, bool) {
	return bearerToken(c)
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.ErrorResponse(errors.Unauthenticated(message), RequestIDFrom(c)))
}
