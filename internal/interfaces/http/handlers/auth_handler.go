package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snowch/vast-sp-console/internal/application/dto"
	"github.com/snowch/vast-sp-console/internal/application/service"
	"github.com/snowch/vast-sp-console/internal/interfaces/http/middleware"
	"github.com/snowch/vast-sp-console/pkg/errors"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService service.AuthAppService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthAppService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates cluster credentials and returns a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, errors.InvalidArgument("request body is missing required fields").WithCause(err))
		return
	}
	if fields := req.Validate(); fields != nil {
		SendValidationError(c, fields)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		SendError(c, err)
		return
	}
	SendSuccess(c, http.StatusOK, result)
}

// Logout ends the client's session. Session tokens are stateless, so there
// is nothing to revoke server-side; the client discards the token.
func (h *AuthHandler) Logout(c *gin.Context) {
	SendSuccess(c, http.StatusOK, gin.H{"message": "logged out"})
}

// Verify revalidates the session token against the cluster and returns the
// user it belongs to.
func (h *AuthHandler) Verify(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		SendError(c, errors.Unauthenticated("authorization header with a bearer token is required"))
		return
	}

	user, err := h.authService.Verify(c.Request.Context(), token)
	if err != nil {
		SendError(c, err)
		return
	}
	SendSuccess(c, http.StatusOK, gin.H{"valid": true, "user": user})
}

// Me returns the identity decoded from the session token without a cluster
// round trip.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		SendError(c, errors.Unauthenticated("no session"))
		return
	}
	SendSuccess(c, http.StatusOK, claims.User())
}
