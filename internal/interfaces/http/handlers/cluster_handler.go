package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snowch/vast-sp-console/internal/domain/service"
	"github.com/snowch/vast-sp-console/internal/interfaces/http/middleware"
	"github.com/snowch/vast-sp-console/pkg/errors"
)

// ClusterHandler proxies read-only cluster management queries for the
// authenticated session's cluster.
type ClusterHandler struct {
	cluster service.ClusterAuthService
}

// NewClusterHandler creates a new ClusterHandler.
func NewClusterHandler(cluster service.ClusterAuthService) *ClusterHandler {
	return &ClusterHandler{cluster: cluster}
}

// Tenants returns the cluster's tenant list untouched.
func (h *ClusterHandler) Tenants(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		SendError(c, errors.Unauthenticated("no session"))
		return
	}

	raw, err := h.cluster.GetTenants(c.Request.Context(), claims.VastHost, claims.VastPort, claims.Tenant)
	if err != nil {
		SendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// VipPools returns the cluster's VIP pool list untouched.
func (h *ClusterHandler) VipPools(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		SendError(c, errors.Unauthenticated("no session"))
		return
	}

	raw, err := h.cluster.GetVipPools(c.Request.Context(), claims.VastHost, claims.VastPort, claims.Tenant)
	if err != nil {
		SendError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
