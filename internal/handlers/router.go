package handlers

import (
	"github.com/gin-gonic/gin"

	"lotto/internal/metrics"
)

// NewRouter assembles the gin engine with middleware and all routes.
func NewRouter(h *HTTPHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), RequestID(), metrics.HTTPMiddleware())

	h.RegisterPublicRoutes(r)

	tenantRoutes := r.Group("/")
	tenantRoutes.Use(h.TenantMiddleware())
	h.RegisterTenantRoutes(tenantRoutes)
	return r
}
