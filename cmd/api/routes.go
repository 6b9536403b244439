package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ai-receptionist/internal/auth"
	"ai-receptionist/internal/httpapi"
	"ai-receptionist/internal/metrics"
	"ai-receptionist/internal/rbac"
	"ai-receptionist/pkg/utils"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, a *app) {
	r.GET("/healthz", func(c *gin.Context) {
		if a.db != nil {
			if err := utils.HealthCheck(c.Request.Context(), a.db, 2*time.Second); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": "unreachable"})
				return
			}
		}
		if a.rdb != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := a.rdb.Ping(ctx).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": "unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler(a.registry)))

	// Provider webhook. Registered for every method so non-POST gets the
	// JSON 405 envelope instead of gin's default 404.
	inbound := httpapi.InboundHandler{Service: a.service, Verifier: a.verifier}
	r.Any("/api/receptionist/inbound", a.limiter.Middleware(), inbound.Handle)

	r.POST("/v1/auth/refresh", httpapi.AuthHandlers{Auth: a.auth}.Refresh)

	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(a.auth))
	v1.Use(rbac.RequireAnyRole(rbac.RoleContractor, rbac.RoleOperator))
	{
		h := httpapi.JobHandlers{Store: a.store}
		v1.GET("/jobs", h.List)
		v1.GET("/jobs/:job_id", h.Get)
	}
}
