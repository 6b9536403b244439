package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ai-receptionist/internal/auth"
	"ai-receptionist/internal/jobs"
	"ai-receptionist/internal/rbac"
	"ai-receptionist/pkg/logger"
)

const maxListLimit = 100

// JobHandlers exposes read access to job records. Mount behind
// auth.RequireAccessToken and rbac.RequireAnyRole(contractor, operator).
type JobHandlers struct {
	Store jobs.Store
}

func (h JobHandlers) List(c *gin.Context) {
	id, err := auth.IdentityFrom(c.Request.Context())
	if err != nil {
		abort(c, http.StatusUnauthorized, CodeUnauthorized, "identity required")
		return
	}
	contractorID, ok := rbac.ContractorScope(id, c.Query("contractor_id"))
	if !ok {
		if rbac.IsOperator(id.Role) {
			abort(c, http.StatusBadRequest, CodeInvalidPayload, "contractor_id required")
			return
		}
		abort(c, http.StatusForbidden, CodeForbidden, "forbidden")
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			abort(c, http.StatusBadRequest, CodeInvalidPayload, "limit must be a positive integer")
			return
		}
		limit = min(n, maxListLimit)
	}

	recs, err := h.Store.ListByContractor(c.Request.Context(), contractorID, limit)
	if err != nil {
		logger.FromGin(c).Error("list jobs failed", "error", err)
		abort(c, http.StatusInternalServerError, CodeStoreUnavailable, "job store unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "contractor_id": contractorID, "jobs": recs})
}

func (h JobHandlers) Get(c *gin.Context) {
	id, err := auth.IdentityFrom(c.Request.Context())
	if err != nil {
		abort(c, http.StatusUnauthorized, CodeUnauthorized, "identity required")
		return
	}

	rec, err := h.Store.GetJob(c.Request.Context(), c.Param("job_id"))
	if errors.Is(err, jobs.ErrNotFound) {
		abort(c, http.StatusNotFound, CodeNotFound, "job not found")
		return
	}
	if err != nil {
		logger.FromGin(c).Error("get job failed", "error", err)
		abort(c, http.StatusInternalServerError, CodeStoreUnavailable, "job store unavailable")
		return
	}
	// Records of other contractors are reported as missing.
	if _, ok := rbac.ContractorScope(id, rec.ContractorID); !ok {
		abort(c, http.StatusNotFound, CodeNotFound, "job not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "job": rec})
}

// AuthHandlers exchanges refresh tokens. Tokens are minted out of band
// (receptionistctl token).
type AuthHandlers struct {
	Auth *auth.Manager
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h AuthHandlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		abort(c, http.StatusBadRequest, CodeInvalidPayload, "refresh_token required")
		return
	}
	pair, err := h.Auth.Refresh(req.RefreshToken, time.Now())
	if err != nil {
		abort(c, http.StatusUnauthorized, CodeUnauthorized, "invalid refresh token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}
