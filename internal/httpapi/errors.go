package httpapi

import (
	"github.com/gin-gonic/gin"
)

// Error codes returned in the errorCode field.
const (
	CodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeInvalidPayload       = "INVALID_PAYLOAD"
	CodeContractorNotFound   = "CONTRACTOR_NOT_FOUND"
	CodeDirectoryUnavailable = "DIRECTORY_UNAVAILABLE"
	CodeStoreUnavailable     = "STORE_UNAVAILABLE"
	CodeNotFound             = "NOT_FOUND"
	CodeInternal             = "INTERNAL_ERROR"
)

// abort writes the standard error envelope and stops the chain.
func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg, "errorCode": code})
}
