// Package response writes the JSON error envelope shared by the handlers.
package response

import (
	"net/http"
	"strconv"

	"rfp-backend/pkg/apperr"

	"github.com/gin-gonic/gin"
)

var messages = map[string]string{
	"validation":           "Invalid request",
	"not_found":            "Resource not found",
	"malformed_response":   "AI returned an unusable response",
	"timeout":              "AI service timed out",
	"upstream_unavailable": "Upstream service unavailable",
	"persistence":          "Database error",
	"internal":             "Internal server error",
}

// Error answers with {"error", "details"} and the status of the error kind.
func Error(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{
		"error":   messages[apperr.Kind(err)],
		"details": err.Error(),
	})
}

// ParseID reads a positive integer path parameter. On failure it writes a
// 400 response and returns false.
func ParseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name, "details": c.Param(name)})
		return 0, false
	}
	return uint(id), true
}
