package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/voice-service/internal/services"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// ParseUintParam reads a positive id from the path. On failure it writes a
// 400 response and returns 0.
func ParseUintParam(c *gin.Context, param string) uint {
	return parseUint(c, param, c.Param(param))
}

// ParseUintQuery reads a positive id from the query string. On failure it
// writes a 400 response and returns 0.
func ParseUintQuery(c *gin.Context, param string) uint {
	return parseUint(c, param, c.Query(param))
}

func parseUint(c *gin.Context, name, raw string) uint {
	raw = strings.TrimSpace(raw)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		details := "ID must be a positive integer"
		if raw == "" {
			details = "ID cannot be empty"
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name,
			Details: details,
		})
		return 0
	}
	return uint(id)
}

// ParseStringIDParam reads a non-blank string id from the path.
func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// PrincipalFromContext returns the caller set by the auth middleware. The
// zero Principal is unauthenticated.
func PrincipalFromContext(c *gin.Context) services.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(services.Principal); ok {
			return p
		}
	}
	return services.Principal{}
}

func setPrincipal(c *gin.Context, principal services.Principal) {
	c.Set(principalKey, principal)
	c.Set("user_id", principal.UserID)
}
