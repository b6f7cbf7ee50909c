package helpers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ParseIDParam reads a positive int64 path parameter.
func ParseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ParseLimit reads the "limit" query parameter, clamped to MaxListLimit.
func ParseLimit(c *gin.Context, fallback int) int {
	limitStr := strings.TrimSpace(c.Query("limit"))
	if limitStr == "" {
		return fallback
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return fallback
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// CurrentUserID returns the authenticated user id stored by the auth middleware.
func CurrentUserID(c *gin.Context) (int64, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	userID, ok := value.(int64)
	return userID, ok && userID > 0
}
