package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/tutoring-service/internal/models"
	"github.com/gin-gonic/gin"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Code:    CodeValidation,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// parseRoleQuery reads ?role=, nil when absent.
func parseRoleQuery(c *gin.Context) (*models.UserRole, bool) {
	raw := strings.TrimSpace(c.Query("role"))
	if raw == "" {
		return nil, true
	}
	role := models.UserRole(raw)
	switch role {
	case models.RoleStudent, models.RoleTutor, models.RoleAdmin:
		return &role, true
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Message: "Invalid role",
		Code:    CodeValidation,
		Details: raw,
	})
	return nil, false
}

// parseFloatQuery reads an optional float query parameter.
func parseFloatQuery(c *gin.Context, name string) (*float64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name,
			Code:    CodeValidation,
			Details: raw,
		})
		return nil, false
	}
	return &value, true
}
