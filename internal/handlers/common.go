package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/tutoring-service/internal/models"
	"github.com/SAP-F-2025/tutoring-service/internal/services"
	"github.com/SAP-F-2025/tutoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// Error codes returned in ErrorResponse.Code
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeAuthorization  = "AUTHORIZATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeStorage        = "STORAGE_ERROR"
	CodeInternal       = "INTERNAL_ERROR"
)

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetString("request_id"),
		"user_id", c.GetString("user_id"),
	}
	fields = append(fields, additionalFields...)

	h.logger.Debug(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetString("request_id"),
		"user_id", c.GetString("user_id"),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)

	h.logger.LogError(err, message, fields...)
}

// RespondWithError sends a consistent error response
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, code, message string, details ...interface{}) {
	resp := ErrorResponse{
		Message: message,
		Code:    code,
	}
	if len(details) > 0 {
		resp.Details = details[0]
	}
	c.AbortWithStatusJSON(statusCode, resp)
}

// bindJSON decodes the body into dest, answering 400 on malformed payloads.
func (h *BaseHandler) bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, CodeValidation, "Invalid request payload", err.Error())
		return false
	}
	return true
}

// principal returns the caller set by AuthMiddleware.
func (h *BaseHandler) principal(c *gin.Context) (models.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		h.RespondWithError(c, http.StatusUnauthorized, CodeAuthentication, "User not authenticated")
		return models.Principal{}, false
	}
	principal, ok := value.(models.Principal)
	if !ok {
		h.RespondWithError(c, http.StatusUnauthorized, CodeAuthentication, "User not authenticated")
		return models.Principal{}, false
	}
	return principal, true
}

// handleServiceError maps service errors onto HTTP statuses and codes
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, CodeValidation, "Validation failed", validationErrors)
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		h.RespondWithError(c, http.StatusUnprocessableEntity, businessRuleError.Rule, businessRuleError.Message, businessRuleError.Context)
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		h.RespondWithError(c, http.StatusForbidden, CodeAuthorization, "Access denied", map[string]interface{}{
			"resource": permissionError.Resource,
			"action":   permissionError.Action,
			"reason":   permissionError.Reason,
		})
		return
	}

	switch {
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusBadRequest, CodeValidation, err.Error())
	case services.IsUnauthorized(err):
		h.RespondWithError(c, http.StatusUnauthorized, CodeAuthentication, err.Error())
	case services.IsForbidden(err):
		h.RespondWithError(c, http.StatusForbidden, CodeAuthorization, err.Error())
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, CodeNotFound, err.Error())
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, CodeConflict, err.Error())
	case services.IsStorage(err):
		h.LogError(c, err, "Storage failure")
		h.RespondWithError(c, http.StatusInternalServerError, CodeStorage, "Storage unavailable")
	default:
		h.LogError(c, err, "Unhandled service error")
		h.RespondWithError(c, http.StatusInternalServerError, CodeInternal, "Internal server error")
	}
}
