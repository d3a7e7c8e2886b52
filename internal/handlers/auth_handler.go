package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/tutoring-service/internal/services"
	"github.com/SAP-F-2025/tutoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
	}
}

// SignUp registers a student or tutor
// @Summary Sign up
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.SignUpRequest true "Registration data"
// @Success 201 {object} services.SignUpResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req services.SignUpRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Signing up", "role", req.Role)

	result, err := h.authService.SignUp(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// SignIn exchanges email and password for an access token
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.SignInRequest true "Credentials"
// @Success 200 {object} services.SignInResult
// @Failure 401 {object} ErrorResponse
// @Router /auth/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req services.SignInRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.SignIn(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Session returns the caller's profile
// @Summary Current session
// @Tags auth
// @Produce json
// @Success 200 {object} models.UserProfile
// @Failure 401 {object} ErrorResponse
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	profile, err := h.authService.Session(c.Request.Context(), principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
