package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/tutoring-service/internal/models"
	"github.com/SAP-F-2025/tutoring-service/internal/services"
	"github.com/SAP-F-2025/tutoring-service/internal/utils"
	"github.com/SAP-F-2025/tutoring-service/internal/validator"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	BaseHandler
	adminService services.AdminService
	validator    *validator.Validator
}

func NewAdminHandler(adminService services.AdminService, validator *validator.Validator, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  NewBaseHandler(logger),
		adminService: adminService,
		validator:    validator,
	}
}

type TutorApprovalRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

type ModerateReviewRequest struct {
	Action models.ModerationAction `json:"action" validate:"required,review_action"`
}

func (h *AdminHandler) PendingTutors(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	tutors, err := h.adminService.PendingTutors(c.Request.Context(), principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tutors)
}

// SetTutorApproval approves or rejects a tutor application
// @Summary Approve or reject tutor
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Tutor ID"
// @Param body body TutorApprovalRequest true "Decision"
// @Success 200 {object} models.UserProfile
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/tutors/{id}/approve [put]
func (h *AdminHandler) SetTutorApproval(c *gin.Context) {
	tutorID := ParseStringIDParam(c, "id")
	if tutorID == "" {
		return
	}
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req TutorApprovalRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Setting tutor approval", "tutor_id", tutorID, "approved", *req.Approved)

	profile, err := h.adminService.SetTutorApproval(c.Request.Context(), principal, tutorID, *req.Approved)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *AdminHandler) PendingReviews(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	reviews, err := h.adminService.PendingReviews(c.Request.Context(), principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *AdminHandler) ApprovedReviews(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	reviews, err := h.adminService.ApprovedReviews(c.Request.Context(), principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// ModerateReview approves or deletes a review
// @Summary Moderate review
// @Tags admin
// @Accept json
// @Param id path string true "Review ID"
// @Param body body ModerateReviewRequest true "approve or delete"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/reviews/{id} [put]
func (h *AdminHandler) ModerateReview(c *gin.Context) {
	reviewID := ParseStringIDParam(c, "id")
	if reviewID == "" {
		return
	}
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req ModerateReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Moderating review", "review_id", reviewID, "action", req.Action)

	if err := h.adminService.ModerateReview(c.Request.Context(), principal, reviewID, req.Action); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) AllUsers(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	role, ok := parseRoleQuery(c)
	if !ok {
		return
	}

	users, err := h.adminService.AllUsers(c.Request.Context(), principal, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) UserDetail(c *gin.Context) {
	userID := ParseStringIDParam(c, "id")
	if userID == "" {
		return
	}
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	detail, err := h.adminService.UserDetail(c.Request.Context(), principal, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// ExportUsers downloads the user list as an XLSX workbook.
func (h *AdminHandler) ExportUsers(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	role, ok := parseRoleQuery(c)
	if !ok {
		return
	}

	data, err := h.adminService.ExportUsers(c.Request.Context(), principal, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="users.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
