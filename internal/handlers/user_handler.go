package handlers

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/tutoring-service/internal/services"
	"github.com/SAP-F-2025/tutoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// UserHandler serves profiles, tutor discovery and availability.
type UserHandler struct {
	BaseHandler
	userService         services.UserService
	availabilityService services.AvailabilityService
}

func NewUserHandler(
	userService services.UserService,
	availabilityService services.AvailabilityService,
	logger utils.Logger,
) *UserHandler {
	return &UserHandler{
		BaseHandler:         NewBaseHandler(logger),
		userService:         userService,
		availabilityService: availabilityService,
	}
}

// UpdateProfile merges the provided fields into the caller's profile
// @Summary Update own profile
// @Tags profile
// @Accept json
// @Produce json
// @Param body body services.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} ErrorResponse
// @Router /profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), principal, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// SearchTutors lists approved tutors
// @Summary Search tutors
// @Tags tutors
// @Produce json
// @Param subject query string false "Subject taught"
// @Param minRating query number false "Minimum rating"
// @Success 200 {array} models.UserProfile
// @Router /tutors/search [get]
func (h *UserHandler) SearchTutors(c *gin.Context) {
	minRating, ok := parseFloatQuery(c, "minRating")
	if !ok {
		return
	}

	tutors, err := h.userService.SearchTutors(c.Request.Context(), services.TutorSearchFilters{
		Subject:   strings.TrimSpace(c.Query("subject")),
		MinRating: minRating,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tutors)
}

func (h *UserHandler) GetTutor(c *gin.Context) {
	tutorID := ParseStringIDParam(c, "id")
	if tutorID == "" {
		return
	}

	detail, err := h.userService.GetTutor(c.Request.Context(), tutorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *UserHandler) GetStudent(c *gin.Context) {
	studentID := ParseStringIDParam(c, "id")
	if studentID == "" {
		return
	}

	detail, err := h.userService.GetStudent(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *UserHandler) GetAvailability(c *gin.Context) {
	tutorID := ParseStringIDParam(c, "id")
	if tutorID == "" {
		return
	}

	week, err := h.availabilityService.GetAvailability(c.Request.Context(), tutorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, week)
}

// SetAvailability replaces the caller's slots for one weekday.
func (h *UserHandler) SetAvailability(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req services.SetDaySlotsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Setting availability", "day", req.Day, "slots", len(req.Slots))

	if err := h.availabilityService.SetDaySlots(c.Request.Context(), principal, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
