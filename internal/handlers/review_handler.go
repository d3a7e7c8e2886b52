package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/tutoring-service/internal/services"
	"github.com/SAP-F-2025/tutoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	BaseHandler
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService, logger utils.Logger) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   NewBaseHandler(logger),
		reviewService: reviewService,
	}
}

// SubmitReview queues a review for moderation
// @Summary Submit review
// @Tags reviews
// @Accept json
// @Produce json
// @Param body body services.SubmitReviewRequest true "Review"
// @Success 201 {object} models.Review
// @Failure 400 {object} ErrorResponse
// @Router /reviews [post]
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req services.SubmitReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.Submit(c.Request.Context(), principal, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) TutorReviews(c *gin.Context) {
	tutorID := ParseStringIDParam(c, "tutorId")
	if tutorID == "" {
		return
	}

	reviews, err := h.reviewService.ReviewsForTutor(c.Request.Context(), tutorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) StudentReviews(c *gin.Context) {
	studentID := ParseStringIDParam(c, "studentId")
	if studentID == "" {
		return
	}

	reviews, err := h.reviewService.ReviewsForStudent(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}
