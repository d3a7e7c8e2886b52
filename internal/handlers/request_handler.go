package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/tutoring-service/internal/services"
	"github.com/SAP-F-2025/tutoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	BaseHandler
	requestService services.RequestService
}

func NewRequestHandler(requestService services.RequestService, logger utils.Logger) *RequestHandler {
	return &RequestHandler{
		BaseHandler:    NewBaseHandler(logger),
		requestService: requestService,
	}
}

// CreateRequest books a tutoring session
// @Summary Create tutoring request
// @Tags requests
// @Accept json
// @Produce json
// @Param body body services.CreateRequestRequest true "Request data"
// @Success 201 {object} models.TutoringRequest
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req services.CreateRequestRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating tutoring request", "tutor_id", req.TutorID)

	created, err := h.requestService.Create(c.Request.Context(), principal, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListRequests lists the caller's requests
// @Summary List own requests
// @Tags requests
// @Produce json
// @Success 200 {array} models.RequestView
// @Router /requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	views, err := h.requestService.ListForUser(c.Request.Context(), principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, views)
}

// UpdateRequest changes status and/or confirmation flags
// @Summary Update tutoring request
// @Tags requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param body body services.RequestUpdate true "Patch"
// @Success 200 {object} models.TutoringRequest
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /requests/{id} [put]
func (h *RequestHandler) UpdateRequest(c *gin.Context) {
	requestID := ParseStringIDParam(c, "id")
	if requestID == "" {
		return
	}
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var update services.RequestUpdate
	if !h.bindJSON(c, &update) {
		return
	}

	h.LogRequest(c, "Updating tutoring request", "request_id", requestID)

	updated, err := h.requestService.UpdateStatus(c.Request.Context(), principal, requestID, &update)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
