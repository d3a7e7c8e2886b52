package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/tutoring-service/internal/models"
	"github.com/SAP-F-2025/tutoring-service/internal/services"
	"github.com/SAP-F-2025/tutoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	BaseHandler
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService, logger utils.Logger) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:         NewBaseHandler(logger),
		notificationService: notificationService,
	}
}

type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	list, err := h.notificationService.List(c.Request.Context(), principal)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}

	c.JSON(http.StatusOK, NotificationListResponse{Notifications: list, UnreadCount: unread})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID := ParseStringIDParam(c, "id")
	if notificationID == "" {
		return
	}
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), principal, notificationID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAllRead(c.Request.Context(), principal); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
