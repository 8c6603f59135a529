package handlers

import (
	"net/http"

	"machly/services/notification"

	"github.com/gin-gonic/gin"
)

// NotificationHandler serves the authenticated notification feed.
type NotificationHandler struct {
	NotificationService notification.NotificationService
}

func NewNotificationHandler(svc notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{NotificationService: svc}
}

// ListHandler handles GET /notifications.
func (h *NotificationHandler) ListHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	notifications, err := h.NotificationService.ListForUser(actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkReadHandler handles PUT /notifications/:id/read.
func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	if err := h.NotificationService.MarkRead(actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification read"})
}
