package controllers

import (
	"net/http"
	"strconv"

	"github.com/brfrauches/augmend-71119/services"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	Push   *services.PushService
	Alerts *services.AlertBus
}

func NewNotificationController(push *services.PushService, alerts *services.AlertBus) *NotificationController {
	return &NotificationController{Push: push, Alerts: alerts}
}

type toggleReq struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// POST /notifications/toggle
func (h *NotificationController) Toggle(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	var req toggleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	var updated int64
	if h.Push != nil {
		n, err := h.Push.SetEnabled(c.Request.Context(), userID, *req.Enabled)
		if err != nil {
			respondError(c, err)
			return
		}
		updated = n
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "notifications updated",
		"enabled": *req.Enabled,
		"devices": updated,
	})
}

// GET /alerts?limit=50
func (h *NotificationController) ListAlerts(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	out, err := h.Alerts.List(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
