package controllers

import (
	"net/http"
	"time"

	"github.com/brfrauches/augmend-71119/services"

	"github.com/gin-gonic/gin"
)

// DevController exposes helpers that only get routed outside production.
type DevController struct {
	Alerts    *services.AlertBus
	Reminders *services.ReminderService
}

func NewDevController(alerts *services.AlertBus, reminders *services.ReminderService) *DevController {
	return &DevController{Alerts: alerts, Reminders: reminders}
}

type pushReq struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// POST /dev/push-test
func (d *DevController) PushTest(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}

	var req pushReq
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	if req.Title == "" {
		req.Title = "Test alert 🔔"
	}
	if req.Body == "" {
		req.Body = "This is only a test."
	}
	if req.Data == nil {
		req.Data = map[string]string{"type": "warning"}
	}

	d.Alerts.Notify(c.Request.Context(), userID, req.Title, req.Body, req.Data)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// POST /dev/reminders/run fires the supplement reminder job once.
func (d *DevController) RunReminders(c *gin.Context) {
	if d.Reminders == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "reminders disabled"})
		return
	}
	n, err := d.Reminders.SendReminders(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notified": n})
}
