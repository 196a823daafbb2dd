package controllers

import (
	"net/http"
	"time"

	"github.com/brfrauches/augmend-71119/services"
	"github.com/brfrauches/augmend-71119/utils"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	Svc *services.AnalyticsService
}

func NewAnalyticsController(svc *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Svc: svc}
}

// GET /analytics/summary?from=&to=&includeMissingDays=
// Defaults to the current month.
func (h *AnalyticsController) GetAnalyticsSummary(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}

	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)

	fromStr := c.DefaultQuery("from", first.Format(utils.DateLayout))
	toStr := c.DefaultQuery("to", last.Format(utils.DateLayout))
	includeMissing := c.DefaultQuery("includeMissingDays", "false") == "true"

	from, err := time.ParseInLocation(utils.DateLayout, fromStr, now.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return
	}
	to, err := time.ParseInLocation(utils.DateLayout, toStr, now.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
		return
	}

	out, err := h.Svc.Summary(c.Request.Context(), userID, from, to, includeMissing)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /analytics/weekly?week_start=&mode=chart|detailed
func (h *AnalyticsController) GetWeeklyOverview(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}

	now := time.Now()
	weekStart := utils.StartOfWeek(now)
	if v := c.Query("week_start"); v != "" {
		ws, err := time.ParseInLocation(utils.DateLayout, v, now.Location())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week_start"})
			return
		}
		weekStart = ws
	}
	mode := c.DefaultQuery("mode", services.OverviewDetailed)

	out, err := h.Svc.WeeklyOverview(c.Request.Context(), userID, weekStart, mode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
