package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/brfrauches/augmend-71119/services"

	"github.com/gin-gonic/gin"
)

type NutritionController struct {
	Summary  *services.SummaryService
	Insights *services.InsightService
}

func NewNutritionController(summary *services.SummaryService, insights *services.InsightService) *NutritionController {
	return &NutritionController{Summary: summary, Insights: insights}
}

// GET /nutrition/summary?date=YYYY-MM-DD
func (h *NutritionController) DailySummary(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	day, ok := dayQuery(c)
	if !ok {
		return
	}
	sum, _, err := h.Summary.Daily(c.Request.Context(), userID, day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// POST /nutrition/insights
func (h *NutritionController) Analyze(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	out, err := h.Insights.Analyze(c.Request.Context(), userID, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *NutritionController) History(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	out, err := h.Insights.History(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// POST /nutrition/suggest-meal
func (h *NutritionController) SuggestMeal(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	prefs := map[string]any{}
	if c.Request.ContentLength > 0 && !bindJSON(c, &prefs) {
		return
	}
	out, err := h.Insights.SuggestMeal(c.Request.Context(), userID, prefs, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
