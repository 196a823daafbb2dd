package controllers

import (
	"net/http"

	"github.com/brfrauches/augmend-71119/services"
	"github.com/brfrauches/augmend-71119/utils"

	"github.com/gin-gonic/gin"
)

type WaterController struct {
	Svc *services.WaterService
}

func NewWaterController(svc *services.WaterService) *WaterController {
	return &WaterController{Svc: svc}
}

// POST /nutrition/water
func (h *WaterController) Log(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	var req services.WaterReq
	if !bindJSON(c, &req) {
		return
	}
	w, err := h.Svc.Log(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *WaterController) List(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	day, ok := dayQuery(c)
	if !ok {
		return
	}
	logs, err := h.Svc.ListByDay(c.Request.Context(), userID, day)
	if err != nil {
		respondError(c, err)
		return
	}
	total := 0
	for _, l := range logs {
		total += l.AmountML
	}
	c.JSON(http.StatusOK, gin.H{"date": day.Format(utils.DateLayout), "total_ml": total, "logs": logs})
}

func (h *WaterController) Delete(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
