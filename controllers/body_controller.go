package controllers

import (
	"net/http"

	"github.com/brfrauches/augmend-71119/services"

	"github.com/gin-gonic/gin"
)

type BodyController struct {
	Svc *services.BodyService
}

func NewBodyController(svc *services.BodyService) *BodyController {
	return &BodyController{Svc: svc}
}

func (h *BodyController) Create(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	var in services.MeasurementInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := h.Svc.Create(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// POST /body/measurements/preview computes derived fields without saving.
func (h *BodyController) Preview(c *gin.Context) {
	var in services.MeasurementInput
	if !bindJSON(c, &in) {
		return
	}
	d, err := h.Svc.Preview(in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *BodyController) List(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	out, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *BodyController) Get(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	m, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *BodyController) Delete(c *gin.Context) {
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
