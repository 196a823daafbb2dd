package controllers

import (
	"net/http"
	"time"

	"github.com/brfrauches/augmend-71119/services"
	"github.com/brfrauches/augmend-71119/utils"

	"github.com/gin-gonic/gin"
)

type MarkerController struct {
	Svc *services.MarkerService
}

func NewMarkerController(svc *services.MarkerService) *MarkerController {
	return &MarkerController{Svc: svc}
}

// POST /markers
func (h *MarkerController) Create(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	var req services.CreateMarkerReq
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.Svc.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *MarkerController) List(c *gin.Context) {
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

func (h *MarkerController) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.Svc.Catalog())
}

func (h *MarkerController) Get(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	d, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *MarkerController) Update(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateMarkerReq
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.Svc.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MarkerController) Delete(c *gin.Context) {
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

// POST /markers/:id/values
func (h *MarkerController) AddValue(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req services.AddValueReq
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.Svc.AddValue(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *MarkerController) DeleteValue(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	valueID, ok := uuidParam(c, "valueId")
	if !ok {
		return
	}
	if err := h.Svc.DeleteValue(c.Request.Context(), userID, id, valueID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /exams
func (h *MarkerController) Exams(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	out, err := h.Svc.Exams(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /exams/:date
func (h *MarkerController) ExamByDate(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	day, err := time.ParseInLocation(utils.DateLayout, c.Param("date"), time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}
	out, err := h.Svc.ExamByDate(c.Request.Context(), userID, day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exam_date": c.Param("date"), "markers": out})
}
