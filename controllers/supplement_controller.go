package controllers

import (
	"net/http"
	"time"

	"github.com/brfrauches/augmend-71119/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SupplementController struct {
	Svc *services.SupplementService
}

func NewSupplementController(svc *services.SupplementService) *SupplementController {
	return &SupplementController{Svc: svc}
}

func (h *SupplementController) Create(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	var in services.SupplementInput
	if !bindJSON(c, &in) {
		return
	}
	s, err := h.Svc.Create(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// GET /supplements?filter=active|finished|all
func (h *SupplementController) List(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	out, err := h.Svc.List(c.Request.Context(), userID, c.DefaultQuery("filter", services.FilterAll))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *SupplementController) Get(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	s, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SupplementController) Update(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var in services.SupplementInput
	if !bindJSON(c, &in) {
		return
	}
	s, err := h.Svc.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *SupplementController) Delete(c *gin.Context) {
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

// PATCH /supplements/:id/toggle
func (h *SupplementController) Toggle(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	s, err := h.Svc.Toggle(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// POST /supplements/:id/logs
func (h *SupplementController) LogUsage(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req services.LogUsageReq
	if !bindJSON(c, &req) {
		return
	}
	logs, err := h.Svc.LogUsage(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, logs)
}

func (h *SupplementController) DeleteLog(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	logID, ok := uuidParam(c, "logId")
	if !ok {
		return
	}
	if err := h.Svc.DeleteLog(c.Request.Context(), userID, id, logID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /supplements/usage/weekly and /supplements/:id/usage/weekly
func (h *SupplementController) Weekly(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	var supplementID *uuid.UUID
	if c.Param("id") != "" {
		id, ok := uuidParam(c, "id")
		if !ok {
			return
		}
		supplementID = &id
	}
	out, err := h.Svc.Weekly(c.Request.Context(), userID, supplementID, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
