package controllers

import (
	"net/http"
	"time"

	"github.com/brfrauches/augmend-71119/services"

	"github.com/gin-gonic/gin"
)

type WorkoutController struct {
	Svc *services.WorkoutService
}

func NewWorkoutController(svc *services.WorkoutService) *WorkoutController {
	return &WorkoutController{Svc: svc}
}

func (h *WorkoutController) Create(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	var in services.WorkoutInput
	if !bindJSON(c, &in) {
		return
	}
	w, err := h.Svc.Create(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *WorkoutController) List(c *gin.Context) {
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

func (h *WorkoutController) Get(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	w, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WorkoutController) Update(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var in services.WorkoutInput
	if !bindJSON(c, &in) {
		return
	}
	w, err := h.Svc.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *WorkoutController) Delete(c *gin.Context) {
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

func (h *WorkoutController) Templates(c *gin.Context) {
	c.JSON(http.StatusOK, h.Svc.Templates())
}

// POST /workouts/templates/:index
func (h *WorkoutController) UseTemplate(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	idx, ok := intParam(c, "index")
	if !ok {
		return
	}
	w, err := h.Svc.UseTemplate(c.Request.Context(), userID, idx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// POST /workouts/:id/checkins
func (h *WorkoutController) Checkin(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req services.CheckinReq
	// body is optional
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	ch, err := h.Svc.Checkin(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ch)
}

func (h *WorkoutController) Checkins(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	out, err := h.Svc.Checkins(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /workouts/consistency/weekly
func (h *WorkoutController) Weekly(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	now := time.Now()
	if v := c.Query("date"); v != "" {
		d, ok := dayQuery(c)
		if !ok {
			return
		}
		now = d
	}
	out, err := h.Svc.Weekly(c.Request.Context(), userID, now)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
