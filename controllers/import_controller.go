package controllers

import (
	"net/http"

	"github.com/brfrauches/augmend-71119/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ImportController struct {
	Svc *services.ImportService
}

func NewImportController(svc *services.ImportService) *ImportController {
	return &ImportController{Svc: svc}
}

type workoutStageReq struct {
	Prompt string `json:"prompt"`
}

type examDateReq struct {
	ExamDate string `json:"exam_date" binding:"required"`
}

// POST /imports/exam
func (h *ImportController) StageExam(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	var req services.ExamUploadReq
	if !bindJSON(c, &req) {
		return
	}
	imp, err := h.Svc.StageExam(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, imp)
}

// POST /imports/workout
func (h *ImportController) StageWorkout(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	var req workoutStageReq
	if !bindJSON(c, &req) {
		return
	}
	imp, err := h.Svc.StageWorkout(c.Request.Context(), userID, req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, imp)
}

// POST /imports/meal
func (h *ImportController) StageMeal(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}
	var req services.MealStageReq
	if !bindJSON(c, &req) {
		return
	}
	imp, err := h.Svc.StageMeal(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, imp)
}

// importAndUser reads the caller and the :id path param.
func importAndUser(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

func (h *ImportController) Get(c *gin.Context) {
	userID, id, ok := importAndUser(c)
	if !ok {
		return
	}
	imp, err := h.Svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, imp)
}

// PUT /imports/:id/markers/:index
func (h *ImportController) UpdateMarker(c *gin.Context) {
	userID, id, ok := importAndUser(c)
	if !ok {
		return
	}
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	var m services.StagedMarker
	if !bindJSON(c, &m) {
		return
	}
	imp, err := h.Svc.UpdateMarker(c.Request.Context(), userID, id, index, m)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, imp)
}

func (h *ImportController) AddMarker(c *gin.Context) {
	userID, id, ok := importAndUser(c)
	if !ok {
		return
	}
	var m services.StagedMarker
	if !bindJSON(c, &m) {
		return
	}
	imp, err := h.Svc.AddMarker(c.Request.Context(), userID, id, m)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, imp)
}

func (h *ImportController) RemoveMarker(c *gin.Context) {
	userID, id, ok := importAndUser(c)
	if !ok {
		return
	}
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	imp, err := h.Svc.RemoveMarker(c.Request.Context(), userID, id, index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, imp)
}

func (h *ImportController) SetExamDate(c *gin.Context) {
	userID, id, ok := importAndUser(c)
	if !ok {
		return
	}
	var req examDateReq
	if !bindJSON(c, &req) {
		return
	}
	imp, err := h.Svc.SetExamDate(c.Request.Context(), userID, id, req.ExamDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, imp)
}

func (h *ImportController) ReplaceWorkout(c *gin.Context) {
	userID, id, ok := importAndUser(c)
	if !ok {
		return
	}
	var in services.WorkoutInput
	if !bindJSON(c, &in) {
		return
	}
	imp, err := h.Svc.ReplaceWorkout(c.Request.Context(), userID, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, imp)
}

func (h *ImportController) ReplaceMeal(c *gin.Context) {
	userID, id, ok := importAndUser(c)
	if !ok {
		return
	}
	var in services.MealInput
	if !bindJSON(c, &in) {
		return
	}
	imp, err := h.Svc.ReplaceMeal(c.Request.Context(), userID, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, imp)
}

// POST /imports/:id/commit
func (h *ImportController) Commit(c *gin.Context) {
	userID, id, ok := importAndUser(c)
	if !ok {
		return
	}
	res, err := h.Svc.Commit(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *ImportController) Discard(c *gin.Context) {
	userID, id, ok := importAndUser(c)
	if !ok {
		return
	}
	if err := h.Svc.Discard(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
