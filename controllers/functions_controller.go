package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/brfrauches/augmend-71119/logger"
	"github.com/brfrauches/augmend-71119/prompts"
	"github.com/brfrauches/augmend-71119/services"
	"github.com/brfrauches/augmend-71119/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FunctionsController serves the edge-function style endpoints used by the
// web client: JSON in, JSON out, {"error"} with 400 or 500 on failure.
type FunctionsController struct {
	AI *services.AIGateway
}

func NewFunctionsController(ai *services.AIGateway) *FunctionsController {
	return &FunctionsController{AI: ai}
}

type nutritionAIReq struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

type processExamReq struct {
	File     string `json:"file"`
	Filename string `json:"filename"`
}

type generateWorkoutReq struct {
	Prompt string `json:"prompt"`
}

func functionError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, services.ErrInvalidInput) {
		status = http.StatusBadRequest
	} else {
		logger.L().Error("function failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// POST /functions/nutrition-ai
func (h *FunctionsController) NutritionAI(c *gin.Context) {
	var req nutritionAIReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if req.Data == nil {
		req.Data = map[string]any{}
	}
	ctx := c.Request.Context()

	var (
		out any
		err error
	)
	switch req.Type {
	case prompts.CalculateMacros:
		desc, _ := req.Data["description"].(string)
		if img, _ := req.Data["imageUrl"].(string); img != "" && desc == "" {
			out, err = h.AI.AnalyzePhoto(ctx, img)
			break
		}
		out, err = h.AI.CalculateMacros(ctx, desc)
	case prompts.AnalyzePhoto:
		img, _ := req.Data["imageUrl"].(string)
		out, err = h.AI.AnalyzePhoto(ctx, img)
	case prompts.SuggestMeal:
		out, err = h.AI.SuggestMeal(ctx, req.Data)
	case prompts.AnalyzeNutrition:
		out, err = h.AI.AnalyzeNutrition(ctx, req.Data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid type"})
		return
	}
	if err != nil {
		functionError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type examMarkerOut struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
	Unit  string   `json:"unit"`
}

// POST /functions/process-exam
func (h *FunctionsController) ProcessExam(c *gin.Context) {
	var req processExamReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.File) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	f, err := utils.DecodeBase64File(req.File, req.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	markers, err := h.AI.ExtractExamMarkers(c.Request.Context(), f.DataURI())
	if err != nil {
		functionError(c, err)
		return
	}
	out := make([]examMarkerOut, 0, len(markers))
	for _, m := range markers {
		out = append(out, examMarkerOut{Name: m.Name, Value: m.Value.Ptr(), Unit: m.Unit})
	}
	c.JSON(http.StatusOK, gin.H{"markers": out})
}

// POST /functions/generate-workout
func (h *FunctionsController) GenerateWorkout(c *gin.Context) {
	var req generateWorkoutReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required"})
		return
	}
	w, err := h.AI.GenerateWorkout(c.Request.Context(), req.Prompt)
	if err != nil {
		functionError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}
