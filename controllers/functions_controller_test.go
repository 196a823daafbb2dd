package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brfrauches/augmend-71119/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aiStub(t *testing.T, content string) *services.AIGateway {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return services.NewAIGateway(srv.URL, "test-key", "test-model", 5*time.Second, nil, nil)
}

func functionsRouter(ai *services.AIGateway) *gin.Engine {
	h := NewFunctionsController(ai)
	r := gin.New()
	r.POST("/functions/nutrition-ai", h.NutritionAI)
	r.POST("/functions/process-exam", h.ProcessExam)
	r.POST("/functions/generate-workout", h.GenerateWorkout)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateWorkoutFunction(t *testing.T) {
	r := functionsRouter(aiStub(t, `{"name":"Treino A","category":"strength","duration":"45","exercises":[]}`))

	w := post(r, "/functions/generate-workout", `{"prompt":"treino de pernas"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Treino A", body["name"], "workout is the top-level object")
	assert.Equal(t, "strength", body["category"])
	assert.NotContains(t, body, "workout")

	w = post(r, "/functions/generate-workout", `{"prompt":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Prompt is required"}`, w.Body.String())
}

func TestGenerateWorkoutFunctionMalformedReply(t *testing.T) {
	r := functionsRouter(aiStub(t, "desculpe, não consigo"))

	w := post(r, "/functions/generate-workout", `{"prompt":"treino"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "invalid AI response format")
}

func TestNutritionAIRejectsUnknownType(t *testing.T) {
	r := functionsRouter(aiStub(t, `{}`))

	w := post(r, "/functions/nutrition-ai", `{"type":"horoscope","data":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid type"}`, w.Body.String())
}

func TestProcessExamRequiresFile(t *testing.T) {
	r := functionsRouter(aiStub(t, `{"markers":[]}`))

	w := post(r, "/functions/process-exam", `{"file":"","filename":"exam.pdf"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"File is required"}`, w.Body.String())
}
