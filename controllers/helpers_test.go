package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brfrauches/augmend-71119/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() { gin.SetMode(gin.TestMode) }

func TestRespondErrorStatuses(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: name is required", services.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("marker: %w", services.ErrNotFound), http.StatusNotFound},
		{services.ErrConflict, http.StatusConflict},
		{services.ErrNotFood, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: status 429", services.ErrAIUnavailable), http.StatusBadGateway},
		{services.ErrAIResponse, http.StatusBadGateway},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		respondError(c, tc.err)

		assert.Equal(t, tc.want, w.Code, tc.err.Error())
		var body map[string]string
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.err.Error(), body["error"])
	}
}

func TestUserIDFromCtxWithoutAuth(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	_, ok := userIDFromCtx(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
