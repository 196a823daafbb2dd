package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brfrauches/augmend-71119/controllers"
	"github.com/brfrauches/augmend-71119/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return SetupRouter(Deps{
		JWTSecret:     "router-test-secret-router-test-secret",
		Metrics:       metrics.New(),
		Log:           zap.NewNop(),
		Profiles:      &controllers.ProfileController{},
		Markers:       &controllers.MarkerController{},
		Supplements:   &controllers.SupplementController{},
		Workouts:      &controllers.WorkoutController{},
		Meals:         &controllers.MealController{},
		Water:         &controllers.WaterController{},
		Nutrition:     &controllers.NutritionController{},
		Body:          &controllers.BodyController{},
		Imports:       &controllers.ImportController{},
		Functions:     &controllers.FunctionsController{},
		Analytics:     &controllers.AnalyticsController{},
		Devices:       &controllers.DeviceController{},
		Notifications: &controllers.NotificationController{},
		Realtime:      &controllers.RealtimeController{},
	})
}

func TestPublicRoutes(t *testing.T) {
	r := testRouter()
	for _, path := range []string{"/healthz", "/metrics"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	r := testRouter()
	cases := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/profile"},
		{http.MethodGet, "/api/v1/markers"},
		{http.MethodGet, "/api/v1/alerts"},
		{http.MethodPost, "/api/v1/imports/exam"},
		{http.MethodPost, "/functions/generate-workout"},
		{http.MethodGet, "/ws/alerts"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
}

func TestDevRoutesOnlyWhenEnabled(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/dev/push-test", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
