package routes

import (
	"net/http"

	"github.com/brfrauches/augmend-71119/controllers"
	"github.com/brfrauches/augmend-71119/metrics"
	"github.com/brfrauches/augmend-71119/middlewares"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps carries everything the router mounts. Dev is only routed when set.
type Deps struct {
	JWTSecret   string
	CORSOrigins []string
	Metrics     *metrics.Metrics
	Log         *zap.Logger
	AILimiter   *middlewares.RateLimiter

	Profiles      *controllers.ProfileController
	Markers       *controllers.MarkerController
	Supplements   *controllers.SupplementController
	Workouts      *controllers.WorkoutController
	Meals         *controllers.MealController
	Water         *controllers.WaterController
	Nutrition     *controllers.NutritionController
	Body          *controllers.BodyController
	Imports       *controllers.ImportController
	Functions     *controllers.FunctionsController
	Analytics     *controllers.AnalyticsController
	Devices       *controllers.DeviceController
	Notifications *controllers.NotificationController
	Realtime      *controllers.RealtimeController
	Dev           *controllers.DevController
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.Metrics(d.Metrics))
	r.Use(middlewares.CORS(d.CORSOrigins))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	auth := middlewares.AuthMiddleware(d.JWTSecret)
	ai := func(c *gin.Context) { c.Next() }
	if d.AILimiter != nil {
		ai = d.AILimiter.Handler()
	}

	// Edge-function compatible endpoints
	fn := r.Group("/functions", auth, ai)
	{
		fn.POST("/nutrition-ai", d.Functions.NutritionAI)
		fn.POST("/process-exam", d.Functions.ProcessExam)
		fn.POST("/generate-workout", d.Functions.GenerateWorkout)
	}

	r.GET("/ws/alerts", auth, d.Realtime.AlertsWS)

	api := r.Group("/api/v1", auth)

	profile := api.Group("/profile")
	{
		profile.GET("", d.Profiles.Get)
		profile.PUT("", d.Profiles.Update)
	}

	markers := api.Group("/markers")
	{
		markers.POST("", d.Markers.Create)
		markers.GET("", d.Markers.List)
		markers.GET("/catalog", d.Markers.Catalog)
		markers.GET("/:id", d.Markers.Get)
		markers.PUT("/:id", d.Markers.Update)
		markers.DELETE("/:id", d.Markers.Delete)
		markers.POST("/:id/values", d.Markers.AddValue)
		markers.DELETE("/:id/values/:valueId", d.Markers.DeleteValue)
	}

	exams := api.Group("/exams")
	{
		exams.GET("", d.Markers.Exams)
		exams.GET("/:date", d.Markers.ExamByDate)
	}

	supplements := api.Group("/supplements")
	{
		supplements.POST("", d.Supplements.Create)
		supplements.GET("", d.Supplements.List)
		supplements.GET("/weekly", d.Supplements.Weekly)
		supplements.GET("/:id", d.Supplements.Get)
		supplements.PUT("/:id", d.Supplements.Update)
		supplements.DELETE("/:id", d.Supplements.Delete)
		supplements.POST("/:id/toggle", d.Supplements.Toggle)
		supplements.POST("/:id/logs", d.Supplements.LogUsage)
		supplements.DELETE("/:id/logs/:logId", d.Supplements.DeleteLog)
		supplements.GET("/:id/weekly", d.Supplements.Weekly)
	}

	workouts := api.Group("/workouts")
	{
		workouts.POST("", d.Workouts.Create)
		workouts.GET("", d.Workouts.List)
		workouts.GET("/templates", d.Workouts.Templates)
		workouts.POST("/templates/:index", d.Workouts.UseTemplate)
		workouts.GET("/weekly", d.Workouts.Weekly)
		workouts.GET("/:id", d.Workouts.Get)
		workouts.PUT("/:id", d.Workouts.Update)
		workouts.DELETE("/:id", d.Workouts.Delete)
		workouts.POST("/:id/checkins", d.Workouts.Checkin)
		workouts.GET("/:id/checkins", d.Workouts.Checkins)
	}

	nutrition := api.Group("/nutrition")
	{
		nutrition.POST("/meals", d.Meals.Create)
		nutrition.GET("/meals", d.Meals.List)
		nutrition.GET("/meals/:id", d.Meals.Get)
		nutrition.DELETE("/meals/:id", d.Meals.Delete)

		nutrition.POST("/water", d.Water.Log)
		nutrition.GET("/water", d.Water.List)
		nutrition.DELETE("/water/:id", d.Water.Delete)

		nutrition.GET("/summary", d.Nutrition.DailySummary)
		nutrition.GET("/insights", d.Nutrition.History)
		nutrition.POST("/insights", ai, d.Nutrition.Analyze)
		nutrition.POST("/suggest-meal", ai, d.Nutrition.SuggestMeal)
	}

	body := api.Group("/body/measurements")
	{
		body.POST("", d.Body.Create)
		body.POST("/preview", d.Body.Preview)
		body.GET("", d.Body.List)
		body.GET("/:id", d.Body.Get)
		body.DELETE("/:id", d.Body.Delete)
	}

	imports := api.Group("/imports")
	{
		imports.POST("/exam", ai, d.Imports.StageExam)
		imports.POST("/workout", ai, d.Imports.StageWorkout)
		imports.POST("/meal", ai, d.Imports.StageMeal)
		imports.GET("/:id", d.Imports.Get)
		imports.POST("/:id/markers", d.Imports.AddMarker)
		imports.PUT("/:id/markers/:index", d.Imports.UpdateMarker)
		imports.DELETE("/:id/markers/:index", d.Imports.RemoveMarker)
		imports.PUT("/:id/exam-date", d.Imports.SetExamDate)
		imports.PUT("/:id/workout", d.Imports.ReplaceWorkout)
		imports.PUT("/:id/meal", d.Imports.ReplaceMeal)
		imports.POST("/:id/commit", d.Imports.Commit)
		imports.DELETE("/:id", d.Imports.Discard)
	}

	analytics := api.Group("/analytics")
	{
		analytics.GET("/summary", d.Analytics.GetAnalyticsSummary)
		analytics.GET("/weekly", d.Analytics.GetWeeklyOverview)
	}

	api.POST("/devices", d.Devices.Register)
	api.POST("/notifications/toggle", d.Notifications.Toggle)
	api.GET("/alerts", d.Notifications.ListAlerts)

	if d.Dev != nil {
		dev := api.Group("/dev")
		dev.POST("/push-test", d.Dev.PushTest)
		dev.POST("/reminders/run", d.Dev.RunReminders)
	}

	return r
}
