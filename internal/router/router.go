package router

import (
	"net/http"
	"time"

	"github.com/examina/examina-backend/internal/config"
	"github.com/examina/examina-backend/internal/handler"
	"github.com/examina/examina-backend/internal/middleware"
	"github.com/examina/examina-backend/internal/response"
	"github.com/examina/examina-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	StudentPortal *handler.StudentPortalHandler
	Results       *handler.ResultsHandler
	Monitor       *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list; otherwise
	// allow all so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "X-Admin-Key"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so every response carries metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Auth group, rate limited per IP to slow credential stuffing.
	authLimiter := middleware.NewRateLimiter(30, time.Minute)
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.GET("/student/me", middleware.RequireStudentJWT(authService), handlers.Auth.GetStudentProfile)
	}

	// Student group: the attempt lifecycle.
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.GET("/exams", handlers.StudentPortal.GetLobby)
		studentAPI.GET("/summary", handlers.StudentPortal.GetSummary)
		studentAPI.POST("/exams/:exam_id/register", handlers.StudentPortal.Register)
		studentAPI.POST("/exams/:exam_id/start", handlers.StudentPortal.Start)
		studentAPI.GET("/exams/:exam_id/questions", handlers.StudentPortal.GetQuestions)
		studentAPI.PUT("/sessions/:session_id/answers/:question_id", handlers.StudentPortal.RecordAnswer)
		studentAPI.POST("/sessions/:session_id/submit", handlers.StudentPortal.Submit)
		studentAPI.GET("/sessions/:session_id/rank", handlers.StudentPortal.GetRank)
	}

	// Admin group: read-only results listing.
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminKey(cfg.AdminAPIKey))
	{
		adminAPI.GET("/exams/:exam_id/results", handlers.Results.GetExamResults)
	}

	// WebSocket group: live submission monitor.
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAdminKey(cfg.AdminAPIKey))
	{
		ws.GET("/admin/exams/:exam_id/monitor", handlers.Monitor.StreamExam)
	}

	return router
}
