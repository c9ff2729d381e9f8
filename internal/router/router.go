package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prepdeck/prepdeck-backend/internal/config"
	"github.com/prepdeck/prepdeck-backend/internal/handler"
	"github.com/prepdeck/prepdeck-backend/internal/middleware"
	"github.com/prepdeck/prepdeck-backend/internal/response"
	"github.com/prepdeck/prepdeck-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Track       *handler.TrackHandler
	Tracking    *handler.TrackingHandler
	History     *handler.HistoryHandler
	Leaderboard *handler.LeaderboardHandler
	Quiz        *handler.QuizHandler
	SessionWS   *handler.SessionWSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	identityService *service.IdentityService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the tracking endpoints (60 requests per minute per IP).
	trackLimiter := middleware.NewRateLimiter(60, time.Minute)

	api := router.Group("/api/v1")
	{
		// ─── Identity handshake (rate limited, no auth) ────────────────
		api.POST("/track", trackLimiter.Middleware(), handlers.Track.Track)
		api.GET("/track", middleware.RequireIdentity(identityService), handlers.Track.Whoami)

		// ─── Tracking ingestion (identity cookie required) ─────────────
		tracked := api.Group("")
		tracked.Use(trackLimiter.Middleware(), middleware.RequireIdentity(identityService))
		{
			tracked.POST("/attempt", handlers.Tracking.RecordAttempt)
			tracked.POST("/submit-score", handlers.Tracking.SubmitScore)
			tracked.GET("/me/history", handlers.History.GetHistory)
		}

		// ─── Public reads ──────────────────────────────────────────────
		api.GET("/leaderboard", handlers.Leaderboard.GetLeaderboard)

		quizzes := api.Group("/quizzes")
		quizzes.Use(middleware.CacheControl(300))
		{
			quizzes.GET("", handlers.Quiz.ListQuestionSets)
			quizzes.GET("/:set_id/paper", handlers.Quiz.GetPaper)
		}
	}

	// ─── WebSocket ─────────────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.OptionalIdentity(identityService))
	{
		ws.GET("/session", handlers.SessionWS.SessionStream)
	}

	return router
}
