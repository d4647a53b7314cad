package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/znyiri100/snake-rivals-arena/internal/handlers"
	"github.com/znyiri100/snake-rivals-arena/internal/middleware"
	"github.com/znyiri100/snake-rivals-arena/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/signup", handlers.Signup)
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", handlers.Logout)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.GET("/groups", handlers.ListGroups)
		}

		leaderboard := api.Group("/leaderboard")
		{
			leaderboard.GET("", middleware.OptionalAuthMiddleware(), handlers.GetLeaderboard)
			leaderboard.POST("", middleware.AuthMiddleware(), handlers.SubmitScore)

			rankings := leaderboard.Group("/rankings", middleware.OptionalAuthMiddleware())
			{
				rankings.GET("/all-scores", handlers.GetAllScoresRanked)
				rankings.GET("/best-per-user", handlers.GetBestPerUser)
				rankings.GET("/top-n", handlers.GetTopNPerMode)
				rankings.GET("/overall", handlers.GetOverallRankings)
			}

			stats := leaderboard.Group("/stats", middleware.OptionalAuthMiddleware())
			{
				stats.GET("/summary", handlers.GetStatsSummary)
				stats.GET("/distribution", handlers.GetScoreDistribution)
				stats.GET("/activity", handlers.GetActivityTrend)
				stats.GET("/activity/by-mode", handlers.GetActivityByMode)
				stats.GET("/activity/by-user", handlers.GetActivityByUser)
			}
		}

		sessions := api.Group("/sessions")
		{
			sessions.GET("", handlers.ListSessions)
			sessions.POST("", middleware.AuthMiddleware(), handlers.CreateSession)
			sessions.GET("/:id", handlers.GetSession)
			sessions.PATCH("/:id", middleware.AuthMiddleware(), handlers.UpdateSession)
		}

		api.GET("/ws/sessions/:session_id", handlers.WatchSession)
	}

	return r
}
