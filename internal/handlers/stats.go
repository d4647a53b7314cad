package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/znyiri100/snake-rivals-arena/db"
	"github.com/znyiri100/snake-rivals-arena/internal/stats"
)

func GetStatsSummary(ctx *gin.Context) {
	summary, err := stats.GetSummary(db.DB, requestScope(ctx))

	if err != nil {
		log.Printf("Failed to compute stats summary: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

func GetScoreDistribution(ctx *gin.Context) {
	gameMode := ctx.Query("gameMode")

	if gameMode == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "gameMode is required"})
		return
	}

	buckets, err := stats.GetDistribution(db.DB, gameMode, requestScope(ctx))

	if err != nil {
		log.Printf("Failed to compute score distribution: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, buckets)
}

func GetActivityTrend(ctx *gin.Context) {
	days, ok := queryInt(ctx, "days", stats.DefaultTrendDays)
	if !ok {
		return
	}

	series, err := stats.GetActivityTrend(db.DB, days, requestScope(ctx))

	if err != nil {
		log.Printf("Failed to compute activity trend: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, series)
}

func GetActivityByMode(ctx *gin.Context) {
	days, ok := queryInt(ctx, "days", stats.DefaultTrendDays)
	if !ok {
		return
	}

	series, err := stats.GetActivityByMode(db.DB, days, requestScope(ctx))

	if err != nil {
		log.Printf("Failed to compute activity by mode: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, series)
}

func GetActivityByUser(ctx *gin.Context) {
	days, ok := queryInt(ctx, "days", stats.DefaultTrendDays)
	if !ok {
		return
	}

	limit, ok := queryInt(ctx, "limit", stats.DefaultTopUsers)
	if !ok {
		return
	}

	activity, err := stats.GetActivityByUser(db.DB, days, limit, requestScope(ctx))

	if err != nil {
		log.Printf("Failed to compute activity by user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, activity)
}

func queryInt(ctx *gin.Context, name string, fallback int) (int, bool) {
	raw := ctx.Query(name)

	if raw == "" {
		return fallback, true
	}

	parsed, err := strconv.Atoi(raw)

	if err != nil || parsed < 1 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}

	return parsed, true
}
