package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/znyiri100/snake-rivals-arena/db"
	"github.com/znyiri100/snake-rivals-arena/internal/groups"
	"github.com/znyiri100/snake-rivals-arena/internal/ranking"
	"github.com/znyiri100/snake-rivals-arena/internal/utils"
)

func requestScope(ctx *gin.Context) groups.Scope {
	return groups.ResolveScope(db.DB, ctx.Query("group_id"), utils.GetCurrentUserID(ctx))
}

func GetAllScoresRanked(ctx *gin.Context) {
	sortBy := ctx.DefaultQuery("sort_by", ranking.SortByRank)

	rows, err := ranking.AllScores(db.DB, ctx.Query("gameMode"), requestScope(ctx), ctx.Query("username"), sortBy)

	if err != nil {
		log.Printf("Failed to rank all scores: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, rows)
}

func GetBestPerUser(ctx *gin.Context) {
	rows, err := ranking.BestPerUser(db.DB, ctx.Query("gameMode"), requestScope(ctx))

	if err != nil {
		log.Printf("Failed to rank best per user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, rows)
}

func GetTopNPerMode(ctx *gin.Context) {
	limit := 10

	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}

	result, err := ranking.TopNPerMode(db.DB, limit, requestScope(ctx))

	if err != nil {
		log.Printf("Failed to rank top %d per mode: %v", limit, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, result)
}

func GetOverallRankings(ctx *gin.Context) {
	rows, err := ranking.Overall(db.DB, requestScope(ctx))

	if err != nil {
		log.Printf("Failed to compute overall rankings: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, rows)
}
