package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/znyiri100/snake-rivals-arena/db"
	"github.com/znyiri100/snake-rivals-arena/internal/groups"
	"github.com/znyiri100/snake-rivals-arena/internal/models"
	"github.com/znyiri100/snake-rivals-arena/internal/types"
	"github.com/znyiri100/snake-rivals-arena/internal/utils"
)

type LeaderboardEntryResponse struct {
	ID        uint              `json:"id"`
	Username  string            `json:"username"`
	Score     int               `json:"score"`
	GameMode  string            `json:"gameMode"`
	Timestamp time.Time         `json:"timestamp"`
	Groups    []groups.GroupRef `json:"groups"`
}

type SubmitScoreRequest struct {
	Score    *int   `json:"score" binding:"required"`
	GameMode string `json:"gameMode" binding:"required"`
}

// GetLeaderboard lists ledger entries ordered by score, restricted to the
// effective group scope (explicit group_id param, else the caller's default
// group, else everyone).
func GetLeaderboard(ctx *gin.Context) {
	scope := groups.ResolveScope(db.DB, ctx.Query("group_id"), utils.GetCurrentUserID(ctx))

	usernames, err := groups.UsernamesInScope(db.DB, scope)

	if err != nil {
		log.Printf("Failed to resolve scope: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := []LeaderboardEntryResponse{}

	if !scope.All && len(usernames) == 0 {
		ctx.JSON(http.StatusOK, response)
		return
	}

	query := db.DB.Model(&models.ScoreEntry{})

	if gameMode := ctx.Query("gameMode"); gameMode != "" {
		query = query.Where("game_mode = ?", gameMode)
	}

	if !scope.All {
		query = query.Where("username IN ?", usernames)
	}

	var entries []models.ScoreEntry

	if err := query.Order("score DESC, id ASC").Find(&entries).Error; err != nil {
		log.Printf("Failed to query leaderboard: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	userIDs := make([]uint, 0, len(entries))
	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.UserID != nil {
			userIDs = append(userIDs, *entry.UserID)
		}
		names = append(names, entry.Username)
	}

	attribution, err := groups.LookupGroups(db.DB, userIDs, names)

	if err != nil {
		log.Printf("Failed to look up groups: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	for _, entry := range entries {
		response = append(response, LeaderboardEntryResponse{
			ID:        entry.ID,
			Username:  entry.Username,
			Score:     entry.Score,
			GameMode:  entry.GameMode,
			Timestamp: entry.CreatedAt,
			Groups:    attribution.For(entry.UserID, entry.Username),
		})
	}

	ctx.JSON(http.StatusOK, response)
}

// SubmitScore appends an immutable ledger entry for the authenticated user.
// The username is snapshotted alongside the user link so the entry stays
// attributable if the link is ever severed.
func SubmitScore(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req SubmitScoreRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !types.ValidGameMode(req.GameMode) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game mode"})
		return
	}

	userID := currentUser.ID

	entry := models.ScoreEntry{
		Username: currentUser.Username,
		UserID:   &userID,
		Score:    *req.Score,
		GameMode: req.GameMode,
	}

	if err := db.DB.Create(&entry).Error; err != nil {
		log.Printf("Failed to insert score: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Score submitted successfully"})
}
