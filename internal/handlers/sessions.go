package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/znyiri100/snake-rivals-arena/db"
	"github.com/znyiri100/snake-rivals-arena/internal/models"
	"github.com/znyiri100/snake-rivals-arena/internal/types"
	"github.com/znyiri100/snake-rivals-arena/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionResponse struct {
	ID       string          `json:"id"`
	UserID   uint            `json:"userId"`
	Username string          `json:"username"`
	Score    int             `json:"score"`
	GameMode string          `json:"gameMode"`
	IsActive bool            `json:"isActive"`
	State    json.RawMessage `json:"state,omitempty"`
}

type CreateSessionRequest struct {
	GameMode string `json:"gameMode" binding:"required"`
}

type UpdateSessionRequest struct {
	Score    *int            `json:"score"`
	IsActive *bool           `json:"isActive"`
	State    json.RawMessage `json:"state"`
}

func sessionResponse(session models.GameSession) SessionResponse {
	return SessionResponse{
		ID:       session.ID,
		UserID:   session.UserID,
		Username: session.Username,
		Score:    session.Score,
		GameMode: session.GameMode,
		IsActive: session.IsActive,
		State:    json.RawMessage(session.State),
	}
}

func ListSessions(ctx *gin.Context) {
	var sessions []models.GameSession

	if err := db.DB.Where("is_active = ?", true).Order("updated_at DESC").Find(&sessions).Error; err != nil {
		log.Printf("Failed to list sessions: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	response := make([]SessionResponse, 0, len(sessions))

	for _, session := range sessions {
		response = append(response, sessionResponse(session))
	}

	ctx.JSON(http.StatusOK, response)
}

func GetSession(ctx *gin.Context) {
	var session models.GameSession

	if err := db.DB.First(&session, "id = ?", ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		} else {
			log.Printf("Failed to fetch session: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	ctx.JSON(http.StatusOK, sessionResponse(session))
}

func CreateSession(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateSessionRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if !types.ValidGameMode(req.GameMode) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game mode"})
		return
	}

	session := models.GameSession{
		ID:       uuid.NewString(),
		UserID:   currentUser.ID,
		Username: currentUser.Username,
		GameMode: req.GameMode,
		IsActive: true,
	}

	if err := db.DB.Create(&session).Error; err != nil {
		log.Printf("Failed to create session: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, sessionResponse(session))
}

// UpdateSession lets the owning player push score/board updates or end the
// session. Watchers get the fresh snapshot broadcast over their sockets.
func UpdateSession(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var session models.GameSession

	err = db.DB.Where("id = ? AND user_id = ?", ctx.Param("id"), currentUser.ID).First(&session).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		} else {
			log.Printf("Failed to fetch session: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	var req UpdateSessionRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updates := make(map[string]interface{})

	if req.Score != nil {
		updates["score"] = *req.Score
		session.Score = *req.Score
	}

	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
		session.IsActive = *req.IsActive
	}

	if req.State != nil {
		updates["state"] = datatypes.JSON(req.State)
		session.State = datatypes.JSON(req.State)
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	if err := db.DB.Model(&session).Updates(updates).Error; err != nil {
		log.Printf("Failed to update session: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	BroadcastSession(session)

	ctx.JSON(http.StatusOK, sessionResponse(session))
}
