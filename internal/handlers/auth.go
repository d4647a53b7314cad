package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/znyiri100/snake-rivals-arena/db"
	"github.com/znyiri100/snake-rivals-arena/internal/auth"
	"github.com/znyiri100/snake-rivals-arena/internal/groups"
	"github.com/znyiri100/snake-rivals-arena/internal/models"
	"github.com/znyiri100/snake-rivals-arena/internal/types"
	"github.com/znyiri100/snake-rivals-arena/internal/utils"
	"gorm.io/gorm"
)

type SignupRequest struct {
	Username     string `json:"username" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
	NewGroupName string `json:"new_group_name"`
	GroupIDs     []uint `json:"group_ids"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

var (
	errDuplicateMembership = errors.New("duplicate membership")
	errGroupNotFound       = errors.New("group not found")
)

// Signup creates the user and all of their memberships in one transaction.
// Username/email uniqueness is enforced per group: the pre-check gives a
// friendly 400 and the composite unique indexes catch concurrent signups.
func Signup(ctx *gin.Context) {
	var req SignupRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var newUser models.User

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		targets, err := resolveSignupGroups(tx, req)
		if err != nil {
			return err
		}

		ids := make([]uint, len(targets))
		for i, g := range targets {
			ids[i] = g.ID
		}

		exists, err := groups.MembershipExists(tx, ids, req.Username, req.Email)
		if err != nil {
			return err
		}
		if exists {
			return errDuplicateMembership
		}

		newUser = models.User{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		}

		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}

		for _, g := range targets {
			membership := models.GroupMembership{
				UserID:   newUser.ID,
				GroupID:  g.ID,
				Username: req.Username,
				Email:    req.Email,
			}
			if err := tx.Create(&membership).Error; err != nil {
				if isDuplicateKeyError(err) {
					return errDuplicateMembership
				}
				return err
			}
		}

		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, errDuplicateMembership):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Username or email already exists in one of the selected groups"})
		case errors.Is(err, errGroupNotFound):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Group not found"})
		default:
			log.Printf("Failed to create user: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	respondWithUserAndToken(ctx, newUser)
}

// resolveSignupGroups collects the groups the new user will join: a freshly
// named group, existing groups by id, or the "other" fallback when neither is
// given.
func resolveSignupGroups(tx *gorm.DB, req SignupRequest) ([]models.Group, error) {
	var targets []models.Group

	if name := strings.TrimSpace(req.NewGroupName); name != "" {
		var group models.Group
		if err := tx.Where(models.Group{Name: name}).FirstOrCreate(&group).Error; err != nil {
			return nil, err
		}
		targets = append(targets, group)
	}

	for _, id := range req.GroupIDs {
		var group models.Group
		if err := tx.First(&group, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errGroupNotFound
			}
			return nil, err
		}
		targets = append(targets, group)
	}

	if len(targets) == 0 {
		var group models.Group
		if err := tx.Where(models.Group{Name: types.DefaultGroupName}).FirstOrCreate(&group).Error; err != nil {
			return nil, err
		}
		targets = append(targets, group)
	}

	// A named group may also appear in group_ids; keep each target once so the
	// membership insert doesn't trip its own unique index.
	seen := make(map[uint]bool, len(targets))
	unique := targets[:0]

	for _, g := range targets {
		if seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		unique = append(unique, g)
	}

	return unique, nil
}

func Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User

	err := db.DB.Where("email = ?", req.Email).Order("id ASC").First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		log.Printf("Database error when fetching user: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Clear-text comparison on purpose: this system deliberately stores
	// credentials unhashed.
	if user.Password != req.Password {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	respondWithUserAndToken(ctx, user)
}

func Logout(ctx *gin.Context) {
	// Tokens are stateless and never expire, so logout is client-side only.
	ctx.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	userGroups, err := groups.ForUser(db.DB, currentUser.ID)

	if err != nil {
		log.Printf("Failed to load groups for user %d: %v", currentUser.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, types.UserResponse{
		ID:       currentUser.ID,
		Username: currentUser.Username,
		Email:    currentUser.Email,
		Groups:   userGroups,
	})
}

func ListGroups(ctx *gin.Context) {
	var allGroups []models.Group

	if err := db.DB.Order("id ASC").Find(&allGroups).Error; err != nil {
		log.Printf("Failed to list groups: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	refs := make([]groups.GroupRef, 0, len(allGroups))

	for _, g := range allGroups {
		refs = append(refs, groups.GroupRef{ID: g.ID, Name: g.Name})
	}

	ctx.JSON(http.StatusOK, refs)
}

func respondWithUserAndToken(ctx *gin.Context, user models.User) {
	userGroups, err := groups.ForUser(db.DB, user.ID)

	if err != nil {
		log.Printf("Failed to load groups for user %d: %v", user.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email)

	if err != nil {
		log.Printf("Failed to generate token: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": types.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Groups:   userGroups,
		},
		"token": token,
	})
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
