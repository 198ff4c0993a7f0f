package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vibelab/vibe/config"
	"github.com/vibelab/vibe/models"
	"github.com/vibelab/vibe/store"
	"github.com/vibelab/vibe/utils"
	"github.com/vibelab/vibe/views"
)

// AuthController handles registration, login and public profiles.
type AuthController struct {
	store *store.Store
}

// NewAuthController creates an AuthController.
func NewAuthController(s *store.Store) *AuthController {
	return &AuthController{store: s}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func tokenTTL() time.Duration {
	return time.Duration(config.Get().TokenTTLHrs) * time.Hour
}

// Register creates a new account and returns an access token for it.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username    string  `json:"username" binding:"required,min=3,max=32"`
		Password    string  `json:"password" binding:"required,min=6"`
		DisplayName *string `json:"display_name"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	username := strings.TrimSpace(req.Username)
	if l := len(username); l < 3 || l > 32 {
		utils.Error(ctx, http.StatusBadRequest, "username must be 3-32 characters")
		return
	}

	if _, err := a.store.FindUserByUsername(username); err == nil {
		utils.Error(ctx, http.StatusBadRequest, "username already taken")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		utils.Error(ctx, http.StatusInternalServerError, "failed to create user")
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := models.User{
		Username:       username,
		DisplayName:    sanitizeDisplayName(req.DisplayName),
		HashedPassword: hashed,
	}
	if err := a.store.InsertUser(&user); err != nil {
		// The unique index settles races the pre-check missed.
		if errors.Is(err, store.ErrDuplicate) {
			utils.Error(ctx, http.StatusBadRequest, "username already taken")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.Username, tokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to generate token")
		return
	}

	utils.Event("user_registered", "user_id", user.ID, "username", user.Username)
	ctx.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Token verifies form credentials and issues a JWT. The failure detail is
// deliberately generic: a missing user and a wrong password are
// indistinguishable to the caller.
func (a *AuthController) Token(ctx *gin.Context) {
	var req struct {
		Username string `form:"username" binding:"required"`
		Password string `form:"password" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "Incorrect username or password")
		return
	}

	user, err := a.store.FindUserByUsername(req.Username)
	if err != nil || !utils.CheckPassword(user.HashedPassword, req.Password) {
		utils.Error(ctx, http.StatusBadRequest, "Incorrect username or password")
		return
	}

	token, err := utils.GenerateToken(user.Username, tokenTTL())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to generate token")
		return
	}

	utils.Event("user_login", "user_id", user.ID, "username", user.Username)
	ctx.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Profile returns a user's public metadata plus all their posts, newest
// first and fully assembled. Public, unpaginated.
func (a *AuthController) Profile(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))
	if username == "" {
		utils.Error(ctx, http.StatusNotFound, "user not found")
		return
	}

	cacheKey := "cache:profile:" + username
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	user, err := a.store.FindUserByUsername(username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load profile")
		return
	}

	posts, err := a.store.ListPostsByAuthor(user.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to load profile")
		return
	}

	postViews, err := assemblePostViews(a.store, posts)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to load profile")
		return
	}

	profile := views.ProfileView{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
		Posts:       postViews,
	}
	utils.CacheSetJSON(cacheKey, profile, 0)
	ctx.JSON(http.StatusOK, profile)
}

func sanitizeDisplayName(name *string) *string {
	if name == nil {
		return nil
	}
	cleaned := strings.TrimSpace(utils.Sanitize(*name))
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
