package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vibelab/vibe/config"
	"github.com/vibelab/vibe/controllers"
	"github.com/vibelab/vibe/middleware"
	"github.com/vibelab/vibe/store"
	"github.com/vibelab/vibe/utils"
)

// SetupRouter wires routes, middlewares, and controllers. The rate limiter
// is passed in so callers (and tests) own its lifetime and reset semantics.
func SetupRouter(db *gorm.DB, limiter *middleware.SlidingWindowLimiter) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(utils.GinLogger())
	r.Use(utils.GinRecovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	s := store.New(db)
	authController := controllers.NewAuthController(s)
	postController := controllers.NewPostController(s)

	rateLimited := middleware.RateLimit(limiter, cfg.RateLimitMax, time.Duration(cfg.RateLimitWindowSec)*time.Second)

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public surface: registration, login, feed and profiles.
	r.POST("/register", authController.Register)
	r.POST("/token", authController.Token)
	r.GET("/feed", postController.Feed)
	r.GET("/users/:username", authController.Profile)

	// Authenticated writes; the limiter runs after auth so it keys on the
	// token subject rather than the address.
	protected := r.Group("/posts")
	protected.Use(middleware.AuthRequired(s), rateLimited)
	protected.POST("", postController.CreatePost)
	protected.POST("/:id/like", postController.LikePost)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, "route not found")
	})

	return r
}
