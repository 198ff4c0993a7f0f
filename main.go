package main

import (
	"github.com/vibelab/vibe/config"
	"github.com/vibelab/vibe/middleware"
	"github.com/vibelab/vibe/models"
	"github.com/vibelab/vibe/routes"
	"github.com/vibelab/vibe/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Post{}, &models.Like{})

	limiter := middleware.NewSlidingWindowLimiter()
	r := routes.SetupRouter(db, limiter)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
