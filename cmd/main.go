package main

import (
	"github.com/gin-gonic/gin"

	"github.com/IICPAS/IICPAS-sub003/internal/app"
	"github.com/IICPAS/IICPAS-sub003/internal/config"
)

func main() {
	cfg := config.MustLoad()
	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	app.Run(cfg)
}
