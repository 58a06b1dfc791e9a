//go:build swagger

// Build with `swag init -g cmd/server/main.go -o docs` followed by
// `go build -tags swagger ./cmd/server` to serve the API documentation.

package main

import (
	_ "github.com/destocard/backend/docs"
	"github.com/destocard/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag/v2"
)

func init() {
	extraRoutes = append(extraRoutes, func(engine *gin.Engine, cfg *config.Config) {
		if cfg.App.IsProduction() {
			return
		}
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
			ginSwagger.InstanceName(swag.Name)))
	})
}
