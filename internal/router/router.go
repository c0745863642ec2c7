package router

import (
	"github.com/linkvault-next/internal/config"
	publichandlers "github.com/linkvault-next/internal/http/handlers/public"
	"github.com/linkvault-next/internal/logger"
	"github.com/linkvault-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	api := r.Group("/api/v1")
	{
		links := api.Group("/links")
		{
			links.POST("", publicHandler.CreateLink)
			links.GET("", publicHandler.ListLinks)
			links.GET("/best", publicHandler.BestLink)
			links.GET("/search", publicHandler.SearchLinks)
			links.GET("/export", publicHandler.ExportLinks)
			links.GET("/:id/stats", publicHandler.GetLinkStats)
			links.POST("/:id/clicks", publicHandler.TrackClick)
			links.POST("/:id/conversions", publicHandler.TrackConversion)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
