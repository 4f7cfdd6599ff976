package app

import (
	"study_plan_backend/internal/config"
	"study_plan_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		plans := api.Group("/study-plans")
		if cfg.RateLimit.GenerateMaxRequests > 0 {
			plans.Use(a.newLimiter(cfg.RateLimit.GenerateMaxRequests, cfg.RateLimit.WindowMinutes).Middleware())
		}
		plans.POST("/generate", c.studyPlan.Generate)
	}

	admin := router.Group("/api/admin")
	{
		admin.GET("/ai-diagnostics", c.diagnostics.ListRecent)
	}
}
