package controller

import (
	"context"
	"net/http"
	"time"

	"study_plan_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type HealthController struct {
	DB    pinger
	Redis redisPinger
}

// NewHealthController db 与 rdb 均可为空，为空的组件不参与检查
func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	c := &HealthController{}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			c.DB = sqlDB
		}
	}
	if rdb != nil {
		c.Redis = rdb
	}
	return c
}

// @Summary 健康检查
// @Description 检查数据库与 Redis 连接
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	components := gin.H{}
	healthy := true

	if c.DB != nil {
		if err := c.DB.PingContext(reqCtx); err != nil {
			components["database"] = "down"
			healthy = false
		} else {
			components["database"] = "up"
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Ping(reqCtx).Err(); err != nil {
			components["redis"] = "down"
			healthy = false
		} else {
			components["redis"] = "up"
		}
	}

	if !healthy {
		ctx.JSON(http.StatusServiceUnavailable, util.Response{
			Code:    http.StatusServiceUnavailable,
			Message: "service unavailable",
			Data:    gin.H{"status": "degraded", "components": components},
		})
		return
	}

	util.Success(ctx, gin.H{
		"status":     "ok",
		"components": components,
	})
}
