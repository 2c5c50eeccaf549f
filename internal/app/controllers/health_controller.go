package controllers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"vdp-support-service/internal/domain/services"
	"vdp-support-service/internal/domain/services/container"
	"vdp-support-service/internal/error/code"
	"vdp-support-service/internal/error/response"
)

// HealthCheckController 健康检查控制器
type HealthCheckController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewHealthCheckController 创建健康检查控制器实例
func NewHealthCheckController(ctx *gin.Context, container *container.ServiceContainer) *HealthCheckController {
	return &HealthCheckController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleHealthFunc 返回一个处理健康检查请求的Gin处理函数
func HandleHealthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewHealthCheckController(ctx, container)

		switch method {
		case "ping":
			controller.Ping()
		case "status":
			controller.Status()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// Ping 健康检查端点
// @Summary      Ping
// @Description  Liveness probe
// @Tags         Health
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /ping [get]
func (h *HealthCheckController) Ping() {
	response.Success(h.Ctx, gin.H{
		"status":  "healthy",
		"message": "pong",
	})
}

// Status 依赖状态
// @Summary      Dependency status
// @Description  Roster load state and optional database / Redis connectivity
// @Tags         Health
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /health/status [get]
func (h *HealthCheckController) Status() {
	status := gin.H{"status": "healthy"}

	if roster, ok := h.Container.GetService("roster").(services.InterfaceRosterService); ok && roster != nil {
		status["roster"] = roster.Stats()
	}

	if db := h.Container.GetDB(); db != nil {
		state := "up"
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			state = "down"
		}
		status["database"] = state
	} else {
		status["database"] = "disabled"
	}

	if redisService, ok := h.Container.GetService("redis").(services.InterfaceRedisService); ok && redisService != nil {
		ctx, cancel := context.WithTimeout(h.Ctx.Request.Context(), 2*time.Second)
		defer cancel()
		state := "up"
		if err := redisService.Ping(ctx); err != nil {
			state = "down"
		}
		status["redis"] = state
	} else {
		status["redis"] = "disabled"
	}

	response.Success(h.Ctx, status)
}
