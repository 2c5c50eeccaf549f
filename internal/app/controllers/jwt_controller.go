package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vdp-support-service/internal/domain/services"
	"vdp-support-service/internal/domain/services/container"
	"vdp-support-service/internal/error/code"
	"vdp-support-service/internal/error/response"
	"vdp-support-service/pkg/logger"
)

// InterfaceJWTController 定义认证控制器接口
type InterfaceJWTController interface {
	Login()
}

// JWTController 处理身份验证请求
type JWTController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewJWTController 创建一个新的认证控制器
func NewJWTController(ctx *gin.Context, container *container.ServiceContainer) *JWTController {
	return &JWTController{
		Ctx:       ctx,
		Container: container,
	}
}

// LoginRequest 表示登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

// LoginData 表示登录成功后返回的数据
type LoginData struct {
	Token     string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	UserID    uint   `json:"user_id,omitempty" example:"1"`
	Role      string `json:"role" example:"admin"`
	Username  string `json:"username" example:"admin"`
	ExpiresAt string `json:"expires_at" example:"2026-10-17T00:00:00Z"`
}

// HandleJWTFunc 返回一个处理JWT认证请求的Gin处理函数
func HandleJWTFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewJWTController(ctx, container)

		switch method {
		case "login":
			controller.Login()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// Login 处理管理员登录
// @Summary      Admin Login
// @Description  Check administrator credentials and return a JWT for the admin ticket dashboard
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request parameters"
// @Success      200  {object}  response.Response{data=LoginData}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /auth/login [post]
func (c *JWTController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}

	jwtService, ok := c.Container.GetService("jwt").(services.InterfaceJWTService)
	if !ok || jwtService == nil {
		response.ServerError(c.Ctx)
		return
	}

	result, err := jwtService.Login(c.Ctx.Request.Context(), strings.TrimSpace(req.Username), req.Password)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrAdminDisabled):
		response.Fail(c.Ctx, code.ErrAdminForbidden, nil)
		return
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Fail(c.Ctx, code.ErrAdminCredentialsInvalid, nil)
		return
	default:
		logger.Error("管理员登录失败: %v", err)
		response.ServerError(c.Ctx)
		return
	}

	logger.Info("管理员 %s 登录成功", result.Username)
	response.Success(c.Ctx, LoginData{
		Token:     result.Token,
		UserID:    result.UserID,
		Role:      result.Role,
		Username:  result.Username,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
