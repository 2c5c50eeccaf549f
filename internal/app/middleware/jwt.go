package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vdp-support-service/internal/domain/services"
)

var jwtService services.InterfaceJWTService

// InitAuthMiddleware 初始化认证中间件
func InitAuthMiddleware(svc services.InterfaceJWTService) {
	jwtService = svc
}

// extractToken 从授权头中提取token
func extractToken(authHeader string) string {
	// 检查并移除 "Bearer " 前缀
	if len(authHeader) > 7 && strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	return authHeader
}

func abortWith(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"code":    status,
		"message": message,
		"data":    nil,
	})
	c.Abort()
}

// AuthenticateSystemAdmin 验证管理员权限
func AuthenticateSystemAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtService == nil {
			abortWith(c, http.StatusServiceUnavailable, "Authentication is not configured")
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		// 提取token
		tokenString := extractToken(authHeader)
		claims, err := jwtService.ExtractClaims(tokenString)
		if err != nil {
			abortWith(c, http.StatusUnauthorized, "Invalid token: "+err.Error())
			return
		}

		// 检查是否是管理员
		if claims.Role != services.RoleAdmin {
			abortWith(c, http.StatusForbidden, "Insufficient permissions: requires admin role")
			return
		}

		// 存储claims到上下文
		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Set("claims", claims)
		c.Next()
	}
}
