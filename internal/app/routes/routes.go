package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "vdp-support-service/docs"
	"vdp-support-service/internal/app/controllers"
	"vdp-support-service/internal/app/middleware"
	"vdp-support-service/internal/domain/services"
	"vdp-support-service/internal/domain/services/container"
	"vdp-support-service/internal/infrastructure/config"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(cfg *config.Config, serviceContainer *container.ServiceContainer) *gin.Engine {
	// 初始化 Gin
	r := gin.Default()

	// 添加 CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.CORSOrigin)
		if cfg.CORSOrigin != "*" {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// 初始化中间件
	if jwtService, ok := serviceContainer.GetService("jwt").(services.InterfaceJWTService); ok {
		middleware.InitAuthMiddleware(jwtService)
	}
	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	// Prometheus 指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 注册路由
	registerRoutes(r, serviceContainer)
	return r
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	// API 路由根路径
	api := r.Group("/api")
	// 注册公共路由
	registerPublicRoutes(api, container)
	// 注册需要认证的路由
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	public := api.Group("")
	// 添加IP限流中间件 - 每秒允许10个请求，最多突发20个请求
	public.Use(middleware.IPRateLimiter(10, 20))

	// 健康检查路由
	public.GET("/ping", controllers.HandleHealthFunc(container, "ping"))
	public.GET("/health", controllers.HandleHealthFunc(container, "ping"))
	public.GET("/health/status", controllers.HandleHealthFunc(container, "status"))

	// 认证路由
	public.POST("/auth/login", controllers.HandleJWTFunc(container, "login"))

	// 名册匹配
	public.GET("/roster/match", middleware.Cache(middleware.CacheConfig{Expiration: 10 * time.Second}), controllers.HandleRosterFunc(container, "match"))

	// 报修向导路由组
	intakeGroup := public.Group("/intake/sessions")
	intakeGroup.POST("", controllers.HandleIntakeFunc(container, "createSession"))
	intakeGroup.GET("/:id", controllers.HandleIntakeFunc(container, "getSession"))
	intakeGroup.PUT("/:id/fields", controllers.HandleIntakeFunc(container, "updateFields"))
	intakeGroup.POST("/:id/next", controllers.HandleIntakeFunc(container, "next"))
	intakeGroup.POST("/:id/back", controllers.HandleIntakeFunc(container, "back"))
	intakeGroup.POST("/:id/analyze", middleware.PathRateLimiter(2, 10), controllers.HandleIntakeFunc(container, "analyze")) // AI 调用，每秒2个，最多突发10个
	intakeGroup.POST("/:id/submit", controllers.HandleIntakeFunc(container, "submit"))
}

// registerAuthenticatedRoutes 注册需要认证的路由
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加认证中间件
	auth := api.Group("/admin")
	auth.Use(middleware.AuthenticateSystemAdmin())

	// 添加通用限流中间件 - 每秒30个请求，最多突发50个请求
	auth.Use(middleware.IPRateLimiter(30, 50))

	// 工单路由
	ticketGroup := auth.Group("/tickets")
	ticketGroup.GET("", controllers.HandleTicketFunc(container, "getTickets"))
	ticketGroup.GET("/export.csv", controllers.HandleTicketFunc(container, "exportCSV"))
	ticketGroup.GET("/export.xlsx", controllers.HandleTicketFunc(container, "exportXLSX"))
	auth.GET("/sheet-url", controllers.HandleTicketFunc(container, "getSheetURL"))

	// 名册路由
	rosterGroup := auth.Group("/roster")
	rosterGroup.POST("/reload", controllers.HandleRosterFunc(container, "reload"))
	rosterGroup.GET("/stats", controllers.HandleRosterFunc(container, "stats"))
	rosterGroup.GET("/search", controllers.HandleRosterFunc(container, "search"))
}
