package container

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"vdp-support-service/internal/domain/services"
	"vdp-support-service/internal/infrastructure/config"
	"vdp-support-service/pkg/logger"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client

	// 基础服务
	jwtService    services.InterfaceJWTService
	authenticator services.Authenticator
	adminService  services.InterfaceAdminService

	// 数据存储服务
	redisService services.InterfaceRedisService
	sessionStore services.SessionStore

	// 外部服务
	sheetService      services.InterfaceSheetService
	suggestionService services.InterfaceSuggestionService
	notifyService     *services.MQTTNotifyService

	// 业务服务
	rosterService services.InterfaceRosterService
	ticketService services.InterfaceTicketService
	intakeService services.InterfaceIntakeService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器，db 与 redisClient 可为 nil
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *ServiceContainer {
	if cfg == nil {
		panic("配置为空")
	}

	// 测试Redis连接，失败时退回内存存储
	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warning("Redis连接测试失败: %v，将不使用Redis缓存", err)
			redisClient = nil
		}
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
		redis:  redisClient,
	}
	container.initializeServices()
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 认证：配置中的固定账号优先，其次是数据库账号
	var chain services.ChainAuthenticator
	if len(c.config.AdminCredentials) > 0 {
		chain = append(chain, services.NewStaticAuthenticator(c.config.AdminCredentials))
	}
	if c.db != nil {
		admins := services.NewAdminService(c.db)
		c.adminService = admins
		chain = append(chain, services.NewDBAuthenticator(admins))
	}
	if len(chain) == 0 {
		logger.Warning("未配置任何管理员账号，管理端将无法登录")
	}
	c.authenticator = chain
	c.jwtService = services.NewJWTService(c.config, chain)

	// 初始化Redis服务
	if c.redis != nil {
		c.redisService = services.NewRedisServiceWithClient(c.redis)
		c.sessionStore = services.NewRedisSessionStore(c.redisService, c.config.IntakeSessionTTL)
	} else {
		c.sessionStore = services.NewMemorySessionStore(c.config.IntakeSessionTTL)
	}

	// 初始化MQTT通知
	var notifier services.TicketNotifier
	if c.config.MQTTEnabled() {
		c.notifyService = services.NewMQTTNotifyService(c.config)
		c.notifyService.Start()
		notifier = c.notifyService
	}

	c.sheetService = services.NewSheetService(c.config)
	c.suggestionService = services.NewSuggestionService(c.config)
	c.rosterService = services.NewRosterService(c.config)
	c.ticketService = services.NewTicketService(c.sheetService, c.db, c.redisService, c.config.TicketCacheTTL, notifier)
	c.intakeService = services.NewIntakeService(c.sessionStore, c.rosterService, c.ticketService, c.suggestionService)
}

// NewServiceContainerWith 使用给定的服务创建容器，未提供的服务为 nil
func NewServiceContainerWith(cfg *config.Config, svcs map[string]interface{}) *ServiceContainer {
	c := &ServiceContainer{config: cfg}
	for name, svc := range svcs {
		c.SetService(name, svc)
	}
	return c
}

// SetService 替换指定名称的服务
func (c *ServiceContainer) SetService(name string, svc interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch name {
	case "db":
		c.db, _ = svc.(*gorm.DB)
	case "jwt":
		c.jwtService, _ = svc.(services.InterfaceJWTService)
	case "auth":
		c.authenticator, _ = svc.(services.Authenticator)
	case "admin":
		c.adminService, _ = svc.(services.InterfaceAdminService)
	case "redis":
		c.redisService, _ = svc.(services.InterfaceRedisService)
	case "sheet":
		c.sheetService, _ = svc.(services.InterfaceSheetService)
	case "suggestion":
		c.suggestionService, _ = svc.(services.InterfaceSuggestionService)
	case "roster":
		c.rosterService, _ = svc.(services.InterfaceRosterService)
	case "ticket":
		c.ticketService, _ = svc.(services.InterfaceTicketService)
	case "intake":
		c.intakeService, _ = svc.(services.InterfaceIntakeService)
	default:
		logger.Warning("未知的服务名称: %s", name)
	}
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "auth":
		return c.authenticator
	case "admin":
		return c.adminService
	case "redis":
		return c.redisService
	case "sheet":
		return c.sheetService
	case "suggestion":
		return c.suggestionService
	case "roster":
		return c.rosterService
	case "ticket":
		return c.ticketService
	case "intake":
		return c.intakeService
	default:
		return nil
	}
}

// GetDB 获取数据库连接，未配置时为 nil
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// RedisEnabled 是否使用 Redis
func (c *ServiceContainer) RedisEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.redisService != nil
}

// Close 释放外部连接
func (c *ServiceContainer) Close() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.notifyService != nil {
		c.notifyService.Stop()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			logger.Warning("关闭Redis连接失败: %v", err)
		}
	}
}
