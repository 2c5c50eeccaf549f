// @title           VDP Support Service API
// @version         1.0
// @description     Resident video door phone and access card support: intake wizard, roster matching and admin ticket dashboard.

// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer ` prefix
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"vdp-support-service/internal/app/routes"
	"vdp-support-service/internal/domain/services"
	"vdp-support-service/internal/domain/services/container"
	"vdp-support-service/internal/infrastructure/config"
	"vdp-support-service/internal/infrastructure/database"
	Logger "vdp-support-service/pkg/logger"
)

func main() {
	// 初始化日志配置
	if err := Logger.SetupLogger(); err != nil {
		fmt.Printf("初始化日志配置失败: %v\n", err)
		os.Exit(1)
	}

	// 加载.env文件
	if err := godotenv.Load(); err != nil {
		Logger.Warning("无法加载.env文件: %v", err)
		// 即使加载失败也继续执行，可能环境变量已经通过其他方式设置
	} else {
		Logger.Info("成功加载.env文件")
	}

	// 获取配置
	cfg := config.GetConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 数据库可选：用于管理员账户与提交日志
	var db *gorm.DB
	var pool *database.ConnectionPool
	if cfg.DBEnabled() {
		var err error
		pool, err = database.NewConnectionPool(cfg)
		if err != nil {
			Logger.Error("无法创建数据库连接池: %v", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Migrate(cfg.DBMigrationMode); err != nil {
			Logger.Error("数据库迁移失败: %v", err)
			os.Exit(1)
		}
		db = pool.GetDB()
	} else {
		Logger.Info("未配置数据库，管理员仅使用 ADMIN_CREDENTIALS 登录")
	}

	// Redis可选：工单列表缓存与报修会话
	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient = services.NewRedisService(cfg).Client
	}

	// 创建服务容器
	serviceContainer := container.NewServiceContainer(db, cfg, redisClient)
	defer serviceContainer.Close()

	// 确保系统中有管理员账户
	if admins, ok := serviceContainer.GetService("admin").(services.InterfaceAdminService); ok && admins != nil {
		created, err := admins.EnsureDefaultAdmin(ctx, cfg.DefaultAdminPassword)
		if err != nil {
			Logger.Error("创建默认管理员失败: %v", err)
		} else if created {
			Logger.Info("已创建默认管理员账户: %s", services.DefaultAdminUsername)
		}
	}

	// 加载住户名册并定时刷新
	roster := serviceContainer.GetService("roster").(services.InterfaceRosterService)
	records := roster.Load(ctx)
	Logger.Info("住户名册加载完成，共 %d 条记录", len(records))
	stopRefresh, err := roster.StartAutoRefresh(cfg.RosterRefreshSpec)
	if err != nil {
		Logger.Error("无效的名册刷新表达式 %q: %v", cfg.RosterRefreshSpec, err)
		os.Exit(1)
	}
	defer stopRefresh()

	// 初始化路由
	r := routes.SetupRouter(cfg, serviceContainer)

	printSystemInfo(pool)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.ServerPort,
		Handler: r,
	}
	go func() {
		Logger.Info("服务器启动在: http://0.0.0.0:%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Error("启动服务器失败: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	Logger.Info("正在关闭服务器...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		Logger.Error("关闭服务器失败: %v", err)
	}
}

// printSystemInfo 打印系统信息
func printSystemInfo(pool *database.ConnectionPool) {
	if pool != nil {
		if stats, err := pool.Stats(); err == nil {
			Logger.Info("数据库连接池状态: %+v", stats)
		}
	}

	Logger.Info("系统CPU核心数: %d", runtime.NumCPU())
	Logger.Info("当前Go协程数: %d", runtime.NumGoroutine())

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	Logger.Info("系统内存使用: Alloc=%v MiB, Sys=%v MiB", m.Alloc/1024/1024, m.Sys/1024/1024)
}
