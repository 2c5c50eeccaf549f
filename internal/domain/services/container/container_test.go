package container

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdp-support-service/internal/domain/services"
	"vdp-support-service/internal/infrastructure/config"
)

func testConfig() *config.Config {
	return &config.Config{
		RosterCSVURL:     "http://127.0.0.1:0/roster.csv",
		SheetScriptURL:   "http://127.0.0.1:0/exec",
		SheetReadURL:     "http://127.0.0.1:0/exec",
		HTTPTimeout:      time.Second,
		IntakeSessionTTL: time.Hour,
		JWTSecretKey:     "container-secret",
		AdminCredentials: map[string]string{"admin": "secret"},
	}
}

func TestNewServiceContainer_WithoutOptionalBackends(t *testing.T) {
	c := NewServiceContainer(nil, testConfig(), nil)
	defer c.Close()

	assert.Nil(t, c.GetDB())
	assert.False(t, c.RedisEnabled())
	assert.Nil(t, c.GetService("admin"), "没有数据库时不提供管理员服务")
	assert.Nil(t, c.GetService("redis"))
	assert.Nil(t, c.GetService("unknown"))

	_, ok := c.GetService("roster").(services.InterfaceRosterService)
	assert.True(t, ok)
	_, ok = c.GetService("sheet").(services.InterfaceSheetService)
	assert.True(t, ok)
	_, ok = c.GetService("ticket").(services.InterfaceTicketService)
	assert.True(t, ok)
	_, ok = c.GetService("suggestion").(services.InterfaceSuggestionService)
	assert.True(t, ok)
	_, ok = c.GetService("config").(*config.Config)
	assert.True(t, ok)

	// 固定账号可以登录
	jwtService, ok := c.GetService("jwt").(services.InterfaceJWTService)
	require.True(t, ok)
	result, err := jwtService.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, services.RoleAdmin, result.Role)

	// 会话使用内存存储
	intake, ok := c.GetService("intake").(services.InterfaceIntakeService)
	require.True(t, ok)
	view, err := intake.CreateSession(context.Background())
	require.NoError(t, err)
	got, err := intake.GetSession(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Equal(t, view.ID, got.ID)
}

func TestNewServiceContainer_NilConfigPanics(t *testing.T) {
	assert.Panics(t, func() { NewServiceContainer(nil, nil, nil) })
}

func TestSetService(t *testing.T) {
	c := NewServiceContainerWith(testConfig(), nil)
	roster := services.NewRosterServiceWithRecords(nil)
	c.SetService("roster", roster)
	assert.Same(t, roster, c.GetService("roster"))
	assert.Nil(t, c.GetService("ticket"))
}
