package services

import (
	"context"
	"crypto/subtle"
	"errors"

	"gorm.io/gorm"

	"vdp-support-service/internal/domain/models"
	"vdp-support-service/pkg/logger"
	"vdp-support-service/pkg/utils"
)

// RoleAdmin 管理端角色
const RoleAdmin = "admin"

var (
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	// ErrAdminDisabled 账户未启用
	ErrAdminDisabled = errors.New("管理员账户已停用")
)

// AdminIdentity 认证通过的管理员
type AdminIdentity struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Source   string `json:"source"`
}

// Authenticator 校验管理员账号密码
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*AdminIdentity, error)
}

// StaticAuthenticator 使用配置中的固定账号，仅用于内部演示环境
type StaticAuthenticator struct {
	credentials map[string]string
}

// NewStaticAuthenticator 创建固定账号认证器
func NewStaticAuthenticator(credentials map[string]string) *StaticAuthenticator {
	creds := make(map[string]string, len(credentials))
	for user, pass := range credentials {
		creds[user] = pass
	}
	return &StaticAuthenticator{credentials: creds}
}

// Authenticate 逐字比较用户名与密码
func (a *StaticAuthenticator) Authenticate(ctx context.Context, username, password string) (*AdminIdentity, error) {
	expected, ok := a.credentials[username]
	if !ok || subtle.ConstantTimeCompare([]byte(expected), []byte(password)) != 1 {
		return nil, ErrInvalidCredentials
	}
	return &AdminIdentity{Username: username, Role: RoleAdmin, Source: "static"}, nil
}

// DBAuthenticator 使用数据库中的管理员账户
type DBAuthenticator struct {
	Admins InterfaceAdminService
}

// NewDBAuthenticator 创建数据库认证器
func NewDBAuthenticator(admins InterfaceAdminService) *DBAuthenticator {
	return &DBAuthenticator{Admins: admins}
}

// Authenticate 只允许 active 状态的账户登录
func (a *DBAuthenticator) Authenticate(ctx context.Context, username, password string) (*AdminIdentity, error) {
	admin, err := a.Admins.GetAdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(password, admin.Password) {
		return nil, ErrInvalidCredentials
	}
	if admin.Status != models.AdminStatusActive {
		return nil, ErrAdminDisabled
	}
	role := admin.Role
	if role == "" {
		role = RoleAdmin
	}
	return &AdminIdentity{ID: admin.ID, Username: admin.Username, Role: role, Source: "database"}, nil
}

// ChainAuthenticator 依次尝试，第一个成功的结果生效
type ChainAuthenticator []Authenticator

// Authenticate 全部失败时返回 ErrInvalidCredentials；账户停用的错误会直接返回
func (c ChainAuthenticator) Authenticate(ctx context.Context, username, password string) (*AdminIdentity, error) {
	var disabled bool
	for _, a := range c {
		identity, err := a.Authenticate(ctx, username, password)
		if err == nil {
			return identity, nil
		}
		switch {
		case errors.Is(err, ErrAdminDisabled):
			disabled = true
		case !errors.Is(err, ErrInvalidCredentials):
			logger.Error("管理员认证出错: %v", err)
		}
	}
	if disabled {
		return nil, ErrAdminDisabled
	}
	return nil, ErrInvalidCredentials
}
