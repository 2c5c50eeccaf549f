package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"vdp-support-service/internal/domain/models"
	"vdp-support-service/pkg/logger"
	"vdp-support-service/pkg/utils"
)

// DefaultAdminUsername 初始化时创建的管理员账号
const DefaultAdminUsername = "admin"

// ErrAdminExists 用户名已存在
var ErrAdminExists = errors.New("用户名已存在")

// InterfaceAdminService Admin服务接口
type InterfaceAdminService interface {
	GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error)
	CreateAdmin(ctx context.Context, admin *models.Admin) error
	EnsureDefaultAdmin(ctx context.Context, password string) (bool, error)
}

// AdminService 管理存储在数据库中的管理员账户
type AdminService struct {
	DB *gorm.DB
}

// NewAdminService 创建一个新的管理员服务
func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{DB: db}
}

// 1 GetAdminByUsername 根据用户名获取管理员，不存在时返回 gorm.ErrRecordNotFound
func (s *AdminService) GetAdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// 2 CreateAdmin 创建管理员，Password 传入明文，保存前加密
func (s *AdminService) CreateAdmin(ctx context.Context, admin *models.Admin) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Admin{}).Where("username = ?", admin.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAdminExists
	}

	hashed, err := utils.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("密码加密失败: %w", err)
	}
	admin.Password = hashed
	if admin.Role == "" {
		admin.Role = RoleAdmin
	}
	if admin.Status == "" {
		admin.Status = models.AdminStatusActive
	}
	return s.DB.WithContext(ctx).Create(admin).Error
}

// 3 EnsureDefaultAdmin 库中没有任何管理员时创建默认账号，返回是否创建
func (s *AdminService) EnsureDefaultAdmin(ctx context.Context, password string) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Admin{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if password == "" {
		logger.Warning("数据库中没有管理员，且未设置 DEFAULT_ADMIN_PASSWORD，跳过创建")
		return false, nil
	}

	admin := &models.Admin{Username: DefaultAdminUsername, Password: password}
	if err := s.CreateAdmin(ctx, admin); err != nil {
		return false, err
	}
	logger.Info("已创建默认管理员账号: %s", DefaultAdminUsername)
	return true, nil
}
