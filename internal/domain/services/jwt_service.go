package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"vdp-support-service/internal/infrastructure/config"
)

// ErrInvalidToken 令牌无效或已过期
var ErrInvalidToken = errors.New("令牌无效或已过期")

// InterfaceJWTService 定义JWT服务接口
type InterfaceJWTService interface {
	GenerateToken(identity *AdminIdentity) (string, time.Time, error)
	ExtractClaims(tokenString string) (*JWTClaims, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

// LoginResult 表示登录结果
type LoginResult struct {
	Token     string    `json:"token"`
	UserID    uint      `json:"user_id,omitempty"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// JWTClaims 定义JWT令牌的声明结构
type JWTClaims struct {
	UserID   uint   `json:"user_id,omitempty"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService 提供JWT相关服务
type JWTService struct {
	secretKey     string
	issuer        string
	expiry        time.Duration
	authenticator Authenticator
}

// NewJWTService 创建一个新的JWT服务
func NewJWTService(cfg *config.Config, authenticator Authenticator) *JWTService {
	expiry := cfg.JWTExpiry
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &JWTService{
		secretKey:     cfg.JWTSecretKey,
		issuer:        "vdp-support-service",
		expiry:        expiry,
		authenticator: authenticator,
	}
}

// 1 GenerateToken 生成 HS256 令牌
func (s *JWTService) GenerateToken(identity *AdminIdentity) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiry)

	claims := &JWTClaims{
		UserID:   identity.ID,
		Username: identity.Username,
		Role:     identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// 2 ExtractClaims 校验令牌并返回声明
func (s *JWTService) ExtractClaims(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// 验证签名算法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// 3 Login 认证管理员并签发令牌
func (s *JWTService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if s.authenticator == nil {
		return nil, ErrInvalidCredentials
	}
	identity, err := s.authenticator.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.GenerateToken(identity)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:     token,
		UserID:    identity.ID,
		Username:  identity.Username,
		Role:      identity.Role,
		ExpiresAt: expiresAt,
	}, nil
}
