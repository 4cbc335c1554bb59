package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yeisme/dataroom/pkg/auth"
	"github.com/yeisme/dataroom/pkg/internal/model"
	"github.com/yeisme/dataroom/pkg/internal/types"
	"github.com/yeisme/dataroom/pkg/metrics"
	"github.com/yeisme/dataroom/pkg/queue"
	"github.com/yeisme/dataroom/pkg/rule"
)

const msgInvalidCredentials = "Invalid credentials"

// AuthService 注册与登录.
type AuthService struct {
	deps
	issuer *auth.Issuer
}

// NewAuthService 从 context 构造 AuthService.
func NewAuthService(ctx context.Context) *AuthService {
	d := depsFromContext(ctx)

	return &AuthService{deps: d, issuer: auth.NewIssuer(&d.cfg.Auth)}
}

// normalizeEmail 去除空白并转为小写.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup 创建用户并签发令牌.
func (s *AuthService) Signup(ctx context.Context, req *types.SignupRequest) (*model.User, string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, "", badRequest("Name, email, and password are required")
	}

	if err := rule.ValidateStruct(req); err != nil {
		return nil, "", invalid(err)
	}

	db, err := s.dbx(ctx)
	if err != nil {
		return nil, "", err
	}

	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, "", fmt.Errorf("check email: %w", err)
	}

	if count > 0 {
		metrics.ObserveAuth("signup", false)
		return nil, "", conflict("User with this email already exists")
	}

	hash, err := auth.HashPassword(req.Password, s.cfg.Auth.BcryptCost)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Age:      req.Age,
		Password: hash,
		Role:     model.RoleUser,
	}

	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", conflict("User with this email already exists")
		}

		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.issuer.Sign(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}

	metrics.ObserveAuth("signup", true)
	queue.Emit(ctx, s.events, queue.TopicUserSignedUp, queue.UserSignedUpPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})

	return user, token, nil
}

// Login 校验邮箱与密码并签发令牌. 邮箱不存在与密码错误返回同一错误.
func (s *AuthService) Login(ctx context.Context, req *types.LoginRequest) (*model.User, string, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, "", badRequest("Email and password are required")
	}

	db, err := s.dbx(ctx)
	if err != nil {
		return nil, "", err
	}

	var user model.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.ObserveAuth("login", false)
			return nil, "", unauthorized(msgInvalidCredentials)
		}

		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if err := auth.ComparePassword(user.Password, req.Password); err != nil {
		metrics.ObserveAuth("login", false)
		return nil, "", unauthorized(msgInvalidCredentials)
	}

	token, err := s.issuer.Sign(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}

	metrics.ObserveAuth("login", true)

	return &user, token, nil
}

// Issuer 返回令牌签发器，供中间件校验使用.
func (s *AuthService) Issuer() *auth.Issuer {
	return s.issuer
}
