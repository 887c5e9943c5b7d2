package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/protakeoff/marketplace/internal/cache"
	"github.com/protakeoff/marketplace/internal/config"
	"github.com/protakeoff/marketplace/internal/logger"
	"github.com/protakeoff/marketplace/internal/models"
	"github.com/protakeoff/marketplace/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAdminUsernameInvalid = errors.New("admin username invalid")
	ErrAdminUsernameExists  = errors.New("admin username exists")
)

const (
	adminUsernameMinRunes = 3
	adminUsernameMaxRunes = 64
)

// AuthService 后台员工认证
type AuthService struct {
	cfg       *config.Config
	adminRepo repository.AdminRepository
}

func NewAuthService(cfg *config.Config, adminRepo repository.AdminRepository) *AuthService {
	return &AuthService{cfg: cfg, adminRepo: adminRepo}
}

// JWTClaims 员工 JWT 声明
type JWTClaims struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// CreateAdminInput 新建员工参数
type CreateAdminInput struct {
	Username string
	Password string
	Email    string
	IsSuper  bool
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword 按安全策略校验密码，未配置时放行
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

func (s *AuthService) GenerateJWT(admin *models.Admin) (string, time.Time, error) {
	return signToken(s.cfg.JWT.SecretKey, JWTClaims{
		AdminID:          admin.ID,
		Username:         admin.Username,
		TokenVersion:     admin.TokenVersion,
		RegisteredClaims: registeredClaims(time.Now(), tokenTTL(s.cfg.JWT.ExpireHours)),
	})
}

func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	return parseToken(s.cfg.JWT.SecretKey, tokenString, &JWTClaims{})
}

// ResolveAdminAuthState 优先读缓存，未命中回源并回填
func (s *AuthService) ResolveAdminAuthState(ctx context.Context, adminID uint) (*cache.AdminAuthState, error) {
	if state, hit, err := cache.GetAdminAuthState(ctx, adminID); err == nil && hit {
		return state, nil
	}
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrTokenInvalid
	}
	state := cache.BuildAdminAuthState(admin)
	_ = cache.SetAdminAuthState(ctx, state)
	return state, nil
}

// Login 员工登录，账号不存在与密码错误返回同一个错误
func (s *AuthService) Login(username, password string) (*models.Admin, string, time.Time, error) {
	admin, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if admin == nil || s.VerifyPassword(admin.PasswordHash, password) != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT(admin)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	now := time.Now()
	if err := s.adminRepo.RecordLogin(admin.ID, now); err != nil {
		return nil, "", time.Time{}, err
	}
	admin.LastLoginAt = &now
	_ = cache.SetAdminAuthState(context.Background(), cache.BuildAdminAuthState(admin))
	logger.Infow("admin_login", "admin_id", admin.ID, "username", admin.Username)
	return admin, token, expiresAt, nil
}

// ChangePassword 修改密码并递增 token_version，已签发的 Token 全部失效
func (s *AuthService) ChangePassword(adminID uint, oldPassword, newPassword string) error {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return err
	}
	if admin == nil {
		return ErrNotFound
	}
	if s.VerifyPassword(admin.PasswordHash, oldPassword) != nil {
		return ErrInvalidPassword
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}
	hashed, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.adminRepo.RotatePassword(admin.ID, hashed); err != nil {
		return err
	}

	ctx := context.Background()
	refreshed, err := s.adminRepo.GetByID(admin.ID)
	if err != nil || refreshed == nil {
		_ = cache.DelAdminAuthState(ctx, admin.ID)
		return err
	}
	_ = cache.SetAdminAuthState(ctx, cache.BuildAdminAuthState(refreshed))
	logger.Infow("admin_password_changed", "admin_id", admin.ID)
	return nil
}

// CreateAdmin 新建员工账号，角色分配由调用方完成
func (s *AuthService) CreateAdmin(input CreateAdminInput) (*models.Admin, error) {
	username, err := normalizeAdminUsername(input.Username)
	if err != nil {
		return nil, err
	}
	if err := s.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	existing, err := s.adminRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAdminUsernameExists
	}
	hashed, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	admin := &models.Admin{
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hashed,
		IsSuper:      input.IsSuper,
		CreatedAt:    time.Now(),
	}
	if err := s.adminRepo.Create(admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func normalizeAdminUsername(username string) (string, error) {
	trimmed := strings.TrimSpace(username)
	n := utf8.RuneCountInString(trimmed)
	if n < adminUsernameMinRunes || n > adminUsernameMaxRunes {
		return "", ErrAdminUsernameInvalid
	}
	if strings.IndexFunc(trimmed, unicode.IsSpace) >= 0 {
		return "", ErrAdminUsernameInvalid
	}
	return trimmed, nil
}
