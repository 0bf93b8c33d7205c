package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/horizon/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 8
	maxUsernameLength = 64
)

var (
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken 注册时用户名已存在
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidUsername 用户名为空或过长
	ErrInvalidUsername = errors.New("username must be 1-64 characters")
	// ErrWeakPassword 密码长度不足
	ErrWeakPassword = errors.New("password must be at least 8 characters")
)

// AuthService 负责账号注册与密码校验
type AuthService struct {
	db *gorm.DB
}

// NewAuthService 构造 AuthService
func NewAuthService(gdb *gorm.DB) *AuthService {
	return &AuthService{db: gdb}
}

// Register 创建新用户，密码以 bcrypt 哈希保存
func (s *AuthService) Register(username, password string) (*db.User, error) {
	name := strings.TrimSpace(username)
	if name == "" || len(name) > maxUsernameLength {
		return nil, ErrInvalidUsername
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	var count int64
	if err := s.db.Model(&db.User{}).Where("username = ?", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hashed, err := db.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := db.User{Username: name, Password: hashed}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Authenticate 校验用户名与密码，失败时统一返回 ErrInvalidCredentials
func (s *AuthService) Authenticate(username, password string) (*db.User, error) {
	var user db.User
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// Get 根据 ID 获取用户
func (s *AuthService) Get(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}
