package db

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 是登录账号。Password 只保存 bcrypt 哈希。
type User struct {
	gorm.Model
	Username string `gorm:"size:64;uniqueIndex;not null"`
	Password string `gorm:"not null"`
}

// HashPassword 返回密码的 bcrypt 哈希
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// EnsureUser creates the bootstrap account on gdb unless it already exists.
// Blank credentials are skipped. created reports whether a row was inserted;
// an existing account keeps its password.
func EnsureUser(gdb *gorm.DB, username, password string) (created bool, err error) {
	name := strings.TrimSpace(username)
	secret := strings.TrimSpace(password)
	if name == "" || secret == "" {
		return false, nil
	}
	if gdb == nil {
		return false, errors.New("database not initialized")
	}

	var existing User
	err = gdb.Where("username = ?", name).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("find bootstrap user: %w", err)
	}

	hashed, err := HashPassword(secret)
	if err != nil {
		return false, err
	}
	if err := gdb.Create(&User{Username: name, Password: hashed}).Error; err != nil {
		return false, fmt.Errorf("create bootstrap user: %w", err)
	}
	return true, nil
}
