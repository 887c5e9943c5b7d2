package models

import (
	"errors"
	"strings"

	"github.com/protakeoff/marketplace/internal/config"
	"github.com/protakeoff/marketplace/internal/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DevAdminPassword 非 release 模式下未配置密码时使用
const DevAdminPassword = "admin123"

// ErrBootstrapPasswordMissing release 模式必须显式配置初始密码
var ErrBootstrapPasswordMissing = errors.New("bootstrap admin password missing")

// EnsureBootstrapAdmin 员工表为空时创建超级管理员，已有任意员工则不做任何事
func EnsureBootstrapAdmin(db *gorm.DB, boot config.AdminBootstrap, allowDevPassword bool) (bool, error) {
	var count int64
	if err := db.Model(&Admin{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	username := strings.TrimSpace(boot.Username)
	if username == "" {
		username = "admin"
	}
	password := boot.Password
	if password == "" {
		if !allowDevPassword {
			return false, ErrBootstrapPasswordMissing
		}
		password = DevAdminPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	if err := db.Create(&Admin{Username: username, PasswordHash: string(hash), IsSuper: true}).Error; err != nil {
		return false, err
	}

	if password == DevAdminPassword {
		logger.Warnw("bootstrap_admin_dev_password", "username", username)
	} else {
		logger.Infow("bootstrap_admin_created", "username", username)
	}
	return true, nil
}
