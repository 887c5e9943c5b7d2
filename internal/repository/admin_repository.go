package repository

import (
	"strings"
	"time"

	"github.com/protakeoff/marketplace/internal/models"

	"gorm.io/gorm"
)

// AdminRepository 员工账号数据访问接口
type AdminRepository interface {
	GetByUsername(username string) (*models.Admin, error)
	GetByID(id uint) (*models.Admin, error)
	List() ([]models.Admin, error)
	ListNotifyEmails() ([]string, error)
	Create(admin *models.Admin) error
	RecordLogin(id uint, at time.Time) error
	RotatePassword(id uint, passwordHash string) error
}

// GormAdminRepository GORM 实现
type GormAdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

// GetByUsername 未找到返回 nil, nil
func (r *GormAdminRepository) GetByUsername(username string) (*models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	return takeOne[models.Admin](r.db, "username = ?", username)
}

func (r *GormAdminRepository) GetByID(id uint) (*models.Admin, error) {
	if id == 0 {
		return nil, nil
	}
	return takeOne[models.Admin](r.db, "id = ?", id)
}

func (r *GormAdminRepository) List() ([]models.Admin, error) {
	admins := []models.Admin{}
	err := r.db.Order("id ASC").Find(&admins).Error
	return admins, err
}

// ListNotifyEmails 填写了通知邮箱的员工，去重
func (r *GormAdminRepository) ListNotifyEmails() ([]string, error) {
	var emails []string
	err := r.db.Model(&models.Admin{}).
		Distinct("email").
		Where("email <> ''").
		Order("email ASC").
		Pluck("email", &emails).Error
	return emails, err
}

func (r *GormAdminRepository) Create(admin *models.Admin) error {
	return r.db.Create(admin).Error
}

func (r *GormAdminRepository) RecordLogin(id uint, at time.Time) error {
	return r.db.Model(&models.Admin{}).Where("id = ?", id).UpdateColumn("last_login_at", at).Error
}

// RotatePassword 写入新密码哈希并递增 token_version
func (r *GormAdminRepository) RotatePassword(id uint, passwordHash string) error {
	result := r.db.Model(&models.Admin{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"password_hash": passwordHash,
		"token_version": gorm.Expr("token_version + ?", 1),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
