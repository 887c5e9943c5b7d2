package repository

import (
	"time"

	"github.com/protakeoff/marketplace/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	ListByEmails(emails []string) ([]models.User, error)
	Create(user *models.User) error
	UpdateFields(id uint, fields map[string]interface{}) error
	RevokeTokens(id uint, fields map[string]interface{}) error
	RecordLogin(id uint, at time.Time) error
	List(filter UserListFilter) ([]models.User, int64, error)
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	return takeOne[models.User](r.db, "email = ?", normalizeEmail(email))
}

func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}
	return takeOne[models.User](r.db, "id = ?", id)
}

// ListByEmails 批量按邮箱获取用户，重复邮箱只查一次
func (r *GormUserRepository) ListByEmails(emails []string) ([]models.User, error) {
	seen := make(map[string]struct{}, len(emails))
	normalized := make([]string, 0, len(emails))
	for _, email := range emails {
		key := normalizeEmail(email)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		normalized = append(normalized, key)
	}
	users := []models.User{}
	if len(normalized) == 0 {
		return users, nil
	}
	if err := r.db.Where("email IN ?", normalized).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormUserRepository) Create(user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	return r.db.Create(user).Error
}

// UpdateFields 按列更新，不触碰 token_version
func (r *GormUserRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.applyUpdates(id, fields)
}

// RevokeTokens 在同一条 UPDATE 中写入字段并递增 token_version，使已签发 Token 失效
func (r *GormUserRepository) RevokeTokens(id uint, fields map[string]interface{}) error {
	updates := make(map[string]interface{}, len(fields)+1)
	for column, value := range fields {
		updates[column] = value
	}
	updates["token_version"] = gorm.Expr("token_version + ?", 1)
	return r.applyUpdates(id, updates)
}

// RecordLogin 只写 last_login_at
func (r *GormUserRepository) RecordLogin(id uint, at time.Time) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).UpdateColumn("last_login_at", at).Error
}

func (r *GormUserRepository) applyUpdates(id uint, updates map[string]interface{}) error {
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	result := r.db.Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List 用户列表
func (r *GormUserRepository) List(filter UserListFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})
	if filter.Keyword != "" {
		condition, args := buildLikeCondition(r.db, filter.Keyword, "email", "first_name", "last_name", "company")
		query = query.Where(condition, args...)
	}
	scopes := []struct {
		enabled bool
		clause  string
		arg     interface{}
	}{
		{filter.Status != "", "status = ?", filter.Status},
		{filter.CreatedFrom != nil, "created_at >= ?", filter.CreatedFrom},
		{filter.CreatedTo != nil, "created_at <= ?", filter.CreatedTo},
	}
	for _, scope := range scopes {
		if scope.enabled {
			query = query.Where(scope.clause, scope.arg)
		}
	}

	return listPage[models.User](query, filter.Page, filter.PageSize, "id DESC")
}
