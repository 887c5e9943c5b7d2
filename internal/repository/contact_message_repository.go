package repository

import (
	"time"

	"github.com/protakeoff/marketplace/internal/models"

	"gorm.io/gorm"
)

// ContactMessageRepository 联系留言数据访问接口
type ContactMessageRepository interface {
	Create(message *models.ContactMessage) error
	GetByID(id uint) (*models.ContactMessage, error)
	List(filter ContactMessageListFilter) ([]models.ContactMessage, int64, error)
	UpdateStatus(id uint, status string) error
	Delete(id uint) (bool, error)
	Stats(since time.Time) (*ContactMessageStats, error)
}

// GormContactMessageRepository GORM 实现
type GormContactMessageRepository struct {
	db *gorm.DB
}

// NewContactMessageRepository 创建联系留言仓库
func NewContactMessageRepository(db *gorm.DB) *GormContactMessageRepository {
	return &GormContactMessageRepository{db: db}
}

// Create 创建留言
func (r *GormContactMessageRepository) Create(message *models.ContactMessage) error {
	message.Email = normalizeEmail(message.Email)
	return r.db.Create(message).Error
}

func (r *GormContactMessageRepository) GetByID(id uint) (*models.ContactMessage, error) {
	return takeOne[models.ContactMessage](r.db, "id = ?", id)
}

// List 留言列表
func (r *GormContactMessageRepository) List(filter ContactMessageListFilter) ([]models.ContactMessage, int64, error) {
	query := r.db.Model(&models.ContactMessage{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Email != "" {
		query = query.Where("email = ?", normalizeEmail(filter.Email))
	}
	if filter.Keyword != "" {
		condition, args := buildLikeCondition(r.db, filter.Keyword, "name", "email", "company", "message")
		query = query.Where(condition, args...)
	}

	return listPage[models.ContactMessage](query, filter.Page, filter.PageSize, "id DESC")
}

// UpdateStatus 更新处理状态
func (r *GormContactMessageRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.ContactMessage{}).Where("id = ?", id).Update("status", status).Error
}

// Delete 删除留言，返回是否存在
func (r *GormContactMessageRepository) Delete(id uint) (bool, error) {
	result := r.db.Delete(&models.ContactMessage{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Stats 统计总数、since 之后的新增数以及各状态数量
func (r *GormContactMessageRepository) Stats(since time.Time) (*ContactMessageStats, error) {
	stats := &ContactMessageStats{ByStatus: map[string]int64{}}
	if err := r.db.Model(&models.ContactMessage{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.ContactMessage{}).Where("created_at >= ?", since).Count(&stats.Today).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.Model(&models.ContactMessage{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.Count
	}
	return stats, nil
}
