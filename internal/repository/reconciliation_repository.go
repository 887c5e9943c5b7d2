package repository

import (
	"time"

	"github.com/protakeoff/marketplace/internal/models"

	"gorm.io/gorm"
)

// ReconciliationRepository 扣款待对账记录数据访问接口
type ReconciliationRepository interface {
	Create(record *models.CheckoutReconciliation) error
	ListUnresolved(page, pageSize int) ([]models.CheckoutReconciliation, int64, error)
	MarkResolved(id uint, at time.Time) (bool, error)
}

// GormReconciliationRepository GORM 实现
type GormReconciliationRepository struct {
	db *gorm.DB
}

// NewReconciliationRepository 创建对账仓库
func NewReconciliationRepository(db *gorm.DB) *GormReconciliationRepository {
	return &GormReconciliationRepository{db: db}
}

// Create 写入待对账记录
func (r *GormReconciliationRepository) Create(record *models.CheckoutReconciliation) error {
	return r.db.Create(record).Error
}

// ListUnresolved 未处理的对账记录
func (r *GormReconciliationRepository) ListUnresolved(page, pageSize int) ([]models.CheckoutReconciliation, int64, error) {
	query := r.db.Model(&models.CheckoutReconciliation{}).Where("resolved_at IS NULL")

	return listPage[models.CheckoutReconciliation](query, page, pageSize, "id ASC")
}

// MarkResolved 标记已处理
func (r *GormReconciliationRepository) MarkResolved(id uint, at time.Time) (bool, error) {
	result := r.db.Model(&models.CheckoutReconciliation{}).
		Where("id = ? AND resolved_at IS NULL", id).
		Update("resolved_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
