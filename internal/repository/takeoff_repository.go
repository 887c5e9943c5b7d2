package repository

import (
	"strings"

	"github.com/protakeoff/marketplace/internal/models"

	"gorm.io/gorm"
)

// TakeoffRepository 图纸商品数据访问接口
type TakeoffRepository interface {
	GetByID(id uint) (*models.Takeoff, error)
	GetActiveByID(id uint) (*models.Takeoff, error)
	ListByIDs(ids []uint) ([]models.Takeoff, error)
	List(filter TakeoffListFilter) ([]models.Takeoff, int64, error)
	ListCategories() ([]string, error)
	Create(takeoff *models.Takeoff) error
	Update(takeoff *models.Takeoff) error
	Delete(id uint) error
	IncrementPurchaseCount(id uint, delta int) error
}

// GormTakeoffRepository GORM 实现
type GormTakeoffRepository struct {
	db *gorm.DB
}

// NewTakeoffRepository 创建图纸商品仓库
func NewTakeoffRepository(db *gorm.DB) *GormTakeoffRepository {
	return &GormTakeoffRepository{db: db}
}

// GetByID 含已下架商品
func (r *GormTakeoffRepository) GetByID(id uint) (*models.Takeoff, error) {
	return takeOne[models.Takeoff](r.db, "id = ?", id)
}

// GetActiveByID 仅上架商品，结算与前台详情使用
func (r *GormTakeoffRepository) GetActiveByID(id uint) (*models.Takeoff, error) {
	return takeOne[models.Takeoff](r.db, "id = ? AND is_active = ?", id, true)
}

// ListByIDs 批量获取商品
func (r *GormTakeoffRepository) ListByIDs(ids []uint) ([]models.Takeoff, error) {
	if len(ids) == 0 {
		return []models.Takeoff{}, nil
	}
	var takeoffs []models.Takeoff
	if err := r.db.Where("id IN ?", ids).Find(&takeoffs).Error; err != nil {
		return nil, err
	}
	return takeoffs, nil
}

// List 商品列表
func (r *GormTakeoffRepository) List(filter TakeoffListFilter) ([]models.Takeoff, int64, error) {
	query := r.db.Model(&models.Takeoff{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if strings.TrimSpace(filter.Search) != "" {
		condition, args := buildLikeCondition(r.db, filter.Search, "title", "description")
		query = query.Where(condition, args...)
	}

	return listPage[models.Takeoff](query, filter.Page, filter.PageSize, takeoffSortOrder(filter.OrderBy), "id DESC")
}

// takeoffSortOrder 未知排序只按 ID 倒序
func takeoffSortOrder(orderBy string) string {
	switch orderBy {
	case "price_asc":
		return "price ASC"
	case "price_desc":
		return "price DESC"
	case "popular":
		return "purchase_count DESC"
	}
	return ""
}

// ListCategories 获取上架商品的分类列表
func (r *GormTakeoffRepository) ListCategories() ([]string, error) {
	var categories []string
	err := r.db.Model(&models.Takeoff{}).
		Where("is_active = ? AND category <> ''", true).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Create 创建商品
func (r *GormTakeoffRepository) Create(takeoff *models.Takeoff) error {
	return r.db.Create(takeoff).Error
}

// Update 更新商品（不覆盖购买计数）
func (r *GormTakeoffRepository) Update(takeoff *models.Takeoff) error {
	return r.db.Model(takeoff).Omit("purchase_count", "created_by", "created_at").Select("*").Updates(takeoff).Error
}

// Delete 删除商品（软删除，历史订单快照不受影响）
func (r *GormTakeoffRepository) Delete(id uint) error {
	return r.db.Delete(&models.Takeoff{}, id).Error
}

// IncrementPurchaseCount 增加购买次数
func (r *GormTakeoffRepository) IncrementPurchaseCount(id uint, delta int) error {
	if delta <= 0 {
		delta = 1
	}
	return r.db.Model(&models.Takeoff{}).
		Where("id = ?", id).
		UpdateColumn("purchase_count", gorm.Expr("purchase_count + ?", delta)).Error
}
