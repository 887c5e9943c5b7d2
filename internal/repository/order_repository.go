package repository

import (
	"strings"

	"github.com/protakeoff/marketplace/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单写入后不可变，不提供更新方法
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	GetByIDAndEmail(id uint, email string) (*models.Order, error)
	ListByUserEmail(email string, page, pageSize int) ([]models.Order, int64, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	CountByPromoCode(promoCodeID uint) (int64, error)
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create 邮箱统一小写后写入
func (r *GormOrderRepository) Create(order *models.Order) error {
	order.UserEmail = normalizeEmail(order.UserEmail)
	return r.db.Create(order).Error
}

func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	return takeOne[models.Order](r.db, "id = ?", id)
}

func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	return takeOne[models.Order](r.db, "order_no = ?", strings.TrimSpace(orderNo))
}

// GetByIDAndEmail 只返回属于该邮箱的订单，其他人的订单视为不存在
func (r *GormOrderRepository) GetByIDAndEmail(id uint, email string) (*models.Order, error) {
	return takeOne[models.Order](r.db, "id = ? AND user_email = ?", id, normalizeEmail(email))
}

// ListByUserEmail 最新的在前
func (r *GormOrderRepository) ListByUserEmail(email string, page, pageSize int) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Where("user_email = ?", normalizeEmail(email))
	return listPage[models.Order](query, page, pageSize, "created_at DESC", "id DESC")
}

// ListAdmin 后台交易列表，零值条件忽略
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	conds := map[string]interface{}{}
	if filter.UserID != 0 {
		conds["user_id"] = filter.UserID
	}
	if filter.UserEmail != "" {
		conds["user_email"] = normalizeEmail(filter.UserEmail)
	}
	if filter.Status != "" {
		conds["status"] = filter.Status
	}
	if filter.OrderNo != "" {
		conds["order_no"] = strings.TrimSpace(filter.OrderNo)
	}
	if filter.PromoCodeID != 0 {
		conds["promo_code_id"] = filter.PromoCodeID
	}
	if len(conds) > 0 {
		query = query.Where(conds)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	return listPage[models.Order](query, filter.Page, filter.PageSize, "created_at DESC", "id DESC")
}

func (r *GormOrderRepository) CountByPromoCode(promoCodeID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).Where("promo_code_id = ?", promoCodeID).Count(&count).Error
	return count, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
