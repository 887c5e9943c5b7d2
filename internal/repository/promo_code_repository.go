package repository

import (
	"strings"
	"time"

	"github.com/protakeoff/marketplace/internal/models"

	"gorm.io/gorm"
)

// PromoCodeRepository 优惠码数据访问接口
type PromoCodeRepository interface {
	GetByID(id uint) (*models.PromoCode, error)
	GetByCode(code string) (*models.PromoCode, error)
	Create(promo *models.PromoCode) error
	UpdateSettings(promo *models.PromoCode) error
	Delete(id uint) error
	List(filter PromoCodeListFilter) ([]models.PromoCode, int64, error)
	ReserveUsage(id uint, now time.Time) (bool, error)
	CommitUsage(id uint) (bool, error)
	ReleaseUsage(id uint) (bool, error)
	ResetReserved(id uint) error
}

// GormPromoCodeRepository GORM 实现
type GormPromoCodeRepository struct {
	db *gorm.DB
}

// NewPromoCodeRepository 创建优惠码仓库
func NewPromoCodeRepository(db *gorm.DB) *GormPromoCodeRepository {
	return &GormPromoCodeRepository{db: db}
}

// NormalizeCode 优惠码统一去空格转大写
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *GormPromoCodeRepository) GetByID(id uint) (*models.PromoCode, error) {
	return takeOne[models.PromoCode](r.db, "id = ?", id)
}

// GetByCode 大小写不敏感，空码直接视为不存在
func (r *GormPromoCodeRepository) GetByCode(code string) (*models.PromoCode, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, nil
	}
	return takeOne[models.PromoCode](r.db, "code = ?", normalized)
}

// Create 创建优惠码
func (r *GormPromoCodeRepository) Create(promo *models.PromoCode) error {
	promo.Code = NormalizeCode(promo.Code)
	return r.db.Create(promo).Error
}

// UpdateSettings 更新后台可编辑字段，不覆盖使用计数
func (r *GormPromoCodeRepository) UpdateSettings(promo *models.PromoCode) error {
	promo.Code = NormalizeCode(promo.Code)
	return r.db.Model(promo).
		Select(
			"code",
			"description",
			"discount_type",
			"discount_value",
			"max_discount",
			"minimum_order_amount",
			"max_usage",
			"valid_from",
			"valid_until",
			"is_active",
			"updated_at",
		).
		Updates(promo).Error
}

// Delete 物理删除优惠码（仅用于从未核销的优惠码，已使用的只能停用）
func (r *GormPromoCodeRepository) Delete(id uint) error {
	return r.db.Delete(&models.PromoCode{}, id).Error
}

// List 获取优惠码列表
func (r *GormPromoCodeRepository) List(filter PromoCodeListFilter) ([]models.PromoCode, int64, error) {
	query := r.db.Model(&models.PromoCode{})
	if code := NormalizeCode(filter.Code); code != "" {
		query = query.Where("code LIKE ?", "%"+code+"%")
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	return listPage[models.PromoCode](query, filter.Page, filter.PageSize, "id DESC")
}

// ReserveUsage 原子占用一次使用名额：校验与自增在同一条条件 UPDATE 中完成
// 返回 false 表示优惠码已失效或名额已被占满
func (r *GormPromoCodeRepository) ReserveUsage(id uint, now time.Time) (bool, error) {
	result := r.db.Model(&models.PromoCode{}).
		Where("id = ? AND is_active = ?", id, true).
		Where("valid_from <= ? AND valid_until >= ?", now, now).
		Where("max_usage IS NULL OR current_usage + reserved_usage < max_usage").
		UpdateColumn("reserved_usage", gorm.Expr("reserved_usage + ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CommitUsage 支付成功后将占用转为核销：current_usage +1，reserved_usage -1
func (r *GormPromoCodeRepository) CommitUsage(id uint) (bool, error) {
	result := r.db.Model(&models.PromoCode{}).
		Where("id = ? AND reserved_usage > ?", id, 0).
		UpdateColumns(map[string]interface{}{
			"current_usage":  gorm.Expr("current_usage + ?", 1),
			"reserved_usage": gorm.Expr("reserved_usage - ?", 1),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ReleaseUsage 支付失败时归还占用名额
func (r *GormPromoCodeRepository) ReleaseUsage(id uint) (bool, error) {
	result := r.db.Model(&models.PromoCode{}).
		Where("id = ? AND reserved_usage > ?", id, 0).
		UpdateColumn("reserved_usage", gorm.Expr("reserved_usage - ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ResetReserved 清理异常残留的占用（进程在扣款途中崩溃时由后台手动处理）
func (r *GormPromoCodeRepository) ResetReserved(id uint) error {
	return r.db.Model(&models.PromoCode{}).
		Where("id = ?", id).
		UpdateColumn("reserved_usage", 0).Error
}
