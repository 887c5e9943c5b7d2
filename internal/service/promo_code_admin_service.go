package service

import (
	"strings"
	"time"

	"github.com/protakeoff/marketplace/internal/constants"
	"github.com/protakeoff/marketplace/internal/logger"
	"github.com/protakeoff/marketplace/internal/models"
	"github.com/protakeoff/marketplace/internal/repository"

	"github.com/shopspring/decimal"
)

// PromoCodeAdminService 优惠码管理服务
type PromoCodeAdminService struct {
	repo      repository.PromoCodeRepository
	orderRepo repository.OrderRepository
}

// NewPromoCodeAdminService 创建优惠码管理服务
func NewPromoCodeAdminService(repo repository.PromoCodeRepository, orderRepo repository.OrderRepository) *PromoCodeAdminService {
	return &PromoCodeAdminService{repo: repo, orderRepo: orderRepo}
}

// PromoCodeInput 创建/更新优惠码输入
type PromoCodeInput struct {
	Code               string
	Description        string
	DiscountType       string
	DiscountValue      models.Money
	MaxDiscount        *models.Money
	MinimumOrderAmount models.Money
	MaxUsage           *int
	ValidFrom          *time.Time
	ValidUntil         time.Time
	IsActive           *bool
}

func (in PromoCodeInput) normalize(now time.Time) (*models.PromoCode, error) {
	code := repository.NormalizeCode(in.Code)
	if code == "" || len(code) > 64 {
		return nil, ErrPromoInvalid
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, ErrPromoDescriptionRequired
	}
	discountType := strings.ToLower(strings.TrimSpace(in.DiscountType))
	if discountType != constants.PromoTypePercentage && discountType != constants.PromoTypeFixed {
		return nil, ErrPromoInvalid
	}
	if in.DiscountValue.Decimal.IsNegative() {
		return nil, ErrPromoInvalid
	}
	if discountType == constants.PromoTypePercentage && in.DiscountValue.Decimal.GreaterThan(decimal.NewFromInt(100)) {
		return nil, ErrPromoInvalid
	}
	if in.MaxDiscount != nil && in.MaxDiscount.Decimal.IsNegative() {
		return nil, ErrPromoInvalid
	}
	if in.MinimumOrderAmount.Decimal.IsNegative() {
		return nil, ErrPromoInvalid
	}
	if in.MaxUsage != nil && *in.MaxUsage < 0 {
		return nil, ErrPromoInvalid
	}
	if in.ValidUntil.IsZero() {
		return nil, ErrPromoInvalid
	}
	validFrom := now
	if in.ValidFrom != nil && !in.ValidFrom.IsZero() {
		validFrom = in.ValidFrom.UTC()
	}
	validUntil := in.ValidUntil.UTC()
	if validUntil.Before(validFrom) {
		return nil, ErrPromoInvalid
	}

	var maxDiscount *models.Money
	if discountType == constants.PromoTypePercentage && in.MaxDiscount != nil && in.MaxDiscount.Decimal.IsPositive() {
		capped := models.NewMoneyFromDecimal(in.MaxDiscount.Decimal)
		maxDiscount = &capped
	}
	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	return &models.PromoCode{
		Code:               code,
		Description:        description,
		DiscountType:       discountType,
		DiscountValue:      models.NewMoneyFromDecimal(in.DiscountValue.Decimal),
		MaxDiscount:        maxDiscount,
		MinimumOrderAmount: models.NewMoneyFromDecimal(in.MinimumOrderAmount.Decimal),
		MaxUsage:           in.MaxUsage,
		ValidFrom:          validFrom,
		ValidUntil:         validUntil,
		IsActive:           isActive,
	}, nil
}

// Create 创建优惠码
func (s *PromoCodeAdminService) Create(adminID uint, input PromoCodeInput) (*models.PromoCode, error) {
	promo, err := input.normalize(time.Now().UTC())
	if err != nil {
		return nil, err
	}
	exist, err := s.repo.GetByCode(promo.Code)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrPromoExists
	}
	if adminID != 0 {
		promo.CreatedBy = &adminID
	}

	wantActive := promo.IsActive
	if err := s.repo.Create(promo); err != nil {
		return nil, err
	}
	// is_active 带数据库默认值，false 需要二次写入
	if !wantActive {
		promo.IsActive = false
		if err := s.repo.UpdateSettings(promo); err != nil {
			return nil, err
		}
	}
	logger.Infow("promo_code_created", "promo_code_id", promo.ID, "code", promo.Code, "admin_id", adminID)
	return promo, nil
}

// Update 更新优惠码（使用计数不可编辑）
func (s *PromoCodeAdminService) Update(id uint, input PromoCodeInput) (*models.PromoCode, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if input.ValidFrom == nil {
		from := existing.ValidFrom
		input.ValidFrom = &from
	}
	if input.IsActive == nil {
		active := existing.IsActive
		input.IsActive = &active
	}
	promo, err := input.normalize(time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if promo.Code != existing.Code {
		dup, err := s.repo.GetByCode(promo.Code)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, ErrPromoExists
		}
	}
	if promo.MaxUsage != nil && *promo.MaxUsage < existing.CurrentUsage {
		return nil, ErrPromoInvalid
	}

	promo.ID = existing.ID
	promo.CurrentUsage = existing.CurrentUsage
	promo.ReservedUsage = existing.ReservedUsage
	promo.CreatedBy = existing.CreatedBy
	promo.CreatedAt = existing.CreatedAt
	if err := s.repo.UpdateSettings(promo); err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Get 获取优惠码
func (s *PromoCodeAdminService) Get(id uint) (*models.PromoCode, error) {
	if id == 0 {
		return nil, ErrPromoNotFound
	}
	promo, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromoNotFound
	}
	return promo, nil
}

// List 获取优惠码列表
func (s *PromoCodeAdminService) List(filter repository.PromoCodeListFilter) ([]models.PromoCode, int64, error) {
	return s.repo.List(filter)
}

// Delete 删除未使用过的优惠码；已核销或被订单引用的只能停用
func (s *PromoCodeAdminService) Delete(id uint) error {
	promo, err := s.Get(id)
	if err != nil {
		return err
	}
	if promo.CurrentUsage > 0 || promo.ReservedUsage > 0 {
		return ErrPromoInUse
	}
	if s.orderRepo != nil {
		count, err := s.orderRepo.CountByPromoCode(id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrPromoInUse
		}
	}
	return s.repo.Delete(id)
}

// ResetReserved 清理残留占用（进程在扣款途中异常退出后人工处理）
func (s *PromoCodeAdminService) ResetReserved(id uint) (*models.PromoCode, error) {
	promo, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ResetReserved(id); err != nil {
		return nil, err
	}
	logger.Warnw("promo_code_reserved_reset", "promo_code_id", id, "reserved_usage", promo.ReservedUsage)
	return s.Get(id)
}
