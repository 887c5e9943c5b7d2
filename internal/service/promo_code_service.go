package service

import (
	"time"

	"github.com/protakeoff/marketplace/internal/models"
	"github.com/protakeoff/marketplace/internal/repository"

	"github.com/shopspring/decimal"
)

// PromoCodeService 前台优惠码校验服务
type PromoCodeService struct {
	repo repository.PromoCodeRepository
	now  func() time.Time
}

// NewPromoCodeService 创建优惠码校验服务
func NewPromoCodeService(repo repository.PromoCodeRepository) *PromoCodeService {
	return &PromoCodeService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// PromoQuote 优惠码试算结果
type PromoQuote struct {
	Valid          bool         `json:"valid"`
	PromoCodeID    uint         `json:"promo_code_id"`
	Code           string       `json:"code"`
	Description    string       `json:"description"`
	DiscountType   string       `json:"discount_type"`
	DiscountValue  models.Money `json:"discount_value"`
	DiscountAmount models.Money `json:"discount_amount"`
	FinalAmount    models.Money `json:"final_amount"`
}

// Validate 校验优惠码并试算折扣；与结算不同，不可用时总是返回错误
func (s *PromoCodeService) Validate(code string, subtotal models.Money) (*PromoQuote, error) {
	if subtotal.Decimal.IsNegative() {
		return nil, ErrInvalidRequest
	}
	promo, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromoNotValid
	}
	if err := CheckApplicability(promo, subtotal.Decimal, s.now()); err != nil {
		return nil, err
	}
	discount := RoundCurrency(ComputeDiscount(promo, subtotal.Decimal))
	final := decimal.Max(subtotal.Decimal.Sub(discount), decimal.Zero)
	return &PromoQuote{
		Valid:          true,
		PromoCodeID:    promo.ID,
		Code:           promo.Code,
		Description:    promo.Description,
		DiscountType:   promo.DiscountType,
		DiscountValue:  promo.DiscountValue,
		DiscountAmount: models.NewMoneyFromDecimal(discount),
		FinalAmount:    models.NewMoneyFromDecimal(final),
	}, nil
}
