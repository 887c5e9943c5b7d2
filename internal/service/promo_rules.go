package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/protakeoff/marketplace/internal/constants"
	"github.com/protakeoff/marketplace/internal/models"

	"github.com/shopspring/decimal"
)

var (
	hundred       = decimal.NewFromInt(100)
	maxMinorUnits = decimal.NewFromInt(math.MaxInt64)
)

// ErrAmountOutOfRange 金额无法用 int64 最小单位表示
var ErrAmountOutOfRange = fmt.Errorf("%w: amount out of range", ErrInvalidRequest)

// IsCurrentlyValid 判断优惠码在 now 时刻是否可用（启用、在有效期内、未用尽）
func IsCurrentlyValid(promo *models.PromoCode, now time.Time) bool {
	if promo == nil || !promo.IsActive {
		return false
	}
	if now.Before(promo.ValidFrom) || now.After(promo.ValidUntil) {
		return false
	}
	if promo.MaxUsage != nil && promo.CurrentUsage >= *promo.MaxUsage {
		return false
	}
	return true
}

// CheckApplicability 校验优惠码能否用于给定小计
func CheckApplicability(promo *models.PromoCode, subtotal decimal.Decimal, now time.Time) error {
	if !IsCurrentlyValid(promo, now) {
		return ErrPromoNotValid
	}
	if subtotal.LessThan(promo.MinimumOrderAmount.Decimal) {
		return &PromoInapplicableError{
			Reason:  PromoReasonBelowMinimum,
			Minimum: promo.MinimumOrderAmount,
		}
	}
	return nil
}

// ComputeDiscount 计算折扣金额，结果不做舍入，范围 [0, subtotal]
func ComputeDiscount(promo *models.PromoCode, subtotal decimal.Decimal) decimal.Decimal {
	if promo == nil || subtotal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	var discount decimal.Decimal
	switch strings.ToLower(strings.TrimSpace(promo.DiscountType)) {
	case constants.PromoTypeFixed:
		discount = promo.DiscountValue.Decimal
	case constants.PromoTypePercentage:
		discount = subtotal.Mul(promo.DiscountValue.Decimal).Div(hundred)
		// 上限为空或为 0 均视为不封顶
		if promo.MaxDiscount != nil && promo.MaxDiscount.Decimal.IsPositive() && discount.GreaterThan(promo.MaxDiscount.Decimal) {
			discount = promo.MaxDiscount.Decimal
		}
	default:
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}

// RoundCurrency 按货币最小单位（分）四舍五入
func RoundCurrency(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// ToMinorUnits 转换为最小货币单位，超出 int64 或为负时报错
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	minor := amount.Shift(2).Round(0)
	if minor.IsNegative() || minor.GreaterThan(maxMinorUnits) {
		return 0, ErrAmountOutOfRange
	}
	return minor.IntPart(), nil
}
