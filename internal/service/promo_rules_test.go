package service

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/protakeoff/marketplace/internal/constants"
	"github.com/protakeoff/marketplace/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rulePromo(discountType, value string) *models.PromoCode {
	now := time.Now().UTC()
	return &models.PromoCode{
		ID:            1,
		Code:          "TEST",
		DiscountType:  discountType,
		DiscountValue: models.MustMoney(value),
		ValidFrom:     now.Add(-time.Hour),
		ValidUntil:    now.Add(time.Hour),
		IsActive:      true,
	}
}

func dec(raw string) decimal.Decimal {
	return decimal.RequireFromString(raw)
}

func TestComputeDiscountScenarios(t *testing.T) {
	save10 := rulePromo(constants.PromoTypePercentage, "10")
	assert.Equal(t, "20.00", RoundCurrency(ComputeDiscount(save10, dec("200"))).StringFixed(2))

	flat50 := rulePromo(constants.PromoTypeFixed, "50")
	assert.Equal(t, "30.00", RoundCurrency(ComputeDiscount(flat50, dec("30"))).StringFixed(2))

	big20 := rulePromo(constants.PromoTypePercentage, "20")
	capped := models.MustMoney("15")
	big20.MaxDiscount = &capped
	assert.Equal(t, "15.00", RoundCurrency(ComputeDiscount(big20, dec("200"))).StringFixed(2))
}

func TestComputeDiscountBounds(t *testing.T) {
	subtotals := []string{"0.01", "0.99", "1", "19.99", "100", "250.55", "9999.99"}
	values := []string{"0", "1", "12.5", "33.33", "50", "99.99", "100"}
	caps := []*models.Money{nil, moneyPtr("5"), moneyPtr("0.50"), moneyPtr("1000")}

	for _, rawSub := range subtotals {
		subtotal := dec(rawSub)
		for _, rawValue := range values {
			for _, capValue := range caps {
				promo := rulePromo(constants.PromoTypePercentage, rawValue)
				promo.MaxDiscount = capValue
				discount := ComputeDiscount(promo, subtotal)
				require.False(t, discount.IsNegative(), "negative discount for %s/%s", rawSub, rawValue)
				require.True(t, discount.LessThanOrEqual(subtotal), "discount exceeds subtotal for %s/%s", rawSub, rawValue)
				if capValue != nil {
					require.True(t, discount.LessThanOrEqual(capValue.Decimal), "discount exceeds cap for %s/%s", rawSub, rawValue)
				}
				final := subtotal.Sub(discount)
				require.False(t, final.IsNegative())
			}

			fixed := rulePromo(constants.PromoTypeFixed, rawValue)
			want := decimal.Min(fixed.DiscountValue.Decimal, subtotal)
			require.True(t, ComputeDiscount(fixed, subtotal).Equal(want), "fixed %s on %s", rawValue, rawSub)
		}
	}
}

func TestComputeDiscountUnknownType(t *testing.T) {
	promo := rulePromo("bogus", "10")
	assert.True(t, ComputeDiscount(promo, dec("100")).IsZero())
	assert.True(t, ComputeDiscount(nil, dec("100")).IsZero())
}

func TestIsCurrentlyValid(t *testing.T) {
	now := time.Now().UTC()

	promo := rulePromo(constants.PromoTypeFixed, "5")
	assert.True(t, IsCurrentlyValid(promo, now))

	promo.IsActive = false
	assert.False(t, IsCurrentlyValid(promo, now))

	expired := rulePromo(constants.PromoTypeFixed, "5")
	assert.False(t, IsCurrentlyValid(expired, now.Add(2*time.Hour)))
	assert.False(t, IsCurrentlyValid(expired, now.Add(-2*time.Hour)))

	exhausted := rulePromo(constants.PromoTypeFixed, "5")
	limit := 3
	exhausted.MaxUsage = &limit
	exhausted.CurrentUsage = 3
	assert.False(t, IsCurrentlyValid(exhausted, now))
	assert.False(t, IsCurrentlyValid(exhausted, now), "check must not mutate state")
	exhausted.CurrentUsage = 2
	assert.True(t, IsCurrentlyValid(exhausted, now))

	assert.False(t, IsCurrentlyValid(nil, now))
}

func TestCheckApplicability(t *testing.T) {
	now := time.Now().UTC()

	promo := rulePromo(constants.PromoTypePercentage, "10")
	promo.MinimumOrderAmount = models.MustMoney("100")

	err := CheckApplicability(promo, dec("80"), now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPromoInapplicable))
	assert.True(t, errors.Is(err, ErrPromoBelowMinimum))
	assert.False(t, errors.Is(err, ErrPromoNotValid))
	assert.Equal(t, "Minimum order amount of $100.00 required", err.Error())

	require.NoError(t, CheckApplicability(promo, dec("100"), now))

	promo.IsActive = false
	err = CheckApplicability(promo, dec("200"), now)
	assert.True(t, errors.Is(err, ErrPromoNotValid))
	assert.True(t, errors.Is(err, ErrPromoInapplicable))
	assert.Equal(t, "Promo code is not valid or has expired", err.Error())
}

func TestToMinorUnits(t *testing.T) {
	for raw, want := range map[string]int64{"180": 18000, "0.005": 1, "19.99": 1999, "0": 0} {
		got, err := ToMinorUnits(dec(raw))
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	assert.Equal(t, "33.34", RoundCurrency(dec("33.335")).StringFixed(2))

	for _, raw := range []string{"92233720368547758.08", "115292150460684697700", "-1"} {
		_, err := ToMinorUnits(dec(raw))
		assert.ErrorIs(t, err, ErrAmountOutOfRange, raw)
		assert.ErrorIs(t, err, ErrInvalidRequest, raw)
	}
	top, err := ToMinorUnits(dec("92233720368547758.07"))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), top)
}

func TestComputeDiscountZeroCapIsUncapped(t *testing.T) {
	promo := rulePromo(constants.PromoTypePercentage, "25")
	promo.MaxDiscount = moneyPtr("0")
	assert.Equal(t, "50.00", RoundCurrency(ComputeDiscount(promo, dec("200"))).StringFixed(2))
}

func moneyPtr(raw string) *models.Money {
	m := models.MustMoney(raw)
	return &m
}
