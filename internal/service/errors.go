package service

import (
	"errors"
	"fmt"

	"github.com/protakeoff/marketplace/internal/models"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("password does not satisfy policy")
	ErrUserDisabled       = errors.New("user disabled")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrUserNotFound       = errors.New("user not found")
	ErrTokenInvalid       = errors.New("token invalid")

	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")

	ErrTakeoffNotFound = errors.New("takeoff not found")
	ErrTakeoffInvalid  = errors.New("takeoff invalid")

	ErrUploadTooLarge    = errors.New("upload too large")
	ErrUploadTypeInvalid = errors.New("upload type not allowed")

	ErrPromoNotFound = errors.New("promo code not found")
	ErrPromoInvalid  = errors.New("promo code data invalid")
	ErrPromoExists   = errors.New("promo code already exists")
	ErrPromoInUse    = errors.New("promo code already redeemed")
	// ErrPromoDescriptionRequired 描述会进入订单快照，不能为空
	ErrPromoDescriptionRequired = fmt.Errorf("%w: description required", ErrPromoInvalid)
	// ErrPromoInapplicable 优惠码不可用于当前订单（父错误）
	ErrPromoInapplicable = errors.New("promo code inapplicable")
	ErrPromoNotValid     = &PromoInapplicableError{Reason: PromoReasonNotValid}
	ErrPromoBelowMinimum = &PromoInapplicableError{Reason: PromoReasonBelowMinimum}

	ErrPaymentFailed      = errors.New("payment failed")
	ErrOrderPersistFailed = errors.New("order persist failed after payment")
	ErrCheckoutInProgress = errors.New("checkout in progress")
	ErrOrderNotFound      = errors.New("order not found")

	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")

	ErrContactInvalid         = errors.New("contact message invalid")
	ErrContactNotFound        = errors.New("contact message not found")
	ErrReconciliationNotFound = errors.New("reconciliation record not found")
)

const (
	PromoReasonNotValid     = "not_valid"
	PromoReasonBelowMinimum = "below_minimum"
)

// PromoInapplicableError 优惠码不可用的具体原因
type PromoInapplicableError struct {
	Reason  string
	Minimum models.Money
}

func (e *PromoInapplicableError) Error() string {
	if e.Reason == PromoReasonBelowMinimum {
		return fmt.Sprintf("Minimum order amount of $%s required", e.Minimum.StringFixed(2))
	}
	return "Promo code is not valid or has expired"
}

// Is 允许 errors.Is(err, ErrPromoInapplicable) 与同原因比较
func (e *PromoInapplicableError) Is(target error) bool {
	if target == ErrPromoInapplicable {
		return true
	}
	other, ok := target.(*PromoInapplicableError)
	return ok && other.Reason == e.Reason
}

// PersistenceFailedError 扣款成功但订单落库失败
type PersistenceFailedError struct {
	PaymentReferenceID string
	Amount             models.Money
	Err                error
}

func (e *PersistenceFailedError) Error() string {
	return fmt.Sprintf("payment %s succeeded but order was not saved: %v", e.PaymentReferenceID, e.Err)
}

func (e *PersistenceFailedError) Unwrap() error {
	return e.Err
}

func (e *PersistenceFailedError) Is(target error) bool {
	return target == ErrOrderPersistFailed
}
