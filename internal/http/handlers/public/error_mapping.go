package public

import (
	"errors"

	handlershared "github.com/protakeoff/marketplace/internal/http/handlers/shared"
	"github.com/protakeoff/marketplace/internal/http/response"
	"github.com/protakeoff/marketplace/internal/i18n"
	"github.com/protakeoff/marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

var checkoutErrorRules = []handlershared.MappedError{
	{Target: service.ErrCheckoutInProgress, Code: response.CodeConflict, Key: "error.checkout_in_progress"},
	{Target: service.ErrPaymentFailed, Code: response.CodePaymentRequired, Key: "error.payment_failed"},
	{Target: service.ErrTakeoffNotFound, Code: response.CodeBadRequest, Key: "error.takeoff_not_found"},
	{Target: service.ErrPriceMismatch, Code: response.CodeBadRequest, Key: "error.price_mismatch"},
	{Target: service.ErrInvalidRequest, Code: response.CodeBadRequest, Key: "error.checkout_invalid"},
	{Target: service.ErrUserNotFound, Code: response.CodeUnauthorized, Key: "error.token_invalid"},
}

var userAuthErrorRules = []handlershared.MappedError{
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrEmailExists, Code: response.CodeBadRequest, Key: "error.email_exists"},
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
	{Target: service.ErrUserDisabled, Code: response.CodeUnauthorized, Key: "error.user_disabled"},
	{Target: service.ErrInvalidPassword, Code: response.CodeBadRequest, Key: "error.password_invalid"},
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
}

// respondPromoInapplicable 优惠码不可用时返回带原因的提示
func respondPromoInapplicable(c *gin.Context, err error) bool {
	var inapplicable *service.PromoInapplicableError
	if !errors.As(err, &inapplicable) {
		return false
	}
	locale := i18n.ResolveLocale(c)
	msg := i18n.T(locale, "error.promo_not_valid")
	if inapplicable.Reason == service.PromoReasonBelowMinimum {
		msg = i18n.Sprintf(locale, "error.promo_below_minimum", inapplicable.Minimum.StringFixed(2))
	}
	response.ErrorWithData(c, response.CodeBadRequest, msg, gin.H{"reason": inapplicable.Reason})
	return true
}

func respondCheckoutError(c *gin.Context, err error) {
	if respondPromoInapplicable(c, err) {
		return
	}
	var persistErr *service.PersistenceFailedError
	if errors.As(err, &persistErr) {
		handlershared.RequestLog(c).Errorw("checkout_persist_failed_response",
			"payment_reference_id", persistErr.PaymentReferenceID,
			"amount", persistErr.Amount.String(),
			"error", persistErr.Err,
		)
		msg := i18n.Sprintf(i18n.ResolveLocale(c), "error.order_persist_failed", persistErr.PaymentReferenceID)
		response.ErrorWithData(c, response.CodeOrderPendingReconciliation, msg, gin.H{
			"payment_reference_id": persistErr.PaymentReferenceID,
			"amount":               persistErr.Amount,
		})
		return
	}
	handlershared.RespondMappedError(c, err, checkoutErrorRules, response.CodeInternal, "error.internal")
}

func respondUserAuthError(c *gin.Context, err error, fallbackKey string) {
	if handlershared.RespondPasswordPolicyError(c, err) {
		return
	}
	handlershared.RespondMappedError(c, err, userAuthErrorRules, response.CodeInternal, fallbackKey)
}
