package public

import (
	"strings"

	"github.com/protakeoff/marketplace/internal/http/response"
	"github.com/protakeoff/marketplace/internal/models"

	"github.com/gin-gonic/gin"
)

// ValidatePromoCodeRequest 优惠码校验请求
type ValidatePromoCodeRequest struct {
	Code     string       `json:"code" binding:"required"`
	Subtotal models.Money `json:"subtotal"`
}

// ValidatePromoCode 按小计预估优惠，不占用次数
func (h *Handler) ValidatePromoCode(c *gin.Context) {
	var req ValidatePromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if strings.TrimSpace(req.Code) == "" || req.Subtotal.Decimal.IsNegative() {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	quote, err := h.PromoCodeService.Validate(req.Code, req.Subtotal)
	if err != nil {
		if respondPromoInapplicable(c, err) {
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, quote)
}
