package public

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/protakeoff/marketplace/internal/http/handlers/shared"
	"github.com/protakeoff/marketplace/internal/http/response"
	"github.com/protakeoff/marketplace/internal/i18n"
	"github.com/protakeoff/marketplace/internal/models"
	"github.com/protakeoff/marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

const idempotencyKeyHeader = "Idempotency-Key"

// CheckoutItemRequest 结算行
type CheckoutItemRequest struct {
	TakeoffID uint         `json:"takeoff_id" binding:"required"`
	Price     models.Money `json:"price"`
	Quantity  int          `json:"quantity"`
}

// CheckoutRequest 结算请求
type CheckoutRequest struct {
	Items           []CheckoutItemRequest `json:"items" binding:"required"`
	PaymentMethodID string                `json:"payment_method_id" binding:"required"`
	PromoCodeID     *uint                 `json:"promo_code_id"`
	PromoCode       string                `json:"promo_code"`
}

// Checkout 结算：计价、扣款并生成订单
func (h *Handler) Checkout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.checkout_invalid", err)
		return
	}
	if len(req.Items) == 0 {
		respondError(c, response.CodeBadRequest, "error.cart_empty", nil)
		return
	}

	user, err := h.UserAuthService.GetUserByID(uid)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	items := make([]service.CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CartLine{
			TakeoffID: item.TakeoffID,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.CheckoutService.Checkout(c.Request.Context(), service.CheckoutInput{
		Items: items,
		Buyer: service.BuyerSnapshot{
			UserID:    user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		},
		PaymentMethodID: req.PaymentMethodID,
		PromoCodeID:     req.PromoCodeID,
		PromoCode:       req.PromoCode,
		IdempotencyKey:  strings.TrimSpace(c.GetHeader(idempotencyKeyHeader)),
		ClientIP:        c.ClientIP(),
		Locale:          i18n.ResolveLocale(c),
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, order)
}

// ListOrders 我的订单列表，最新的在前
func (h *Handler) ListOrders(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	orders, total, err := h.OrderService.ListMyOrders(getUserEmail(c), page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, orders, handlershared.BuildPagination(page, pageSize, total))
}

// GetOrder 我的订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.GetMyOrder(getUserEmail(c), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, order)
}
