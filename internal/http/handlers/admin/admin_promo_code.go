package admin

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/protakeoff/marketplace/internal/http/handlers/shared"
	"github.com/protakeoff/marketplace/internal/http/response"
	"github.com/protakeoff/marketplace/internal/logger"
	"github.com/protakeoff/marketplace/internal/models"
	"github.com/protakeoff/marketplace/internal/repository"
	"github.com/protakeoff/marketplace/internal/service"

	"github.com/gin-gonic/gin"
)

// PromoCodeRequest 创建/更新优惠码请求
type PromoCodeRequest struct {
	Code               string        `json:"code" binding:"required"`
	Description        string        `json:"description"`
	DiscountType       string        `json:"discount_type" binding:"required"`
	DiscountValue      models.Money  `json:"discount_value"`
	MaxDiscount        *models.Money `json:"max_discount"`
	MinimumOrderAmount models.Money  `json:"minimum_order_amount"`
	MaxUsage           *int          `json:"max_usage"`
	ValidFrom          string        `json:"valid_from"`
	ValidUntil         string        `json:"valid_until" binding:"required"`
	IsActive           *bool         `json:"is_active"`
}

func (r PromoCodeRequest) toInput() (service.PromoCodeInput, error) {
	validFrom, err := parseTimeNullable(r.ValidFrom)
	if err != nil {
		return service.PromoCodeInput{}, err
	}
	validUntil, err := parseTimeNullable(r.ValidUntil)
	if err != nil {
		return service.PromoCodeInput{}, err
	}
	if validUntil == nil {
		return service.PromoCodeInput{}, service.ErrPromoInvalid
	}
	return service.PromoCodeInput{
		Code:               r.Code,
		Description:        r.Description,
		DiscountType:       r.DiscountType,
		DiscountValue:      r.DiscountValue,
		MaxDiscount:        r.MaxDiscount,
		MinimumOrderAmount: r.MinimumOrderAmount,
		MaxUsage:           r.MaxUsage,
		ValidFrom:          validFrom,
		ValidUntil:         *validUntil,
		IsActive:           r.IsActive,
	}, nil
}

// GetAdminPromoCodes 优惠码列表
func (h *Handler) GetAdminPromoCodes(c *gin.Context) {
	page, pageSize := pageQuery(c)
	filter := repository.PromoCodeListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     c.Query("code"),
	}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		filter.IsActive = &active
	}

	promos, total, err := h.PromoCodeAdminService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, promos, handlershared.BuildPagination(page, pageSize, total))
}

// GetAdminPromoCode 优惠码详情
func (h *Handler) GetAdminPromoCode(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	promo, err := h.PromoCodeAdminService.Get(id)
	if err != nil {
		respondPromoCodeError(c, err)
		return
	}
	response.Success(c, promo)
}

// CreatePromoCode 创建优惠码
func (h *Handler) CreatePromoCode(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.promo_invalid", nil)
		return
	}

	promo, err := h.PromoCodeAdminService.Create(adminID, input)
	if err != nil {
		respondPromoCodeError(c, err)
		return
	}
	logger.Infow("admin_promo_code_created", "admin_id", adminID, "promo_code_id", promo.ID, "code", promo.Code)
	response.Success(c, promo)
}

// UpdatePromoCode 更新优惠码，使用次数不受影响
func (h *Handler) UpdatePromoCode(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req PromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.promo_invalid", nil)
		return
	}

	promo, err := h.PromoCodeAdminService.Update(id, input)
	if err != nil {
		respondPromoCodeError(c, err)
		return
	}
	logger.Infow("admin_promo_code_updated", "admin_id", currentAdminIDOrZero(c), "promo_code_id", promo.ID)
	response.Success(c, promo)
}

// DeletePromoCode 删除未使用过的优惠码
func (h *Handler) DeletePromoCode(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.PromoCodeAdminService.Delete(id); err != nil {
		respondPromoCodeError(c, err)
		return
	}
	logger.Infow("admin_promo_code_deleted", "admin_id", currentAdminIDOrZero(c), "promo_code_id", id)
	response.Success(c, nil)
}

// ResetPromoCodeReserved 清理残留的占用数
func (h *Handler) ResetPromoCodeReserved(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	promo, err := h.PromoCodeAdminService.ResetReserved(id)
	if err != nil {
		respondPromoCodeError(c, err)
		return
	}
	logger.Warnw("admin_promo_code_reserved_reset", "admin_id", currentAdminIDOrZero(c), "promo_code_id", id)
	response.Success(c, promo)
}

func respondPromoCodeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPromoNotFound):
		respondError(c, response.CodeNotFound, "error.promo_not_found", nil)
	case errors.Is(err, service.ErrPromoExists):
		respondError(c, response.CodeConflict, "error.promo_exists", nil)
	case errors.Is(err, service.ErrPromoInUse):
		respondError(c, response.CodeConflict, "error.promo_in_use", nil)
	case errors.Is(err, service.ErrPromoDescriptionRequired):
		respondError(c, response.CodeBadRequest, "error.promo_description_required", nil)
	case errors.Is(err, service.ErrPromoInvalid):
		respondError(c, response.CodeBadRequest, "error.promo_invalid", nil)
	default:
		respondError(c, response.CodeInternal, "error.internal", err)
	}
}
